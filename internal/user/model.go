package user

import "time"

// User is a credential record. Records are created on signup, flipped to
// verified on successful code confirmation, and never deleted.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Verified     bool      `json:"verified" bson:"verified"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
