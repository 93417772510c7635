package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/papertrade/api/internal/storage"
)

// MongoCodeRepository stores one-time codes in a MongoDB collection keyed by
// email, so an upsert naturally replaces any prior code.
type MongoCodeRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoCodeRepository(db *mongo.Database, timeout time.Duration) *MongoCodeRepository {
	return &MongoCodeRepository{
		coll:    db.Collection("otp_codes"),
		timeout: timeout,
	}
}

func (r *MongoCodeRepository) Upsert(ctx context.Context, code *Code) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": code.Email},
		code,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return storage.Unavailable("upsert code", err)
	}
	return nil
}

func (r *MongoCodeRepository) Get(ctx context.Context, email string) (*Code, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c Code
	err := r.coll.FindOne(ctx, bson.M{"_id": email}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCodeNotFound
		}
		return nil, storage.Unavailable("get code", err)
	}
	return &c, nil
}

func (r *MongoCodeRepository) Delete(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": email}); err != nil {
		return storage.Unavailable("delete code", err)
	}
	return nil
}
