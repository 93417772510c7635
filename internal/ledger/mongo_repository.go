package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/papertrade/api/internal/storage"
)

// accountDoc is the MongoDB shape of an account. Cash is stored as the
// decimal's canonical string form so no float precision is lost in transit.
type accountDoc struct {
	Owner     string           `bson:"_id"`
	Cash      string           `bson:"cash"`
	Positions map[string]int64 `bson:"positions"`
	Version   int64            `bson:"version"`
}

// MongoRepository stores accounts in a MongoDB collection keyed by owner.
type MongoRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepository(db *mongo.Database, timeout time.Duration) *MongoRepository {
	return &MongoRepository{
		coll:    db.Collection("accounts"),
		timeout: timeout,
	}
}

func (r *MongoRepository) Get(ctx context.Context, owner string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc accountDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": owner}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, storage.Unavailable("get account", err)
	}

	return docToAccount(&doc)
}

func (r *MongoRepository) Create(ctx context.Context, account *Account) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, accountToDoc(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return storage.Unavailable("insert account", err)
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, account *Account) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": account.Owner, "version": account.Version},
		bson.M{
			"$set": bson.M{
				"cash":      account.Cash.String(),
				"positions": account.Positions,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return storage.Unavailable("update account", err)
	}

	if result.MatchedCount == 0 {
		// Either the record moved under us or it never existed.
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": account.Owner})
		if err != nil {
			return storage.Unavailable("check account", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	account.Version++
	return nil
}

func accountToDoc(a *Account) *accountDoc {
	return &accountDoc{
		Owner:     a.Owner,
		Cash:      a.Cash.String(),
		Positions: a.Positions,
		Version:   a.Version,
	}
}

func docToAccount(doc *accountDoc) (*Account, error) {
	cash, err := decimal.NewFromString(doc.Cash)
	if err != nil {
		// Corrupted record; surfaced as an internal fault, not a user error.
		return nil, fmt.Errorf("corrupted account record for %q: %w", doc.Owner, err)
	}

	positions := doc.Positions
	if positions == nil {
		positions = make(map[string]int64)
	}

	return &Account{
		Owner:     doc.Owner,
		Cash:      cash,
		Positions: positions,
		Version:   doc.Version,
	}, nil
}
