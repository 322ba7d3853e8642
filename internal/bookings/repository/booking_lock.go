package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"villacal/pkg/config"
)

const LockCollectionName = "Booking_locks"

// SlotLock is an advisory lock held while a booking write is in flight.
// The unique _id insert is the store-enforced backstop for the
// check-then-act window between overlap scan and write; a TTL index on
// expires_at reaps locks orphaned by a crash.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type SlotLockRepository interface {
	Create(ctx context.Context, lock *SlotLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create inserts the lock; a duplicate key error means another request
// holds it.
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *SlotLock) error {
	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
