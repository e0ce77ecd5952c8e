package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("sessions"),
	}
}

func (m *MongoRepository) GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap domain.Snapshot

	err := m.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snap, nil
}

// UpsertSnapshot replaces the cart and wishlist of the session document,
// creating it on first save. The id and creation time are only written on
// insert.
func (m *MongoRepository) UpsertSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	now := time.Now().UTC()
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	filter := bson.M{"session_id": snapshot.SessionID}
	update := bson.M{
		"$set": bson.M{
			"cart":       snapshot.Cart,
			"wishlist":   snapshot.Wishlist,
			"updated_at": snapshot.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        snapshot.ID,
			"created_at": snapshot.CreatedAt,
		},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(SnapshotTTL / time.Second)),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
