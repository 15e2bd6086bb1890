package mongo

import (
	"context"
	"fmt"

	"labbook/internal/scheduling/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	LabsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "site_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		// Backs the conflict and calendar queries.
		{Keys: bson.D{
			{Key: "lab_id", Value: 1},
			{Key: "site_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "scheduled_start", Value: 1},
		}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	}

	// Locks left behind by a crashed approval are reaped by Mongo once
	// expires_at passes. ExpireAfterSeconds 0 means the document's own
	// expires_at is the deadline.
	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	ExtensionRequestsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
)

// CollectionIndexes maps each collection the scheduling service touches to the
// indexes it relies on, keyed by the repository collection names so the two
// cannot drift apart.
var CollectionIndexes = map[string][]mongo.IndexModel{
	repository.LabCollectionName:       LabsIndexes,
	repository.BookingCollectionName:   BookingsIndexes,
	repository.SlotLockCollectionName:  SlotLocksIndexes,
	repository.ExtensionCollectionName: ExtensionRequestsIndexes,
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running labbook Mongo migrations on database: %s\n", dbName)

	for name, indexes := range CollectionIndexes {
		if err := ensureIndexes(ctx, db, name, indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
