package repository

import (
	"context"
	"fmt"
	"time"

	"labbook/pkg/config"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const ExtensionCollectionName = "ExtensionRequests"

// ExtensionRepository records extension requests as they are evaluated.
// Deciding them is the approval flow's job; the scheduler only files them.
type ExtensionRepository interface {
	Create(ctx context.Context, ext *model.ExtensionRequest) (*model.ExtensionRequest, error)
}

type mongoExtensionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoExtensionRepository(cfg *config.Config) ExtensionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExtensionRepository{
		cfg:        cfg,
		collection: db.Collection(ExtensionCollectionName),
	}
}

func (r *mongoExtensionRepository) Create(ctx context.Context, ext *model.ExtensionRequest) (*model.ExtensionRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if ext.ID == "" {
		ext.ID = primitive.NewObjectID().Hex()
	}
	ext.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, ext); err != nil {
		return nil, fmt.Errorf("failed to create extension request: %w", err)
	}

	return ext, nil
}
