package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	schederrors "labbook/internal/scheduling/errors"
	"labbook/pkg/config"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const LabCollectionName = "Labs"

type LabRepository interface {
	FindByID(ctx context.Context, id string) (*model.Lab, error)
}

type mongoLabRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLabRepository(cfg *config.Config) LabRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLabRepository{
		cfg:        cfg,
		collection: db.Collection(LabCollectionName),
	}
}

func (r *mongoLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schederrors.ErrInvalidID, id)
	}

	var lab model.Lab
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lab)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, schederrors.ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to find lab: %w", err)
	}

	return &lab, nil
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction. A SessionContext cannot be wrapped without breaking
// transaction semantics, so it is returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
