package repository

import (
	"context"
	"errors"
	"fmt"

	schederrors "labbook/internal/scheduling/errors"
	"labbook/pkg/config"
	"labbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const SiteCollectionName = "Sites"

type SiteRepository interface {
	FindByID(ctx context.Context, id string) (*model.Site, error)
}

type mongoSiteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSiteRepository(cfg *config.Config) SiteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSiteRepository{
		cfg:        cfg,
		collection: db.Collection(SiteCollectionName),
	}
}

func (r *mongoSiteRepository) FindByID(ctx context.Context, id string) (*model.Site, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schederrors.ErrInvalidID, id)
	}

	var site model.Site
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&site)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, schederrors.ErrSiteNotFound
		}
		return nil, fmt.Errorf("failed to find site: %w", err)
	}

	return &site, nil
}
