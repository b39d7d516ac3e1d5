package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/facilities"
	"github.com/labnet/testorders/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (facilities.Repository, error) {
	repo := &repository{
		collection:    db.Collection(facilities.CollectionName),
		organizations: db.Collection(facilities.OrganizationCollectionName),
		logger:        logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection    *mongo.Collection
	organizations *mongo.Collection
	logger        *zap.SugaredLogger
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organizationId", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueOrganizationFacilityName"),
		},
	})
	if err != nil {
		return err
	}

	_, err = r.organizations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "externalId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueExternalId"),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, id string) (*facilities.Facility, error) {
	facilityId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, facilities.ErrNotFound
	}

	facility := &facilities.Facility{}
	err = r.collection.FindOne(ctx, bson.M{"_id": facilityId}).Decode(facility)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, facilities.ErrNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching facility: %w", err))
	}

	return facility, nil
}

func (r *repository) List(ctx context.Context, organizationId string) ([]*facilities.Facility, error) {
	orgId, err := primitive.ObjectIDFromHex(organizationId)
	if err != nil {
		return nil, facilities.ErrOrganizationNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"organizationId": orgId}, opts)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error listing facilities: %w", err))
	}

	list := make([]*facilities.Facility, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, store.Classify(fmt.Errorf("error decoding facilities list: %w", err))
	}

	return list, nil
}

func (r *repository) Create(ctx context.Context, facility *facilities.Facility) (*facilities.Facility, error) {
	facility.Id = nil
	facility.CreatedTime = time.Now().UTC()

	res, err := r.collection.InsertOne(ctx, facility)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error creating facility: %w", err))
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) GetOrganization(ctx context.Context, id string) (*facilities.Organization, error) {
	orgId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, facilities.ErrOrganizationNotFound
	}

	organization := &facilities.Organization{}
	err = r.organizations.FindOne(ctx, bson.M{"_id": orgId}).Decode(organization)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, facilities.ErrOrganizationNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching organization: %w", err))
	}

	return organization, nil
}

func (r *repository) CreateOrganization(ctx context.Context, organization *facilities.Organization) (*facilities.Organization, error) {
	organization.Id = nil
	organization.CreatedTime = time.Now().UTC()

	res, err := r.organizations.InsertOne(ctx, organization)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error creating organization: %w", err))
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.GetOrganization(ctx, id.Hex())
}
