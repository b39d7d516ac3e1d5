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

	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (patients.Repository, error) {
	repo := &repository{
		collection: db.Collection(patients.CollectionName),
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organizationId", Value: 1},
				{Key: "facilityId", Value: 1},
			},
			Options: options.Index().
				SetName("OrganizationFacility"),
		},
		{
			Keys: bson.D{
				{Key: "organizationId", Value: 1},
				{Key: "role", Value: 1},
			},
			Options: options.Index().
				SetName("OrganizationRole"),
		},
	})
	return err
}

func (r *repository) Get(ctx context.Context, id string) (*patients.Patient, error) {
	patientId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, patients.ErrNotFound
	}

	patient := &patients.Patient{}
	err = r.collection.FindOne(ctx, bson.M{"_id": patientId}).Decode(patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, patients.ErrNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching patient: %w", err))
	}

	return patient, nil
}

func (r *repository) Create(ctx context.Context, patient *patients.Patient) (*patients.Patient, error) {
	now := time.Now().UTC()
	patient.Id = nil
	patient.CreatedTime = now
	patient.UpdatedTime = now
	if patient.Role == "" {
		patient.Role = patients.RoleUnknown
	}
	if patient.DeliveryPreference == "" {
		patient.DeliveryPreference = patients.DeliveryPreferenceNone
	}

	res, err := r.collection.InsertOne(ctx, patient)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error creating patient: %w", err))
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) UpdateDeliveryPreference(ctx context.Context, id string, preference patients.DeliveryPreference) (*patients.Patient, error) {
	patientId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, patients.ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"deliveryPreference": preference,
			"updatedTime":        time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	patient := &patients.Patient{}
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": patientId}, update, opts).Decode(patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, patients.ErrNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error updating delivery preference: %w", err))
	}

	r.logger.Infow("updated delivery preference", "patientId", id, "deliveryPreference", preference)
	return patient, nil
}
