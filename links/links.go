package links

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

	errs "github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/store"
)

const CollectionName = "patient_links"

var ErrNotFound = fmt.Errorf("patient link %w", errs.NotFound)

// Link is the communication link a patient uses to retrieve the results of an order.
type Link struct {
	Id          string             `bson:"_id" json:"id"`
	OrderId     primitive.ObjectID `bson:"orderId" json:"orderId"`
	PatientId   primitive.ObjectID `bson:"patientId" json:"patientId"`
	FacilityId  primitive.ObjectID `bson:"facilityId" json:"facilityId"`
	CreatedTime time.Time          `bson:"createdTime" json:"createdTime"`
}

type Repository interface {
	// Ensure returns the link of the order, creating it from link if it does not exist yet.
	Ensure(ctx context.Context, link Link) (*Link, error)
	GetByOrder(ctx context.Context, orderId primitive.ObjectID) (*Link, error)
}

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(CollectionName),
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
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("UniqueOrderId"),
		},
	})
	return err
}

func (r *repository) Ensure(ctx context.Context, link Link) (*Link, error) {
	selector := bson.M{"orderId": link.OrderId}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":         link.Id,
			"patientId":   link.PatientId,
			"facilityId":  link.FacilityId,
			"createdTime": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	result := &Link{}
	if err := r.collection.FindOneAndUpdate(ctx, selector, update, opts).Decode(result); err != nil {
		return nil, store.Classify(fmt.Errorf("error ensuring patient link: %w", err))
	}
	return result, nil
}

func (r *repository) GetByOrder(ctx context.Context, orderId primitive.ObjectID) (*Link, error) {
	result := &Link{}
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderId}).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching patient link: %w", err))
	}
	return result, nil
}
