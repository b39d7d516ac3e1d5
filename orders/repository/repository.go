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

	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (orders.Repository, error) {
	repo := &repository{
		collection: db.Collection(orders.CollectionName),
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
				{Key: "patientId", Value: 1},
				{Key: "facilityId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": orders.StatusPending}).
				SetName("UniquePendingOrder"),
		},
		{
			Keys: bson.D{
				{Key: "facilityId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "createdTime", Value: 1},
			},
			Options: options.Index().
				SetName("FacilityQueue"),
		},
		{
			Keys: bson.D{
				{Key: "patientId", Value: 1},
				{Key: "facilityId", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().
				SetName("PatientFacilityStatus"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, order *orders.Order) (*orders.Order, error) {
	now := time.Now().UTC()
	order.Id = nil
	order.Status = orders.StatusPending
	order.ResultId = nil
	order.LinkId = nil
	order.CorrectionStatus = nil
	order.CorrectionReason = nil
	order.Patient = nil
	order.Revision = 0
	order.CreatedTime = now
	order.UpdatedTime = now

	res, err := r.collection.InsertOne(ctx, order)
	if store.IsDuplicateKeyError(err) {
		return nil, orders.ErrDuplicateOrder
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error creating order: %w", err))
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) Get(ctx context.Context, id string) (*orders.Order, error) {
	orderId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, orders.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": orderId}, orders.ErrNotFound)
}

func (r *repository) FindPending(ctx context.Context, patientId, facilityId string) (*orders.Order, error) {
	patientObjId, err := primitive.ObjectIDFromHex(patientId)
	if err != nil {
		return nil, orders.ErrNoPendingOrder
	}
	facilityObjId, err := primitive.ObjectIDFromHex(facilityId)
	if err != nil {
		return nil, orders.ErrNoPendingOrder
	}

	selector := bson.M{
		"patientId":  patientObjId,
		"facilityId": facilityObjId,
		"status":     orders.StatusPending,
	}
	return r.findOne(ctx, selector, orders.ErrNoPendingOrder)
}

func (r *repository) ListQueue(ctx context.Context, facilityId string) ([]*orders.Order, error) {
	facilityObjId, err := primitive.ObjectIDFromHex(facilityId)
	if err != nil {
		return []*orders.Order{}, nil
	}

	pipeline := bson.A{
		bson.M{"$match": bson.M{
			"facilityId": facilityObjId,
			"status":     orders.StatusPending,
		}},
		bson.M{"$sort": bson.D{
			{Key: "createdTime", Value: 1},
			{Key: "_id", Value: 1},
		}},
		lookupPatient,
		unwindPatient,
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error listing queue: %w", err))
	}

	queue := make([]*orders.Order, 0)
	if err = cursor.All(ctx, &queue); err != nil {
		return nil, store.Classify(fmt.Errorf("error decoding queue: %w", err))
	}

	return queue, nil
}

func (r *repository) UpdatePending(ctx context.Context, id string, update orders.PendingUpdate) (*orders.Order, error) {
	orderId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, orders.ErrNoPendingOrder
	}

	set := bson.M{
		"updatedTime": time.Now().UTC(),
	}
	if update.DeviceSpecimenId != nil {
		set["deviceSpecimenId"] = *update.DeviceSpecimenId
	}
	if update.Outcome != nil {
		set["outcome"] = *update.Outcome
	}
	if update.DateTested != nil {
		set["dateTested"] = update.DateTested.UTC()
	}
	if update.Survey != nil {
		set["survey"] = *update.Survey
	}

	selector := bson.M{
		"_id":      orderId,
		"status":   orders.StatusPending,
		"revision": update.Revision,
	}
	mutation := bson.M{
		"$set": set,
		"$inc": bson.M{"revision": 1},
	}

	order, err := r.findOneAndUpdate(ctx, selector, mutation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.pendingMismatch(ctx, orderId, update.Revision)
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error updating pending order: %w", err))
	}

	return order, nil
}

func (r *repository) Complete(ctx context.Context, id primitive.ObjectID, completion orders.Completion) (*orders.Order, error) {
	selector := bson.M{
		"_id":    id,
		"status": orders.StatusPending,
	}
	mutation := bson.M{
		"$set": bson.M{
			"status":           orders.StatusCompleted,
			"deviceSpecimenId": completion.DeviceSpecimenId,
			"outcome":          completion.Outcome,
			"dateTested":       completion.DateTested.UTC(),
			"resultId":         completion.ResultId,
			"linkId":           completion.LinkId,
			"updatedTime":      time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	order, err := r.findOneAndUpdate(ctx, selector, mutation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, orders.ErrNoPendingOrder
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error completing order: %w", err))
	}

	return order, nil
}

func (r *repository) Cancel(ctx context.Context, id string) (*orders.Order, error) {
	orderId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, orders.ErrNoPendingOrder
	}

	selector := bson.M{
		"_id":    orderId,
		"status": orders.StatusPending,
	}
	mutation := bson.M{
		"$set": bson.M{
			"status":      orders.StatusCanceled,
			"updatedTime": time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	order, err := r.findOneAndUpdate(ctx, selector, mutation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := r.Get(ctx, id); errors.Is(err, orders.ErrNotFound) {
			return nil, orders.ErrNoPendingOrder
		} else if err != nil {
			return nil, err
		}
		return nil, orders.ErrOrderNotPending
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error canceling order: %w", err))
	}

	return order, nil
}

func (r *repository) AdvanceResult(ctx context.Context, correction orders.Correction) (*orders.Order, error) {
	selector := bson.M{
		"_id":      correction.OrderId,
		"status":   orders.StatusCompleted,
		"resultId": correction.PreviousResultId,
	}
	mutation := bson.M{
		"$set": bson.M{
			"resultId":         correction.ResultId,
			"correctionStatus": correction.Status,
			"correctionReason": correction.Reason,
			"updatedTime":      time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	order, err := r.findOneAndUpdate(ctx, selector, mutation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := r.Get(ctx, correction.OrderId.Hex()); err != nil {
			return nil, err
		}
		return nil, orders.ErrResultSuperseded
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error advancing order result: %w", err))
	}

	return order, nil
}

func (r *repository) HasPriorResult(ctx context.Context, patientId, facilityId, excludeOrderId primitive.ObjectID) (bool, error) {
	selector := bson.M{
		"_id":              bson.M{"$ne": excludeOrderId},
		"patientId":        patientId,
		"facilityId":       facilityId,
		"status":           orders.StatusCompleted,
		"correctionStatus": bson.M{"$ne": orders.CorrectionStatusRemoved},
	}

	count, err := r.collection.CountDocuments(ctx, selector, options.Count().SetLimit(1))
	if err != nil {
		return false, store.Classify(fmt.Errorf("error counting prior results: %w", err))
	}
	return count > 0, nil
}

func (r *repository) findOne(ctx context.Context, selector bson.M, notFound error) (*orders.Order, error) {
	order := &orders.Order{}
	err := r.collection.FindOne(ctx, selector).Decode(order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching order: %w", err))
	}
	return order, nil
}

func (r *repository) findOneAndUpdate(ctx context.Context, selector bson.M, mutation bson.M) (*orders.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	order := &orders.Order{}
	if err := r.collection.FindOneAndUpdate(ctx, selector, mutation, opts).Decode(order); err != nil {
		return nil, err
	}
	return order, nil
}

// pendingMismatch explains why an update of a pending order matched nothing.
func (r *repository) pendingMismatch(ctx context.Context, orderId primitive.ObjectID, revision int) error {
	order, err := r.Get(ctx, orderId.Hex())
	if errors.Is(err, orders.ErrNotFound) {
		return orders.ErrNoPendingOrder
	} else if err != nil {
		return err
	}
	if order.Status != orders.StatusPending {
		return orders.ErrOrderNotPending
	}
	if order.Revision != revision {
		return orders.ErrConcurrentUpdate
	}
	return orders.ErrNoPendingOrder
}

var lookupPatient = bson.M{
	"$lookup": bson.M{
		"from":         patients.CollectionName,
		"localField":   "patientId",
		"foreignField": "_id",
		"as":           "patient",
	},
}

var unwindPatient = bson.M{
	"$unwind": bson.M{
		"path":                       "$patient",
		"preserveNullAndEmptyArrays": true,
	},
}
