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
	"github.com/labnet/testorders/results"
	"github.com/labnet/testorders/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (results.Repository, error) {
	repo := &repository{
		collection: db.Collection(results.CollectionName),
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
				{Key: "facilityId", Value: 1},
				{Key: "createdTime", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().
				SetName("FacilityNewestFirst"),
		},
		{
			Keys: bson.D{
				{Key: "orderId", Value: 1},
				{Key: "createdTime", Value: 1},
			},
			Options: options.Index().
				SetName("OrderHistory"),
		},
		{
			Keys: bson.D{
				{Key: "patientId", Value: 1},
				{Key: "createdTime", Value: -1},
			},
			Options: options.Index().
				SetName("PatientNewestFirst"),
		},
		{
			Keys: bson.D{
				{Key: "organizationId", Value: 1},
				{Key: "dateTested", Value: 1},
			},
			Options: options.Index().
				SetName("OrganizationDateTested"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, result *results.Result) (*results.Result, error) {
	if result.Id == nil {
		id := primitive.NewObjectID()
		result.Id = &id
	}
	result.Patient = nil
	result.CreatedTime = time.Now().UTC().Truncate(time.Millisecond)
	result.DateTested = result.DateTested.UTC()

	if _, err := r.collection.InsertOne(ctx, result); err != nil {
		return nil, store.Classify(fmt.Errorf("error creating result: %w", err))
	}

	return result, nil
}

func (r *repository) Get(ctx context.Context, id string) (*results.Result, error) {
	resultId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, results.ErrNotFound
	}

	result := &results.Result{}
	err = r.collection.FindOne(ctx, bson.M{"_id": resultId}).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, results.ErrNotFound
	} else if err != nil {
		return nil, store.Classify(fmt.Errorf("error fetching result: %w", err))
	}

	return result, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderId primitive.ObjectID) ([]*results.Result, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdTime", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"orderId": orderId}, opts)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error listing order results: %w", err))
	}

	list := make([]*results.Result, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, store.Classify(fmt.Errorf("error decoding order results: %w", err))
	}
	return list, nil
}

func (r *repository) List(ctx context.Context, filter results.Filter, pagination store.Pagination) ([]*results.Result, error) {
	pipeline := listPipeline(filter, pagination)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error listing results: %w", err))
	}

	list := make([]*results.Result, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, store.Classify(fmt.Errorf("error decoding results: %w", err))
	}
	return list, nil
}

// listPipeline joins patients after paging unless the role filter needs them first.
func listPipeline(filter results.Filter, pagination store.Pagination) bson.A {
	pipeline := bson.A{
		bson.M{"$match": matchFilter(filter)},
		bson.M{"$sort": bson.D{
			{Key: "createdTime", Value: -1},
			{Key: "_id", Value: -1},
		}},
		lookupOrder,
		matchCurrent,
	}
	if filter.Role != nil {
		pipeline = append(pipeline,
			lookupPatient,
			unwindPatient,
			bson.M{"$match": bson.M{"patient.role": *filter.Role}},
		)
	}
	if pagination.Offset > 0 {
		pipeline = append(pipeline, bson.M{"$skip": pagination.Offset})
	}
	if pagination.Limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": pagination.Limit})
	}
	if filter.Role == nil {
		pipeline = append(pipeline, lookupPatient, unwindPatient)
	}
	return append(pipeline, bson.M{"$unset": "order"})
}

func (r *repository) Count(ctx context.Context, filter results.Filter) (int, error) {
	pipeline := bson.A{
		bson.M{"$match": matchFilter(filter)},
		lookupOrder,
		matchCurrent,
	}
	if filter.Role != nil {
		pipeline = append(pipeline,
			lookupPatient,
			bson.M{"$match": bson.M{"patient.role": *filter.Role}},
		)
	}
	pipeline = append(pipeline, bson.M{"$count": "count"})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, store.Classify(fmt.Errorf("error counting results: %w", err))
	}

	var counts []struct {
		Count int `bson:"count"`
	}
	if err = cursor.All(ctx, &counts); err != nil {
		return 0, store.Classify(fmt.Errorf("error decoding results count: %w", err))
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0].Count, nil
}

func (r *repository) Metrics(ctx context.Context, filter results.Filter) ([]results.FacilityMetrics, error) {
	match := matchFilter(filter)
	match["correctionStatus"] = bson.M{"$ne": orders.CorrectionStatusRemoved}

	pipeline := bson.A{
		bson.M{"$match": match},
		lookupOrder,
		matchCurrent,
		bson.M{"$group": bson.M{
			"_id":           "$facilityId",
			"positiveCount": countOutcome(orders.OutcomePositive),
			"negativeCount": countOutcome(orders.OutcomeNegative),
			"totalCount":    bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, store.Classify(fmt.Errorf("error aggregating result metrics: %w", err))
	}

	metrics := make([]results.FacilityMetrics, 0)
	if err = cursor.All(ctx, &metrics); err != nil {
		return nil, store.Classify(fmt.Errorf("error decoding result metrics: %w", err))
	}
	return metrics, nil
}

func matchFilter(filter results.Filter) bson.M {
	match := bson.M{}
	if filter.OrganizationId != nil {
		organizationId, _ := primitive.ObjectIDFromHex(*filter.OrganizationId)
		match["organizationId"] = organizationId
	}
	if filter.FacilityIds != nil {
		match["facilityId"] = bson.M{"$in": store.ObjectIDSFromStringArray(filter.FacilityIds)}
	}
	if filter.PatientId != nil {
		patientId, _ := primitive.ObjectIDFromHex(*filter.PatientId)
		match["patientId"] = patientId
	}
	if filter.Outcome != nil {
		match["outcome"] = *filter.Outcome
	}

	dateTested := bson.M{}
	if filter.From != nil {
		dateTested["$gte"] = filter.From.UTC()
	}
	if filter.To != nil {
		dateTested["$lte"] = filter.To.UTC()
	}
	if len(dateTested) > 0 {
		match["dateTested"] = dateTested
	}

	if filter.Before != nil {
		match["$or"] = bson.A{
			bson.M{"createdTime": bson.M{"$lt": filter.Before.CreatedTime}},
			bson.M{
				"createdTime": filter.Before.CreatedTime,
				"_id":         bson.M{"$lt": filter.Before.Id},
			},
		}
	}

	return match
}

func countOutcome(outcome orders.Outcome) bson.M {
	return bson.M{
		"$sum": bson.M{
			"$cond": bson.A{
				bson.M{"$eq": bson.A{"$outcome", outcome}},
				1,
				0,
			},
		},
	}
}

// lookupOrder joins the owning order so superseded results can be dropped.
var lookupOrder = bson.M{
	"$lookup": bson.M{
		"from":         orders.CollectionName,
		"localField":   "orderId",
		"foreignField": "_id",
		"as":           "order",
	},
}

// matchCurrent keeps results the owning order still points at.
var matchCurrent = bson.M{
	"$match": bson.M{
		"$expr": bson.M{
			"$in": bson.A{"$_id", "$order.resultId"},
		},
	},
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
