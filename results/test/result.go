package test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/orders"
	ordersTest "github.com/labnet/testorders/orders/test"
	"github.com/labnet/testorders/results"
)

// CompletedOrder returns a completed order and the result it points at.
func CompletedOrder(organizationId, facilityId, patientId primitive.ObjectID, outcome orders.Outcome, dateTested time.Time) (*orders.Order, *results.Result) {
	orderId := primitive.NewObjectID()
	resultId := primitive.NewObjectID()
	none := orders.CorrectionStatusNone
	now := time.Now().UTC().Truncate(time.Millisecond)

	order := ordersTest.RandomOrder(organizationId, facilityId, patientId)
	order.Id = &orderId
	order.Status = orders.StatusCompleted
	order.Outcome = &outcome
	order.DateTested = &dateTested
	order.ResultId = &resultId
	order.CorrectionStatus = &none
	order.CreatedTime = now
	order.UpdatedTime = now

	result := results.NewResult(*order, false)
	result.Id = &resultId
	return order, &result
}
