package outbox

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CollectionName = "outbox"

// EventType identifies the kind of event
type EventType string

const (
	EventTypeReportResult EventType = "reportResult"
)

// Event is the common envelope for all outbox events
type Event struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty"`
	EventType   EventType           `bson:"eventType"`
	CreatedTime time.Time           `bson:"createdTime"`
	Payload     bson.Raw            `bson:"payload"`
}

// ReportResultPayload is the payload of reportResult events, recorded when a result
// could not be forwarded to the reporting sink.
type ReportResultPayload struct {
	ResultId primitive.ObjectID `bson:"resultId"`
	Sink     string             `bson:"sink"`
	Error    string             `bson:"error"`
}

//go:generate go tool mockgen -source=./outbox.go -destination=./test/mock_outbox.go -package test

type Repository interface {
	Create(ctx context.Context, event Event) error
	// List returns up to limit events of the given type, oldest first.
	List(ctx context.Context, eventType EventType, limit int) ([]Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Initialize(ctx context.Context) error
}

// NewEvent creates an Event from a typed payload
func NewEvent(eventType EventType, payload interface{}) (Event, error) {
	raw, err := bson.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("error marshaling outbox event payload: %w", err)
	}

	return Event{
		EventType:   eventType,
		CreatedTime: time.Now().UTC(),
		Payload:     bson.Raw(raw),
	}, nil
}

// DecodePayload unmarshals the payload of event into payload.
func DecodePayload(event Event, payload interface{}) error {
	if err := bson.Unmarshal(event.Payload, payload); err != nil {
		return fmt.Errorf("error unmarshaling outbox event payload: %w", err)
	}
	return nil
}
