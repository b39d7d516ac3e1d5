package delivery

import (
	"context"

	"github.com/labnet/testorders/links"
	"github.com/labnet/testorders/patients"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

//go:generate go tool mockgen -source=./delivery.go -destination=./test/mock_delivery.go -package test

// Transport sends the communication link of a result to the patient.
type Transport interface {
	SendSMS(ctx context.Context, linkId string) error
	SendEmail(ctx context.Context, linkId string) error
}

type Dispatcher interface {
	// Dispatch notifies the patient according to preference and returns true when every
	// attempted channel succeeded, or when nothing was attempted.
	Dispatch(ctx context.Context, preference patients.DeliveryPreference, link links.Link) bool
}
