package reporting

import (
	"context"
	"fmt"

	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/results"
)

const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkSQS   = "sqs"
)

var ErrInvalidSinkConfig = fmt.Errorf("%w: invalid reporting sink configuration", errors.InternalServerError)

//go:generate go tool mockgen -source=./reporting.go -destination=./test/mock_reporting.go -package test

// Sink forwards one immutable result record to the surveillance pipeline.
type Sink interface {
	Name() string
	Send(ctx context.Context, result results.Result) error
}

type Reporter interface {
	// Report forwards a newly persisted result. Failures are queued for retry and never returned.
	Report(ctx context.Context, result results.Result)
	// Retry replays up to limit queued reports and returns how many were delivered.
	Retry(ctx context.Context, limit int) (int, error)
}
