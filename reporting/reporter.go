package reporting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/outbox"
	"github.com/labnet/testorders/results"
)

const (
	outcomeSent    = "sent"
	outcomeQueued  = "queued"
	outcomeDropped = "dropped"
)

type ReporterParams struct {
	fx.In

	Sink    Sink
	Outbox  outbox.Repository
	Results results.Repository
	Metrics *Metrics
	Logger  *zap.SugaredLogger
}

func NewReporter(p ReporterParams) Reporter {
	return &reporter{
		sink:    p.Sink,
		outbox:  p.Outbox,
		results: p.Results,
		metrics: p.Metrics,
		logger:  p.Logger,
	}
}

type reporter struct {
	sink    Sink
	outbox  outbox.Repository
	results results.Repository
	metrics *Metrics
	logger  *zap.SugaredLogger
}

func (r *reporter) Report(ctx context.Context, result results.Result) {
	err := r.sink.Send(ctx, result)
	if err == nil {
		r.metrics.observe(r.sink.Name(), outcomeSent)
		return
	}

	r.logger.Warnw("unable to report result, queueing for retry", "sink", r.sink.Name(), "resultId", result.Id, zap.Error(err))

	// The request context may already be done, the retry record must still be written.
	ctx = context.WithoutCancel(ctx)
	if err := r.queue(ctx, result, err); err != nil {
		r.metrics.observe(r.sink.Name(), outcomeDropped)
		r.logger.Errorw("unable to queue result report", "sink", r.sink.Name(), "resultId", result.Id, zap.Error(err))
		return
	}
	r.metrics.observe(r.sink.Name(), outcomeQueued)
}

func (r *reporter) queue(ctx context.Context, result results.Result, cause error) error {
	if result.Id == nil {
		return fmt.Errorf("result id is required")
	}

	event, err := outbox.NewEvent(outbox.EventTypeReportResult, outbox.ReportResultPayload{
		ResultId: *result.Id,
		Sink:     r.sink.Name(),
		Error:    cause.Error(),
	})
	if err != nil {
		return err
	}
	return r.outbox.Create(ctx, event)
}

func (r *reporter) Retry(ctx context.Context, limit int) (int, error) {
	events, err := r.outbox.List(ctx, outbox.EventTypeReportResult, limit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, event := range events {
		var payload outbox.ReportResultPayload
		if err := outbox.DecodePayload(event, &payload); err != nil {
			return delivered, err
		}

		result, err := r.results.Get(ctx, payload.ResultId.Hex())
		if errors.Is(err, results.ErrNotFound) {
			r.logger.Warnw("dropping report for unknown result", "resultId", payload.ResultId.Hex())
			if err := r.outbox.Delete(ctx, *event.Id); err != nil {
				return delivered, err
			}
			continue
		} else if err != nil {
			return delivered, err
		}

		if err := r.sink.Send(ctx, *result); err != nil {
			r.logger.Warnw("retry of result report failed", "sink", r.sink.Name(), "resultId", payload.ResultId.Hex(), zap.Error(err))
			continue
		}
		r.metrics.observe(r.sink.Name(), outcomeSent)

		if err := r.outbox.Delete(ctx, *event.Id); err != nil {
			return delivered, err
		}
		delivered++
	}

	return delivered, nil
}
