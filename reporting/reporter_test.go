package reporting_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/outbox"
	outboxTest "github.com/labnet/testorders/outbox/test"
	"github.com/labnet/testorders/reporting"
	reportingTest "github.com/labnet/testorders/reporting/test"
	"github.com/labnet/testorders/results"
	resultsTest "github.com/labnet/testorders/results/test"
	"github.com/labnet/testorders/test"
)

var _ = Describe("Reporter", func() {
	var ctrl *gomock.Controller
	var sink *reportingTest.MockSink
	var outboxRepo *outboxTest.MockRepository
	var resultsRepo *resultsTest.MockRepository
	var registry *prometheus.Registry
	var reporter reporting.Reporter
	var result results.Result

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		sink = reportingTest.NewMockSink(ctrl)
		sink.EXPECT().Name().Return("mock").AnyTimes()
		outboxRepo = outboxTest.NewMockRepository(ctrl)
		resultsRepo = resultsTest.NewMockRepository(ctrl)
		registry = prometheus.NewRegistry()
		metrics, err := reporting.NewMetrics(registry)
		Expect(err).ToNot(HaveOccurred())

		reporter = reporting.NewReporter(reporting.ReporterParams{
			Sink:    sink,
			Outbox:  outboxRepo,
			Results: resultsRepo,
			Metrics: metrics,
			Logger:  zap.NewNop().Sugar(),
		})

		id := primitive.NewObjectID()
		result = results.Result{
			Id:               &id,
			OrderId:          primitive.NewObjectID(),
			FacilityId:       primitive.NewObjectID(),
			PatientId:        primitive.NewObjectID(),
			Outcome:          orders.OutcomePositive,
			DateTested:       time.Now().UTC(),
			CorrectionStatus: orders.CorrectionStatusNone,
		}
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Report", func() {
		It("sends the result once and does not touch the outbox", func() {
			sink.EXPECT().Send(gomock.Any(), result).Return(nil).Times(1)
			reporter.Report(context.Background(), result)

			count, err := testutil.GatherAndCount(registry, "testorders_reporting_reports_total")
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("queues a retry when the sink fails", func() {
			sink.EXPECT().Send(gomock.Any(), result).Return(fmt.Errorf("broker unavailable"))
			outboxRepo.EXPECT().Create(gomock.Any(), test.Match(func(event outbox.Event) bool {
				var payload outbox.ReportResultPayload
				Expect(outbox.DecodePayload(event, &payload)).To(Succeed())
				return event.EventType == outbox.EventTypeReportResult &&
					payload.ResultId == *result.Id &&
					payload.Sink == "mock" &&
					payload.Error == "broker unavailable"
			})).Return(nil)

			reporter.Report(context.Background(), result)
		})

		It("still queues the retry when the request context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			sink.EXPECT().Send(gomock.Any(), result).Return(context.Canceled)
			outboxRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ outbox.Event) error {
				Expect(ctx.Err()).ToNot(HaveOccurred())
				return nil
			})

			reporter.Report(ctx, result)
		})
	})

	Describe("Retry", func() {
		var event outbox.Event

		BeforeEach(func() {
			var err error
			event, err = outbox.NewEvent(outbox.EventTypeReportResult, outbox.ReportResultPayload{
				ResultId: *result.Id,
				Sink:     "mock",
			})
			Expect(err).ToNot(HaveOccurred())
			eventId := primitive.NewObjectID()
			event.Id = &eventId
		})

		It("delivers queued reports and removes them", func() {
			outboxRepo.EXPECT().List(gomock.Any(), outbox.EventTypeReportResult, 10).Return([]outbox.Event{event}, nil)
			resultsRepo.EXPECT().Get(gomock.Any(), result.Id.Hex()).Return(&result, nil)
			sink.EXPECT().Send(gomock.Any(), result).Return(nil)
			outboxRepo.EXPECT().Delete(gomock.Any(), *event.Id).Return(nil)

			delivered, err := reporter.Retry(context.Background(), 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(delivered).To(Equal(1))
		})

		It("keeps reports the sink still rejects", func() {
			outboxRepo.EXPECT().List(gomock.Any(), outbox.EventTypeReportResult, 10).Return([]outbox.Event{event}, nil)
			resultsRepo.EXPECT().Get(gomock.Any(), result.Id.Hex()).Return(&result, nil)
			sink.EXPECT().Send(gomock.Any(), result).Return(fmt.Errorf("still down"))

			delivered, err := reporter.Retry(context.Background(), 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(delivered).To(BeZero())
		})

		It("drops reports for unknown results", func() {
			outboxRepo.EXPECT().List(gomock.Any(), outbox.EventTypeReportResult, 10).Return([]outbox.Event{event}, nil)
			resultsRepo.EXPECT().Get(gomock.Any(), result.Id.Hex()).Return(nil, results.ErrNotFound)
			outboxRepo.EXPECT().Delete(gomock.Any(), *event.Id).Return(nil)

			delivered, err := reporter.Retry(context.Background(), 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(delivered).To(BeZero())
		})
	})
})
