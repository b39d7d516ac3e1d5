package repository_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/labnet/testorders/orders"
	ordersRepository "github.com/labnet/testorders/orders/repository"
	"github.com/labnet/testorders/patients"
	patientsRepository "github.com/labnet/testorders/patients/repository"
	patientsTest "github.com/labnet/testorders/patients/test"
	"github.com/labnet/testorders/results"
	resultsRepository "github.com/labnet/testorders/results/repository"
	resultsTest "github.com/labnet/testorders/results/test"
	"github.com/labnet/testorders/store"
	dbTest "github.com/labnet/testorders/store/test"
)

var _ = Describe("Results Repository", func() {
	var database *mongo.Database
	var repo results.Repository
	var ordersRepo orders.Repository
	var organizationId primitive.ObjectID
	var facilityId primitive.ObjectID
	var patient *patients.Patient

	BeforeEach(func() {
		var err error
		database = dbTest.GetTestDatabase()
		lifecycle := fxtest.NewLifecycle(GinkgoT())
		repo, err = resultsRepository.NewRepository(database, zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		ordersRepo, err = ordersRepository.NewRepository(database, zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		patientsRepo, err := patientsRepository.NewRepository(database, zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		lifecycle.RequireStart()

		organizationId = primitive.NewObjectID()
		facilityId = primitive.NewObjectID()
		patient, err = patientsRepo.Create(context.Background(), patientsTest.RandomPatient(organizationId, &facilityId))
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		dbTest.DropCollections(results.CollectionName, orders.CollectionName, patients.CollectionName)
	})

	seedOn := func(outcome orders.Outcome, dateTested time.Time) *results.Result {
		order, result := resultsTest.CompletedOrder(organizationId, facilityId, *patient.Id, outcome, dateTested)
		_, err := database.Collection(orders.CollectionName).InsertOne(context.Background(), order)
		Expect(err).ToNot(HaveOccurred())
		created, err := repo.Create(context.Background(), result)
		Expect(err).ToNot(HaveOccurred())
		return created
	}

	seed := func(outcome orders.Outcome) *results.Result {
		return seedOn(outcome, time.Now().UTC().Truncate(time.Millisecond))
	}

	supersede := func(original *results.Result, status orders.CorrectionStatus) *results.Result {
		correction := results.NewCorrection(*original, status, "reason")
		created, err := repo.Create(context.Background(), &correction)
		Expect(err).ToNot(HaveOccurred())
		_, err = ordersRepo.AdvanceResult(context.Background(), orders.Correction{
			OrderId:          original.OrderId,
			PreviousResultId: *original.Id,
			ResultId:         *created.Id,
			Status:           status,
			Reason:           "reason",
		})
		Expect(err).ToNot(HaveOccurred())
		return created
	}

	It("creates and fetches results", func() {
		created := seed(orders.OutcomePositive)
		Expect(created.CreatedTime).ToNot(BeZero())

		fetched, err := repo.Get(context.Background(), created.Id.Hex())
		Expect(err).ToNot(HaveOccurred())
		Expect(fetched.Outcome).To(Equal(orders.OutcomePositive))
		Expect(fetched.Survey).To(Equal(created.Survey))
	})

	It("returns not found for unknown and malformed ids", func() {
		_, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
		Expect(err).To(MatchError(results.ErrNotFound))
		_, err = repo.Get(context.Background(), "not-an-id")
		Expect(err).To(MatchError(results.ErrNotFound))
	})

	It("keeps the correction chain of an order", func() {
		original := seed(orders.OutcomeNegative)
		correction := supersede(original, orders.CorrectionStatusRemoved)

		history, err := repo.ListByOrder(context.Background(), original.OrderId)
		Expect(err).ToNot(HaveOccurred())
		Expect(history).To(HaveLen(2))
		Expect(history[0].Id).To(Equal(original.Id))
		Expect(history[1].Supersedes).To(Equal(original.Id))
		Expect(history[1].Id).To(Equal(correction.Id))
	})

	It("lists only current results", func() {
		first := seed(orders.OutcomeNegative)
		seed(orders.OutcomePositive)
		correction := supersede(first, orders.CorrectionStatusRemoved)

		list, err := repo.List(context.Background(), results.Filter{FacilityIds: []string{facilityId.Hex()}}, store.DefaultPagination())
		Expect(err).ToNot(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].Id).To(Equal(correction.Id))
		Expect(list[0].Patient).ToNot(BeNil())

		count, err := repo.Count(context.Background(), results.Filter{FacilityIds: []string{facilityId.Hex()}})
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(2))
	})

	It("excludes removed results from metrics", func() {
		first := seed(orders.OutcomePositive)
		seed(orders.OutcomePositive)
		seed(orders.OutcomeNegative)
		supersede(first, orders.CorrectionStatusRemoved)

		metrics, err := repo.Metrics(context.Background(), results.Filter{FacilityIds: []string{facilityId.Hex()}})
		Expect(err).ToNot(HaveOccurred())
		Expect(metrics).To(HaveLen(1))
		Expect(metrics[0].FacilityId).To(Equal(facilityId))
		Expect(metrics[0].PositiveCount).To(Equal(1))
		Expect(metrics[0].NegativeCount).To(Equal(1))
		Expect(metrics[0].TotalCount).To(Equal(2))
	})

	Describe("Filters", func() {
		var filter results.Filter

		BeforeEach(func() {
			filter = results.Filter{FacilityIds: []string{facilityId.Hex()}}
			seeds := []struct {
				day     int
				outcome orders.Outcome
			}{
				{1, orders.OutcomePositive},
				{1, orders.OutcomeNegative},
				{2, orders.OutcomeUndetermined},
				{2, orders.OutcomeNegative},
				{3, orders.OutcomePositive},
				{4, orders.OutcomeUndetermined},
				{4, orders.OutcomeNegative},
				{5, orders.OutcomeUndetermined},
				{5, orders.OutcomePositive},
				{6, orders.OutcomeNegative},
				{6, orders.OutcomeUndetermined},
			}
			for _, s := range seeds {
				seedOn(s.outcome, time.Date(2021, 6, s.day, 12, 0, 0, 0, time.UTC))
			}
		})

		It("filters by outcome", func() {
			positive := orders.OutcomePositive
			filter.Outcome = &positive

			list, err := repo.List(context.Background(), filter, store.DefaultPagination().WithLimit(20))
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(3))
		})

		It("filters by an inclusive date range", func() {
			from := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(2021, 6, 3, 23, 59, 59, 999000000, time.UTC)
			filter.From = &from
			filter.To = &to

			list, err := repo.List(context.Background(), filter, store.DefaultPagination().WithLimit(20))
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(5))

			count, err := repo.Count(context.Background(), filter)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(5))
		})

		It("pages newest first", func() {
			var sizes []int
			var previous *results.Result
			for page := 0; page < 4; page++ {
				list, err := repo.List(context.Background(), filter, store.Pagination{Offset: page * 5, Limit: 5})
				Expect(err).ToNot(HaveOccurred())
				sizes = append(sizes, len(list))
				for _, result := range list {
					if previous != nil {
						Expect(result.CreatedTime.After(previous.CreatedTime)).To(BeFalse())
					}
					previous = result
				}
			}
			Expect(sizes).To(Equal([]int{5, 5, 1, 0}))
		})
	})
})
