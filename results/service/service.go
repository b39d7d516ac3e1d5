package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/facilities"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/results"
	"github.com/labnet/testorders/store"
)

const (
	ExportSheetName = "Results"
	exportPageSize  = 500
)

var (
	ErrInvalidDateRange = fmt.Errorf("%w: the start date must not be after the end date", errors.BadRequest)
	ErrInvalidPage      = fmt.Errorf("%w: page and page size must not be negative", errors.BadRequest)
)

// Query selects results of one facility. All criteria are combined with AND and date bounds
// are inclusive.
type Query struct {
	FacilityId string
	PatientId  *string
	Outcome    *orders.Outcome
	Role       *patients.Role
	From       *time.Time
	To         *time.Time

	// Page is zero based.
	Page     int
	PageSize int
	// Before continues a listing after the last result of the previous page. Page is ignored when set.
	Before *results.Cursor
}

//go:generate go tool mockgen -source=./service.go -destination=./test/mock_service.go -package test

type Service interface {
	// Get returns a result by id, including superseded results.
	Get(ctx context.Context, id string) (*results.Result, error)
	// History returns the correction chain of the order a result belongs to, oldest first.
	History(ctx context.Context, id string) ([]*results.Result, error)
	List(ctx context.Context, query Query) ([]*results.Result, error)
	Count(ctx context.Context, query Query) (int, error)
	// ListForPatient returns the results of a patient across the facilities the caller can read.
	ListForPatient(ctx context.Context, patientId string, page, pageSize int) ([]*results.Result, error)
	OrganizationMetrics(ctx context.Context, from, to *time.Time) (*results.OrganizationMetrics, error)
	// TopLevelMetrics aggregates one facility, or the caller's organization when facilityId is nil.
	TopLevelMetrics(ctx context.Context, facilityId *string, from, to *time.Time) (*results.Metrics, error)
	Export(ctx context.Context, query Query) (*xlsx.File, error)
}

type Params struct {
	fx.In

	Config     *config.Config
	Resolver   access.Resolver
	Facilities facilities.Repository
	Patients   patients.Repository
	Results    results.Repository
	Logger     *zap.SugaredLogger
}

func NewService(p Params) (Service, error) {
	return &service{
		config:     p.Config,
		resolver:   p.Resolver,
		facilities: p.Facilities,
		patients:   p.Patients,
		results:    p.Results,
		logger:     p.Logger,
	}, nil
}

type service struct {
	config     *config.Config
	resolver   access.Resolver
	facilities facilities.Repository
	patients   patients.Repository
	results    results.Repository
	logger     *zap.SugaredLogger
}

func (s *service) Get(ctx context.Context, id string) (*results.Result, error) {
	result, err := s.results.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Facility(result.FacilityId.Hex())); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) History(ctx context.Context, id string) ([]*results.Result, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.results.ListByOrder(ctx, result.OrderId)
}

func (s *service) List(ctx context.Context, query Query) ([]*results.Result, error) {
	if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Facility(query.FacilityId)); err != nil {
		return nil, err
	}
	filter, err := newFilter(query)
	if err != nil {
		return nil, err
	}
	pagination, err := s.pagination(query.Page, query.PageSize)
	if err != nil {
		return nil, err
	}
	if query.Before != nil {
		filter.Before = query.Before
		pagination.Offset = 0
	}

	return s.results.List(ctx, filter, pagination)
}

func (s *service) Count(ctx context.Context, query Query) (int, error) {
	if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Facility(query.FacilityId)); err != nil {
		return 0, err
	}
	filter, err := newFilter(query)
	if err != nil {
		return 0, err
	}
	return s.results.Count(ctx, filter)
}

func (s *service) ListForPatient(ctx context.Context, patientId string, page, pageSize int) ([]*results.Result, error) {
	accessible, err := s.resolver.AccessibleFacilities(ctx, access.PermissionReadResultList)
	if err != nil {
		return nil, err
	}
	if len(accessible) == 0 {
		return nil, access.ErrUnauthorized
	}

	patient, err := s.patients.Get(ctx, patientId)
	if err != nil {
		return nil, err
	}
	if patient.FacilityId != nil && !slices.Contains(accessible, patient.FacilityId.Hex()) {
		return nil, access.ErrUnauthorized
	}

	pagination, err := s.pagination(page, pageSize)
	if err != nil {
		return nil, err
	}

	return s.results.List(ctx, results.Filter{
		PatientId:   &patientId,
		FacilityIds: accessible,
	}, pagination)
}

func (s *service) OrganizationMetrics(ctx context.Context, from, to *time.Time) (*results.OrganizationMetrics, error) {
	caller, ok := access.CallerFromContext(ctx)
	if !ok {
		return nil, access.ErrUnauthorized
	}
	organizationId := caller.OrganizationId
	if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Organization(organizationId)); err != nil {
		return nil, err
	}
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}

	list, err := s.facilities.List(ctx, organizationId)
	if err != nil {
		return nil, err
	}
	perFacility, err := s.results.Metrics(ctx, results.Filter{
		OrganizationId: &organizationId,
		From:           from,
		To:             to,
	})
	if err != nil {
		return nil, err
	}

	counted := make(map[primitive.ObjectID]results.Metrics, len(perFacility))
	for _, m := range perFacility {
		counted[m.FacilityId] = m.Metrics
	}

	metrics := &results.OrganizationMetrics{
		Facilities: make([]results.FacilityMetrics, 0, len(list)),
	}
	for _, facility := range list {
		m := counted[*facility.Id]
		metrics.Facilities = append(metrics.Facilities, results.FacilityMetrics{
			FacilityId: *facility.Id,
			Metrics:    m,
		})
		metrics.Metrics = metrics.Metrics.Add(m)
	}

	return metrics, nil
}

func (s *service) TopLevelMetrics(ctx context.Context, facilityId *string, from, to *time.Time) (*results.Metrics, error) {
	filter := results.Filter{From: from, To: to}
	if facilityId != nil {
		if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Facility(*facilityId)); err != nil {
			return nil, err
		}
		filter.FacilityIds = []string{*facilityId}
	} else {
		caller, ok := access.CallerFromContext(ctx)
		if !ok {
			return nil, access.ErrUnauthorized
		}
		if err := s.resolver.Authorize(ctx, access.PermissionReadResultList, access.Organization(caller.OrganizationId)); err != nil {
			return nil, err
		}
		filter.OrganizationId = &caller.OrganizationId
	}
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}

	perFacility, err := s.results.Metrics(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := results.Metrics{}
	for _, m := range perFacility {
		total = total.Add(m.Metrics)
	}
	return &total, nil
}

var exportHeader = []string{
	"Result ID",
	"Order ID",
	"Patient",
	"Role",
	"Date Tested",
	"Outcome",
	"Device Specimen",
	"Correction Status",
	"Correction Reason",
	"Prior Tests",
}

// Export writes every result matching query into a spreadsheet, newest first.
func (s *service) Export(ctx context.Context, query Query) (*xlsx.File, error) {
	report := xlsx.NewFile()
	sh, err := report.AddSheet(ExportSheetName)
	if err != nil {
		return nil, err
	}

	header := sh.AddRow()
	for _, title := range exportHeader {
		header.AddCell().SetValue(title)
	}

	query.Page = 0
	query.PageSize = exportPageSize
	if s.config.MaxPageSize > 0 && s.config.MaxPageSize < exportPageSize {
		query.PageSize = s.config.MaxPageSize
	}
	query.Before = nil
	for {
		page, err := s.List(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, result := range page {
			addExportRow(sh, result)
		}
		if len(page) < query.PageSize {
			break
		}
		cursor := page[len(page)-1].Cursor()
		query.Before = &cursor
	}

	return report, nil
}

func addExportRow(sh *xlsx.Sheet, result *results.Result) {
	title := cases.Title(language.English)

	row := sh.AddRow()
	row.AddCell().SetValue(result.Id.Hex())
	row.AddCell().SetValue(result.OrderId.Hex())
	if result.Patient != nil {
		row.AddCell().SetValue(result.Patient.FullName())
		row.AddCell().SetValue(title.String(strings.ToLower(string(result.Patient.Role))))
	} else {
		row.AddCell().SetValue("")
		row.AddCell().SetValue("")
	}
	row.AddCell().SetValue(result.DateTested.UTC().Format(time.RFC3339))
	row.AddCell().SetValue(title.String(strings.ToLower(string(result.Outcome))))
	row.AddCell().SetValue(result.DeviceSpecimenId)
	row.AddCell().SetValue(title.String(strings.ToLower(string(result.CorrectionStatus))))
	if result.CorrectionReason != nil {
		row.AddCell().SetValue(*result.CorrectionReason)
	} else {
		row.AddCell().SetValue("")
	}
	if result.PatientHasPriorTests {
		row.AddCell().SetValue("Yes")
	} else {
		row.AddCell().SetValue("No")
	}
}

func newFilter(query Query) (results.Filter, error) {
	if err := validateDateRange(query.From, query.To); err != nil {
		return results.Filter{}, err
	}
	return results.Filter{
		FacilityIds: []string{query.FacilityId},
		PatientId:   query.PatientId,
		Outcome:     query.Outcome,
		Role:        query.Role,
		From:        query.From,
		To:          query.To,
	}, nil
}

func validateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrInvalidDateRange
	}
	return nil
}

func (s *service) pagination(page, pageSize int) (store.Pagination, error) {
	if page < 0 || pageSize < 0 {
		return store.Pagination{}, ErrInvalidPage
	}
	pageSize = s.config.PageSize(pageSize)
	return store.DefaultPagination().WithLimit(pageSize).WithOffset(page * pageSize), nil
}
