package access

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/structs"
	lru "github.com/hashicorp/golang-lru"
	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/facilities"
	"github.com/labnet/testorders/store"
)

//go:embed policy.rego
var accessPolicy string

type ResolverParams struct {
	fx.In

	Config     *config.Config
	Facilities facilities.Repository
	Logger     *zap.SugaredLogger
}

func NewResolver(p ResolverParams) (Resolver, error) {
	compiler, err := ast.CompileModules(map[string]string{
		"policy.rego": accessPolicy,
	})
	if err != nil {
		return nil, err
	}

	cacheSize := p.Config.AccessCacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	organizations, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &embeddedOpaResolver{
		facilities:    p.Facilities,
		logger:        p.Logger,
		organizations: organizations,
		policy:        compiler,
		siteAdmins:    mapset.NewSet(p.Config.SiteAdminSubjects...),
	}, nil
}

type embeddedOpaResolver struct {
	facilities    facilities.Repository
	logger        *zap.SugaredLogger
	organizations *lru.Cache
	policy        *ast.Compiler
	siteAdmins    mapset.Set[string]
}

type policyCaller struct {
	SubjectId         string   `structs:"subjectId"`
	OrganizationId    string   `structs:"organizationId"`
	Permissions       []string `structs:"permissions"`
	FacilityIds       []string `structs:"facilityIds"`
	AllFacilities     bool     `structs:"allFacilities"`
	OrganizationAdmin bool     `structs:"organizationAdmin"`
	SiteAdmin         bool     `structs:"siteAdmin"`
}

type policyTarget struct {
	OrganizationId string `structs:"organizationId"`
	FacilityId     string `structs:"facilityId"`
}

func (r *embeddedOpaResolver) Authorize(ctx context.Context, permission Permission, target Target) error {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: missing caller", ErrUnauthorized)
	}
	if !permission.Valid() {
		return fmt.Errorf("%w: unknown permission %q", ErrUnauthorized, permission)
	}

	if target.FacilityId != "" && target.OrganizationId == "" {
		organizationId, err := r.facilityOrganization(ctx, target.FacilityId)
		if err != nil {
			r.logger.Warnw("unable to resolve facility organization", "facilityId", target.FacilityId, zap.Error(err))
			if store.IsUnavailable(err) {
				return store.Classify(err)
			}
			return fmt.Errorf("%w: unknown facility", ErrUnauthorized)
		}
		target.OrganizationId = organizationId
	}

	return r.evaluate(ctx, caller, permission, target)
}

func (r *embeddedOpaResolver) AccessibleFacilities(ctx context.Context, permission Permission) ([]string, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: missing caller", ErrUnauthorized)
	}

	list, err := r.facilities.List(ctx, caller.OrganizationId)
	if errors.Is(err, facilities.ErrOrganizationNotFound) {
		return []string{}, nil
	} else if err != nil {
		return nil, store.Classify(err)
	}

	accessible := make([]string, 0, len(list))
	for _, facility := range list {
		target := Target{
			OrganizationId: facility.OrganizationId.Hex(),
			FacilityId:     facility.Id.Hex(),
		}
		r.organizations.Add(target.FacilityId, target.OrganizationId)

		err := r.evaluate(ctx, caller, permission, target)
		if errors.Is(err, ErrUnauthorized) {
			continue
		} else if err != nil {
			return nil, err
		}
		accessible = append(accessible, target.FacilityId)
	}

	return accessible, nil
}

func (r *embeddedOpaResolver) evaluate(ctx context.Context, caller Caller, permission Permission, target Target) error {
	permissions := make([]string, 0, len(Permissions))
	for p := range caller.Permissions().Iter() {
		permissions = append(permissions, string(p))
	}
	facilityIds := make([]string, 0, len(caller.FacilityIds))
	facilityIds = append(facilityIds, caller.FacilityIds...)

	input := map[string]interface{}{
		"permission": string(permission),
		"caller": structs.Map(policyCaller{
			SubjectId:         caller.SubjectId,
			OrganizationId:    caller.OrganizationId,
			Permissions:       permissions,
			FacilityIds:       facilityIds,
			AllFacilities:     caller.HasAllFacilities(),
			OrganizationAdmin: caller.IsOrganizationAdmin(),
			SiteAdmin:         caller.SiteAdmin || r.siteAdmins.Contains(caller.SubjectId),
		}),
		"target": structs.Map(policyTarget{
			OrganizationId: target.OrganizationId,
			FacilityId:     target.FacilityId,
		}),
	}

	return r.EvaluatePolicy(ctx, input)
}

// EvaluatePolicy runs the embedded policy against input. Any failure to reach a decision denies.
func (r *embeddedOpaResolver) EvaluatePolicy(ctx context.Context, input map[string]interface{}) error {
	query := rego.New(
		rego.Package("authz.testorders"),
		rego.Query("allow"),
		rego.Compiler(r.policy),
		rego.Input(input),
	)

	results, err := query.Eval(ctx)
	if err != nil {
		return fmt.Errorf("%w: unable to evaluate access policy: %v", ErrUnauthorized, err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return fmt.Errorf("%w: access policy returned no results", ErrUnauthorized)
	}

	val, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return fmt.Errorf("%w: unexpected access policy result %v", ErrUnauthorized, results[0].Expressions[0].Value)
	}

	r.logger.Debugw("access policy eval", zap.Any("input", input), zap.Bool("allow", val))

	if !val {
		return ErrUnauthorized
	}

	return nil
}

// facilityOrganization resolves the owning organization of a facility. Facilities never change
// organization, so the mapping is cached.
func (r *embeddedOpaResolver) facilityOrganization(ctx context.Context, facilityId string) (string, error) {
	if cached, ok := r.organizations.Get(facilityId); ok {
		return cached.(string), nil
	}

	facility, err := r.facilities.Get(ctx, facilityId)
	if err != nil {
		return "", err
	}

	organizationId := facility.OrganizationId.Hex()
	r.organizations.Add(facilityId, organizationId)
	return organizationId, nil
}
