package rates_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
	"github.com/mysticcoders/freshbooks-tools/internal/rates"
)

type fakeAPI struct {
	serviceRates map[int64]decimal.Decimal
	teamRates    []model.TeamMemberRate
	services     []model.Service

	serviceErr  error
	teamErr     error
	servicesErr error

	serviceCalls     int
	teamCalls        int
	serviceListCalls int
}

func (f *fakeAPI) ListServices(context.Context) ([]model.Service, error) {
	f.serviceListCalls++
	if f.servicesErr != nil {
		return nil, f.servicesErr
	}
	return f.services, nil
}

func (f *fakeAPI) GetServiceRate(_ context.Context, serviceID int64) (*model.ServiceRate, error) {
	f.serviceCalls++
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	r, ok := f.serviceRates[serviceID]
	if !ok {
		return nil, errors.New("no rate for service")
	}
	return &model.ServiceRate{Rate: r}, nil
}

func (f *fakeAPI) ListTeamMemberRates(context.Context) ([]model.TeamMemberRate, error) {
	f.teamCalls++
	if f.teamErr != nil {
		return nil, f.teamErr
	}
	return f.teamRates, nil
}

type fakeDirectory struct {
	emails     map[int64]string
	staffRates map[int64]decimal.Decimal
}

func (f fakeDirectory) Email(_ context.Context, identityID int64) string {
	return f.emails[identityID]
}

func (f fakeDirectory) StaffRate(_ context.Context, identityID int64) *decimal.Decimal {
	if r, ok := f.staffRates[identityID]; ok {
		return &r
	}
	return nil
}

func rate(s string) *config.Rate {
	return &config.Rate{Decimal: decimal.RequireFromString(s)}
}

func newResolver(api *fakeAPI, dir fakeDirectory, cfg *config.RatesConfig) *rates.Resolver {
	if cfg == nil {
		cfg = &config.RatesConfig{}
	}
	return rates.NewResolver(api, dir, cfg, log.New(io.Discard))
}

func TestBillableRateConfigOverrideWinsWithoutAPICalls(t *testing.T) {
	api := &fakeAPI{
		serviceRates: map[int64]decimal.Decimal{5: decimal.NewFromInt(500)},
		teamRates:    []model.TeamMemberRate{{IdentityID: 1, Rate: decimal.NewFromInt(500)}},
	}
	cfg := &config.RatesConfig{
		Members: map[int64]config.MemberRates{
			1: {Name: "A", BillableRate: rate("288")},
		},
	}
	r := newResolver(api, fakeDirectory{}, cfg)

	got, ok := r.BillableRate(context.Background(), 1, 5)
	require.True(t, ok)
	require.Equal(t, "288", got.String())
	require.Zero(t, api.serviceCalls)
	require.Zero(t, api.teamCalls)
}

func TestBillableRateServiceBeforeTeam(t *testing.T) {
	api := &fakeAPI{
		serviceRates: map[int64]decimal.Decimal{5: decimal.NewFromInt(175)},
		teamRates:    []model.TeamMemberRate{{IdentityID: 1, Rate: decimal.NewFromInt(125)}},
	}
	r := newResolver(api, fakeDirectory{}, nil)

	got, ok := r.BillableRate(context.Background(), 1, 5)
	require.True(t, ok)
	require.Equal(t, "175", got.String())
	require.Zero(t, api.teamCalls)
}

func TestBillableRateZeroServiceRateFallsThrough(t *testing.T) {
	api := &fakeAPI{
		serviceRates: map[int64]decimal.Decimal{5: decimal.Zero},
		teamRates:    []model.TeamMemberRate{{IdentityID: 1, Rate: decimal.NewFromInt(125)}},
	}
	r := newResolver(api, fakeDirectory{}, nil)

	got, ok := r.BillableRate(context.Background(), 1, 5)
	require.True(t, ok)
	require.Equal(t, "125", got.String())
	require.Equal(t, 1, api.serviceCalls)
	require.Equal(t, 1, api.teamCalls)
}

func TestBillableRateStaffFallback(t *testing.T) {
	api := &fakeAPI{} // no service rates, empty team table
	dir := fakeDirectory{staffRates: map[int64]decimal.Decimal{1: decimal.NewFromInt(99)}}
	r := newResolver(api, dir, nil)

	got, ok := r.BillableRate(context.Background(), 1, 0)
	require.True(t, ok)
	require.Equal(t, "99", got.String())
	require.Zero(t, api.serviceCalls) // service id 0 never hits the API
}

func TestBillableRateEmailOverride(t *testing.T) {
	api := &fakeAPI{}
	dir := fakeDirectory{emails: map[int64]string{1: "ada@example.com"}}
	cfg := &config.RatesConfig{
		BillableRates: map[string]config.Rate{"ada@example.com": *rate("180")},
	}
	r := newResolver(api, dir, cfg)

	got, ok := r.BillableRate(context.Background(), 1, 0)
	require.True(t, ok)
	require.Equal(t, "180", got.String())
}

func TestBillableRateDefault(t *testing.T) {
	r := newResolver(&fakeAPI{}, fakeDirectory{}, &config.RatesConfig{DefaultBillableRate: rate("150")})

	got, ok := r.BillableRate(context.Background(), 1, 0)
	require.True(t, ok)
	require.Equal(t, "150", got.String())
}

func TestBillableRateZeroDefaultWins(t *testing.T) {
	// The default is the only billable source not filtered to positive
	// values, so an explicit zero default resolves as zero.
	r := newResolver(&fakeAPI{}, fakeDirectory{}, &config.RatesConfig{DefaultBillableRate: rate("0")})

	got, ok := r.BillableRate(context.Background(), 1, 0)
	require.True(t, ok)
	require.True(t, got.IsZero())
}

func TestBillableRateAbsentEverywhere(t *testing.T) {
	r := newResolver(&fakeAPI{}, fakeDirectory{}, nil)

	_, ok := r.BillableRate(context.Background(), 1, 0)
	require.False(t, ok)
}

func TestServiceRateCachedAcrossLookups(t *testing.T) {
	api := &fakeAPI{serviceRates: map[int64]decimal.Decimal{5: decimal.NewFromInt(175)}}
	r := newResolver(api, fakeDirectory{}, nil)

	for i := 0; i < 3; i++ {
		got, ok := r.BillableRate(context.Background(), 1, 5)
		require.True(t, ok)
		require.Equal(t, "175", got.String())
	}
	require.Equal(t, 1, api.serviceCalls)
}

func TestServiceRateMissCached(t *testing.T) {
	api := &fakeAPI{serviceErr: errors.New("404")}
	r := newResolver(api, fakeDirectory{}, nil)

	_, ok := r.BillableRate(context.Background(), 1, 5)
	require.False(t, ok)
	_, ok = r.BillableRate(context.Background(), 1, 5)
	require.False(t, ok)
	require.Equal(t, 1, api.serviceCalls)
}

func TestTeamRateTableFetchedOnce(t *testing.T) {
	api := &fakeAPI{teamRates: []model.TeamMemberRate{
		{IdentityID: 1, Rate: decimal.NewFromInt(125)},
		{IdentityID: 2, Rate: decimal.NewFromInt(140)},
	}}
	r := newResolver(api, fakeDirectory{}, nil)

	got, ok := r.BillableRate(context.Background(), 1, 0)
	require.True(t, ok)
	require.Equal(t, "125", got.String())
	got, ok = r.BillableRate(context.Background(), 2, 0)
	require.True(t, ok)
	require.Equal(t, "140", got.String())
	require.Equal(t, 1, api.teamCalls)
}

func TestTeamRateFailureCachesEmptyTable(t *testing.T) {
	api := &fakeAPI{teamErr: errors.New("boom")}
	r := newResolver(api, fakeDirectory{}, nil)

	_, ok := r.BillableRate(context.Background(), 1, 0)
	require.False(t, ok)
	_, ok = r.BillableRate(context.Background(), 2, 0)
	require.False(t, ok)
	require.Equal(t, 1, api.teamCalls)
}

func TestClearCacheRefetches(t *testing.T) {
	api := &fakeAPI{
		serviceRates: map[int64]decimal.Decimal{5: decimal.NewFromInt(175)},
	}
	r := newResolver(api, fakeDirectory{}, nil)

	r.BillableRate(context.Background(), 1, 5)
	require.Equal(t, 1, api.serviceCalls)
	require.Zero(t, api.teamCalls) // service rate wins before the team table is consulted

	r.ClearCache()
	r.BillableRate(context.Background(), 1, 5)
	require.Equal(t, 2, api.serviceCalls)
}

func TestCostRateExplicitZeroBeatsDefault(t *testing.T) {
	cfg := &config.RatesConfig{
		DefaultCostRate: rate("50"),
		Members: map[int64]config.MemberRates{
			1: {Name: "Volunteer", CostRate: rate("0")},
		},
	}
	r := newResolver(&fakeAPI{}, fakeDirectory{}, cfg)

	got, ok := r.CostRate(context.Background(), 1)
	require.True(t, ok)
	require.True(t, got.IsZero())
}

func TestCostRateEmailThenDefault(t *testing.T) {
	cfg := &config.RatesConfig{
		CostRates:       map[string]config.Rate{"bob@example.com": *rate("45")},
		DefaultCostRate: rate("50"),
	}
	dir := fakeDirectory{emails: map[int64]string{2: "bob@example.com"}}
	r := newResolver(&fakeAPI{}, dir, cfg)

	got, ok := r.CostRate(context.Background(), 2)
	require.True(t, ok)
	require.Equal(t, "45", got.String())

	got, ok = r.CostRate(context.Background(), 3) // no email match
	require.True(t, ok)
	require.Equal(t, "50", got.String())
}

func TestCostRateAbsent(t *testing.T) {
	r := newResolver(&fakeAPI{}, fakeDirectory{}, nil)

	_, ok := r.CostRate(context.Background(), 1)
	require.False(t, ok)
}

func TestCostRateNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{
		serviceRates: map[int64]decimal.Decimal{5: decimal.NewFromInt(500)},
		teamRates:    []model.TeamMemberRate{{IdentityID: 1, Rate: decimal.NewFromInt(500)}},
	}
	r := newResolver(api, fakeDirectory{}, &config.RatesConfig{DefaultCostRate: rate("50")})

	r.CostRate(context.Background(), 1)
	require.Zero(t, api.serviceCalls)
	require.Zero(t, api.teamCalls)
}

func TestServiceName(t *testing.T) {
	api := &fakeAPI{services: []model.Service{
		{ID: 5, Name: "Development"},
		{ID: 6, Name: "Design"},
	}}
	r := newResolver(api, fakeDirectory{}, nil)

	require.Equal(t, "Development", r.ServiceName(context.Background(), 5))
	require.Equal(t, "Design", r.ServiceName(context.Background(), 6))
	require.Equal(t, "Service 9", r.ServiceName(context.Background(), 9))
	require.Equal(t, "", r.ServiceName(context.Background(), 0))
	require.Equal(t, 1, api.serviceListCalls)
}
