// Package rates resolves hourly billable and cost rates for team
// members. Billable rates come from an ordered chain of sources
// spanning the local rates file and three API endpoints; cost rates are
// config-only. Every remote source is cached for the life of the
// resolver, including negative results.
package rates

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// API is the slice of the FreshBooks client the resolver consults.
type API interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	GetServiceRate(ctx context.Context, serviceID int64) (*model.ServiceRate, error)
	ListTeamMemberRates(ctx context.Context) ([]model.TeamMemberRate, error)
}

// Directory supplies the identity details some sources key on.
type Directory interface {
	Email(ctx context.Context, identityID int64) string
	StaffRate(ctx context.Context, identityID int64) *decimal.Decimal
}

// source is one step in a resolution chain. Sources are consulted in
// order. requirePositive marks sources whose zero or negative values
// fall through to the next source instead of winning.
type source struct {
	name            string
	requirePositive bool
	lookup          func(ctx context.Context, identityID, serviceID int64) (decimal.Decimal, bool)
}

// Resolver resolves rates against the config file, the service rate
// endpoint, the team member rate table, and staff records.
type Resolver struct {
	api API
	dir Directory
	cfg *config.RatesConfig
	log *log.Logger

	// serviceRates caches per-service lookups. A nil value records that
	// the service has no resolvable rate, so it is not refetched.
	serviceRates map[int64]*decimal.Decimal
	// teamRates is nil until the bulk table has been fetched. A failed
	// fetch caches an empty table.
	teamRates map[int64]decimal.Decimal
	// services is nil until the service catalog has been fetched.
	services map[int64]model.Service
}

// NewResolver returns a Resolver over the given API, directory, and
// rates config.
func NewResolver(api API, dir Directory, cfg *config.RatesConfig, logger *log.Logger) *Resolver {
	return &Resolver{
		api:          api,
		dir:          dir,
		cfg:          cfg,
		log:          logger,
		serviceRates: make(map[int64]*decimal.Decimal),
	}
}

// ClearCache drops every cached rate and catalog so subsequent lookups
// refetch from the API.
func (r *Resolver) ClearCache() {
	r.serviceRates = make(map[int64]*decimal.Decimal)
	r.teamRates = nil
	r.services = nil
}

// billableSources is the billable resolution order. All but the final
// default require a positive rate to win.
func (r *Resolver) billableSources() []source {
	return []source{
		{name: "config id override", requirePositive: true, lookup: func(_ context.Context, identityID, _ int64) (decimal.Decimal, bool) {
			return r.cfg.BillableRateByID(identityID)
		}},
		{name: "service rate", requirePositive: true, lookup: r.serviceRateLookup},
		{name: "team member rate", requirePositive: true, lookup: r.teamRateLookup},
		{name: "staff rate", requirePositive: true, lookup: r.staffRateLookup},
		{name: "config email override", requirePositive: true, lookup: func(ctx context.Context, identityID, _ int64) (decimal.Decimal, bool) {
			email := r.dir.Email(ctx, identityID)
			if email == "" {
				return decimal.Decimal{}, false
			}
			return r.cfg.BillableRateByEmail(email)
		}},
		{name: "default billable rate", lookup: func(context.Context, int64, int64) (decimal.Decimal, bool) {
			return r.cfg.DefaultBillable()
		}},
	}
}

// costSources is the cost resolution order. Cost rates are config-only
// and an explicit zero is honored at every step.
func (r *Resolver) costSources() []source {
	return []source{
		{name: "config id override", lookup: func(_ context.Context, identityID, _ int64) (decimal.Decimal, bool) {
			return r.cfg.CostRateByID(identityID)
		}},
		{name: "config email override", lookup: func(ctx context.Context, identityID, _ int64) (decimal.Decimal, bool) {
			email := r.dir.Email(ctx, identityID)
			if email == "" {
				return decimal.Decimal{}, false
			}
			return r.cfg.CostRateByEmail(email)
		}},
		{name: "default cost rate", lookup: func(context.Context, int64, int64) (decimal.Decimal, bool) {
			return r.cfg.DefaultCost()
		}},
	}
}

func (r *Resolver) resolve(ctx context.Context, sources []source, identityID, serviceID int64) (decimal.Decimal, bool) {
	for _, src := range sources {
		rate, ok := src.lookup(ctx, identityID, serviceID)
		if !ok {
			continue
		}
		if src.requirePositive && !rate.IsPositive() {
			continue
		}
		r.log.Debug("rate resolved", "identity_id", identityID, "source", src.name, "rate", rate)
		return rate, true
	}
	return decimal.Decimal{}, false
}

// BillableRate resolves the hourly billable rate for an identity
// working the given service (0 for none). The second return is false
// when no source, including the default, has a rate; an absent rate is
// not the same as a zero rate.
func (r *Resolver) BillableRate(ctx context.Context, identityID, serviceID int64) (decimal.Decimal, bool) {
	return r.resolve(ctx, r.billableSources(), identityID, serviceID)
}

// CostRate resolves the internal hourly cost for an identity.
func (r *Resolver) CostRate(ctx context.Context, identityID int64) (decimal.Decimal, bool) {
	return r.resolve(ctx, r.costSources(), identityID, 0)
}

// serviceRateLookup resolves the rate attached to the entry's service.
// Both hits and misses are cached so each service is fetched at most
// once.
func (r *Resolver) serviceRateLookup(ctx context.Context, _, serviceID int64) (decimal.Decimal, bool) {
	if serviceID == 0 {
		return decimal.Decimal{}, false
	}
	if cached, ok := r.serviceRates[serviceID]; ok {
		if cached == nil {
			return decimal.Decimal{}, false
		}
		return *cached, true
	}
	sr, err := r.api.GetServiceRate(ctx, serviceID)
	if err != nil {
		r.log.Debug("service rate unavailable", "service_id", serviceID, "err", err)
		r.serviceRates[serviceID] = nil
		return decimal.Decimal{}, false
	}
	rate := sr.Rate
	r.serviceRates[serviceID] = &rate
	return rate, true
}

// teamRateLookup consults the bulk team member rate table, fetching it
// on first use. A failed fetch caches an empty table rather than
// retrying on every entry.
func (r *Resolver) teamRateLookup(ctx context.Context, identityID, _ int64) (decimal.Decimal, bool) {
	if r.teamRates == nil {
		list, err := r.api.ListTeamMemberRates(ctx)
		if err != nil {
			r.log.Warn("team member rate table unavailable", "err", err)
			r.teamRates = map[int64]decimal.Decimal{}
		} else {
			table := make(map[int64]decimal.Decimal, len(list))
			for _, tr := range list {
				table[tr.IdentityID] = tr.Rate
			}
			r.teamRates = table
		}
	}
	rate, ok := r.teamRates[identityID]
	return rate, ok
}

func (r *Resolver) staffRateLookup(ctx context.Context, identityID, _ int64) (decimal.Decimal, bool) {
	rate := r.dir.StaffRate(ctx, identityID)
	if rate == nil {
		return decimal.Decimal{}, false
	}
	return *rate, true
}

// ServiceName resolves a service id to its catalog name, fetching the
// catalog on first use. Unknown services render as "Service <id>".
func (r *Resolver) ServiceName(ctx context.Context, serviceID int64) string {
	if serviceID == 0 {
		return ""
	}
	if r.services == nil {
		list, err := r.api.ListServices(ctx)
		if err != nil {
			r.log.Warn("service catalog unavailable", "err", err)
			r.services = map[int64]model.Service{}
		} else {
			catalog := make(map[int64]model.Service, len(list))
			for _, svc := range list {
				catalog[svc.ID] = svc
			}
			r.services = catalog
		}
	}
	if svc, ok := r.services[serviceID]; ok {
		return svc.Name
	}
	return fmt.Sprintf("Service %d", serviceID)
}
