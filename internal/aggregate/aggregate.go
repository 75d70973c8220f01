// Package aggregate rolls time entries up into hours, billable value,
// cost, profit, and margin, optionally grouped by teammate, client, or
// project. All arithmetic is decimal; callers convert to float only at
// presentation boundaries.
package aggregate

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// GroupBy selects the grouping dimension for a summary.
type GroupBy string

const (
	GroupNone     GroupBy = ""
	GroupTeammate GroupBy = "teammate"
	GroupClient   GroupBy = "client"
	GroupProject  GroupBy = "project"
)

// RateSource resolves hourly rates for an identity. A false second
// return means no rate is known, which is distinct from a zero rate:
// entries without a rate contribute hours but no money.
type RateSource interface {
	BillableRate(ctx context.Context, identityID, serviceID int64) (decimal.Decimal, bool)
	CostRate(ctx context.Context, identityID int64) (decimal.Decimal, bool)
}

// Namer resolves the display names used as group keys.
type Namer interface {
	TeammateName(ctx context.Context, identityID int64) string
	ClientName(ctx context.Context, clientID int64) string
	ProjectName(ctx context.Context, projectID int64) string
}

// Row is one group's totals.
type Row struct {
	Key      string
	Hours    decimal.Decimal
	Billable decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal
	Margin   decimal.Decimal
}

// Summary is the rollup of a set of time entries.
type Summary struct {
	TotalHours    decimal.Decimal
	TotalBillable decimal.Decimal
	TotalCost     decimal.Decimal
	Profit        decimal.Decimal
	Margin        decimal.Decimal
	Groups        []Row
}

// Summarize aggregates entries into a Summary. Billable value accrues
// only on billable entries; cost accrues on every entry. A nil rates
// source yields an hours-only summary. Groups come back in ascending
// key order.
func Summarize(ctx context.Context, entries []model.TimeEntry, groupBy GroupBy, rates RateSource, names Namer) Summary {
	type bucket struct {
		hours    decimal.Decimal
		billable decimal.Decimal
		cost     decimal.Decimal
	}

	var total bucket
	groups := make(map[string]*bucket)

	for _, e := range entries {
		hours := e.Hours()

		var billable, cost decimal.Decimal
		if rates != nil {
			var serviceID int64
			if e.ServiceID != nil {
				serviceID = *e.ServiceID
			}
			if e.Billable {
				if rate, ok := rates.BillableRate(ctx, e.IdentityID, serviceID); ok {
					billable = hours.Mul(rate)
				}
			}
			if rate, ok := rates.CostRate(ctx, e.IdentityID); ok {
				cost = hours.Mul(rate)
			}
		}

		total.hours = total.hours.Add(hours)
		total.billable = total.billable.Add(billable)
		total.cost = total.cost.Add(cost)

		if groupBy == GroupNone {
			continue
		}
		key := groupKey(ctx, e, groupBy, names)
		b := groups[key]
		if b == nil {
			b = &bucket{}
			groups[key] = b
		}
		b.hours = b.hours.Add(hours)
		b.billable = b.billable.Add(billable)
		b.cost = b.cost.Add(cost)
	}

	summary := Summary{
		TotalHours:    total.hours,
		TotalBillable: total.billable,
		TotalCost:     total.cost,
		Profit:        total.billable.Sub(total.cost),
		Margin:        margin(total.billable, total.cost),
	}
	for key, b := range groups {
		summary.Groups = append(summary.Groups, Row{
			Key:      key,
			Hours:    b.hours,
			Billable: b.billable,
			Cost:     b.cost,
			Profit:   b.billable.Sub(b.cost),
			Margin:   margin(b.billable, b.cost),
		})
	}
	sort.Slice(summary.Groups, func(i, j int) bool {
		return summary.Groups[i].Key < summary.Groups[j].Key
	})
	return summary
}

func groupKey(ctx context.Context, e model.TimeEntry, groupBy GroupBy, names Namer) string {
	switch groupBy {
	case GroupTeammate:
		return names.TeammateName(ctx, e.IdentityID)
	case GroupClient:
		if e.ClientID == nil {
			return "No Client"
		}
		return names.ClientName(ctx, *e.ClientID)
	case GroupProject:
		if e.ProjectID == nil {
			return "No Project"
		}
		return names.ProjectName(ctx, *e.ProjectID)
	}
	return ""
}

// margin returns profit as a percentage of billable value. A group with
// no billable value has zero margin, not an error.
func margin(billable, cost decimal.Decimal) decimal.Decimal {
	if billable.IsZero() {
		return decimal.Decimal{}
	}
	return billable.Sub(cost).Div(billable).Mul(decimal.NewFromInt(100))
}
