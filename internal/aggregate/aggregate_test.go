package aggregate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mysticcoders/freshbooks-tools/internal/aggregate"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

type fakeRates struct {
	billable map[int64]decimal.Decimal
	cost     map[int64]decimal.Decimal
}

func (f fakeRates) BillableRate(_ context.Context, identityID, _ int64) (decimal.Decimal, bool) {
	r, ok := f.billable[identityID]
	return r, ok
}

func (f fakeRates) CostRate(_ context.Context, identityID int64) (decimal.Decimal, bool) {
	r, ok := f.cost[identityID]
	return r, ok
}

type fakeNames struct{}

func (fakeNames) TeammateName(_ context.Context, id int64) string { return fmt.Sprintf("member-%d", id) }
func (fakeNames) ClientName(_ context.Context, id int64) string   { return fmt.Sprintf("client-%d", id) }
func (fakeNames) ProjectName(_ context.Context, id int64) string  { return fmt.Sprintf("project-%d", id) }

func entry(identityID int64, hours float64, billable bool) model.TimeEntry {
	return model.TimeEntry{
		IdentityID: identityID,
		Duration:   int64(hours * 3600),
		Billable:   billable,
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "got %s, want %s", got, want)
}

func TestSummarizeTotals(t *testing.T) {
	rates := fakeRates{
		billable: map[int64]decimal.Decimal{
			1: decimal.NewFromInt(150),
			2: decimal.NewFromInt(200),
		},
		cost: map[int64]decimal.Decimal{
			1: decimal.NewFromInt(100),
			2: decimal.NewFromInt(50),
		},
	}
	entries := []model.TimeEntry{
		entry(1, 2, true),
		entry(2, 1, false), // non-billable still accrues cost
	}

	s := aggregate.Summarize(context.Background(), entries, aggregate.GroupNone, rates, fakeNames{})

	requireDecimal(t, "3", s.TotalHours)
	requireDecimal(t, "300", s.TotalBillable)
	requireDecimal(t, "250", s.TotalCost)
	requireDecimal(t, "50", s.Profit)
	require.Equal(t, "16.67", s.Margin.StringFixed(2))
	require.Empty(t, s.Groups)
}

func TestSummarizeAbsentRatesContributeHoursOnly(t *testing.T) {
	rates := fakeRates{
		billable: map[int64]decimal.Decimal{1: decimal.NewFromInt(150)},
		cost:     map[int64]decimal.Decimal{1: decimal.NewFromInt(100)},
	}
	entries := []model.TimeEntry{
		entry(1, 1, true),
		entry(9, 4, true), // identity 9 has no rates at all
	}

	s := aggregate.Summarize(context.Background(), entries, aggregate.GroupNone, rates, fakeNames{})

	requireDecimal(t, "5", s.TotalHours)
	requireDecimal(t, "150", s.TotalBillable)
	requireDecimal(t, "100", s.TotalCost)
}

func TestSummarizeMarginZeroWithoutBillable(t *testing.T) {
	rates := fakeRates{
		cost: map[int64]decimal.Decimal{1: decimal.NewFromInt(80)},
	}
	s := aggregate.Summarize(context.Background(), []model.TimeEntry{entry(1, 2, false)}, aggregate.GroupNone, rates, fakeNames{})

	requireDecimal(t, "0", s.TotalBillable)
	requireDecimal(t, "160", s.TotalCost)
	requireDecimal(t, "-160", s.Profit)
	require.True(t, s.Margin.IsZero(), "margin = %s, want 0", s.Margin)
}

func TestSummarizeNilRates(t *testing.T) {
	s := aggregate.Summarize(context.Background(), []model.TimeEntry{entry(1, 3, true)}, aggregate.GroupNone, nil, fakeNames{})

	requireDecimal(t, "3", s.TotalHours)
	require.True(t, s.TotalBillable.IsZero())
	require.True(t, s.TotalCost.IsZero())
}

func TestSummarizeGroupsSortedLexically(t *testing.T) {
	two, ten, one := int64(2), int64(10), int64(1)
	entries := []model.TimeEntry{
		{IdentityID: 1, Duration: 3600, ClientID: &two},
		{IdentityID: 1, Duration: 3600, ClientID: &ten},
		{IdentityID: 1, Duration: 3600, ClientID: &one},
	}

	s := aggregate.Summarize(context.Background(), entries, aggregate.GroupClient, nil, fakeNames{})

	require.Len(t, s.Groups, 3)
	require.Equal(t, "client-1", s.Groups[0].Key)
	require.Equal(t, "client-10", s.Groups[1].Key)
	require.Equal(t, "client-2", s.Groups[2].Key)
}

func TestSummarizeGroupByProject(t *testing.T) {
	pid := int64(7)
	rates := fakeRates{
		billable: map[int64]decimal.Decimal{1: decimal.NewFromInt(100)},
		cost:     map[int64]decimal.Decimal{1: decimal.NewFromInt(60)},
	}
	entries := []model.TimeEntry{
		{IdentityID: 1, Duration: 7200, Billable: true, ProjectID: &pid},
		{IdentityID: 1, Duration: 3600, Billable: true}, // no project
	}

	s := aggregate.Summarize(context.Background(), entries, aggregate.GroupProject, rates, fakeNames{})

	require.Len(t, s.Groups, 2)
	require.Equal(t, "No Project", s.Groups[0].Key)
	require.Equal(t, "project-7", s.Groups[1].Key)

	byProject := s.Groups[1]
	requireDecimal(t, "2", byProject.Hours)
	requireDecimal(t, "200", byProject.Billable)
	requireDecimal(t, "120", byProject.Cost)
	requireDecimal(t, "80", byProject.Profit)
	require.Equal(t, "40.00", byProject.Margin.StringFixed(2))
}

func TestSummarizeGroupByTeammate(t *testing.T) {
	entries := []model.TimeEntry{
		entry(3, 1, true),
		entry(1, 2, true),
		entry(3, 0.5, false),
	}

	s := aggregate.Summarize(context.Background(), entries, aggregate.GroupTeammate, nil, fakeNames{})

	require.Len(t, s.Groups, 2)
	require.Equal(t, "member-1", s.Groups[0].Key)
	require.Equal(t, "member-3", s.Groups[1].Key)
	requireDecimal(t, "2", s.Groups[0].Hours)
	requireDecimal(t, "1.5", s.Groups[1].Hours)
}

func TestSummarizeGroupByClientNilID(t *testing.T) {
	s := aggregate.Summarize(context.Background(), []model.TimeEntry{entry(1, 1, true)}, aggregate.GroupClient, nil, fakeNames{})

	require.Len(t, s.Groups, 1)
	require.Equal(t, "No Client", s.Groups[0].Key)
}
