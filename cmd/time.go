package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/aggregate"
	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
	"github.com/mysticcoders/freshbooks-tools/internal/identity"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
	"github.com/mysticcoders/freshbooks-tools/internal/render"
)

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Work with time entries",
}

var (
	timeListTeammate string
	timeListMonth    string
	timeListBillable bool
	timeListNoRates  bool
	timeListJSON     bool
)

var timeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries for a month",
	Args:  cobra.NoArgs,
	RunE:  runTimeList,
}

var (
	timeSummaryMonth    string
	timeSummaryByClient bool
	timeSummaryJSON     bool
)

var timeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate a month's hours, billable value, cost, and margin",
	Args:  cobra.NoArgs,
	RunE:  runTimeSummary,
}

var (
	timeUnbilledByProject  bool
	timeUnbilledByTeammate bool
	timeUnbilledJSON       bool
)

var timeUnbilledCmd = &cobra.Command{
	Use:   "unbilled",
	Short: "Show billable hours that have not been invoiced yet",
	Args:  cobra.NoArgs,
	RunE:  runTimeUnbilled,
}

var (
	timeAddProject     string
	timeAddDate        string
	timeAddService     string
	timeAddNote        string
	timeAddNonBillable bool
)

var timeAddCmd = &cobra.Command{
	Use:   "add HOURS",
	Short: "Log a time entry against a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeAdd,
}

var (
	timeExportMonth  string
	timeExportFormat string
	timeExportOutput string
)

var timeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month's time entries to CSV or JSON",
	Args:  cobra.NoArgs,
	RunE:  runTimeExport,
}

func init() {
	timeListCmd.Flags().StringVar(&timeListTeammate, "teammate", "", "Only entries by this team member (name fragment)")
	timeListCmd.Flags().StringVar(&timeListMonth, "month", "", "Month as YYYY-MM (default: current month)")
	timeListCmd.Flags().BoolVar(&timeListBillable, "billable", false, "Only billable entries")
	timeListCmd.Flags().BoolVar(&timeListNoRates, "no-rates", false, "Skip rate resolution and amounts")
	timeListCmd.Flags().BoolVar(&timeListJSON, "json", false, "Output JSON")

	timeSummaryCmd.Flags().StringVar(&timeSummaryMonth, "month", "", "Month as YYYY-MM (default: current month)")
	timeSummaryCmd.Flags().BoolVar(&timeSummaryByClient, "by-client", false, "Group by client instead of teammate")
	timeSummaryCmd.Flags().BoolVar(&timeSummaryJSON, "json", false, "Output JSON")

	timeUnbilledCmd.Flags().BoolVar(&timeUnbilledByProject, "by-project", false, "Group by project instead of client")
	timeUnbilledCmd.Flags().BoolVar(&timeUnbilledByTeammate, "by-teammate", false, "Group by teammate instead of client")
	timeUnbilledCmd.Flags().BoolVar(&timeUnbilledJSON, "json", false, "Output JSON")

	timeAddCmd.Flags().StringVar(&timeAddProject, "project", "", "Project title fragment (required)")
	timeAddCmd.Flags().StringVar(&timeAddDate, "date", "", "Entry date as YYYY-MM-DD (default: today)")
	timeAddCmd.Flags().StringVar(&timeAddService, "service", "", "Service name fragment")
	timeAddCmd.Flags().StringVar(&timeAddNote, "note", "", "Entry note")
	timeAddCmd.Flags().BoolVar(&timeAddNonBillable, "non-billable", false, "Log as non-billable")
	_ = timeAddCmd.MarkFlagRequired("project")

	timeExportCmd.Flags().StringVar(&timeExportMonth, "month", "", "Month as YYYY-MM (default: current month)")
	timeExportCmd.Flags().StringVar(&timeExportFormat, "format", "csv", "Output format: csv, json")
	timeExportCmd.Flags().StringVar(&timeExportOutput, "output", "", "Output path (default: time_entries_<timestamp>.<ext>)")

	timeCmd.AddCommand(timeListCmd)
	timeCmd.AddCommand(timeSummaryCmd)
	timeCmd.AddCommand(timeUnbilledCmd)
	timeCmd.AddCommand(timeAddCmd)
	timeCmd.AddCommand(timeExportCmd)
}

// nameSource adapts the API client and identity resolver to
// aggregate.Namer, caching the client and project catalogs on first
// use.
type nameSource struct {
	client   *freshbooks.Client
	ident    *identity.Resolver
	clients  map[int64]string
	projects map[int64]string
}

func (n *nameSource) TeammateName(ctx context.Context, identityID int64) string {
	return n.ident.Name(ctx, identityID)
}

func (n *nameSource) ClientName(ctx context.Context, clientID int64) string {
	if n.clients == nil {
		n.clients = map[int64]string{}
		list, err := n.client.ListClients(ctx)
		if err != nil {
			logger.Warn("client names unavailable", "err", err)
		}
		for _, cl := range list {
			n.clients[cl.ID] = cl.DisplayName()
		}
	}
	if name, ok := n.clients[clientID]; ok {
		return name
	}
	return fmt.Sprintf("Client %d", clientID)
}

func (n *nameSource) ProjectName(ctx context.Context, projectID int64) string {
	if n.projects == nil {
		n.projects = map[int64]string{}
		list, err := n.client.ListProjects(ctx)
		if err != nil {
			logger.Warn("project names unavailable", "err", err)
		}
		for _, p := range list {
			n.projects[p.ID] = p.Title
		}
	}
	if name, ok := n.projects[projectID]; ok {
		return name
	}
	return fmt.Sprintf("Project %d", projectID)
}

// monthRange parses YYYY-MM into the month's inclusive bounds. An empty
// month means the current one.
func monthRange(month string) (time.Time, time.Time, string, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, month, nil
}

// resolveTeammate matches a name fragment against the directory,
// listing the known members when nothing matches.
func resolveTeammate(ctx context.Context, ident *identity.Resolver, fragment string) (*identity.Member, error) {
	member, err := ident.FindByName(ctx, fragment)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return member, nil
	}
	members, _ := ident.Members(ctx)
	if len(members) == 0 {
		return nil, fmt.Errorf("no team member matches %q", fragment)
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return nil, fmt.Errorf("no team member matches %q (members: %s)", fragment, strings.Join(names, ", "))
}

// fl converts a decimal to float64 at the JSON boundary.
func fl(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

// clip truncates a string to width runes for fixed-width columns.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

type timeRow struct {
	Date     string   `json:"date"`
	Teammate string   `json:"teammate"`
	Client   string   `json:"client,omitempty"`
	Project  string   `json:"project,omitempty"`
	Service  string   `json:"service,omitempty"`
	Hours    float64  `json:"hours"`
	Billable bool     `json:"billable"`
	Billed   bool     `json:"billed"`
	Amount   *float64 `json:"amount,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// timeRows resolves entries into display rows plus hour and amount
// totals. Rate resolution is skipped when withRates is false.
func timeRows(ctx context.Context, client *freshbooks.Client, entries []model.TimeEntry, withRates bool) ([]timeRow, decimal.Decimal, decimal.Decimal, error) {
	ident, rr, err := newResolvers(client)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}
	names := &nameSource{client: client, ident: ident}

	rows := make([]timeRow, 0, len(entries))
	totalHours := decimal.Zero
	totalAmount := decimal.Zero
	for _, e := range entries {
		hours := e.Hours()
		totalHours = totalHours.Add(hours)

		r := timeRow{
			Date:     e.StartedAt.Format("2006-01-02"),
			Teammate: ident.Name(ctx, e.IdentityID),
			Hours:    fl(hours),
			Billable: e.Billable,
			Billed:   e.Billed,
		}
		if e.ClientID != nil {
			r.Client = names.ClientName(ctx, *e.ClientID)
		}
		if e.ProjectID != nil {
			r.Project = names.ProjectName(ctx, *e.ProjectID)
		}
		if e.ServiceID != nil {
			r.Service = rr.ServiceName(ctx, *e.ServiceID)
		}
		if e.Note != nil {
			r.Note = *e.Note
		}
		if withRates && e.Billable {
			var serviceID int64
			if e.ServiceID != nil {
				serviceID = *e.ServiceID
			}
			if rate, ok := rr.BillableRate(ctx, e.IdentityID, serviceID); ok {
				amount := hours.Mul(rate)
				totalAmount = totalAmount.Add(amount)
				af := fl(amount.Round(2))
				r.Amount = &af
			}
		}
		rows = append(rows, r)
	}
	return rows, totalHours, totalAmount, nil
}

func runTimeList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	start, end, _, err := monthRange(timeListMonth)
	if err != nil {
		return err
	}
	filter := freshbooks.TimeEntryFilter{StartedFrom: &start, StartedTo: &end}
	if timeListBillable {
		billable := true
		filter.Billable = &billable
	}
	if timeListTeammate != "" {
		ident, _, err := newResolvers(client)
		if err != nil {
			return err
		}
		member, err := resolveTeammate(ctx, ident, timeListTeammate)
		if err != nil {
			return err
		}
		filter.IdentityID = member.IdentityID
	}

	entries, err := client.ListTimeEntries(ctx, filter)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartedAt.Before(entries[j].StartedAt) })

	rows, totalHours, totalAmount, err := timeRows(ctx, client, entries, !timeListNoRates)
	if err != nil {
		return err
	}

	if timeListJSON {
		return printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Println("No time entries found.")
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%-10s  %-18s  %-18s  %-18s  %-14s  %6s  %1s %1s  %11s  %s",
		"Date", "Teammate", "Client", "Project", "Service", "Hours", "B", "$", "Amount", "Note")))
	for _, r := range rows {
		amount := ""
		if r.Amount != nil {
			amount = render.Money(decimal.NewFromFloat(*r.Amount))
		}
		fmt.Printf("%-10s  %-18s  %-18s  %-18s  %-14s  %6.1f  %1s %1s  %11s  %s\n",
			r.Date, clip(r.Teammate, 18), clip(r.Client, 18), clip(r.Project, 18),
			clip(r.Service, 14), r.Hours, check(r.Billable), check(r.Billed), amount, r.Note)
	}
	fmt.Println()
	fmt.Printf("%d entries, %s hours", len(rows), render.Hours(totalHours))
	if !timeListNoRates {
		fmt.Printf(", %s billable", render.Money(totalAmount))
	}
	fmt.Println()
	return nil
}

func groupHeading(groupBy aggregate.GroupBy) string {
	switch groupBy {
	case aggregate.GroupClient:
		return "Client"
	case aggregate.GroupProject:
		return "Project"
	default:
		return "Teammate"
	}
}

func runTimeSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	ident, rr, err := newResolvers(client)
	if err != nil {
		return err
	}

	start, end, label, err := monthRange(timeSummaryMonth)
	if err != nil {
		return err
	}
	entries, err := client.ListTimeEntries(ctx, freshbooks.TimeEntryFilter{StartedFrom: &start, StartedTo: &end})
	if err != nil {
		return err
	}

	groupBy := aggregate.GroupTeammate
	if timeSummaryByClient {
		groupBy = aggregate.GroupClient
	}
	names := &nameSource{client: client, ident: ident}
	summary := aggregate.Summarize(ctx, entries, groupBy, rr, names)

	if timeSummaryJSON {
		type groupOut struct {
			Name     string  `json:"name"`
			Hours    float64 `json:"hours"`
			Billable float64 `json:"billable"`
			Cost     float64 `json:"cost"`
			Profit   float64 `json:"profit"`
			Margin   float64 `json:"margin"`
		}
		out := struct {
			Month         string     `json:"month"`
			TotalHours    float64    `json:"total_hours"`
			TotalBillable float64    `json:"total_billable"`
			TotalCost     float64    `json:"total_cost"`
			Profit        float64    `json:"profit"`
			Margin        float64    `json:"margin"`
			Groups        []groupOut `json:"groups"`
		}{
			Month:         label,
			TotalHours:    fl(summary.TotalHours),
			TotalBillable: fl(summary.TotalBillable.Round(2)),
			TotalCost:     fl(summary.TotalCost.Round(2)),
			Profit:        fl(summary.Profit.Round(2)),
			Margin:        fl(summary.Margin.Round(1)),
			Groups:        make([]groupOut, 0, len(summary.Groups)),
		}
		for _, g := range summary.Groups {
			out.Groups = append(out.Groups, groupOut{
				Name:     g.Key,
				Hours:    fl(g.Hours),
				Billable: fl(g.Billable.Round(2)),
				Cost:     fl(g.Cost.Round(2)),
				Profit:   fl(g.Profit.Round(2)),
				Margin:   fl(g.Margin.Round(1)),
			})
		}
		return printJSON(out)
	}

	fmt.Println(render.Header.Render("Time summary for " + start.Format("January 2006")))
	fmt.Printf("Total hours: %s\n", render.Hours(summary.TotalHours))
	fmt.Printf("Billable:    %s\n", render.Money(summary.TotalBillable))
	fmt.Printf("Cost:        %s\n", render.Money(summary.TotalCost))
	profit := fmt.Sprintf("%s (%s margin)", render.Money(summary.Profit), render.Percent(summary.Margin))
	fmt.Printf("Profit:      %s\n", render.ProfitStyle(summary.Profit).Render(profit))

	if len(summary.Groups) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(render.Header.Render(fmt.Sprintf("%-24s  %8s  %12s  %12s  %12s  %8s",
		groupHeading(groupBy), "Hours", "Billable", "Cost", "Profit", "Margin")))
	for _, g := range summary.Groups {
		fmt.Printf("%-24s  %8s  %12s  %12s  %12s  %8s\n",
			clip(g.Key, 24), render.Hours(g.Hours), render.Money(g.Billable),
			render.Money(g.Cost), render.Money(g.Profit), render.Percent(g.Margin))
	}
	return nil
}

func runTimeUnbilled(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	ident, rr, err := newResolvers(client)
	if err != nil {
		return err
	}

	billable, billed := true, false
	entries, err := client.ListTimeEntries(ctx, freshbooks.TimeEntryFilter{Billable: &billable, Billed: &billed})
	if err != nil {
		return err
	}

	groupBy := aggregate.GroupClient
	if timeUnbilledByProject {
		groupBy = aggregate.GroupProject
	}
	if timeUnbilledByTeammate {
		groupBy = aggregate.GroupTeammate
	}
	names := &nameSource{client: client, ident: ident}
	summary := aggregate.Summarize(ctx, entries, groupBy, rr, names)

	if timeUnbilledJSON {
		type groupOut struct {
			Name   string  `json:"name"`
			Hours  float64 `json:"hours"`
			Amount float64 `json:"amount"`
		}
		out := struct {
			TotalHours    float64    `json:"total_hours"`
			TotalUnbilled float64    `json:"total_unbilled"`
			Groups        []groupOut `json:"groups"`
		}{
			TotalHours:    fl(summary.TotalHours),
			TotalUnbilled: fl(summary.TotalBillable.Round(2)),
			Groups:        make([]groupOut, 0, len(summary.Groups)),
		}
		for _, g := range summary.Groups {
			out.Groups = append(out.Groups, groupOut{Name: g.Key, Hours: fl(g.Hours), Amount: fl(g.Billable.Round(2))})
		}
		return printJSON(out)
	}

	if len(entries) == 0 {
		fmt.Println("No unbilled time.")
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%-30s  %8s  %12s", groupHeading(groupBy), "Hours", "Unbilled")))
	for _, g := range summary.Groups {
		fmt.Printf("%-30s  %8s  %12s\n", clip(g.Key, 30), render.Hours(g.Hours), render.Money(g.Billable))
	}
	fmt.Println()
	fmt.Printf("Total: %s hours, %s unbilled\n", render.Hours(summary.TotalHours), render.Money(summary.TotalBillable))
	return nil
}

// findProject matches a title fragment against the project list. The
// match must be unique; zero or multiple matches report what is
// available instead of guessing.
func findProject(ctx context.Context, client *freshbooks.Client, fragment string) (*model.Project, error) {
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(fragment)
	var matches []model.Project
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		titles := make([]string, 0, len(projects))
		for _, p := range projects {
			titles = append(titles, p.Title)
		}
		sort.Strings(titles)
		return nil, fmt.Errorf("no project matches %q (projects: %s)", fragment, strings.Join(titles, ", "))
	default:
		titles := make([]string, 0, len(matches))
		for _, m := range matches {
			titles = append(titles, m.Title)
		}
		sort.Strings(titles)
		return nil, fmt.Errorf("project %q is ambiguous (matches: %s)", fragment, strings.Join(titles, ", "))
	}
}

func runTimeAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	hours, err := decimal.NewFromString(args[0])
	if err != nil || !hours.IsPositive() {
		return fmt.Errorf("invalid hours %q", args[0])
	}

	day := time.Now()
	if timeAddDate != "" {
		day, err = time.Parse("2006-01-02", timeAddDate)
		if err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", timeAddDate)
		}
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	match, err := findProject(ctx, client, timeAddProject)
	if err != nil {
		return err
	}
	// The listing omits services, so fetch the detail.
	project, err := client.GetProject(ctx, match.ID)
	if err != nil {
		return err
	}

	var serviceID *int64
	if timeAddService != "" {
		needle := strings.ToLower(timeAddService)
		var svcMatches []model.Service
		for _, svc := range project.Services {
			if strings.Contains(strings.ToLower(svc.Name), needle) {
				svcMatches = append(svcMatches, svc)
			}
		}
		switch len(svcMatches) {
		case 1:
			serviceID = &svcMatches[0].ID
		case 0:
			names := make([]string, 0, len(project.Services))
			for _, svc := range project.Services {
				names = append(names, svc.Name)
			}
			return fmt.Errorf("no service on %q matches %q (services: %s)", project.Title, timeAddService, strings.Join(names, ", "))
		default:
			names := make([]string, 0, len(svcMatches))
			for _, svc := range svcMatches {
				names = append(names, svc.Name)
			}
			return fmt.Errorf("service %q is ambiguous (matches: %s)", timeAddService, strings.Join(names, ", "))
		}
	}

	// Entries land at 09:00 local on the chosen day.
	startedAt := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
	entry := freshbooks.NewTimeEntry{
		StartedAt: startedAt,
		Duration:  hours.Mul(decimal.NewFromInt(3600)).IntPart(),
		Billable:  project.Billable && !timeAddNonBillable,
		ProjectID: &project.ID,
		ClientID:  project.ClientID,
		ServiceID: serviceID,
		Note:      timeAddNote,
	}
	created, err := client.CreateTimeEntry(ctx, entry)
	if err != nil {
		return err
	}

	kind := "billable"
	if !entry.Billable {
		kind = "non-billable"
	}
	fmt.Printf("Logged %s %s hours on %q for %s (entry %d).\n",
		render.Hours(hours), kind, project.Title, startedAt.Format("2006-01-02"), created.ID)
	return nil
}

func runTimeExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	start, end, _, err := monthRange(timeExportMonth)
	if err != nil {
		return err
	}
	entries, err := client.ListTimeEntries(ctx, freshbooks.TimeEntryFilter{StartedFrom: &start, StartedTo: &end})
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartedAt.Before(entries[j].StartedAt) })

	rows, _, _, err := timeRows(ctx, client, entries, true)
	if err != nil {
		return err
	}

	path := timeExportOutput
	switch timeExportFormat {
	case "csv":
		if path == "" {
			path = render.ExportFilename("time_entries", time.Now())
		}
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				r.Date, r.Teammate, r.Client, r.Project, r.Service,
				decimal.NewFromFloat(r.Hours).StringFixed(2),
				fmt.Sprintf("%t", r.Billable), fmt.Sprintf("%t", r.Billed), r.Note,
			})
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.WriteCSV(f, render.TimeEntryCSVHeader, records); err != nil {
			return err
		}
	case "json":
		if path == "" {
			path = strings.TrimSuffix(render.ExportFilename("time_entries", time.Now()), ".csv") + ".json"
		}
		data, err := jsonIndent(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q, want csv or json", timeExportFormat)
	}

	fmt.Printf("Exported %d entries to %s\n", len(rows), path)
	return nil
}
