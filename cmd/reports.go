package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
	"github.com/mysticcoders/freshbooks-tools/internal/render"
	"github.com/mysticcoders/freshbooks-tools/internal/reportcalc"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Receivables and revenue reports",
}

var (
	arAgingEndDate  string
	arAgingCurrency string
	arAgingJSON     bool
	arAgingExport   string
	arAgingOutput   string
)

var arAgingCmd = &cobra.Command{
	Use:   "ar-aging",
	Short: "Accounts receivable aging by client",
	Args:  cobra.NoArgs,
	RunE:  runARAging,
}

var clientARJSON bool

var clientARCmd = &cobra.Command{
	Use:   "client-ar NAME",
	Short: "Outstanding receivables for one client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientAR,
}

var (
	revenueStartDate  string
	revenueEndDate    string
	revenueResolution string
	revenueCurrency   string
	revenueJSON       bool
	revenueExport     string
	revenueOutput     string
)

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Revenue by period with days sales outstanding",
	Args:  cobra.NoArgs,
	RunE:  runRevenue,
}

func init() {
	arAgingCmd.Flags().StringVar(&arAgingEndDate, "end-date", "", "Report as of this date (YYYY-MM-DD, default: today)")
	arAgingCmd.Flags().StringVar(&arAgingCurrency, "currency", "", "Restrict to one currency code")
	arAgingCmd.Flags().BoolVar(&arAgingJSON, "json", false, "Output JSON")
	arAgingCmd.Flags().StringVar(&arAgingExport, "export", "", "Export format: csv")
	arAgingCmd.Flags().StringVar(&arAgingOutput, "output", "", "Export path (default: ar_aging_<timestamp>.csv)")

	clientARCmd.Flags().BoolVar(&clientARJSON, "json", false, "Output JSON")

	revenueCmd.Flags().StringVar(&revenueStartDate, "start-date", "", "Period start (YYYY-MM-DD)")
	revenueCmd.Flags().StringVar(&revenueEndDate, "end-date", "", "Period end (YYYY-MM-DD)")
	revenueCmd.Flags().StringVar(&revenueResolution, "resolution", "monthly", "Period resolution: monthly, quarterly, yearly")
	revenueCmd.Flags().StringVar(&revenueCurrency, "currency", "", "Restrict to one currency code")
	revenueCmd.Flags().BoolVar(&revenueJSON, "json", false, "Output JSON")
	revenueCmd.Flags().StringVar(&revenueExport, "export", "", "Export format: csv")
	revenueCmd.Flags().StringVar(&revenueOutput, "output", "", "Export path (default: revenue_<timestamp>.csv)")
	_ = revenueCmd.MarkFlagRequired("start-date")
	_ = revenueCmd.MarkFlagRequired("end-date")

	reportsCmd.AddCommand(arAgingCmd)
	reportsCmd.AddCommand(clientARCmd)
	reportsCmd.AddCommand(revenueCmd)
}

// bucketCells formats the four aging buckets plus total, dimming zero
// amounts so the overdue ones stand out.
func bucketCells(b model.AgingBuckets) string {
	cell := func(a model.Amount, style lipgloss.Style) string {
		s := fmt.Sprintf("%12s", render.Money(a.Amount))
		if a.Amount.IsZero() {
			return render.Dim.Render(s)
		}
		return style.Render(s)
	}
	return cell(b.Current, lipgloss.NewStyle()) + "  " +
		cell(b.Days31to60, render.Warn) + "  " +
		cell(b.Days61to90, render.Alert) + "  " +
		cell(b.Days91Plus, render.Bad) + "  " +
		fmt.Sprintf("%12s", render.Money(b.TotalAmount()))
}

type agingRowOut struct {
	Client     string  `json:"client"`
	Current    float64 `json:"days_0_30"`
	Days31to60 float64 `json:"days_31_60"`
	Days61to90 float64 `json:"days_61_90"`
	Days91Plus float64 `json:"days_91_plus"`
	Total      float64 `json:"total"`
}

func agingRow(name string, b model.AgingBuckets) agingRowOut {
	return agingRowOut{
		Client:     name,
		Current:    fl(b.Current.Amount),
		Days31to60: fl(b.Days31to60.Amount),
		Days61to90: fl(b.Days61to90.Amount),
		Days91Plus: fl(b.Days91Plus.Amount),
		Total:      fl(b.TotalAmount()),
	}
}

func agingCSVRow(name string, b model.AgingBuckets, currency string) []string {
	return []string{
		name,
		b.Current.Amount.StringFixed(2),
		b.Days31to60.Amount.StringFixed(2),
		b.Days61to90.Amount.StringFixed(2),
		b.Days91Plus.Amount.StringFixed(2),
		b.TotalAmount().StringFixed(2),
		currency,
	}
}

func runARAging(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	endDate, err := parseDateFlag("end date", arAgingEndDate)
	if err != nil {
		return err
	}
	report, err := client.GetARAgingReport(ctx, endDate, arAgingCurrency)
	if err != nil {
		return err
	}

	accounts := append([]model.AgingAccount(nil), report.Accounts...)
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].TotalAmount().GreaterThan(accounts[j].TotalAmount())
	})

	if arAgingJSON {
		out := struct {
			EndDate  string        `json:"end_date"`
			Currency string        `json:"currency"`
			Totals   agingRowOut   `json:"totals"`
			Accounts []agingRowOut `json:"accounts"`
		}{
			EndDate:  report.EndDate,
			Currency: report.CurrencyCode,
			Totals:   agingRow("TOTAL", report.Totals),
			Accounts: make([]agingRowOut, 0, len(accounts)),
		}
		for _, a := range accounts {
			out.Accounts = append(out.Accounts, agingRow(a.Name(), a.AgingBuckets))
		}
		return printJSON(out)
	}

	if arAgingExport != "" {
		if arAgingExport != "csv" {
			return fmt.Errorf("unknown export format %q, want csv", arAgingExport)
		}
		path := arAgingOutput
		if path == "" {
			path = render.ExportFilename("ar_aging", time.Now())
		}
		rows := make([][]string, 0, len(accounts)+1)
		for _, a := range accounts {
			rows = append(rows, agingCSVRow(a.Name(), a.AgingBuckets, report.CurrencyCode))
		}
		rows = append(rows, agingCSVRow("TOTAL", report.Totals, report.CurrencyCode))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.WriteCSV(f, render.ARAgingCSVHeader, rows); err != nil {
			return err
		}
		fmt.Printf("Exported aging for %d clients to %s\n", len(accounts), path)
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("AR aging as of %s (%s)", report.EndDate, report.CurrencyCode)))
	fmt.Println(render.Header.Render(fmt.Sprintf("%-26s  %12s  %12s  %12s  %12s  %12s",
		"Client", "0-30", "31-60", "61-90", "91+", "Total")))
	for _, a := range accounts {
		fmt.Printf("%-26s  %s\n", clip(a.Name(), 26), bucketCells(a.AgingBuckets))
	}
	fmt.Println()
	fmt.Printf("%-26s  %s\n", "TOTAL", bucketCells(report.Totals))
	return nil
}

func runClientAR(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	report, err := client.GetARAgingReport(ctx, nil, "")
	if err != nil {
		return err
	}

	needle := strings.ToLower(args[0])
	var match *model.AgingAccount
	for i := range report.Accounts {
		if strings.Contains(strings.ToLower(report.Accounts[i].Name()), needle) {
			match = &report.Accounts[i]
			break
		}
	}
	if match == nil {
		names := make([]string, 0, len(report.Accounts))
		for _, a := range report.Accounts {
			names = append(names, a.Name())
		}
		sort.Strings(names)
		if len(names) == 0 {
			return fmt.Errorf("no outstanding receivables on the aging report")
		}
		return fmt.Errorf("no client matches %q (clients with balances: %s)", args[0], strings.Join(names, ", "))
	}

	if clientARJSON {
		out := struct {
			EndDate     string      `json:"end_date"`
			Account     agingRowOut `json:"account"`
			WorstBucket string      `json:"worst_bucket,omitempty"`
		}{
			EndDate:     report.EndDate,
			Account:     agingRow(match.Name(), match.AgingBuckets),
			WorstBucket: match.WorstBucket(),
		}
		return printJSON(out)
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%s as of %s", match.Name(), report.EndDate)))
	fmt.Println(render.Header.Render(fmt.Sprintf("%12s  %12s  %12s  %12s  %12s",
		"0-30", "31-60", "61-90", "91+", "Total")))
	fmt.Println(bucketCells(match.AgingBuckets))
	fmt.Println()
	if worst := match.WorstBucket(); worst != "" {
		line := fmt.Sprintf("Oldest outstanding bucket: %s days", worst)
		switch worst {
		case "91+":
			line = render.Bad.Render(line)
		case "61-90":
			line = render.Alert.Render(line)
		case "31-60":
			line = render.Warn.Render(line)
		default:
			line = render.Good.Render(line)
		}
		fmt.Println(line)
	} else {
		fmt.Println(render.Good.Render("Nothing outstanding."))
	}
	return nil
}

var resolutionCodes = map[string]string{
	"monthly":   reportcalc.ResolutionMonth,
	"quarterly": reportcalc.ResolutionQuarter,
	"yearly":    reportcalc.ResolutionYear,
}

func runRevenue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	start, err := time.Parse("2006-01-02", revenueStartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q, want YYYY-MM-DD", revenueStartDate)
	}
	end, err := time.Parse("2006-01-02", revenueEndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q, want YYYY-MM-DD", revenueEndDate)
	}
	resolution, ok := resolutionCodes[strings.ToLower(revenueResolution)]
	if !ok {
		return fmt.Errorf("unknown resolution %q, want monthly, quarterly, or yearly", revenueResolution)
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	pl, err := client.GetProfitLossReport(ctx, start, end, resolution, revenueCurrency)
	if err != nil {
		return err
	}
	// DSO compares each period's revenue against today's receivables
	// balance.
	aging, err := client.GetARAgingReport(ctx, nil, revenueCurrency)
	if err != nil {
		return err
	}
	arTotal := aging.Totals.TotalAmount()

	type period struct {
		label   string
		revenue decimal.Decimal
		dso     decimal.Decimal
		hasDSO  bool
	}
	periods := make([]period, 0, len(pl.Income))
	for _, p := range pl.Income {
		periodStart, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			return fmt.Errorf("bad period start %q in report: %w", p.StartDate, err)
		}
		days := reportcalc.DaysInPeriod(periodStart.Year(), periodStart.Month(), resolution)
		dso, ok := reportcalc.DSO(arTotal, p.Total.Amount, days)
		periods = append(periods, period{
			label:   reportcalc.PeriodLabel(periodStart, resolution),
			revenue: p.Total.Amount,
			dso:     dso,
			hasDSO:  ok,
		})
	}

	if revenueJSON {
		type periodOut struct {
			Period  string   `json:"period"`
			Revenue float64  `json:"revenue"`
			DSO     *float64 `json:"dso"`
		}
		out := struct {
			StartDate    string      `json:"start_date"`
			EndDate      string      `json:"end_date"`
			Currency     string      `json:"currency"`
			ARBalance    float64     `json:"ar_balance"`
			TotalRevenue float64     `json:"total_revenue"`
			Periods      []periodOut `json:"periods"`
		}{
			StartDate:    pl.StartDate,
			EndDate:      pl.EndDate,
			Currency:     pl.CurrencyCode,
			ARBalance:    fl(arTotal),
			TotalRevenue: fl(pl.TotalRevenue()),
			Periods:      make([]periodOut, 0, len(periods)),
		}
		for _, p := range periods {
			po := periodOut{Period: p.label, Revenue: fl(p.revenue)}
			if p.hasDSO {
				v := fl(p.dso)
				po.DSO = &v
			}
			out.Periods = append(out.Periods, po)
		}
		return printJSON(out)
	}

	if revenueExport != "" {
		if revenueExport != "csv" {
			return fmt.Errorf("unknown export format %q, want csv", revenueExport)
		}
		path := revenueOutput
		if path == "" {
			path = render.ExportFilename("revenue", time.Now())
		}
		rows := make([][]string, 0, len(periods)+1)
		for _, p := range periods {
			dso := ""
			if p.hasDSO {
				dso = p.dso.StringFixed(1)
			}
			rows = append(rows, []string{p.label, p.revenue.StringFixed(2), dso, pl.CurrencyCode})
		}
		rows = append(rows, []string{"TOTAL", pl.TotalRevenue().StringFixed(2), "", pl.CurrencyCode})
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.WriteCSV(f, render.RevenueCSVHeader, rows); err != nil {
			return err
		}
		fmt.Printf("Exported %d periods to %s\n", len(periods), path)
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("Revenue %s to %s (%s)", pl.StartDate, pl.EndDate, pl.CurrencyCode)))
	fmt.Printf("Current AR balance: %s\n\n", render.Money(arTotal))
	fmt.Println(render.Header.Render(fmt.Sprintf("%-10s  %14s  %10s", "Period", "Revenue", "DSO")))
	for _, p := range periods {
		dso := render.Dim.Render(fmt.Sprintf("%10s", "n/a"))
		if p.hasDSO {
			dso = render.DSOStyle(p.dso).Render(fmt.Sprintf("%10s", p.dso.StringFixed(1)))
		}
		fmt.Printf("%-10s  %14s  %s\n", p.label, render.Money(p.revenue), dso)
	}
	fmt.Println()
	fmt.Printf("%-10s  %14s\n", "TOTAL", render.Money(pl.TotalRevenue()))
	return nil
}
