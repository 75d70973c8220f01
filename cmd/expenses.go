package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
	"github.com/mysticcoders/freshbooks-tools/internal/render"
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Work with expenses",
}

var (
	expensesListStartDate string
	expensesListEndDate   string
	expensesListCategory  string
	expensesListVendor    string
	expensesListStatus    string
	expensesListJSON      bool
)

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	Args:  cobra.NoArgs,
	RunE:  runExpensesList,
}

var expensesShowJSON bool

var expensesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesShow,
}

func init() {
	expensesListCmd.Flags().StringVar(&expensesListStartDate, "start-date", "", "Earliest expense date (YYYY-MM-DD)")
	expensesListCmd.Flags().StringVar(&expensesListEndDate, "end-date", "", "Latest expense date (YYYY-MM-DD)")
	expensesListCmd.Flags().StringVar(&expensesListCategory, "category", "", "Filter by category (name fragment)")
	expensesListCmd.Flags().StringVar(&expensesListVendor, "vendor", "", "Filter by vendor (name fragment)")
	expensesListCmd.Flags().StringVar(&expensesListStatus, "status", "", "Filter by status: internal, outstanding, invoiced, recouped")
	expensesListCmd.Flags().BoolVar(&expensesListJSON, "json", false, "Output JSON")

	expensesShowCmd.Flags().BoolVar(&expensesShowJSON, "json", false, "Output JSON")

	expensesCmd.AddCommand(expensesListCmd)
	expensesCmd.AddCommand(expensesShowCmd)
}

var expenseStatusCodes = map[string]int{
	"internal":    model.ExpenseStatusInternal,
	"outstanding": model.ExpenseStatusOutstanding,
	"invoiced":    model.ExpenseStatusInvoiced,
	"recouped":    model.ExpenseStatusRecouped,
}

// categoryNames fetches the category catalog as an id-to-name map.
func categoryNames(ctx context.Context, client *freshbooks.Client) map[int64]string {
	names := map[int64]string{}
	categories, err := client.ListExpenseCategories(ctx)
	if err != nil {
		logger.Warn("expense categories unavailable", "err", err)
		return names
	}
	for _, c := range categories {
		names[c.ID] = c.Category
	}
	return names
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func runExpensesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	filter := freshbooks.ExpenseFilter{}
	if filter.DateMin, err = parseDateFlag("start date", expensesListStartDate); err != nil {
		return err
	}
	if filter.DateMax, err = parseDateFlag("end date", expensesListEndDate); err != nil {
		return err
	}
	if expensesListStatus != "" {
		code, ok := expenseStatusCodes[strings.ToLower(expensesListStatus)]
		if !ok {
			return fmt.Errorf("unknown status %q, want internal, outstanding, invoiced, or recouped", expensesListStatus)
		}
		filter.Status = &code
	}

	expenses, err := client.ListExpenses(ctx, filter)
	if err != nil {
		return err
	}

	categories := categoryNames(ctx, client)

	// Vendor and category narrowing happen here: the API has no fuzzy
	// match for either.
	if expensesListVendor != "" {
		needle := strings.ToLower(expensesListVendor)
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.Vendor != nil && strings.Contains(strings.ToLower(*e.Vendor), needle) {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}
	if expensesListCategory != "" {
		needle := strings.ToLower(expensesListCategory)
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.CategoryID == nil {
				continue
			}
			if strings.Contains(strings.ToLower(categories[*e.CategoryID]), needle) {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}

	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date > expenses[j].Date })

	if expensesListJSON {
		type row struct {
			ID       int64   `json:"id"`
			Date     string  `json:"date"`
			Vendor   string  `json:"vendor,omitempty"`
			Category string  `json:"category,omitempty"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
			Status   string  `json:"status"`
			Notes    string  `json:"notes,omitempty"`
		}
		rows := make([]row, 0, len(expenses))
		for _, e := range expenses {
			r := row{
				ID:       e.ID,
				Date:     e.Date,
				Amount:   fl(e.Amount.Amount),
				Currency: e.Amount.Code,
				Status:   e.DisplayStatus(),
			}
			if e.Vendor != nil {
				r.Vendor = *e.Vendor
			}
			if e.CategoryID != nil {
				r.Category = categories[*e.CategoryID]
			}
			if e.Notes != nil {
				r.Notes = *e.Notes
			}
			rows = append(rows, r)
		}
		return printJSON(rows)
	}

	if len(expenses) == 0 {
		fmt.Println("No expenses found.")
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%-10s  %-22s  %-22s  %12s  %-12s  %s",
		"Date", "Vendor", "Category", "Amount", "Status", "Notes")))
	total := decimal.Zero
	for _, e := range expenses {
		vendor, category, notes := "", "", ""
		if e.Vendor != nil {
			vendor = *e.Vendor
		}
		if e.CategoryID != nil {
			category = categories[*e.CategoryID]
		}
		if e.Notes != nil {
			notes = *e.Notes
		}
		total = total.Add(e.Amount.Amount)
		fmt.Printf("%-10s  %-22s  %-22s  %12s  %-12s  %s\n",
			e.Date, clip(vendor, 22), clip(category, 22),
			render.Money(e.Amount.Amount), e.DisplayStatus(), clip(notes, 30))
	}
	fmt.Println()
	fmt.Printf("%d expenses, %s total\n", len(expenses), render.Money(total))
	return nil
}

func runExpensesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expense id %q", args[0])
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	expense, err := client.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if expensesShowJSON {
		return printJSON(expense)
	}

	categories := categoryNames(ctx, client)

	fmt.Println(render.Header.Render(fmt.Sprintf("Expense %d", expense.ID)))
	fmt.Printf("Date:     %s\n", expense.Date)
	if expense.Vendor != nil && *expense.Vendor != "" {
		fmt.Printf("Vendor:   %s\n", *expense.Vendor)
	}
	if expense.CategoryID != nil {
		if name, ok := categories[*expense.CategoryID]; ok {
			fmt.Printf("Category: %s\n", name)
		}
	}
	fmt.Printf("Amount:   %s %s\n", render.Money(expense.Amount.Amount), expense.Amount.Code)
	if expense.TaxAmount1 != nil {
		name := ""
		if expense.TaxName1 != nil {
			name = " " + *expense.TaxName1
		}
		fmt.Printf("Tax:      %s%s\n", render.Money(expense.TaxAmount1.Amount), name)
	}
	if expense.TaxAmount2 != nil {
		name := ""
		if expense.TaxName2 != nil {
			name = " " + *expense.TaxName2
		}
		fmt.Printf("Tax:      %s%s\n", render.Money(expense.TaxAmount2.Amount), name)
	}
	fmt.Printf("Status:   %s\n", expense.DisplayStatus())
	if expense.Notes != nil && *expense.Notes != "" {
		fmt.Printf("Notes:    %s\n", *expense.Notes)
	}
	return nil
}
