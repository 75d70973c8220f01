package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
	"github.com/mysticcoders/freshbooks-tools/internal/render"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Work with invoices",
}

var (
	invoicesListStatus string
	invoicesListClient string
	invoicesListMonth  string
	invoicesListJSON   bool
)

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Args:  cobra.NoArgs,
	RunE:  runInvoicesList,
}

var invoicesShowJSON bool

var invoicesShowCmd = &cobra.Command{
	Use:   "show NUMBER|ID",
	Short: "Show one invoice with its lines and payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoicesShow,
}

func init() {
	invoicesListCmd.Flags().StringVar(&invoicesListStatus, "status", "", "Filter by status (draft, sent, viewed, paid, ...)")
	invoicesListCmd.Flags().StringVar(&invoicesListClient, "client", "", "Filter by client (name fragment)")
	invoicesListCmd.Flags().StringVar(&invoicesListMonth, "month", "", "Only invoices dated in this month (YYYY-MM)")
	invoicesListCmd.Flags().BoolVar(&invoicesListJSON, "json", false, "Output JSON")

	invoicesShowCmd.Flags().BoolVar(&invoicesShowJSON, "json", false, "Output JSON")

	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
}

// findClient matches a name fragment against the client list,
// case-insensitively, listing the known clients when nothing matches.
func findClient(cmd *cobra.Command, client *freshbooks.Client, fragment string) (*model.Client, error) {
	clients, err := client.ListClients(cmd.Context())
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(fragment)
	for i := range clients {
		if strings.Contains(strings.ToLower(clients[i].DisplayName()), needle) {
			return &clients[i], nil
		}
	}
	names := make([]string, 0, len(clients))
	for _, cl := range clients {
		names = append(names, cl.DisplayName())
	}
	sort.Strings(names)
	return nil, fmt.Errorf("no client matches %q (clients: %s)", fragment, strings.Join(names, ", "))
}

func runInvoicesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	filter := freshbooks.InvoiceFilter{}
	if invoicesListStatus != "" {
		filter.V3Status = strings.ToLower(invoicesListStatus)
	}
	if invoicesListClient != "" {
		match, err := findClient(cmd, client, invoicesListClient)
		if err != nil {
			return err
		}
		filter.CustomerID = match.ID
	}
	if invoicesListMonth != "" {
		start, end, _, err := monthRange(invoicesListMonth)
		if err != nil {
			return err
		}
		filter.DateMin = &start
		filter.DateMax = &end
	}

	invoices, err := client.ListInvoices(ctx, filter)
	if err != nil {
		return err
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].CreateDate > invoices[j].CreateDate })

	if invoicesListJSON {
		type row struct {
			ID          int64    `json:"id"`
			Number      string   `json:"number,omitempty"`
			Date        string   `json:"date"`
			Client      string   `json:"client"`
			Status      string   `json:"status"`
			Amount      *float64 `json:"amount,omitempty"`
			Outstanding *float64 `json:"outstanding,omitempty"`
			Currency    string   `json:"currency"`
		}
		rows := make([]row, 0, len(invoices))
		for _, inv := range invoices {
			r := row{
				ID:       inv.ID,
				Date:     inv.CreateDate,
				Client:   inv.ClientName(),
				Status:   inv.DisplayStatus(),
				Currency: inv.CurrencyCode,
			}
			if inv.InvoiceNumber != nil {
				r.Number = *inv.InvoiceNumber
			}
			if inv.Amount != nil {
				f := fl(inv.Amount.Amount)
				r.Amount = &f
			}
			if inv.Outstanding != nil {
				f := fl(inv.Outstanding.Amount)
				r.Outstanding = &f
			}
			rows = append(rows, r)
		}
		return printJSON(rows)
	}

	if len(invoices) == 0 {
		fmt.Println("No invoices found.")
		return nil
	}

	fmt.Println(render.Header.Render(fmt.Sprintf("%-10s  %-10s  %-26s  %-10s  %12s  %12s",
		"Number", "Date", "Client", "Status", "Amount", "Outstanding")))
	totalAmount := decimal.Zero
	totalOutstanding := decimal.Zero
	for _, inv := range invoices {
		number := strconv.FormatInt(inv.ID, 10)
		if inv.InvoiceNumber != nil && *inv.InvoiceNumber != "" {
			number = *inv.InvoiceNumber
		}
		amount, outstanding := "", ""
		if inv.Amount != nil {
			amount = render.Money(inv.Amount.Amount)
			totalAmount = totalAmount.Add(inv.Amount.Amount)
		}
		if inv.Outstanding != nil {
			outstanding = render.Money(inv.Outstanding.Amount)
			totalOutstanding = totalOutstanding.Add(inv.Outstanding.Amount)
		}
		line := fmt.Sprintf("%-10s  %-10s  %-26s  %-10s  %12s  %12s",
			clip(number, 10), inv.CreateDate, clip(inv.ClientName(), 26), inv.DisplayStatus(), amount, outstanding)
		if inv.Outstanding != nil && inv.Outstanding.Amount.IsZero() {
			line = render.Dim.Render(line)
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Printf("%d invoices, %s total, %s outstanding\n",
		len(invoices), render.Money(totalAmount), render.Money(totalOutstanding))
	return nil
}

func runInvoicesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	// The reference may be an invoice number or a raw id; numbers win.
	ref := args[0]
	invoices, err := client.ListInvoices(ctx, freshbooks.InvoiceFilter{})
	if err != nil {
		return err
	}
	var id int64
	for _, inv := range invoices {
		if inv.InvoiceNumber != nil && *inv.InvoiceNumber == ref {
			id = inv.ID
			break
		}
	}
	if id == 0 {
		parsed, perr := strconv.ParseInt(ref, 10, 64)
		if perr != nil {
			return fmt.Errorf("no invoice with number %q", ref)
		}
		id = parsed
	}

	invoice, err := client.GetInvoice(ctx, id)
	if err != nil {
		return err
	}

	if invoicesShowJSON {
		return printJSON(invoice)
	}

	number := strconv.FormatInt(invoice.ID, 10)
	if invoice.InvoiceNumber != nil && *invoice.InvoiceNumber != "" {
		number = *invoice.InvoiceNumber
	}
	fmt.Println(render.Header.Render(fmt.Sprintf("Invoice %s", number)))
	fmt.Printf("Client:  %s\n", invoice.ClientName())
	fmt.Printf("Date:    %s\n", invoice.CreateDate)
	if invoice.DueDate != nil && *invoice.DueDate != "" {
		fmt.Printf("Due:     %s\n", *invoice.DueDate)
	}
	fmt.Printf("Status:  %s\n", invoice.DisplayStatus())

	if len(invoice.Lines) > 0 {
		fmt.Println()
		fmt.Println(render.Header.Render(fmt.Sprintf("%-34s  %8s  %12s  %12s", "Line", "Qty", "Unit", "Amount")))
		for _, line := range invoice.Lines {
			name := ""
			if line.Name != nil {
				name = *line.Name
			}
			unit, amount := "", ""
			if line.UnitCost != nil {
				unit = render.Money(line.UnitCost.Amount)
			}
			if line.Amount != nil {
				amount = render.Money(line.Amount.Amount)
			}
			fmt.Printf("%-34s  %8s  %12s  %12s\n", clip(name, 34), line.Qty.String(), unit, amount)
		}
	}

	if len(invoice.Payments) > 0 {
		fmt.Println()
		fmt.Println(render.Header.Render(fmt.Sprintf("%-12s  %12s  %s", "Paid on", "Amount", "Type")))
		for _, p := range invoice.Payments {
			ptype := ""
			if p.Type != nil {
				ptype = *p.Type
			}
			fmt.Printf("%-12s  %12s  %s\n", p.Date, render.Money(p.Amount.Amount), ptype)
		}
	}

	fmt.Println()
	if invoice.Amount != nil {
		fmt.Printf("Total:       %s %s\n", render.Money(invoice.Amount.Amount), invoice.CurrencyCode)
	}
	if invoice.Paid != nil {
		fmt.Printf("Paid:        %s\n", render.Money(invoice.Paid.Amount))
	}
	if invoice.Outstanding != nil {
		out := render.Money(invoice.Outstanding.Amount)
		if invoice.Outstanding.Amount.IsPositive() {
			out = render.Warn.Render(out)
		}
		fmt.Printf("Outstanding: %s\n", out)
	}
	return nil
}
