package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AgingBuckets is the set of AR aging buckets attached to a report total,
// a client account, or a single invoice. Bucket values use the dual-shape
// Amount decoder; the remote API wraps them on some responses and returns
// bare numbers on others.
type AgingBuckets struct {
	Current    Amount `json:"0-30"`
	Days31to60 Amount `json:"31-60"`
	Days61to90 Amount `json:"61-90"`
	Days91Plus Amount `json:"91+"`
	Total      Amount `json:"total"`
}

// TotalAmount returns the reported total, falling back to the sum of the
// four buckets when the server omitted one.
func (b AgingBuckets) TotalAmount() decimal.Decimal {
	if !b.Total.IsZero() {
		return b.Total.Amount
	}
	return b.Current.Amount.
		Add(b.Days31to60.Amount).
		Add(b.Days61to90.Amount).
		Add(b.Days91Plus.Amount)
}

// WorstBucket returns the label of the oldest bucket holding a nonzero
// balance, or "" when every bucket is clear.
func (b AgingBuckets) WorstBucket() string {
	switch {
	case !b.Days91Plus.IsZero():
		return "91+"
	case !b.Days61to90.IsZero():
		return "61-90"
	case !b.Days31to60.IsZero():
		return "31-60"
	case !b.Current.IsZero():
		return "0-30"
	}
	return ""
}

// AgingInvoice is a per-invoice breakdown row inside an aging account.
type AgingInvoice struct {
	AgingBuckets
	InvoiceID     *int64  `json:"invoiceid,omitempty"`
	InvoiceNumber *string `json:"invoice_number,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
}

// AgingAccount is one client's row in the AR aging report.
type AgingAccount struct {
	AgingBuckets
	UserID       *int64         `json:"userid,omitempty"`
	Organization *string        `json:"organization,omitempty"`
	FName        *string        `json:"fname,omitempty"`
	LName        *string        `json:"lname,omitempty"`
	Invoices     []AgingInvoice `json:"invoices,omitempty"`
}

// Name returns the account's client label.
func (a AgingAccount) Name() string {
	if a.Organization != nil && *a.Organization != "" {
		return *a.Organization
	}
	name := strings.TrimSpace(deref(a.FName) + " " + deref(a.LName))
	if name != "" {
		return name
	}
	return "Unknown Client"
}

// AccountAgingReport is the accounts receivable aging report.
type AccountAgingReport struct {
	EndDate       string         `json:"end_date"`
	CompanyName   string         `json:"company_name"`
	CurrencyCode  string         `json:"currency_code"`
	Totals        AgingBuckets   `json:"totals"`
	Accounts      []AgingAccount `json:"accounts"`
	DownloadToken *string        `json:"download_token,omitempty"`
}

// PLPeriod is one income period in a profit and loss report.
type PLPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Total     Amount `json:"total"`
}

// ProfitLossReport is the business-scoped profit and loss report.
// Resolution is the API code: "m", "q", or "y".
type ProfitLossReport struct {
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Resolution   string     `json:"resolution"`
	CurrencyCode string     `json:"currency_code"`
	Income       []PLPeriod `json:"income"`
}

// TotalRevenue sums revenue across all income periods.
func (r ProfitLossReport) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Income {
		total = total.Add(p.Total.Amount)
	}
	return total
}
