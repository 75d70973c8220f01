package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceLine is a single line item on an invoice.
type InvoiceLine struct {
	LineID      *int64          `json:"lineid,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Qty         decimal.Decimal `json:"qty"`
	UnitCost    *Amount         `json:"unit_cost,omitempty"`
	Amount      *Amount         `json:"amount,omitempty"`
	Type        int             `json:"type"`
}

// Payment is a payment applied to an invoice.
type Payment struct {
	ID         int64   `json:"paymentid"`
	InvoiceID  int64   `json:"invoiceid"`
	Amount     Amount  `json:"amount"`
	Date       string  `json:"date"`
	Type       *string `json:"type,omitempty"`
	Note       *string `json:"note,omitempty"`
	Gateway    *string `json:"gateway,omitempty"`
	FromCredit bool    `json:"from_credit,omitempty"`
	Updated    *string `json:"updated,omitempty"`
}

// Invoice is an invoice record from the accounting API. Status carries the
// legacy numeric code; V3Status, when present, supersedes it for display.
type Invoice struct {
	ID            int64            `json:"invoiceid"`
	InvoiceNumber *string          `json:"invoice_number,omitempty"`
	CustomerID    int64            `json:"customerid"`
	CreateDate    string           `json:"create_date"`
	DueDate       *string          `json:"due_date,omitempty"`
	CurrencyCode  string           `json:"currency_code"`
	Status        int              `json:"status"`
	V3Status      *string          `json:"v3_status,omitempty"`
	Amount        *Amount          `json:"amount,omitempty"`
	Paid          *Amount          `json:"paid,omitempty"`
	Outstanding   *Amount          `json:"outstanding,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	FName         *string          `json:"fname,omitempty"`
	LName         *string          `json:"lname,omitempty"`
	Organization  *string          `json:"organization,omitempty"`
	Lines         []InvoiceLine    `json:"lines,omitempty"`
	Payments      []Payment        `json:"payments,omitempty"`
}

var invoiceStatusNames = map[int]string{
	0: "Disputed",
	1: "Draft",
	2: "Sent",
	3: "Viewed",
	4: "Paid",
	5: "Auto Paid",
	6: "Retry",
	7: "Failed",
	8: "Partial",
}

// DisplayStatus returns a human-readable invoice status.
func (i Invoice) DisplayStatus() string {
	if i.V3Status != nil && *i.V3Status != "" {
		return titleCase(*i.V3Status)
	}
	if name, ok := invoiceStatusNames[i.Status]; ok {
		return name
	}
	return "Unknown"
}

// ClientName returns the best available client label for the invoice.
func (i Invoice) ClientName() string {
	if i.Organization != nil && *i.Organization != "" {
		return *i.Organization
	}
	name := strings.TrimSpace(deref(i.FName) + " " + deref(i.LName))
	if name != "" {
		return name
	}
	return "Unknown"
}

// Client is a client (customer) record from the accounting API.
type Client struct {
	ID           int64   `json:"userid"`
	FName        *string `json:"fname,omitempty"`
	LName        *string `json:"lname,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Email        *string `json:"email,omitempty"`
	CurrencyCode string  `json:"currency_code"`
}

// DisplayName returns the organization if set, else first/last name.
func (c Client) DisplayName() string {
	if c.Organization != nil && *c.Organization != "" {
		return *c.Organization
	}
	name := strings.TrimSpace(deref(c.FName) + " " + deref(c.LName))
	if name != "" {
		return name
	}
	return "Unknown"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// titleCase uppercases the first letter of each underscore- or
// space-separated word: "auto_paid" becomes "Auto Paid".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
