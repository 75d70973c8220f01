package model

// Expense is an expense record from the accounting API. Amount and the two
// tax amounts use the dual-shape Amount decoder because the server returns
// them wrapped on some accounts and bare on others.
type Expense struct {
	ID           int64   `json:"expenseid"`
	Amount       Amount  `json:"amount"`
	Date         string  `json:"date"`
	Vendor       *string `json:"vendor,omitempty"`
	CategoryID   *int64  `json:"categoryid,omitempty"`
	StaffID      *int64  `json:"staffid,omitempty"`
	ClientID     *int64  `json:"clientid,omitempty"`
	ProjectID    *int64  `json:"projectid,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       int     `json:"status"`
	TaxAmount1   *Amount `json:"taxAmount1,omitempty"`
	TaxAmount2   *Amount `json:"taxAmount2,omitempty"`
	TaxName1     *string `json:"taxName1,omitempty"`
	TaxName2     *string `json:"taxName2,omitempty"`
	InvoiceID    *int64  `json:"invoiceid,omitempty"`
	VisState     int     `json:"vis_state"`
}

// Expense status codes as used by the accounting API.
const (
	ExpenseStatusInternal    = 0
	ExpenseStatusOutstanding = 1
	ExpenseStatusInvoiced    = 2
	ExpenseStatusRecouped    = 4
)

var expenseStatusNames = map[int]string{
	ExpenseStatusInternal:    "Internal",
	ExpenseStatusOutstanding: "Outstanding",
	ExpenseStatusInvoiced:    "Invoiced",
	ExpenseStatusRecouped:    "Recouped",
}

// DisplayStatus returns a human-readable expense status.
func (e Expense) DisplayStatus() string {
	if name, ok := expenseStatusNames[e.Status]; ok {
		return name
	}
	return "Unknown"
}

// ExpenseCategory is an expense category from the accounting API.
type ExpenseCategory struct {
	ID       int64  `json:"categoryid"`
	Category string `json:"category"`
	IsCogs   bool   `json:"is_cogs"`
	VisState int    `json:"vis_state"`
}
