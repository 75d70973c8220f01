package freshbooks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// dateFormat is the date-only layout the accounting search params use.
const dateFormat = "2006-01-02"

// InvoiceFilter narrows an invoice listing. Zero fields are omitted.
type InvoiceFilter struct {
	CustomerID int64
	V3Status   string
	DateMin    *time.Time
	DateMax    *time.Time
}

func (f InvoiceFilter) query(page int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if f.CustomerID != 0 {
		params.Set("search[customerid]", strconv.FormatInt(f.CustomerID, 10))
	}
	if f.V3Status != "" {
		params.Set("search[v3_status]", f.V3Status)
	}
	if f.DateMin != nil {
		params.Set("search[date_min]", f.DateMin.Format(dateFormat))
	}
	if f.DateMax != nil {
		params.Set("search[date_max]", f.DateMax.Format(dateFormat))
	}
	return params
}

// ListInvoices fetches all invoices matching the filter.
func (c *Client) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	endpoint, err := c.accountingURL(ctx, "invoices/invoices")
	if err != nil {
		return nil, err
	}

	var invoices []model.Invoice
	for page := 1; ; page++ {
		var result struct {
			Invoices []model.Invoice `json:"invoices"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, filter.query(page), &result); err != nil {
			return nil, fmt.Errorf("listing invoices (page %d): %w", page, err)
		}
		if len(result.Invoices) == 0 {
			break
		}
		invoices = append(invoices, result.Invoices...)
		if len(invoices) >= result.Total {
			break
		}
	}
	c.log.Debug("fetched invoices", "count", len(invoices))
	return invoices, nil
}

// GetInvoice fetches one invoice with its lines and payments included.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*model.Invoice, error) {
	endpoint, err := c.accountingURL(ctx, fmt.Sprintf("invoices/invoices/%d", id))
	if err != nil {
		return nil, err
	}

	params := url.Values{"include[]": {"lines", "payments"}}
	var result struct {
		Invoice model.Invoice `json:"invoice"`
	}
	if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("fetching invoice %d: %w", id, err)
	}
	return &result.Invoice, nil
}

// ListClients fetches the account's client records.
func (c *Client) ListClients(ctx context.Context) ([]model.Client, error) {
	endpoint, err := c.accountingURL(ctx, "users/clients")
	if err != nil {
		return nil, err
	}

	var clients []model.Client
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var result struct {
			Clients []model.Client `json:"clients"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
			return nil, fmt.Errorf("listing clients (page %d): %w", page, err)
		}
		if len(result.Clients) == 0 {
			break
		}
		clients = append(clients, result.Clients...)
		if len(clients) >= result.Total {
			break
		}
	}
	return clients, nil
}

// ListPayments fetches payments recorded in the given date window.
func (c *Client) ListPayments(ctx context.Context, from, to *time.Time) ([]model.Payment, error) {
	endpoint, err := c.accountingURL(ctx, "payments/payments")
	if err != nil {
		return nil, err
	}

	var payments []model.Payment
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))
		if from != nil {
			params.Set("search[date_min]", from.Format(dateFormat))
		}
		if to != nil {
			params.Set("search[date_max]", to.Format(dateFormat))
		}

		var result struct {
			Payments []model.Payment `json:"payments"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
			return nil, fmt.Errorf("listing payments (page %d): %w", page, err)
		}
		if len(result.Payments) == 0 {
			break
		}
		payments = append(payments, result.Payments...)
		if len(payments) >= result.Total {
			break
		}
	}
	return payments, nil
}
