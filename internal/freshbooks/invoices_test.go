package freshbooks_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mysticcoders/freshbooks-tools/internal/freshbooks"
)

func TestListInvoices(t *testing.T) {
	var query url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/accounting/account/ACME1/invoices/invoices", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		// Accounting listings carry their pagination fields inside result.
		fmt.Fprint(w, `{"response": {"result": {
			"invoices": [
				{
					"invoiceid": 1001,
					"invoice_number": "2026-014",
					"customerid": 7,
					"create_date": "2026-07-01",
					"currency_code": "USD",
					"v3_status": "overdue",
					"amount": {"amount": "1850.00", "code": "USD"},
					"outstanding": {"amount": "1850.00", "code": "USD"}
				},
				{
					"invoiceid": 1002,
					"customerid": 7,
					"create_date": "2026-07-15",
					"currency_code": "USD",
					"status": 4,
					"amount": {"amount": "500.00", "code": "USD"},
					"outstanding": {"amount": "0.00", "code": "USD"}
				}
			],
			"total": 2, "per_page": 100, "page": 1, "pages": 1
		}}}`)
	})
	c := newTestClient(t, mux)

	dateMin := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	invoices, err := c.ListInvoices(context.Background(), freshbooks.InvoiceFilter{
		CustomerID: 7,
		V3Status:   "overdue",
		DateMin:    &dateMin,
	})
	require.NoError(t, err)

	require.Equal(t, "7", query.Get("search[customerid]"))
	require.Equal(t, "overdue", query.Get("search[v3_status]"))
	require.Equal(t, "2026-07-01", query.Get("search[date_min]"))
	require.Empty(t, query.Get("search[date_max]"))

	require.Len(t, invoices, 2)
	require.Equal(t, int64(1001), invoices[0].ID)
	require.Equal(t, "Overdue", invoices[0].DisplayStatus())
	require.Equal(t, "1850", invoices[0].Outstanding.Amount.String())
	require.Equal(t, "Paid", invoices[1].DisplayStatus())
	require.True(t, invoices[1].Outstanding.IsZero())
}

func TestGetInvoiceIncludesLinesAndPayments(t *testing.T) {
	var query url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/accounting/account/ACME1/invoices/invoices/1001", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response": {"result": {"invoice": {
			"invoiceid": 1001,
			"invoice_number": "2026-014",
			"customerid": 7,
			"create_date": "2026-07-01",
			"currency_code": "USD",
			"organization": "Initech",
			"lines": [
				{"lineid": 1, "name": "Development", "qty": "32", "unit_cost": {"amount": "150.00"}, "amount": {"amount": "4800.00"}}
			],
			"payments": [
				{"paymentid": 55, "invoiceid": 1001, "amount": {"amount": "2000.00"}, "date": "2026-07-20"}
			]
		}}}}`)
	})
	c := newTestClient(t, mux)

	invoice, err := c.GetInvoice(context.Background(), 1001)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"lines", "payments"}, query["include[]"])
	require.Equal(t, "Initech", invoice.ClientName())
	require.Len(t, invoice.Lines, 1)
	require.Equal(t, "4800", invoice.Lines[0].Amount.Amount.String())
	require.Len(t, invoice.Payments, 1)
	require.Equal(t, "2000", invoice.Payments[0].Amount.Amount.String())
}

func TestGetServiceRate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/comments/business/99/service/5/rate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"service_rate": {"rate": "175.00"}}`)
	})
	mux.HandleFunc("/comments/business/99/service/6/rate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Rate not found"}`)
	})
	c := newTestClient(t, mux)

	sr, err := c.GetServiceRate(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "175", sr.Rate.String())

	// Services without a configured rate are a 404, not a decode failure.
	_, err = c.GetServiceRate(context.Background(), 6)
	var apiErr *freshbooks.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "Rate not found", apiErr.Message)
}
