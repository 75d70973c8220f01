package freshbooks

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// GetARAgingReport fetches the accounts receivable aging report as of
// endDate (today when nil), optionally restricted to one currency.
func (c *Client) GetARAgingReport(ctx context.Context, endDate *time.Time, currency string) (*model.AccountAgingReport, error) {
	endpoint, err := c.accountingURL(ctx, "reports/accounting/accounts_aging")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if endDate != nil {
		params.Set("end_date", endDate.Format(dateFormat))
	}
	if currency != "" {
		params.Set("currency_code", currency)
	}

	var result struct {
		AccountsAging model.AccountAgingReport `json:"accounts_aging"`
	}
	if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("fetching AR aging report: %w", err)
	}
	return &result.AccountsAging, nil
}

// GetProfitLossReport fetches the profit and loss report between start
// and end at the given resolution ("m", "q", or "y").
func (c *Client) GetProfitLossReport(ctx context.Context, start, end time.Time, resolution, currency string) (*model.ProfitLossReport, error) {
	endpoint, err := c.businessReportsURL(ctx, "profit_and_loss")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("start_date", start.Format(dateFormat))
	params.Set("end_date", end.Format(dateFormat))
	if resolution != "" {
		params.Set("resolution", resolution)
	}
	if currency != "" {
		params.Set("currency_code", currency)
	}

	var result struct {
		ProfitLoss model.ProfitLossReport `json:"profitloss"`
	}
	if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
		return nil, fmt.Errorf("fetching profit and loss report: %w", err)
	}
	return &result.ProfitLoss, nil
}
