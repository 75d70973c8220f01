package freshbooks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	DateMin *time.Time
	DateMax *time.Time
	Status  *int
}

func (f ExpenseFilter) query(page int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if f.DateMin != nil {
		params.Set("search[date_min]", f.DateMin.Format(dateFormat))
	}
	if f.DateMax != nil {
		params.Set("search[date_max]", f.DateMax.Format(dateFormat))
	}
	if f.Status != nil {
		params.Set("search[status]", strconv.Itoa(*f.Status))
	}
	return params
}

// ListExpenses fetches all expenses matching the filter.
func (c *Client) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error) {
	endpoint, err := c.accountingURL(ctx, "expenses/expenses")
	if err != nil {
		return nil, err
	}

	var expenses []model.Expense
	for page := 1; ; page++ {
		var result struct {
			Expenses []model.Expense `json:"expenses"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, filter.query(page), &result); err != nil {
			return nil, fmt.Errorf("listing expenses (page %d): %w", page, err)
		}
		if len(result.Expenses) == 0 {
			break
		}
		expenses = append(expenses, result.Expenses...)
		if len(expenses) >= result.Total {
			break
		}
	}
	c.log.Debug("fetched expenses", "count", len(expenses))
	return expenses, nil
}

// GetExpense fetches one expense by id.
func (c *Client) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	endpoint, err := c.accountingURL(ctx, fmt.Sprintf("expenses/expenses/%d", id))
	if err != nil {
		return nil, err
	}

	var result struct {
		Expense model.Expense `json:"expense"`
	}
	if err := c.getAccounting(ctx, endpoint, nil, &result); err != nil {
		return nil, fmt.Errorf("fetching expense %d: %w", id, err)
	}
	return &result.Expense, nil
}

// ListExpenseCategories fetches the expense category catalog.
func (c *Client) ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error) {
	endpoint, err := c.accountingURL(ctx, "expenses/categories")
	if err != nil {
		return nil, err
	}

	var categories []model.ExpenseCategory
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var result struct {
			Categories []model.ExpenseCategory `json:"categories"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
			return nil, fmt.Errorf("listing expense categories (page %d): %w", page, err)
		}
		if len(result.Categories) == 0 {
			break
		}
		categories = append(categories, result.Categories...)
		if len(categories) >= result.Total {
			break
		}
	}
	return categories, nil
}
