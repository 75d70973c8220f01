package freshbooks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// ListServices fetches the billable service catalog from the comments
// API.
func (c *Client) ListServices(ctx context.Context) ([]model.Service, error) {
	endpoint, err := c.commentsURL(ctx, "services")
	if err != nil {
		return nil, err
	}

	var services []model.Service
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var resp struct {
			Services []model.Service `json:"services"`
			Meta     listMeta        `json:"meta"`
		}
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			return nil, fmt.Errorf("listing services (page %d): %w", page, err)
		}
		if len(resp.Services) == 0 {
			break
		}
		services = append(services, resp.Services...)
		if len(services) >= resp.Meta.Total {
			break
		}
	}
	return services, nil
}

// GetServiceRate fetches the hourly rate configured for one service.
// Services without a configured rate return an APIError (404).
func (c *Client) GetServiceRate(ctx context.Context, serviceID int64) (*model.ServiceRate, error) {
	endpoint, err := c.commentsURL(ctx, fmt.Sprintf("service/%d/rate", serviceID))
	if err != nil {
		return nil, err
	}

	var resp struct {
		ServiceRate model.ServiceRate `json:"service_rate"`
	}
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching rate for service %d: %w", serviceID, err)
	}
	return &resp.ServiceRate, nil
}

// ListTeamMemberRates fetches the business-wide hourly rate table keyed
// by identity id.
func (c *Client) ListTeamMemberRates(ctx context.Context) ([]model.TeamMemberRate, error) {
	endpoint, err := c.timetrackingURL(ctx, "team_member_rates")
	if err != nil {
		return nil, err
	}

	var rates []model.TeamMemberRate
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var resp struct {
			TeamMemberRates []model.TeamMemberRate `json:"team_member_rates"`
			Meta            listMeta               `json:"meta"`
		}
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			return nil, fmt.Errorf("listing team member rates (page %d): %w", page, err)
		}
		if len(resp.TeamMemberRates) == 0 {
			break
		}
		rates = append(rates, resp.TeamMemberRates...)
		if len(rates) >= resp.Meta.Total {
			break
		}
	}
	return rates, nil
}
