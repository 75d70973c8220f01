package freshbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// ListTeamMembers fetches the business team member directory from the
// auth API. Records that fail to decode are skipped with a warning so
// one malformed member does not sink the whole directory.
func (c *Client) ListTeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	_, businessID, err := c.EnsureAccountInfo(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/auth/api/v1/businesses/%d/team_members", c.baseURL, businessID)

	var members []model.TeamMember
	fetched := 0
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var resp struct {
			TeamMembers []json.RawMessage `json:"team_members"`
			Meta        listMeta          `json:"meta"`
		}
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			return nil, fmt.Errorf("listing team members (page %d): %w", page, err)
		}
		if len(resp.TeamMembers) == 0 {
			break
		}
		for _, raw := range resp.TeamMembers {
			var m model.TeamMember
			if err := json.Unmarshal(raw, &m); err != nil {
				c.log.Warn("skipping malformed team member record", "err", err)
				continue
			}
			members = append(members, m)
		}
		fetched += len(resp.TeamMembers)
		if fetched >= resp.Meta.Total {
			break
		}
	}
	c.log.Debug("fetched team members", "count", len(members))
	return members, nil
}

// ListStaff fetches staff records from the accounting API. The endpoint
// predates the team member directory but still carries per-staff rates.
func (c *Client) ListStaff(ctx context.Context) ([]model.Staff, error) {
	endpoint, err := c.accountingURL(ctx, "users/staffs")
	if err != nil {
		return nil, err
	}

	var staff []model.Staff
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var result struct {
			Staffs []model.Staff `json:"staffs"`
			listMeta
		}
		if err := c.getAccounting(ctx, endpoint, params, &result); err != nil {
			return nil, fmt.Errorf("listing staff (page %d): %w", page, err)
		}
		if len(result.Staffs) == 0 {
			break
		}
		staff = append(staff, result.Staffs...)
		if len(staff) >= result.Total {
			break
		}
	}
	c.log.Debug("fetched staff", "count", len(staff))
	return staff, nil
}
