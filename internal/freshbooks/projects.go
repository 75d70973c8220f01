package freshbooks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// ListProjects fetches every project in the business. The listing omits
// group membership and services; use GetProject for those.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	endpoint, err := c.timetrackingURL(ctx, "projects")
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(perPage))

		var resp struct {
			Projects []model.Project `json:"projects"`
			Meta     listMeta        `json:"meta"`
		}
		if err := c.get(ctx, endpoint, params, &resp); err != nil {
			return nil, fmt.Errorf("listing projects (page %d): %w", page, err)
		}
		if len(resp.Projects) == 0 {
			break
		}
		projects = append(projects, resp.Projects...)
		if len(projects) >= resp.Meta.Total {
			break
		}
	}
	c.log.Debug("fetched projects", "count", len(projects))
	return projects, nil
}

// GetProject fetches one project's detail, including its member group
// and assignable services.
func (c *Client) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	endpoint, err := c.timetrackingURL(ctx, fmt.Sprintf("projects/%d", id))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Project model.Project `json:"project"`
	}
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching project %d: %w", id, err)
	}
	return &resp.Project, nil
}
