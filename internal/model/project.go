package model

import "github.com/shopspring/decimal"

// ProjectGroup is the membership group attached to a project detail
// response. Members here are the only directory source for some
// contractors.
type ProjectGroup struct {
	ID      int64           `json:"id"`
	Members []ProjectMember `json:"members"`
}

// Project is a project from the timetracking API. Group and Services are
// only populated on detail responses, not list responses.
type Project struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	ClientID *int64        `json:"client_id,omitempty"`
	Active   bool          `json:"active"`
	Complete bool          `json:"complete"`
	Billable bool          `json:"billable"`
	Internal bool          `json:"internal"`
	Group    *ProjectGroup `json:"group,omitempty"`
	Services []Service     `json:"services,omitempty"`
}

// Service is a trackable billing category. Its rate, when one exists,
// lives behind a separate per-service endpoint.
type Service struct {
	ID             int64  `json:"id"`
	BusinessID     int64  `json:"business_id"`
	Name           string `json:"name"`
	Billable       bool   `json:"billable"`
	ProjectDefault bool   `json:"project_default"`
	VisState       int    `json:"vis_state"`
}

// ServiceRate is the rate body from the per-service rate endpoint.
type ServiceRate struct {
	Rate decimal.Decimal `json:"rate"`
}
