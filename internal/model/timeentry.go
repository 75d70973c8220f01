package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Timer is the running-timer state attached to a time entry.
type Timer struct {
	ID        *int64 `json:"id,omitempty"`
	IsRunning bool   `json:"is_running,omitempty"`
}

// TimeEntry is a logged time record from the timetracking API. Entries are
// read-only inputs to rate resolution and aggregation; nothing here is ever
// mutated after parsing.
type TimeEntry struct {
	ID         int64     `json:"id"`
	IdentityID int64     `json:"identity_id"`
	Duration   int64     `json:"duration"` // seconds
	StartedAt  time.Time `json:"started_at"`
	IsLogged   bool      `json:"is_logged"`
	ClientID   *int64    `json:"client_id,omitempty"`
	ProjectID  *int64    `json:"project_id,omitempty"`
	ServiceID  *int64    `json:"service_id,omitempty"`
	Billable   bool      `json:"billable"`
	Billed     bool      `json:"billed"`
	Note       *string   `json:"note,omitempty"`
	Active     bool      `json:"active"`
	Internal   bool      `json:"internal"`
	Timer      *Timer    `json:"timer,omitempty"`
}

// Hours returns the entry duration in hours as a decimal.
func (e TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromInt(e.Duration).Div(decimal.NewFromInt(3600))
}
