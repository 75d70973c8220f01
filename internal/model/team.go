package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TeamMember is a member record from the auth API team_members endpoint.
// This is the primary, non-deprecated directory source.
type TeamMember struct {
	UUID             uuid.UUID `json:"uuid"`
	FirstName        *string   `json:"first_name,omitempty"`
	MiddleName       *string   `json:"middle_name,omitempty"`
	LastName         *string   `json:"last_name,omitempty"`
	Email            *string   `json:"email,omitempty"`
	JobTitle         *string   `json:"job_title,omitempty"`
	BusinessID       int64     `json:"business_id"`
	BusinessRoleName *string   `json:"business_role_name,omitempty"`
	Active           bool      `json:"active"`
	IdentityID       *int64    `json:"identity_id,omitempty"`
}

// DisplayName joins first/middle/last names, falling back to the email.
func (m TeamMember) DisplayName() string {
	parts := []string{}
	for _, p := range []*string{m.FirstName, m.MiddleName, m.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if m.Email != nil && *m.Email != "" {
		return *m.Email
	}
	return "Unknown"
}

// Staff is a record from the deprecated accounting staff endpoint. It is
// still consulted because it is the only API source carrying a rate field.
type Staff struct {
	ID          int64            `json:"id"`
	UserID      *int64           `json:"userid,omitempty"`
	FName       *string          `json:"fname,omitempty"`
	LName       *string          `json:"lname,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	DisplayName *string          `json:"display_name,omitempty"`
}

// Name returns the staff display name, or first/last, or email.
func (s Staff) Name() string {
	if s.DisplayName != nil && *s.DisplayName != "" {
		return *s.DisplayName
	}
	name := strings.TrimSpace(deref(s.FName) + " " + deref(s.LName))
	if name != "" {
		return name
	}
	if s.Email != nil && *s.Email != "" {
		return *s.Email
	}
	return "Unknown"
}

// ProjectMember is a contractor or collaborator found in a project's
// group membership. Some identities only ever appear here.
type ProjectMember struct {
	IdentityID int64   `json:"identity_id"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Company    *string `json:"company,omitempty"`
	Role       *string `json:"role,omitempty"`
	Active     bool    `json:"active"`
}

// Name returns first/last name, falling back to email, then a synthetic
// label carrying the identity id.
func (m ProjectMember) Name() string {
	name := strings.TrimSpace(deref(m.FirstName) + " " + deref(m.LastName))
	if name != "" {
		return name
	}
	if m.Email != nil && *m.Email != "" {
		return *m.Email
	}
	return fmt.Sprintf("Unknown (%d)", m.IdentityID)
}

// TeamMemberRate is one row of the bulk billable-rate table from the
// timetracking API.
type TeamMemberRate struct {
	IdentityID int64           `json:"identity_id"`
	Rate       decimal.Decimal `json:"rate"`
}

// Business identifies a FreshBooks business within a membership.
type Business struct {
	ID        int64  `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name,omitempty"`
}

// BusinessMembership links the current user to a business.
type BusinessMembership struct {
	ID       int64    `json:"id"`
	Role     string   `json:"role"`
	Business Business `json:"business"`
}

// UserIdentity is the authenticated user profile from /users/me.
type UserIdentity struct {
	ID                  int64                `json:"identity_id"`
	FirstName           *string              `json:"first_name,omitempty"`
	LastName            *string              `json:"last_name,omitempty"`
	Email               string               `json:"email"`
	BusinessMemberships []BusinessMembership `json:"business_memberships"`
}

// DisplayName returns first/last name, falling back to the email.
func (u UserIdentity) DisplayName() string {
	name := strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	if name != "" {
		return name
	}
	return u.Email
}
