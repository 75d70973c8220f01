// Package identity resolves FreshBooks identity ids to people. The API
// spreads person data across three directories: the business team
// member list, the older accounting staff list, and the member groups
// attached to each project. The resolver caches all three and merges
// them into a single view.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

// Directory is the slice of the API client the resolver consults.
type Directory interface {
	ListTeamMembers(ctx context.Context) ([]model.TeamMember, error)
	ListStaff(ctx context.Context) ([]model.Staff, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id int64) (*model.Project, error)
}

// Source identifies which directory supplied a merged member record.
type Source string

const (
	SourceTeam    Source = "team"
	SourceStaff   Source = "staff"
	SourceProject Source = "project"
)

// Member is one person merged across the directories.
type Member struct {
	IdentityID int64
	Name       string
	Email      string
	Role       string
	Active     bool
	Source     Source
}

// Resolver looks people up by identity id or name fragment. Each
// directory is fetched at most once per resolver; a nil cache map means
// that directory has not been loaded yet.
type Resolver struct {
	dir Directory
	log *log.Logger

	teamMembers    map[int64]model.TeamMember
	staff          map[int64]model.Staff
	projectMembers map[int64]model.ProjectMember
}

// NewResolver returns a Resolver over the given directory source.
func NewResolver(dir Directory, logger *log.Logger) *Resolver {
	return &Resolver{dir: dir, log: logger}
}

// ClearCache drops all cached directory data so the next lookup
// refetches it.
func (r *Resolver) ClearCache() {
	r.teamMembers = nil
	r.staff = nil
	r.projectMembers = nil
}

// ensureTeam loads the team member directory once. A failed fetch
// caches an empty directory so lookups degrade instead of retrying.
func (r *Resolver) ensureTeam(ctx context.Context) error {
	if r.teamMembers != nil {
		return nil
	}
	list, err := r.dir.ListTeamMembers(ctx)
	if err != nil {
		r.teamMembers = map[int64]model.TeamMember{}
		r.log.Warn("team member directory unavailable", "err", err)
		return fmt.Errorf("listing team members: %w", err)
	}
	members := make(map[int64]model.TeamMember, len(list))
	for _, tm := range list {
		// Members without an identity id cannot be matched to time
		// entries, so they are not indexed.
		if tm.IdentityID != nil {
			members[*tm.IdentityID] = tm
		}
	}
	r.teamMembers = members
	return nil
}

// ensureStaff loads the staff directory once. Staff ids double as
// identity ids on this endpoint.
func (r *Resolver) ensureStaff(ctx context.Context) error {
	if r.staff != nil {
		return nil
	}
	list, err := r.dir.ListStaff(ctx)
	if err != nil {
		r.staff = map[int64]model.Staff{}
		r.log.Warn("staff directory unavailable", "err", err)
		return fmt.Errorf("listing staff: %w", err)
	}
	staff := make(map[int64]model.Staff, len(list))
	for _, st := range list {
		staff[st.ID] = st
	}
	r.staff = staff
	return nil
}

// ensureProjectMembers builds the project membership snapshot: list the
// projects, then fetch each project's detail for its member group. A
// failed detail fetch skips that project; the first record seen for an
// identity wins.
func (r *Resolver) ensureProjectMembers(ctx context.Context) error {
	if r.projectMembers != nil {
		return nil
	}
	projects, err := r.dir.ListProjects(ctx)
	if err != nil {
		r.projectMembers = map[int64]model.ProjectMember{}
		r.log.Warn("project directory unavailable", "err", err)
		return fmt.Errorf("listing projects: %w", err)
	}
	members := make(map[int64]model.ProjectMember)
	for _, p := range projects {
		detail, err := r.dir.GetProject(ctx, p.ID)
		if err != nil {
			r.log.Warn("skipping project detail", "project_id", p.ID, "err", err)
			continue
		}
		if detail.Group == nil {
			continue
		}
		for _, m := range detail.Group.Members {
			if _, seen := members[m.IdentityID]; !seen {
				members[m.IdentityID] = m
			}
		}
	}
	r.projectMembers = members
	return nil
}

// Name resolves an identity id to a display name, consulting the team
// directory, then staff, then project membership. Unknown ids resolve
// to "Unknown (<id>)" rather than failing.
func (r *Resolver) Name(ctx context.Context, identityID int64) string {
	_ = r.ensureTeam(ctx)
	if tm, ok := r.teamMembers[identityID]; ok {
		return tm.DisplayName()
	}
	_ = r.ensureStaff(ctx)
	if st, ok := r.staff[identityID]; ok {
		return st.Name()
	}
	_ = r.ensureProjectMembers(ctx)
	if pm, ok := r.projectMembers[identityID]; ok {
		return pm.Name()
	}
	return fmt.Sprintf("Unknown (%d)", identityID)
}

// Email resolves an identity id to an email address, or "" when no
// directory has one.
func (r *Resolver) Email(ctx context.Context, identityID int64) string {
	_ = r.ensureTeam(ctx)
	if tm, ok := r.teamMembers[identityID]; ok && tm.Email != nil && *tm.Email != "" {
		return *tm.Email
	}
	_ = r.ensureStaff(ctx)
	if st, ok := r.staff[identityID]; ok && st.Email != nil && *st.Email != "" {
		return *st.Email
	}
	_ = r.ensureProjectMembers(ctx)
	if pm, ok := r.projectMembers[identityID]; ok {
		return deref(pm.Email)
	}
	return ""
}

// StaffRate returns the hourly rate on an identity's staff record, or
// nil when there is none.
func (r *Resolver) StaffRate(ctx context.Context, identityID int64) *decimal.Decimal {
	_ = r.ensureStaff(ctx)
	if st, ok := r.staff[identityID]; ok {
		return st.Rate
	}
	return nil
}

// Members returns the merged directory, one record per identity id,
// sorted by name. Individual directory failures degrade to partial
// results; only when every directory fails is an error returned.
func (r *Resolver) Members(ctx context.Context) ([]Member, error) {
	errTeam := r.ensureTeam(ctx)
	errStaff := r.ensureStaff(ctx)
	errProjects := r.ensureProjectMembers(ctx)
	if errTeam != nil && errStaff != nil && errProjects != nil {
		return nil, errors.Join(errTeam, errStaff, errProjects)
	}
	return Merge(r.teamMembers, r.staff, r.projectMembers), nil
}

// Merge combines the three directories into one record per identity id.
// When an identity appears in more than one directory, the team member
// record wins over the staff record, which wins over project
// membership. Results are sorted by name, then identity id.
func Merge(team map[int64]model.TeamMember, staff map[int64]model.Staff, project map[int64]model.ProjectMember) []Member {
	merged := make(map[int64]Member)
	for id, pm := range project {
		merged[id] = Member{
			IdentityID: id,
			Name:       pm.Name(),
			Email:      deref(pm.Email),
			Role:       deref(pm.Role),
			Active:     pm.Active,
			Source:     SourceProject,
		}
	}
	for id, st := range staff {
		merged[id] = Member{
			IdentityID: id,
			Name:       st.Name(),
			Email:      deref(st.Email),
			Active:     true,
			Source:     SourceStaff,
		}
	}
	for id, tm := range team {
		merged[id] = Member{
			IdentityID: id,
			Name:       tm.DisplayName(),
			Email:      deref(tm.Email),
			Role:       deref(tm.BusinessRoleName),
			Active:     tm.Active,
			Source:     SourceTeam,
		}
	}

	members := make([]Member, 0, len(merged))
	for _, m := range merged {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].IdentityID < members[j].IdentityID
	})
	return members
}

// FindByName searches the directories for a member whose name contains
// the fragment, case-insensitively. Team member display names are
// searched first, then staff names, then project member names and
// emails; the first match wins. A miss returns (nil, nil).
func (r *Resolver) FindByName(ctx context.Context, fragment string) (*Member, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return nil, fmt.Errorf("empty name fragment")
	}

	_ = r.ensureTeam(ctx)
	for _, id := range sortedKeys(r.teamMembers) {
		tm := r.teamMembers[id]
		if strings.Contains(strings.ToLower(tm.DisplayName()), needle) {
			return &Member{
				IdentityID: id,
				Name:       tm.DisplayName(),
				Email:      deref(tm.Email),
				Role:       deref(tm.BusinessRoleName),
				Active:     tm.Active,
				Source:     SourceTeam,
			}, nil
		}
	}

	_ = r.ensureStaff(ctx)
	for _, id := range sortedKeys(r.staff) {
		st := r.staff[id]
		if strings.Contains(strings.ToLower(st.Name()), needle) {
			return &Member{
				IdentityID: id,
				Name:       st.Name(),
				Email:      deref(st.Email),
				Active:     true,
				Source:     SourceStaff,
			}, nil
		}
	}

	_ = r.ensureProjectMembers(ctx)
	for _, id := range sortedKeys(r.projectMembers) {
		pm := r.projectMembers[id]
		haystack := strings.ToLower(pm.Name() + " " + deref(pm.Email))
		if strings.Contains(haystack, needle) {
			return &Member{
				IdentityID: id,
				Name:       pm.Name(),
				Email:      deref(pm.Email),
				Role:       deref(pm.Role),
				Active:     pm.Active,
				Source:     SourceProject,
			}, nil
		}
	}
	return nil, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sortedKeys returns map keys in ascending order so searches scan in a
// stable order.
func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
