package schedule

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"schedulebot/internal/domain"
)

// Lookup errors shared by every Directory and Resolver implementation
var (
	ErrNotFound = errors.New("not found")
	ErrTimeout  = errors.New("timeout error")
)

// Teacher is one directory match for a teacher name
type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Prefs are the display preferences applied to a rendered schedule
type Prefs struct {
	ShowGroups   bool
	ShowLocation bool
}

// Query selects the schedule of a group or teacher over a range of days
type Query struct {
	SubjectID string
	Role      domain.Role
	Start     time.Time
	Days      int
	Prefs     Prefs
}

// Directory resolves human-entered names to directory identifiers
type Directory interface {
	// ResolveGroup returns the id of the group with exactly this name
	ResolveGroup(ctx context.Context, name string) (string, error)
	// ResolveTeacher returns every teacher matching the name, possibly none
	ResolveTeacher(ctx context.Context, name string) ([]Teacher, error)
}

// Resolver renders schedules. An empty text means no schedule could be produced.
type Resolver interface {
	FormatSchedule(ctx context.Context, q Query) (string, error)
}

// NormalizeGroupName trims the name, drops all whitespace and uppercases it
func NormalizeGroupName(name string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name))
}

// SubjectType returns the directory type name for a role
func SubjectType(role domain.Role) string {
	if role == domain.RoleTeacher {
		return "person"
	}
	return "group"
}
