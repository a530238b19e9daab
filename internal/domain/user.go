package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role decides which directory and schedule flavour applies to the user
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether the role is one of the selectable roles
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Phase is the lifecycle of a single-value prompt: nothing chosen,
// waiting for the user to type something, or holding a value.
type Phase int

const (
	PhaseUnset Phase = iota
	PhaseAwaiting
	PhaseSet
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaiting:
		return "awaiting"
	case PhaseSet:
		return "set"
	default:
		return "unset"
	}
}

// SubscriptionPhase tracks the three-step subscription setup
type SubscriptionPhase int

const (
	SubscriptionNone SubscriptionPhase = iota
	SubscriptionAwaitingTime
	SubscriptionAwaitingDays
	SubscriptionActive
)

func (p SubscriptionPhase) String() string {
	switch p {
	case SubscriptionAwaitingTime:
		return "awaiting_time"
	case SubscriptionAwaitingDays:
		return "awaiting_days"
	case SubscriptionActive:
		return "active"
	default:
		return "none"
	}
}

// Pending reports whether the chain is built but not confirmed yet.
// Until the day range is chosen typed text is taken as a new time.
func (s Subscription) Pending() bool {
	return s.Phase == SubscriptionAwaitingTime || s.Phase == SubscriptionAwaitingDays
}

// Flow versions stored on the user record. Users created under the legacy
// flow are re-onboarded once.
const (
	LegacyFlowVersion  = 2
	CurrentFlowVersion = 3
)

// Selection is a group or teacher chosen by the user
type Selection struct {
	Phase Phase
	Name  string
	ID    string
}

// Subscription holds the recurring delivery configuration
type Subscription struct {
	Phase SubscriptionPhase
	Time  string
	Group string
	Days  SubscriptionDays
}

// User is the persisted dialogue state of one end-user
type User struct {
	ID   int64
	Role Role

	// Current is the user's own group or teacher
	Current Selection
	// Found is a transient selection used while browsing someone else's schedule
	Found     Selection
	FoundType Role

	ShowGroups   bool
	ShowLocation bool

	DatePhase    Phase
	Subscription Subscription

	FlowVersion int
}

// NewUser returns the record created for a previously unseen user
func NewUser(id int64) *User {
	return &User{ID: id, FlowVersion: CurrentFlowVersion}
}

// Prompt names the flow that currently claims free-text input
type Prompt int

const (
	PromptNone Prompt = iota
	PromptGroup
	PromptSearch
	PromptSubscriptionTime
	PromptDate
)

// PendingPrompt returns the prompt that claims the next free-text message.
// Prompts are checked in fixed priority order.
func (u *User) PendingPrompt() Prompt {
	switch {
	case u.Current.Phase == PhaseAwaiting:
		return PromptGroup
	case u.Found.Phase == PhaseAwaiting:
		return PromptSearch
	case u.Subscription.Pending():
		return PromptSubscriptionTime
	case u.DatePhase == PhaseAwaiting:
		return PromptDate
	default:
		return PromptNone
	}
}

// HasSchedule reports whether the user has a usable group or teacher
func (u *User) HasSchedule() bool {
	return u.Role.Valid() && u.Current.Phase == PhaseSet && u.Current.ID != ""
}

func (u *User) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %d\n", u.ID)
	fmt.Fprintf(&b, "role: %s\n", u.Role)
	fmt.Fprintf(&b, "current: %s %q (%s)\n", u.Current.Phase, u.Current.Name, u.Current.ID)
	fmt.Fprintf(&b, "found: %s %q (%s) type=%s\n", u.Found.Phase, u.Found.Name, u.Found.ID, u.FoundType)
	fmt.Fprintf(&b, "show_groups: %t\nshow_location: %t\n", u.ShowGroups, u.ShowLocation)
	fmt.Fprintf(&b, "date: %s\n", u.DatePhase)
	fmt.Fprintf(&b, "subscription: %s %s %q %s\n",
		u.Subscription.Phase, u.Subscription.Time, u.Subscription.Group, u.Subscription.Days)
	fmt.Fprintf(&b, "flow_version: %d", u.FlowVersion)
	return b.String()
}

// Field is a persisted column of the user record
type Field string

const (
	FieldRole              Field = "role"
	FieldCurrentPhase      Field = "current_phase"
	FieldCurrentName       Field = "current_name"
	FieldCurrentID         Field = "current_id"
	FieldFoundPhase        Field = "found_phase"
	FieldFoundName         Field = "found_name"
	FieldFoundID           Field = "found_id"
	FieldFoundType         Field = "found_type"
	FieldShowGroups        Field = "show_groups"
	FieldShowLocation      Field = "show_location"
	FieldDatePhase         Field = "date_phase"
	FieldSubscriptionPhase Field = "subscription_phase"
	FieldSubscriptionTime  Field = "subscription_time"
	FieldSubscriptionGroup Field = "subscription_group"
	FieldSubscriptionDays  Field = "subscription_days"
	FieldFlowVersion       Field = "flow_version"
)

// Patch is a partial update of a user record. Fields not named in the
// patch are left untouched.
type Patch map[Field]any

// Fields returns the patched fields in a stable order
func (p Patch) Fields() []Field {
	fields := make([]Field, 0, len(p))
	for f := range p {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Merge copies the fields of other into p and returns p
func (p Patch) Merge(other Patch) Patch {
	for f, v := range other {
		p[f] = v
	}
	return p
}

// Apply mirrors the patch on an in-memory user
func (p Patch) Apply(u *User) {
	for f, v := range p {
		switch f {
		case FieldRole:
			u.Role = v.(Role)
		case FieldCurrentPhase:
			u.Current.Phase = v.(Phase)
		case FieldCurrentName:
			u.Current.Name = v.(string)
		case FieldCurrentID:
			u.Current.ID = v.(string)
		case FieldFoundPhase:
			u.Found.Phase = v.(Phase)
		case FieldFoundName:
			u.Found.Name = v.(string)
		case FieldFoundID:
			u.Found.ID = v.(string)
		case FieldFoundType:
			u.FoundType = v.(Role)
		case FieldShowGroups:
			u.ShowGroups = v.(bool)
		case FieldShowLocation:
			u.ShowLocation = v.(bool)
		case FieldDatePhase:
			u.DatePhase = v.(Phase)
		case FieldSubscriptionPhase:
			u.Subscription.Phase = v.(SubscriptionPhase)
		case FieldSubscriptionTime:
			u.Subscription.Time = v.(string)
		case FieldSubscriptionGroup:
			u.Subscription.Group = v.(string)
		case FieldSubscriptionDays:
			u.Subscription.Days = v.(SubscriptionDays)
		case FieldFlowVersion:
			u.FlowVersion = v.(int)
		}
	}
}

// ClearFound resets the search selection
func ClearFound() Patch {
	return Patch{
		FieldFoundPhase: PhaseUnset,
		FieldFoundName:  "",
		FieldFoundID:    "",
		FieldFoundType:  RoleNone,
	}
}

// ClearSubscription rolls back the whole subscription chain
func ClearSubscription() Patch {
	return Patch{
		FieldSubscriptionPhase: SubscriptionNone,
		FieldSubscriptionTime:  "",
		FieldSubscriptionGroup: "",
		FieldSubscriptionDays:  DaysNone,
	}
}

// ReleasePrompts returns a patch closing every awaiting prompt except keep,
// so that at most one prompt claims free text at a time.
// An abandoned group prompt falls back to the previous selection if there was one.
func (u *User) ReleasePrompts(keep Prompt) Patch {
	p := Patch{}
	if keep != PromptGroup && u.Current.Phase == PhaseAwaiting {
		if u.Current.ID != "" && u.Role.Valid() {
			p[FieldCurrentPhase] = PhaseSet
		} else {
			p[FieldCurrentPhase] = PhaseUnset
		}
	}
	if keep != PromptSearch && u.Found.Phase == PhaseAwaiting {
		p.Merge(ClearFound())
	}
	if keep != PromptSubscriptionTime && u.Subscription.Pending() {
		p.Merge(ClearSubscription())
	}
	if keep != PromptDate && u.DatePhase == PhaseAwaiting {
		p[FieldDatePhase] = PhaseUnset
	}
	return p
}
