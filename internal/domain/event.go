package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Payload keys carried by keyboard buttons
const (
	PayloadMenu           = "menu"
	PayloadCommand        = "command"
	PayloadStartDay       = "start_day"
	PayloadDays           = "days"
	PayloadType           = "type"
	PayloadRole           = "role"
	PayloadFoundID        = "found_id"
	PayloadFoundName      = "found_name"
	PayloadShowInlineDate = "show_inline_date"
	PayloadDate           = "date"
)

// CommandStart is the payload command that resets the dialogue
const CommandStart = "start"

// Event is one inbound message from a user
type Event struct {
	PeerID  int64
	Text    string
	Payload Payload
}

// Payload is the structured data attached to a keyboard button
type Payload map[string]any

// ParsePayload decodes a JSON object. An empty string yields an empty payload.
func ParsePayload(raw string) (Payload, error) {
	p := Payload{}
	if raw == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// Encode returns the compact JSON form of the payload
func (p Payload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// Has reports whether key is present
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value of key as a string, or "" when absent
func (p Payload) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Int returns the value of key as an int, or def when absent or not numeric
func (p Payload) Int(key string, def int) int {
	switch v := p[key].(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the value of key as a bool
func (p Payload) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Action is a menu action carried in the "menu" payload key
type Action string

const (
	ActionScheduleMenu    Action = "send_schedule_menu"
	ActionSchedule        Action = "send_schedule"
	ActionOneDaySchedule  Action = "send_one_day_schedule"
	ActionChoiceGroup     Action = "send_choice_group"
	ActionSearch          Action = "send_search"
	ActionSearchTeacher   Action = "send_search_teacher"
	ActionSearchGroup     Action = "search_group"
	ActionSetTeacher      Action = "set_teacher"
	ActionTeacher         Action = "send_teacher"
	ActionTeacherSchedule Action = "send_teacher_schedule"
	ActionToggleSetting   Action = "show_groups_or_location"
	ActionSettingsMenu    Action = "send_settings_menu"
	ActionUnsubscribe     Action = "unsubscribe_schedule"
	ActionSubscribe       Action = "subscribe_schedule"
	ActionSubscribeDay    Action = "update_subscribe_day"
	ActionCalendar        Action = "chose_calendar"
	ActionCalendarLink    Action = "calendar_link"
	ActionChangeRole      Action = "change_role"
	ActionSetRole         Action = "set_role"
	ActionSearchMenu      Action = "search"
	ActionCancel          Action = "cancel"
	ActionDebug           Action = "debug_message"
)

// Actions lists every menu action a keyboard may carry
var Actions = []Action{
	ActionScheduleMenu,
	ActionSchedule,
	ActionOneDaySchedule,
	ActionChoiceGroup,
	ActionSearch,
	ActionSearchTeacher,
	ActionSearchGroup,
	ActionSetTeacher,
	ActionTeacher,
	ActionTeacherSchedule,
	ActionToggleSetting,
	ActionSettingsMenu,
	ActionUnsubscribe,
	ActionSubscribe,
	ActionSubscribeDay,
	ActionCalendar,
	ActionCalendarLink,
	ActionChangeRole,
	ActionSetRole,
	ActionSearchMenu,
	ActionCancel,
	ActionDebug,
}

// ParseAction returns the action named by s
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Settings toggles carried in the "type" payload key
const (
	SettingGroups   = "toggle_groups"
	SettingLocation = "toggle_location"
)
