package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the dd.mm.yyyy format used in payloads and messages
const DateLayout = "02.01.2006"

// Relative start-day sentinels accepted in schedule payloads
const (
	StartOfThisWeek = -1
	StartOfNextWeek = -2
)

// ErrBadFormat is returned for free text that does not match the expected format
var ErrBadFormat = errors.New("bad format")

// ParseDate parses a user-typed date in dd.mm.yyyy or dd.mm form.
// The short form takes the year from now. Spaces are ignored.
func ParseDate(text string, now time.Time) (time.Time, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	parts := strings.Split(text, ".")
	switch len(parts) {
	case 3:
	case 2:
		text = text + "." + now.Format("2006")
	default:
		return time.Time{}, ErrBadFormat
	}
	date, err := time.ParseInLocation("2.1.2006", text, now.Location())
	if err != nil {
		return time.Time{}, ErrBadFormat
	}
	return date, nil
}

// ParseClock validates a HH:MM time of day and returns it zero-padded
func ParseClock(text string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return "", ErrBadFormat
	}
	return t.Format("15:04"), nil
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayOffset returns the number of calendar days from now to date
func DayOffset(date, now time.Time) int {
	from := StartOfDay(now)
	to := StartOfDay(date.In(now.Location()))
	// Round to absorb DST shifts
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// isoWeekday returns 1 for Monday through 7 for Sunday
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ResolveStartDay turns the relative week sentinels into day offsets.
// Other values are returned unchanged.
func ResolveStartDay(startDay int, now time.Time) int {
	switch startDay {
	case StartOfThisWeek:
		return -isoWeekday(now) + 1
	case StartOfNextWeek:
		return 7 - isoWeekday(now) + 1
	default:
		return startDay
	}
}

// SubscriptionDays is the day range delivered by a subscription
type SubscriptionDays string

const (
	DaysNone             SubscriptionDays = ""
	DaysToday            SubscriptionDays = "today"
	DaysTomorrow         SubscriptionDays = "tomorrow"
	DaysTodayAndTomorrow SubscriptionDays = "today_and_tomorrow"
	DaysThisWeek         SubscriptionDays = "this_week"
	DaysNextWeek         SubscriptionDays = "next_week"
)

// ParseSubscriptionDays returns the day range named by s
func ParseSubscriptionDays(s string) (SubscriptionDays, bool) {
	switch d := SubscriptionDays(s); d {
	case DaysToday, DaysTomorrow, DaysTodayAndTomorrow, DaysThisWeek, DaysNextWeek:
		return d, true
	default:
		return DaysNone, false
	}
}

// Range returns the start-day offset and the number of days to deliver
func (d SubscriptionDays) Range(now time.Time) (int, int) {
	switch d {
	case DaysTomorrow:
		return 1, 1
	case DaysTodayAndTomorrow:
		return 0, 2
	case DaysThisWeek:
		return ResolveStartDay(StartOfThisWeek, now), 7
	case DaysNextWeek:
		return ResolveStartDay(StartOfNextWeek, now), 7
	default:
		return 0, 1
	}
}

// Describe returns the Russian phrase for the range
func (d SubscriptionDays) Describe() string {
	switch d {
	case DaysToday:
		return "сегодня"
	case DaysTomorrow:
		return "завтра"
	case DaysTodayAndTomorrow:
		return "текущий и следующий день"
	case DaysThisWeek:
		return "текущую неделю"
	case DaysNextWeek:
		return "следующую неделю"
	default:
		return ""
	}
}
