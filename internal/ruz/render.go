package ruz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"
)

var weekdays = [...]string{
	time.Sunday:    "Воскресенье",
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
}

// render lays out the lessons day by day starting at q.Start
func render(lessons []lesson, q schedule.Query, days int) string {
	byDate := make(map[string][]lesson, days)
	for _, l := range lessons {
		byDate[l.Date] = append(byDate[l.Date], l)
	}

	var b strings.Builder
	for i := 0; i < days; i++ {
		day := q.Start.AddDate(0, 0, i)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "📅 %s, %s\n", weekdays[day.Weekday()], day.Format(domain.DateLayout))

		dayLessons := byDate[day.Format(apiDateLayout)]
		if len(dayLessons) == 0 {
			b.WriteString("Занятий нет\n")
			continue
		}
		sort.SliceStable(dayLessons, func(a, c int) bool {
			return dayLessons[a].Begin < dayLessons[c].Begin
		})
		for _, l := range dayLessons {
			writeLesson(&b, l, q)
		}
	}
	return b.String()
}

func writeLesson(b *strings.Builder, l lesson, q schedule.Query) {
	fmt.Fprintf(b, "\n⏰ %s - %s\n", l.Begin, l.End)
	if l.KindOfWork != "" {
		fmt.Fprintf(b, "📖 %s (%s)\n", l.Discipline, l.KindOfWork)
	} else {
		fmt.Fprintf(b, "📖 %s\n", l.Discipline)
	}
	if q.Role != domain.RoleTeacher && l.Lecturer != "" {
		fmt.Fprintf(b, "👤 %s\n", l.Lecturer)
	}
	if q.Prefs.ShowLocation {
		if location := joinNonEmpty(", ", l.Auditorium, l.Building); location != "" {
			fmt.Fprintf(b, "🏛 %s\n", location)
		}
	}
	if q.Prefs.ShowGroups {
		if groups := firstNonEmpty(l.Stream, l.Group, l.SubGroup); groups != "" {
			fmt.Fprintf(b, "👥 %s\n", groups)
		}
	}
	if l.URL != "" {
		fmt.Fprintf(b, "🔗 %s\n", l.URL)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
