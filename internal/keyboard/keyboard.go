// Package keyboard builds every keyboard the dialogue sends
package keyboard

import (
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"
)

// SubscriptionTimes are offered as quick replies when subscribing
var SubscriptionTimes = [][]string{
	{"07:00", "07:30", "08:00"},
	{"08:30", "09:00", "20:00"},
}

func action(a domain.Action) domain.Payload {
	return domain.Payload{domain.PayloadMenu: string(a)}
}

func button(label string, p domain.Payload) domain.Button {
	return domain.Button{Label: label, Payload: p}
}

func inline(rows ...[]domain.Button) *domain.Keyboard {
	return &domain.Keyboard{Kind: domain.KeyboardInline, Rows: rows}
}

func row(buttons ...domain.Button) []domain.Button {
	return buttons
}

func scheduleButton(label string, a domain.Action, startDay, days int) domain.Button {
	p := action(a)
	p[domain.PayloadStartDay] = startDay
	p[domain.PayloadDays] = days
	return button(label, p)
}

// ScheduleMenu is the main menu of a user with a group or teacher set
func ScheduleMenu(u *domain.User) *domain.Keyboard {
	subscription := button("🔔 Подписаться на рассылку", action(domain.ActionSubscribe))
	if u.Subscription.Phase == domain.SubscriptionActive {
		subscription = button("🔕 Отписаться от рассылки", action(domain.ActionUnsubscribe))
	}

	return inline(
		row(
			scheduleButton("Сегодня", domain.ActionSchedule, 0, 1),
			scheduleButton("Завтра", domain.ActionSchedule, 1, 1),
		),
		row(
			scheduleButton("Эта неделя", domain.ActionSchedule, domain.StartOfThisWeek, 7),
			scheduleButton("Следующая неделя", domain.ActionSchedule, domain.StartOfNextWeek, 7),
		),
		row(button("📅 На дату", action(domain.ActionOneDaySchedule))),
		row(
			button("🔍 Поиск", action(domain.ActionSearchMenu)),
			button("⚙️ Настройки", action(domain.ActionSettingsMenu)),
		),
		row(subscription),
		row(button("🗓 Ссылка на календарь", action(domain.ActionCalendarLink))),
	)
}

// FindScheduleMenu offers day ranges for the schedule found by a search
func FindScheduleMenu() *domain.Keyboard {
	return inline(
		row(
			scheduleButton("Сегодня", domain.ActionTeacherSchedule, 0, 1),
			scheduleButton("Завтра", domain.ActionTeacherSchedule, 1, 1),
		),
		row(
			scheduleButton("Эта неделя", domain.ActionTeacherSchedule, domain.StartOfThisWeek, 7),
			scheduleButton("Следующая неделя", domain.ActionTeacherSchedule, domain.StartOfNextWeek, 7),
		),
		row(button("Назад", action(domain.ActionCancel))),
	)
}

func toggleLabel(on bool, label string) string {
	if on {
		return "✅ " + label
	}
	return "❌ " + label
}

// SettingsMenu shows the display toggles with their current state
func SettingsMenu(u *domain.User) *domain.Keyboard {
	groups := action(domain.ActionToggleSetting)
	groups[domain.PayloadType] = domain.SettingGroups
	location := action(domain.ActionToggleSetting)
	location[domain.PayloadType] = domain.SettingLocation

	change := "Сменить группу"
	if u.Role == domain.RoleTeacher {
		change = "Сменить преподавателя"
	}

	return inline(
		row(button(toggleLabel(u.ShowGroups, "Показывать группы"), groups)),
		row(button(toggleLabel(u.ShowLocation, "Показывать аудитории"), location)),
		row(button(change, action(domain.ActionChoiceGroup))),
		row(button("Назад", action(domain.ActionScheduleMenu))),
	)
}

func roleButton(label string, a domain.Action, role domain.Role) domain.Button {
	p := action(a)
	p[domain.PayloadRole] = string(role)
	return button(label, p)
}

// ChooseRole asks whether the user is a student or a teacher
func ChooseRole() *domain.Keyboard {
	return inline(
		row(
			roleButton("Я студент", domain.ActionSetRole, domain.RoleStudent),
			roleButton("Я преподаватель", domain.ActionSetRole, domain.RoleTeacher),
		),
	)
}

// BackToChoosingRole returns to the role choice
func BackToChoosingRole() *domain.Keyboard {
	return inline(row(button("Назад", action(domain.ActionChangeRole))))
}

// SearchMenu asks what kind of schedule to search for
func SearchMenu() *domain.Keyboard {
	return inline(
		row(
			roleButton("Группа", domain.ActionSearch, domain.RoleStudent),
			roleButton("Преподаватель", domain.ActionSearch, domain.RoleTeacher),
		),
		row(button("Назад", action(domain.ActionScheduleMenu))),
	)
}

// FoundList lists teacher matches. With toSet the choice becomes the user's own teacher.
func FoundList(teachers []schedule.Teacher, toSet bool) *domain.Keyboard {
	a := domain.ActionTeacher
	if toSet {
		a = domain.ActionSetTeacher
	}

	rows := make([][]domain.Button, 0, len(teachers)+1)
	for _, t := range teachers {
		p := action(a)
		p[domain.PayloadFoundID] = t.ID
		p[domain.PayloadFoundName] = t.Name
		rows = append(rows, row(button(t.Name, p)))
	}

	back := action(domain.ActionCancel)
	if toSet {
		back = action(domain.ActionChangeRole)
	}
	rows = append(rows, row(button("Отмена", back)))
	return inline(rows...)
}

// SubscribeStart offers preset delivery times as quick replies
func SubscribeStart() *domain.Keyboard {
	rows := make([][]domain.Button, 0, len(SubscriptionTimes))
	for _, times := range SubscriptionTimes {
		r := make([]domain.Button, 0, len(times))
		for _, t := range times {
			r = append(r, domain.Button{Label: t})
		}
		rows = append(rows, r)
	}
	return &domain.Keyboard{Kind: domain.KeyboardReply, Rows: rows}
}

func dayButton(label string, days domain.SubscriptionDays) domain.Button {
	p := action(domain.ActionSubscribeDay)
	p[domain.PayloadType] = string(days)
	return button(label, p)
}

// SubscribeDays offers the day ranges a subscription can deliver
func SubscribeDays() *domain.Keyboard {
	return inline(
		row(
			dayButton("Сегодня", domain.DaysToday),
			dayButton("Завтра", domain.DaysTomorrow),
		),
		row(dayButton("Сегодня и завтра", domain.DaysTodayAndTomorrow)),
		row(
			dayButton("Эта неделя", domain.DaysThisWeek),
			dayButton("Следующая неделя", domain.DaysNextWeek),
		),
	)
}

func dateButton(label string, date time.Time) domain.Button {
	p := action(domain.ActionSchedule)
	p[domain.PayloadShowInlineDate] = true
	p[domain.PayloadDate] = date.Format(domain.DateLayout)
	return button(label, p)
}

// InlineDate navigates one-day schedules to the previous and next day
func InlineDate(date time.Time) *domain.Keyboard {
	prev := date.AddDate(0, 0, -1)
	next := date.AddDate(0, 0, 1)
	return inline(row(
		dateButton("◀ "+prev.Format("02.01"), prev),
		dateButton(next.Format("02.01")+" ▶", next),
	))
}

// Empty hides the reply keyboard so that free text can be typed
func Empty() *domain.Keyboard {
	return &domain.Keyboard{Kind: domain.KeyboardRemove}
}
