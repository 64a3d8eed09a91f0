package lifestyle

import (
	"sort"
	"time"

	"github.com/Skufu/lipidcare/internal/domain"
)

type dailySlot struct {
	Hour, Minute int
	Message      string
}

var routineSlots = []dailySlot{
	{Hour: 10, Message: "Hydration check"},
	{Hour: 18, Message: "Go for a walk"},
}

var dailyByLevel = map[domain.RiskLevel][]dailySlot{
	domain.RiskUrgent: {
		{Hour: 8, Message: "Urgent health check reminder"},
		{Hour: 20, Message: "Log symptoms daily"},
	},
	domain.RiskHigh: {
		{Hour: 9, Message: "Track daily exercise"},
		{Hour: 19, Message: "Healthy dinner reminder"},
	},
	domain.RiskMedium: routineSlots,
	domain.RiskLow:    routineSlots,
}

var followUpsByLevel = map[domain.RiskLevel][]followUp{
	domain.RiskUrgent: {
		{After: offset{Days: 0}, Type: "Immediate clinical visit"},
		{After: offset{Days: 3}, Type: "Follow-up test reminder"},
		{After: offset{Days: 7}, Type: "Lifestyle adherence check"},
	},
	domain.RiskHigh: {
		{After: offset{Days: 0}, Type: "Doctor appointment reminder"},
		{After: offset{Days: 14}, Type: "Follow-up reminder"},
		{After: offset{Days: 30}, Type: "Check progress"},
	},
	domain.RiskMedium: {
		{After: offset{Days: 0}, Type: "Health tips reminder"},
		{After: offset{Days: 30}, Type: "Monthly progress check"},
	},
	domain.RiskLow: {
		{After: offset{Days: 30}, Type: "Check progress"},
		{After: offset{Days: 90}, Type: "Routine health check reminder"},
	},
}

// followUpHour is the time of day dated follow-ups fall due.
const followUpHour = 9

// Notifications returns the reminders to queue after an assessment: the next
// day's daily reminders followed by the dated follow-ups, in due order.
// IDs are left empty for the queue to assign.
func Notifications(patientID string, level domain.RiskLevel, now time.Time) []domain.Notification {
	now = now.UTC()
	today := domain.Day(now)
	tomorrow := today.AddDate(0, 0, 1)

	// An invalid level gets the Urgent schedule, as in Generate.
	if !level.Valid() {
		level = domain.RiskUrgent
	}
	slots := dailyByLevel[level]
	out := make([]domain.Notification, 0, len(slots)+3)
	for _, s := range slots {
		out = append(out, domain.Notification{
			PatientID: patientID,
			Due:       tomorrow.Add(time.Duration(s.Hour)*time.Hour + time.Duration(s.Minute)*time.Minute),
			Kind:      domain.NotificationDaily,
			Message:   s.Message,
		})
	}

	for _, f := range followUpsByLevel[level] {
		due := f.After.from(today).Add(followUpHour * time.Hour)
		// A same-day follow-up already past its hour is due immediately.
		if due.Before(now) {
			due = now
		}
		out = append(out, domain.Notification{
			PatientID: patientID,
			Due:       due,
			Kind:      domain.NotificationFollowUp,
			Message:   f.Type,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out
}
