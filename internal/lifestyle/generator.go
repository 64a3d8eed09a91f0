// Package lifestyle derives a daily care plan and its notification schedule
// from a risk level. Output depends only on the inputs and the injected clock.
package lifestyle

import (
	"sort"
	"time"

	"github.com/Skufu/lipidcare/internal/domain"
)

type Generator struct {
	Now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

func (g *Generator) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now().UTC()
	}
	return g.Now().UTC()
}

// Generate builds the plan for a risk level. Checkup dates are offsets from
// the generator's clock, so a plan goes stale and is regenerated on every
// assessment.
func (g *Generator) Generate(level domain.RiskLevel, profile domain.PatientProfile, decision domain.ManagementDecision) domain.LifestylePlan {
	if !level.Valid() {
		level = domain.RiskUrgent
	}
	now := g.now()
	return domain.LifestylePlan{
		MealPlan:           mealPlan(level),
		ExercisePlan:       exercisePlan(level),
		DailyReminders:     reminders(level),
		EducationalContent: educationalContent(),
		CheckupSchedule:    checkups(level, now),
		PersonalNotes:      personalNotes(profile, decision),
		GeneratedAt:        now,
	}
}

func intensive(level domain.RiskLevel) bool {
	return level == domain.RiskUrgent || level == domain.RiskHigh
}

func mealPlan(level domain.RiskLevel) domain.MealPlan {
	plan := domain.MealPlan{
		Breakfast:    append([]domain.Meal(nil), breakfasts...),
		Lunch:        append([]domain.Meal(nil), lunches...),
		Dinner:       append([]domain.Meal(nil), dinners...),
		Snacks:       append([]string(nil), snacks...),
		Restrictions: []string{},
		Hydration:    hydration,
		Supplements:  append([]string(nil), routineSupplements...),
		Focus:        dietFocus,
	}
	if intensive(level) {
		plan.Restrictions = append(plan.Restrictions, intensiveRestrictions...)
		plan.Supplements = append([]string(nil), intensiveSupplements...)
	}
	return plan
}

func exercisePlan(level domain.RiskLevel) domain.ExercisePlan {
	tier, ok := exerciseByTier[level]
	if !ok {
		tier = exerciseByTier[domain.RiskMedium]
	}
	tier.Activities = append([]string(nil), tier.Activities...)
	tier.Note = heartHealthNote
	return tier
}

func reminders(level domain.RiskLevel) []domain.Reminder {
	out := append([]domain.Reminder(nil), baseReminders...)
	if intensive(level) {
		out = append(out, intensiveReminders...)
	}
	// HH:MM sorts lexically.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func educationalContent() domain.EducationalContent {
	return domain.EducationalContent{
		DailyFacts:    append([]string(nil), education.DailyFacts...),
		WarningSigns:  append([]string(nil), education.WarningSigns...),
		EmergencyNote: education.EmergencyNote,
	}
}

func checkups(level domain.RiskLevel, now time.Time) domain.CheckupSchedule {
	plan := checkupsByLevel[level]
	out := domain.CheckupSchedule{Note: plan.Note, FollowUps: make([]domain.Checkup, 0, len(plan.FollowUps))}
	for _, f := range plan.FollowUps {
		out.FollowUps = append(out.FollowUps, domain.Checkup{
			Date: f.After.from(now).Format(domain.DateLayout),
			Type: f.Type,
		})
	}
	return out
}

func personalNotes(p domain.PatientProfile, d domain.ManagementDecision) []string {
	var notes []string
	if p.Smoking {
		notes = append(notes, "Quitting smoking is the single most effective step to slow plaque formation.")
	}
	if p.Diabetes || p.BloodGlucose > 126 {
		notes = append(notes, "Keep blood glucose under control; high glucose accelerates arterial damage.")
	}
	if p.BMI > 30 {
		notes = append(notes, "Gradual weight loss of 5-10% improves LDL, HDL and triglycerides.")
	}
	if p.Age > 65 {
		notes = append(notes, "Increase exercise intensity slowly and check with your physician first.")
	}
	if d.RequiresStatin {
		notes = append(notes, "Discuss statin therapy with your physician; take medication at the same time every day.")
	}
	return notes
}
