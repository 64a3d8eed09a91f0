// Package adherence scores a patient's daily activity log. The functions in
// this file are pure; Tracker binds them to an activity store and a clock.
package adherence

import (
	"math"
	"sort"
	"time"

	"github.com/Skufu/lipidcare/internal/domain"
)

// Axis weights of the overall score. They sum to 1.
const (
	weightDiet       = 0.30
	weightExercise   = 0.25
	weightMedication = 0.25
	weightWater      = 0.10
	weightSleep      = 0.05
	weightStress     = 0.05
)

// qualifyingAxes is how many of the four regimen axes a day needs to count
// toward a streak.
const qualifyingAxes = 3

// Score aggregates the records whose date falls in [start, end]. A window
// without records returns domain.ErrDataAbsent rather than a zero score.
func Score(records []domain.DailyActivity, start, end time.Time) (domain.AdherenceScore, error) {
	start, end = domain.Day(start), domain.Day(end)
	var days, diet, exercise, medication, water, sleep, stress int
	for _, r := range records {
		d := domain.Day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		days++
		diet += boolInt(r.DietFollowed)
		exercise += boolInt(r.ExerciseCompleted)
		medication += boolInt(r.MedicationTaken)
		water += boolInt(r.WaterIntakeMet)
		sleep += r.SleepQuality
		stress += r.StressLevel
	}
	if days == 0 {
		return domain.AdherenceScore{}, domain.ErrDataAbsent
	}

	n := float64(days)
	s := domain.AdherenceScore{
		Start:      start,
		End:        end,
		TotalDays:  days,
		Diet:       rate(diet, n),
		Exercise:   rate(exercise, n),
		Medication: rate(medication, n),
		Water:      rate(water, n),
		Sleep:      percent(float64(sleep) / n / 10 * 100),
		Stress:     percent(100 - float64(stress)/n/10*100), // inverted: calm days score high
	}
	s.Overall = percent(weightDiet*s.Diet +
		weightExercise*s.Exercise +
		weightMedication*s.Medication +
		weightWater*s.Water +
		weightSleep*s.Sleep +
		weightStress*s.Stress)
	return s, nil
}

// Streak counts consecutive qualifying days ending at the most recent record.
// It stops at the first day with fewer than three regimen axes done or at the
// first calendar gap.
func Streak(records []domain.DailyActivity) int {
	sorted := make([]domain.DailyActivity, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	streak := 0
	var prev time.Time
	for _, r := range sorted {
		if r.CompletedAxes() < qualifyingAxes {
			break
		}
		day := domain.Day(r.Date)
		if streak > 0 && !prev.AddDate(0, 0, -1).Equal(day) {
			break
		}
		streak++
		prev = day
	}
	return streak
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func rate(count int, days float64) float64 {
	return percent(float64(count) / days * 100)
}

// percent clamps to [0,100] and rounds to two decimals.
func percent(v float64) float64 {
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*100) / 100
}
