package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/lipidcare/internal/domain"
)

func TestLogActivityReportsWeeklyRate(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	res, err := env.svc.LogActivity(ctx, domain.DailyActivity{
		PatientID:         "p-1",
		Date:              refNow,
		DietFollowed:      true,
		ExerciseCompleted: true,
		MedicationTaken:   true,
		WaterIntakeMet:    true,
		SleepQuality:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Day(refNow), res.Activity.Date)
	require.NotNil(t, res.AdherenceRate)
	assert.InDelta(t, 1.0, *res.AdherenceRate, 1e-9)
	assert.Nil(t, res.Escalation)
}

func TestLogActivityEscalatesPoorWeek(t *testing.T) {
	env := newEnv(t)
	res, err := env.svc.LogActivity(context.Background(), domain.DailyActivity{
		PatientID:   "p-1",
		Date:        refNow,
		StressLevel: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Escalation)
	assert.Equal(t, "low_adherence", res.Escalation.Flag)
	assert.Equal(t, "medium", res.Escalation.Urgency)
}

func TestLogActivityOutsideWeekHasNoRate(t *testing.T) {
	env := newEnv(t)
	res, err := env.svc.LogActivity(context.Background(), domain.DailyActivity{
		PatientID: "p-1",
		Date:      refNow.AddDate(0, 0, -20),
	})
	require.NoError(t, err)
	assert.Nil(t, res.AdherenceRate)
}

func TestLogActivityValidation(t *testing.T) {
	env := newEnv(t)
	_, err := env.svc.LogActivity(context.Background(), domain.DailyActivity{
		PatientID:    "p-1",
		Date:         refNow,
		SleepQuality: 11,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdherenceDefaultsToLastWeek(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	for _, back := range []int{0, 3, 6, 7} {
		_, err := env.svc.LogActivity(ctx, domain.DailyActivity{
			PatientID: "p-1", Date: refNow.AddDate(0, 0, -back), DietFollowed: true,
		})
		require.NoError(t, err)
	}

	score, err := env.svc.Adherence(ctx, "p-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, score.TotalDays)
	assert.Equal(t, domain.Day(refNow).AddDate(0, 0, -6), score.Start)
	assert.Equal(t, 100.0, score.Diet)

	_, err = env.svc.Adherence(ctx, "p-2", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrDataAbsent)
}

func TestStreakAndDropoutRisk(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	pred, err := env.svc.DropoutRisk(ctx, "p-1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DropoutUnknown, pred.Risk)

	for back := 0; back < 3; back++ {
		_, err := env.svc.LogActivity(ctx, domain.DailyActivity{
			PatientID: "p-1", Date: refNow.AddDate(0, 0, -back),
			DietFollowed: true, ExerciseCompleted: true, MedicationTaken: true, WaterIntakeMet: true,
			SleepQuality: 10,
		})
		require.NoError(t, err)
	}

	streak, err := env.svc.Streak(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	pred, err = env.svc.DropoutRisk(ctx, "p-1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DropoutLow, pred.Risk)
}
