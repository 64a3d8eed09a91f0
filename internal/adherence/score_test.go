package adherence

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/lipidcare/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func full(d int) domain.DailyActivity {
	return domain.DailyActivity{
		PatientID: "p-1", Date: day(d),
		DietFollowed: true, ExerciseCompleted: true, MedicationTaken: true, WaterIntakeMet: true,
		SleepQuality: 8, StressLevel: 2,
	}
}

func TestScoreWeightedAxes(t *testing.T) {
	records := []domain.DailyActivity{
		full(10),
		{PatientID: "p-1", Date: day(11), DietFollowed: true, SleepQuality: 6, StressLevel: 4},
		full(20), // outside the window
	}

	got, err := Score(records, day(10), day(11))
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalDays)
	assert.Equal(t, 100.0, got.Diet)
	assert.Equal(t, 50.0, got.Exercise)
	assert.Equal(t, 50.0, got.Medication)
	assert.Equal(t, 50.0, got.Water)
	assert.Equal(t, 70.0, got.Sleep)
	assert.Equal(t, 70.0, got.Stress)
	assert.InDelta(t, 67.0, got.Overall, 1e-9)
	assert.Equal(t, day(10), got.Start)
	assert.Equal(t, day(11), got.End)
}

func TestScoreEmptyWindowIsDataAbsent(t *testing.T) {
	_, err := Score([]domain.DailyActivity{full(1)}, day(10), day(16))
	assert.ErrorIs(t, err, domain.ErrDataAbsent)

	_, err = Score(nil, day(10), day(16))
	assert.ErrorIs(t, err, domain.ErrDataAbsent)
}

func TestScoreOverallAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(30)
		records := make([]domain.DailyActivity, n)
		for j := range records {
			records[j] = domain.DailyActivity{
				PatientID:         "p-1",
				Date:              day(1).AddDate(0, 0, j),
				DietFollowed:      rng.Intn(2) == 1,
				ExerciseCompleted: rng.Intn(2) == 1,
				MedicationTaken:   rng.Intn(2) == 1,
				WaterIntakeMet:    rng.Intn(2) == 1,
				SleepQuality:      rng.Intn(11),
				StressLevel:       rng.Intn(11),
			}
		}
		got, err := Score(records, day(1), day(1).AddDate(0, 0, n-1))
		require.NoError(t, err)
		if got.Overall < 0 || got.Overall > 100 {
			t.Fatalf("overall out of range: %v", got.Overall)
		}
	}
}

func TestScoreAllMissedStressedDays(t *testing.T) {
	records := []domain.DailyActivity{{PatientID: "p-1", Date: day(3), SleepQuality: 0, StressLevel: 10}}
	got, err := Score(records, day(3), day(3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Overall)
	assert.Equal(t, 0.0, got.Stress)
}

func TestStreakStopsAtGap(t *testing.T) {
	records := []domain.DailyActivity{full(14), full(13), full(12), full(11), full(10), full(8)}
	assert.Equal(t, 5, Streak(records))
}

func TestStreakStopsAtWeakDay(t *testing.T) {
	weak := full(12)
	weak.ExerciseCompleted = false
	weak.WaterIntakeMet = false

	assert.Equal(t, 2, Streak([]domain.DailyActivity{full(14), full(13), weak, full(11)}))

	latest := full(15)
	latest.DietFollowed = false
	latest.MedicationTaken = false
	assert.Equal(t, 0, Streak([]domain.DailyActivity{latest, full(14)}))
}

func TestStreakThreeOfFourQualifies(t *testing.T) {
	a := full(5)
	a.WaterIntakeMet = false
	assert.Equal(t, 2, Streak([]domain.DailyActivity{full(4), a}))
}

func TestStreakOrderIndependent(t *testing.T) {
	records := []domain.DailyActivity{full(10), full(12), full(11)}
	assert.Equal(t, 3, Streak(records))
	assert.Equal(t, 0, Streak(nil))
}

func TestDropoutRiskTiers(t *testing.T) {
	cases := []struct {
		overall    float64
		risk       domain.DropoutRisk
		confidence float64
	}{
		{85, domain.DropoutLow, 0.95},
		{80, domain.DropoutLow, 0.95},
		{65, domain.DropoutMedium, 0.75},
		{45, domain.DropoutHigh, 0.85},
		{10, domain.DropoutVeryHigh, 0.90},
	}
	for _, tc := range cases {
		s := domain.AdherenceScore{Overall: tc.overall, Diet: 100, Exercise: 100, Medication: 100}
		got := DropoutRisk(&s, 3)
		assert.Equal(t, tc.risk, got.Risk, "overall %v", tc.overall)
		assert.Equal(t, tc.confidence, got.Confidence, "overall %v", tc.overall)
		require.NotNil(t, got.OverallScore)
		assert.Equal(t, tc.overall, *got.OverallScore)
	}
}

func TestDropoutRiskNamesWeakAreas(t *testing.T) {
	s := domain.AdherenceScore{Overall: 45, Diet: 30, Exercise: 40, Medication: 90}
	got := DropoutRisk(&s, 1)
	assert.Equal(t, "Patient struggling with: diet, exercise. Consider counseling or adjusted plan.", got.Recommendation)

	var names []string
	for _, a := range got.Actions {
		names = append(names, a.Action)
	}
	assert.Equal(t, []string{"Provide simplified meal plans", "Suggest easier exercise alternatives"}, names)
}

func TestDropoutRiskVeryHighActions(t *testing.T) {
	s := domain.AdherenceScore{Overall: 20, Diet: 80, Exercise: 80}
	got := DropoutRisk(&s, 0)
	assert.Contains(t, got.Recommendation, "URGENT")
	require.Len(t, got.Actions, 3)
	assert.Equal(t, "urgent", got.Actions[0].Priority)
	assert.Equal(t, "Send motivational message", got.Actions[2].Action)
}

func TestDropoutRiskUnknownWithoutData(t *testing.T) {
	got := DropoutRisk(nil, 0)
	assert.Equal(t, domain.DropoutUnknown, got.Risk)
	assert.Zero(t, got.Confidence)
	assert.Nil(t, got.OverallScore)
}

func TestEscalate(t *testing.T) {
	low := Escalate(0.4)
	require.NotNil(t, low)
	assert.Equal(t, "low_adherence", low.Flag)
	assert.Equal(t, "medium", low.Urgency)
	assert.Equal(t, 40.0, low.AdherenceRate)

	moderate := Escalate(0.65)
	require.NotNil(t, moderate)
	assert.Equal(t, "moderate_adherence", moderate.Flag)
	assert.Equal(t, "low", moderate.Urgency)

	assert.Nil(t, Escalate(0.7))
	assert.Nil(t, Escalate(1))
}
