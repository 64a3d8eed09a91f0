package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/lipidcare/internal/domain"
)

func optimalPanel() domain.LipidPanel {
	return domain.LipidPanel{TotalCholesterol: 170, LDL: 90, HDL: 65, Triglycerides: 100}.Derive()
}

func baseProfile() domain.PatientProfile {
	return domain.PatientProfile{ID: "p-1", Age: 40, Sex: domain.SexFemale, BMI: 23, BloodGlucose: 90}
}

func TestEvaluateOptimalIsLow(t *testing.T) {
	got, err := Evaluate(optimalPanel(), baseProfile())
	require.NoError(t, err)
	if got.Level != domain.RiskLow {
		t.Fatalf("expected Low, got %s", got.Level)
	}
	assert.InDelta(t, 0.16, got.Score, 1e-9)
	assert.Equal(t, domain.SourceRules, got.Source)
	assert.Empty(t, got.CriticalFactors)
	assert.Equal(t, "Optimal", got.Categories.LDL)
	assert.Equal(t, "Optimal (Protective)", got.Categories.HDL)
	assert.Equal(t, "Normal", got.Categories.Triglycerides)
}

func TestEvaluateLevels(t *testing.T) {
	cases := []struct {
		name    string
		panel   domain.LipidPanel
		profile func(p *domain.PatientProfile)
		want    domain.RiskLevel
		score   float64
	}{
		{
			name:  "medium boundary",
			panel: domain.LipidPanel{LDL: 140, HDL: 45, Triglycerides: 160},
			profile: func(p *domain.PatientProfile) {
				p.BloodGlucose = 105
			},
			want:  domain.RiskMedium,
			score: 0.4,
		},
		{
			name:  "high",
			panel: domain.LipidPanel{LDL: 170, HDL: 35, Triglycerides: 250},
			profile: func(p *domain.PatientProfile) {
				p.BloodGlucose = 110
				p.Age = 60
				p.Smoking = true
			},
			want:  domain.RiskHigh,
			score: 0.68,
		},
		{
			name:  "urgent by score",
			panel: domain.LipidPanel{LDL: 180, HDL: 30, Triglycerides: 600},
			profile: func(p *domain.PatientProfile) {
				p.BloodGlucose = 200
				p.Age = 60
				p.Smoking = true
				p.FamilyHistory = true
				p.BMI = 33
				p.ExistingConditions = []string{"Hypertension"}
			},
			want:  domain.RiskUrgent,
			score: 0.88,
		},
		{
			name:  "chest pain overrides a low score",
			panel: optimalPanel(),
			profile: func(p *domain.PatientProfile) {
				p.ChestPain = true
			},
			want:  domain.RiskUrgent,
			score: 0.16,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := baseProfile()
			tc.profile(&profile)
			got, err := Evaluate(tc.panel, profile)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Level)
			assert.InDelta(t, tc.score, got.Score, 1e-9)
		})
	}
}

func TestEvaluateLDLOverride(t *testing.T) {
	for _, ldl := range []float64{190.5, 200, 320} {
		panel := optimalPanel()
		panel.LDL = ldl
		got, err := Evaluate(panel, baseProfile())
		require.NoError(t, err)
		if got.Level != domain.RiskUrgent {
			t.Fatalf("ldl %v: expected Urgent, got %s", ldl, got.Level)
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	panel := domain.LipidPanel{LDL: 150, HDL: 38, Triglycerides: 220}
	profile := baseProfile()
	profile.Smoking = true

	first, err := Evaluate(panel, profile)
	require.NoError(t, err)
	second, err := Evaluate(panel, profile)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluateCriticalFactorsOrdered(t *testing.T) {
	panel := domain.LipidPanel{LDL: 170, HDL: 35, Triglycerides: 250}
	profile := baseProfile()
	profile.BloodGlucose = 140
	profile.Smoking = true

	got, err := Evaluate(panel, profile)
	require.NoError(t, err)
	require.Len(t, got.CriticalFactors, 5)
	assert.Contains(t, got.CriticalFactors[0], "LDL")
	assert.Contains(t, got.CriticalFactors[1], "HDL")
	assert.Contains(t, got.CriticalFactors[2], "triglycerides")
	assert.Contains(t, got.CriticalFactors[3], "glucose")
	assert.Contains(t, got.CriticalFactors[4], "Smoking")
	assert.Contains(t, got.AtherosclerosisRisk, "High risk of plaque")
}

func TestEvaluateValidation(t *testing.T) {
	cases := map[string]func(*domain.LipidPanel, *domain.PatientProfile){
		"missing ldl":      func(l *domain.LipidPanel, _ *domain.PatientProfile) { l.LDL = 0 },
		"missing gender":   func(_ *domain.LipidPanel, p *domain.PatientProfile) { p.Sex = domain.SexUnknown },
		"missing glucose":  func(_ *domain.LipidPanel, p *domain.PatientProfile) { p.BloodGlucose = 0 },
		"age out of range": func(_ *domain.LipidPanel, p *domain.PatientProfile) { p.Age = 130 },
		"negative hdl":     func(l *domain.LipidPanel, _ *domain.PatientProfile) { l.HDL = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			panel, profile := optimalPanel(), baseProfile()
			mutate(&panel, &profile)
			_, err := Evaluate(panel, profile)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestEvaluateZeroHDLDoesNotPanic(t *testing.T) {
	panel := domain.LipidPanel{TotalCholesterol: 200, LDL: 120, HDL: 0, Triglycerides: 150}.Derive()
	assert.Nil(t, panel.TCHDLRatio)

	got, err := Evaluate(panel, baseProfile())
	require.NoError(t, err)
	assert.Equal(t, 0.8, got.Axes.HDL)
}

type fakeClassifier struct {
	label      string
	confidence float64
	err        error
	features   []float64
}

func (f *fakeClassifier) Predict(_ context.Context, features []float64) (string, float64, error) {
	f.features = features
	return f.label, f.confidence, f.err
}

func TestScorerWithoutClassifierUsesRules(t *testing.T) {
	s := NewScorer(nil, nil)
	got, err := s.Assess(context.Background(), optimalPanel(), baseProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, got.Source)
	assert.Equal(t, domain.RiskLow, got.Level)
}

func TestScorerUsesModelLabel(t *testing.T) {
	clf := &fakeClassifier{label: "Moderate Risk", confidence: 0.72}
	s := NewScorer(clf, nil)

	got, err := s.Assess(context.Background(), optimalPanel(), baseProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceModel, got.Source)
	assert.Equal(t, domain.RiskMedium, got.Level)
	assert.Equal(t, 0.72, got.Score)
	assert.Equal(t, []float64{90, 65, 100, 90, 40, 0, 23, 0, 0}, clf.features)
}

func TestScorerFallsBackOnClassifierError(t *testing.T) {
	s := NewScorer(&fakeClassifier{err: errors.New("connection refused")}, nil)
	got, err := s.Assess(context.Background(), optimalPanel(), baseProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, got.Source)
}

func TestScorerFallsBackOnUnknownLabel(t *testing.T) {
	s := NewScorer(&fakeClassifier{label: "purple", confidence: 0.9}, nil)
	got, err := s.Assess(context.Background(), optimalPanel(), baseProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRules, got.Source)
}

func TestScorerKeepsRedFlagOverride(t *testing.T) {
	panel := optimalPanel()
	panel.LDL = 210
	s := NewScorer(&fakeClassifier{label: "low", confidence: 0.6}, nil)

	got, err := s.Assess(context.Background(), panel, baseProfile())
	require.NoError(t, err)
	assert.Equal(t, domain.RiskUrgent, got.Level)
	assert.Equal(t, domain.SourceModel, got.Source)
}

func TestScorerValidatesBeforeCallingClassifier(t *testing.T) {
	clf := &fakeClassifier{label: "low"}
	s := NewScorer(clf, nil)
	profile := baseProfile()
	profile.Age = 0

	_, err := s.Assess(context.Background(), optimalPanel(), profile)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, clf.features)
}

func TestFeaturesDefaultBMI(t *testing.T) {
	profile := baseProfile()
	profile.BMI = 0
	profile.Sex = domain.SexMale
	profile.Smoking = true
	got := Features(optimalPanel(), profile)
	assert.Equal(t, []float64{90, 65, 100, 90, 40, 1, 25, 1, 0}, got)
}
