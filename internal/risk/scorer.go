package risk

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
)

// bucket maps values below Upper to Score. The last bucket of a table has
// Upper = +Inf.
type bucket struct {
	Upper float64
	Score float64
	Label string
}

var (
	ldlBuckets = []bucket{
		{Upper: 100, Score: 0.2, Label: "Optimal"},
		{Upper: 130, Score: 0.4, Label: "Near Optimal"},
		{Upper: 160, Score: 0.6, Label: "Borderline High"},
		{Upper: 190, Score: 0.8, Label: "High"},
		{Upper: math.Inf(1), Score: 1.0, Label: "Very High"},
	}
	// HDL is protective, so lower values carry the higher score.
	hdlBuckets = []bucket{
		{Upper: 40, Score: 0.8, Label: "Low (Risk Factor)"},
		{Upper: 60, Score: 0.4, Label: "Acceptable"},
		{Upper: math.Inf(1), Score: 0.2, Label: "Optimal (Protective)"},
	}
	triglycerideBuckets = []bucket{
		{Upper: 150, Score: 0.2, Label: "Normal"},
		{Upper: 200, Score: 0.5, Label: "Borderline High"},
		{Upper: 500, Score: 0.8, Label: "High"},
		{Upper: math.Inf(1), Score: 1.0, Label: "Very High"},
	}
	glucoseBuckets = []bucket{
		{Upper: 100, Score: 0.2, Label: "Normal"},
		{Upper: 126, Score: 0.5, Label: "Prediabetic"},
		{Upper: math.Inf(1), Score: 0.8, Label: "Diabetic"},
	}
)

func lookup(table []bucket, v float64) bucket {
	for _, b := range table {
		if v < b.Upper {
			return b
		}
	}
	return table[len(table)-1]
}

// riskFactor is one contribution to the composite cardiovascular score.
type riskFactor struct {
	ID     string
	Weight float64
	Match  func(domain.PatientProfile) bool
}

var cardiovascularFactors = []riskFactor{
	{ID: "age>55", Weight: 0.3, Match: func(p domain.PatientProfile) bool { return p.Age > 55 }},
	{ID: "smoking", Weight: 0.2, Match: func(p domain.PatientProfile) bool { return p.Smoking }},
	{ID: "family_history", Weight: 0.2, Match: func(p domain.PatientProfile) bool { return p.FamilyHistory }},
	{ID: "bmi>30", Weight: 0.15, Match: func(p domain.PatientProfile) bool { return p.BMI > 30 }},
	{ID: "hypertension", Weight: 0.15, Match: func(p domain.PatientProfile) bool { return p.HasHypertension() }},
}

// criticalRule emits a human-readable flag when a hard threshold is crossed.
type criticalRule struct {
	Match func(domain.LipidPanel, domain.PatientProfile) bool
	Note  string
}

var criticalRules = []criticalRule{
	{Match: func(l domain.LipidPanel, _ domain.PatientProfile) bool { return l.LDL > 160 }, Note: "Dangerously high LDL cholesterol - major atherosclerosis risk"},
	{Match: func(l domain.LipidPanel, _ domain.PatientProfile) bool { return l.HDL < 40 }, Note: "Low HDL - reduced cardiovascular protection"},
	{Match: func(l domain.LipidPanel, _ domain.PatientProfile) bool { return l.Triglycerides > 200 }, Note: "Elevated triglycerides - increased heart disease risk"},
	{Match: func(_ domain.LipidPanel, p domain.PatientProfile) bool { return p.BloodGlucose > 126 }, Note: "Diabetic range glucose - accelerates plaque formation"},
	{Match: func(_ domain.LipidPanel, p domain.PatientProfile) bool { return p.Smoking }, Note: "Smoking damages blood vessels and accelerates atherosclerosis"},
}

// CardiovascularScore is the simplified ASCVD composite, capped at 1.
func CardiovascularScore(p domain.PatientProfile) float64 {
	score := 0.0
	for _, f := range cardiovascularFactors {
		if f.Match(p) {
			score += f.Weight
		}
	}
	return math.Min(score, 1.0)
}

// Validate checks the inputs scoring depends on.
func Validate(panel domain.LipidPanel, profile domain.PatientProfile) error {
	var missing []string
	if panel.LDL <= 0 {
		missing = append(missing, "ldl")
	}
	if panel.HDL < 0 {
		return &domain.ValidationError{Field: "hdl", Reason: "must not be negative"}
	}
	if panel.Triglycerides <= 0 {
		missing = append(missing, "triglycerides")
	}
	if profile.BloodGlucose <= 0 {
		missing = append(missing, "blood_glucose")
	}
	if profile.Age == 0 {
		missing = append(missing, "age")
	}
	if profile.Sex == domain.SexUnknown {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return domain.MissingFields(missing)
	}
	if profile.Age < 1 || profile.Age > 120 {
		return &domain.ValidationError{Field: "age", Reason: "must be between 1 and 120"}
	}
	if profile.BMI < 0 {
		return &domain.ValidationError{Field: "bmi", Reason: "must not be negative"}
	}
	return nil
}

// Evaluate scores a panel with the clinical rule set. It is a pure function
// of its inputs.
func Evaluate(panel domain.LipidPanel, profile domain.PatientProfile) (domain.RiskAssessment, error) {
	if err := Validate(panel, profile); err != nil {
		return domain.RiskAssessment{}, err
	}

	ldl := lookup(ldlBuckets, panel.LDL)
	hdl := lookup(hdlBuckets, panel.HDL)
	tg := lookup(triglycerideBuckets, panel.Triglycerides)
	glucose := lookup(glucoseBuckets, profile.BloodGlucose)
	axes := domain.AxisScores{
		LDL:            ldl.Score,
		HDL:            hdl.Score,
		Triglycerides:  tg.Score,
		Glucose:        glucose.Score,
		Cardiovascular: CardiovascularScore(profile),
	}

	mean := (axes.LDL + axes.HDL + axes.Triglycerides + axes.Glucose + axes.Cardiovascular) / 5
	// Contributions are multiples of 0.05, so two decimals are exact and
	// rounding only removes floating point noise before the comparisons.
	score := clamp(math.Round(mean*100)/100, 0, 1)
	level := levelFor(score, panel, profile)

	return domain.RiskAssessment{
		Level:           level,
		Score:           score,
		Source:          domain.SourceRules,
		CriticalFactors: CriticalFactors(panel, profile),
		Categories: domain.LipidCategories{
			LDL:           ldl.Label,
			HDL:           hdl.Label,
			Triglycerides: tg.Label,
		},
		Axes:                axes,
		AtherosclerosisRisk: atherosclerosisRisk(panel, profile),
		Interpretation:      interpretation(level, panel),
	}, nil
}

// levelFor is a decision list: absolute red flags escalate to Urgent
// whatever the composite says.
func levelFor(score float64, panel domain.LipidPanel, profile domain.PatientProfile) domain.RiskLevel {
	switch {
	case score >= 0.8 || redFlag(panel, profile):
		return domain.RiskUrgent
	case score >= 0.6:
		return domain.RiskHigh
	case score >= 0.4:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func redFlag(panel domain.LipidPanel, profile domain.PatientProfile) bool {
	return profile.ChestPain || panel.LDL > 190
}

func CriticalFactors(panel domain.LipidPanel, profile domain.PatientProfile) []string {
	factors := []string{}
	for _, r := range criticalRules {
		if r.Match(panel, profile) {
			factors = append(factors, r.Note)
		}
	}
	return factors
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Features is the vector the statistical classifier was trained on.
func Features(panel domain.LipidPanel, profile domain.PatientProfile) []float64 {
	bmi := profile.BMI
	if bmi == 0 {
		bmi = 25
	}
	return []float64{
		panel.LDL,
		panel.HDL,
		panel.Triglycerides,
		profile.BloodGlucose,
		float64(profile.Age),
		boolFeature(profile.Sex == domain.SexMale),
		bmi,
		boolFeature(profile.Smoking),
		boolFeature(profile.FamilyHistory),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Scorer assesses risk with an optional statistical classifier and falls
// back to the rule set when none is configured or it fails.
type Scorer struct {
	classifier domain.Classifier
	logger     *zap.Logger
}

func NewScorer(classifier domain.Classifier, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{classifier: classifier, logger: logger}
}

func (s *Scorer) Assess(ctx context.Context, panel domain.LipidPanel, profile domain.PatientProfile) (domain.RiskAssessment, error) {
	assessment, err := Evaluate(panel, profile)
	if err != nil {
		return domain.RiskAssessment{}, err
	}
	if s.classifier == nil {
		return assessment, nil
	}

	label, confidence, err := s.classifier.Predict(ctx, Features(panel, profile))
	if err != nil {
		s.logger.Warn("classifier unavailable, using rule-based score",
			zap.String("patient_id", profile.ID),
			zap.Error(err),
		)
		return assessment, nil
	}
	level, err := domain.ParseRiskLevel(label)
	if err != nil {
		s.logger.Warn("classifier returned unknown label, using rule-based score",
			zap.String("label", label),
		)
		return assessment, nil
	}
	if redFlag(panel, profile) {
		level = domain.RiskUrgent
	}

	assessment.Level = level
	assessment.Score = clamp(confidence, 0, 1)
	assessment.Source = domain.SourceModel
	assessment.Interpretation = interpretation(level, panel)
	return assessment, nil
}
