package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RiskLevel is the canonical four-tier cardiovascular risk scale.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskUrgent
)

var riskLevelNames = map[RiskLevel]string{
	RiskLow:    "Low",
	RiskMedium: "Medium",
	RiskHigh:   "High",
	RiskUrgent: "Urgent",
}

func (l RiskLevel) String() string {
	if name, ok := riskLevelNames[l]; ok {
		return name
	}
	return "Unknown"
}

func (l RiskLevel) Valid() bool {
	_, ok := riskLevelNames[l]
	return ok
}

// ParseRiskLevel maps the label vocabularies used by clients and the
// statistical classifier onto the canonical enum.
func ParseRiskLevel(s string) (RiskLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, " risk")
	key = strings.TrimSpace(key)
	switch key {
	case "low", "0":
		return RiskLow, nil
	case "medium", "moderate", "1":
		return RiskMedium, nil
	case "high", "2":
		return RiskHigh, nil
	case "urgent", "critical", "very high", "3":
		return RiskUrgent, nil
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}

func (l RiskLevel) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return json.Marshal(l.String())
}

func (l *RiskLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Sex of the patient. The zero value means the field was not provided.
type Sex string

const (
	SexUnknown     Sex = ""
	SexUnspecified Sex = "unspecified"
	SexMale        Sex = "male"
	SexFemale      Sex = "female"
)

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale, nil
	case "f", "female":
		return SexFemale, nil
	case "u", "other", "unknown", "unspecified":
		return SexUnspecified, nil
	case "":
		return SexUnknown, nil
	}
	return SexUnknown, fmt.Errorf("unknown sex %q", s)
}

// LipidPanel holds measured lipid values in mg/dL. A zero value means the
// measurement is absent. Ratios are nil when undefined (HDL of zero).
type LipidPanel struct {
	TotalCholesterol float64  `json:"total_cholesterol"`
	LDL              float64  `json:"ldl"`
	HDL              float64  `json:"hdl"`
	Triglycerides    float64  `json:"triglycerides"`
	VLDL             float64  `json:"vldl"`
	NonHDL           float64  `json:"non_hdl"`
	TCHDLRatio       *float64 `json:"tc_hdl_ratio"`
	LDLHDLRatio      *float64 `json:"ldl_hdl_ratio"`
	TGHDLRatio       *float64 `json:"tg_hdl_ratio"`
}

// Derive returns a copy of the panel with absent derived values filled in.
func (p LipidPanel) Derive() LipidPanel {
	out := p
	if out.VLDL == 0 && out.Triglycerides > 0 {
		out.VLDL = out.Triglycerides / 5
	}
	if out.NonHDL == 0 && out.TotalCholesterol > 0 {
		out.NonHDL = out.TotalCholesterol - out.HDL
	}
	if out.TCHDLRatio == nil && out.TotalCholesterol > 0 {
		out.TCHDLRatio = ratioOrNil(out.TotalCholesterol, out.HDL)
	}
	if out.LDLHDLRatio == nil && out.LDL > 0 {
		out.LDLHDLRatio = ratioOrNil(out.LDL, out.HDL)
	}
	if out.TGHDLRatio == nil && out.Triglycerides > 0 {
		out.TGHDLRatio = ratioOrNil(out.Triglycerides, out.HDL)
	}
	return out
}

// Ratio divides num by hdl, returning ErrDivisionGuard when hdl is not positive.
func Ratio(num, hdl float64) (float64, error) {
	if hdl <= 0 {
		return 0, ErrDivisionGuard
	}
	return num / hdl, nil
}

func ratioOrNil(num, hdl float64) *float64 {
	v, err := Ratio(num, hdl)
	if err != nil {
		return nil
	}
	return &v
}

type PatientProfile struct {
	ID                 string   `json:"patient_id"`
	Name               string   `json:"name,omitempty"`
	Age                int      `json:"age"`
	Sex                Sex      `json:"gender"`
	BMI                float64  `json:"bmi"`
	Smoking            bool     `json:"smoking"`
	Diabetes           bool     `json:"diabetes"`
	Hypertension       bool     `json:"hypertension"`
	FamilyHistory      bool     `json:"family_history"`
	ChestPain          bool     `json:"chest_pain"`
	BloodGlucose       float64  `json:"blood_glucose"`
	ExistingConditions []string `json:"existing_conditions,omitempty"`
}

// HasHypertension reports the explicit flag or a listed hypertension condition.
func (p PatientProfile) HasHypertension() bool {
	if p.Hypertension {
		return true
	}
	for _, c := range p.ExistingConditions {
		if strings.EqualFold(strings.TrimSpace(c), "hypertension") {
			return true
		}
	}
	return false
}

type LipidCategories struct {
	LDL           string `json:"ldl_status"`
	HDL           string `json:"hdl_status"`
	Triglycerides string `json:"triglyceride_status"`
}

// AxisScores are the per-axis contributions to the composite risk score.
type AxisScores struct {
	LDL            float64 `json:"ldl"`
	HDL            float64 `json:"hdl"`
	Triglycerides  float64 `json:"triglycerides"`
	Glucose        float64 `json:"glucose"`
	Cardiovascular float64 `json:"cardiovascular"`
}

const (
	SourceRules = "rules"
	SourceModel = "model"
)

type RiskAssessment struct {
	Level               RiskLevel       `json:"risk_level"`
	Score               float64         `json:"risk_score"`
	Source              string          `json:"source"`
	CriticalFactors     []string        `json:"critical_factors"`
	Categories          LipidCategories `json:"categories"`
	Axes                AxisScores      `json:"axis_scores"`
	AtherosclerosisRisk string          `json:"atherosclerosis_risk"`
	Interpretation      string          `json:"interpretation"`
}

type ManagementType string

const (
	MedicalManagement     ManagementType = "medical_management"
	LifestyleModification ManagementType = "lifestyle_modification"
)

type ManagementDecision struct {
	Primary                       ManagementType `json:"primary"`
	RequiresStatin                bool           `json:"requires_statin"`
	RequiresImmediateConsultation bool           `json:"requires_immediate_consultation"`
	LifestyleSupport              bool           `json:"lifestyle_support"`
	MonitorMonths                 int            `json:"monitor_months,omitempty"`
	Message                       string         `json:"message"`
}

type Meal struct {
	Name      string `json:"name"`
	Benefits  string `json:"benefits"`
	Nutrients string `json:"nutrients"`
}

type MealPlan struct {
	Breakfast    []Meal   `json:"breakfast"`
	Lunch        []Meal   `json:"lunch"`
	Dinner       []Meal   `json:"dinner"`
	Snacks       []string `json:"snacks"`
	Restrictions []string `json:"restrictions"`
	Hydration    string   `json:"hydration"`
	Supplements  []string `json:"supplements"`
	Focus        string   `json:"focus"`
}

type ExercisePlan struct {
	Type       string   `json:"type"`
	Duration   string   `json:"duration"`
	Frequency  string   `json:"frequency"`
	Intensity  string   `json:"intensity,omitempty"`
	Warning    string   `json:"warning,omitempty"`
	Activities []string `json:"activities"`
	Benefits   string   `json:"benefits,omitempty"`
	Note       string   `json:"heart_health_note"`
}

type Reminder struct {
	Time     string `json:"time"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

type EducationalContent struct {
	DailyFacts    []string `json:"daily_facts"`
	WarningSigns  []string `json:"warning_signs"`
	EmergencyNote string   `json:"emergency_note"`
}

type Checkup struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

type CheckupSchedule struct {
	Note      string    `json:"note"`
	FollowUps []Checkup `json:"follow_ups"`
}

type LifestylePlan struct {
	MealPlan           MealPlan           `json:"meal_plan"`
	ExercisePlan       ExercisePlan       `json:"exercise_plan"`
	DailyReminders     []Reminder         `json:"daily_reminders"`
	EducationalContent EducationalContent `json:"educational_content"`
	CheckupSchedule    CheckupSchedule    `json:"checkup_schedule"`
	PersonalNotes      []string           `json:"personal_notes,omitempty"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// DailyActivity is one patient's self-reported regimen for a calendar day.
// (PatientID, Date) is unique; logging the same day again replaces the row.
type DailyActivity struct {
	PatientID         string    `json:"patient_id"`
	Date              time.Time `json:"date"`
	DietFollowed      bool      `json:"diet_followed"`
	ExerciseCompleted bool      `json:"exercise_completed"`
	MedicationTaken   bool      `json:"medication_taken"`
	WaterIntakeMet    bool      `json:"water_intake_met"`
	SleepQuality      int       `json:"sleep_quality"`
	StressLevel       int       `json:"stress_level"`
	Notes             string    `json:"notes,omitempty"`
}

// CompletedAxes counts the boolean regimen axes flagged true.
func (a DailyActivity) CompletedAxes() int {
	n := 0
	for _, v := range []bool{a.DietFollowed, a.ExerciseCompleted, a.MedicationTaken, a.WaterIntakeMet} {
		if v {
			n++
		}
	}
	return n
}

func (a DailyActivity) Validate() error {
	if strings.TrimSpace(a.PatientID) == "" {
		return &ValidationError{Field: "patient_id", Reason: "is required"}
	}
	if a.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if a.SleepQuality < 0 || a.SleepQuality > 10 {
		return &ValidationError{Field: "sleep_quality", Reason: "must be between 0 and 10"}
	}
	if a.StressLevel < 0 || a.StressLevel > 10 {
		return &ValidationError{Field: "stress_level", Reason: "must be between 0 and 10"}
	}
	return nil
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"

type AdherenceScore struct {
	Start      time.Time `json:"start_date"`
	End        time.Time `json:"end_date"`
	TotalDays  int       `json:"total_days"`
	Diet       float64   `json:"diet_score"`
	Exercise   float64   `json:"exercise_score"`
	Medication float64   `json:"medication_score"`
	Water      float64   `json:"water_score"`
	Sleep      float64   `json:"sleep_score"`
	Stress     float64   `json:"stress_score"`
	Overall    float64   `json:"overall_score"`
}

type DropoutRisk string

const (
	DropoutUnknown  DropoutRisk = "unknown"
	DropoutLow      DropoutRisk = "low"
	DropoutMedium   DropoutRisk = "medium"
	DropoutHigh     DropoutRisk = "high"
	DropoutVeryHigh DropoutRisk = "very_high"
)

type Action struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

type DropoutPrediction struct {
	Risk           DropoutRisk `json:"risk"`
	Confidence     float64     `json:"confidence"`
	OverallScore   *float64    `json:"overall_score,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	Actions        []Action    `json:"actions,omitempty"`
}

type Escalation struct {
	Flag          string  `json:"flag"`
	Message       string  `json:"message"`
	Urgency       string  `json:"urgency"`
	AdherenceRate float64 `json:"adherence_rate"`
}

// ExtractedReport is the metadata and values recovered from a lab report.
type ExtractedReport struct {
	PatientName string             `json:"patient_name,omitempty"`
	Age         *int               `json:"age,omitempty"`
	Sex         string             `json:"sex,omitempty"`
	ReportDate  string             `json:"report_date,omitempty"`
	Values      map[string]float64 `json:"values,omitempty"`
}

type AssessmentRecord struct {
	ID         string             `json:"id"`
	PatientID  string             `json:"patient_id"`
	Timestamp  time.Time          `json:"timestamp"`
	Panel      LipidPanel         `json:"lipid_values"`
	Profile    PatientProfile     `json:"profile"`
	Assessment RiskAssessment     `json:"risk_analysis"`
	Management ManagementDecision `json:"management_type"`
	Plan       LifestylePlan      `json:"lifestyle_plan"`
	Extracted  *ExtractedReport   `json:"extracted_data,omitempty"`
}

type NotificationKind string

const (
	NotificationDaily    NotificationKind = "daily"
	NotificationFollowUp NotificationKind = "followup"
)

type Notification struct {
	ID        string           `json:"id"`
	PatientID string           `json:"patient_id"`
	Due       time.Time        `json:"due"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
}
