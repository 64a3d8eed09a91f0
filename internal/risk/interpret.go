package risk

import (
	"fmt"
	"strings"

	"github.com/Skufu/lipidcare/internal/domain"
)

// atherosclerosisPoint adds Points when Match holds. Thresholds follow the
// plaque-formation checklist used in the lifestyle consults.
type atherosclerosisPoint struct {
	Points int
	Match  func(domain.LipidPanel, domain.PatientProfile) bool
}

var atherosclerosisPoints = []atherosclerosisPoint{
	{Points: 2, Match: func(l domain.LipidPanel, _ domain.PatientProfile) bool { return l.LDL > 130 }},
	{Points: 1, Match: func(l domain.LipidPanel, _ domain.PatientProfile) bool { return l.HDL < 40 }},
	{Points: 2, Match: func(_ domain.LipidPanel, p domain.PatientProfile) bool { return p.Smoking }},
	{Points: 1, Match: func(_ domain.LipidPanel, p domain.PatientProfile) bool { return p.BMI > 30 }},
	{Points: 1, Match: func(_ domain.LipidPanel, p domain.PatientProfile) bool { return p.BloodGlucose > 100 }},
}

func atherosclerosisRisk(panel domain.LipidPanel, profile domain.PatientProfile) string {
	points := 0
	for _, ap := range atherosclerosisPoints {
		if ap.Match(panel, profile) {
			points += ap.Points
		}
	}
	switch {
	case points >= 5:
		return "High risk of plaque buildup and arterial narrowing. Immediate action required."
	case points >= 3:
		return "Moderate atherosclerosis risk. Lifestyle changes crucial to prevent progression."
	default:
		return "Lower risk. Maintain healthy habits to prevent plaque development."
	}
}

func interpretation(level domain.RiskLevel, panel domain.LipidPanel) string {
	var b strings.Builder
	switch level {
	case domain.RiskUrgent:
		b.WriteString("URGENT MEDICAL ATTENTION REQUIRED\n")
		fmt.Fprintf(&b, "LDL cholesterol %s mg/dL is extremely high and the risk of acute cardiac events is significantly elevated.\n", num(panel.LDL))
		b.WriteString("Plaque accumulates rapidly at these levels, narrowing blood flow to the heart and brain.\n")
		b.WriteString("Contact your physician within 24 hours. Statin therapy and intensive lifestyle modification are likely needed.")
	case domain.RiskHigh:
		b.WriteString("HIGH CARDIOVASCULAR RISK DETECTED\n")
		fmt.Fprintf(&b, "LDL %s mg/dL, HDL %s mg/dL, triglycerides %s mg/dL indicate significant atherosclerotic risk.\n",
			num(panel.LDL), num(panel.HDL), num(panel.Triglycerides))
		b.WriteString("Schedule a physician appointment within 1-2 weeks. Medical therapy is recommended alongside lifestyle changes.")
	case domain.RiskMedium:
		b.WriteString("MODERATE RISK - ACTION NEEDED\n")
		fmt.Fprintf(&b, "LDL %s mg/dL is above optimal and promotes gradual plaque buildup.\n", num(panel.LDL))
		b.WriteString("Start intensive lifestyle modification and re-test lipids at a medical review in 3 months.")
	default:
		b.WriteString("HEALTHY LIPID PROFILE\n")
		fmt.Fprintf(&b, "LDL %s mg/dL and HDL %s mg/dL are in the healthy range.\n", num(panel.LDL), num(panel.HDL))
		b.WriteString("Continue heart-healthy habits. Routine monitoring recommended every 6-12 months.")
	}
	return b.String()
}

func num(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
