package adherence

import (
	"math"
	"strings"

	"github.com/Skufu/lipidcare/internal/domain"
)

type dropoutTier struct {
	MinScore   float64
	Risk       domain.DropoutRisk
	Confidence float64
}

// dropoutTiers is checked in order; the first tier whose MinScore the overall
// score reaches applies.
var dropoutTiers = []dropoutTier{
	{MinScore: 80, Risk: domain.DropoutLow, Confidence: 0.95},
	{MinScore: 60, Risk: domain.DropoutMedium, Confidence: 0.75},
	{MinScore: 40, Risk: domain.DropoutHigh, Confidence: 0.85},
	{MinScore: math.Inf(-1), Risk: domain.DropoutVeryHigh, Confidence: 0.90},
}

// weakThreshold marks an axis score as a weak area.
const weakThreshold = 50

// DropoutRisk buckets an adherence score into a dropout tier with an
// intervention recommendation. A nil score means the window held no data.
func DropoutRisk(score *domain.AdherenceScore, streak int) domain.DropoutPrediction {
	if score == nil {
		return domain.DropoutPrediction{Risk: domain.DropoutUnknown, Confidence: 0}
	}

	var tier dropoutTier
	for _, t := range dropoutTiers {
		if score.Overall >= t.MinScore {
			tier = t
			break
		}
	}
	overall := score.Overall
	return domain.DropoutPrediction{
		Risk:           tier.Risk,
		Confidence:     tier.Confidence,
		OverallScore:   &overall,
		Recommendation: recommendation(tier.Risk, *score),
		Actions:        actions(tier.Risk, *score, streak),
	}
}

func weakAreas(s domain.AdherenceScore) []string {
	var weak []string
	if s.Diet < weakThreshold {
		weak = append(weak, "diet")
	}
	if s.Exercise < weakThreshold {
		weak = append(weak, "exercise")
	}
	if s.Medication < weakThreshold {
		weak = append(weak, "medication")
	}
	return weak
}

func recommendation(risk domain.DropoutRisk, s domain.AdherenceScore) string {
	switch risk {
	case domain.DropoutVeryHigh:
		return "URGENT: Patient shows very low adherence. Immediate intervention needed."
	case domain.DropoutHigh:
		weak := weakAreas(s)
		if len(weak) == 0 {
			return "Patient adherence is inconsistent across the plan. Consider counseling or adjusted plan."
		}
		return "Patient struggling with: " + strings.Join(weak, ", ") + ". Consider counseling or adjusted plan."
	case domain.DropoutMedium:
		return "Patient showing moderate adherence. Continue monitoring and provide encouragement."
	default:
		return "Patient maintaining excellent adherence. Continue current plan."
	}
}

func actions(risk domain.DropoutRisk, s domain.AdherenceScore, streak int) []domain.Action {
	out := []domain.Action{}
	if risk == domain.DropoutVeryHigh {
		out = append(out,
			domain.Action{Priority: "urgent", Action: "Schedule immediate counseling session", Reason: "Very high dropout risk detected"},
			domain.Action{Priority: "urgent", Action: "Contact patient via phone", Reason: "Direct intervention needed"},
		)
	}
	if s.Diet < weakThreshold {
		out = append(out, domain.Action{Priority: "high", Action: "Provide simplified meal plans", Reason: "Low diet adherence"})
	}
	if s.Exercise < weakThreshold {
		out = append(out, domain.Action{Priority: "high", Action: "Suggest easier exercise alternatives", Reason: "Low exercise completion"})
	}
	if streak == 0 {
		out = append(out, domain.Action{Priority: "medium", Action: "Send motivational message", Reason: "No recent activity logged"})
	}
	return out
}

// Escalate applies the clinical follow-up guard to a rolling adherence rate
// in [0,1]. It returns nil when no escalation is needed.
func Escalate(rate float64) *domain.Escalation {
	pct := math.Round(rate*1000) / 10
	switch {
	case rate < 0.5:
		return &domain.Escalation{
			Flag:          "low_adherence",
			Message:       "Patient showing poor adherence (<50%). Clinical follow-up recommended.",
			Urgency:       "medium",
			AdherenceRate: pct,
		}
	case rate < 0.7:
		return &domain.Escalation{
			Flag:          "moderate_adherence",
			Message:       "Patient adherence needs improvement. Consider motivational interview.",
			Urgency:       "low",
			AdherenceRate: pct,
		}
	}
	return nil
}
