package risk

import "github.com/Skufu/lipidcare/internal/domain"

var managementByLevel = map[domain.RiskLevel]domain.ManagementDecision{
	domain.RiskUrgent: {
		Primary:                       domain.MedicalManagement,
		RequiresStatin:                true,
		RequiresImmediateConsultation: true,
		LifestyleSupport:              true,
		Message:                       "URGENT: Immediate medical intervention required along with intensive lifestyle modification.",
	},
	domain.RiskHigh: {
		Primary:          domain.MedicalManagement,
		RequiresStatin:   true,
		LifestyleSupport: true,
		Message:          "Medical management recommended. Statin therapy likely needed along with lifestyle changes.",
	},
	domain.RiskMedium: {
		Primary:          domain.LifestyleModification,
		LifestyleSupport: true,
		MonitorMonths:    3,
		Message:          "Lifestyle modification is primary approach. Medical review in 3 months.",
	},
	domain.RiskLow: {
		Primary:          domain.LifestyleModification,
		LifestyleSupport: true,
		MonitorMonths:    6,
		Message:          "Maintain healthy lifestyle. Routine monitoring recommended.",
	},
}

// ClassifyManagement maps a risk level to its care pathway. An invalid level
// maps to the Urgent pathway.
func ClassifyManagement(level domain.RiskLevel) domain.ManagementDecision {
	if d, ok := managementByLevel[level]; ok {
		return d
	}
	return managementByLevel[domain.RiskUrgent]
}
