package lifestyle

import (
	"time"

	"github.com/Skufu/lipidcare/internal/domain"
)

var (
	breakfasts = []domain.Meal{
		{Name: "Oatmeal with berries and walnuts", Benefits: "Soluble fiber lowers LDL cholesterol", Nutrients: "Omega-3, antioxidants, fiber"},
		{Name: "Greek yogurt with flaxseed", Benefits: "Probiotics and healthy fats", Nutrients: "Protein, omega-3, calcium"},
		{Name: "Vegetable omelet with olive oil", Benefits: "Monounsaturated fats support HDL", Nutrients: "Protein, vitamins, healthy fats"},
	}
	lunches = []domain.Meal{
		{Name: "Grilled salmon with quinoa and vegetables", Benefits: "Omega-3 fatty acids reduce inflammation", Nutrients: "EPA/DHA, complete protein, fiber"},
		{Name: "Lentil soup with whole grain bread", Benefits: "Plant protein and cholesterol-lowering fiber", Nutrients: "Protein, iron, B-vitamins"},
		{Name: "Chicken breast with brown rice and broccoli", Benefits: "Lean protein with anti-inflammatory vegetables", Nutrients: "Protein, fiber, vitamins C & K"},
	}
	dinners = []domain.Meal{
		{Name: "Mediterranean grilled fish with roasted vegetables", Benefits: "Heart-protective omega-3s", Nutrients: "Lean protein, antioxidants"},
		{Name: "Turkey chili with beans", Benefits: "High fiber reduces cholesterol absorption", Nutrients: "Protein, fiber, minerals"},
		{Name: "Vegetable stir-fry with tofu", Benefits: "Plant sterols lower LDL", Nutrients: "Plant protein, phytonutrients"},
	}
	snacks = []string{
		"Handful of almonds (reduces LDL by 5%)",
		"Apple with natural peanut butter",
		"Carrot sticks with hummus",
		"Low-fat cheese with whole grain crackers",
	}

	intensiveRestrictions = []string{
		"AVOID: Saturated fats (butter, red meat, full-fat dairy)",
		"ELIMINATE: Trans fats (processed foods, fried foods)",
		"LIMIT: Dietary cholesterol (<200mg/day)",
		"REDUCE: Sodium (<1500mg/day)",
		"MINIMIZE: Added sugars",
	}

	intensiveSupplements = []string{
		"Omega-3 (EPA/DHA): 1-2g daily - reduces triglycerides",
		"Plant sterols: 2g daily - blocks cholesterol absorption",
		"Vitamin D: If deficient - supports cardiovascular health",
		"Consult physician before starting supplements",
	}
	routineSupplements = []string{
		"Omega-3: Consider if not eating fatty fish 2x/week",
		"Vitamin D: If deficiency confirmed",
		"Multivitamin: Optional for nutritional insurance",
	}
)

const (
	hydration       = "8-10 glasses of water daily"
	dietFocus       = "Anti-inflammatory, cholesterol-lowering foods"
	heartHealthNote = "Exercise reverses plaque buildup and improves arterial function"
)

var exerciseByTier = map[domain.RiskLevel]domain.ExercisePlan{
	domain.RiskUrgent: {
		Type:      "Light activity only - MEDICAL CLEARANCE REQUIRED",
		Duration:  "10-15 minutes",
		Frequency: "Daily gentle walking",
		Warning:   "Get physician approval before starting exercise",
		Activities: []string{
			"Slow walking (level surface)",
			"Gentle stretching",
			"Light household activities",
		},
	},
	domain.RiskHigh: {
		Type:      "Moderate aerobic exercise",
		Duration:  "30 minutes",
		Frequency: "5 days/week",
		Intensity: "Moderate (can talk but not sing)",
		Activities: []string{
			"Brisk walking",
			"Swimming",
			"Cycling",
			"Strength training (2x/week)",
		},
		Benefits: "Raises HDL, lowers triglycerides, improves insulin sensitivity",
	},
	// Medium and Low share the regular tier.
	domain.RiskMedium: {
		Type:      "Regular aerobic + strength training",
		Duration:  "40-60 minutes",
		Frequency: "5-7 days/week",
		Intensity: "Moderate to vigorous",
		Activities: []string{
			"Running/Jogging",
			"HIIT workouts",
			"Weight training",
			"Sports activities",
		},
		Benefits: "Comprehensive cardiovascular protection",
	},
}

var (
	baseReminders = []domain.Reminder{
		{Time: "07:00", Message: "Take morning medications (if prescribed)", Priority: "high"},
		{Time: "08:00", Message: "Heart-healthy breakfast time", Priority: "medium"},
		{Time: "10:00", Message: "Hydration check - drink water", Priority: "low"},
		{Time: "12:30", Message: "Healthy lunch reminder", Priority: "medium"},
		{Time: "16:00", Message: "Movement break - 10 minute walk", Priority: "medium"},
		{Time: "18:30", Message: "Dinner time - Mediterranean style", Priority: "medium"},
		{Time: "21:00", Message: "Wind down - prepare for quality sleep", Priority: "low"},
	}
	intensiveReminders = []domain.Reminder{
		{Time: "09:00", Message: "Log your symptoms and how you feel", Priority: "high"},
		{Time: "20:00", Message: "Evening medication reminder", Priority: "high"},
		{Time: "22:00", Message: "Review today's adherence", Priority: "medium"},
	}
)

var education = domain.EducationalContent{
	DailyFacts: []string{
		"Day 1: Atherosclerosis begins when LDL cholesterol penetrates artery walls, triggering inflammation.",
		"Day 2: HDL cholesterol acts like a vacuum cleaner, removing cholesterol from arteries.",
		"Day 3: Plaque buildup can reduce blood flow by 75% before symptoms appear.",
		"Day 4: Every 10% reduction in LDL lowers heart attack risk by 20%.",
		"Day 5: Exercise increases HDL and improves endothelial function within weeks.",
		"Day 6: Omega-3 fatty acids reduce inflammation that drives plaque formation.",
		"Day 7: Soluble fiber binds cholesterol in digestive tract, preventing absorption.",
	},
	WarningSigns: []string{
		"Chest discomfort or pressure",
		"Shortness of breath with exertion",
		"Jaw, neck, or arm pain",
		"Severe fatigue",
		"Dizziness or lightheadedness",
	},
	EmergencyNote: "Call emergency services immediately if experiencing chest pain or breathing difficulty.",
}

// offset is a calendar offset: whole months first, then days.
type offset struct {
	Months int
	Days   int
}

// from applies the offset to t. A day that does not exist in the target
// month is clamped to that month's last day, so Nov 30 plus three months is
// Feb 28 rather than Mar 2.
func (o offset) from(t time.Time) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(o.Months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1+o.Days)
}

type followUp struct {
	After offset
	Type  string
}

type checkupPlan struct {
	Note      string
	FollowUps []followUp
}

var checkupsByLevel = map[domain.RiskLevel]checkupPlan{
	domain.RiskUrgent: {
		Note: "Physician visit within 24-48 hours",
		FollowUps: []followUp{
			{After: offset{Days: 14}, Type: "Medication review"},
			{After: offset{Days: 42}, Type: "Lipid re-test"},
			{After: offset{Days: 84}, Type: "Comprehensive assessment"},
		},
	},
	domain.RiskHigh: {
		Note: "Schedule appointment within 1-2 weeks",
		FollowUps: []followUp{
			{After: offset{Days: 56}, Type: "Lifestyle progress check"},
			{After: offset{Days: 84}, Type: "Repeat lipid panel"},
			{After: offset{Months: 6}, Type: "Full cardiovascular assessment"},
		},
	},
	domain.RiskMedium: {
		Note: "Physician review within 1 month",
		FollowUps: []followUp{
			{After: offset{Months: 3}, Type: "Lipid re-check"},
			{After: offset{Months: 6}, Type: "Progress evaluation"},
		},
	},
	domain.RiskLow: {
		Note: "Annual checkup",
		FollowUps: []followUp{
			{After: offset{Months: 12}, Type: "Routine lipid screening"},
		},
	},
}
