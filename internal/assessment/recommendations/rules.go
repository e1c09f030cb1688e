package recommendations

import "coverage-backend/internal/assessment"

const (
	employeesSmallest = "1-10"
	revenueSmallest   = "Under $1M"
)

var (
	professionalIndustries = []string{"Technology/SaaS", "Professional Services", "Financial Services"}
	dataHeavyIndustries    = []string{"Technology/SaaS", "Healthcare", "Financial Services", "E-commerce/Retail"}
)

type rule struct {
	rec     Recommendation
	applies func(assessment.AnswerRecord) bool
}

// rules are evaluated independently; output order is slice order.
var rules = []rule{
	{
		rec: Recommendation{
			ID:        "GENERAL_LIABILITY",
			Name:      "General Liability Insurance",
			Priority:  PriorityEssential,
			Rationale: "Protects against claims of bodily injury, property damage, and advertising injury. Required by most commercial leases and client contracts.",
		},
		applies: func(assessment.AnswerRecord) bool { return true },
	},
	{
		rec: Recommendation{
			ID:        "WORKERS_COMPENSATION",
			Name:      "Workers Compensation Insurance",
			Priority:  PriorityEssential,
			Rationale: "Required by law in most states when you have employees. Covers medical costs and lost wages for work-related injuries.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Text(assessment.QuestionEmployees) != employeesSmallest || a.Bool(assessment.QuestionHasPhysicalLocation)
		},
	},
	{
		rec: Recommendation{
			ID:        "PROFESSIONAL_LIABILITY",
			Name:      "Professional Liability Insurance (E&O)",
			Priority:  PriorityEssential,
			Rationale: "Protects against claims of negligence, errors, or failure to deliver promised services. Critical for service-based businesses.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Bool(assessment.QuestionProvidesAdvice) || industryIn(a, professionalIndustries)
		},
	},
	{
		rec: Recommendation{
			ID:        "CYBER_LIABILITY",
			Name:      "Cyber Liability Insurance",
			Priority:  PriorityHighlyRecommended,
			Rationale: "Covers data breaches, ransomware attacks, and regulatory fines. Essential for any business handling customer data.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Bool(assessment.QuestionHandlesCustomerData) || industryIn(a, dataHeavyIndustries)
		},
	},
	{
		rec: Recommendation{
			ID:        "DIRECTORS_AND_OFFICERS",
			Name:      "Directors & Officers (D&O) Insurance",
			Priority:  PriorityHighlyRecommended,
			Rationale: "Protects company leadership from personal liability for business decisions. Important for attracting board members and investors.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Bool(assessment.QuestionHasBoard) || a.Text(assessment.QuestionRevenue) != revenueSmallest
		},
	},
	{
		rec: Recommendation{
			ID:        "COMMERCIAL_PROPERTY",
			Name:      "Commercial Property Insurance",
			Priority:  PriorityRecommended,
			Rationale: "Covers damage to your building, equipment, and inventory from fire, theft, or natural disasters.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Bool(assessment.QuestionHasPhysicalLocation)
		},
	},
	{
		rec: Recommendation{
			ID:        "BUSINESS_INTERRUPTION",
			Name:      "Business Interruption Insurance",
			Priority:  PriorityRecommended,
			Rationale: "Covers lost income and operating expenses if your business is forced to close temporarily due to a covered event.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Text(assessment.QuestionRevenue) != revenueSmallest && a.Bool(assessment.QuestionHasPhysicalLocation)
		},
	},
	{
		rec: Recommendation{
			ID:        "COMMERCIAL_AUTO",
			Name:      "Commercial Auto Insurance",
			Priority:  PriorityEssential,
			Rationale: "Required by law if your business owns vehicles. Covers accidents involving company vehicles.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Bool(assessment.QuestionHasVehicles)
		},
	},
	{
		rec: Recommendation{
			ID:        "EMPLOYMENT_PRACTICES_LIABILITY",
			Name:      "Employment Practices Liability (EPLI)",
			Priority:  PriorityRecommended,
			Rationale: "Protects against claims of discrimination, wrongful termination, and harassment by employees.",
		},
		applies: func(a assessment.AnswerRecord) bool {
			return a.Text(assessment.QuestionEmployees) != employeesSmallest
		},
	},
}

func industryIn(a assessment.AnswerRecord, industries []string) bool {
	industry := a.Text(assessment.QuestionIndustry)
	for _, candidate := range industries {
		if industry == candidate {
			return true
		}
	}
	return false
}
