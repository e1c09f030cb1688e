package recommendations

// Priority labels a recommendation tier. Tiers carry no numeric weight.
type Priority string

const (
	PriorityEssential         Priority = "Essential"
	PriorityHighlyRecommended Priority = "Highly Recommended"
	PriorityRecommended       Priority = "Recommended"
)

// Recommendation is an insurance product suggested for a business profile.
type Recommendation struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Priority  Priority `json:"priority"`
	Rationale string   `json:"rationale"`
	Order     int      `json:"order"`
}

// Results page copy shown around the recommendation list.
const (
	Intro      = "Based on your responses, here are the insurance policies we recommend for your business:"
	Disclaimer = "This assessment provides general guidance only. Every business is unique, and your specific needs may vary. Consult with an insurance professional for personalized advice."
)
