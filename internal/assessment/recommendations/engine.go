package recommendations

import "coverage-backend/internal/assessment"

// Evaluate derives recommendations from a completed answer record. Unanswered
// entries never satisfy a boolean trigger, and an unanswered employee count or
// revenue band compares unequal to the smallest band.
func Evaluate(answers assessment.AnswerRecord) []Recommendation {
	out := make([]Recommendation, 0, len(rules))
	for _, r := range rules {
		if !r.applies(answers) {
			continue
		}
		rec := r.rec
		rec.Order = len(out) + 1
		out = append(out, rec)
	}
	return out
}

// Names returns the product names in order.
func Names(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Name)
	}
	return out
}
