package recommendations

import (
	"reflect"
	"testing"

	"coverage-backend/internal/assessment"
)

func fullRecord(t *testing.T, values map[assessment.QuestionID]assessment.AnswerValue) assessment.AnswerRecord {
	t.Helper()
	rec := assessment.NewAnswerRecord(assessment.DefaultCatalog())
	for id, v := range values {
		rec[id] = v
	}
	return rec
}

func TestEvaluateDeterminism(t *testing.T) {
	rec := fullRecord(t, map[assessment.QuestionID]assessment.AnswerValue{
		assessment.QuestionIndustry:            assessment.SelectAnswer("Healthcare"),
		assessment.QuestionEmployees:           assessment.SelectAnswer("51-200"),
		assessment.QuestionRevenue:             assessment.SelectAnswer("$5M-$10M"),
		assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(true),
	})

	first := Evaluate(rec)
	second := Evaluate(rec)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic recommendations")
	}
}

func TestEvaluateSmallestProfileOnlyGeneralLiability(t *testing.T) {
	rec := fullRecord(t, map[assessment.QuestionID]assessment.AnswerValue{
		assessment.QuestionIndustry:            assessment.SelectAnswer("Other"),
		assessment.QuestionEmployees:           assessment.SelectAnswer("1-10"),
		assessment.QuestionRevenue:             assessment.SelectAnswer("Under $1M"),
		assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(false),
		assessment.QuestionHandlesCustomerData: assessment.BooleanAnswer(false),
		assessment.QuestionHasBoard:            assessment.BooleanAnswer(false),
		assessment.QuestionProvidesAdvice:      assessment.BooleanAnswer(false),
		assessment.QuestionHasVehicles:         assessment.BooleanAnswer(false),
	})

	recs := Evaluate(rec)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %v", Names(recs))
	}
	if recs[0].Name != "General Liability Insurance" || recs[0].Priority != PriorityEssential {
		t.Fatalf("unexpected recommendation %+v", recs[0])
	}
	if recs[0].Order != 1 {
		t.Fatalf("expected order 1, got %d", recs[0].Order)
	}
}

func TestEvaluateEverythingFires(t *testing.T) {
	rec := fullRecord(t, map[assessment.QuestionID]assessment.AnswerValue{
		assessment.QuestionIndustry:            assessment.SelectAnswer("Technology/SaaS"),
		assessment.QuestionEmployees:           assessment.SelectAnswer("11-50"),
		assessment.QuestionRevenue:             assessment.SelectAnswer("$1M-$5M"),
		assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(true),
		assessment.QuestionHandlesCustomerData: assessment.BooleanAnswer(true),
		assessment.QuestionHasBoard:            assessment.BooleanAnswer(true),
		assessment.QuestionProvidesAdvice:      assessment.BooleanAnswer(true),
		assessment.QuestionHasVehicles:         assessment.BooleanAnswer(true),
	})

	want := []string{
		"General Liability Insurance",
		"Workers Compensation Insurance",
		"Professional Liability Insurance (E&O)",
		"Cyber Liability Insurance",
		"Directors & Officers (D&O) Insurance",
		"Commercial Property Insurance",
		"Business Interruption Insurance",
		"Commercial Auto Insurance",
		"Employment Practices Liability (EPLI)",
	}
	recs := Evaluate(rec)
	if got := Names(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected recommendations:\n got %v\nwant %v", got, want)
	}
	for i, r := range recs {
		if r.Order != i+1 {
			t.Fatalf("expected order %d, got %d", i+1, r.Order)
		}
		if r.Rationale == "" {
			t.Fatalf("missing rationale for %s", r.Name)
		}
	}
}

func TestEvaluateUnansweredBandsCountAsLarger(t *testing.T) {
	recs := Evaluate(assessment.NewAnswerRecord(assessment.DefaultCatalog()))
	want := []string{
		"General Liability Insurance",
		"Workers Compensation Insurance",
		"Directors & Officers (D&O) Insurance",
		"Employment Practices Liability (EPLI)",
	}
	if got := Names(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected recommendations:\n got %v\nwant %v", got, want)
	}
}

func TestEvaluateTriggers(t *testing.T) {
	base := map[assessment.QuestionID]assessment.AnswerValue{
		assessment.QuestionIndustry:            assessment.SelectAnswer("Other"),
		assessment.QuestionEmployees:           assessment.SelectAnswer("1-10"),
		assessment.QuestionRevenue:             assessment.SelectAnswer("Under $1M"),
		assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(false),
		assessment.QuestionHandlesCustomerData: assessment.BooleanAnswer(false),
		assessment.QuestionHasBoard:            assessment.BooleanAnswer(false),
		assessment.QuestionProvidesAdvice:      assessment.BooleanAnswer(false),
		assessment.QuestionHasVehicles:         assessment.BooleanAnswer(false),
	}

	cases := []struct {
		name     string
		override map[assessment.QuestionID]assessment.AnswerValue
		want     []string
	}{
		{
			name:     "physical_location",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(true)},
			want:     []string{"GENERAL_LIABILITY", "WORKERS_COMPENSATION", "COMMERCIAL_PROPERTY"},
		},
		{
			name: "physical_location_and_revenue",
			override: map[assessment.QuestionID]assessment.AnswerValue{
				assessment.QuestionHasPhysicalLocation: assessment.BooleanAnswer(true),
				assessment.QuestionRevenue:             assessment.SelectAnswer("Over $50M"),
			},
			want: []string{"GENERAL_LIABILITY", "WORKERS_COMPENSATION", "DIRECTORS_AND_OFFICERS", "COMMERCIAL_PROPERTY", "BUSINESS_INTERRUPTION"},
		},
		{
			name:     "larger_headcount",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionEmployees: assessment.SelectAnswer("500+")},
			want:     []string{"GENERAL_LIABILITY", "WORKERS_COMPENSATION", "EMPLOYMENT_PRACTICES_LIABILITY"},
		},
		{
			name:     "professional_industry",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionIndustry: assessment.SelectAnswer("Professional Services")},
			want:     []string{"GENERAL_LIABILITY", "PROFESSIONAL_LIABILITY"},
		},
		{
			name:     "data_heavy_industry",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionIndustry: assessment.SelectAnswer("E-commerce/Retail")},
			want:     []string{"GENERAL_LIABILITY", "CYBER_LIABILITY"},
		},
		{
			name:     "financial_services",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionIndustry: assessment.SelectAnswer("Financial Services")},
			want:     []string{"GENERAL_LIABILITY", "PROFESSIONAL_LIABILITY", "CYBER_LIABILITY"},
		},
		{
			name:     "board",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionHasBoard: assessment.BooleanAnswer(true)},
			want:     []string{"GENERAL_LIABILITY", "DIRECTORS_AND_OFFICERS"},
		},
		{
			name:     "vehicles",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionHasVehicles: assessment.BooleanAnswer(true)},
			want:     []string{"GENERAL_LIABILITY", "COMMERCIAL_AUTO"},
		},
		{
			name:     "advice",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionProvidesAdvice: assessment.BooleanAnswer(true)},
			want:     []string{"GENERAL_LIABILITY", "PROFESSIONAL_LIABILITY"},
		},
		{
			name:     "customer_data",
			override: map[assessment.QuestionID]assessment.AnswerValue{assessment.QuestionHandlesCustomerData: assessment.BooleanAnswer(true)},
			want:     []string{"GENERAL_LIABILITY", "CYBER_LIABILITY"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := make(map[assessment.QuestionID]assessment.AnswerValue, len(base))
			for k, v := range base {
				values[k] = v
			}
			for k, v := range tc.override {
				values[k] = v
			}
			recs := Evaluate(fullRecord(t, values))
			got := make([]string, 0, len(recs))
			for _, r := range recs {
				got = append(got, r.ID)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
