package assessment

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAnswerValue(t *testing.T) {
	cases := []struct {
		raw  string
		want AnswerValue
	}{
		{raw: `null`, want: Unanswered()},
		{raw: ``, want: Unanswered()},
		{raw: `"11-50"`, want: SelectAnswer("11-50")},
		{raw: `true`, want: BooleanAnswer(true)},
		{raw: ` false `, want: BooleanAnswer(false)},
	}
	for _, tc := range cases {
		got, err := ParseAnswerValue([]byte(tc.raw))
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %v, want %v", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{`1`, `["a"]`, `{"a":1}`, `tru`} {
		if _, err := ParseAnswerValue([]byte(raw)); !errors.Is(err, ErrInvalidAnswer) {
			t.Fatalf("parse %q: expected ErrInvalidAnswer, got %v", raw, err)
		}
	}
}

func TestAnswerRecordJSON(t *testing.T) {
	rec := NewAnswerRecord(DefaultCatalog())
	rec[QuestionIndustry] = SelectAnswer("Healthcare")
	rec[QuestionHasBoard] = BooleanAnswer(false)

	payload, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded AnswerRecord
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != DefaultCatalog().Len() {
		t.Fatalf("expected %d entries, got %d", DefaultCatalog().Len(), len(decoded))
	}
	if decoded[QuestionIndustry] != SelectAnswer("Healthcare") {
		t.Fatalf("unexpected industry %v", decoded[QuestionIndustry])
	}
	if decoded[QuestionHasBoard] != BooleanAnswer(false) {
		t.Fatalf("unexpected hasBoard %v", decoded[QuestionHasBoard])
	}
	if decoded[QuestionHasVehicles].IsAnswered() {
		t.Fatalf("expected hasVehicles unanswered")
	}
}

func TestAnswerAccessorsOnUnanswered(t *testing.T) {
	var v AnswerValue
	if v.IsAnswered() || v.Bool() || v.Text() != "" {
		t.Fatalf("zero value should read as unanswered")
	}
	if BooleanAnswer(true).Text() != "" {
		t.Fatalf("boolean answer should have no text")
	}
	if SelectAnswer("x").Bool() {
		t.Fatalf("select answer should not read as true")
	}
}
