package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerValue is unanswered, a select option, or a boolean. The zero value is
// unanswered.
type AnswerValue struct {
	kind Kind
	text string
	flag bool
}

// Unanswered returns the unanswered sentinel.
func Unanswered() AnswerValue {
	return AnswerValue{}
}

// SelectAnswer wraps a select option.
func SelectAnswer(option string) AnswerValue {
	return AnswerValue{kind: KindSelect, text: option}
}

// BooleanAnswer wraps a yes/no answer.
func BooleanAnswer(b bool) AnswerValue {
	return AnswerValue{kind: KindBoolean, flag: b}
}

// Kind returns the variant; empty when unanswered.
func (v AnswerValue) Kind() Kind { return v.kind }

// IsAnswered reports whether the value is not the unanswered sentinel.
func (v AnswerValue) IsAnswered() bool { return v.kind != "" }

// Text returns the select option, or "" for other variants.
func (v AnswerValue) Text() string {
	if v.kind != KindSelect {
		return ""
	}
	return v.text
}

// Bool returns the boolean answer; unanswered and select values are false.
func (v AnswerValue) Bool() bool {
	return v.kind == KindBoolean && v.flag
}

func (v AnswerValue) String() string {
	switch v.kind {
	case KindSelect:
		return v.text
	case KindBoolean:
		if v.flag {
			return "yes"
		}
		return "no"
	default:
		return "<unanswered>"
	}
}

// MarshalJSON encodes unanswered as null, select as a string and boolean as a bool.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindSelect:
		return json.Marshal(v.text)
	case KindBoolean:
		return json.Marshal(v.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAnswerValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseAnswerValue decodes a raw JSON scalar into an AnswerValue.
func ParseAnswerValue(raw []byte) (AnswerValue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Unanswered(), nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return AnswerValue{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return SelectAnswer(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return AnswerValue{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		return BooleanAnswer(b), nil
	default:
		return AnswerValue{}, fmt.Errorf("%w: expected string, boolean or null", ErrInvalidAnswer)
	}
}

// AnswerRecord maps every catalog question to its recorded answer.
type AnswerRecord map[QuestionID]AnswerValue

// NewAnswerRecord returns a record with every catalog question unanswered.
func NewAnswerRecord(c *Catalog) AnswerRecord {
	rec := make(AnswerRecord, c.Len())
	for _, id := range c.IDs() {
		rec[id] = Unanswered()
	}
	return rec
}

// Get returns the answer for id; missing keys read as unanswered.
func (r AnswerRecord) Get(id QuestionID) AnswerValue {
	return r[id]
}

// Text is shorthand for r.Get(id).Text().
func (r AnswerRecord) Text(id QuestionID) string {
	return r.Get(id).Text()
}

// Bool is shorthand for r.Get(id).Bool().
func (r AnswerRecord) Bool(id QuestionID) bool {
	return r.Get(id).Bool()
}

// Clone returns a copy safe to hand out.
func (r AnswerRecord) Clone() AnswerRecord {
	out := make(AnswerRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Validate checks that the record covers exactly the catalog and that every
// answered entry is legal for its question.
func (r AnswerRecord) Validate(c *Catalog) error {
	if len(r) != c.Len() {
		return fmt.Errorf("%w: record has %d entries, catalog has %d", ErrInvalidState, len(r), c.Len())
	}
	for id, v := range r {
		q, ok := c.Lookup(id)
		if !ok {
			return fmt.Errorf("%w: unknown question %q", ErrInvalidState, id)
		}
		if v.IsAnswered() && !q.Accepts(v) {
			return fmt.Errorf("%w: %q cannot hold %s", ErrInvalidAnswer, id, v)
		}
	}
	return nil
}
