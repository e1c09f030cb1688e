package assessment

import "fmt"

// QuestionID identifies a question in the catalog.
type QuestionID string

const (
	QuestionIndustry            QuestionID = "industry"
	QuestionEmployees           QuestionID = "employees"
	QuestionRevenue             QuestionID = "revenue"
	QuestionHasPhysicalLocation QuestionID = "hasPhysicalLocation"
	QuestionHandlesCustomerData QuestionID = "handlesCustomerData"
	QuestionHasBoard            QuestionID = "hasBoard"
	QuestionProvidesAdvice      QuestionID = "providesAdvice"
	QuestionHasVehicles         QuestionID = "hasVehicles"
)

// Kind is the answer shape a question accepts.
type Kind string

const (
	KindSelect  Kind = "select"
	KindBoolean Kind = "boolean"
)

// Question is an immutable catalog entry.
type Question struct {
	ID      QuestionID `json:"id"`
	Prompt  string     `json:"prompt"`
	Kind    Kind       `json:"kind"`
	Options []string   `json:"options,omitempty"`
}

// HasOption reports whether value is one of the question's select options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Accepts reports whether v is a legal answer for the question.
func (q Question) Accepts(v AnswerValue) bool {
	switch q.Kind {
	case KindSelect:
		return v.Kind() == KindSelect && q.HasOption(v.Text())
	case KindBoolean:
		return v.Kind() == KindBoolean
	default:
		return false
	}
}

func (q Question) clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	return out
}

// Catalog is an ordered, read-only sequence of questions.
type Catalog struct {
	questions []Question
	index     map[QuestionID]int
}

// NewCatalog validates the questions and builds a catalog from them.
func NewCatalog(questions []Question) (*Catalog, error) {
	c := &Catalog{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[QuestionID]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: id is required", i)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("question %d: duplicate id %q", i, q.ID)
		}
		switch q.Kind {
		case KindSelect:
			if len(q.Options) == 0 {
				return nil, fmt.Errorf("question %q: select requires options", q.ID)
			}
			seen := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				if seen[opt] {
					return nil, fmt.Errorf("question %q: duplicate option %q", q.ID, opt)
				}
				seen[opt] = true
			}
		case KindBoolean:
			if len(q.Options) != 0 {
				return nil, fmt.Errorf("question %q: boolean takes no options", q.ID)
			}
		default:
			return nil, fmt.Errorf("question %q: unknown kind %q", q.ID, q.Kind)
		}
		c.index[q.ID] = i
		c.questions = append(c.questions, q.clone())
	}
	return c, nil
}

// Get returns the question at index.
func (c *Catalog) Get(index int) (Question, error) {
	if index < 0 || index >= len(c.questions) {
		return Question{}, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, len(c.questions))
	}
	return c.questions[index].clone(), nil
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Lookup returns the question with the given id.
func (c *Catalog) Lookup(id QuestionID) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i].clone(), true
}

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []Question {
	out := make([]Question, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, q.clone())
	}
	return out
}

// IDs returns question ids in catalog order.
func (c *Catalog) IDs() []QuestionID {
	out := make([]QuestionID, 0, len(c.questions))
	for _, q := range c.questions {
		out = append(out, q.ID)
	}
	return out
}

var defaultCatalog = mustCatalog([]Question{
	{
		ID:     QuestionIndustry,
		Prompt: "What industry is your company in?",
		Kind:   KindSelect,
		Options: []string{
			"Technology/SaaS",
			"Professional Services",
			"E-commerce/Retail",
			"Healthcare",
			"Financial Services",
			"Manufacturing",
			"Construction",
			"Food & Beverage",
			"Other",
		},
	},
	{
		ID:      QuestionEmployees,
		Prompt:  "How many employees do you have?",
		Kind:    KindSelect,
		Options: []string{"1-10", "11-50", "51-200", "201-500", "500+"},
	},
	{
		ID:      QuestionRevenue,
		Prompt:  "What is your annual revenue?",
		Kind:    KindSelect,
		Options: []string{"Under $1M", "$1M-$5M", "$5M-$10M", "$10M-$50M", "Over $50M"},
	},
	{ID: QuestionHasPhysicalLocation, Prompt: "Do you have a physical office or storefront?", Kind: KindBoolean},
	{ID: QuestionHandlesCustomerData, Prompt: "Do you collect or store customer data?", Kind: KindBoolean},
	{ID: QuestionHasBoard, Prompt: "Do you have a board of directors or outside investors?", Kind: KindBoolean},
	{ID: QuestionProvidesAdvice, Prompt: "Do you provide professional advice or services to clients?", Kind: KindBoolean},
	{ID: QuestionHasVehicles, Prompt: "Does your business own or use vehicles?", Kind: KindBoolean},
})

// DefaultCatalog returns the business-profile questionnaire.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func mustCatalog(questions []Question) *Catalog {
	c, err := NewCatalog(questions)
	if err != nil {
		panic(err)
	}
	return c
}
