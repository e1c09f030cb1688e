package assessment

import "fmt"

// Session walks one user through the catalog. It is not safe for concurrent
// use; the owner serialises calls.
type Session struct {
	catalog  *Catalog
	position int
	answers  AnswerRecord
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	Position  int          `json:"position"`
	Completed bool         `json:"completed"`
	Answers   AnswerRecord `json:"answers"`
}

// NewSession starts at the first question with every answer unanswered.
func NewSession(c *Catalog) *Session {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Session{
		catalog: c,
		answers: NewAnswerRecord(c),
	}
}

// Restore rebuilds a session from persisted state.
func Restore(c *Catalog, position int, answers AnswerRecord) (*Session, error) {
	if c == nil {
		c = DefaultCatalog()
	}
	if position < 0 || position > c.Len() {
		return nil, fmt.Errorf("%w: position %d not in [0,%d]", ErrOutOfRange, position, c.Len())
	}
	rec := NewAnswerRecord(c)
	for id, v := range answers {
		rec[id] = v
	}
	if err := rec.Validate(c); err != nil {
		return nil, err
	}
	return &Session{catalog: c, position: position, answers: rec}, nil
}

// Catalog returns the catalog driving the session.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Position is the index of the current question, or Len() once completed.
func (s *Session) Position() int { return s.position }

// Completed reports whether every question has been answered in sequence.
func (s *Session) Completed() bool { return s.position == s.catalog.Len() }

// CanGoBack reports whether GoBack would succeed.
func (s *Session) CanGoBack() bool {
	return !s.Completed() && s.position > 0
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (Question, error) {
	if s.Completed() {
		return Question{}, fmt.Errorf("%w: session completed", ErrInvalidState)
	}
	return s.catalog.Get(s.position)
}

// SubmitAnswer records v for the current question and advances. The session
// is left untouched when v is rejected.
func (s *Session) SubmitAnswer(v AnswerValue) error {
	q, err := s.CurrentQuestion()
	if err != nil {
		return err
	}
	if !q.Accepts(v) {
		return fmt.Errorf("%w: %s is not valid for %q", ErrInvalidAnswer, v, q.ID)
	}
	s.answers[q.ID] = v
	s.position++
	return nil
}

// GoBack moves to the previous question. The answer for the question being
// left is kept.
func (s *Session) GoBack() error {
	if s.Completed() {
		return fmt.Errorf("%w: session completed", ErrInvalidTransition)
	}
	if s.position == 0 {
		return fmt.Errorf("%w: already at first question", ErrInvalidTransition)
	}
	s.position--
	return nil
}

// Reset starts over with a fresh answer record.
func (s *Session) Reset() {
	s.position = 0
	s.answers = NewAnswerRecord(s.catalog)
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Position:  s.position,
		Completed: s.Completed(),
		Answers:   s.answers.Clone(),
	}
}
