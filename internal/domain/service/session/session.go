package session

import (
	"sync"
	"time"

	"NamelessFormsBot/internal/domain/schema"
)

// Session is one user's in-progress walk through a form. It is owned
// by the Store and mutated only with mu held; Cursor points at the
// next field to resolve while QuestionNumber counts the questions
// actually presented (non-question fields are skipped silently and do
// not count).
type Session struct {
	mu sync.Mutex

	User    int64
	DMChat  int64
	GuildID int64

	Form           schema.Form
	Cursor         int
	QuestionNumber int
	Answers        map[string]schema.AnswerValue

	// selected holds the marker indexes toggled on the current choice
	// prompt; reset every time a new question is asked.
	selected map[int]struct{}

	StartedAt time.Time

	// closed marks a session that was submitted, expired or replaced.
	// A handler that raced the removal sees the flag and drops its
	// event instead of resurrecting the session.
	closed bool
}

func newSession(guildID int64, form schema.Form, user, dmChat int64, now time.Time) *Session {
	return &Session{
		User:      user,
		DMChat:    dmChat,
		GuildID:   guildID,
		Form:      form,
		Answers:   make(map[string]schema.AnswerValue),
		selected:  make(map[int]struct{}),
		StartedAt: now,
	}
}

// currentField returns the field under the cursor; ok is false when
// the cursor has run past the end of the form.
func (s *Session) currentField() (schema.Field, bool) {
	if s.Cursor >= len(s.Form.Fields) {
		return schema.Field{}, false
	}
	return s.Form.Fields[s.Cursor], true
}

func (s *Session) toggleMarker(idx int) {
	if _, ok := s.selected[idx]; ok {
		delete(s.selected, idx)
		return
	}
	s.selected[idx] = struct{}{}
}

// selectedOptions maps the toggled markers back to option strings in
// option order. Markers outside the field's option count are ignored.
func (s *Session) selectedOptions(options []string) []string {
	choices := make([]string, 0, len(s.selected))
	for i := range options {
		if _, ok := s.selected[i+1]; ok {
			choices = append(choices, options[i])
		}
	}
	return choices
}

func (s *Session) resetSelection() {
	s.selected = make(map[int]struct{})
}
