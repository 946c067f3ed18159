package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Form is an immutable snapshot of one remote form. It is fetched once
// when a session starts and never re-fetched mid-session.
type Form struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// HasFileFields reports whether any field expects a file answer.
func (f Form) HasFileFields() bool {
	for _, field := range f.Fields {
		if field.Class() == ClassFile {
			return true
		}
	}
	return false
}

// AnswerValue is the union an answer map holds per field id: a single
// string or an ordered list of selected options. It marshals to the raw
// string or array the submission endpoint expects.
type AnswerValue struct {
	text  string
	list  []string
	multi bool
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{text: s}
}

func ChoiceAnswer(options []string) AnswerValue {
	return AnswerValue{list: options, multi: true}
}

func (v AnswerValue) Multi() bool { return v.multi }

func (v AnswerValue) Text() string { return v.text }

func (v AnswerValue) Choices() []string { return v.list }

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.text)
}

// APICredentials is a guild's forms API endpoint and key.
type APICredentials struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// BaseURL returns the endpoint with a guaranteed trailing slash.
func (c APICredentials) BaseURL() string {
	if strings.HasSuffix(c.URL, "/") {
		return c.URL
	}
	return c.URL + "/"
}

// SubmitResult is the API's acknowledgement of a created submission.
type SubmitResult struct {
	SubmissionID int64  `json:"submission_id"`
	Link         string `json:"link"`
}

// SubmitError is the structured error body the submission endpoint
// returns instead of a result.
type SubmitError struct {
	Message string   `json:"error"`
	Meta    []string `json:"meta"`
}

func (e *SubmitError) Error() string {
	if len(e.Meta) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Meta, "; "))
	}
	return e.Message
}

// LinkedUser is a chat user's linked website account.
type LinkedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SubmissionRecord is one archived submission.
type SubmissionRecord struct {
	ID           int64
	GuildID      int64
	UserID       int64
	FormID       int64
	FormTitle    string
	SubmissionID int64
	SubmittedAt  time.Time
}
