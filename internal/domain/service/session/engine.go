package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/schema"
	"NamelessFormsBot/internal/domain/service/validate"
)

var allowedImageExtensions = []string{".png", ".jpg", ".jpeg"}

// Engine drives form sessions forward: it asks questions, validates
// answers arriving over the three input channels, and submits the
// finished form. Every mutation of a session happens under that
// session's lock, so a stray duplicate message, a marker tap and a
// sweep can race without corrupting state; different users never
// contend with each other.
type Engine struct {
	store     *Store
	api       repository.FormsAPI
	archive   repository.SubmissionLog
	transport Transport
	files     FileFetcher
	log       *zap.Logger

	now     func() time.Time
	timeout time.Duration
}

func NewEngine(store *Store, api repository.FormsAPI, archive repository.SubmissionLog, transport Transport, files FileFetcher, log *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		api:       api,
		archive:   archive,
		transport: transport,
		files:     files,
		log:       log,
		now:       time.Now,
		timeout:   sessionTimeout,
	}
}

// Start opens a session for the user and asks the first question. The
// form snapshot is immutable for the life of the session. A form the
// transport cannot carry (file fields without file support, a choice
// field with more options than there are markers) is rejected before
// any session exists, so the caller can tell the user in place.
func (e *Engine) Start(ctx context.Context, guildID int64, form schema.Form, userID, dmChat int64) error {
	if form.HasFileFields() && !e.transport.SupportsFileUploads() {
		return errorz.ErrFileFieldsUnsupported
	}
	for _, field := range form.Fields {
		if field.Class() == schema.ClassChoice && len(field.Options) > MaxOptions {
			return fmt.Errorf("%w: field %q has %d options", errorz.ErrTooManyOptions, field.Name, len(field.Options))
		}
	}

	s := newSession(guildID, form, userID, dmChat, e.now())
	if old := e.store.Put(s); old != nil {
		old.mu.Lock()
		old.closed = true
		old.mu.Unlock()
		e.log.Info("replaced in-flight session",
			zap.Int64("user", userID),
			zap.Int64("old_form", old.Form.ID),
			zap.Int64("new_form", form.ID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.askQuestion(ctx, s)
	return nil
}

// Active reports whether the user has a session in flight. The input
// router uses it to decide whether a private message belongs to the
// engine at all.
func (e *Engine) Active(userID int64) bool {
	return e.store.Active(userID)
}

// HandleText processes a typed answer for the user's current question.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) {
	s := e.lockSession(userID)
	if s == nil {
		return
	}
	defer s.mu.Unlock()

	field, ok := s.currentField()
	if !ok {
		return
	}

	switch field.Class() {
	case schema.ClassFile:
		e.rejectAnswer(ctx, s, "This question must be answered with a file attachment.")
		return
	case schema.ClassChoice:
		e.rejectAnswer(ctx, s, "Use the option markers under the question and confirm with "+ConfirmMarker+".")
		return
	}

	if errs := validate.FreeText(field, text); len(errs) > 0 {
		e.reportValidationErrors(ctx, s, errs)
		return
	}
	e.accept(ctx, s, schema.TextAnswer(text))
}

// HandleChoice processes a completed option selection for the user's
// current question.
func (e *Engine) HandleChoice(ctx context.Context, userID int64, choices []string) {
	s := e.lockSession(userID)
	if s == nil {
		return
	}
	defer s.mu.Unlock()

	field, ok := s.currentField()
	if !ok {
		return
	}
	e.acceptChoice(ctx, s, field, choices)
}

// HandleReaction processes one marker applied to a question prompt.
// questionNumber is the number embedded in the prompt the marker was
// applied to; anything that does not match the session's current
// question is a leftover from an earlier prompt and is dropped.
func (e *Engine) HandleReaction(ctx context.Context, userID int64, questionNumber int, marker string) {
	s := e.lockSession(userID)
	if s == nil {
		return
	}
	defer s.mu.Unlock()

	if questionNumber != s.QuestionNumber+1 {
		e.log.Debug("marker on stale prompt ignored",
			zap.Int64("user", userID),
			zap.Int("prompt", questionNumber),
			zap.Int("current", s.QuestionNumber+1))
		return
	}

	field, ok := s.currentField()
	if !ok || field.Class() != schema.ClassChoice {
		return
	}

	if marker == ConfirmMarker {
		e.acceptChoice(ctx, s, field, s.selectedOptions(field.Options))
		return
	}

	idx := IndexForMarker(marker)
	if idx < 1 || idx > len(field.Options) {
		return
	}
	s.toggleMarker(idx)
}

// HandleFile processes attachments sent for the user's current
// question. Anything that cannot become an answer re-prompts the same
// question without consuming the turn.
func (e *Engine) HandleFile(ctx context.Context, userID int64, atts []Attachment) {
	s := e.lockSession(userID)
	if s == nil {
		return
	}
	defer s.mu.Unlock()

	field, ok := s.currentField()
	if !ok {
		return
	}
	if field.Class() != schema.ClassFile {
		e.rejectAnswer(ctx, s, "You cannot attach files to this question!")
		return
	}
	if len(atts) == 0 {
		return
	}
	if len(atts) > 1 {
		e.rejectAnswer(ctx, s, "You can only attach one file!")
		return
	}

	att := atts[0]
	if !allowedExtension(att.Name) {
		e.rejectAnswer(ctx, s, "The file was not ending with the correct extensions. The allowed extensions are: "+strings.Join(allowedImageExtensions, ", "))
		return
	}

	contentType, data, err := e.files.Fetch(ctx, att)
	if err != nil {
		e.log.Error("retrieve attachment", zap.Int64("user", userID), zap.Error(err))
		e.rejectAnswer(ctx, s, "Something went wrong while retrieving your file. Please send it again.")
		return
	}

	encoded := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	e.accept(ctx, s, schema.TextAnswer(encoded))
}

func (e *Engine) acceptChoice(ctx context.Context, s *Session, field schema.Field, choices []string) {
	if errs := validate.Choice(field, choices); len(errs) > 0 {
		e.reportValidationErrors(ctx, s, errs)
		return
	}
	e.accept(ctx, s, schema.ChoiceAnswer(choices))
}

// accept stores the answer for the current field and moves on; when the
// cursor runs out of fields this flows straight into submission.
func (e *Engine) accept(ctx context.Context, s *Session, value schema.AnswerValue) {
	field := s.Form.Fields[s.Cursor]
	s.Answers[field.ID] = value
	s.Cursor++
	s.QuestionNumber++
	e.askQuestion(ctx, s)
}

// askQuestion presents the field under the cursor, skipping over
// non-question fields without counting them. Called with s.mu held.
func (e *Engine) askQuestion(ctx context.Context, s *Session) {
	for {
		field, ok := s.currentField()
		if !ok {
			e.submit(ctx, s)
			return
		}
		if field.IsQuestion() {
			break
		}
		s.Cursor++
	}

	s.resetSelection()
	field, _ := s.currentField()
	prompt := buildPrompt(field, s.QuestionNumber+1)

	ref, err := e.transport.SendPrompt(ctx, s.DMChat, prompt)
	if err != nil {
		e.log.Error("send prompt", zap.Int64("user", s.User), zap.Error(err))
		return
	}
	if len(prompt.Markers) > 0 {
		if err := e.transport.AddChoiceMarkers(ctx, s.DMChat, ref, prompt); err != nil {
			e.log.Error("attach choice markers", zap.Int64("user", s.User), zap.Error(err))
		}
	}
}

// submit sends the collected answers to the forms API and retires the
// session. Submission happens at most once; whatever the outcome, the
// session is gone afterwards.
func (e *Engine) submit(ctx context.Context, s *Session) {
	actor := ""
	if _, linked, err := e.api.LinkedUser(ctx, s.GuildID, s.User); err != nil {
		e.log.Warn("linked user lookup", zap.Int64("user", s.User), zap.Error(err))
	} else if linked {
		actor = strconv.FormatInt(s.User, 10)
	}

	res, err := e.api.Submit(ctx, s.GuildID, s.Form.ID, s.Answers, actor)
	switch {
	case err == nil:
		text := "✅ Form submitted!"
		if res.Link != "" {
			text += "\n" + res.Link
		}
		_ = e.transport.SendMessage(ctx, s.DMChat, text)
		e.recordSubmission(ctx, s, res)
	default:
		var apiErr *schema.SubmitError
		if errors.As(err, &apiErr) {
			detail := apiErr.Message
			if len(apiErr.Meta) > 0 {
				detail = strings.Join(apiErr.Meta, "\n")
			}
			_ = e.transport.SendMessage(ctx, s.DMChat, "❌ An error occurred while submitting your form:\n\n"+detail)
		} else {
			e.log.Error("submit form", zap.Int64("user", s.User), zap.Int64("form", s.Form.ID), zap.Error(err))
			_ = e.transport.SendMessage(ctx, s.DMChat, "❌ An error occurred while submitting your form. Please try again later.")
		}
	}

	s.closed = true
	e.store.Delete(s)
}

func (e *Engine) recordSubmission(ctx context.Context, s *Session, res schema.SubmitResult) {
	if e.archive == nil {
		return
	}
	rec := schema.SubmissionRecord{
		GuildID:      s.GuildID,
		UserID:       s.User,
		FormID:       s.Form.ID,
		FormTitle:    s.Form.Title,
		SubmissionID: res.SubmissionID,
		SubmittedAt:  e.now(),
	}
	if err := e.archive.Record(ctx, rec); err != nil {
		e.log.Warn("archive submission", zap.Int64("user", s.User), zap.Error(err))
	}
}

// rejectAnswer tells the user why their input was not taken and asks
// the same question again.
func (e *Engine) rejectAnswer(ctx context.Context, s *Session, reason string) {
	_ = e.transport.SendMessage(ctx, s.DMChat, reason)
	e.askQuestion(ctx, s)
}

func (e *Engine) reportValidationErrors(ctx context.Context, s *Session, errs []string) {
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, "The following errors occurred during the verification of your answer:")
	for _, msg := range errs {
		lines = append(lines, "• "+msg)
	}
	_ = e.transport.SendMessage(ctx, s.DMChat, strings.Join(lines, "\n"))
	e.askQuestion(ctx, s)
}

// lockSession looks the user's session up and locks it. Events without
// a matching live session are anomalies (a stray message, a handler
// that raced an expiry), logged but never surfaced to the user.
func (e *Engine) lockSession(userID int64) *Session {
	s := e.store.Get(userID)
	if s == nil {
		e.log.Warn("no session found for user", zap.Int64("user", userID))
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		e.log.Warn("event for closed session dropped", zap.Int64("user", userID))
		return nil
	}
	return s
}

func allowedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range allowedImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
