package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/schema"
)

type fakeTransport struct {
	mu           sync.Mutex
	messages     []string
	prompts      []Prompt
	markerCalls  []Prompt
	supportFiles bool
	nextID       int
}

func (f *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTransport) SendPrompt(ctx context.Context, chatID int64, p Prompt) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	f.nextID++
	return MessageRef{MessageID: f.nextID}, nil
}

func (f *fakeTransport) AddChoiceMarkers(ctx context.Context, chatID int64, ref MessageRef, p Prompt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markerCalls = append(f.markerCalls, p)
	return nil
}

func (f *fakeTransport) SupportsFileUploads() bool {
	return f.supportFiles
}

func (f *fakeTransport) lastPrompt() Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeTransport) lastMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[len(f.messages)-1]
}

type submitCall struct {
	formID int64
	values map[string]schema.AnswerValue
	actor  string
}

type fakeAPI struct {
	mu        sync.Mutex
	submits   []submitCall
	submitRes schema.SubmitResult
	submitErr error
	linked    bool
}

func (f *fakeAPI) Forms(ctx context.Context, guildID int64) ([]schema.Form, error) {
	return nil, nil
}

func (f *fakeAPI) Form(ctx context.Context, guildID, formID int64) (schema.Form, error) {
	return schema.Form{}, errorz.ErrNotFound
}

func (f *fakeAPI) Submit(ctx context.Context, guildID, formID int64, values map[string]schema.AnswerValue, actor string) (schema.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, submitCall{formID: formID, values: values, actor: actor})
	return f.submitRes, f.submitErr
}

func (f *fakeAPI) LinkedUser(ctx context.Context, guildID, userID int64) (schema.LinkedUser, bool, error) {
	if f.linked {
		return schema.LinkedUser{ID: 7, Username: "linked"}, true, nil
	}
	return schema.LinkedUser{}, false, nil
}

type fakeFetcher struct {
	contentType string
	data        []byte
	err         error
}

func (f *fakeFetcher) Fetch(ctx context.Context, att Attachment) (string, []byte, error) {
	return f.contentType, f.data, f.err
}

type fakeArchive struct {
	mu      sync.Mutex
	records []schema.SubmissionRecord
}

func (f *fakeArchive) Record(ctx context.Context, rec schema.SubmissionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeArchive) RecentByGuild(ctx context.Context, guildID int64, limit int) ([]schema.SubmissionRecord, error) {
	return nil, nil
}

type fixture struct {
	engine    *Engine
	store     *Store
	transport *fakeTransport
	api       *fakeAPI
	fetcher   *fakeFetcher
	archive   *fakeArchive
}

func newFixture() *fixture {
	f := &fixture{
		store:     NewStore(),
		transport: &fakeTransport{supportFiles: true},
		api:       &fakeAPI{},
		fetcher:   &fakeFetcher{contentType: "image/png", data: []byte("png-bytes")},
		archive:   &fakeArchive{},
	}
	f.engine = NewEngine(f.store, f.api, f.archive, f.transport, f.fetcher, zap.NewNop())
	return f
}

func textField(id string, min, max int) schema.Field {
	return schema.Field{ID: id, Name: "Question " + id, Kind: schema.FieldText, Min: min, Max: max}
}

func TestStartAsksFirstRealQuestion(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Welcome", Kind: schema.FieldHelpBox},
		{ID: "b", Name: "Rules", Kind: schema.FieldBarrier},
		textField("c", 0, 0),
	}}

	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	require.Len(t, f.transport.prompts, 1)
	p := f.transport.lastPrompt()
	assert.Equal(t, 1, p.Number)
	assert.Contains(t, p.Body, "Question c")
	assert.True(t, f.engine.Active(42))
}

func TestQuestionNumberSkipsNonQuestions(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		textField("a", 0, 0),
		{ID: "gap1", Kind: schema.FieldHelpBox},
		{ID: "gap2", Kind: schema.FieldBarrier},
		textField("b", 0, 0),
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "first answer")

	require.Len(t, f.transport.prompts, 2)
	assert.Equal(t, 1, f.transport.prompts[0].Number)
	assert.Equal(t, 2, f.transport.prompts[1].Number)
	for _, p := range f.transport.prompts {
		assert.NotContains(t, p.Body, "gap")
	}
}

func TestValidationFailureReasksSameQuestion(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{textField("a", 2, 5)}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "x")

	require.Len(t, f.transport.messages, 1)
	assert.Contains(t, f.transport.messages[0], "• Too short! Minimum length is 2")
	// same question re-asked, nothing accepted
	require.Len(t, f.transport.prompts, 2)
	assert.Equal(t, 1, f.transport.prompts[1].Number)
	s := f.store.Get(42)
	require.NotNil(t, s)
	assert.Zero(t, s.Cursor)
	assert.Empty(t, s.Answers)
}

func TestFullWalkthroughSubmitsOnce(t *testing.T) {
	f := newFixture()
	f.api.submitRes = schema.SubmitResult{SubmissionID: 99, Link: "https://example.com/s/99"}
	form := schema.Form{ID: 5, Title: "Staff application", Fields: []schema.Field{
		textField("field1", 2, 5),
		{ID: "field2", Name: "Pick one", Kind: schema.FieldOptions, Options: []string{"A", "B"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "x")  // rejected, too short
	f.engine.HandleText(context.Background(), 42, "ok") // accepted

	// choice prompt is current; select A and confirm
	choice := f.transport.lastPrompt()
	assert.Equal(t, []string{"1️⃣", "2️⃣"}, choice.Markers)
	require.Len(t, f.transport.markerCalls, 1)
	f.engine.HandleReaction(context.Background(), 42, choice.Number, "1️⃣")
	f.engine.HandleReaction(context.Background(), 42, choice.Number, ConfirmMarker)

	require.Len(t, f.api.submits, 1)
	call := f.api.submits[0]
	assert.Equal(t, int64(5), call.formID)
	assert.Equal(t, schema.TextAnswer("ok"), call.values["field1"])
	assert.Equal(t, schema.ChoiceAnswer([]string{"A"}), call.values["field2"])
	assert.Equal(t, "", call.actor)

	assert.False(t, f.engine.Active(42))
	assert.Contains(t, f.transport.lastMessage(), "✅ Form submitted!")
	assert.Contains(t, f.transport.lastMessage(), "https://example.com/s/99")

	require.Len(t, f.archive.records, 1)
	assert.Equal(t, int64(99), f.archive.records[0].SubmissionID)
	assert.Equal(t, "Staff application", f.archive.records[0].FormTitle)
}

func TestSubmitPassesActorWhenLinked(t *testing.T) {
	f := newFixture()
	f.api.linked = true
	form := schema.Form{ID: 5, Fields: []schema.Field{textField("a", 0, 0)}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "done")

	require.Len(t, f.api.submits, 1)
	assert.Equal(t, "42", f.api.submits[0].actor)
}

func TestSubmitStructuredErrorReported(t *testing.T) {
	f := newFixture()
	f.api.submitErr = &schema.SubmitError{Message: "validation failed", Meta: []string{"Field X is required"}}
	form := schema.Form{ID: 5, Fields: []schema.Field{textField("a", 0, 0)}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "done")

	assert.Contains(t, f.transport.lastMessage(), "❌ An error occurred while submitting your form")
	assert.Contains(t, f.transport.lastMessage(), "Field X is required")
	// closed either way, never retried
	assert.False(t, f.engine.Active(42))
	assert.Empty(t, f.archive.records)

	f.engine.HandleText(context.Background(), 42, "again")
	assert.Len(t, f.api.submits, 1)
}

func TestNoSessionEventIsSilentAnomaly(t *testing.T) {
	f := newFixture()

	f.engine.HandleText(context.Background(), 42, "hello?")
	f.engine.HandleChoice(context.Background(), 42, []string{"A"})
	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)
	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "x.png"}})

	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.transport.messages)
	assert.Empty(t, f.transport.prompts)
}

func TestReactionOnStalePromptIgnored(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "First", Kind: schema.FieldOptions, Options: []string{"A", "B"}},
		{ID: "b", Name: "Second", Kind: schema.FieldOptions, Options: []string{"C", "D"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleReaction(context.Background(), 42, 1, "1️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)
	require.Len(t, f.api.submits, 0)

	// confirm on the old prompt number must not answer question 2
	f.engine.HandleReaction(context.Background(), 42, 1, "1️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)
	s := f.store.Get(42)
	require.NotNil(t, s)
	assert.Equal(t, 1, s.Cursor)
	assert.Len(t, s.Answers, 1)
}

func TestReactionToggleAndOutOfRangeMarkers(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Pick", Kind: schema.FieldCheckbox, Options: []string{"A", "B"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleReaction(context.Background(), 42, 1, "1️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, "2️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, "2️⃣") // toggled off again
	f.engine.HandleReaction(context.Background(), 42, 1, "9️⃣") // outside option count, ignored
	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)

	require.Len(t, f.api.submits, 1)
	assert.Equal(t, schema.ChoiceAnswer([]string{"A"}), f.api.submits[0].values["a"])
}

func TestConfirmWithoutSelectionReasks(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Pick", Kind: schema.FieldCheckbox, Options: []string{"A", "B"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)

	assert.Contains(t, f.transport.lastMessage(), "You need to select at least one option!")
	require.Len(t, f.transport.prompts, 2)
	assert.Empty(t, f.api.submits)
}

func TestSingleChoiceWithTwoSelectionsRejected(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Pick one", Kind: schema.FieldRadio, Options: []string{"A", "B"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleReaction(context.Background(), 42, 1, "1️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, "2️⃣")
	f.engine.HandleReaction(context.Background(), 42, 1, ConfirmMarker)

	msgs := strings.Join(f.transport.messages, "\n")
	assert.Contains(t, msgs, "You can only select one option!")
	assert.Empty(t, f.api.submits)
}

func TestFileAnswerEncoded(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "shot", Name: "Screenshot", Kind: schema.FieldFile},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "proof.PNG", Ref: "file-1"}})

	require.Len(t, f.api.submits, 1)
	got := f.api.submits[0].values["shot"]
	assert.True(t, strings.HasPrefix(got.Text(), "data:image/png;base64,"))
}

func TestFileRejections(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "shot", Name: "Screenshot", Kind: schema.FieldFile},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "a.png"}, {Name: "b.png"}})
	assert.Contains(t, f.transport.lastMessage(), "You can only attach one file!")

	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "malware.exe"}})
	assert.Contains(t, f.transport.lastMessage(), "allowed extensions")

	f.fetcher.err = errors.New("telegram unreachable")
	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "proof.png"}})
	assert.Contains(t, f.transport.lastMessage(), "Something went wrong while retrieving your file")

	// nothing was accepted, the question is still open
	s := f.store.Get(42)
	require.NotNil(t, s)
	assert.Empty(t, s.Answers)
	assert.Empty(t, f.api.submits)
}

func TestFileOnTextQuestionRejected(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{textField("a", 0, 0)}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleFile(context.Background(), 42, []Attachment{{Name: "a.png"}})

	assert.Contains(t, f.transport.lastMessage(), "You cannot attach files to this question!")
	assert.Empty(t, f.api.submits)
}

func TestTextOnFileQuestionRejected(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "shot", Name: "Screenshot", Kind: schema.FieldFile},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	f.engine.HandleText(context.Background(), 42, "here you go")

	assert.Contains(t, f.transport.lastMessage(), "must be answered with a file attachment")
	assert.Empty(t, f.api.submits)
}

func TestStartRejectsFileFormWithoutFileSupport(t *testing.T) {
	f := newFixture()
	f.transport.supportFiles = false
	form := schema.Form{ID: 1, Fields: []schema.Field{{ID: "shot", Kind: schema.FieldFile}}}

	err := f.engine.Start(context.Background(), 100, form, 42, 42)

	assert.ErrorIs(t, err, errorz.ErrFileFieldsUnsupported)
	assert.Zero(t, f.store.Len())
	assert.Empty(t, f.transport.prompts)
}

func TestStartRejectsTooManyOptions(t *testing.T) {
	f := newFixture()
	options := make([]string, MaxOptions+1)
	for i := range options {
		options[i] = "opt"
	}
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Huge", Kind: schema.FieldCheckbox, Options: options},
	}}

	err := f.engine.Start(context.Background(), 100, form, 42, 42)

	assert.ErrorIs(t, err, errorz.ErrTooManyOptions)
	assert.Zero(t, f.store.Len())
}

func TestStartReplacesInFlightSession(t *testing.T) {
	f := newFixture()
	first := schema.Form{ID: 1, Fields: []schema.Field{textField("a", 0, 0)}}
	second := schema.Form{ID: 2, Fields: []schema.Field{textField("b", 0, 0)}}

	require.NoError(t, f.engine.Start(context.Background(), 100, first, 42, 42))
	require.NoError(t, f.engine.Start(context.Background(), 100, second, 42, 42))

	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, int64(2), f.store.Get(42).Form.ID)

	f.engine.HandleText(context.Background(), 42, "answer")
	require.Len(t, f.api.submits, 1)
	assert.Contains(t, f.api.submits[0].values, "b")
}

func TestFormOfOnlyNonQuestionsSubmitsImmediately(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Kind: schema.FieldHelpBox},
		{ID: "b", Kind: schema.FieldBarrier},
	}}

	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	require.Len(t, f.api.submits, 1)
	assert.Empty(t, f.api.submits[0].values)
	assert.False(t, f.engine.Active(42))
}

func TestConcurrentUsersProgressIndependently(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{textField("a", 0, 0), textField("b", 0, 0)}}

	var wg sync.WaitGroup
	for user := int64(1); user <= 8; user++ {
		require.NoError(t, f.engine.Start(context.Background(), 100, form, user, user))
	}
	for user := int64(1); user <= 8; user++ {
		wg.Add(1)
		go func(u int64) {
			defer wg.Done()
			f.engine.HandleText(context.Background(), u, "one")
			f.engine.HandleText(context.Background(), u, "two")
		}(user)
	}
	wg.Wait()

	assert.Len(t, f.api.submits, 8)
	assert.Zero(t, f.store.Len())
}

func TestPromptIncludesBoundsAndKindLabel(t *testing.T) {
	f := newFixture()
	form := schema.Form{ID: 1, Fields: []schema.Field{
		{ID: "a", Name: "Bio", Kind: schema.FieldTextArea, Min: 10, Max: 200},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	p := f.transport.lastPrompt()
	assert.Contains(t, p.Body, "Min characters: 10")
	assert.Contains(t, p.Body, "Max characters: 200")
	assert.Empty(t, p.Markers)

	choice := schema.Form{ID: 2, Fields: []schema.Field{
		{ID: "b", Name: "Color", Kind: schema.FieldRadio, Options: []string{"Red", "Blue"}},
	}}
	require.NoError(t, f.engine.Start(context.Background(), 100, choice, 43, 43))

	p = f.transport.lastPrompt()
	assert.Contains(t, p.Body, "Type: Radio")
	assert.Contains(t, p.Body, "1️⃣ Red")
	assert.Contains(t, p.Body, "2️⃣ Blue")
	assert.Equal(t, ConfirmMarker, p.Confirm)
}

func TestExpiredSessionSweptAndNotResurrected(t *testing.T) {
	f := newFixture()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return start }

	form := schema.Form{ID: 1, Fields: []schema.Field{textField("a", 0, 0)}}
	require.NoError(t, f.engine.Start(context.Background(), 100, form, 42, 42))

	// not old enough yet
	f.engine.now = func() time.Time { return start.Add(30 * time.Minute) }
	assert.Zero(t, f.engine.SweepOnce(context.Background()))
	assert.True(t, f.engine.Active(42))

	f.engine.now = func() time.Time { return start.Add(61 * time.Minute) }
	assert.Equal(t, 1, f.engine.SweepOnce(context.Background()))
	assert.False(t, f.engine.Active(42))
	assert.Contains(t, f.transport.lastMessage(), "Your form has expired!")

	// a late answer is an anomaly, not a revival
	prompts := len(f.transport.prompts)
	f.engine.HandleText(context.Background(), 42, "too late")
	assert.Zero(t, f.store.Len())
	assert.Len(t, f.transport.prompts, prompts)
	assert.Empty(t, f.api.submits)
}
