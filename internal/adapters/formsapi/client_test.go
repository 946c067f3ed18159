package formsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/schema"
)

type memSettings struct {
	creds map[int64]schema.APICredentials
}

func (m *memSettings) Credentials(ctx context.Context, guildID int64) (schema.APICredentials, bool, error) {
	c, ok := m.creds[guildID]
	return c, ok, nil
}

func (m *memSettings) SetCredentials(ctx context.Context, guildID int64, creds schema.APICredentials) error {
	m.creds[guildID] = creds
	return nil
}

func (m *memSettings) FormEnabled(ctx context.Context, guildID, formID int64) (bool, error) {
	return true, nil
}

func (m *memSettings) SetFormEnabled(ctx context.Context, guildID, formID int64, enabled bool) error {
	return nil
}

func (m *memSettings) ClearGuild(ctx context.Context, guildID int64) error {
	delete(m.creds, guildID)
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := &memSettings{creds: map[int64]schema.APICredentials{
		100: {URL: srv.URL, Key: "secret-key"},
	}}
	return NewClient(settings)
}

func TestClientFormsList(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"forms":[{"id":1,"title":"Staff application"},{"id":2,"title":"Ban appeal"}]}`))
	}))

	forms, err := c.Forms(context.Background(), 100)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "/forms", gotPath)
	require.Len(t, forms, 2)
	assert.Equal(t, "Staff application", forms[0].Title)
}

func TestClientFormWithoutFieldsIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// NamelessMC answers 200 with an empty object for unknown ids.
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.Form(context.Background(), 100, 99)
	assert.ErrorIs(t, err, errorz.ErrNotFound)
}

func TestClientFormParsesFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"title":"Apply","fields":[{"id":"f1","name":"Why?","type":"3","min":"10"}]}`))
	}))

	form, err := c.Form(context.Background(), 100, 7)
	require.NoError(t, err)

	require.Len(t, form.Fields, 1)
	assert.Equal(t, schema.FieldTextArea, form.Fields[0].Kind)
	assert.Equal(t, 10, form.Fields[0].Min)
}

func TestClientSubmitSuccess(t *testing.T) {
	var body map[string]json.RawMessage
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/forms/7/submissions/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"submission_id":55,"link":"https://site/forum/submission/55"}`))
	}))

	values := map[string]schema.AnswerValue{
		"f1": schema.TextAnswer("because"),
		"f2": schema.ChoiceAnswer([]string{"A", "B"}),
	}
	res, err := c.Submit(context.Background(), 100, 7, values, "1234")
	require.NoError(t, err)

	assert.Equal(t, int64(55), res.SubmissionID)
	assert.Equal(t, "https://site/forum/submission/55", res.Link)

	assert.JSONEq(t, `{"f1":"because","f2":["A","B"]}`, string(body["field_values"]))
	assert.JSONEq(t, `"1234"`, string(body["user"]))
}

func TestClientSubmitOmitsEmptyActor(t *testing.T) {
	var body map[string]json.RawMessage
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"submission_id":1}`))
	}))

	_, err := c.Submit(context.Background(), 100, 7, nil, "")
	require.NoError(t, err)
	assert.NotContains(t, body, "user")
}

func TestClientSubmitStructuredError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Invalid submission","meta":["Field Why? is required"]}`))
	}))

	_, err := c.Submit(context.Background(), 100, 7, nil, "")
	var apiErr *schema.SubmitError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid submission", apiErr.Message)
	assert.Equal(t, []string{"Field Why? is required"}, apiErr.Meta)
}

func TestClientLinkedUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/42":
			_, _ = w.Write([]byte(`{"id":9,"username":"steve"}`))
		case "/users/43":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{"error":"Unable to find that user"}`))
		}
	}))

	user, linked, err := c.LinkedUser(context.Background(), 100, 42)
	require.NoError(t, err)
	assert.True(t, linked)
	assert.Equal(t, "steve", user.Username)

	_, linked, err = c.LinkedUser(context.Background(), 100, 43)
	require.NoError(t, err)
	assert.False(t, linked)

	_, linked, err = c.LinkedUser(context.Background(), 100, 44)
	require.NoError(t, err)
	assert.False(t, linked)
}

func TestClientWithoutCredentials(t *testing.T) {
	c := NewClient(&memSettings{creds: map[int64]schema.APICredentials{}})

	_, err := c.Forms(context.Background(), 100)
	assert.ErrorIs(t, err, errorz.ErrNotConfigured)
}

func TestClientServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Forms(context.Background(), 100)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errorz.ErrNotFound)
}
