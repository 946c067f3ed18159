package formsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/schema"
)

// Client talks to a guild's NamelessMC-style forms API. Credentials
// are resolved per call so a guild can repoint the bot without a
// restart.
type Client struct {
	settings repository.Settings
	http     *http.Client
}

var _ repository.FormsAPI = (*Client)(nil)

func NewClient(settings repository.Settings) *Client {
	return &Client{
		settings: settings,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Forms(ctx context.Context, guildID int64) ([]schema.Form, error) {
	var out struct {
		Forms []schema.Form `json:"forms"`
	}
	if err := c.do(ctx, guildID, http.MethodGet, "forms", nil, &out); err != nil {
		return nil, err
	}
	return out.Forms, nil
}

func (c *Client) Form(ctx context.Context, guildID, formID int64) (schema.Form, error) {
	var form schema.Form
	if err := c.do(ctx, guildID, http.MethodGet, fmt.Sprintf("forms/%d", formID), nil, &form); err != nil {
		return schema.Form{}, err
	}
	// A response without a fields array means the id did not resolve.
	if form.Fields == nil {
		return schema.Form{}, errorz.ErrNotFound
	}
	return form, nil
}

func (c *Client) Submit(ctx context.Context, guildID, formID int64, values map[string]schema.AnswerValue, actor string) (schema.SubmitResult, error) {
	body := struct {
		FieldValues map[string]schema.AnswerValue `json:"field_values"`
		User        string                        `json:"user,omitempty"`
	}{FieldValues: values, User: actor}

	var out struct {
		schema.SubmitResult
		Error string   `json:"error"`
		Meta  []string `json:"meta"`
	}
	if err := c.do(ctx, guildID, http.MethodPost, fmt.Sprintf("forms/%d/submissions/create", formID), body, &out); err != nil {
		return schema.SubmitResult{}, err
	}
	if out.Error != "" {
		return schema.SubmitResult{}, &schema.SubmitError{Message: out.Error, Meta: out.Meta}
	}
	return out.SubmitResult, nil
}

func (c *Client) LinkedUser(ctx context.Context, guildID, userID int64) (schema.LinkedUser, bool, error) {
	var out struct {
		schema.LinkedUser
		Error string `json:"error"`
	}
	err := c.do(ctx, guildID, http.MethodGet, fmt.Sprintf("users/%d", userID), nil, &out)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return schema.LinkedUser{}, false, nil
		}
		return schema.LinkedUser{}, false, err
	}
	if out.Error != "" || out.ID == 0 {
		return schema.LinkedUser{}, false, nil
	}
	return out.LinkedUser, true, nil
}

func (c *Client) do(ctx context.Context, guildID int64, method, path string, body, out any) error {
	creds, ok, err := c.settings.Credentials(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if !ok {
		return errorz.ErrNotConfigured
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, creds.BaseURL()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errorz.ErrNotFound
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("forms api: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
