package forms

import (
	"context"
	"errors"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/schema"
)

// Service is the catalog layer between the controller and the remote
// forms API: it resolves per-guild configuration and enforces the
// per-form enabled flag before a fill can start.
type Service struct {
	api      repository.FormsAPI
	settings repository.Settings
}

func New(api repository.FormsAPI, settings repository.Settings) *Service {
	return &Service{api: api, settings: settings}
}

// Configured reports whether the guild has API credentials set.
func (s *Service) Configured(ctx context.Context, guildID int64) (bool, error) {
	_, ok, err := s.settings.Credentials(ctx, guildID)
	return ok, err
}

func (s *Service) List(ctx context.Context, guildID int64) ([]schema.Form, error) {
	return s.api.Forms(ctx, guildID)
}

// Get fetches a fillable form: it must exist and be enabled for the
// guild. Disabled forms come back as errorz.ErrFormDisabled.
func (s *Service) Get(ctx context.Context, guildID, formID int64) (schema.Form, error) {
	form, err := s.api.Form(ctx, guildID, formID)
	if err != nil {
		return schema.Form{}, err
	}
	enabled, err := s.settings.FormEnabled(ctx, guildID, formID)
	if err != nil {
		return schema.Form{}, err
	}
	if !enabled {
		return schema.Form{}, errorz.ErrFormDisabled
	}
	return form, nil
}

func (s *Service) SetCredentials(ctx context.Context, guildID int64, creds schema.APICredentials) error {
	return s.settings.SetCredentials(ctx, guildID, creds)
}

// SetFormEnabled toggles filling for one form. The form must exist on
// the site, which doubles as a check that the credentials still work.
func (s *Service) SetFormEnabled(ctx context.Context, guildID, formID int64, enabled bool) error {
	if _, err := s.api.Form(ctx, guildID, formID); err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return errorz.ErrNotFound
		}
		return err
	}
	return s.settings.SetFormEnabled(ctx, guildID, formID, enabled)
}

// View is the current configuration shown by the settings command.
type View struct {
	APIURL string
	KeySet bool
}

func (s *Service) Settings(ctx context.Context, guildID int64) (View, error) {
	creds, ok, err := s.settings.Credentials(ctx, guildID)
	if err != nil {
		return View{}, err
	}
	if !ok {
		return View{}, nil
	}
	return View{APIURL: creds.URL, KeySet: creds.Key != ""}, nil
}

// ClearGuild drops everything stored for a guild; called when the bot
// is removed from the chat.
func (s *Service) ClearGuild(ctx context.Context, guildID int64) error {
	return s.settings.ClearGuild(ctx, guildID)
}
