package repository

import (
	"context"

	"NamelessFormsBot/internal/domain/schema"
)

// Settings stores per-guild bot configuration: the forms API
// credentials and which forms may be filled from chat.
type Settings interface {
	Credentials(ctx context.Context, guildID int64) (schema.APICredentials, bool, error)
	SetCredentials(ctx context.Context, guildID int64, creds schema.APICredentials) error
	FormEnabled(ctx context.Context, guildID, formID int64) (bool, error)
	SetFormEnabled(ctx context.Context, guildID, formID int64, enabled bool) error
	ClearGuild(ctx context.Context, guildID int64) error
}
