package repository

import (
	"context"

	"NamelessFormsBot/internal/domain/schema"
)

// SubmissionLog archives successfully submitted forms.
type SubmissionLog interface {
	Record(ctx context.Context, rec schema.SubmissionRecord) error
	RecentByGuild(ctx context.Context, guildID int64, limit int) ([]schema.SubmissionRecord, error)
}
