package repository

import (
	"context"

	"NamelessFormsBot/internal/domain/schema"
)

// FormsAPI is the remote forms backend a guild points the bot at.
// Calls resolve the guild's credentials; errorz.ErrNotConfigured is
// returned when none are set.
type FormsAPI interface {
	// Forms lists the forms the site offers.
	Forms(ctx context.Context, guildID int64) ([]schema.Form, error)

	// Form fetches one form with its full field definitions.
	// errorz.ErrNotFound when the id does not resolve to a form.
	Form(ctx context.Context, guildID, formID int64) (schema.Form, error)

	// Submit creates a submission from the answer map. actor, when not
	// empty, attributes the submission to a linked site account. A
	// structured rejection is returned as *schema.SubmitError.
	Submit(ctx context.Context, guildID, formID int64, values map[string]schema.AnswerValue, actor string) (schema.SubmitResult, error)

	// LinkedUser resolves the site account linked to a chat user, if any.
	LinkedUser(ctx context.Context, guildID, userID int64) (schema.LinkedUser, bool, error)
}
