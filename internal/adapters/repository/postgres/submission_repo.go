package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/schema"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

var _ repository.SubmissionLog = (*SubmissionRepo)(nil)

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS form_submissions (
			id BIGSERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			form_id BIGINT NOT NULL,
			form_title TEXT NOT NULL,
			submission_id BIGINT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_form_submissions_guild ON form_submissions(guild_id, submitted_at DESC);`,
	}

	for _, q := range queries {
		if _, err := r.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (r *SubmissionRepo) Record(ctx context.Context, rec schema.SubmissionRecord) error {
	const query = `
	INSERT INTO form_submissions (guild_id, user_id, form_id, form_title, submission_id, submitted_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.pool.Exec(ctx, query, rec.GuildID, rec.UserID, rec.FormID, rec.FormTitle, rec.SubmissionID, rec.SubmittedAt)
	return err
}

func (r *SubmissionRepo) RecentByGuild(ctx context.Context, guildID int64, limit int) ([]schema.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	const query = `
	SELECT id, guild_id, user_id, form_id, form_title, submission_id, submitted_at
	FROM form_submissions
	WHERE guild_id = $1
	ORDER BY submitted_at DESC
	LIMIT $2;
	`
	rows, err := r.pool.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]schema.SubmissionRecord, 0, limit)
	for rows.Next() {
		var rec schema.SubmissionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.GuildID,
			&rec.UserID,
			&rec.FormID,
			&rec.FormTitle,
			&rec.SubmissionID,
			&rec.SubmittedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
