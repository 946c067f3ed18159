package redisstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/schema"
)

// SettingsRepo keeps per-guild configuration in redis. Config has no
// TTL; it lives until the bot leaves the guild.
type SettingsRepo struct {
	client *redis.Client
}

var _ repository.Settings = (*SettingsRepo)(nil)

func NewSettingsRepo(client *redis.Client) *SettingsRepo {
	return &SettingsRepo{client: client}
}

func (r *SettingsRepo) Credentials(ctx context.Context, guildID int64) (schema.APICredentials, bool, error) {
	v, err := r.client.Get(ctx, credsKey(guildID)).Result()
	if err == redis.Nil {
		return schema.APICredentials{}, false, nil
	}
	if err != nil {
		return schema.APICredentials{}, false, err
	}

	var creds schema.APICredentials
	if err := json.Unmarshal([]byte(v), &creds); err != nil {
		return schema.APICredentials{}, false, err
	}
	return creds, true, nil
}

func (r *SettingsRepo) SetCredentials(ctx context.Context, guildID int64, creds schema.APICredentials) error {
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, credsKey(guildID), b, 0).Err()
}

func (r *SettingsRepo) FormEnabled(ctx context.Context, guildID, formID int64) (bool, error) {
	v, err := r.client.Get(ctx, formKey(guildID, formID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (r *SettingsRepo) SetFormEnabled(ctx context.Context, guildID, formID int64, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	return r.client.Set(ctx, formKey(guildID, formID), v, 0).Err()
}

// ClearGuild removes the credentials and every form flag for a guild.
func (r *SettingsRepo) ClearGuild(ctx context.Context, guildID int64) error {
	var cursor uint64
	pattern := fmt.Sprintf("guild:%d:*", guildID)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func credsKey(guildID int64) string {
	return fmt.Sprintf("guild:%d:api", guildID)
}

func formKey(guildID, formID int64) string {
	return fmt.Sprintf("guild:%d:form:%d", guildID, formID)
}
