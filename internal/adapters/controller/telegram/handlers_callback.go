package telegram

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"NamelessFormsBot/internal/domain/service/session"
)

// handleCallback translates marker-button taps into the engine's
// reaction events. The question number rides in the callback data so
// taps on an old prompt can be told apart from the current one.
func (c *Controller) handleCallback(ctx context.Context, upd *models.Update) {
	cb := upd.CallbackQuery
	if cb == nil {
		return
	}
	userID := cb.From.ID
	data := cb.Data
	c.answerCallback(ctx, cb.ID, "")

	switch {
	case strings.HasPrefix(data, "sel:"):
		questionNumber, ok1 := parseIntPart(data, 1)
		optionIndex, ok2 := parseIntPart(data, 2)
		if !ok1 || !ok2 {
			return
		}
		marker := session.MarkerForIndex(optionIndex)
		if marker == "" {
			return
		}
		c.engine.HandleReaction(ctx, userID, questionNumber, marker)

	case strings.HasPrefix(data, "cfm:"):
		questionNumber, ok := parseIntPart(data, 1)
		if !ok {
			return
		}
		c.engine.HandleReaction(ctx, userID, questionNumber, session.ConfirmMarker)
	}
}

// handleMembership clears a guild's settings when the bot is removed
// from the chat.
func (c *Controller) handleMembership(ctx context.Context, upd *models.Update) {
	m := upd.MyChatMember
	if m == nil {
		return
	}
	status := m.NewChatMember.Type
	if status != models.ChatMemberTypeLeft && status != models.ChatMemberTypeBanned {
		return
	}
	c.log.Info("left guild", zap.Int64("guild", m.Chat.ID), zap.String("title", m.Chat.Title))
	if err := c.forms.ClearGuild(ctx, m.Chat.ID); err != nil {
		c.log.Error("clear guild settings", zap.Int64("guild", m.Chat.ID), zap.Error(err))
	}
}

func (c *Controller) answerCallback(ctx context.Context, callbackID, text string) {
	_, _ = c.bot.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}
