package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"NamelessFormsBot/internal/domain/service/session"
)

// markersPerRow keeps choice keyboards readable for long option lists.
const markersPerRow = 5

// Transport delivers the engine's abstract messaging actions over
// Telegram. Choice markers become an inline keyboard under the prompt:
// tapping a marker toggles the option, the confirm button completes
// the selection.
type Transport struct {
	bot *tgbot.Bot
}

var _ session.Transport = (*Transport)(nil)

func (t *Transport) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := t.bot.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

func (t *Transport) SendPrompt(ctx context.Context, chatID int64, p session.Prompt) (session.MessageRef, error) {
	msg, err := t.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Question #%d\n\n%s", p.Number, p.Body),
	})
	if err != nil {
		return session.MessageRef{}, err
	}
	return session.MessageRef{MessageID: msg.ID}, nil
}

func (t *Transport) AddChoiceMarkers(ctx context.Context, chatID int64, ref session.MessageRef, p session.Prompt) error {
	var rows [][]models.InlineKeyboardButton
	row := make([]models.InlineKeyboardButton, 0, markersPerRow)
	for i, marker := range p.Markers {
		row = append(row, models.InlineKeyboardButton{
			Text:         marker,
			CallbackData: fmt.Sprintf("sel:%d:%d", p.Number, i+1),
		})
		if len(row) == markersPerRow {
			rows = append(rows, row)
			row = make([]models.InlineKeyboardButton, 0, markersPerRow)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         p.Confirm + " Done",
		CallbackData: fmt.Sprintf("cfm:%d", p.Number),
	}})

	_, err := t.bot.EditMessageReplyMarkup(ctx, &tgbot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   ref.MessageID,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	return err
}

// SupportsFileUploads: Telegram private chats can receive documents
// and photos, so file fields are fillable here.
func (t *Transport) SupportsFileUploads() bool {
	return true
}
