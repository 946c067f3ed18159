package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"NamelessFormsBot/internal/domain/service/session"
)

// handleMessage routes private-chat traffic into the session engine.
// Group messages that are not commands are none of the bot's business.
func (c *Controller) handleMessage(ctx context.Context, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	if msg.Chat.Type != models.ChatTypePrivate {
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	userID := msg.From.ID
	if !c.engine.Active(userID) {
		c.send(ctx, msg.Chat.ID, "You have no form in progress. Use /fill <id> in your community chat to start one.")
		return
	}

	if atts := messageAttachments(msg); len(atts) > 0 {
		c.engine.HandleFile(ctx, userID, atts)
		return
	}
	c.engine.HandleText(ctx, userID, msg.Text)
}

// messageAttachments lifts a message's document or photo into the
// engine's transport-neutral attachment form. Photos carry no filename
// so they get one that passes the image allow-list.
func messageAttachments(msg *models.Message) []session.Attachment {
	if msg.Document != nil {
		return []session.Attachment{{Name: msg.Document.FileName, Ref: msg.Document.FileID}}
	}
	if len(msg.Photo) > 0 {
		largest := msg.Photo[len(msg.Photo)-1]
		return []session.Attachment{{Name: "photo.jpg", Ref: largest.FileID}}
	}
	return nil
}
