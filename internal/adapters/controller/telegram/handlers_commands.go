package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"NamelessFormsBot/internal/domain/errorz"
	"NamelessFormsBot/internal/domain/schema"
)

func (c *Controller) start(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	c.send(ctx, upd.Message.Chat.ID, welcomeText)
}

func (c *Controller) help(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	if upd.Message == nil {
		return
	}
	c.send(ctx, upd.Message.Chat.ID, helpText)
}

func (c *Controller) listForms(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	guildID := msg.Chat.ID
	if msg.Chat.Type == models.ChatTypePrivate {
		c.send(ctx, guildID, "This command can only be used in a group chat.")
		return
	}

	forms, err := c.forms.List(ctx, guildID)
	if err != nil {
		if errors.Is(err, errorz.ErrNotConfigured) {
			c.send(ctx, guildID, "You haven't set up the api credentials! See /settings.")
			return
		}
		c.log.Error("list forms", zap.Int64("guild", guildID), zap.Error(err))
		c.send(ctx, guildID, "Could not fetch the forms from the site.")
		return
	}
	if len(forms) == 0 {
		c.send(ctx, guildID, "There are no forms on the site.")
		return
	}
	c.send(ctx, guildID, formsTable(forms))
}

func (c *Controller) fill(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	guildID := msg.Chat.ID
	userID := msg.From.ID

	if msg.Chat.Type == models.ChatTypePrivate {
		c.send(ctx, guildID, "This command can only be used in a group chat.")
		return
	}

	formID, ok := commandInt64Arg(msg.Text, 1)
	if !ok {
		c.send(ctx, guildID, "Usage: /fill <form id>")
		return
	}

	form, err := c.forms.Get(ctx, guildID, formID)
	if err != nil {
		switch {
		case errors.Is(err, errorz.ErrNotConfigured):
			c.send(ctx, guildID, "You haven't set up the api credentials! See /settings.")
		case errors.Is(err, errorz.ErrNotFound):
			c.send(ctx, guildID, fmt.Sprintf("Could not find form with id %d", formID))
		case errors.Is(err, errorz.ErrFormDisabled):
			c.send(ctx, guildID, "Filling in this form via chat is disabled.")
		default:
			c.log.Error("fetch form", zap.Int64("guild", guildID), zap.Int64("form", formID), zap.Error(err))
			c.send(ctx, guildID, "Could not fetch the form from the site.")
		}
		return
	}

	// The prompts go to the user's private chat; make sure it is open
	// before a session exists at all.
	if err := c.Transport().SendMessage(ctx, userID, fmt.Sprintf("Let's fill in \"%s\". Answer one question at a time.", form.Title)); err != nil {
		c.send(ctx, guildID, "Could not message you privately. Open a private chat with me and press Start, then try again.")
		return
	}

	if err := c.engine.Start(ctx, guildID, form, userID, userID); err != nil {
		switch {
		case errors.Is(err, errorz.ErrFileFieldsUnsupported):
			c.send(ctx, guildID, "This form has file input fields the bot cannot receive, so it cannot be filled in here.")
		case errors.Is(err, errorz.ErrTooManyOptions):
			c.send(ctx, guildID, "This form has a choice field with more options than the bot can offer, so it cannot be filled in here.")
		default:
			c.log.Error("start session", zap.Int64("user", userID), zap.Error(err))
			c.send(ctx, guildID, "Could not start the form. Please try again later.")
		}
		return
	}

	c.send(ctx, guildID, "You have been sent a private message with the form.")
}

func (c *Controller) settings(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	guildID := msg.Chat.ID
	userID := msg.From.ID

	if msg.Chat.Type == models.ChatTypePrivate {
		c.send(ctx, guildID, "This command can only be used in a group chat.")
		return
	}
	if !c.access.IsAdmin(userID) {
		c.send(ctx, guildID, "You do not have permission to change the bot settings.")
		return
	}

	args := commandArgs(msg.Text)
	if len(args) == 0 {
		c.send(ctx, guildID, settingsUsage)
		return
	}

	switch args[0] {
	case "list":
		view, err := c.forms.Settings(ctx, guildID)
		if err != nil {
			c.log.Error("load settings", zap.Int64("guild", guildID), zap.Error(err))
			return
		}
		c.send(ctx, guildID, settingsView(view))

	case "apikey":
		if len(args) < 3 {
			c.send(ctx, guildID, "Usage: /settings apikey <url> <key>")
			return
		}
		creds := schema.APICredentials{URL: args[1], Key: args[2]}
		if err := c.forms.SetCredentials(ctx, guildID, creds); err != nil {
			c.log.Error("save credentials", zap.Int64("guild", guildID), zap.Error(err))
			c.send(ctx, guildID, "Could not save the api credentials.")
			return
		}
		c.send(ctx, guildID, "The api credentials have been saved.")

	case "form":
		if len(args) < 3 {
			c.send(ctx, guildID, "Usage: /settings form <id> on|off")
			return
		}
		formID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			c.send(ctx, guildID, "Usage: /settings form <id> on|off")
			return
		}
		enabled := strings.EqualFold(args[2], "on") || strings.EqualFold(args[2], "true")
		if err := c.forms.SetFormEnabled(ctx, guildID, formID, enabled); err != nil {
			if errors.Is(err, errorz.ErrNotFound) {
				c.send(ctx, guildID, "The form does not exist.")
				return
			}
			c.log.Error("toggle form", zap.Int64("guild", guildID), zap.Int64("form", formID), zap.Error(err))
			c.send(ctx, guildID, "Could not update the form setting.")
			return
		}
		if enabled {
			c.send(ctx, guildID, "The form has been enabled.")
		} else {
			c.send(ctx, guildID, "The form has been disabled.")
		}

	default:
		c.send(ctx, guildID, settingsUsage)
	}
}

func (c *Controller) submissions(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	guildID := msg.Chat.ID

	if msg.Chat.Type == models.ChatTypePrivate {
		c.send(ctx, guildID, "This command can only be used in a group chat.")
		return
	}
	if !c.access.IsAdmin(msg.From.ID) {
		c.send(ctx, guildID, "You do not have permission to view the submission log.")
		return
	}

	records, err := c.archive.RecentByGuild(ctx, guildID, 10)
	if err != nil {
		c.log.Error("load submission log", zap.Int64("guild", guildID), zap.Error(err))
		c.send(ctx, guildID, "Could not load the submission log.")
		return
	}
	c.send(ctx, guildID, submissionsView(records))
}
