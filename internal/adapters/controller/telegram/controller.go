package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"NamelessFormsBot/internal/domain/repository"
	"NamelessFormsBot/internal/domain/service/access"
	formsvc "NamelessFormsBot/internal/domain/service/forms"
	"NamelessFormsBot/internal/domain/service/session"
)

type Runner struct {
	bot *tgbot.Bot
}

type Controller struct {
	bot     *tgbot.Bot
	access  *access.Service
	forms   *formsvc.Service
	archive repository.SubmissionLog
	engine  *session.Engine
	log     *zap.Logger
}

// New builds the controller and its bot. The session engine is
// attached afterwards because it needs the bot-backed transport this
// controller provides.
func New(token string, accessSvc *access.Service, formsSvc *formsvc.Service, archive repository.SubmissionLog, log *zap.Logger) (*Controller, error) {
	ctrl := &Controller{access: accessSvc, forms: formsSvc, archive: archive, log: log}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(ctrl.defaultHandler))
	if err != nil {
		return nil, err
	}
	ctrl.bot = b

	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, ctrl.start)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, ctrl.help)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/forms", tgbot.MatchTypePrefix, ctrl.listForms)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/fill", tgbot.MatchTypePrefix, ctrl.fill)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/settings", tgbot.MatchTypePrefix, ctrl.settings)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/submissions", tgbot.MatchTypePrefix, ctrl.submissions)

	return ctrl, nil
}

// AttachEngine wires the session engine in after construction.
func (c *Controller) AttachEngine(e *session.Engine) {
	c.engine = e
}

// Transport exposes the bot as the engine's messaging surface.
func (c *Controller) Transport() session.Transport {
	return &Transport{bot: c.bot}
}

// Files exposes the bot as the engine's attachment fetcher.
func (c *Controller) Files() session.FileFetcher {
	return NewFileFetcher(c.bot)
}

func (c *Controller) Runner() *Runner {
	return &Runner{bot: c.bot}
}

func (r *Runner) Start(ctx context.Context) {
	r.bot.Start(ctx)
}

func (c *Controller) defaultHandler(ctx context.Context, b *tgbot.Bot, upd *models.Update) {
	switch {
	case upd.CallbackQuery != nil:
		c.handleCallback(ctx, upd)
	case upd.MyChatMember != nil:
		c.handleMembership(ctx, upd)
	case upd.Message != nil:
		c.handleMessage(ctx, upd)
	}
}
