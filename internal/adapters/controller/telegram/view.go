package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"

	"NamelessFormsBot/internal/domain/schema"
	formsvc "NamelessFormsBot/internal/domain/service/forms"
)

const welcomeText = "Thank you for using the bot!\n\n" +
	"To get started, head to your website and log into StaffCP. " +
	"Go to StaffCP > Configuration > Api and enable the api, then set the credentials with /settings apikey <url> <key> in your community chat.\n\n" +
	"To allow filling in a form from chat, enable it with /settings form <id> on. " +
	"Users can then list forms with /forms and start one with /fill <id>."

const helpText = "Commands:\n" +
	"/forms - list the forms on the site\n" +
	"/fill <id> - fill in a form via private chat\n" +
	"/settings - configure the bot (admins)\n" +
	"/submissions - recent submissions (admins)"

const settingsUsage = "Usage:\n" +
	"/settings list\n" +
	"/settings apikey <url> <key>\n" +
	"/settings form <id> on|off"

func (c *Controller) send(ctx context.Context, chatID int64, text string) {
	_, _ = c.bot.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
}

func formsTable(forms []schema.Form) string {
	lines := make([]string, 0, len(forms)+1)
	lines = append(lines, "Forms on the site:")
	for _, form := range forms {
		lines = append(lines, fmt.Sprintf("%d) %s", form.ID, form.Title))
	}
	lines = append(lines, "", "Start one with /fill <id>")
	return strings.Join(lines, "\n")
}

func settingsView(v formsvc.View) string {
	url := "Not set"
	if v.APIURL != "" {
		url = v.APIURL
	}
	key := "Not set"
	if v.KeySet {
		key = "Set"
	}
	return "🌐 Api url: " + url + "\n🔑 Api key: " + key
}

func submissionsView(records []schema.SubmissionRecord) string {
	if len(records) == 0 {
		return "No forms have been submitted yet."
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, "Recent submissions:")
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("#%d %s — user %d, %s",
			rec.SubmissionID, rec.FormTitle, rec.UserID, rec.SubmittedAt.Format("2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}
