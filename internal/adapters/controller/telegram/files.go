package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"

	"NamelessFormsBot/internal/domain/service/session"
)

// maxAttachmentSize caps how much of an attachment is read; image
// answers far beyond this would not fit a submission anyway.
const maxAttachmentSize = 10 << 20

// FileFetcher downloads attachments through the Telegram file API so
// the engine can encode them into the submission.
type FileFetcher struct {
	bot  *tgbot.Bot
	http *http.Client
}

var _ session.FileFetcher = (*FileFetcher)(nil)

func NewFileFetcher(b *tgbot.Bot) *FileFetcher {
	return &FileFetcher{
		bot:  b,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *FileFetcher) Fetch(ctx context.Context, att session.Attachment) (string, []byte, error) {
	file, err := f.bot.GetFile(ctx, &tgbot.GetFileParams{FileID: att.Ref})
	if err != nil {
		return "", nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.bot.FileDownloadLink(file), nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize))
	if err != nil {
		return "", nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return contentType, data, nil
}
