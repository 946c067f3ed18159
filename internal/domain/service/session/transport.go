package session

import "context"

// Prompt is one rendered question. Number is embedded so a late
// reaction can be matched against the question it belongs to.
type Prompt struct {
	Number int
	Body   string
	// Markers carries one symbol per option for choice fields, in
	// option order; empty for every other field class.
	Markers []string
	Confirm string
}

// MessageRef identifies a sent prompt within the transport.
type MessageRef struct {
	MessageID int
}

// Attachment describes a file the user attached to a message. Ref is
// transport-specific and only meaningful to the FileFetcher.
type Attachment struct {
	Name string
	Ref  string
}

// Transport is the chat platform seen from the engine: plain messages,
// question prompts and the choice-marker surface. Implementations talk
// to a user's private chat identified by chatID.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPrompt(ctx context.Context, chatID int64, p Prompt) (MessageRef, error)
	// AddChoiceMarkers attaches the prompt's option markers and the
	// confirm marker to an already sent prompt.
	AddChoiceMarkers(ctx context.Context, chatID int64, ref MessageRef, p Prompt) error
	// SupportsFileUploads reports whether file answers can arrive over
	// this transport at all.
	SupportsFileUploads() bool
}

// FileFetcher retrieves the bytes of an attachment.
type FileFetcher interface {
	Fetch(ctx context.Context, att Attachment) (contentType string, data []byte, err error)
}
