package session

import (
	"fmt"
	"strings"

	"NamelessFormsBot/internal/domain/schema"
)

// buildPrompt renders a question field into transport-neutral prompt
// content: the field name, the kind label and marker-numbered option
// list for choice fields, and the length bounds when either is set.
func buildPrompt(field schema.Field, number int) Prompt {
	var content []string

	switch field.Class() {
	case schema.ClassChoice:
		content = append(content, field.Name)
		content = append(content, "Type: "+field.KindLabel())
		content = append(content, "")
		for i, option := range field.Options {
			content = append(content, MarkerForIndex(i+1)+" "+option)
		}
	case schema.ClassFile:
		content = append(content, field.Name)
		content = append(content, "Please attach the file below in one message")
		content = append(content, "")
	default:
		content = append(content, field.Name)
		content = append(content, "")
	}

	if field.Min != 0 {
		content = append(content, fmt.Sprintf("Min characters: %d", field.Min))
	}
	if field.Max != 0 {
		content = append(content, fmt.Sprintf("Max characters: %d", field.Max))
	}

	p := Prompt{
		Number: number,
		Body:   strings.Join(content, "\n"),
	}
	if field.Class() == schema.ClassChoice {
		p.Markers = make([]string, 0, len(field.Options))
		for i := range field.Options {
			p.Markers = append(p.Markers, MarkerForIndex(i+1))
		}
		p.Confirm = ConfirmMarker
	}
	return p
}
