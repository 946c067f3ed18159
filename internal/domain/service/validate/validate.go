package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"NamelessFormsBot/internal/domain/schema"
)

var (
	numberRe = regexp.MustCompile(`^[0-9]+$`)
	// HTML5 email shape, the same check the website applies.
	emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

// FreeText checks a typed answer against the field's rules. Every rule
// is evaluated so the user sees all problems at once; an empty result
// means the answer is acceptable. Length bounds of 0 mean "no bound"
// and lengths are counted in characters, not bytes.
func FreeText(field schema.Field, answer string) []string {
	var errs []string

	length := utf8.RuneCountInString(answer)
	if field.Min != 0 && length < field.Min {
		errs = append(errs, fmt.Sprintf("Too short! Minimum length is %d", field.Min))
	}
	if field.Max != 0 && length > field.Max {
		errs = append(errs, fmt.Sprintf("Too long! Maximum length is %d", field.Max))
	}

	if field.Kind == schema.FieldNumber && !numberRe.MatchString(answer) {
		errs = append(errs, "Not a number!")
	}
	if field.Kind == schema.FieldEmail && !emailRe.MatchString(answer) {
		errs = append(errs, "Not a valid email address!")
	}

	return errs
}

// Choice checks a selected option set against the field's rules.
func Choice(field schema.Field, choices []string) []string {
	var errs []string

	if len(choices) < 1 {
		errs = append(errs, "You need to select at least one option!")
	}
	if field.SingleChoice() && len(choices) > 1 {
		errs = append(errs, "You can only select one option!")
	}

	return errs
}
