package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FieldKind is the numeric type code the forms API uses for a field.
type FieldKind string

const (
	FieldText     FieldKind = "1"
	FieldOptions  FieldKind = "2"
	FieldTextArea FieldKind = "3"
	FieldHelpBox  FieldKind = "4"
	FieldBarrier  FieldKind = "5"
	FieldNumber   FieldKind = "6"
	FieldEmail    FieldKind = "7"
	FieldRadio    FieldKind = "8"
	FieldCheckbox FieldKind = "9"
	FieldFile     FieldKind = "10"
)

// FieldClass partitions the kinds by how a field is answered.
type FieldClass int

const (
	ClassNonQuestion FieldClass = iota
	ClassFreeText
	ClassChoice
	ClassFile
)

// optionsDelimiter separates options when the API sends them as one string.
const optionsDelimiter = "\r,"

type Field struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required"`
	Min      int       `json:"min"`
	Max      int       `json:"max"`
	Options  []string  `json:"options"`
}

// fieldWire tolerates the API's loose typing: min/max arrive as numbers
// or numeric strings, options as an array or a delimited string.
type fieldWire struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     FieldKind       `json:"type"`
	Required bool            `json:"required"`
	Min      json.RawMessage `json:"min"`
	Max      json.RawMessage `json:"max"`
	Options  json.RawMessage `json:"options"`
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.ID = w.ID
	f.Name = w.Name
	f.Kind = w.Kind
	f.Required = w.Required
	f.Min = looseInt(w.Min)
	f.Max = looseInt(w.Max)
	f.Options = looseOptions(w.Options)
	return nil
}

// Class reports how the field is answered. Every kind maps to exactly
// one class; unknown kinds are treated as free text so the dialogue can
// still move forward.
func (f Field) Class() FieldClass {
	switch f.Kind {
	case FieldHelpBox, FieldBarrier:
		return ClassNonQuestion
	case FieldOptions, FieldRadio, FieldCheckbox:
		return ClassChoice
	case FieldFile:
		return ClassFile
	default:
		return ClassFreeText
	}
}

// IsQuestion reports whether the field expects an answer at all.
func (f Field) IsQuestion() bool {
	return f.Class() != ClassNonQuestion
}

// SingleChoice reports whether at most one option may be selected.
func (f Field) SingleChoice() bool {
	return f.Kind == FieldOptions || f.Kind == FieldRadio
}

// KindLabel is the human-readable name of the field kind.
func (f Field) KindLabel() string {
	switch f.Kind {
	case FieldText:
		return "Text"
	case FieldOptions:
		return "Options"
	case FieldTextArea:
		return "Text area"
	case FieldHelpBox:
		return "Help box"
	case FieldBarrier:
		return "Barrier"
	case FieldNumber:
		return "Number"
	case FieldEmail:
		return "Email address"
	case FieldRadio:
		return "Radio"
	case FieldCheckbox:
		return "Checkbox"
	case FieldFile:
		return "File"
	default:
		return "Unknown"
	}
}

// SplitOptions normalizes a delimited option string to the ordered
// option list. Already-split input passes through Field unmarshalling
// unchanged, so both source shapes yield the same sequence.
func SplitOptions(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, optionsDelimiter)
}

func looseOptions(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return SplitOptions(s)
	}
	return []string{}
}

func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
