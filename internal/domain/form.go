package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// FieldType discriminates the custom RSVP question variants.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
)

const (
	maxQuestions          = 30
	defaultTextMaxLength  = 200
	defaultTextareaMaxLen = 2000
	maxFieldIDLength      = 64
)

// FormField is one organizer-defined question on the RSVP form.
// The set of variants is closed: TextField, TextareaField and SelectField.
type FormField interface {
	Type() FieldType
	Base() FieldBase
	isFormField()
}

// FieldBase holds the attributes every question carries.
type FieldBase struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// TextField is a single-line answer.
type TextField struct {
	FieldBase
	MaxLength int `json:"max_length,omitempty"`
}

// TextareaField is a multi-line answer.
type TextareaField struct {
	FieldBase
	MaxLength int `json:"max_length,omitempty"`
}

// SelectField restricts the answer to one of Options.
type SelectField struct {
	FieldBase
	Options []string `json:"options"`
}

func (TextField) Type() FieldType     { return FieldText }
func (TextareaField) Type() FieldType { return FieldTextarea }
func (SelectField) Type() FieldType   { return FieldSelect }

func (f TextField) Base() FieldBase     { return f.FieldBase }
func (f TextareaField) Base() FieldBase { return f.FieldBase }
func (f SelectField) Base() FieldBase   { return f.FieldBase }

func (TextField) isFormField()     {}
func (TextareaField) isFormField() {}
func (SelectField) isFormField()   {}

// FormSchema is the ordered list of custom questions, stored as JSONB.
type FormSchema []FormField

// Validate checks the schema an organizer submits.
func (s FormSchema) Validate() error {
	if len(s) > maxQuestions {
		return NewFieldError("custom_questions", "at most %d questions are allowed", maxQuestions)
	}
	seen := make(map[string]struct{}, len(s))
	for i, f := range s {
		field := fmt.Sprintf("custom_questions[%d]", i)
		if f == nil {
			return NewFieldError(field, "is empty")
		}
		base := f.Base()
		id := base.ID
		if strings.TrimSpace(id) == "" || len(id) > maxFieldIDLength {
			return NewFieldError(field+".id", "is required and must be at most %d characters", maxFieldIDLength)
		}
		// Answers are keyed by the exact id.
		if id != strings.TrimSpace(id) {
			return NewFieldError(field+".id", "must not start or end with whitespace")
		}
		if _, dup := seen[id]; dup {
			return NewFieldError(field+".id", "duplicate id %q", id)
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(base.Label) == "" {
			return NewFieldError(field+".label", "is required")
		}
		switch v := f.(type) {
		case TextField:
			if v.MaxLength < 0 {
				return NewFieldError(field+".max_length", "must not be negative")
			}
		case TextareaField:
			if v.MaxLength < 0 {
				return NewFieldError(field+".max_length", "must not be negative")
			}
		case SelectField:
			if len(v.Options) == 0 {
				return NewFieldError(field+".options", "at least one option is required")
			}
			for _, o := range v.Options {
				if strings.TrimSpace(o) == "" {
					return NewFieldError(field+".options", "options must not be blank")
				}
			}
		default:
			return NewFieldError(field, "unsupported question %T", f)
		}
	}
	return nil
}

// CheckAnswers validates a guest's answers against the schema and returns the cleaned set.
// Answers are trimmed, keys that match no question are dropped, and required questions must be answered.
func (s FormSchema) CheckAnswers(answers map[string]string) (Answers, error) {
	out := make(Answers, len(s))
	for _, f := range s {
		base := f.Base()
		field := "answers." + base.ID
		val := strings.TrimSpace(answers[base.ID])
		if val == "" {
			if base.Required {
				return nil, NewFieldError(field, "%s is required", base.Label)
			}
			continue
		}
		switch v := f.(type) {
		case TextField:
			if utf8.RuneCountInString(val) > maxLen(v.MaxLength, defaultTextMaxLength) {
				return nil, NewFieldError(field, "must be at most %d characters", maxLen(v.MaxLength, defaultTextMaxLength))
			}
		case TextareaField:
			if utf8.RuneCountInString(val) > maxLen(v.MaxLength, defaultTextareaMaxLen) {
				return nil, NewFieldError(field, "must be at most %d characters", maxLen(v.MaxLength, defaultTextareaMaxLen))
			}
		case SelectField:
			if !slices.Contains(v.Options, val) {
				return nil, NewFieldError(field, "must be one of %s", strings.Join(v.Options, ", "))
			}
		default:
			return nil, NewFieldError(field, "unsupported question %T", f)
		}
		out[base.ID] = val
	}
	return out, nil
}

func maxLen(configured, def int) int {
	if configured > 0 {
		return configured
	}
	return def
}

type taggedText struct {
	Type FieldType `json:"type"`
	TextField
}

type taggedTextarea struct {
	Type FieldType `json:"type"`
	TextareaField
}

type taggedSelect struct {
	Type FieldType `json:"type"`
	SelectField
}

func (s FormSchema) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(s))
	for _, f := range s {
		switch v := f.(type) {
		case TextField:
			out = append(out, taggedText{Type: FieldText, TextField: v})
		case TextareaField:
			out = append(out, taggedTextarea{Type: FieldTextarea, TextareaField: v})
		case SelectField:
			out = append(out, taggedSelect{Type: FieldSelect, SelectField: v})
		default:
			return nil, fmt.Errorf("unsupported question %T", f)
		}
	}
	return json.Marshal(out)
}

func (s *FormSchema) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(FormSchema, 0, len(raw))
	for i, r := range raw {
		var head struct {
			Type FieldType `json:"type"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return err
		}
		switch head.Type {
		case FieldText:
			var v TextField
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			fields = append(fields, v)
		case FieldTextarea:
			var v TextareaField
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			fields = append(fields, v)
		case FieldSelect:
			var v SelectField
			if err := json.Unmarshal(r, &v); err != nil {
				return err
			}
			fields = append(fields, v)
		default:
			return fmt.Errorf("custom_questions[%d]: unknown type %q", i, head.Type)
		}
	}
	*s = fields
	return nil
}

func (s FormSchema) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return s.MarshalJSON()
}

func (s *FormSchema) Scan(value any) error {
	if value == nil {
		*s = FormSchema{}
		return nil
	}
	return scanJSON(value, s)
}
