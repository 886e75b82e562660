package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidTemplate is returned when a template cannot drive an interview
var ErrInvalidTemplate = errors.New("invalid template")

// FieldType is the semantic type of a template field
type FieldType string

const (
	FieldTypeString FieldType = "string" // Direct factual answer
	FieldTypeStory  FieldType = "story"  // Narrative, not a one-word answer
	FieldTypeYesNo  FieldType = "yes_no" // Clear affirmative or negative
)

// ParseFieldType accepts the canonical names plus the "yes/no" spelling stored by older templates
func ParseFieldType(raw string) (FieldType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "string", "text":
		return FieldTypeString, true
	case "story":
		return FieldTypeStory, true
	case "yes_no", "yes/no", "yesno", "boolean":
		return FieldTypeYesNo, true
	}
	return "", false
}

// Field is one question unit in a template
type Field struct {
	Name   string    `json:"name" bson:"name" yaml:"name"`
	Prompt string    `json:"prompt" bson:"prompt" yaml:"prompt"`
	Type   FieldType `json:"type" bson:"type" yaml:"type"`
}

// Template is the ordered field list an interview walks through
type Template struct {
	ID          string    `json:"id" bson:"_id,omitempty" yaml:"id,omitempty"`
	Name        string    `json:"name" bson:"name" yaml:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field   `json:"fields" bson:"fields" yaml:"fields"`
	IsActive    bool      `json:"isActive" bson:"isActive" yaml:"isActive"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" yaml:"-"`
}

// Validate checks the field list: at least one field, unique non-empty names, known types
func (t *Template) Validate() error {
	if len(t.Fields) == 0 {
		return fmt.Errorf("%w: template %q has no fields", ErrInvalidTemplate, t.Name)
	}
	seen := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: field %d has no name", ErrInvalidTemplate, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field name %q", ErrInvalidTemplate, f.Name)
		}
		seen[f.Name] = true
		if strings.TrimSpace(f.Prompt) == "" {
			return fmt.Errorf("%w: field %q has no prompt", ErrInvalidTemplate, f.Name)
		}
		if _, ok := ParseFieldType(string(f.Type)); !ok {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidTemplate, f.Name, f.Type)
		}
	}
	return nil
}

// Normalize rewrites field types to their canonical spelling
func (t *Template) Normalize() {
	for i := range t.Fields {
		if ft, ok := ParseFieldType(string(t.Fields[i].Type)); ok && ft != t.Fields[i].Type {
			t.Fields[i].Type = ft
		}
	}
}

// DisplayName turns a field identifier like "key_points" into "Key Points"
func DisplayName(fieldName string) string {
	words := strings.Fields(strings.ReplaceAll(fieldName, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
