package casefile

import (
	"fmt"
	"strings"
)

// FieldType enumerates the input kinds a required-info field may declare.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
)

// Field describes one required-info entry of the intake form. The schema is
// runtime data returned by the reasoning engine, not a compile-time type, so
// it is validated at the boundary before any value is accepted.
type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`
	Type        FieldType `json:"type"`
}

// ValidateFields checks a required-info schema returned by the engine.
// Unknown field types, blank ids and duplicate ids are rejected.
func ValidateFields(fields []Field) error {
	if len(fields) == 0 {
		return fmt.Errorf("required-info schema is empty")
	}
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		id := strings.TrimSpace(f.ID)
		if id == "" {
			return fmt.Errorf("field %d: blank id", i)
		}
		if seen[id] {
			return fmt.Errorf("field %d: duplicate id %q", i, id)
		}
		seen[id] = true
		switch f.Type {
		case FieldText, FieldDate, FieldNumber, FieldTextarea:
		default:
			return fmt.Errorf("field %q: unknown type %q", id, f.Type)
		}
	}
	return nil
}

// HasField reports whether the schema declares the given field id.
func HasField(fields []Field, id string) bool {
	for _, f := range fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FilterFormData drops values whose keys are not declared by the schema.
// Re-classification replaces the key space: values for surviving keys are
// preserved, the rest are discarded.
func FilterFormData(form map[string]string, fields []Field) map[string]string {
	out := make(map[string]string, len(form))
	for _, f := range fields {
		if v, ok := form[f.ID]; ok {
			out[f.ID] = v
		}
	}
	return out
}

// MissingFields returns the ids of declared fields with no non-blank value.
// Finalize uses this as a soft check only.
func MissingFields(form map[string]string, fields []Field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(form[f.ID]) == "" {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// ApplySuggestions seeds form values from the classification's best-effort
// suggestions. Nil entries (low-confidence fields) and keys outside the
// schema are skipped; existing user values are never overwritten.
func ApplySuggestions(form map[string]string, c *Classification) {
	if c == nil || c.SuggestedValues == nil {
		return
	}
	for id, v := range c.SuggestedValues {
		if v == nil || *v == "" {
			continue
		}
		if !HasField(c.RequiredInfo, id) {
			continue
		}
		if _, exists := form[id]; exists {
			continue
		}
		form[id] = *v
	}
}
