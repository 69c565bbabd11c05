package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON serializes the schema as a list of textual pairs.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	raw := make([]string, len(s))
	for i, p := range s {
		if p.From == "" || p.To == "" {
			return nil, fmt.Errorf("pair %d: empty key", i)
		}
		raw[i] = p.String()
	}

	return json.Marshal(raw)
}

// UnmarshalJSON deserializes the schema from a list of textual pairs.
// A single comma separated string is accepted as well.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		var joined string
		if errStr := json.Unmarshal(data, &joined); errStr != nil {
			return err
		}
		raw = strings.FieldsFunc(joined, func(r rune) bool { return r == ',' })
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}
