package content

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Tags is a list of project tags stored as a JSON array string
type Tags []string

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(t)); err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Scan implements sql.Scanner. Malformed stored values read as no tags.
func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		*t = Tags{}
		return nil
	}
	*t = out
	return nil
}

// MarshalJSON renders nil as an empty array
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
