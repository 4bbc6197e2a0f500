package content

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/etm-murmansk/site/pkg/apperr"
)

// Payload is a decoded JSON request body
type Payload map[string]interface{}

// ReadPayload decodes a JSON object body. An empty body is an empty payload;
// anything that is not a JSON object is rejected with "Некорректный JSON".
func ReadPayload(r io.Reader) (Payload, error) {
	if r == nil {
		return Payload{}, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, apperr.MsgInvalidJSON, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, apperr.MsgInvalidJSON, err)
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Has reports whether key is present and not null
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Blank reports whether a required field has no usable text: absent, null,
// or any value whose text form is empty after trimming. Objects, arrays and
// false are blank since String renders them as "".
func (p Payload) Blank(key string) bool {
	return strings.TrimSpace(p.String(key)) == ""
}

// String returns the field as text. Numbers are formatted and true is "1";
// other types yield "".
func (p Payload) String(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "1"
		}
	}
	return ""
}

// Int returns the field as an integer. Absent or null fields yield def,
// unparseable ones yield 0.
func (p Payload) Int(key string, def int) int {
	if !p.Has(key) {
		return def
	}
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if ferr != nil {
				return 0
			}
			return int(f)
		}
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Strings returns the string elements of an array field. Anything that is
// not an array yields an empty list.
func (p Payload) Strings(key string) []string {
	items, ok := p[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Clean trims s and escapes HTML special characters
func Clean(s string) string {
	return strings.TrimSpace(htmlEscaper.Replace(s))
}

// ValidURL reports whether s is an absolute URL with a scheme and host.
// The empty string is accepted.
func ValidURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != "" && !strings.ContainsAny(s, " \t\n")
}

// Violations collects field rule failures
type Violations []string

// Add records a failure
func (v *Violations) Add(msg string) {
	*v = append(*v, msg)
}

// Require records a failure for every blank field
func (v *Violations) Require(p Payload, fields ...string) {
	for _, f := range fields {
		if p.Blank(f) {
			v.Add("Поле '" + f + "' обязательно")
		}
	}
}

// MinLength records msg when a present field is shorter than n characters
func (v *Violations) MinLength(p Payload, field string, n int, msg string) {
	if p.Has(field) && utf8.RuneCountInString(strings.TrimSpace(p.String(field))) < n {
		v.Add(msg)
	}
}

// URL records msg when a non-empty field is not a valid URL
func (v *Violations) URL(p Payload, field, msg string) {
	if s := strings.TrimSpace(p.String(field)); s != "" && !ValidURL(s) {
		v.Add(msg)
	}
}

// Err returns every failure joined by ", " as a validation error, or nil
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return apperr.Validation(strings.Join(v, ", "))
}
