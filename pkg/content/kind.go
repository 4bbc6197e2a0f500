package content

import (
	"strings"

	"github.com/etm-murmansk/site/pkg/storage"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Messages are the client-facing texts of one collection
type Messages struct {
	NotFound string
	Created  string
	Updated  string
	Deleted  string
}

// SortSpec maps the sort query parameter onto a column
type SortSpec struct {
	// Default is used when the parameter is empty, e.g. "-year".
	Default string
	// Columns maps accepted names to columns. Unknown names use Fallback.
	Columns  map[string]string
	Fallback string
}

// Parse returns the column and direction for raw. A leading "-" selects
// descending order.
func (s SortSpec) Parse(raw string) (column string, desc bool) {
	if raw == "" {
		raw = s.Default
	}
	name := raw
	if strings.HasPrefix(raw, "-") {
		desc = true
		name = raw[1:]
	}
	if col, ok := s.Columns[name]; ok {
		return col, desc
	}
	return s.Fallback, desc
}

// ListParams are the paging and sort parameters of a list request
type ListParams struct {
	Limit  int
	Offset int
	Sort   string
}

// Query clamps the paging values and resolves the sort column
func (s SortSpec) Query(p ListParams) storage.ListQuery {
	limit := p.Limit
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if limit < 0 {
		limit = 0
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	column, desc := s.Parse(p.Sort)
	return storage.ListQuery{OrderBy: column, Desc: desc, Limit: limit, Offset: offset}
}

// Kind describes one content collection
type Kind[T any] struct {
	// Resource is the path segment, e.g. "projects".
	Resource string
	Messages Messages
	Table    storage.Table[T]
	Sort     SortSpec
	// Decode validates a payload and builds the record to store.
	Decode func(p Payload) (*T, error)
	// Present prepares a stored record for serialization.
	Present func(rec *T, s *Sanitizer)
}
