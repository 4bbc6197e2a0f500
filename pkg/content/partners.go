package content

import (
	"time"

	"github.com/etm-murmansk/site/pkg/storage"
)

// Partner is a partner company shown on the main page
type Partner struct {
	ID          int64     `json:"id,string"`
	Name        string    `json:"name"`
	LogoURL     string    `json:"logo_url"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// orderSort sorts by sort_order regardless of the requested name
var orderSort = SortSpec{Default: "order", Fallback: "sort_order"}

// Partners is the partners collection
var Partners = Kind[Partner]{
	Resource: "partners",
	Messages: Messages{
		NotFound: "Партнёр не найден",
		Created:  "Партнёр создан",
		Updated:  "Партнёр обновлён",
		Deleted:  "Партнёр удалён",
	},
	Table: storage.Table[Partner]{
		Name:    "partners",
		Columns: []string{"name", "logo_url", "website", "description", "sort_order"},
		Scan: func(p *Partner) []any {
			return []any{&p.ID, &p.Name, &p.LogoURL, &p.Website, &p.Description, &p.Order, &p.CreatedAt, &p.UpdatedAt}
		},
		Values: func(p *Partner) []any {
			return []any{p.Name, p.LogoURL, p.Website, p.Description, p.Order}
		},
	},
	Sort:   orderSort,
	Decode: decodePartner,
}

func decodePartner(p Payload) (*Partner, error) {
	var v Violations
	v.Require(p, "name", "logo_url")
	v.MinLength(p, "name", 2, "Название должно содержать минимум 2 символа")
	v.URL(p, "logo_url", "Некорректный URL логотипа")
	v.URL(p, "website", "Некорректный URL сайта")

	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Partner{
		Name:        Clean(p.String("name")),
		LogoURL:     Clean(p.String("logo_url")),
		Website:     Clean(p.String("website")),
		Description: Clean(p.String("description")),
		Order:       p.Int("order", 1),
	}, nil
}
