package content

import (
	"strings"
	"time"

	"github.com/etm-murmansk/site/pkg/storage"
)

const dateLayout = "2006-01-02"

// Certificate is a license or certificate with its scan
type Certificate struct {
	ID          int64     `json:"id,string"`
	Title       string    `json:"title"`
	Number      string    `json:"number"`
	IssuedDate  *string   `json:"issued_date"`
	ExpiryDate  *string   `json:"expiry_date"`
	ImageURL    string    `json:"image_url"`
	PDFURL      string    `json:"pdf_url"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Certificates is the certificates collection
var Certificates = Kind[Certificate]{
	Resource: "certificates",
	Messages: Messages{
		NotFound: "Сертификат не найден",
		Created:  "Сертификат создан",
		Updated:  "Сертификат обновлён",
		Deleted:  "Сертификат удалён",
	},
	Table: storage.Table[Certificate]{
		Name:    "certificates",
		Columns: []string{"title", "number", "issued_date", "expiry_date", "image_url", "pdf_url", "description", "sort_order"},
		Scan: func(c *Certificate) []any {
			return []any{&c.ID, &c.Title, &c.Number, &c.IssuedDate, &c.ExpiryDate,
				&c.ImageURL, &c.PDFURL, &c.Description, &c.Order, &c.CreatedAt, &c.UpdatedAt}
		},
		Values: func(c *Certificate) []any {
			return []any{c.Title, c.Number, c.IssuedDate, c.ExpiryDate,
				c.ImageURL, c.PDFURL, c.Description, c.Order}
		},
	},
	Sort:   orderSort,
	Decode: decodeCertificate,
}

func decodeCertificate(p Payload) (*Certificate, error) {
	var v Violations
	v.Require(p, "title", "number", "image_url")
	v.MinLength(p, "title", 3, "Название должно содержать минимум 3 символа")
	v.URL(p, "image_url", "Некорректный URL изображения")
	v.URL(p, "pdf_url", "Некорректный URL PDF")

	issued, ok := optionalDate(p, "issued_date")
	if !ok {
		v.Add("Некорректная дата выдачи")
	}
	expiry, ok := optionalDate(p, "expiry_date")
	if !ok {
		v.Add("Некорректная дата окончания")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Certificate{
		Title:       Clean(p.String("title")),
		Number:      Clean(p.String("number")),
		IssuedDate:  issued,
		ExpiryDate:  expiry,
		ImageURL:    Clean(p.String("image_url")),
		PDFURL:      Clean(p.String("pdf_url")),
		Description: Clean(p.String("description")),
		Order:       p.Int("order", 1),
	}, nil
}

// optionalDate returns nil for an empty field and false for a value that is
// not YYYY-MM-DD.
func optionalDate(p Payload, field string) (*string, bool) {
	s := strings.TrimSpace(p.String(field))
	if s == "" {
		return nil, true
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return nil, false
	}
	return &s, true
}
