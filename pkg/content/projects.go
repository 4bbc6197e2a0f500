package content

import (
	"time"

	"github.com/etm-murmansk/site/pkg/storage"
)

// Project is a portfolio entry. Description holds the stored editor HTML;
// only SafeDescription is serialized.
type Project struct {
	ID              int64     `json:"id,string"`
	Title           string    `json:"title"`
	Year            int       `json:"year"`
	Category        string    `json:"category"`
	Client          string    `json:"client"`
	Location        string    `json:"location"`
	Description     RichText  `json:"-"`
	SafeDescription SafeHTML  `json:"description"`
	ImageURL        string    `json:"image_url"`
	Tags            Tags      `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Projects is the projects collection
var Projects = Kind[Project]{
	Resource: "projects",
	Messages: Messages{
		NotFound: "Проект не найден",
		Created:  "Проект создан",
		Updated:  "Проект обновлён",
		Deleted:  "Проект удалён",
	},
	Table: storage.Table[Project]{
		Name:    "projects",
		Columns: []string{"title", "year", "category", "client", "location", "description", "image_url", "tags"},
		Scan: func(p *Project) []any {
			return []any{&p.ID, &p.Title, &p.Year, &p.Category, &p.Client, &p.Location,
				&p.Description, &p.ImageURL, &p.Tags, &p.CreatedAt, &p.UpdatedAt}
		},
		Values: func(p *Project) []any {
			return []any{p.Title, p.Year, p.Category, p.Client, p.Location,
				string(p.Description), p.ImageURL, p.Tags}
		},
	},
	Sort: SortSpec{
		Default: "-year",
		Columns: map[string]string{
			"year":       "year",
			"title":      "title",
			"category":   "category",
			"created_at": "created_at",
			"updated_at": "updated_at",
		},
		Fallback: "year",
	},
	Decode:  decodeProject,
	Present: presentProject,
}

func decodeProject(p Payload) (*Project, error) {
	var v Violations
	v.Require(p, "title", "year", "category")
	v.MinLength(p, "title", 3, "Название должно содержать минимум 3 символа")

	year := p.Int("year", 0)
	if year < 2000 || year > 2100 {
		v.Add("Некорректный год")
	}
	v.URL(p, "image_url", "Некорректный URL изображения")

	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Project{
		Title:       Clean(p.String("title")),
		Year:        year,
		Category:    Clean(p.String("category")),
		Client:      Clean(p.String("client")),
		Location:    Clean(p.String("location")),
		Description: RichText(p.String("description")),
		ImageURL:    Clean(p.String("image_url")),
		Tags:        Tags(p.Strings("tags")),
	}, nil
}

func presentProject(p *Project, s *Sanitizer) {
	p.SafeDescription = s.Sanitize(p.Description)
}
