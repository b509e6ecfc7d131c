package domain

import "time"

// Project represents a unit of content moving through the pipeline.
// The zero value carries no identity; projects are created server-side and
// first observed through a refresh.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	Stage     Stage     `json:"stage"`
	Duration  string    `json:"duration,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Category  string    `json:"category,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actionable reports whether further pipeline actions may be offered for
// the project. A cancelled status or stage is terminal.
func (p Project) Actionable() bool {
	return !p.Status.Terminal() && !p.Stage.Terminal()
}

// Equal reports full structural equality. Selection swapping across a
// refresh compares whole contents, not just the id, so any field change is
// observable.
func (p Project) Equal(o Project) bool {
	return p.ID == o.ID &&
		p.Title == o.Title &&
		p.Status == o.Status &&
		p.Stage == o.Stage &&
		p.Duration == o.Duration &&
		p.Thumbnail == o.Thumbnail &&
		p.Category == o.Category &&
		p.UpdatedAt.Equal(o.UpdatedAt)
}

// Asset represents a reusable media asset exposed by the worker. Binary
// content stays server-side; only descriptive fields are cached.
type Asset struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url,omitempty"`
}
