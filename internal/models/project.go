package models

import "time"

type Project struct {
	ID          string
	Title       string
	Description string
	Link        *string
	ImageURL    *string
	Tech        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Testimonial struct {
	ID          string
	UserID      string
	AuthorName  string
	Description string
	Approved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
