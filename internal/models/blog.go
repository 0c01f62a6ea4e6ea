package models

import "time"

type Blog struct {
	ID         string
	Title      string
	Slug       string
	Content    string
	CategoryID *string
	ImageURL   *string
	ShareCount int64
	ViewCount  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
