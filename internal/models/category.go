package models

import "time"

type Category struct {
	ID          int
	Title       string
	Slug        string
	Description string
	IsPublished bool
	CreatedAt   time.Time
}
