package models

import "time"

type Location struct {
	ID          int
	Name        string
	IsPublished bool
	CreatedAt   time.Time
}
