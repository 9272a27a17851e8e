package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/waynje/django-sprint4/internal/models"
)

// PublishedLocations lists the locations offered on the post form.
func PublishedLocations() ([]models.Location, error) {
	query, args, err := sq.Select("id", "name", "is_published", "created_at").
		From("locations").
		Where(sq.Eq{"is_published": true}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building locations query: %w", err)
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
