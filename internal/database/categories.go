package database

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/waynje/django-sprint4/internal/models"
)

var ErrCategoryNotFound = errors.New("category not found")

func selectCategories() sq.SelectBuilder {
	return sq.Select("id", "title", "slug", "description", "is_published", "created_at").
		From("categories")
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.IsPublished, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PublishedCategoryBySlug resolves a category by slug. Unpublished
// categories are treated exactly like absent ones: the whole category
// page disappears even if individual posts under it are published.
func PublishedCategoryBySlug(slug string) (*models.Category, error) {
	query, args, err := selectCategories().
		Where(sq.Eq{"slug": slug}).
		Where(sq.Eq{"is_published": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building category query: %w", err)
	}

	category, err := scanCategory(DB.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// PublishedCategories lists the categories offered on the post form.
func PublishedCategories() ([]models.Category, error) {
	query, args, err := selectCategories().
		Where(sq.Eq{"is_published": true}).
		OrderBy("title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building categories query: %w", err)
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}
