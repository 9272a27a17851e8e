package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/waynje/django-sprint4/internal/models"
)

var ErrPostNotFound = errors.New("post not found")

// selectPosts is the base listing query: post columns plus the joined
// author/category/location display fields and the derived comment count.
func selectPosts() sq.SelectBuilder {
	return sq.Select(
		"p.id", "p.title", "p.text", "p.pub_date", "p.is_published",
		"p.author_id", "p.category_id", "p.location_id", "p.created_at",
		"u.username",
		"c.title", "c.slug", "c.is_published",
		"COALESCE(l.name, '')",
		"(SELECT COUNT(*) FROM comments WHERE post_id = p.id)",
	).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		Join("categories c ON c.id = p.category_id").
		LeftJoin("locations l ON l.id = p.location_id")
}

// visibleOnly narrows a post query to publicly visible posts: published,
// in a published category, with a pub_date not in the future. This is the
// single definition of the visibility invariant; every public listing
// goes through it.
func visibleOnly(b sq.SelectBuilder, now time.Time) sq.SelectBuilder {
	return b.
		Where(sq.Eq{"p.is_published": true}).
		Where(sq.Eq{"c.is_published": true}).
		Where(sq.LtOrEq{"p.pub_date": now.UTC()})
}

// countPosts is the base for COUNT queries. The category join is kept so
// visibleOnly can be applied to it unchanged.
func countPosts() sq.SelectBuilder {
	return sq.Select("COUNT(*)").
		From("posts p").
		Join("categories c ON c.id = p.category_id")
}

func queryPosts(b sq.SelectBuilder) ([]models.Post, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building post query: %w", err)
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func queryCount(b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var count int
	err = DB.QueryRow(query, args...).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var locationID sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.IsPublished,
		&p.AuthorID, &p.CategoryID, &locationID, &p.CreatedAt,
		&p.Author,
		&p.CategoryTitle, &p.CategorySlug, &p.CategoryPublished,
		&p.LocationName,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}
	if locationID.Valid {
		id := int(locationID.Int64)
		p.LocationID = &id
	}
	return &p, nil
}

// VisiblePosts returns one page of publicly visible posts, newest first.
func VisiblePosts(now time.Time, limit, offset int) ([]models.Post, error) {
	return queryPosts(visibleOnly(selectPosts(), now).
		OrderBy("p.pub_date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

// CountVisiblePosts returns the number of publicly visible posts.
func CountVisiblePosts(now time.Time) (int, error) {
	return queryCount(visibleOnly(countPosts(), now))
}

// VisiblePostsInCategory returns one page of visible posts in a category,
// newest first.
func VisiblePostsInCategory(categoryID int, now time.Time, limit, offset int) ([]models.Post, error) {
	return queryPosts(visibleOnly(selectPosts(), now).
		Where(sq.Eq{"p.category_id": categoryID}).
		OrderBy("p.pub_date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

// CountVisiblePostsInCategory returns the number of visible posts in a category.
func CountVisiblePostsInCategory(categoryID int, now time.Time) (int, error) {
	return queryCount(visibleOnly(countPosts(), now).
		Where(sq.Eq{"p.category_id": categoryID}))
}

// PostsByAuthor returns one page of ALL posts by an author, newest first.
// The visibility filter is deliberately not applied: the profile page is
// where authors manage their drafts and scheduled posts.
func PostsByAuthor(authorID int, limit, offset int) ([]models.Post, error) {
	return queryPosts(selectPosts().
		Where(sq.Eq{"p.author_id": authorID}).
		OrderBy("p.pub_date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

// CountPostsByAuthor returns the total number of posts by an author,
// drafts included.
func CountPostsByAuthor(authorID int) (int, error) {
	return queryCount(countPosts().Where(sq.Eq{"p.author_id": authorID}))
}

// PostByID returns a single post with its display fields, regardless of
// visibility. The caller decides whether the viewer may see it.
func PostByID(id int) (*models.Post, error) {
	query, args, err := selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building post query: %w", err)
	}

	post, err := scanPost(DB.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// CreatePost inserts a post and returns its id. The author is always the
// acting user, never taken from the client.
func CreatePost(title, text string, pubDate time.Time, isPublished bool, authorID, categoryID int, locationID *int) (int, error) {
	query, args, err := sq.Insert("posts").
		Columns("title", "text", "pub_date", "is_published", "author_id", "category_id", "location_id").
		Values(title, text, pubDate.UTC(), isPublished, authorID, categoryID, nullableID(locationID)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building post insert: %w", err)
	}

	res, err := DB.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// UpdatePost rewrites the editable fields of a post. Authorship checks
// happen in the handler before this is called.
func UpdatePost(id int, title, text string, pubDate time.Time, isPublished bool, categoryID int, locationID *int) error {
	query, args, err := sq.Update("posts").
		Set("title", title).
		Set("text", text).
		Set("pub_date", pubDate.UTC()).
		Set("is_published", isPublished).
		Set("category_id", categoryID).
		Set("location_id", nullableID(locationID)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building post update: %w", err)
	}

	res, err := DB.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost removes a post; its comments go with it via the cascade.
func DeletePost(id int) error {
	res, err := DB.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func nullableID(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}
