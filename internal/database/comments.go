package database

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/waynje/django-sprint4/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

func selectComments() sq.SelectBuilder {
	return sq.Select("co.id", "co.post_id", "co.author_id", "co.text", "co.created_at", "u.username").
		From("comments co").
		Join("users u ON u.id = co.author_id")
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.Author)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CommentsForPost returns all comments on a post, oldest first.
func CommentsForPost(postID int) ([]models.Comment, error) {
	query, args, err := selectComments().
		Where(sq.Eq{"co.post_id": postID}).
		OrderBy("co.created_at ASC", "co.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building comments query: %w", err)
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// CommentByID resolves a single comment.
func CommentByID(id int) (*models.Comment, error) {
	query, args, err := selectComments().Where(sq.Eq{"co.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building comment query: %w", err)
	}

	comment, err := scanComment(DB.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// CreateComment inserts a comment. Post and author are resolved by the
// handler, never taken from the client.
func CreateComment(postID, authorID int, text string) (int, error) {
	query, args, err := sq.Insert("comments").
		Columns("post_id", "author_id", "text").
		Values(postID, authorID, text).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building comment insert: %w", err)
	}

	res, err := DB.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// UpdateComment rewrites a comment's text.
func UpdateComment(id int, text string) error {
	res, err := DB.Exec("UPDATE comments SET text = ? WHERE id = ?", text, id)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteComment removes a comment.
func DeleteComment(id int) error {
	res, err := DB.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
