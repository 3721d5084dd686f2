package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

// CommentRow is a comment with the author's name resolved in the same query.
type CommentRow struct {
	models.Comment
	AuthorName string
}

// GetCommentsByItem возвращает все отзывы к вещи в порядке добавления.
func (db *DB) GetCommentsByItem(ctx context.Context, itemID int64) ([]*CommentRow, error) {
	query := `SELECT c.id, c.text, c.item_id, c.author_id, c.created, u.name
              FROM comments c JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ? ORDER BY c.id`
	rows, err := db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*CommentRow
	for rows.Next() {
		c := &CommentRow{}
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.Created, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
