package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, COALESCE(request_id, 0)`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &item.RequestID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	var requestID any
	if item.RequestID != 0 {
		requestID = item.RequestID
	}
	query := `INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.OwnerID, requestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOwnerItems возвращает вещи владельца. Пагинация: номер страницы = from/size.
func (db *DB) GetOwnerItems(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id`
	args := []any{ownerID}
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}
	return db.queryItems(ctx, query, args...)
}

// SearchItems ищет доступные вещи по подстроке имени или описания.
func (db *DB) SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (name LIKE '%' || ? || '%' OR description LIKE '%' || ? || '%')
              ORDER BY id`
	args := []any{text, text}
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}
	return db.queryItems(ctx, query, args...)
}

// GetItemsByRequest resolves the items created in response to a request.
// The relation is owned by the item side, hence the reverse lookup.
func (db *DB) GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id`
	return db.queryItems(ctx, query, requestID)
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
