package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/database"
	"shareit/internal/models"
)

// Нулевой id — это признак отсутствующего значения, а не ссылка;
// такие запросы отклоняются до обращения к хранилищу.

func resolveUser(ctx context.Context, db *database.DB, id int64) (*models.User, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := db.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func resolveItem(ctx context.Context, db *database.DB, id int64) (*models.Item, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: item id is required", ErrValidation)
	}
	item, err := db.GetItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func validatePage(page *models.Page) error {
	if page == nil {
		return nil
	}
	if page.From < 0 {
		return fmt.Errorf("%w: 'from' must be >= 0, got %d", ErrValidation, page.From)
	}
	if page.Size <= 0 {
		return fmt.Errorf("%w: 'size' must be > 0, got %d", ErrValidation, page.Size)
	}
	return nil
}
