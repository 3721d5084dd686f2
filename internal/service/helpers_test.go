package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestServices(t *testing.T) (*database.DB, *UserService, *ItemService, *BookingService, *RequestService) {
	t.Helper()
	db := newTestDB(t)
	logger := zerolog.Nop()
	return db,
		NewUserService(db, &logger),
		NewItemService(db, &logger),
		NewBookingService(db, &logger),
		NewRequestService(db, &logger)
}

func mustCreateUser(t *testing.T, users *UserService, name, email string) *models.User {
	t.Helper()
	user, err := users.Create(context.Background(), &models.User{Name: name, Email: email})
	require.NoError(t, err)
	return user
}

func mustCreateItem(t *testing.T, items *ItemService, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item, err := items.AddItem(context.Background(), ownerID, ItemInput{
		Name:        name,
		Description: name + " description",
		Available:   &available,
	})
	require.NoError(t, err)
	return item
}

func timePtr(t time.Time) *time.Time { return &t }

func int64Ptr(v int64) *int64 { return &v }
