package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestItem(t *testing.T, db *DB, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:        name,
		Description: name + " description",
		Available:   available,
		OwnerID:     ownerID,
	}
	require.NoError(t, db.CreateItem(context.Background(), item))
	return item
}

func createTestBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		Start:    start,
		End:      end,
		ItemID:   itemID,
		BookerID: bookerID,
		Status:   status,
	}
	require.NoError(t, db.CreateBooking(context.Background(), booking))
	return booking
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	tempDir := t.TempDir()

	dbPath := filepath.Join(tempDir, "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)

	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestCreateTables_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := createTables(db.DB)
	require.NoError(t, err)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.PingContext(context.Background())
	assert.NoError(t, err)
}
