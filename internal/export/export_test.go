package export

import (
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOwnerBookings(t *testing.T) {
	logger := zerolog.Nop()
	exporter := NewExporter(t.TempDir(), &logger)

	now := time.Now()
	bookings := []*models.BookingView{
		{
			ID:     1,
			Start:  now,
			End:    now.Add(24 * time.Hour),
			Status: models.StatusApproved,
			Booker: models.UserRef{ID: 2, Name: "Booker"},
			Item:   models.ItemRef{ID: 3, Name: "Drill"},
		},
	}

	path, err := exporter.OwnerBookings(1, bookings)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := "Бронирования"
	header, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	item, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Drill", item)

	booker, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Booker", booker)

	status, err := f.GetCellValue(sheet, "F2")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", status)
}

func TestOwnerBookings_EmptyList(t *testing.T) {
	logger := zerolog.Nop()
	exporter := NewExporter(t.TempDir(), &logger)

	path, err := exporter.OwnerBookings(1, nil)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
