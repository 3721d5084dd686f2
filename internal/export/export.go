package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter пишет xlsx-отчёты в каталог экспорта.
type Exporter struct {
	dir    string
	logger *zerolog.Logger
}

func NewExporter(dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

var reportColumns = []string{"ID", "Вещь", "Арендатор", "Начало", "Конец", "Статус"}

// OwnerBookings creates an Excel report of all bookings of the owner's items,
// one row per booking, and returns the saved file path.
func (e *Exporter) OwnerBookings(ownerID int64, bookings []*models.BookingView) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Бронирования"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, title := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []any{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Start.Format("02.01.2006 15:04"),
			b.End.Format("02.01.2006 15:04"),
			string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "F", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_owner_%d_%s.xlsx", ownerID, time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int64("owner_id", ownerID).Msg("Excel file created")
	return filePath, nil
}
