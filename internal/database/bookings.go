package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `b.id, b.start_date, b.end_date, b.item_id, b.booker_id, b.status`

// BookingRow is a booking with its references resolved in the same query:
// the item's name and owner plus the booker's name. Lifecycle checks need
// the owner id; view assembly needs the names.
type BookingRow struct {
	models.Booking
	ItemName    string
	ItemOwnerID int64
	BookerName  string
}

const bookingRowColumns = bookingColumns + `, i.name, i.owner_id, u.name`

const bookingRowJoins = ` JOIN items i ON i.id = b.item_id JOIN users u ON u.id = b.booker_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBookingRow(row interface{ Scan(...any) error }) (*BookingRow, error) {
	r := &BookingRow{}
	err := row.Scan(&r.ID, &r.Start, &r.End, &r.ItemID, &r.BookerID, &r.Status,
		&r.ItemName, &r.ItemOwnerID, &r.BookerName)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		booking.Start, booking.End, booking.ItemID, booking.BookerID, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*BookingRow, error) {
	query := `SELECT ` + bookingRowColumns + ` FROM bookings b` + bookingRowJoins + ` WHERE b.id = ?`
	booking, err := scanBookingRow(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBookings is the single parameterized query behind every
// (role x state filter x paged/unpaged) combination. The actor scopes the
// query either as booker or as item owner; the state filter is evaluated
// against the caller-supplied instant; the sort is always end date
// descending. With a page, the offset is (from/size)*size.
func (db *DB) ListBookings(
	ctx context.Context,
	actorID int64,
	role models.BookingRole,
	state models.BookingState,
	now time.Time,
	page *models.Page,
) ([]*BookingRow, error) {
	query := `SELECT ` + bookingRowColumns + ` FROM bookings b` + bookingRowJoins + ` WHERE `

	var args []any
	if role == models.RoleOwner {
		query += `i.owner_id = ?`
	} else {
		query += `b.booker_id = ?`
	}
	args = append(args, actorID)

	switch state {
	case models.StateAll:
		// без дополнительного фильтра
	case models.StateCurrent:
		query += ` AND datetime(b.start_date) < datetime(?) AND datetime(b.end_date) > datetime(?)`
		args = append(args, now, now)
	case models.StatePast:
		query += ` AND datetime(b.end_date) < datetime(?)`
		args = append(args, now)
	case models.StateFuture:
		query += ` AND datetime(b.start_date) > datetime(?)`
		args = append(args, now)
	case models.StateWaiting:
		query += ` AND b.status = ?`
		args = append(args, models.StatusWaiting)
	case models.StateRejected:
		query += ` AND b.status = ?`
		args = append(args, models.StatusRejected)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, state)
	}

	query += ` ORDER BY datetime(b.end_date) DESC`
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*BookingRow
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetLastBooking returns the approved booking on the item with the latest
// start before the given instant, or ErrNotFound.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = ? AND datetime(b.start_date) < datetime(?)
              ORDER BY datetime(b.end_date) DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// GetNextBooking returns the approved booking on the item with the earliest
// start after the given instant, or ErrNotFound.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = ? AND datetime(b.start_date) > datetime(?)
              ORDER BY datetime(b.start_date) ASC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// HasCompletedBooking reports whether the booker has at least one booking of
// the item that ended before the given instant.
func (db *DB) HasCompletedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings b
              WHERE b.item_id = ? AND b.booker_id = ? AND datetime(b.end_date) < datetime(?)`
	var count int
	if err := db.QueryRowContext(ctx, query, itemID, bookerID, now).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return count > 0, nil
}
