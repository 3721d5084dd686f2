package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewBookingService(db *database.DB, logger *zerolog.Logger) *BookingService {
	return &BookingService{db: db, logger: logger}
}

// BookingInput is the creation payload. Pointer fields distinguish an
// omitted value from a zero one.
type BookingInput struct {
	ItemID *int64     `json:"itemId"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}

// CreateBooking validates and persists a new booking in WAITING status.
// Checks run in a fixed order and the first failure wins; the single write
// happens only after the whole chain passes.
func (s *BookingService) CreateBooking(ctx context.Context, actorID int64, input BookingInput) (*models.BookingView, error) {
	now := time.Now()

	if err := validateBookingDates(input, now); err != nil {
		return nil, err
	}

	if input.ItemID == nil {
		return nil, fmt.Errorf("%w: booking has no item id", ErrNotFound)
	}
	item, err := resolveItem(ctx, s.db, *input.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: item %d is not available", ErrValidation, item.ID)
	}
	// Владелец не может бронировать свою вещь.
	if item.OwnerID == actorID {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, item.ID)
	}

	booker, err := resolveUser(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Start:    *input.Start,
		End:      *input.End,
		ItemID:   item.ID,
		BookerID: booker.ID,
		Status:   models.StatusWaiting,
	}
	if err := s.db.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")

	return &models.BookingView{
		ID:     booking.ID,
		Start:  booking.Start,
		End:    booking.End,
		Status: booking.Status,
		Booker: models.UserRef{ID: booker.ID, Name: booker.Name},
		Item:   models.ItemRef{ID: item.ID, Name: item.Name},
	}, nil
}

func validateBookingDates(input BookingInput, now time.Time) error {
	if input.Start == nil || input.End == nil {
		return fmt.Errorf("%w: booking dates are required", ErrValidation)
	}
	start, end := *input.Start, *input.End
	if start.Equal(end) {
		return fmt.Errorf("%w: booking start equals its end", ErrValidation)
	}
	if start.After(end) {
		return fmt.Errorf("%w: booking start is after its end", ErrValidation)
	}
	if start.Before(now) {
		return fmt.Errorf("%w: booking start is in the past", ErrValidation)
	}
	if end.Before(now) {
		return fmt.Errorf("%w: booking end is in the past", ErrValidation)
	}
	return nil
}

// UpdateBooking moves a WAITING booking to APPROVED or REJECTED. Only the
// item's owner may decide; re-applying the same terminal status is rejected.
func (s *BookingService) UpdateBooking(ctx context.Context, actorID, bookingID int64, approved bool) (*models.BookingView, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	actor, err := resolveUser(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != booking.ItemOwnerID {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}

	target := models.StatusRejected
	if approved {
		target = models.StatusApproved
	}
	if booking.Status == target {
		return nil, fmt.Errorf("%w: booking %d is already %s", ErrValidation, bookingID, target)
	}

	if err := s.db.UpdateBookingStatus(ctx, bookingID, target); err != nil {
		return nil, err
	}
	booking.Status = target

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", string(target)).
		Msg("booking status updated")

	return toBookingView(booking), nil
}

// GetBooking returns a booking to its booker or to the item's owner.
// Anyone else gets not found.
func (s *BookingService) GetBooking(ctx context.Context, actorID, bookingID int64) (*models.BookingView, error) {
	actor, err := resolveUser(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.ID != booking.BookerID && actor.ID != booking.ItemOwnerID {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	return toBookingView(booking), nil
}

// ListBookings resolves a symbolic state filter plus an actor role into a
// sorted (end date descending), optionally paged list of bookings. The
// filter is evaluated against a single instant taken at call time.
func (s *BookingService) ListBookings(
	ctx context.Context,
	actorID int64,
	role models.BookingRole,
	stateRaw string,
	page *models.Page,
) ([]*models.BookingView, error) {
	if _, err := resolveUser(ctx, s.db, actorID); err != nil {
		return nil, err
	}

	state, ok := models.ParseBookingState(stateRaw)
	if !ok {
		return nil, ErrUnsupportedState
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	rows, err := s.db.ListBookings(ctx, actorID, role, state, time.Now(), page)
	if err != nil {
		return nil, err
	}

	views := make([]*models.BookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toBookingView(row))
	}
	return views, nil
}

func (s *BookingService) findBooking(ctx context.Context, bookingID int64) (*database.BookingRow, error) {
	if bookingID == 0 {
		return nil, fmt.Errorf("%w: booking id is required", ErrValidation)
	}
	booking, err := s.db.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func toBookingView(row *database.BookingRow) *models.BookingView {
	return &models.BookingView{
		ID:     row.ID,
		Start:  row.Start,
		End:    row.End,
		Status: row.Status,
		Booker: models.UserRef{ID: row.BookerID, Name: row.BookerName},
		Item:   models.ItemRef{ID: row.ItemID, Name: row.ItemName},
	}
}
