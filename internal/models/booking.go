package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled присутствует в словаре статусов, но ни одна операция его не выставляет.
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	ItemID   int64         `json:"-"`
	BookerID int64         `json:"-"`
	Status   BookingStatus `json:"status"`
}

// BookingState is a symbolic filter over bookings relative to "now" and/or status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState matches an exact state token. Callers normalize case.
func ParseBookingState(raw string) (BookingState, bool) {
	switch BookingState(raw) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return BookingState(raw), true
	}
	return "", false
}

// BookingRole determines which relationship scopes a booking query to the actor.
type BookingRole int

const (
	RoleBooker BookingRole = iota
	RoleOwner
)
