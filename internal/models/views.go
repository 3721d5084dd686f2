package models

import "time"

// Views are the assembled response shapes. References to users and items are
// resolved by id at read time, never embedded copies.

type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

type ItemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingView struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Booker UserRef       `json:"booker"`
	Item   ItemRef       `json:"item"`
}

// BookingRef is the short booking form attached to an owner's item view.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

type CommentView struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	RequestID   int64         `json:"requestId,omitempty"`
	LastBooking *BookingRef   `json:"lastBooking,omitempty"`
	NextBooking *BookingRef   `json:"nextBooking,omitempty"`
	Comments    []CommentView `json:"comments"`
}

type RequestView struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	Items       []Item    `json:"items"`
}
