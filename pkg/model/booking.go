package model

import (
	"time"
)

// PublicTitle is the only title ever shown to unauthenticated visitors.
const PublicTitle = "Occupied"

// Booking is a reserved time interval on the property's calendar.
// Intervals are half-open: [Start, End). Start is inclusive, End exclusive,
// so a booking ending at T does not collide with one starting at T.
type Booking struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=1,max=200"`
	Start       time.Time `json:"start" bson:"start" validate:"required"`
	End         time.Time `json:"end" bson:"end" validate:"required,gtfield=Start"`
	AllDay      bool      `json:"allDay" bson:"all_day"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedByID string    `json:"createdById,omitempty" bson:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty" bson:"created_at" validate:"omitempty"`
}

// BookingInput is the request body for create and update. On update, nil
// fields keep the stored values; times travel as strings so that malformed
// values can be rejected with a precise failure instead of a decode error.
type BookingInput struct {
	Title  *string `json:"title,omitempty"`
	Start  *string `json:"start,omitempty"`
	End    *string `json:"end,omitempty"`
	AllDay *bool   `json:"allDay,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// PublicBooking is the redacted view served to unauthenticated visitors:
// occupancy only, never the real title or the notes.
type PublicBooking struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"allDay"`
}

// Public projects the booking into its redacted form.
func (b *Booking) Public() PublicBooking {
	return PublicBooking{
		ID:     b.ID,
		Title:  PublicTitle,
		Start:  b.Start,
		End:    b.End,
		AllDay: b.AllDay,
	}
}

// Overlaps reports whether [start1, end1) and [start2, end2) intersect.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
