package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationDenied    ReservationStatus = "denied"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationDenied,
		ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

// Active means the reservation still holds a waitlist slot.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationApproved
}

// Reservation is one user's place in the waitlist for a book. Cancelled and
// denied rows are kept, never deleted.
type Reservation struct {
	ID               string            `bson:"_id,omitempty" json:"id"`
	UserID           string            `bson:"user_id" json:"user_id"`
	BookID           string            `bson:"book_id" json:"book_id"`
	Status           ReservationStatus `bson:"status" json:"status"`
	WaitlistPosition int               `bson:"waitlist_position" json:"waitlist_position"`
	RequestDate      time.Time         `bson:"request_date" json:"request_date"`
	ApprovalDate     *time.Time        `bson:"approval_date,omitempty" json:"approval_date,omitempty"`
	DueDate          *time.Time        `bson:"due_date,omitempty" json:"due_date,omitempty"`
	ReturnDate       *time.Time        `bson:"return_date,omitempty" json:"return_date,omitempty"`
}
