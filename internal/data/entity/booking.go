package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking reserves a schedule's interval for a payer wallet. ResolvedTime is
// the schedule's fixed start time, or the caller-supplied desired time for
// flexible schedules. TransactionID links the payment when the schedule is
// priced.
type Booking struct {
	BaseNoDelete
	WalletID      uuid.UUID      `db:"wallet_id"`
	ScheduleID    uuid.UUID      `db:"schedule_id"`
	ResolvedTime  time.Time      `db:"resolved_time"`
	Status        BookingStatus  `db:"status"`
	TransactionID *uuid.UUID     `db:"transaction_id"`
	Details       map[string]any `db:"details"`
}

// Occupies reports whether the booking still holds its interval against new
// candidates.
func (b *Booking) Occupies() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
