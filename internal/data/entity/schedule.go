package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlotSchedule is a bookable time template under a slot. A fixed schedule
// carries its own start time; a flexible one requires the booker to supply
// a desired time. Grace is buffer time appended after the duration before
// the resource frees up again.
type SlotSchedule struct {
	BaseNoDelete
	SlotID      uuid.UUID       `db:"slot_id"`
	StartTime   *time.Time      `db:"start_time"`
	DurationMin int             `db:"duration_minutes"`
	GraceMin    int             `db:"grace_period_minutes"`
	Flexible    bool            `db:"flexible"`
	Recurring   bool            `db:"recurring"`
	Recurrence  map[string]any  `db:"recurrence_pattern"`
	Price       decimal.Decimal `db:"price"`
}

// Window is duration plus grace, the span a booking occupies.
func (s *SlotSchedule) Window() time.Duration {
	return time.Duration(s.DurationMin+s.GraceMin) * time.Minute
}
