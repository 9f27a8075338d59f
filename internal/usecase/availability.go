package usecase

import (
	"time"

	"slot-booking/internal/data/entity"
)

// The availability engine is deliberately pure: it works on a caller-supplied
// snapshot of bookings so the booking orchestrator can run it under its row
// lock and tests can run it with no store at all.

// ResolveBookingTime picks the time a booking against the schedule would
// occupy: the schedule's fixed start time, or the caller's desired time for
// flexible schedules. Desired time is ignored on fixed schedules.
func ResolveBookingTime(schedule *entity.SlotSchedule, desiredTime *time.Time) (time.Time, error) {
	if schedule.Flexible {
		if desiredTime == nil {
			return time.Time{}, ErrMissingDesiredTime
		}
		return *desiredTime, nil
	}
	if schedule.StartTime == nil {
		return time.Time{}, ErrScheduleUnavailable
	}
	return *schedule.StartTime, nil
}

// IsScheduleAvailable reports whether the schedule can accept a booking at
// the resolved candidate time, given the existing bookings snapshot. Only
// pending/confirmed bookings on the same schedule occupy their interval.
// Intervals are half-open [start, start+duration+grace): two of them overlap
// iff a < d && c < b.
func IsScheduleAvailable(schedule *entity.SlotSchedule, desiredTime *time.Time, existing []*entity.Booking) (bool, error) {
	start, err := ResolveBookingTime(schedule, desiredTime)
	if err != nil {
		return false, err
	}

	window := schedule.Window()
	end := start.Add(window)

	for _, booking := range existing {
		if booking.ScheduleID != schedule.ID || !booking.Occupies() {
			continue
		}
		occupiedStart := booking.ResolvedTime
		occupiedEnd := occupiedStart.Add(window)
		if start.Before(occupiedEnd) && occupiedStart.Before(end) {
			return false, nil
		}
	}

	return true, nil
}
