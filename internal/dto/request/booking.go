package request

import "time"

type CreateBookingRequest struct {
	ScheduleID string `json:"schedule_id" validate:"required,uuid4"`

	// WalletID is optional; the caller's main wallet pays when omitted.
	WalletID string `json:"wallet_id,omitempty" validate:"omitempty,uuid4"`

	// DesiredTime is required for flexible schedules and ignored for fixed
	// ones.
	DesiredTime *time.Time `json:"desired_time,omitempty"`

	Details map[string]any `json:"details,omitempty"`
}
