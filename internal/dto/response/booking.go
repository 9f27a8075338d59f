package response

import (
	"time"

	"slot-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	WalletID      string               `json:"wallet_id"`
	ScheduleID    string               `json:"schedule_id"`
	SlotTitle     string               `json:"slot_title,omitempty"`
	ResolvedTime  time.Time            `json:"resolved_time"`
	Status        entity.BookingStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	Details       map[string]any       `json:"details,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	ScheduleID string `json:"schedule_id"`
	Available  bool   `json:"available"`
}

// Helper converters
func BookingToResponse(booking *entity.Booking, slotTitle string) *BookingResponse {
	resp := &BookingResponse{
		ID:           booking.ID.String(),
		WalletID:     booking.WalletID.String(),
		ScheduleID:   booking.ScheduleID.String(),
		SlotTitle:    slotTitle,
		ResolvedTime: booking.ResolvedTime,
		Status:       booking.Status,
		Details:      booking.Details,
		CreatedAt:    booking.CreatedAt,
	}

	if booking.TransactionID != nil {
		txID := booking.TransactionID.String()
		resp.TransactionID = &txID
	}

	return resp
}
