package response

import (
	"time"

	"slot-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type SlotTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Frequency int       `json:"frequency"`
	CreatedAt time.Time `json:"created_at"`
}

type SlotResponse struct {
	ID           string         `json:"id"`
	SlotTypeID   string         `json:"slot_type_id"`
	SlotTypeName string         `json:"slot_type_name,omitempty"`
	OwnerID      string         `json:"owner_id"`
	Title        string         `json:"title"`
	Description  map[string]any `json:"description,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type SlotDetailResponse struct {
	SlotResponse
	Action    map[string]any     `json:"action,omitempty"`
	Fields    map[string]any     `json:"fields,omitempty"`
	Schedules []ScheduleResponse `json:"schedules"`
}

type ScheduleResponse struct {
	ID                 string          `json:"id"`
	SlotID             string          `json:"slot_id"`
	StartTime          *time.Time      `json:"start_time,omitempty"`
	DurationMinutes    int             `json:"duration_minutes"`
	GracePeriodMinutes int             `json:"grace_period_minutes"`
	Flexible           bool            `json:"flexible"`
	Recurring          bool            `json:"recurring"`
	RecurrencePattern  map[string]any  `json:"recurrence_pattern,omitempty"`
	Price              decimal.Decimal `json:"price"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Helper converters
func SlotTypeToResponse(slotType *entity.SlotType) *SlotTypeResponse {
	return &SlotTypeResponse{
		ID:        slotType.ID.String(),
		Name:      slotType.Name,
		Frequency: slotType.Frequency,
		CreatedAt: slotType.CreatedAt,
	}
}

func SlotToResponse(slot *entity.Slot, slotTypeName string) *SlotResponse {
	return &SlotResponse{
		ID:           slot.ID.String(),
		SlotTypeID:   slot.SlotTypeID.String(),
		SlotTypeName: slotTypeName,
		OwnerID:      slot.OwnerID.String(),
		Title:        slot.Title,
		Description:  slot.Description,
		CreatedAt:    slot.CreatedAt,
	}
}

func SlotToDetailResponse(slot *entity.Slot, slotTypeName string, schedules []ScheduleResponse) *SlotDetailResponse {
	return &SlotDetailResponse{
		SlotResponse: *SlotToResponse(slot, slotTypeName),
		Action:       slot.Action,
		Fields:       slot.Fields,
		Schedules:    schedules,
	}
}

func ScheduleToResponse(schedule *entity.SlotSchedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:                 schedule.ID.String(),
		SlotID:             schedule.SlotID.String(),
		StartTime:          schedule.StartTime,
		DurationMinutes:    schedule.DurationMin,
		GracePeriodMinutes: schedule.GraceMin,
		Flexible:           schedule.Flexible,
		Recurring:          schedule.Recurring,
		RecurrencePattern:  schedule.Recurrence,
		Price:              schedule.Price,
		CreatedAt:          schedule.CreatedAt,
	}
}
