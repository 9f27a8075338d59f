package request

import "github.com/shopspring/decimal"

type SlotTypeRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type SlotRequest struct {
	SlotTypeID  string         `json:"slot_type_id" validate:"required,uuid4"`
	Title       string         `json:"title" validate:"required,min=2,max=255"`
	Description map[string]any `json:"description,omitempty"`
	Action      map[string]any `json:"action,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

type ScheduleRequest struct {
	SlotID string `json:"slot_id" validate:"required,uuid4"`

	// StartTime is RFC3339. Required for fixed schedules, optional for
	// flexible ones.
	StartTime string `json:"start_time,omitempty"`

	DurationMinutes    int  `json:"duration_minutes" validate:"required,min=1"`
	GracePeriodMinutes int  `json:"grace_period_minutes" validate:"min=0"`
	Flexible           bool `json:"flexible"`
	Recurring          bool `json:"recurring"`

	RecurrencePattern map[string]any `json:"recurrence_pattern,omitempty"`

	Price *decimal.Decimal `json:"price,omitempty"`
}
