package entity

import (
	"github.com/google/uuid"
)

// SlotType groups slots, e.g. "event", "facility", "document".
// Frequency is a usage counter used to rank trending types.
type SlotType struct {
	BaseNoDelete
	Name      string `db:"name"`
	Frequency int    `db:"frequency"`
}

// Slot is a bookable resource under a slot type. Description, Action and
// Fields are opaque JSON documents owned by the catalog, never interpreted
// by ledger or availability code.
type Slot struct {
	BaseNoDelete
	SlotTypeID  uuid.UUID      `db:"slot_type_id"`
	OwnerID     uuid.UUID      `db:"owner_id"`
	Title       string         `db:"title"`
	Description map[string]any `db:"description"`
	Action      map[string]any `db:"action"`
	Fields      map[string]any `db:"fields"`
}
