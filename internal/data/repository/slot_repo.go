package repository

import (
	"context"
	"fmt"

	"slot-booking/internal/data/entity"
	"slot-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *entity.Slot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error)
	FindBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID, limit, offset int) ([]*entity.Slot, error)
	CountBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID) (int64, error)
}

type slotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotRepository(db database.PgxIface, log *zap.Logger) SlotRepository {
	return &slotRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot")),
	}
}

func (r *slotRepository) Create(ctx context.Context, slot *entity.Slot) error {
	query := `
		INSERT INTO slots (id, slot_type_id, owner_id, title, description, action, fields, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		slot.ID,
		slot.SlotTypeID,
		slot.OwnerID,
		slot.Title,
		slot.Description,
		slot.Action,
		slot.Fields,
		slot.CreatedAt,
		slot.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create slot",
			zap.Error(err),
			zap.String("title", slot.Title),
			zap.String("owner_id", slot.OwnerID.String()),
		)
		return fmt.Errorf("create slot %s: %w", slot.Title, err)
	}

	return nil
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	query := `
		SELECT id, slot_type_id, owner_id, title, description, action, fields, created_at, updated_at
		FROM slots
		WHERE id = $1
	`

	var slot entity.Slot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.SlotTypeID,
		&slot.OwnerID,
		&slot.Title,
		&slot.Description,
		&slot.Action,
		&slot.Fields,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot by ID",
			zap.Error(err),
			zap.String("slot_id", id.String()),
		)
		return nil, fmt.Errorf("find slot by ID %s: %w", id.String(), err)
	}

	return &slot, nil
}

func (r *slotRepository) FindBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID, limit, offset int) ([]*entity.Slot, error) {
	query := `
		SELECT id, slot_type_id, owner_id, title, description, action, fields, created_at, updated_at
		FROM slots
		WHERE slot_type_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, slotTypeID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find slots by slot type ID",
			zap.Error(err),
			zap.String("slot_type_id", slotTypeID.String()),
		)
		return nil, fmt.Errorf("find slots by slot type ID %s: %w", slotTypeID.String(), err)
	}
	defer rows.Close()

	var slots []*entity.Slot
	for rows.Next() {
		var slot entity.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.SlotTypeID,
			&slot.OwnerID,
			&slot.Title,
			&slot.Description,
			&slot.Action,
			&slot.Fields,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan slot row", zap.Error(err))
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot rows: %w", err)
	}

	return slots, nil
}

func (r *slotRepository) CountBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM slots WHERE slot_type_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, slotTypeID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count slots by slot type ID",
			zap.Error(err),
			zap.String("slot_type_id", slotTypeID.String()),
		)
		return 0, fmt.Errorf("count slots by slot type ID %s: %w", slotTypeID.String(), err)
	}

	return count, nil
}
