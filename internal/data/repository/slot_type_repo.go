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

type SlotTypeRepository interface {
	Create(ctx context.Context, slotType *entity.SlotType) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotType, error)
	FindAll(ctx context.Context) ([]*entity.SlotType, error)
	IncrementFrequency(ctx context.Context, q database.Querier, id uuid.UUID) error
}

type slotTypeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotTypeRepository(db database.PgxIface, log *zap.Logger) SlotTypeRepository {
	return &slotTypeRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot_type")),
	}
}

func (r *slotTypeRepository) Create(ctx context.Context, slotType *entity.SlotType) error {
	query := `
		INSERT INTO slot_types (id, name, frequency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		slotType.ID,
		slotType.Name,
		slotType.Frequency,
		slotType.CreatedAt,
		slotType.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create slot type",
			zap.Error(err),
			zap.String("name", slotType.Name),
		)
		return fmt.Errorf("create slot type %s: %w", slotType.Name, err)
	}

	return nil
}

func (r *slotTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotType, error) {
	query := `
		SELECT id, name, frequency, created_at, updated_at
		FROM slot_types
		WHERE id = $1
	`

	var slotType entity.SlotType
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slotType.ID,
		&slotType.Name,
		&slotType.Frequency,
		&slotType.CreatedAt,
		&slotType.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find slot type by ID",
			zap.Error(err),
			zap.String("slot_type_id", id.String()),
		)
		return nil, fmt.Errorf("find slot type by ID %s: %w", id.String(), err)
	}

	return &slotType, nil
}

// FindAll orders by frequency so trending types come first.
func (r *slotTypeRepository) FindAll(ctx context.Context) ([]*entity.SlotType, error) {
	query := `
		SELECT id, name, frequency, created_at, updated_at
		FROM slot_types
		ORDER BY frequency DESC, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find slot types", zap.Error(err))
		return nil, fmt.Errorf("find all slot types: %w", err)
	}
	defer rows.Close()

	var slotTypes []*entity.SlotType
	for rows.Next() {
		var slotType entity.SlotType
		err := rows.Scan(
			&slotType.ID,
			&slotType.Name,
			&slotType.Frequency,
			&slotType.CreatedAt,
			&slotType.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan slot type row", zap.Error(err))
			return nil, fmt.Errorf("scan slot type row: %w", err)
		}
		slotTypes = append(slotTypes, &slotType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot type rows: %w", err)
	}

	return slotTypes, nil
}

// IncrementFrequency bumps the trending counter, usually inside the booking
// unit of work.
func (r *slotTypeRepository) IncrementFrequency(ctx context.Context, q database.Querier, id uuid.UUID) error {
	query := `UPDATE slot_types SET frequency = frequency + 1, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment slot type frequency",
			zap.Error(err),
			zap.String("slot_type_id", id.String()),
		)
		return fmt.Errorf("increment slot type %s frequency: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("slot type %s not found", id.String())
	}

	return nil
}
