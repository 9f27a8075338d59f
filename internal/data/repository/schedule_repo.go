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

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.SlotSchedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotSchedule, error)
	FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.SlotSchedule, error)

	// FindByIDForUpdate locks the schedule row; the lock serializes the
	// read-check-write sequence of every booking against this schedule.
	FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.SlotSchedule, error)
}

type scheduleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScheduleRepository(db database.PgxIface, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

const scheduleColumns = `id, slot_id, start_time, duration_minutes, grace_period_minutes,
	       flexible, recurring, recurrence_pattern, price, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.SlotSchedule) error {
	query := `
		INSERT INTO slot_schedules (id, slot_id, start_time, duration_minutes, grace_period_minutes,
		                            flexible, recurring, recurrence_pattern, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		schedule.ID,
		schedule.SlotID,
		schedule.StartTime,
		schedule.DurationMin,
		schedule.GraceMin,
		schedule.Flexible,
		schedule.Recurring,
		schedule.Recurrence,
		schedule.Price,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create schedule",
			zap.Error(err),
			zap.String("slot_id", schedule.SlotID.String()),
		)
		return fmt.Errorf("create schedule for slot %s: %w", schedule.SlotID.String(), err)
	}

	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM slot_schedules WHERE id = $1`
	return r.scanOne(ctx, r.db, query, id)
}

func (r *scheduleRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.SlotSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM slot_schedules WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, q, query, id)
}

func (r *scheduleRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.SlotSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM slot_schedules WHERE slot_id = $1 ORDER BY start_time NULLS LAST`

	rows, err := r.db.Query(ctx, query, slotID)
	if err != nil {
		r.log.Error("Failed to find schedules by slot ID",
			zap.Error(err),
			zap.String("slot_id", slotID.String()),
		)
		return nil, fmt.Errorf("find schedules by slot ID %s: %w", slotID.String(), err)
	}
	defer rows.Close()

	var schedules []*entity.SlotSchedule
	for rows.Next() {
		schedule, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedule rows: %w", err)
	}

	return schedules, nil
}

func (r *scheduleRepository) scanOne(ctx context.Context, q database.Querier, query string, arg any) (*entity.SlotSchedule, error) {
	var schedule entity.SlotSchedule
	err := q.QueryRow(ctx, query, arg).Scan(
		&schedule.ID,
		&schedule.SlotID,
		&schedule.StartTime,
		&schedule.DurationMin,
		&schedule.GraceMin,
		&schedule.Flexible,
		&schedule.Recurring,
		&schedule.Recurrence,
		&schedule.Price,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule", zap.Error(err))
		return nil, fmt.Errorf("find schedule: %w", err)
	}

	return &schedule, nil
}

func (r *scheduleRepository) scanRow(rows pgx.Rows) (*entity.SlotSchedule, error) {
	var schedule entity.SlotSchedule
	err := rows.Scan(
		&schedule.ID,
		&schedule.SlotID,
		&schedule.StartTime,
		&schedule.DurationMin,
		&schedule.GraceMin,
		&schedule.Flexible,
		&schedule.Recurring,
		&schedule.Recurrence,
		&schedule.Price,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to scan schedule row", zap.Error(err))
		return nil, fmt.Errorf("scan schedule row: %w", err)
	}
	return &schedule, nil
}
