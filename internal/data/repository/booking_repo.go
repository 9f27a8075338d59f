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

type BookingRepository interface {
	// Create runs on the caller's querier so the booking row commits in the
	// same unit of work as the availability check and the payment.
	Create(ctx context.Context, q database.Querier, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)

	// FindByIDForUpdate locks the booking row; status transitions re-check
	// the current status under this lock.
	FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Booking, error)
	FindByWalletIDs(ctx context.Context, walletIDs []uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByWalletIDs(ctx context.Context, walletIDs []uuid.UUID) (int64, error)

	// FindActiveByScheduleID reads the pending/confirmed set for a schedule.
	// Callers holding the schedule row lock get a stable snapshot.
	FindActiveByScheduleID(ctx context.Context, q database.Querier, scheduleID uuid.UUID) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, q database.Querier, bookingID uuid.UUID, status entity.BookingStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, wallet_id, schedule_id, resolved_time, status, transaction_id, details, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, wallet_id, schedule_id, resolved_time, status, transaction_id, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.WalletID,
		booking.ScheduleID,
		booking.ResolvedTime,
		booking.Status,
		booking.TransactionID,
		booking.Details,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("schedule_id", booking.ScheduleID.String()),
			zap.String("wallet_id", booking.WalletID.String()),
		)
		return fmt.Errorf("create booking for schedule %s: %w", booking.ScheduleID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.WalletID,
		&booking.ScheduleID,
		&booking.ResolvedTime,
		&booking.Status,
		&booking.TransactionID,
		&booking.Details,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	var booking entity.Booking
	err := q.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.WalletID,
		&booking.ScheduleID,
		&booking.ResolvedTime,
		&booking.Status,
		&booking.TransactionID,
		&booking.Details,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByWalletIDs(ctx context.Context, walletIDs []uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE wallet_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, walletIDs, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by wallet IDs",
			zap.Error(err),
			zap.Int("wallet_count", len(walletIDs)),
		)
		return nil, fmt.Errorf("find bookings by wallet IDs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) CountByWalletIDs(ctx context.Context, walletIDs []uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE wallet_id = ANY($1)`

	var count int64
	err := r.db.QueryRow(ctx, query, walletIDs).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by wallet IDs", zap.Error(err))
		return 0, fmt.Errorf("count bookings by wallet IDs: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) FindActiveByScheduleID(ctx context.Context, q database.Querier, scheduleID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE schedule_id = $1 AND status IN ('pending', 'confirmed')
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		r.log.Error("Failed to find active bookings by schedule ID",
			zap.Error(err),
			zap.String("schedule_id", scheduleID.String()),
		)
		return nil, fmt.Errorf("find active bookings by schedule ID %s: %w", scheduleID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, q database.Querier, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.WalletID,
			&booking.ScheduleID,
			&booking.ResolvedTime,
			&booking.Status,
			&booking.TransactionID,
			&booking.Details,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}
