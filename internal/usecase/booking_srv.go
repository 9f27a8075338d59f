package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slot-booking/internal/data/entity"
	"slot-booking/internal/data/repository"
	"slot-booking/internal/dto/request"
	"slot-booking/internal/dto/response"
	"slot-booking/pkg/database"
	"slot-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService orchestrates "check availability, move money, record the
// booking" as one all-or-nothing unit. The schedule row lock held for the
// whole sequence closes the race between the availability check and the
// booking insert; the payment shares the same commit boundary.
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	CheckAvailability(ctx context.Context, scheduleID string, desiredTime *time.Time) (bool, error)
	CancelUserBooking(ctx context.Context, userID string, bookingID string) error

	// Admin endpoints
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	db     database.PgxIface
	repo   *repository.Repository
	ledger LedgerService
	log    *zap.Logger
}

func NewBookingService(db database.PgxIface, repo *repository.Repository, ledger LedgerService, log *zap.Logger) BookingService {
	return &bookingService{
		db:     db,
		repo:   repo,
		ledger: ledger,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID format %s: %w", req.ScheduleID, err)
	}

	// Pre-flight reads. Everything decision-relevant is re-read under the
	// lock; these only resolve references and fail fast.
	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule %s: %w", req.ScheduleID, ErrScheduleNotFound)
	}

	slot, err := s.repo.Slot.FindByID(ctx, schedule.SlotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", schedule.SlotID.String(), ErrSlotNotFound)
	}

	payerWallet, err := s.resolvePayerWallet(ctx, userUUID, req.WalletID)
	if err != nil {
		return nil, err
	}

	ownerWallet, err := s.repo.Wallet.FindMainByUserID(ctx, slot.OwnerID)
	if err != nil {
		return nil, err
	}
	if ownerWallet == nil {
		return nil, fmt.Errorf("slot owner main wallet: %w", ErrWalletNotFound)
	}

	tx, err := database.BeginUnitOfWork(ctx, s.db)
	if err != nil {
		return nil, s.asBusy(err)
	}
	defer tx.Rollback(ctx)

	// The schedule row lock is the per-schedule mutex: concurrent bookings
	// against the same schedule serialize here, so the availability snapshot
	// below stays valid until commit.
	schedule, err = s.repo.Schedule.FindByIDForUpdate(ctx, tx, scheduleID)
	if err != nil {
		return nil, s.asBusy(err)
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule %s: %w", req.ScheduleID, ErrScheduleNotFound)
	}

	resolvedTime, err := ResolveBookingTime(schedule, req.DesiredTime)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Booking.FindActiveByScheduleID(ctx, tx, scheduleID)
	if err != nil {
		return nil, s.asBusy(err)
	}

	available, err := IsScheduleAvailable(schedule, req.DesiredTime, existing)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, fmt.Errorf("schedule %s at %s: %w", req.ScheduleID, resolvedTime.Format(time.RFC3339), ErrScheduleUnavailable)
	}

	var paymentTx *entity.Transaction
	if schedule.Price.Sign() > 0 {
		description := fmt.Sprintf("Booking payment for %s", slot.Title)
		paymentTx, err = s.ledger.TransferFunds(ctx, tx, payerWallet.ID, ownerWallet.ID, schedule.Price, description)
		if err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				_ = tx.Rollback(ctx)
				s.ledger.RecordFailure(ctx, entity.TransactionKindTransfer, &payerWallet.ID, &ownerWallet.ID, schedule.Price, description)
			}
			return nil, err
		}
	}

	now := time.Now()
	details := map[string]any{"price": schedule.Price.String()}
	for k, v := range req.Details {
		details[k] = v
	}

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		WalletID:     payerWallet.ID,
		ScheduleID:   scheduleID,
		ResolvedTime: resolvedTime,
		Status:       entity.BookingStatusConfirmed,
		Details:      details,
	}
	if paymentTx != nil {
		booking.TransactionID = &paymentTx.ID
	}

	if err := s.repo.Booking.Create(ctx, tx, booking); err != nil {
		return nil, s.asBusy(err)
	}

	// Trending counter for the slot's type rides the same commit.
	if err := s.repo.SlotType.IncrementFrequency(ctx, tx, slot.SlotTypeID); err != nil {
		return nil, s.asBusy(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.asBusy(err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("schedule_id", req.ScheduleID),
		zap.String("wallet_id", payerWallet.ID.String()),
		zap.Time("resolved_time", resolvedTime),
		zap.String("price", schedule.Price.String()),
	)

	return response.BookingToResponse(booking, slot.Title), nil
}

// CheckAvailability is the read-only pre-flight used by presentation layers.
// CreateBooking never trusts it; the authoritative check re-runs under the
// schedule lock.
func (s *bookingService) CheckAvailability(ctx context.Context, scheduleID string, desiredTime *time.Time) (bool, error) {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return false, fmt.Errorf("invalid schedule ID format %s: %w", scheduleID, err)
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if schedule == nil {
		return false, fmt.Errorf("schedule %s: %w", scheduleID, ErrScheduleNotFound)
	}

	existing, err := s.repo.Booking.FindActiveByScheduleID(ctx, s.db, id)
	if err != nil {
		return false, err
	}

	return IsScheduleAvailable(schedule, desiredTime, existing)
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	wallets, err := s.repo.Wallet.FindByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("get user wallets: %w", err)
	}
	if len(wallets) == 0 {
		return response.NewPaginatedResponse([]response.BookingResponse{}, req.Page, req.PerPage, 0), nil
	}

	walletIDs := make([]uuid.UUID, len(wallets))
	for i, w := range wallets {
		walletIDs[i] = w.ID
	}

	bookings, err := s.repo.Booking.FindByWalletIDs(ctx, walletIDs, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByWalletIDs(ctx, walletIDs)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	items := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		items[i] = *response.BookingToResponse(booking, s.slotTitleFor(ctx, booking.ScheduleID))
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	return response.BookingToResponse(booking, s.slotTitleFor(ctx, booking.ScheduleID)), nil
}

// CancelBooking flips the booking to cancelled and reverses its payment in
// the same unit of work. The reversal is its own transfer record; the
// original transaction stays completed (terminal status).
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	tx, err := database.BeginUnitOfWork(ctx, s.db)
	if err != nil {
		return s.asBusy(err)
	}
	defer tx.Rollback(ctx)

	// The row lock serializes concurrent cancels; the status check below
	// runs on the locked row, so only the first one refunds.
	booking, err := s.repo.Booking.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return s.asBusy(err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	if !booking.Occupies() {
		return fmt.Errorf("booking status is %s, cannot cancel", booking.Status)
	}

	if booking.TransactionID != nil {
		payment, err := s.repo.Transaction.FindByID(ctx, *booking.TransactionID)
		if err != nil {
			return err
		}
		if payment != nil && payment.Status == entity.TransactionStatusCompleted &&
			payment.FromWalletID != nil && payment.ToWalletID != nil {
			description := fmt.Sprintf("Refund for booking %s", booking.ID.String())
			if _, err := s.ledger.TransferFunds(ctx, tx, *payment.ToWalletID, *payment.FromWalletID, payment.Amount, description); err != nil {
				return err
			}
		}
	}

	if err := s.repo.Booking.UpdateStatus(ctx, tx, booking.ID, entity.BookingStatusCancelled); err != nil {
		return s.asBusy(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return s.asBusy(err)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.Bool("refunded", booking.TransactionID != nil),
	)

	return nil
}

// CancelUserBooking is the self-service variant: the booking must be paid
// from one of the caller's wallets.
func (s *bookingService) CancelUserBooking(ctx context.Context, userID string, bookingID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	wallet, err := s.repo.Wallet.FindByID(ctx, booking.WalletID)
	if err != nil {
		return err
	}
	if wallet == nil || wallet.UserID != userUUID {
		return fmt.Errorf("booking %s: %w", bookingID, ErrForbidden)
	}

	return s.CancelBooking(ctx, bookingID)
}

// resolvePayerWallet defaults to the caller's main wallet (the original
// product behavior) and enforces wallet ownership when one is named.
func (s *bookingService) resolvePayerWallet(ctx context.Context, userID uuid.UUID, walletID string) (*entity.Wallet, error) {
	if walletID == "" {
		wallet, err := s.repo.Wallet.FindMainByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return nil, fmt.Errorf("main wallet for user %s: %w", userID.String(), ErrWalletNotFound)
		}
		return wallet, nil
	}

	id, err := uuid.Parse(walletID)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet ID format %s: %w", walletID, err)
	}

	wallet, err := s.repo.Wallet.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletNotFound)
	}
	if wallet.UserID != userID {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletOwnership)
	}

	return wallet, nil
}

func (s *bookingService) slotTitleFor(ctx context.Context, scheduleID uuid.UUID) string {
	schedule, _ := s.repo.Schedule.FindByID(ctx, scheduleID)
	if schedule == nil {
		return ""
	}
	slot, _ := s.repo.Slot.FindByID(ctx, schedule.SlotID)
	if slot == nil {
		return ""
	}
	return slot.Title
}

func (s *bookingService) asBusy(err error) error {
	if database.IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}
