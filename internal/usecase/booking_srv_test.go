package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"slot-booking/internal/data/entity"
	"slot-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingEnv struct {
	f           *fixture
	booking     BookingService
	ledger      LedgerService
	payerID     uuid.UUID
	payerWallet *entity.Wallet
	ownerWallet *entity.Wallet
	slot        *entity.Slot
	slotType    *entity.SlotType
	schedule    *entity.SlotSchedule
}

// newBookingEnv seeds an owner with a priced fixed schedule and a payer with
// a funded main wallet.
func newBookingEnv(t *testing.T, price int64) *bookingEnv {
	t.Helper()
	f := newFixture()
	now := time.Now()

	ownerID := uuid.New()
	ownerWallet := seedWallet(t, f, ownerID, entity.WalletKindMain, 0)
	payerID := uuid.New()
	payerWallet := seedWallet(t, f, payerID, entity.WalletKindMain, 100)

	slotType := &entity.SlotType{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         "consultation",
	}
	require.NoError(t, f.types.Create(context.Background(), slotType))

	slot := &entity.Slot{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SlotTypeID:   slotType.ID,
		OwnerID:      ownerID,
		Title:        "Morning consultation",
	}
	require.NoError(t, f.slots.Create(context.Background(), slot))

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	schedule := &entity.SlotSchedule{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		SlotID:       slot.ID,
		StartTime:    &start,
		DurationMin:  60,
		GraceMin:     15,
		Price:        decimal.NewFromInt(price),
	}
	require.NoError(t, f.scheds.Create(context.Background(), schedule))

	ledger := NewLedgerService(f.db, f.repo, testLogger())
	return &bookingEnv{
		f:           f,
		booking:     NewBookingService(f.db, f.repo, ledger, testLogger()),
		ledger:      ledger,
		payerID:     payerID,
		payerWallet: payerWallet,
		ownerWallet: ownerWallet,
		slot:        slot,
		slotType:    slotType,
		schedule:    schedule,
	}
}

func TestCreateBookingPaysAndConfirms(t *testing.T) {
	env := newBookingEnv(t, 40)

	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
		Details:    map[string]any{"note": "first visit"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, env.payerWallet.ID.String(), resp.WalletID)
	assert.Equal(t, *env.schedule.StartTime, resp.ResolvedTime)
	assert.Equal(t, "Morning consultation", resp.SlotTitle)
	assert.Equal(t, "40", resp.Details["price"])
	assert.Equal(t, "first visit", resp.Details["note"])
	require.NotNil(t, resp.TransactionID)

	// Payment moved on the same commit as the booking.
	assert.True(t, walletBalance(t, env.f, env.payerWallet.ID).Equal(decimal.NewFromInt(60)))
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.NewFromInt(40)))

	payment, err := env.f.txs.FindByID(context.Background(), uuid.MustParse(*resp.TransactionID))
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, entity.TransactionKindTransfer, payment.Kind)
	assert.Equal(t, entity.TransactionStatusCompleted, payment.Status)

	slotType, err := env.f.types.FindByID(context.Background(), env.slotType.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, slotType.Frequency)
}

func TestCreateBookingFreeScheduleSkipsPayment(t *testing.T) {
	env := newBookingEnv(t, 0)

	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Nil(t, resp.TransactionID)
	assert.Empty(t, env.f.txs.records)
	assert.True(t, walletBalance(t, env.f, env.payerWallet.ID).Equal(decimal.NewFromInt(100)))
}

func TestCreateBookingScheduleTaken(t *testing.T) {
	env := newBookingEnv(t, 40)

	_, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	rival := uuid.New()
	rivalWallet := seedWallet(t, env.f, rival, entity.WalletKindMain, 100)

	_, err = env.booking.CreateBooking(context.Background(), rival.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	assert.ErrorIs(t, err, ErrScheduleUnavailable)

	// The rival paid nothing and no second booking exists.
	assert.True(t, walletBalance(t, env.f, rivalWallet.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.NewFromInt(40)))
	assert.Len(t, env.f.bookings.bookings, 1)
}

func TestCreateBookingInsufficientBalance(t *testing.T) {
	env := newBookingEnv(t, 500)

	_, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Empty(t, env.f.bookings.bookings)
	assert.True(t, walletBalance(t, env.f, env.payerWallet.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.Zero))

	failed := env.f.txs.withStatus(entity.TransactionStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, entity.TransactionKindTransfer, failed[0].Kind)
	assert.True(t, failed[0].Amount.Equal(decimal.NewFromInt(500)))
}

func TestCreateBookingFlexibleRequiresDesiredTime(t *testing.T) {
	env := newBookingEnv(t, 0)
	env.schedule.Flexible = true
	env.schedule.StartTime = nil
	require.NoError(t, env.f.scheds.Create(context.Background(), env.schedule))

	_, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	assert.ErrorIs(t, err, ErrMissingDesiredTime)

	desired := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID:  env.schedule.ID.String(),
		DesiredTime: &desired,
	})
	require.NoError(t, err)
	assert.Equal(t, desired, resp.ResolvedTime)
}

func TestCreateBookingOwnSlotConservesMoney(t *testing.T) {
	// A slot owner booking their own priced slot would pay from and into
	// the same main wallet; that must not mint money.
	env := newBookingEnv(t, 20)
	ownerID := env.ownerWallet.UserID
	require.NoError(t, env.f.wallets.UpdateBalance(context.Background(), nil, env.ownerWallet.ID, decimal.NewFromInt(100)))

	_, err := env.booking.CreateBooking(context.Background(), ownerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	assert.ErrorIs(t, err, ErrSameWallet)

	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.NewFromInt(100)))
	assert.Empty(t, env.f.bookings.bookings)
	assert.Empty(t, env.f.txs.withStatus(entity.TransactionStatusCompleted))
}

func TestCreateBookingRejectsForeignWallet(t *testing.T) {
	env := newBookingEnv(t, 0)
	stranger := seedWallet(t, env.f, uuid.New(), entity.WalletKindMain, 100)

	_, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
		WalletID:   stranger.ID.String(),
	})
	assert.ErrorIs(t, err, ErrWalletOwnership)
	assert.Empty(t, env.f.bookings.bookings)
}

func TestCheckAvailability(t *testing.T) {
	env := newBookingEnv(t, 40)

	available, err := env.booking.CheckAvailability(context.Background(), env.schedule.ID.String(), nil)
	require.NoError(t, err)
	assert.True(t, available)

	_, err = env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	available, err = env.booking.CheckAvailability(context.Background(), env.schedule.ID.String(), nil)
	require.NoError(t, err)
	assert.False(t, available)

	_, err = env.booking.CheckAvailability(context.Background(), uuid.New().String(), nil)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCancelBookingRefunds(t *testing.T) {
	env := newBookingEnv(t, 40)

	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, env.booking.CancelBooking(context.Background(), resp.ID))

	booking, err := env.f.bookings.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)

	// Money went back via a reversal; the original payment stays completed.
	assert.True(t, walletBalance(t, env.f, env.payerWallet.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.Zero))
	completed := env.f.txs.withStatus(entity.TransactionStatusCompleted)
	assert.Len(t, completed, 2)

	// Cancelling twice is rejected, the status is terminal for occupancy.
	err = env.booking.CancelBooking(context.Background(), resp.ID)
	assert.Error(t, err)

	// The slot frees up again.
	available, err := env.booking.CheckAvailability(context.Background(), env.schedule.ID.String(), nil)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCancelUserBookingOwnership(t *testing.T) {
	env := newBookingEnv(t, 40)

	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	err = env.booking.CancelUserBooking(context.Background(), uuid.New().String(), resp.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.booking.CancelUserBooking(context.Background(), env.payerID.String(), resp.ID))
	booking, err := env.f.bookings.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)
}

func TestConcurrentCancelRefundsOnce(t *testing.T) {
	env := newBookingEnv(t, 40)

	resp, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	// Both cancels race; the booking row lock means only the first one
	// still sees confirmed and runs the refund.
	const cancellers = 2
	errs := make([]error, cancellers)
	var wg sync.WaitGroup
	for i := 0; i < cancellers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = env.booking.CancelBooking(context.Background(), resp.ID)
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		}
	}
	assert.Equal(t, 1, won)

	// One payment, one refund, and the payer is made exactly whole.
	assert.Len(t, env.f.txs.withStatus(entity.TransactionStatusCompleted), 2)
	assert.True(t, walletBalance(t, env.f, env.payerWallet.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.Zero))
}

func TestCancelBookingNotFound(t *testing.T) {
	env := newBookingEnv(t, 0)
	err := env.booking.CancelBooking(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings(t *testing.T) {
	env := newBookingEnv(t, 0)

	_, err := env.booking.CreateBooking(context.Background(), env.payerID.String(), &request.CreateBookingRequest{
		ScheduleID: env.schedule.ID.String(),
	})
	require.NoError(t, err)

	page, err := env.booking.GetUserBookings(context.Background(), env.payerID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Morning consultation", page.Data[0].SlotTitle)
	assert.Equal(t, int64(1), page.Pagination.Total)

	// A user without wallets gets an empty page, not an error.
	page, err = env.booking.GetUserBookings(context.Background(), uuid.New().String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	env := newBookingEnv(t, 10)

	const contenders = 8
	payerIDs := make([]uuid.UUID, contenders)
	for i := range payerIDs {
		payerIDs[i] = uuid.New()
		seedWallet(t, env.f, payerIDs[i], entity.WalletKindMain, 100)
	}

	errs := make([]error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.booking.CreateBooking(context.Background(), payerIDs[i].String(), &request.CreateBookingRequest{
				ScheduleID: env.schedule.ID.String(),
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, ErrScheduleUnavailable)
		lost++
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, contenders-1, lost)

	// Exactly one booking, exactly one payment.
	assert.Len(t, env.f.bookings.bookings, 1)
	assert.Len(t, env.f.txs.withStatus(entity.TransactionStatusCompleted), 1)
	assert.True(t, walletBalance(t, env.f, env.ownerWallet.ID).Equal(decimal.NewFromInt(10)))
}
