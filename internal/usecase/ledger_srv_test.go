package usecase

import (
	"context"
	"math/rand"
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

func seedWallet(t *testing.T, f *fixture, userID uuid.UUID, kind entity.WalletKind, balance int64) *entity.Wallet {
	t.Helper()
	now := time.Now()
	wallet := &entity.Wallet{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:       userID,
		Kind:         kind,
		Balance:      decimal.NewFromInt(balance),
	}
	require.NoError(t, f.wallets.Create(context.Background(), wallet))
	return wallet
}

func walletBalance(t *testing.T, f *fixture, id uuid.UUID) decimal.Decimal {
	t.Helper()
	wallet, err := f.wallets.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	return wallet.Balance
}

func TestTopUp(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	resp, err := svc.TopUp(context.Background(), userID.String(), &request.TopUpRequest{
		WalletID:    wallet.ID.String(),
		Amount:      decimal.NewFromInt(50),
		Description: "salary",
	})
	require.NoError(t, err)

	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(150)))
	assert.Equal(t, entity.TransactionKindTopup, resp.Kind)
	assert.Equal(t, entity.TransactionStatusCompleted, resp.Status)
	assert.Nil(t, resp.FromWalletID)
	require.NotNil(t, resp.ToWalletID)
	assert.Equal(t, wallet.ID.String(), *resp.ToWalletID)
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.TopUp(context.Background(), userID.String(), &request.TopUpRequest{
		WalletID: wallet.ID.String(),
		Amount:   decimal.NewFromInt(0),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.TopUp(context.Background(), userID.String(), &request.TopUpRequest{
		WalletID: wallet.ID.String(),
		Amount:   decimal.NewFromInt(-25),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(100)))
	assert.Empty(t, f.txs.records)
}

func TestTopUpWalletOwnership(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	wallet := seedWallet(t, f, owner, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.TopUp(context.Background(), uuid.New().String(), &request.TopUpRequest{
		WalletID: wallet.ID.String(),
		Amount:   decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrWalletOwnership)
	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(100)))
}

func TestTopUpWalletNotFound(t *testing.T) {
	f := newFixture()
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.TopUp(context.Background(), uuid.New().String(), &request.TopUpRequest{
		WalletID: uuid.New().String(),
		Amount:   decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestSpend(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	resp, err := svc.Spend(context.Background(), userID.String(), &request.SpendRequest{
		WalletID:    wallet.ID.String(),
		Amount:      decimal.NewFromInt(40),
		Description: "groceries",
	})
	require.NoError(t, err)

	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(60)))
	assert.Equal(t, entity.TransactionKindSpend, resp.Kind)
	assert.Equal(t, entity.TransactionStatusCompleted, resp.Status)
	require.NotNil(t, resp.FromWalletID)
	assert.Equal(t, wallet.ID.String(), *resp.FromWalletID)
	assert.Nil(t, resp.ToWalletID)
}

func TestSpendInsufficientBalanceRecordsFailure(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.Spend(context.Background(), userID.String(), &request.SpendRequest{
		WalletID: wallet.ID.String(),
		Amount:   decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// No value moved, but the audit trail got its failed record.
	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(100)))
	failed := f.txs.withStatus(entity.TransactionStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, entity.TransactionKindSpend, failed[0].Kind)
	assert.True(t, failed[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, f.txs.withStatus(entity.TransactionStatusCompleted))
}

func TestTransferConservesTotal(t *testing.T) {
	f := newFixture()
	alice := uuid.New()
	bob := uuid.New()
	from := seedWallet(t, f, alice, entity.WalletKindMain, 100)
	to := seedWallet(t, f, bob, entity.WalletKindMain, 50)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	resp, err := svc.Transfer(context.Background(), alice.String(), &request.TransferRequest{
		FromWalletID: from.ID.String(),
		ToWalletID:   to.ID.String(),
		Amount:       decimal.NewFromInt(30),
		Description:  "rent share",
	})
	require.NoError(t, err)

	fromBalance := walletBalance(t, f, from.ID)
	toBalance := walletBalance(t, f, to.ID)
	assert.True(t, fromBalance.Equal(decimal.NewFromInt(70)))
	assert.True(t, toBalance.Equal(decimal.NewFromInt(80)))
	assert.True(t, fromBalance.Add(toBalance).Equal(decimal.NewFromInt(150)))

	assert.Equal(t, entity.TransactionKindTransfer, resp.Kind)
	assert.Equal(t, entity.TransactionStatusCompleted, resp.Status)
	require.NotNil(t, resp.FromWalletID)
	require.NotNil(t, resp.ToWalletID)
}

func TestTransferRequiresSourceOwnership(t *testing.T) {
	f := newFixture()
	alice := uuid.New()
	bob := uuid.New()
	from := seedWallet(t, f, alice, entity.WalletKindMain, 100)
	to := seedWallet(t, f, bob, entity.WalletKindMain, 50)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.Transfer(context.Background(), bob.String(), &request.TransferRequest{
		FromWalletID: from.ID.String(),
		ToWalletID:   to.ID.String(),
		Amount:       decimal.NewFromInt(30),
	})
	assert.ErrorIs(t, err, ErrWalletOwnership)
	assert.True(t, walletBalance(t, f, from.ID).Equal(decimal.NewFromInt(100)))
	assert.True(t, walletBalance(t, f, to.ID).Equal(decimal.NewFromInt(50)))
}

func TestTransferInsufficientBalanceRecordsFailure(t *testing.T) {
	f := newFixture()
	alice := uuid.New()
	from := seedWallet(t, f, alice, entity.WalletKindMain, 20)
	to := seedWallet(t, f, uuid.New(), entity.WalletKindMain, 0)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	_, err := svc.Transfer(context.Background(), alice.String(), &request.TransferRequest{
		FromWalletID: from.ID.String(),
		ToWalletID:   to.ID.String(),
		Amount:       decimal.NewFromInt(75),
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.True(t, walletBalance(t, f, from.ID).Equal(decimal.NewFromInt(20)))
	assert.True(t, walletBalance(t, f, to.ID).Equal(decimal.Zero))
	failed := f.txs.withStatus(entity.TransactionStatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, entity.TransactionKindTransfer, failed[0].Kind)
}

func TestTransferFundsRejectsSameWallet(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	// TransferFunds is the internal entry point; no validator tag shields
	// it, so the ledger itself must refuse the self-transfer.
	_, err := svc.TransferFunds(context.Background(), f.db, wallet.ID, wallet.ID, decimal.NewFromInt(20), "self")
	assert.ErrorIs(t, err, ErrSameWallet)

	assert.True(t, walletBalance(t, f, wallet.ID).Equal(decimal.NewFromInt(100)))
	assert.Empty(t, f.txs.records)
}

func TestConcurrentLedgerConservesAndNeverOverdraws(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	a := seedWallet(t, f, userID, entity.WalletKindMain, 100)
	b := seedWallet(t, f, userID, entity.WalletKindPass, 100)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	const workers = 8
	const opsPerWorker = 6

	var wg sync.WaitGroup
	errs := make([]error, workers*opsPerWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < opsPerWorker; i++ {
				var err error
				switch rng.Intn(4) {
				case 0:
					_, err = svc.Spend(context.Background(), userID.String(), &request.SpendRequest{
						WalletID: a.ID.String(),
						Amount:   decimal.NewFromInt(30),
					})
				case 1:
					_, err = svc.Spend(context.Background(), userID.String(), &request.SpendRequest{
						WalletID: b.ID.String(),
						Amount:   decimal.NewFromInt(30),
					})
				case 2:
					_, err = svc.Transfer(context.Background(), userID.String(), &request.TransferRequest{
						FromWalletID: a.ID.String(),
						ToWalletID:   b.ID.String(),
						Amount:       decimal.NewFromInt(40),
					})
				default:
					_, err = svc.Transfer(context.Background(), userID.String(), &request.TransferRequest{
						FromWalletID: b.ID.String(),
						ToWalletID:   a.ID.String(),
						Amount:       decimal.NewFromInt(40),
					})
				}
				errs[w*opsPerWorker+i] = err
			}
		}(w)
	}
	wg.Wait()

	// The only admissible failure is a rejected overdraw.
	var failures int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientBalance)
			failures++
		}
	}

	balanceA := walletBalance(t, f, a.ID)
	balanceB := walletBalance(t, f, b.ID)
	assert.GreaterOrEqual(t, balanceA.Sign(), 0)
	assert.GreaterOrEqual(t, balanceB.Sign(), 0)

	// Every unit that left the pair of wallets is accounted for by a
	// completed spend; transfers move money without destroying it.
	spent := decimal.Zero
	for _, tx := range f.txs.withStatus(entity.TransactionStatusCompleted) {
		if tx.Kind == entity.TransactionKindSpend {
			spent = spent.Add(tx.Amount)
		}
	}
	assert.True(t, balanceA.Add(balanceB).Add(spent).Equal(decimal.NewFromInt(200)))

	assert.Len(t, f.txs.withStatus(entity.TransactionStatusFailed), failures)
}

func TestGetWalletTransactions(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	wallet := seedWallet(t, f, userID, entity.WalletKindMain, 1000)
	svc := NewLedgerService(f.db, f.repo, testLogger())

	for i := 0; i < 3; i++ {
		_, err := svc.Spend(context.Background(), userID.String(), &request.SpendRequest{
			WalletID: wallet.ID.String(),
			Amount:   decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}

	page, err := svc.GetWalletTransactions(context.Background(), userID.String(), wallet.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)

	_, err = svc.GetWalletTransactions(context.Background(), uuid.New().String(), wallet.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	assert.ErrorIs(t, err, ErrWalletOwnership)
}
