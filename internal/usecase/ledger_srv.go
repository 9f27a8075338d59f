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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService moves value between wallets. Every public operation is one
// unit of work: the wallet rows it touches are locked for the whole
// read-check-write sequence and the Transaction record commits (or the whole
// thing rolls back) together with the balance change.
type LedgerService interface {
	TopUp(ctx context.Context, userID string, req *request.TopUpRequest) (*response.TransactionResponse, error)
	Spend(ctx context.Context, userID string, req *request.SpendRequest) (*response.TransactionResponse, error)
	Transfer(ctx context.Context, userID string, req *request.TransferRequest) (*response.TransactionResponse, error)
	GetWalletTransactions(ctx context.Context, userID, walletID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)

	// TransferFunds runs the debit-credit-record sequence on the caller's
	// unit of work. The booking orchestrator uses it so payment and booking
	// share one commit boundary.
	TransferFunds(ctx context.Context, q database.Querier, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, description string) (*entity.Transaction, error)

	// RecordFailure writes a failed Transaction on the pool, outside any
	// aborted unit of work, so the audit trail survives the rollback.
	RecordFailure(ctx context.Context, kind entity.TransactionKind, fromWalletID, toWalletID *uuid.UUID, amount decimal.Decimal, description string)
}

type ledgerService struct {
	db   database.PgxIface
	repo *repository.Repository
	log  *zap.Logger
}

func NewLedgerService(db database.PgxIface, repo *repository.Repository, log *zap.Logger) LedgerService {
	return &ledgerService{
		db:   db,
		repo: repo,
		log:  log.With(zap.String("service", "ledger")),
	}
}

func (s *ledgerService) TopUp(ctx context.Context, userID string, req *request.TopUpRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Top up validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	walletID, userUUID, err := parseWalletAndUser(req.WalletID, userID)
	if err != nil {
		return nil, err
	}

	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("top up %s: %w", req.Amount.String(), ErrInvalidAmount)
	}

	tx, err := database.BeginUnitOfWork(ctx, s.db)
	if err != nil {
		return nil, s.asBusy(err)
	}
	defer tx.Rollback(ctx)

	wallet, err := s.repo.Wallet.FindByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, s.asBusy(err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %s: %w", req.WalletID, ErrWalletNotFound)
	}
	if wallet.UserID != userUUID {
		return nil, fmt.Errorf("wallet %s: %w", req.WalletID, ErrWalletOwnership)
	}

	if err := s.repo.Wallet.UpdateBalance(ctx, tx, wallet.ID, wallet.Balance.Add(req.Amount)); err != nil {
		return nil, s.asBusy(err)
	}

	record := newTransaction(entity.TransactionKindTopup, nil, &wallet.ID, req.Amount, req.Description)
	if err := s.repo.Transaction.Create(ctx, tx, record); err != nil {
		return nil, s.asBusy(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.asBusy(err)
	}

	s.log.Info("Wallet topped up",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("transaction_id", record.ID.String()),
	)

	return response.TransactionToResponse(record), nil
}

func (s *ledgerService) Spend(ctx context.Context, userID string, req *request.SpendRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Spend validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	walletID, userUUID, err := parseWalletAndUser(req.WalletID, userID)
	if err != nil {
		return nil, err
	}

	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("spend %s: %w", req.Amount.String(), ErrInvalidAmount)
	}

	tx, err := database.BeginUnitOfWork(ctx, s.db)
	if err != nil {
		return nil, s.asBusy(err)
	}
	defer tx.Rollback(ctx)

	wallet, err := s.repo.Wallet.FindByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, s.asBusy(err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %s: %w", req.WalletID, ErrWalletNotFound)
	}
	if wallet.UserID != userUUID {
		return nil, fmt.Errorf("wallet %s: %w", req.WalletID, ErrWalletOwnership)
	}

	remaining := wallet.Balance.Sub(req.Amount)
	if remaining.IsNegative() {
		_ = tx.Rollback(ctx)
		s.RecordFailure(ctx, entity.TransactionKindSpend, &wallet.ID, nil, req.Amount, req.Description)
		return nil, fmt.Errorf("spend %s from wallet %s: %w", req.Amount.String(), req.WalletID, ErrInsufficientBalance)
	}

	if err := s.repo.Wallet.UpdateBalance(ctx, tx, wallet.ID, remaining); err != nil {
		return nil, s.asBusy(err)
	}

	record := newTransaction(entity.TransactionKindSpend, &wallet.ID, nil, req.Amount, req.Description)
	if err := s.repo.Transaction.Create(ctx, tx, record); err != nil {
		return nil, s.asBusy(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.asBusy(err)
	}

	s.log.Info("Wallet spend recorded",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("transaction_id", record.ID.String()),
	)

	return response.TransactionToResponse(record), nil
}

func (s *ledgerService) Transfer(ctx context.Context, userID string, req *request.TransferRequest) (*response.TransactionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Transfer validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	fromID, userUUID, err := parseWalletAndUser(req.FromWalletID, userID)
	if err != nil {
		return nil, err
	}
	toID, err := uuid.Parse(req.ToWalletID)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet ID format %s: %w", req.ToWalletID, err)
	}

	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer %s: %w", req.Amount.String(), ErrInvalidAmount)
	}

	tx, err := database.BeginUnitOfWork(ctx, s.db)
	if err != nil {
		return nil, s.asBusy(err)
	}
	defer tx.Rollback(ctx)

	// Owner check happens after the lock so the decision is made on current
	// rows, same as the balance check.
	record, err := s.transferLocked(ctx, tx, fromID, toID, req.Amount, req.Description, &userUUID)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			_ = tx.Rollback(ctx)
			s.RecordFailure(ctx, entity.TransactionKindTransfer, &fromID, &toID, req.Amount, req.Description)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.asBusy(err)
	}

	s.log.Info("Transfer completed",
		zap.String("from_wallet_id", fromID.String()),
		zap.String("to_wallet_id", toID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("transaction_id", record.ID.String()),
	)

	return response.TransactionToResponse(record), nil
}

func (s *ledgerService) TransferFunds(ctx context.Context, q database.Querier, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal, description string) (*entity.Transaction, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer %s: %w", amount.String(), ErrInvalidAmount)
	}
	return s.transferLocked(ctx, q, fromWalletID, toWalletID, amount, description, nil)
}

// transferLocked locks both wallet rows in id order (two opposing transfers
// then cannot deadlock), checks funds, applies both balance writes and
// records the completed transaction, all on q.
func (s *ledgerService) transferLocked(ctx context.Context, q database.Querier, fromID, toID uuid.UUID, amount decimal.Decimal, description string, owner *uuid.UUID) (*entity.Transaction, error) {
	// A self-transfer would debit and credit the same snapshot and mint
	// money; the request validator cannot shield internal callers.
	if fromID == toID {
		return nil, fmt.Errorf("wallet %s: %w", fromID.String(), ErrSameWallet)
	}

	first, second := fromID, toID
	if second.String() < first.String() {
		first, second = second, first
	}

	wallets := make(map[uuid.UUID]*entity.Wallet, 2)
	for _, id := range []uuid.UUID{first, second} {
		wallet, err := s.repo.Wallet.FindByIDForUpdate(ctx, q, id)
		if err != nil {
			return nil, s.asBusy(err)
		}
		if wallet == nil {
			return nil, fmt.Errorf("wallet %s: %w", id.String(), ErrWalletNotFound)
		}
		wallets[id] = wallet
	}

	from, to := wallets[fromID], wallets[toID]
	if owner != nil && from.UserID != *owner {
		return nil, fmt.Errorf("wallet %s: %w", fromID.String(), ErrWalletOwnership)
	}

	remaining := from.Balance.Sub(amount)
	if remaining.IsNegative() {
		return nil, fmt.Errorf("transfer %s from wallet %s: %w", amount.String(), fromID.String(), ErrInsufficientBalance)
	}

	if err := s.repo.Wallet.UpdateBalance(ctx, q, from.ID, remaining); err != nil {
		return nil, s.asBusy(err)
	}
	if err := s.repo.Wallet.UpdateBalance(ctx, q, to.ID, to.Balance.Add(amount)); err != nil {
		return nil, s.asBusy(err)
	}

	record := newTransaction(entity.TransactionKindTransfer, &from.ID, &to.ID, amount, description)
	if err := s.repo.Transaction.Create(ctx, q, record); err != nil {
		return nil, s.asBusy(err)
	}

	return record, nil
}

func (s *ledgerService) RecordFailure(ctx context.Context, kind entity.TransactionKind, fromWalletID, toWalletID *uuid.UUID, amount decimal.Decimal, description string) {
	record := newTransaction(kind, fromWalletID, toWalletID, amount, description)
	record.Status = entity.TransactionStatusFailed

	if err := s.repo.Transaction.Create(ctx, s.db, record); err != nil {
		// Best effort: the money did not move, only the audit row is lost.
		s.log.Warn("Failed to record failed transaction",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("amount", amount.String()),
		)
	}
}

func (s *ledgerService) GetWalletTransactions(ctx context.Context, userID, walletID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	id, userUUID, err := parseWalletAndUser(walletID, userID)
	if err != nil {
		return nil, err
	}

	wallet, err := s.repo.Wallet.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletNotFound)
	}
	if wallet.UserID != userUUID {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletOwnership)
	}

	txs, err := s.repo.Transaction.FindByWalletID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get wallet transactions: %w", err)
	}

	total, err := s.repo.Transaction.CountByWalletID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count wallet transactions: %w", err)
	}

	items := make([]response.TransactionResponse, len(txs))
	for i, t := range txs {
		items[i] = *response.TransactionToResponse(t)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

// asBusy folds lock-wait timeouts and serialization conflicts into ErrBusy
// so callers know the whole operation is retryable.
func (s *ledgerService) asBusy(err error) error {
	if database.IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrBusy, err)
	}
	return err
}

func newTransaction(kind entity.TransactionKind, from, to *uuid.UUID, amount decimal.Decimal, description string) *entity.Transaction {
	return &entity.Transaction{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		FromWalletID: from,
		ToWalletID:   to,
		Amount:       amount,
		Kind:         kind,
		Status:       entity.TransactionStatusCompleted,
		Description:  description,
	}
}

func parseWalletAndUser(walletID, userID string) (uuid.UUID, uuid.UUID, error) {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid wallet ID format %s: %w", walletID, err)
	}
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}
	return id, userUUID, nil
}
