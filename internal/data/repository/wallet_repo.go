package repository

import (
	"context"
	"fmt"

	"slot-booking/internal/data/entity"
	"slot-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error)
	FindMainByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Wallet, error)

	// Tx-scoped primitives. Balance writes only happen through these, inside
	// a unit of work owned by the caller.
	FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Wallet, error)
	UpdateBalance(ctx context.Context, q database.Querier, id uuid.UUID, balance decimal.Decimal) error
}

type walletRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWalletRepository(db database.PgxIface, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, kind, balance, parent_wallet_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Kind,
		wallet.Balance,
		wallet.ParentWalletID,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create wallet",
			zap.Error(err),
			zap.String("user_id", wallet.UserID.String()),
			zap.String("kind", string(wallet.Kind)),
		)
		return fmt.Errorf("create %s wallet for user %s: %w", wallet.Kind, wallet.UserID.String(), err)
	}

	return nil
}

func (r *walletRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, parent_wallet_id, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`
	return r.scanOne(ctx, r.db, query, id)
}

// FindByIDForUpdate locks the wallet row for the duration of the caller's
// transaction. Every balance mutation reads through this first.
func (r *walletRepository) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, parent_wallet_id, created_at, updated_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanOne(ctx, q, query, id)
}

func (r *walletRepository) FindMainByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, parent_wallet_id, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND kind = 'main'
	`
	return r.scanOne(ctx, r.db, query, userID)
}

func (r *walletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Wallet, error) {
	query := `
		SELECT id, user_id, kind, balance, parent_wallet_id, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find wallets by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find wallets by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var wallets []*entity.Wallet
	for rows.Next() {
		var wallet entity.Wallet
		err := rows.Scan(
			&wallet.ID,
			&wallet.UserID,
			&wallet.Kind,
			&wallet.Balance,
			&wallet.ParentWalletID,
			&wallet.CreatedAt,
			&wallet.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan wallet row", zap.Error(err))
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, &wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}

// UpdateBalance writes an absolute balance computed under the row lock taken
// by FindByIDForUpdate. It must never run outside that transaction.
func (r *walletRepository) UpdateBalance(ctx context.Context, q database.Querier, id uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $2, updated_at = NOW() WHERE id = $1`

	result, err := q.Exec(ctx, query, id, balance)
	if err != nil {
		r.log.Error("Failed to update wallet balance",
			zap.Error(err),
			zap.String("wallet_id", id.String()),
		)
		return fmt.Errorf("update wallet %s balance: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet %s not found", id.String())
	}

	return nil
}

func (r *walletRepository) scanOne(ctx context.Context, q database.Querier, query string, arg any) (*entity.Wallet, error) {
	var wallet entity.Wallet
	err := q.QueryRow(ctx, query, arg).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Kind,
		&wallet.Balance,
		&wallet.ParentWalletID,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find wallet", zap.Error(err))
		return nil, fmt.Errorf("find wallet: %w", err)
	}

	return &wallet, nil
}
