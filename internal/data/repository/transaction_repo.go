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

type TransactionRepository interface {
	// Create writes a ledger record on the supplied querier so completed
	// records commit with the unit of work that moved the money, while
	// failed records can be written on the pool after a rollback.
	Create(ctx context.Context, q database.Querier, tx *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*entity.Transaction, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

func (r *transactionRepository) Create(ctx context.Context, q database.Querier, tx *entity.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, from_wallet_id, to_wallet_id, amount, kind, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		tx.ID,
		tx.FromWalletID,
		tx.ToWalletID,
		tx.Amount,
		tx.Kind,
		tx.Status,
		tx.Description,
		tx.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("kind", string(tx.Kind)),
			zap.String("status", string(tx.Status)),
		)
		return fmt.Errorf("create %s transaction: %w", tx.Kind, err)
	}

	return nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	query := `
		SELECT id, from_wallet_id, to_wallet_id, amount, kind, status, description, created_at
		FROM transactions
		WHERE id = $1
	`

	var tx entity.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&tx.ID,
		&tx.FromWalletID,
		&tx.ToWalletID,
		&tx.Amount,
		&tx.Kind,
		&tx.Status,
		&tx.Description,
		&tx.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find transaction by ID %s: %w", id.String(), err)
	}

	return &tx, nil
}

func (r *transactionRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, from_wallet_id, to_wallet_id, amount, kind, status, description, created_at
		FROM transactions
		WHERE from_wallet_id = $1 OR to_wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find transactions by wallet ID",
			zap.Error(err),
			zap.String("wallet_id", walletID.String()),
		)
		return nil, fmt.Errorf("find transactions by wallet ID %s: %w", walletID.String(), err)
	}
	defer rows.Close()

	var txs []*entity.Transaction
	for rows.Next() {
		var tx entity.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.FromWalletID,
			&tx.ToWalletID,
			&tx.Amount,
			&tx.Kind,
			&tx.Status,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}

func (r *transactionRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE from_wallet_id = $1 OR to_wallet_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, walletID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count transactions by wallet ID",
			zap.Error(err),
			zap.String("wallet_id", walletID.String()),
		)
		return 0, fmt.Errorf("count transactions by wallet ID %s: %w", walletID.String(), err)
	}

	return count, nil
}
