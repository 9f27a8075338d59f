package entity

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransactionShape marks a kind/wallet combination that must never
// reach the store.
var ErrInvalidTransactionShape = errors.New("invalid transaction shape for kind")

type TransactionKind string

const (
	TransactionKindTopup    TransactionKind = "topup"
	TransactionKindSpend    TransactionKind = "spend"
	TransactionKindTransfer TransactionKind = "transfer"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is one ledger record. Kind constrains the wallet references:
// topup has no from-wallet, spend has no to-wallet, transfer has both.
// Once completed or failed the status is terminal.
type Transaction struct {
	BaseSimple
	FromWalletID *uuid.UUID        `db:"from_wallet_id"`
	ToWalletID   *uuid.UUID        `db:"to_wallet_id"`
	Amount       decimal.Decimal   `db:"amount"`
	Kind         TransactionKind   `db:"kind"`
	Status       TransactionStatus `db:"status"`
	Description  string            `db:"description"`
}

// Validate rejects kind/wallet combinations the ledger must never record.
func (t *Transaction) Validate() error {
	switch t.Kind {
	case TransactionKindTopup:
		if t.FromWalletID != nil || t.ToWalletID == nil {
			return ErrInvalidTransactionShape
		}
	case TransactionKindSpend:
		if t.FromWalletID == nil || t.ToWalletID != nil {
			return ErrInvalidTransactionShape
		}
	case TransactionKindTransfer:
		if t.FromWalletID == nil || t.ToWalletID == nil {
			return ErrInvalidTransactionShape
		}
	default:
		return ErrInvalidTransactionShape
	}
	return nil
}
