package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletKind string

const (
	WalletKindMain   WalletKind = "main"
	WalletKindPass   WalletKind = "pass"
	WalletKindVendor WalletKind = "vendor"
)

// Wallet holds a user's balance. A pass/vendor wallet may point at a parent
// wallet of the same user; the hierarchy is by id only, never by pointer.
type Wallet struct {
	BaseNoDelete
	UserID         uuid.UUID       `db:"user_id"`
	Kind           WalletKind      `db:"kind"`
	Balance        decimal.Decimal `db:"balance"`
	ParentWalletID *uuid.UUID      `db:"parent_wallet_id"`
}
