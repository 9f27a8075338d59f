package response

import (
	"time"

	"slot-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

type WalletResponse struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Kind           entity.WalletKind `json:"kind"`
	Balance        decimal.Decimal   `json:"balance"`
	ParentWalletID *string           `json:"parent_wallet_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type TransactionResponse struct {
	ID           string                   `json:"id"`
	Kind         entity.TransactionKind   `json:"kind"`
	Status       entity.TransactionStatus `json:"status"`
	FromWalletID *string                  `json:"from_wallet_id,omitempty"`
	ToWalletID   *string                  `json:"to_wallet_id,omitempty"`
	Amount       decimal.Decimal          `json:"amount"`
	Description  string                   `json:"description,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Helper converters
func WalletToResponse(wallet *entity.Wallet) *WalletResponse {
	resp := &WalletResponse{
		ID:        wallet.ID.String(),
		UserID:    wallet.UserID.String(),
		Kind:      wallet.Kind,
		Balance:   wallet.Balance,
		CreatedAt: wallet.CreatedAt,
	}

	if wallet.ParentWalletID != nil {
		parentID := wallet.ParentWalletID.String()
		resp.ParentWalletID = &parentID
	}

	return resp
}

func TransactionToResponse(tx *entity.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          tx.ID.String(),
		Kind:        tx.Kind,
		Status:      tx.Status,
		Amount:      tx.Amount,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}

	if tx.FromWalletID != nil {
		fromID := tx.FromWalletID.String()
		resp.FromWalletID = &fromID
	}
	if tx.ToWalletID != nil {
		toID := tx.ToWalletID.String()
		resp.ToWalletID = &toID
	}

	return resp
}
