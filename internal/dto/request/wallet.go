package request

import "github.com/shopspring/decimal"

type TopUpRequest struct {
	WalletID    string          `json:"wallet_id" validate:"required,uuid4"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=255"`
}

type SpendRequest struct {
	WalletID    string          `json:"wallet_id" validate:"required,uuid4"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=255"`
}

type TransferRequest struct {
	FromWalletID string          `json:"from_wallet_id" validate:"required,uuid4"`
	ToWalletID   string          `json:"to_wallet_id" validate:"required,uuid4,nefield=FromWalletID"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	Description  string          `json:"description,omitempty" validate:"omitempty,max=255"`
}
