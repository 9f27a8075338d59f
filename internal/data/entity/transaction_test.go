package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionValidate(t *testing.T) {
	walletA := uuid.New()
	walletB := uuid.New()

	tests := []struct {
		name string
		kind TransactionKind
		from *uuid.UUID
		to   *uuid.UUID
		ok   bool
	}{
		{"topup has only a destination", TransactionKindTopup, nil, &walletA, true},
		{"topup with a source is malformed", TransactionKindTopup, &walletA, &walletB, false},
		{"topup without a destination is malformed", TransactionKindTopup, nil, nil, false},
		{"spend has only a source", TransactionKindSpend, &walletA, nil, true},
		{"spend with a destination is malformed", TransactionKindSpend, &walletA, &walletB, false},
		{"transfer needs both ends", TransactionKindTransfer, &walletA, &walletB, true},
		{"transfer without a source is malformed", TransactionKindTransfer, nil, &walletB, false},
		{"unknown kind is malformed", TransactionKind("withdrawal"), &walletA, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{
				FromWalletID: tt.from,
				ToWalletID:   tt.to,
				Amount:       decimal.NewFromInt(10),
				Kind:         tt.kind,
				Status:       TransactionStatusCompleted,
			}
			err := tx.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransactionShape)
			}
		})
	}
}
