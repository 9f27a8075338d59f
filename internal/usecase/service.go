package usecase

import (
	"slot-booking/internal/data/repository"
	"slot-booking/pkg/database"
	"slot-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Wallet  WalletService
	Ledger  LedgerService
	Slot    SlotService
	Booking BookingService
}

func NewService(db database.PgxIface, repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	wallet := NewWalletService(repo, log)
	ledger := NewLedgerService(db, repo, log)

	return &Service{
		Auth:    NewAuthService(repo, wallet, config, log),
		User:    NewUserService(repo.User, log),
		Wallet:  wallet,
		Ledger:  ledger,
		Slot:    NewSlotService(repo, log),
		Booking: NewBookingService(db, repo, ledger, log),
	}
}
