package repository

import (
	"slot-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Wallet      WalletRepository
	Transaction TransactionRepository
	SlotType    SlotTypeRepository
	Slot        SlotRepository
	Schedule    ScheduleRepository
	Booking     BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Wallet:      NewWalletRepository(db, log),
		Transaction: NewTransactionRepository(db, log),
		SlotType:    NewSlotTypeRepository(db, log),
		Slot:        NewSlotRepository(db, log),
		Schedule:    NewScheduleRepository(db, log),
		Booking:     NewBookingRepository(db, log),
	}
}
