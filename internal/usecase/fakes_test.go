package usecase

import (
	"context"
	"sync"

	"slot-booking/internal/data/entity"
	"slot-booking/internal/data/repository"
	"slot-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// The fakes below back the service tests with in-memory state. The fake DB
// hands out transactions guarded by a single mutex, which mirrors what the
// schedule/wallet row locks give us in Postgres: units of work against the
// same store run one at a time.

type fakeDB struct {
	mu sync.Mutex
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.mu.Lock()
	return &fakeTx{db: d}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Ping(ctx context.Context) error { return nil }

func (d *fakeDB) Close() {}

type fakeTx struct {
	db   *fakeDB
	once sync.Once
}

func (t *fakeTx) release() {
	t.once.Do(t.db.mu.Unlock)
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.release()
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.release()
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (t *fakeTx) Conn() *pgx.Conn { return nil }

// ==================== WALLET ====================

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*entity.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[uuid.UUID]*entity.Wallet)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, wallet *entity.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *wallet
	r.wallets[wallet.ID] = &cp
	return nil
}

func (r *fakeWalletRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *wallet
	return &cp, nil
}

func (r *fakeWalletRepo) FindMainByUserID(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wallet := range r.wallets {
		if wallet.UserID == userID && wallet.Kind == entity.WalletKindMain {
			cp := *wallet
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWalletRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Wallet
	for _, wallet := range r.wallets {
		if wallet.UserID == userID {
			cp := *wallet
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeWalletRepo) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Wallet, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeWalletRepo) UpdateBalance(ctx context.Context, q database.Querier, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	wallet, ok := r.wallets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	wallet.Balance = balance
	return nil
}

// ==================== TRANSACTION ====================

type fakeTransactionRepo struct {
	mu      sync.Mutex
	records []*entity.Transaction
}

func (r *fakeTransactionRepo) Create(ctx context.Context, q database.Querier, tx *entity.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tx
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.records {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) FindByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	all := r.byWallet(walletID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeTransactionRepo) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	return int64(len(r.byWallet(walletID))), nil
}

func (r *fakeTransactionRepo) byWallet(walletID uuid.UUID) []*entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Transaction
	for _, tx := range r.records {
		fromMatch := tx.FromWalletID != nil && *tx.FromWalletID == walletID
		toMatch := tx.ToWalletID != nil && *tx.ToWalletID == walletID
		if fromMatch || toMatch {
			cp := *tx
			result = append(result, &cp)
		}
	}
	return result
}

func (r *fakeTransactionRepo) withStatus(status entity.TransactionStatus) []*entity.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Transaction
	for _, tx := range r.records {
		if tx.Status == status {
			cp := *tx
			result = append(result, &cp)
		}
	}
	return result
}

// ==================== SLOT TYPE / SLOT ====================

type fakeSlotTypeRepo struct {
	mu    sync.Mutex
	types map[uuid.UUID]*entity.SlotType
}

func newFakeSlotTypeRepo() *fakeSlotTypeRepo {
	return &fakeSlotTypeRepo{types: make(map[uuid.UUID]*entity.SlotType)}
}

func (r *fakeSlotTypeRepo) Create(ctx context.Context, slotType *entity.SlotType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slotType
	r.types[slotType.ID] = &cp
	return nil
}

func (r *fakeSlotTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slotType, ok := r.types[id]
	if !ok {
		return nil, nil
	}
	cp := *slotType
	return &cp, nil
}

func (r *fakeSlotTypeRepo) FindAll(ctx context.Context) ([]*entity.SlotType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.SlotType
	for _, slotType := range r.types {
		cp := *slotType
		result = append(result, &cp)
	}
	return result, nil
}

func (r *fakeSlotTypeRepo) IncrementFrequency(ctx context.Context, q database.Querier, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slotType, ok := r.types[id]
	if !ok {
		return pgx.ErrNoRows
	}
	slotType.Frequency++
	return nil
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*entity.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*entity.Slot)}
}

func (r *fakeSlotRepo) Create(ctx context.Context, slot *entity.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *slot
	return &cp, nil
}

func (r *fakeSlotRepo) FindBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID, limit, offset int) ([]*entity.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Slot
	for _, slot := range r.slots {
		if slot.SlotTypeID == slotTypeID {
			cp := *slot
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeSlotRepo) CountBySlotTypeID(ctx context.Context, slotTypeID uuid.UUID) (int64, error) {
	slots, _ := r.FindBySlotTypeID(ctx, slotTypeID, 0, 0)
	return int64(len(slots)), nil
}

// ==================== SCHEDULE ====================

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*entity.SlotSchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[uuid.UUID]*entity.SlotSchedule)}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, schedule *entity.SlotSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *schedule
	r.schedules[schedule.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.SlotSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule, ok := r.schedules[id]
	if !ok {
		return nil, nil
	}
	cp := *schedule
	return &cp, nil
}

func (r *fakeScheduleRepo) FindBySlotID(ctx context.Context, slotID uuid.UUID) ([]*entity.SlotSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.SlotSchedule
	for _, schedule := range r.schedules {
		if schedule.SlotID == slotID {
			cp := *schedule
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeScheduleRepo) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.SlotSchedule, error) {
	return r.FindByID(ctx, id)
}

// ==================== BOOKING ====================

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*entity.Booking
}

func (r *fakeBookingRepo) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings = append(r.bookings, &cp)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.ID == id {
			cp := *booking
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(ctx context.Context, q database.Querier, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookingRepo) FindByWalletIDs(ctx context.Context, walletIDs []uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	all := r.byWallets(walletIDs)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeBookingRepo) CountByWalletIDs(ctx context.Context, walletIDs []uuid.UUID) (int64, error) {
	return int64(len(r.byWallets(walletIDs))), nil
}

func (r *fakeBookingRepo) FindActiveByScheduleID(ctx context.Context, q database.Querier, scheduleID uuid.UUID) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Booking
	for _, booking := range r.bookings {
		if booking.ScheduleID == scheduleID && booking.Occupies() {
			cp := *booking
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, q database.Querier, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.ID == bookingID {
			booking.Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeBookingRepo) byWallets(walletIDs []uuid.UUID) []*entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[uuid.UUID]bool, len(walletIDs))
	for _, id := range walletIDs {
		ids[id] = true
	}
	var result []*entity.Booking
	for _, booking := range r.bookings {
		if ids[booking.WalletID] {
			cp := *booking
			result = append(result, &cp)
		}
	}
	return result
}

// ==================== FIXTURE ====================

type fixture struct {
	db       *fakeDB
	repo     *repository.Repository
	wallets  *fakeWalletRepo
	txs      *fakeTransactionRepo
	types    *fakeSlotTypeRepo
	slots    *fakeSlotRepo
	scheds   *fakeScheduleRepo
	bookings *fakeBookingRepo
}

func newFixture() *fixture {
	wallets := newFakeWalletRepo()
	txs := &fakeTransactionRepo{}
	types := newFakeSlotTypeRepo()
	slots := newFakeSlotRepo()
	scheds := newFakeScheduleRepo()
	bookings := &fakeBookingRepo{}

	return &fixture{
		db: &fakeDB{},
		repo: &repository.Repository{
			Wallet:      wallets,
			Transaction: txs,
			SlotType:    types,
			Slot:        slots,
			Schedule:    scheds,
			Booking:     bookings,
		},
		wallets:  wallets,
		txs:      txs,
		types:    types,
		slots:    slots,
		scheds:   scheds,
		bookings: bookings,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
