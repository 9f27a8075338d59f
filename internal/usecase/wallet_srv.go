package usecase

import (
	"context"
	"fmt"
	"time"

	"slot-booking/internal/data/entity"
	"slot-booking/internal/data/repository"
	"slot-booking/internal/dto/response"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletService interface {
	// CreateMainWallet provisions the single main wallet a user gets at
	// registration. It is not exposed over HTTP.
	CreateMainWallet(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error)

	CreatePassWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	CreateVendorWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	GetWallets(ctx context.Context, userID string) ([]response.WalletResponse, error)
	GetWallet(ctx context.Context, userID string, walletID string) (*response.WalletResponse, error)
}

type walletService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewWalletService(repo *repository.Repository, log *zap.Logger) WalletService {
	return &walletService{
		repo: repo,
		log:  log.With(zap.String("service", "wallet")),
	}
}

func (s *walletService) CreateMainWallet(ctx context.Context, userID uuid.UUID) (*entity.Wallet, error) {
	existing, err := s.repo.Wallet.FindMainByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s: %w", userID.String(), ErrDuplicateMainWallet)
	}

	now := time.Now()
	wallet := &entity.Wallet{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:  userID,
		Kind:    entity.WalletKindMain,
		Balance: decimal.Zero,
	}

	if err := s.repo.Wallet.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.log.Info("Main wallet created",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("user_id", userID.String()),
	)

	return wallet, nil
}

// CreatePassWallet adds a sub-wallet parented to the caller's main wallet.
// Pass wallets always belong to the same user as their parent.
func (s *walletService) CreatePassWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	return s.createChildWallet(ctx, userID, entity.WalletKindPass)
}

// CreateVendorWallet adds a vendor sub-wallet, the kind slot owners use to
// segregate booking revenue from personal funds.
func (s *walletService) CreateVendorWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	return s.createChildWallet(ctx, userID, entity.WalletKindVendor)
}

func (s *walletService) createChildWallet(ctx context.Context, userID string, kind entity.WalletKind) (*response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	main, err := s.repo.Wallet.FindMainByUserID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if main == nil {
		return nil, fmt.Errorf("main wallet for user %s: %w", userID, ErrWalletNotFound)
	}

	now := time.Now()
	wallet := &entity.Wallet{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:         userUUID,
		Kind:           kind,
		Balance:        decimal.Zero,
		ParentWalletID: &main.ID,
	}

	if err := s.repo.Wallet.Create(ctx, wallet); err != nil {
		return nil, err
	}

	s.log.Info("Wallet created",
		zap.String("wallet_id", wallet.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("parent_wallet_id", main.ID.String()),
		zap.String("user_id", userID),
	)

	return response.WalletToResponse(wallet), nil
}

func (s *walletService) GetWallets(ctx context.Context, userID string) ([]response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	wallets, err := s.repo.Wallet.FindByUserID(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	result := make([]response.WalletResponse, len(wallets))
	for i, wallet := range wallets {
		result[i] = *response.WalletToResponse(wallet)
	}

	return result, nil
}

func (s *walletService) GetWallet(ctx context.Context, userID string, walletID string) (*response.WalletResponse, error) {
	wallet, _, err := parseWalletAndUser(walletID, userID)
	if err != nil {
		return nil, err
	}

	found, err := s.repo.Wallet.FindByID(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletNotFound)
	}
	if found.UserID.String() != userID {
		return nil, fmt.Errorf("wallet %s: %w", walletID, ErrWalletOwnership)
	}

	return response.WalletToResponse(found), nil
}
