package wire

import (
	"slot-booking/internal/adaptor"
	"slot-booking/internal/data/repository"
	"slot-booking/pkg/middleware"
	"slot-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireWallet(
	r chi.Router,
	walletHandler *adaptor.WalletHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/wallets - List caller's wallets
		r.Get("/api/wallets", walletHandler.GetWallets)

		// POST /api/wallets/pass - Create a pass wallet under the main wallet
		r.Post("/api/wallets/pass", walletHandler.CreatePassWallet)

		// POST /api/wallets/vendor - Create a vendor wallet for booking revenue
		r.Post("/api/wallets/vendor", walletHandler.CreateVendorWallet)

		// Ledger operations
		r.Post("/api/wallets/topup", walletHandler.TopUp)
		r.Post("/api/wallets/spend", walletHandler.Spend)
		r.Post("/api/wallets/transfer", walletHandler.Transfer)

		// GET /api/wallets/{id} - Wallet details
		r.Get("/api/wallets/{id}", walletHandler.GetWallet)

		// GET /api/wallets/{id}/transactions - Ledger history for the wallet
		r.Get("/api/wallets/{id}/transactions", walletHandler.GetWalletTransactions)
	})
}
