package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"slot-booking/internal/dto/request"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WalletHandler struct {
	wallet usecase.WalletService
	ledger usecase.LedgerService
	log    *zap.Logger
}

func NewWalletHandler(wallet usecase.WalletService, ledger usecase.LedgerService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		wallet: wallet,
		ledger: ledger,
		log:    log.With(zap.String("handler", "wallet")),
	}
}

// CreatePassWallet handles POST /api/wallets/pass (protected)
func (h *WalletHandler) CreatePassWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.wallet.CreatePassWallet(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "create pass wallet")
		return
	}

	utils.ResponseCreated(w, "success", wallet)
}

// CreateVendorWallet handles POST /api/wallets/vendor (protected)
func (h *WalletHandler) CreateVendorWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.wallet.CreateVendorWallet(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "create vendor wallet")
		return
	}

	utils.ResponseCreated(w, "success", wallet)
}

// GetWallets handles GET /api/wallets (protected)
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallets, err := h.wallet.GetWallets(r.Context(), userID.String())
	if err != nil {
		h.handleServiceError(w, err, "get wallets")
		return
	}

	utils.ResponseSuccess(w, "success", wallets)
}

// GetWallet handles GET /api/wallets/{id} (protected)
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	walletID := chi.URLParam(r, "id")
	if walletID == "" {
		utils.ResponseBadRequest(w, "Wallet ID is required", nil)
		return
	}

	wallet, err := h.wallet.GetWallet(r.Context(), userID.String(), walletID)
	if err != nil {
		h.handleServiceError(w, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetWalletTransactions handles GET /api/wallets/{id}/transactions (protected)
func (h *WalletHandler) GetWalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	walletID := chi.URLParam(r, "id")
	if walletID == "" {
		utils.ResponseBadRequest(w, "Wallet ID is required", nil)
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	transactions, err := h.ledger.GetWalletTransactions(r.Context(), userID.String(), walletID, req)
	if err != nil {
		h.handleServiceError(w, err, "get wallet transactions")
		return
	}

	utils.ResponseSuccess(w, "success", transactions)
}

// TopUp handles POST /api/wallets/topup (protected)
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	transaction, err := h.ledger.TopUp(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "top up")
		return
	}

	utils.ResponseCreated(w, "success", transaction)
}

// Spend handles POST /api/wallets/spend (protected)
func (h *WalletHandler) Spend(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	transaction, err := h.ledger.Spend(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "spend")
		return
	}

	utils.ResponseCreated(w, "success", transaction)
}

// Transfer handles POST /api/wallets/transfer (protected)
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	transaction, err := h.ledger.Transfer(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "transfer")
		return
	}

	utils.ResponseCreated(w, "success", transaction)
}

func (h *WalletHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrWalletNotFound):
		h.log.Warn(operation+" failed - wallet not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrWalletOwnership), errors.Is(err, usecase.ErrForbidden):
		h.log.Warn(operation+" failed - not the wallet owner", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrSameWallet):
		h.log.Warn(operation+" failed - invalid amount", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInsufficientBalance):
		h.log.Warn(operation+" failed - insufficient balance", zap.Error(err))
		utils.ResponsePaymentRequired(w, err.Error())

	case errors.Is(err, usecase.ErrDuplicateMainWallet):
		h.log.Warn(operation+" failed - main wallet exists", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrBusy):
		h.log.Warn(operation+" hit lock contention", zap.Error(err))
		utils.ResponseConflict(w, "Wallet is busy, please retry")

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		h.log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
