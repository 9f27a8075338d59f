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

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// GetSlotTypes handles GET /api/slot-types (public)
func (h *SlotHandler) GetSlotTypes(w http.ResponseWriter, r *http.Request) {
	slotTypes, err := h.service.GetSlotTypes(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get slot types")
		return
	}

	utils.ResponseSuccess(w, "success", slotTypes)
}

// GetSlots handles GET /api/slot-types/{id}/slots (public)
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	slotTypeID := chi.URLParam(r, "id")
	if slotTypeID == "" {
		utils.ResponseBadRequest(w, "Slot type ID is required", nil)
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	slots, err := h.service.GetSlots(r.Context(), slotTypeID, req)
	if err != nil {
		h.handleServiceError(w, err, "get slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

// GetSlotByID handles GET /api/slots/{id} (public)
func (h *SlotHandler) GetSlotByID(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "id")
	if slotID == "" {
		utils.ResponseBadRequest(w, "Slot ID is required", nil)
		return
	}

	slot, err := h.service.GetSlotByID(r.Context(), slotID)
	if err != nil {
		h.handleServiceError(w, err, "get slot by ID")
		return
	}

	utils.ResponseSuccess(w, "success", slot)
}

// GetSchedules handles GET /api/slots/{id}/schedules (public)
func (h *SlotHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "id")
	if slotID == "" {
		utils.ResponseBadRequest(w, "Slot ID is required", nil)
		return
	}

	schedules, err := h.service.GetSchedules(r.Context(), slotID)
	if err != nil {
		h.handleServiceError(w, err, "get schedules")
		return
	}

	utils.ResponseSuccess(w, "success", schedules)
}

// CreateSlot handles POST /api/slots (protected)
func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	slot, err := h.service.CreateSlot(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create slot")
		return
	}

	utils.ResponseCreated(w, "success", slot)
}

// CreateSchedule handles POST /api/schedules (protected)
func (h *SlotHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create schedule")
		return
	}

	utils.ResponseCreated(w, "success", schedule)
}

// ==================== ADMIN METHODS ====================

// CreateSlotType handles POST /api/admin/slot-types (admin only)
func (h *SlotHandler) CreateSlotType(w http.ResponseWriter, r *http.Request) {
	var req request.SlotTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	slotType, err := h.service.CreateSlotType(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create slot type")
		return
	}

	utils.ResponseCreated(w, "success", slotType)
}

func (h *SlotHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrSlotNotFound),
		errors.Is(err, usecase.ErrSlotTypeNotFound),
		errors.Is(err, usecase.ErrScheduleNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		h.log.Warn(operation+" failed - not the slot owner", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidAmount):
		h.log.Warn(operation+" failed - invalid price", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"),
		strings.Contains(err.Error(), "requires"):
		h.log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
