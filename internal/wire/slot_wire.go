package wire

import (
	"slot-booking/internal/adaptor"
	"slot-booking/internal/data/repository"
	"slot-booking/pkg/middleware"
	"slot-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSlot(
	r chi.Router,
	slotHandler *adaptor.SlotHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/slot-types - List types ordered by booking frequency
	r.Get("/api/slot-types", slotHandler.GetSlotTypes)

	// GET /api/slot-types/{id}/slots - Browse slots under a type
	r.Get("/api/slot-types/{id}/slots", slotHandler.GetSlots)

	// GET /api/slots/{id} - Slot details with its schedules
	r.Get("/api/slots/{id}", slotHandler.GetSlotByID)

	// GET /api/slots/{id}/schedules - Schedules for a slot
	r.Get("/api/slots/{id}/schedules", slotHandler.GetSchedules)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/slots - Publish a bookable slot
		r.Post("/api/slots", slotHandler.CreateSlot)

		// POST /api/schedules - Attach a schedule to an owned slot
		r.Post("/api/schedules", slotHandler.CreateSchedule)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/slot-types", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(repo.User, log))

		// POST /api/admin/slot-types - Create a slot type (admin)
		r.Post("/", slotHandler.CreateSlotType)
	})
}
