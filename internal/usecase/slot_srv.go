package usecase

import (
	"context"
	"fmt"
	"time"

	"slot-booking/internal/data/entity"
	"slot-booking/internal/data/repository"
	"slot-booking/internal/dto/request"
	"slot-booking/internal/dto/response"
	"slot-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SlotService interface {
	CreateSlotType(ctx context.Context, req *request.SlotTypeRequest) (*response.SlotTypeResponse, error)
	GetSlotTypes(ctx context.Context) ([]response.SlotTypeResponse, error)

	CreateSlot(ctx context.Context, userID string, req *request.SlotRequest) (*response.SlotResponse, error)
	GetSlots(ctx context.Context, slotTypeID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlotResponse], error)
	GetSlotByID(ctx context.Context, slotID string) (*response.SlotDetailResponse, error)

	CreateSchedule(ctx context.Context, userID string, req *request.ScheduleRequest) (*response.ScheduleResponse, error)
	GetSchedules(ctx context.Context, slotID string) ([]response.ScheduleResponse, error)
}

type slotService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSlotService(
	repo *repository.Repository,
	log *zap.Logger,
) SlotService {
	return &slotService{
		repo: repo,
		log:  log.With(zap.String("service", "slot")),
	}
}

func (s *slotService) CreateSlotType(ctx context.Context, req *request.SlotTypeRequest) (*response.SlotTypeResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create slot type validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	slotType := &entity.SlotType{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:      req.Name,
		Frequency: 0,
	}

	if err := s.repo.SlotType.Create(ctx, slotType); err != nil {
		s.log.Error("Failed to create slot type",
			zap.Error(err),
			zap.String("name", req.Name),
		)
		return nil, fmt.Errorf("create slot type: %w", err)
	}

	s.log.Info("Slot type created",
		zap.String("slot_type_id", slotType.ID.String()),
		zap.String("name", slotType.Name),
	)

	return response.SlotTypeToResponse(slotType), nil
}

// GetSlotTypes returns all types ordered by booking frequency, most booked
// first.
func (s *slotService) GetSlotTypes(ctx context.Context) ([]response.SlotTypeResponse, error) {
	slotTypes, err := s.repo.SlotType.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get slot types", zap.Error(err))
		return nil, fmt.Errorf("get slot types: %w", err)
	}

	result := make([]response.SlotTypeResponse, len(slotTypes))
	for i, slotType := range slotTypes {
		result[i] = *response.SlotTypeToResponse(slotType)
	}

	return result, nil
}

func (s *slotService) CreateSlot(ctx context.Context, userID string, req *request.SlotRequest) (*response.SlotResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create slot validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	slotTypeID, err := uuid.Parse(req.SlotTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot type ID format %s: %w", req.SlotTypeID, err)
	}

	slotType, err := s.repo.SlotType.FindByID(ctx, slotTypeID)
	if err != nil {
		return nil, fmt.Errorf("check slot type: %w", err)
	}
	if slotType == nil {
		return nil, fmt.Errorf("slot type %s: %w", req.SlotTypeID, ErrSlotTypeNotFound)
	}

	now := time.Now()
	slot := &entity.Slot{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SlotTypeID:  slotTypeID,
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Action:      req.Action,
		Fields:      req.Fields,
	}

	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		s.log.Error("Failed to create slot",
			zap.Error(err),
			zap.String("title", req.Title),
		)
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.log.Info("Slot created",
		zap.String("slot_id", slot.ID.String()),
		zap.String("slot_type_id", req.SlotTypeID),
		zap.String("title", slot.Title),
	)

	return response.SlotToResponse(slot, slotType.Name), nil
}

func (s *slotService) GetSlots(ctx context.Context, slotTypeID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SlotResponse], error) {
	typeID, err := uuid.Parse(slotTypeID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot type ID format %s: %w", slotTypeID, err)
	}

	slotType, err := s.repo.SlotType.FindByID(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("check slot type: %w", err)
	}
	if slotType == nil {
		return nil, fmt.Errorf("slot type %s: %w", slotTypeID, ErrSlotTypeNotFound)
	}

	slots, err := s.repo.Slot.FindBySlotTypeID(ctx, typeID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get slots",
			zap.Error(err),
			zap.String("slot_type_id", slotTypeID),
		)
		return nil, fmt.Errorf("get slots: %w", err)
	}

	total, err := s.repo.Slot.CountBySlotTypeID(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("count slots: %w", err)
	}

	items := make([]response.SlotResponse, len(slots))
	for i, slot := range slots {
		items[i] = *response.SlotToResponse(slot, slotType.Name)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *slotService) GetSlotByID(ctx context.Context, slotID string) (*response.SlotDetailResponse, error) {
	id, err := uuid.Parse(slotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID format %s: %w", slotID, err)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", slotID, ErrSlotNotFound)
	}

	slotTypeName := ""
	slotType, err := s.repo.SlotType.FindByID(ctx, slot.SlotTypeID)
	if err != nil {
		s.log.Warn("Failed to get slot type for slot",
			zap.Error(err),
			zap.String("slot_id", slotID),
		)
	} else if slotType != nil {
		slotTypeName = slotType.Name
	}

	schedules, err := s.repo.Schedule.FindBySlotID(ctx, id)
	if err != nil {
		s.log.Warn("Failed to get schedules for slot",
			zap.Error(err),
			zap.String("slot_id", slotID),
		)
	}

	scheduleResponses := make([]response.ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		scheduleResponses[i] = *response.ScheduleToResponse(schedule)
	}

	return response.SlotToDetailResponse(slot, slotTypeName, scheduleResponses), nil
}

func (s *slotService) CreateSchedule(ctx context.Context, userID string, req *request.ScheduleRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create schedule validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID format %s: %w", req.SlotID, err)
	}

	slot, err := s.repo.Slot.FindByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, ErrSlotNotFound)
	}
	if slot.OwnerID != ownerID {
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, ErrForbidden)
	}

	var startTime *time.Time
	if req.StartTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start time %s: %w", req.StartTime, err)
		}
		startTime = &parsed
	}

	// Fixed schedules need an anchored start; flexible ones take the time
	// from each booking request instead.
	if !req.Flexible && startTime == nil {
		return nil, fmt.Errorf("fixed schedule requires start_time")
	}

	price := decimal.Zero
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("schedule price: %w", ErrInvalidAmount)
		}
		price = *req.Price
	}

	now := time.Now()
	schedule := &entity.SlotSchedule{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SlotID:      slotID,
		StartTime:   startTime,
		DurationMin: req.DurationMinutes,
		GraceMin:    req.GracePeriodMinutes,
		Flexible:    req.Flexible,
		Recurring:   req.Recurring,
		Recurrence:  req.RecurrencePattern,
		Price:       price,
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.log.Error("Failed to create schedule",
			zap.Error(err),
			zap.String("slot_id", req.SlotID),
		)
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	s.log.Info("Schedule created",
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("slot_id", req.SlotID),
		zap.Bool("flexible", schedule.Flexible),
		zap.String("price", schedule.Price.String()),
	)

	return response.ScheduleToResponse(schedule), nil
}

func (s *slotService) GetSchedules(ctx context.Context, slotID string) ([]response.ScheduleResponse, error) {
	id, err := uuid.Parse(slotID)
	if err != nil {
		return nil, fmt.Errorf("invalid slot ID format %s: %w", slotID, err)
	}

	slot, err := s.repo.Slot.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("slot %s: %w", slotID, ErrSlotNotFound)
	}

	schedules, err := s.repo.Schedule.FindBySlotID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get schedules",
			zap.Error(err),
			zap.String("slot_id", slotID),
		)
		return nil, fmt.Errorf("get schedules: %w", err)
	}

	result := make([]response.ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		result[i] = *response.ScheduleToResponse(schedule)
	}

	return result, nil
}
