package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      Identity
	Action     models.ActivityAction
	EntityType models.ActivityEntity
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder records audit entries for privileged mutations.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error)
}

// ActivityService exposes the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, identity Identity, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error)
	EntityHistory(ctx context.Context, identity Identity, kind models.ActivityEntity, id uint, page, pageSize int) (dto.AdminActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error) {
	action := models.ActivityAction(strings.ToLower(strings.TrimSpace(string(entry.Action))))
	if action == "" {
		return dto.AdminActivityResponse{}, fmt.Errorf("action is required")
	}
	kind := models.ActivityEntity(strings.ToLower(strings.TrimSpace(string(entry.EntityType))))
	if !kind.Valid() {
		return dto.AdminActivityResponse{}, fmt.Errorf("unknown entity type %q", entry.EntityType)
	}
	if action.Entity() != kind {
		return dto.AdminActivityResponse{}, fmt.Errorf("action %q does not apply to %s", action, kind)
	}

	model := models.ActivityLog{
		ActorID:    entry.Actor.UserID,
		ActorRole:  actorRole(entry.Actor.Role),
		Action:     action,
		EntityType: kind,
		EntityID:   entry.EntityID,
		Metadata:   maskMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", string(model.Action)).Msg("failed to persist activity log")
		return dto.AdminActivityResponse{}, err
	}

	return dto.NewAdminActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, identity Identity, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	if !identity.IsAdmin() {
		return dto.AdminActivityListResponse{}, ErrForbidden
	}

	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Action:     models.ActivityAction(strings.ToLower(strings.TrimSpace(req.Action))),
		EntityType: models.ActivityEntity(strings.ToLower(strings.TrimSpace(req.EntityType))),
	}
	if filter.EntityType != "" && !filter.EntityType.Valid() {
		return dto.AdminActivityListResponse{}, validationError("unknown entity type %q", req.EntityType)
	}
	if req.EntityID > 0 {
		if filter.EntityType == "" {
			return dto.AdminActivityListResponse{}, validationError("entity_id requires entity_type")
		}
		filter.EntityID = &req.EntityID
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminActivityListResponse{}, err
	}
	return activityPage(entries, total, req.Page, req.PageSize), nil
}

// EntityHistory lists the audit entries of a single quiz or user, newest first.
func (s *activityService) EntityHistory(ctx context.Context, identity Identity, kind models.ActivityEntity, id uint, page, pageSize int) (dto.AdminActivityListResponse, error) {
	if !identity.IsAdmin() {
		return dto.AdminActivityListResponse{}, ErrForbidden
	}
	if kind != models.ActivityEntityQuiz && kind != models.ActivityEntityUser {
		return dto.AdminActivityListResponse{}, validationError("no audit view for %q", kind)
	}
	if id == 0 {
		return dto.AdminActivityListResponse{}, validationError("%s id is required", kind)
	}

	entries, total, err := s.repo.ListForEntity(ctx, kind, id, page, pageSize)
	if err != nil {
		s.logger.Error().Err(err).Str("entity_type", string(kind)).Uint("entity_id", id).Msg("failed to load audit history")
		return dto.AdminActivityListResponse{}, err
	}
	return activityPage(entries, total, page, pageSize), nil
}

func activityPage(entries []models.ActivityLog, total int64, page, pageSize int) dto.AdminActivityListResponse {
	items := make([]dto.AdminActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAdminActivityResponse(entry))
	}
	return dto.AdminActivityListResponse{
		Items:      items,
		Pagination: paginationMeta(page, pageSize, total),
	}
}

// recordActivity writes an audit entry without failing the surrounding operation.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, entry ActivityEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", string(entry.Action)).Msg("activity not recorded")
	}
}

func maskMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	masked := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			masked[key] = "***"
			continue
		}
		masked[key] = value
	}
	return masked
}

func actorRole(role models.Role) string {
	if role == "" {
		return "system"
	}
	return strings.ToLower(string(role))
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	if page <= 0 {
		page = 1
	}

	meta := dto.PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: 1}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

func uintPtr(v uint) *uint {
	return &v
}
