package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// AdminUserService lets administrators manage accounts and approve educators.
type AdminUserService interface {
	List(ctx context.Context, identity Identity, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	UpdateRole(ctx context.Context, identity Identity, userID uint, req dto.AdminRoleUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, identity Identity, userID uint) error
	ListPendingEducators(ctx context.Context, identity Identity) ([]dto.UserResponse, error)
	SetEducatorApproval(ctx context.Context, identity Identity, userID uint, req dto.EducatorApprovalRequest) (dto.UserResponse, error)
}

type adminUserService struct {
	users     repository.UserRepository
	validator *validator.Validate
	activity  ActivityRecorder
	stats     StatsInvalidator
	logger    zerolog.Logger
}

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, stats StatsInvalidator, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		users:     users,
		validator: validate,
		activity:  activity,
		stats:     stats,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, identity Identity, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if !identity.IsAdmin() {
		return dto.AdminUserListResponse{}, ErrForbidden
	}

	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminUserListResponse{}, err
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     models.Role(req.Role),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	return dto.AdminUserListResponse{
		Items:      dto.NewUserResponseSlice(users),
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

// UpdateRole changes a user's role. Becoming an educator starts a pending
// approval; leaving the educator role clears the approval state.
func (s *adminUserService) UpdateRole(ctx context.Context, identity Identity, userID uint, req dto.AdminRoleUpdateRequest) (dto.UserResponse, error) {
	if !identity.IsAdmin() {
		return dto.UserResponse{}, ErrForbidden
	}

	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if userID == identity.UserID {
		return dto.UserResponse{}, validationError("admins cannot change their own role")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	role := models.Role(req.Role)
	updates := map[string]interface{}{"role": role}
	switch {
	case role == models.RoleEducator && user.EducatorStatus == nil:
		updates["educator_status"] = models.EducatorStatusPending
	case role != models.RoleEducator:
		updates["educator_status"] = nil
	}

	updated, err := s.users.Update(ctx, userID, updates)
	if err != nil {
		return dto.UserResponse{}, s.translate(err)
	}

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      identity,
		Action:     models.ActivityUserRoleChanged,
		EntityType: models.ActivityEntityUser,
		EntityID:   uintPtr(userID),
		Metadata:   map[string]interface{}{"from": string(user.Role), "to": string(role)},
	})

	return dto.NewUserResponse(updated), nil
}

// Delete removes the user with everything they own in one transaction.
func (s *adminUserService) Delete(ctx context.Context, identity Identity, userID uint) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}
	if userID == identity.UserID {
		return validationError("admins cannot delete their own account")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to delete user")
		return s.translate(err)
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx, userID)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      identity,
		Action:     models.ActivityUserDeleted,
		EntityType: models.ActivityEntityUser,
		EntityID:   uintPtr(userID),
		Metadata:   map[string]interface{}{"role": string(user.Role), "email": user.Email},
	})

	return nil
}

func (s *adminUserService) ListPendingEducators(ctx context.Context, identity Identity) ([]dto.UserResponse, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}

	users, _, err := s.users.List(ctx, repository.UserFilter{
		Role:           models.RoleEducator,
		EducatorStatus: models.EducatorStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *adminUserService) SetEducatorApproval(ctx context.Context, identity Identity, userID uint, req dto.EducatorApprovalRequest) (dto.UserResponse, error) {
	if !identity.IsAdmin() {
		return dto.UserResponse{}, ErrForbidden
	}

	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if user.Role != models.RoleEducator {
		return dto.UserResponse{}, validationError("user is not an educator")
	}

	status := models.EducatorStatus(req.Status)
	updated, err := s.users.Update(ctx, userID, map[string]interface{}{"educator_status": status})
	if err != nil {
		return dto.UserResponse{}, s.translate(err)
	}

	previous := ""
	if user.EducatorStatus != nil {
		previous = string(*user.EducatorStatus)
	}
	s.logger.Info().Uint("user_id", userID).Str("status", string(status)).Msg("educator approval updated")
	action := models.ActivityEducatorApproved
	if status == models.EducatorStatusRejected {
		action = models.ActivityEducatorRejected
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      identity,
		Action:     action,
		EntityType: models.ActivityEntityEducatorApproval,
		EntityID:   uintPtr(userID),
		Metadata:   map[string]interface{}{"from": previous, "to": string(status)},
	})

	return dto.NewUserResponse(updated), nil
}

func (s *adminUserService) loadUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, s.translate(err)
	}
	return user, nil
}

func (s *adminUserService) translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
