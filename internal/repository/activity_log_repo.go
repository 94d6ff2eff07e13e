package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// ActivityLogFilter narrows the admin audit listing. Zero values match everything.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	ActorID    *uint
	Action     models.ActivityAction
	EntityType models.ActivityEntity
	EntityID   *uint
}

// ActivityLogRepository stores the audit trail of quiz and account mutations.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	ListForEntity(ctx context.Context, kind models.ActivityEntity, id uint, page, pageSize int) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the audit trail repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", string(filter.EntityType))
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}
	return r.page(query, filter.Page, filter.PageSize)
}

// ListForEntity returns the audit history of one quiz or user. The user view
// also carries the approval decisions taken on that educator account.
func (r *activityLogRepository) ListForEntity(ctx context.Context, kind models.ActivityEntity, id uint, page, pageSize int) ([]models.ActivityLog, int64, error) {
	kinds := []string{string(kind)}
	if kind == models.ActivityEntityUser {
		kinds = append(kinds, string(models.ActivityEntityEducatorApproval))
	}

	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("entity_type IN ?", kinds).
		Where("entity_id = ?", id)
	return r.page(query, page, pageSize)
}

func (r *activityLogRepository) page(query *gorm.DB, page, pageSize int) ([]models.ActivityLog, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.ActivityLog{}, 0, nil
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	entries := make([]models.ActivityLog, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
