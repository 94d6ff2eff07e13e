package dto

import (
	"time"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AdminUserListRequest filters the admin user listing.
type AdminUserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string `validate:"omitempty,oneof=STUDENT EDUCATOR ADMIN"`
}

// AdminUserListResponse is a page of users.
type AdminUserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// AdminRoleUpdateRequest changes a user's role.
type AdminRoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT EDUCATOR ADMIN"`
}

// EducatorApprovalRequest resolves a pending educator.
type EducatorApprovalRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// AdminActivityListRequest filters the audit log.
type AdminActivityListRequest struct {
	Page       int
	PageSize   int
	ActorID    uint
	Action     string
	EntityType string
	EntityID   uint
}

// AdminActivityResponse is one audit entry.
type AdminActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AdminActivityListResponse is a page of audit entries.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewAdminActivityResponse converts an activity log model.
func NewAdminActivityResponse(model models.ActivityLog) AdminActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return AdminActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     string(model.Action),
		EntityType: string(model.EntityType),
		EntityID:   model.EntityID,
		Metadata:   metadata,
		CreatedAt:  model.CreatedAt,
	}
}
