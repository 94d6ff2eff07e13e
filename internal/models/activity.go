package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActivityEntity is the kind of record an audit entry points at.
type ActivityEntity string

const (
	ActivityEntityQuiz             ActivityEntity = "quiz"
	ActivityEntityUser             ActivityEntity = "user"
	ActivityEntityEducatorApproval ActivityEntity = "educator_approval"
)

// Valid reports whether the audit trail tracks this kind.
func (e ActivityEntity) Valid() bool {
	switch e {
	case ActivityEntityQuiz, ActivityEntityUser, ActivityEntityEducatorApproval:
		return true
	}
	return false
}

// Subject returns the kind whose audit view lists entries of e. Approval
// decisions are keyed by the educator's user id and belong to the user view.
func (e ActivityEntity) Subject() ActivityEntity {
	if e == ActivityEntityEducatorApproval {
		return ActivityEntityUser
	}
	return e
}

// ActivityAction names an audited mutation as "<entity>.<verb>".
type ActivityAction string

const (
	ActivityQuizDeleted      ActivityAction = "quiz.deleted"
	ActivityUserRoleChanged  ActivityAction = "user.role_changed"
	ActivityUserDeleted      ActivityAction = "user.deleted"
	ActivityEducatorApproved ActivityAction = "educator_approval.approved"
	ActivityEducatorRejected ActivityAction = "educator_approval.rejected"
)

// Entity returns the kind encoded in the action prefix.
func (a ActivityAction) Entity() ActivityEntity {
	prefix, _, _ := strings.Cut(string(a), ".")
	return ActivityEntity(prefix)
}

// ActivityLog is one entry of the quiz and account audit trail.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:16;not null" json:"actor_role"`
	Action     ActivityAction    `gorm:"size:64;not null;index" json:"action"`
	EntityType ActivityEntity    `gorm:"size:32;not null;index:idx_activity_entity,priority:1" json:"entity_type"`
	EntityID   *uint             `gorm:"index:idx_activity_entity,priority:2" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
