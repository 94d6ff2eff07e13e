package models

import "time"

// Role identifies what a user may do on the platform.
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleEducator Role = "EDUCATOR"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEducator, RoleAdmin:
		return true
	default:
		return false
	}
}

// EducatorStatus tracks admin approval of an educator account.
type EducatorStatus string

const (
	EducatorStatusPending  EducatorStatus = "PENDING"
	EducatorStatusApproved EducatorStatus = "APPROVED"
	EducatorStatusRejected EducatorStatus = "REJECTED"
)

// User is any account on the platform. EducatorStatus is only meaningful for educators.
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Email          string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string          `gorm:"size:255;not null" json:"-"`
	Role           Role            `gorm:"size:16;not null;index" json:"role"`
	EducatorStatus *EducatorStatus `gorm:"size:16" json:"educator_status"`
	Bio            string          `gorm:"type:text" json:"bio"`
	Qualification  string          `gorm:"size:255" json:"qualification"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsApprovedEducator reports whether the user is an educator cleared by an admin.
func (u User) IsApprovedEducator() bool {
	return u.Role == RoleEducator && u.EducatorStatus != nil && *u.EducatorStatus == EducatorStatusApproved
}
