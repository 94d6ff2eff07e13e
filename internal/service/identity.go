package service

import "github.com/noah-isme/quizhub-api/internal/models"

// Identity is the authenticated caller, passed explicitly into every operation.
type Identity struct {
	UserID uint
	Role   models.Role
}

// IsAdmin reports whether the caller is an administrator.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// IsStudent reports whether the caller is a student.
func (i Identity) IsStudent() bool {
	return i.Role == models.RoleStudent
}

// IsEducator reports whether the caller is an educator, approved or not.
func (i Identity) IsEducator() bool {
	return i.Role == models.RoleEducator
}
