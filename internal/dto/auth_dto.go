package dto

import (
	"time"

	"github.com/noah-isme/quizhub-api/internal/models"
)

// RegisterRequest is the self-registration payload. Admin accounts cannot be self-registered.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Name          string `json:"name" validate:"required,min=2"`
	Role          string `json:"role" validate:"required,oneof=STUDENT EDUCATOR"`
	Bio           string `json:"bio" validate:"omitempty,max=2000"`
	Qualification string `json:"qualification" validate:"omitempty,max=255"`
}

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	EducatorStatus *string   `json:"educator_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse returns a bearer token and the authenticated user.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse converts a user model into its public shape.
func NewUserResponse(user models.User) UserResponse {
	response := UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if user.EducatorStatus != nil {
		status := string(*user.EducatorStatus)
		response.EducatorStatus = &status
	}
	return response
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
