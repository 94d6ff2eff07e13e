package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/models"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// AuthService registers accounts and issues bearer tokens.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, identity Identity) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &authService{
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Role:          models.Role(req.Role),
		Bio:           strings.TrimSpace(req.Bio),
		Qualification: strings.TrimSpace(req.Qualification),
	}
	if user.Role == models.RoleEducator {
		status := models.EducatorStatusPending
		user.EducatorStatus = &status
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	if user.EducatorStatus != nil {
		claims["educator_status"] = string(*user.EducatorStatus)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, identity Identity) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}
