package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// StatsInvalidator drops cached aggregates after writes that change them.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint)
}

// StatsService produces cached dashboard aggregates.
type StatsService interface {
	StatsInvalidator
	Student(ctx context.Context, identity Identity) (dto.StudentStatsResponse, error)
	Educator(ctx context.Context, identity Identity) (dto.EducatorStatsResponse, error)
}

type statsService struct {
	access   quizAccess
	repo     repository.StatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService builds the stats aggregator. A nil cache disables caching.
func NewStatsService(repo repository.StatsRepository, users repository.UserRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &statsService{
		access:   quizAccess{users: users},
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		now:      time.Now,
	}
}

func studentStatsKey(userID uint) string {
	return fmt.Sprintf("stats:student:%d", userID)
}

func educatorStatsKey(userID uint) string {
	return fmt.Sprintf("stats:educator:%d", userID)
}

func (s *statsService) Student(ctx context.Context, identity Identity) (dto.StudentStatsResponse, error) {
	if !identity.IsStudent() {
		return dto.StudentStatsResponse{}, ErrForbidden
	}

	var response dto.StudentStatsResponse
	if s.readCache(ctx, studentStatsKey(identity.UserID), &response) {
		response.CacheHit = true
		return response, nil
	}

	stats, err := s.repo.StudentStats(ctx, identity.UserID)
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	response = dto.StudentStatsResponse{
		TotalEnrollments:  stats.Enrollments,
		CompletedAttempts: stats.CompletedAttempts,
		AverageScore:      stats.AverageScore,
		TotalTimeSpent:    stats.TotalTimeSpent,
		GeneratedAt:       s.now().UTC(),
	}
	s.writeCache(ctx, studentStatsKey(identity.UserID), response)

	return response, nil
}

func (s *statsService) Educator(ctx context.Context, identity Identity) (dto.EducatorStatsResponse, error) {
	if err := s.access.requireEducator(ctx, identity); err != nil {
		return dto.EducatorStatsResponse{}, err
	}

	var response dto.EducatorStatsResponse
	if s.readCache(ctx, educatorStatsKey(identity.UserID), &response) {
		response.CacheHit = true
		return response, nil
	}

	stats, err := s.repo.EducatorStats(ctx, identity.UserID)
	if err != nil {
		return dto.EducatorStatsResponse{}, err
	}

	response = dto.EducatorStatsResponse{
		TotalQuizzes:  stats.Quizzes,
		TotalStudents: stats.Students,
		TotalAttempts: stats.Attempts,
		AverageScore:  stats.AverageScore,
		GeneratedAt:   s.now().UTC(),
	}
	s.writeCache(ctx, educatorStatsKey(identity.UserID), response)

	return response, nil
}

func (s *statsService) Invalidate(ctx context.Context, userIDs ...uint) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		keys = append(keys, studentStatsKey(id), educatorStatsKey(id))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate stats cache")
	}
}

func (s *statsService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read stats cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		return false
	}
	s.logger.Debug().Str("key", key).Msg("stats cache hit")
	return true
}

func (s *statsService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store stats cache")
	}
}
