package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/quizhub-api/internal/dto"
	"github.com/noah-isme/quizhub-api/internal/repository"
)

// MaterialStorage abstracts where quiz materials are stored.
type MaterialStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// MaterialService attaches study material files to quizzes.
type MaterialService interface {
	Attach(ctx context.Context, identity Identity, quizID uint, file *multipart.FileHeader) (dto.QuizResponse, error)
}

type materialService struct {
	access  quizAccess
	quizzes repository.QuizRepository
	storage MaterialStorage
	maxSize int64
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewMaterialService constructs the material service. A nil storage disables uploads.
func NewMaterialService(quizzes repository.QuizRepository, users repository.UserRepository, storage MaterialStorage, maxSizeMB int, logger zerolog.Logger) MaterialService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &materialService{
		access:  quizAccess{quizzes: quizzes, users: users},
		quizzes: quizzes,
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "material_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/quizhub-api/internal/service/material"),
	}
}

func (s *materialService) Attach(ctx context.Context, identity Identity, quizID uint, file *multipart.FileHeader) (dto.QuizResponse, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.material.attach")
	defer span.End()
	span.SetAttributes(attribute.Int("quiz.id", int(quizID)))

	fail := func(err error, reason string) (dto.QuizResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return dto.QuizResponse{}, err
	}

	if _, err := s.access.authorizeQuiz(ctx, identity, quizID); err != nil {
		return fail(err, "not authorized")
	}

	if s.storage == nil {
		return fail(ErrUploadUnavailable, "storage disabled")
	}

	if file == nil {
		return fail(validationError("file is required"), "validation failed")
	}
	if file.Size > s.maxSize {
		return fail(ErrUploadTooLarge, "payload too large")
	}

	handle, err := file.Open()
	if err != nil {
		return fail(err, "open failed")
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return fail(err, "read failed")
	}
	if int64(buf.Len()) > s.maxSize {
		return fail(ErrUploadTooLarge, "payload too large")
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !allowedMaterialType(detected) {
		return fail(ErrUploadTypeNotAllowed, "type not allowed")
	}

	url, err := s.storage.Upload(ctx, materialFileName(file.Filename, detected.Extension()), bytes.NewReader(buf.Bytes()))
	if err != nil {
		s.logger.Error().Err(err).Uint("quiz_id", quizID).Msg("material upload failed")
		return fail(err, "storage failed")
	}

	if _, err := s.quizzes.Update(ctx, quizID, map[string]interface{}{"material_url": url}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(ErrQuizNotFound, "quiz vanished")
		}
		return fail(err, "persistence failed")
	}

	quiz, err := s.quizzes.GetWithQuestions(ctx, quizID)
	if err != nil {
		return fail(err, "reload failed")
	}

	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("quiz_id", quizID).Str("mime", detected.String()).Msg("material attached")
	return dto.NewQuizResponse(quiz, dto.QuizCounts{Questions: int64(len(quiz.Questions))}), nil
}

func allowedMaterialType(detected *mimetype.MIME) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		switch {
		case mime.Is("application/pdf"), mime.Is("text/plain"):
			return true
		case strings.HasPrefix(mime.String(), "image/"):
			return true
		}
	}
	return false
}

func materialFileName(name, extension string) string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("material-%d", time.Now().Unix())
	}
	if extension == "" {
		extension = ".bin"
	}
	return base + extension
}
