package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether every credential is present.
func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// MaterialStore keeps quiz study materials in a Cloudinary folder.
type MaterialStore struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a material store. It fails when credentials are missing.
func New(cfg Config, logger zerolog.Logger) (*MaterialStore, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &MaterialStore{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
		now:    time.Now,
	}, nil
}

// Upload stores the material and returns its HTTPS delivery URL.
func (s *MaterialStore) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	publicID := materialPublicID(name, s.now())

	result, err := s.client.Upload.Upload(ctx, reader, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		ResourceType:   "auto",
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
		Tags:           api.CldAPIArray{"quiz-material"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload material: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected material: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("material stored")
	return result.SecureURL, nil
}

// materialPublicID derives a stable, URL-safe identifier from the file name.
func materialPublicID(name string, at time.Time) string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "material"
	}

	return fmt.Sprintf("%s-%d", base, at.Unix())
}
