package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted image, 5 MiB
const MaxImageSize = 5 << 20

// ImageKeyPrefix prefixes every product image key
const ImageKeyPrefix = "products/"

// Image validation errors
var (
	ErrFileNotFound        = shared.NewDomainError("FILE_NOT_FOUND", "File not found")
	ErrUnsupportedFileType = shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Unsupported file type")
	ErrFileTooLarge        = shared.NewDomainError("FILE_TOO_LARGE", "File is too large (max 5MB)")
)

// imageExtensions maps accepted content types to object key extensions
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageFile is an uploaded file. Size may be set without Data when the
// caller already knows the file is too large to read.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// ImageUploadFailure describes a file that could not be uploaded
type ImageUploadFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// UploadImagesResponse lists uploaded URLs and skipped files
type UploadImagesResponse struct {
	URLs   []string             `json:"urls"`
	Failed []ImageUploadFailure `json:"failed"`
}

// ImageService validates and uploads product images
type ImageService struct {
	storage ImageStorage
	newID   func() uuid.UUID
	logger  *zap.Logger
}

// ImageServiceOption configures an ImageService
type ImageServiceOption func(*ImageService)

// WithImageLogger sets the logger
func WithImageLogger(logger *zap.Logger) ImageServiceOption {
	return func(s *ImageService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides the generator of object key ids
func WithIDGenerator(gen func() uuid.UUID) ImageServiceOption {
	return func(s *ImageService) {
		s.newID = gen
	}
}

// NewImageService creates a new ImageService
func NewImageService(storage ImageStorage, opts ...ImageServiceOption) *ImageService {
	s := &ImageService{
		storage: storage,
		newID:   uuid.New,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateImage checks presence, type and size. It never touches storage.
func ValidateImage(f ImageFile) (ext string, err error) {
	size := f.Size
	if size == 0 {
		size = int64(len(f.Data))
	}
	if size == 0 {
		return "", ErrFileNotFound
	}
	contentType := f.contentType()
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	if size > MaxImageSize {
		return "", ErrFileTooLarge
	}
	return ext, nil
}

// contentType returns the declared media type, sniffing the data when none was sent
func (f ImageFile) contentType() string {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if (ct == "" || ct == "application/octet-stream") && len(f.Data) > 0 {
		ct = http.DetectContentType(f.Data)
	}
	return ct
}

// UploadImage validates a single image and uploads it under products/<uuid>.<ext>
func (s *ImageService) UploadImage(ctx context.Context, f ImageFile) (string, error) {
	ext, err := ValidateImage(f)
	if err != nil {
		return "", err
	}
	if int64(len(f.Data)) > MaxImageSize {
		return "", ErrFileTooLarge
	}

	key := ImageKeyPrefix + s.newID().String() + "." + ext
	url, err := s.storage.Upload(ctx, key, f.Data, f.contentType())
	if err != nil {
		if errors.Is(err, ErrObjectExists) {
			return "", shared.NewDomainError("ALREADY_EXISTS", "An image with this key already exists")
		}
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Info("Image uploaded", zap.String("key", key), zap.Int("size", len(f.Data)))
	return url, nil
}

// UploadImages uploads every file independently. Failed files are logged and
// reported without stopping the rest.
func (s *ImageService) UploadImages(ctx context.Context, files []ImageFile) UploadImagesResponse {
	resp := UploadImagesResponse{
		URLs:   make([]string, 0, len(files)),
		Failed: make([]ImageUploadFailure, 0),
	}
	for _, f := range files {
		url, err := s.UploadImage(ctx, f)
		if err != nil {
			s.logger.Warn("Image upload skipped", zap.String("file", f.Name), zap.Error(err))
			resp.Failed = append(resp.Failed, ImageUploadFailure{File: f.Name, Error: err.Error()})
			continue
		}
		resp.URLs = append(resp.URLs, url)
	}
	return resp
}
