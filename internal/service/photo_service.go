package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/metrics"
	"travel-review-service/internal/repository"
)

// PublicPhotoPrefix is the URL path photos are served under.
const PublicPhotoPrefix = "/uploads/"

// Upload is one incoming file.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// PhotoService renames uploads and hands them to the photo store.
type PhotoService struct {
	photos  repository.PhotoRepository
	metrics *metrics.Metrics
	newName func(ext string) string
}

func NewPhotoService(photos repository.PhotoRepository, m *metrics.Metrics) *PhotoService {
	return &PhotoService{
		photos:  photos,
		metrics: m,
		newName: func(ext string) string { return uuid.NewString() + ext },
	}
}

// Save stores every upload under a fresh name that keeps the original
// extension and returns their public URLs in input order.
func (s *PhotoService) Save(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, apperror.InvalidInput("No files uploaded")
	}

	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		name := s.newName(strings.ToLower(filepath.Ext(u.Filename)))
		if err := s.store(ctx, name, u); err != nil {
			return nil, err
		}
		urls = append(urls, PublicPhotoPrefix+name)
	}
	s.metrics.PhotosStored(len(urls))
	return urls, nil
}

func (s *PhotoService) store(ctx context.Context, name string, u Upload) error {
	src, err := u.Open()
	if err != nil {
		return apperror.Internal("open upload", fmt.Errorf("PhotoService.Save %s: %w", u.Filename, err))
	}
	defer src.Close()

	if err := s.photos.Save(ctx, name, src); err != nil {
		return fmt.Errorf("PhotoService.Save: %w", err)
	}
	return nil
}

// Open returns a stored photo by name.
func (s *PhotoService) Open(ctx context.Context, name string) (*repository.Photo, error) {
	return s.photos.Open(ctx, name)
}
