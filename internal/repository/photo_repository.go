package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"travel-review-service/internal/apperror"
)

const msgPhotoNotFound = "Photo not found"

// GridFSPhotoRepository stores photos in a MongoDB GridFS bucket, addressed
// by their generated file name.
type GridFSPhotoRepository struct {
	bucket *gridfs.Bucket
}

var _ PhotoRepository = (*GridFSPhotoRepository)(nil)

func NewGridFSPhotoRepository(db *mongo.Database) (*GridFSPhotoRepository, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("GridFSPhotoRepository: %w", err)
	}
	return &GridFSPhotoRepository{bucket: bucket}, nil
}

func (r *GridFSPhotoRepository) Save(ctx context.Context, name string, src io.Reader) error {
	stream, err := r.bucket.OpenUploadStream(name)
	if err != nil {
		return apperror.Internal("store photo", fmt.Errorf("GridFSPhotoRepository.Save: %w", err))
	}
	if _, err := io.Copy(stream, src); err != nil {
		_ = stream.Abort()
		return apperror.Internal("store photo", fmt.Errorf("GridFSPhotoRepository.Save copy: %w", err))
	}
	if err := stream.Close(); err != nil {
		return apperror.Internal("store photo", fmt.Errorf("GridFSPhotoRepository.Save close: %w", err))
	}
	return nil
}

func (r *GridFSPhotoRepository) Open(ctx context.Context, name string) (*Photo, error) {
	stream, err := r.bucket.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, apperror.NotFound(msgPhotoNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("open photo", fmt.Errorf("GridFSPhotoRepository.Open: %w", err))
	}
	return &Photo{ReadCloser: stream, Name: name, Size: stream.GetFile().Length}, nil
}

// DiskPhotoRepository stores photos as files in a single directory.
type DiskPhotoRepository struct {
	dir string
}

var _ PhotoRepository = (*DiskPhotoRepository)(nil)

// NewDiskPhotoRepository creates dir if it does not exist.
func NewDiskPhotoRepository(dir string) (*DiskPhotoRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("DiskPhotoRepository: %w", err)
	}
	return &DiskPhotoRepository{dir: dir}, nil
}

func (r *DiskPhotoRepository) Save(ctx context.Context, name string, src io.Reader) error {
	path, ok := r.path(name)
	if !ok {
		return apperror.InvalidInput("invalid photo name")
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return apperror.Internal("store photo", fmt.Errorf("DiskPhotoRepository.Save: %w", err))
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return apperror.Internal("store photo", fmt.Errorf("DiskPhotoRepository.Save copy: %w", err))
	}
	if err := f.Close(); err != nil {
		return apperror.Internal("store photo", fmt.Errorf("DiskPhotoRepository.Save close: %w", err))
	}
	return nil
}

func (r *DiskPhotoRepository) Open(ctx context.Context, name string) (*Photo, error) {
	path, ok := r.path(name)
	if !ok {
		return nil, apperror.NotFound(msgPhotoNotFound)
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperror.NotFound(msgPhotoNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("open photo", fmt.Errorf("DiskPhotoRepository.Open: %w", err))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperror.Internal("open photo", fmt.Errorf("DiskPhotoRepository.Open stat: %w", err))
	}
	if info.IsDir() {
		f.Close()
		return nil, apperror.NotFound(msgPhotoNotFound)
	}
	return &Photo{ReadCloser: f, Name: name, Size: info.Size()}, nil
}

// path rejects anything that is not a plain file name inside dir.
func (r *DiskPhotoRepository) path(name string) (string, bool) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", false
	}
	return filepath.Join(r.dir, name), true
}
