package repository

import (
	"context"
	"io"

	"travel-review-service/internal/model"
)

// ReviewRepository persists reviews. Implementations return apperror kinds:
// NotFound for ids that resolve to no review.
type ReviewRepository interface {
	// Insert stores a review with an empty rating and no comments and returns its id.
	Insert(ctx context.Context, r model.NewReview) (string, error)
	// List returns every review matching filter in the filter's sort order.
	List(ctx context.Context, filter model.ReviewFilter) ([]model.Review, error)
	// FoldRating adds value to the review's running mean in a single atomic
	// operation and returns the updated statistics.
	FoldRating(ctx context.Context, id string, value float64) (model.RatingStats, error)
	// AppendComment pushes c onto the end of the review's comment list.
	AppendComment(ctx context.Context, id string, c model.Comment) error
}

// UserRepository persists accounts keyed by email.
type UserRepository interface {
	// Insert stores u and fills in its id. Duplicate emails yield Conflict.
	Insert(ctx context.Context, u *model.User) error
	// FindByEmail returns NotFound when no account has that email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Photo is an opened stored upload.
type Photo struct {
	io.ReadCloser
	Name string
	Size int64
}

// PhotoRepository stores uploaded photos by file name.
type PhotoRepository interface {
	Save(ctx context.Context, name string, r io.Reader) error
	// Open returns NotFound for unknown names.
	Open(ctx context.Context, name string) (*Photo, error)
}

const (
	msgReviewNotFound = "Review not found."
	msgUserNotFound   = "User not found"
	msgEmailTaken     = "Email already registered"
)
