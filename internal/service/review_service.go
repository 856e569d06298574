package service

import (
	"context"
	"fmt"
	"strings"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/metrics"
	"travel-review-service/internal/model"
	"travel-review-service/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewService contains business logic for reviews, ratings and comments.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	metrics    *metrics.Metrics
}

// NewReviewService constructs a ReviewService. m may be nil.
func NewReviewService(rr repository.ReviewRepository, m *metrics.Metrics) *ReviewService {
	return &ReviewService{reviewRepo: rr, metrics: m}
}

// List returns every review matching filter, ordered by filter.Sort.
// The result is never nil.
func (s *ReviewService) List(ctx context.Context, filter model.ReviewFilter) ([]model.Review, error) {
	reviews, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ReviewService.List: %w", err)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

// Create validates and stores a new review and returns its id.
func (s *ReviewService) Create(ctx context.Context, in model.NewReview) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Purpose = strings.TrimSpace(in.Purpose)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Transport = strings.TrimSpace(in.Transport)

	if in.Name == "" || in.Location == "" || in.Purpose == "" ||
		in.Budget == "" || in.Transport == "" || strings.TrimSpace(in.Text) == "" {
		return "", apperror.InvalidInput("Missing required fields")
	}
	if in.Images == nil {
		in.Images = []string{}
	}

	id, err := s.reviewRepo.Insert(ctx, in)
	if err != nil {
		return "", fmt.Errorf("ReviewService.Create: %w", err)
	}
	s.metrics.ReviewCreated()
	return id, nil
}

// Rate folds value (1..5) into the review's running mean.
func (s *ReviewService) Rate(ctx context.Context, reviewID string, value float64) (model.RatingStats, error) {
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return model.RatingStats{}, apperror.InvalidInput("Review ID and rating are required.")
	}
	if value < minRating || value > maxRating {
		return model.RatingStats{}, apperror.InvalidInput("Rating must be between 1 and 5.")
	}

	stats, err := s.reviewRepo.FoldRating(ctx, reviewID, value)
	if err != nil {
		return model.RatingStats{}, fmt.Errorf("ReviewService.Rate: %w", err)
	}
	s.metrics.RatingFolded()
	return stats, nil
}

// AddComment appends a comment by userEmail to the review.
func (s *ReviewService) AddComment(ctx context.Context, reviewID, userEmail, text string) error {
	reviewID = strings.TrimSpace(reviewID)
	text = strings.TrimSpace(text)
	if reviewID == "" || text == "" {
		return apperror.InvalidInput("Review ID and comment are required.")
	}
	if userEmail == "" {
		return apperror.Unauthorized("Token is missing")
	}

	err := s.reviewRepo.AppendComment(ctx, reviewID, model.Comment{UserEmail: userEmail, Comment: text})
	if err != nil {
		return fmt.Errorf("ReviewService.AddComment: %w", err)
	}
	s.metrics.CommentAdded()
	return nil
}
