package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/model"
)

// PGReviewRepository keeps reviews in Postgres. Comments live in their own
// table ordered by a serial id.
type PGReviewRepository struct {
	db *sqlx.DB
}

var _ ReviewRepository = (*PGReviewRepository)(nil)

func NewPGReviewRepository(db *sqlx.DB) *PGReviewRepository {
	return &PGReviewRepository{db: db}
}

type reviewRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Location    string         `db:"location"`
	Purpose     string         `db:"purpose"`
	Budget      string         `db:"budget"`
	Transport   string         `db:"transport"`
	Body        string         `db:"body"`
	Images      pq.StringArray `db:"images"`
	Rating      float64        `db:"rating"`
	RatingCount int            `db:"rating_count"`
	CreatedAt   time.Time      `db:"created_at"`
}

type commentRow struct {
	ReviewID  string `db:"review_id"`
	UserEmail string `db:"user_email"`
	Comment   string `db:"comment"`
}

const reviewColumns = `id, name, location, purpose, budget, transport, body, images, rating, rating_count, created_at`

// Insert saves a new review with a generated UUID.
func (r *PGReviewRepository) Insert(ctx context.Context, in model.NewReview) (string, error) {
	const q = `
		INSERT INTO reviews (id, name, location, purpose, budget, transport, body, images, rating, rating_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0)
	`
	id := uuid.NewString()
	images := in.Images
	if images == nil {
		images = []string{}
	}
	if _, err := r.db.ExecContext(ctx, q,
		id, in.Name, in.Location, in.Purpose, in.Budget, in.Transport, in.Text, pq.StringArray(images),
	); err != nil {
		return "", apperror.Internal("insert review", fmt.Errorf("PGReviewRepository.Insert: %w", err))
	}
	return id, nil
}

// List applies the equality filters, then loads the comments of every match in one query.
func (r *PGReviewRepository) List(ctx context.Context, f model.ReviewFilter) ([]model.Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE TRUE"
	args := []interface{}{}
	idx := 1

	for _, cond := range []struct {
		column string
		value  string
	}{
		{"location", f.Location},
		{"purpose", f.Purpose},
		{"budget", f.Budget},
		{"transport", f.Transport},
	} {
		if cond.value == "" {
			continue
		}
		query += fmt.Sprintf(" AND %s = $%d", cond.column, idx)
		args = append(args, cond.value)
		idx++
	}

	switch f.Sort {
	case model.SortNewest:
		query += " ORDER BY seq DESC"
	case model.SortRating:
		query += " ORDER BY rating DESC, seq DESC"
	}

	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Internal("list reviews", fmt.Errorf("PGReviewRepository.List: %w", err))
	}

	reviews := make([]model.Review, 0, len(rows))
	if len(rows) == 0 {
		return reviews, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var comments []commentRow
	const commentsQuery = `
		SELECT review_id, user_email, comment
		FROM review_comments
		WHERE review_id = ANY($1)
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &comments, commentsQuery, pq.Array(ids)); err != nil {
		return nil, apperror.Internal("list reviews", fmt.Errorf("PGReviewRepository.List comments: %w", err))
	}
	byReview := make(map[string][]model.Comment, len(rows))
	for _, c := range comments {
		byReview[c.ReviewID] = append(byReview[c.ReviewID], model.Comment{UserEmail: c.UserEmail, Comment: c.Comment})
	}

	for _, row := range rows {
		reviews = append(reviews, row.toModel(byReview[row.ID]))
	}
	return reviews, nil
}

// FoldRating folds value into the running mean with a single UPDATE. Postgres
// evaluates every SET expression against the old row, so concurrent folds on
// the same review serialize on the row lock and none is lost.
func (r *PGReviewRepository) FoldRating(ctx context.Context, id string, value float64) (model.RatingStats, error) {
	const q = `
		UPDATE reviews
		SET rating = (rating * rating_count + $1) / (rating_count + 1),
		    rating_count = rating_count + 1
		WHERE id = $2
		RETURNING rating, rating_count
	`
	var stats model.RatingStats
	err := r.db.QueryRowxContext(ctx, q, value, id).Scan(&stats.Rating, &stats.RatingCount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RatingStats{}, apperror.NotFound(msgReviewNotFound)
	}
	if err != nil {
		return model.RatingStats{}, apperror.Internal("update rating", fmt.Errorf("PGReviewRepository.FoldRating: %w", err))
	}
	return stats, nil
}

// AppendComment inserts the comment only if the review exists.
func (r *PGReviewRepository) AppendComment(ctx context.Context, id string, c model.Comment) error {
	const q = `
		INSERT INTO review_comments (review_id, user_email, comment)
		SELECT id, $2, $3 FROM reviews WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, c.UserEmail, c.Comment)
	if err != nil {
		return apperror.Internal("add comment", fmt.Errorf("PGReviewRepository.AppendComment: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Internal("add comment", fmt.Errorf("PGReviewRepository.AppendComment rows: %w", err))
	}
	if n == 0 {
		return apperror.NotFound(msgReviewNotFound)
	}
	return nil
}

func (row reviewRow) toModel(comments []model.Comment) model.Review {
	if comments == nil {
		comments = []model.Comment{}
	}
	images := []string(row.Images)
	if images == nil {
		images = []string{}
	}
	return model.Review{
		ID:          row.ID,
		Name:        row.Name,
		Location:    row.Location,
		Purpose:     row.Purpose,
		Budget:      row.Budget,
		Transport:   row.Transport,
		Text:        row.Body,
		Images:      images,
		Rating:      row.Rating,
		RatingCount: row.RatingCount,
		Comments:    comments,
		CreatedAt:   row.CreatedAt,
	}
}
