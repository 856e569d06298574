package model

import (
	"strings"
	"time"
)

// Comment is a single remark appended to a review. Comments are never edited.
type Comment struct {
	UserEmail string `json:"user_email"`
	Comment   string `json:"comment"`
}

// Review is a traveller's write-up of a trip together with its running rating.
// Rating is the mean of every rating folded in so far and RatingCount the
// number of folds.
type Review struct {
	ID          string    `json:"_id"`
	Name        string    `json:"Name"`
	Location    string    `json:"location"`
	Purpose     string    `json:"purpose"`
	Budget      string    `json:"budget"`
	Transport   string    `json:"transport"`
	Text        string    `json:"review"`
	Images      []string  `json:"images"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReview holds the fields a client supplies when submitting a review.
type NewReview struct {
	Name      string
	Location  string
	Purpose   string
	Budget    string
	Transport string
	Text      string
	Images    []string
}

// SortMode orders a review listing.
type SortMode string

const (
	SortNone   SortMode = ""
	SortNewest SortMode = "newest"
	SortRating SortMode = "rating"
)

// ParseSortMode maps a query value to a SortMode; anything unknown means no sort.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortNewest:
		return SortNewest
	case SortRating:
		return SortRating
	default:
		return SortNone
	}
}

// ReviewFilter selects reviews by equality on the non-empty fields.
type ReviewFilter struct {
	Location  string
	Purpose   string
	Budget    string
	Transport string
	Sort      SortMode
}

// Matches reports whether r satisfies every non-empty equality filter.
func (f ReviewFilter) Matches(r Review) bool {
	return matchField(f.Location, r.Location) &&
		matchField(f.Purpose, r.Purpose) &&
		matchField(f.Budget, r.Budget) &&
		matchField(f.Transport, r.Transport)
}

func matchField(want, got string) bool {
	return want == "" || want == got
}

// FoldRating returns the mean and count after adding value to a running mean.
func FoldRating(mean float64, count int, value float64) (float64, int) {
	next := count + 1
	return (mean*float64(count) + value) / float64(next), next
}

// RatingStats is a review's running rating after a fold.
type RatingStats struct {
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}
