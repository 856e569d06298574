package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/model"
)

// MemoryStore is an in-memory review and user store. It is safe for
// concurrent use and is meant for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	nextSeq int64
	reviews map[string]*memoryReview
	users   map[string]model.User
}

type memoryReview struct {
	seq    int64
	review model.Review
}

var _ ReviewRepository = (*MemoryStore)(nil)
var _ UserRepository = memoryUsers{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextSeq: 1,
		reviews: make(map[string]*memoryReview),
		users:   make(map[string]model.User),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, in model.NewReview) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq
	s.nextSeq++
	id := fmt.Sprintf("%d", seq)

	s.reviews[id] = &memoryReview{
		seq: seq,
		review: model.Review{
			ID:        id,
			Name:      in.Name,
			Location:  in.Location,
			Purpose:   in.Purpose,
			Budget:    in.Budget,
			Transport: in.Transport,
			Text:      in.Text,
			Images:    append([]string{}, in.Images...),
			Comments:  []model.Comment{},
			CreatedAt: time.Now().UTC(),
		},
	}
	return id, nil
}

func (s *MemoryStore) List(ctx context.Context, f model.ReviewFilter) ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*memoryReview, 0, len(s.reviews))
	for _, r := range s.reviews {
		if f.Matches(r.review) {
			matched = append(matched, r)
		}
	}

	// Map iteration is random; creation order is the unsorted default.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.Sort {
		case model.SortNewest:
			return a.seq > b.seq
		case model.SortRating:
			if a.review.Rating != b.review.Rating {
				return a.review.Rating > b.review.Rating
			}
			return a.seq > b.seq
		default:
			return a.seq < b.seq
		}
	})

	out := make([]model.Review, 0, len(matched))
	for _, r := range matched {
		out = append(out, cloneReview(r.review))
	}
	return out, nil
}

func (s *MemoryStore) FoldRating(ctx context.Context, id string, value float64) (model.RatingStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return model.RatingStats{}, apperror.NotFound(msgReviewNotFound)
	}
	r.review.Rating, r.review.RatingCount = model.FoldRating(r.review.Rating, r.review.RatingCount, value)
	return model.RatingStats{Rating: r.review.Rating, RatingCount: r.review.RatingCount}, nil
}

func (s *MemoryStore) AppendComment(ctx context.Context, id string, c model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return apperror.NotFound(msgReviewNotFound)
	}
	r.review.Comments = append(r.review.Comments, c)
	return nil
}

// Users is the UserRepository view of the store. Review and user inserts
// share a method name, so the user side lives behind this adapter.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Insert(ctx context.Context, u *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, exists := m.s.users[u.Email]; exists {
		return apperror.Conflict(msgEmailTaken)
	}
	u.ID = fmt.Sprintf("u%d", len(m.s.users)+1)
	u.CreatedAt = time.Now().UTC()
	m.s.users[u.Email] = *u
	return nil
}

func (m memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	u, ok := m.s.users[email]
	if !ok {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return &u, nil
}

func cloneReview(r model.Review) model.Review {
	r.Images = append([]string{}, r.Images...)
	r.Comments = append([]model.Comment{}, r.Comments...)
	return r
}
