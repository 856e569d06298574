package itinerary

import (
	"context"
	"fmt"

	"travel-review-service/internal/metrics"
)

// Service validates trip requests and asks the generator for a plan.
type Service struct {
	gen     Generator
	metrics *metrics.Metrics
}

func NewService(gen Generator, m *metrics.Metrics) *Service {
	return &Service{gen: gen, metrics: m}
}

// Generate returns the itinerary text for req.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	req, err := req.Normalize()
	if err != nil {
		return "", err
	}

	text, err := s.gen.Generate(ctx, req.Prompt())
	if err != nil {
		s.metrics.UpstreamFailed("gemini")
		return "", fmt.Errorf("itinerary.Generate: %w", err)
	}
	return text, nil
}
