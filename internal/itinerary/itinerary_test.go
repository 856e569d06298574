package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/logging"
)

func TestNormalizeDefaults(t *testing.T) {
	req, err := Request{Destination: " Kyoto ", Budget: "1500", Transport: "train"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", req.Destination)
	assert.Equal(t, "not specified", req.Dates)
	assert.Equal(t, "general travel", req.Purpose)

	prompt := req.Prompt()
	assert.Contains(t, prompt, "- Destination: Kyoto")
	assert.Contains(t, prompt, "- Budget: $1500")
	assert.Contains(t, prompt, "- Transport Preference: train")
	assert.Contains(t, prompt, "- Travel Dates: not specified")
	assert.Contains(t, prompt, "- Purpose: general travel")
	assert.Contains(t, prompt, "Estimated cost breakdown")
}

func TestNormalizeKeepsProvidedFields(t *testing.T) {
	req, err := Request{Destination: "Kyoto", Budget: "800", Transport: "bus", Dates: "May 1-5", Purpose: "food"}.Normalize()
	require.NoError(t, err)
	assert.Contains(t, req.Prompt(), "- Travel Dates: May 1-5")
	assert.Contains(t, req.Prompt(), "- Purpose: food")
}

func TestNormalizeRequiresFields(t *testing.T) {
	for _, r := range []Request{
		{Budget: "1", Transport: "car"},
		{Destination: "Oslo", Transport: "car"},
		{Destination: "Oslo", Budget: "1", Transport: "  "},
	} {
		_, err := r.Normalize()
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput), "%+v", r)
	}
}

func newGemini(t *testing.T, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewGeminiClient(srv.URL, "models/gemini-test", "k3y", 5*time.Second, logging.Discard())
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	g := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		gotPrompt = gjson.GetBytes(body, "contents.0.parts.0.text").String()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "Day 1: temples"}}},
			}},
		})
	})

	text, err := g.Generate(context.Background(), "plan it")
	require.NoError(t, err)
	assert.Equal(t, "Day 1: temples", text)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, "k3y", gotKey)
	assert.Equal(t, "plan it", gotPrompt)
}

func TestGeminiEmptyContent(t *testing.T) {
	g := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := g.Generate(context.Background(), "plan it")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstreamFailure))
	assert.Equal(t, "Failed to generate itinerary, no content returned.", apperror.PublicMessage(err))
}

func TestGeminiUpstreamError(t *testing.T) {
	g := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	})

	_, err := g.Generate(context.Background(), "plan it")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperror.HTTPStatus(err))
	assert.Contains(t, apperror.PublicMessage(err), "API key not valid")
}

func TestGeminiMissingKey(t *testing.T) {
	g := NewGeminiClient("http://127.0.0.1:1", "m", "", time.Second, logging.Discard())
	_, err := g.Generate(context.Background(), "x")
	assert.True(t, errors.Is(err, apperror.ErrUpstreamFailure))
}

type stubGenerator struct {
	prompt string
	text   string
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func TestServiceGenerate(t *testing.T) {
	gen := &stubGenerator{text: "plan"}
	svc := NewService(gen, nil)

	text, err := svc.Generate(context.Background(), Request{Destination: "Rome", Budget: "900", Transport: "walk"})
	require.NoError(t, err)
	assert.Equal(t, "plan", text)
	assert.Contains(t, gen.prompt, "Rome")

	_, err = svc.Generate(context.Background(), Request{Destination: "Rome"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	gen.err = apperror.Upstream("", errors.New("quota exceeded"))
	_, err = svc.Generate(context.Background(), Request{Destination: "Rome", Budget: "900", Transport: "walk"})
	assert.Equal(t, "quota exceeded", apperror.PublicMessage(err))
}
