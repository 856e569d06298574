package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"travel-review-service/internal/apperror"
)

const msgNoContent = "Failed to generate itinerary, no content returned."

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	log     logrus.FieldLogger
}

var _ Generator = (*GeminiClient)(nil)

func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration, log logrus.FieldLogger) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.TrimPrefix(model, "models/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", apperror.Upstream("", errors.New("GEMINI_API_KEY is not configured"))
	}

	payload, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		return "", apperror.Internal("encode prompt", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apperror.Internal("build gemini request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// the URL carries the key; report the transport failure without it
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		g.log.WithError(err).Error("gemini request failed")
		return "", apperror.Upstream("", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.Upstream("", fmt.Errorf("read gemini response: %w", err))
	}

	if resp.StatusCode/100 != 2 {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		g.log.WithField("status", resp.StatusCode).Warn("gemini returned non-2xx")
		return "", apperror.Upstream("", fmt.Errorf("gemini: %d %s", resp.StatusCode, msg))
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if strings.TrimSpace(text) == "" {
		return "", apperror.Upstream(msgNoContent, nil)
	}
	return text, nil
}
