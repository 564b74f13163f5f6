// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RecommendationClient talks to the recommendation model service
type RecommendationClient interface {
	Recommend(ctx context.Context, userID uint) ([]uint, error)
}

// RecommendationClientImpl implements RecommendationClient over HTTP
type RecommendationClientImpl struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewRecommendationClient creates a new recommendation client
func NewRecommendationClient(baseURL string, timeout time.Duration) RecommendationClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RecommendationClientImpl{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type recommendResponse struct {
	Recommendations []uint `json:"recommendations"`
}

// Recommend fetches ranked menu item IDs for the user. Any transport or
// decode failure surfaces as an error, callers decide the fallback.
func (c *RecommendationClientImpl) Recommend(ctx context.Context, userID uint) ([]uint, error) {
	url := fmt.Sprintf("%s/aiml/recommend?user_id=%d", c.BaseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommendation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommendation service returned status %d", resp.StatusCode)
	}

	var body recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation response: %w", err)
	}

	return body.Recommendations, nil
}
