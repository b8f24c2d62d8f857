package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/models"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiTimeout = 15 * time.Second
)

// InsightService produces short investment narratives for valuations via the
// Gemini API. Failures are absorbed by the caller; a valuation never depends
// on this service succeeding.
type InsightService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	enabled    bool
}

// NewInsightService creates an insight service. It is disabled (returns nil
// insights) when no API key is configured.
func NewInsightService(apiKey, model string) *InsightService {
	svc := &InsightService{
		apiKey:     apiKey,
		model:      model,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: geminiTimeout},
		enabled:    apiKey != "",
	}

	if svc.enabled {
		log.Printf("Insight service: enabled (model=%s)", model)
	} else {
		log.Printf("Insight service: disabled (no API key)")
	}

	return svc
}

// IsEnabled returns whether insight generation is available.
func (s *InsightService) IsEnabled() bool {
	return s.enabled
}

// GenerateInsight asks Gemini for a 2-3 sentence investment assessment.
// Returns (nil, nil) when disabled.
func (s *InsightService) GenerateInsight(ctx context.Context, axie *models.Axie, stats *models.MarketStats, analysis models.TraitScorecard) (*models.Insight, error) {
	if !s.enabled {
		return nil, nil
	}

	metrics.GeminiRequestsTotal.Inc()
	start := time.Now()

	text, err := s.generate(ctx, buildInsightPrompt(axie, stats, analysis))
	metrics.GeminiAPILatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	return &models.Insight{
		Summary:     text,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildInsightPrompt embeds the scorecard and market figures into a fixed
// prompt template.
func buildInsightPrompt(axie *models.Axie, stats *models.MarketStats, analysis models.TraitScorecard) string {
	partNames := make([]string, 0, len(axie.Parts))
	for _, p := range axie.Parts {
		partNames = append(partNames, p.Name)
	}

	listings := "Unknown"
	avgPrice := "Unknown"
	medianPrice := "Unknown"
	if stats != nil {
		listings = fmt.Sprintf("%d", stats.Count)
		avgPrice = fmt.Sprintf("$%.2f", stats.AvgPrice)
		medianPrice = fmt.Sprintf("$%.2f", stats.MedianPrice)
	}

	return fmt.Sprintf(`You are an expert Axie Infinity market analyst. Analyze this Axie for investment potential:

Class: %s
Parts: %s
Breed Count: %d
Purity: %.0f%%
Quality Score: %d/100

Market Data:
- Similar listings: %s
- Average price: %s
- Median price: %s

Provide a brief (2-3 sentences) assessment of:
1. Investment potential
2. Key strengths or weaknesses
3. Buy/hold/sell recommendation`,
		axie.Class, strings.Join(partNames, ", "), axie.BreedCount,
		analysis.Purity, analysis.OverallScore,
		listings, avgPrice, medianPrice)
}

// Gemini API types

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate makes one generateContent request and returns the response text.
func (s *InsightService) generate(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 300,
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	if apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		return "", fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("no response from Gemini")
	}

	text := strings.TrimSpace(apiResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}
