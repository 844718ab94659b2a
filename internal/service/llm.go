package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/selera-app/backend/config"
	"github.com/selera-app/backend/internal/metrics"
)

// Message represents a message in the chat completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// rankRequest represents a request to the DeepSeek API
type rankRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// LLMService delegates recommendation ordering to the DeepSeek API. Every
// method returns an error on any failure; callers fall back to the
// unranked list.
type LLMService struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewLLMService(cfg *config.Config) *LLMService {
	return &LLMService{
		apiKey: cfg.DeepSeekKey,
		apiURL: cfg.DeepSeekURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

const rankSystemPrompt = `You are a culinary recommendation engine. Given current weather and a set of candidate recipes, order the candidates from most to least suitable and give a short reason for each. Respond only with JSON of the form:
{"ranking": [{"id": "candidate id", "reason": "one short sentence"}]}
Use only ids from the candidate list.`

// RankRecipes asks the model to order the candidates for the given weather
// and region. Candidates the model omits keep their original order at the
// tail, so the result always contains every input card exactly once.
func (s *LLMService) RankRecipes(ctx context.Context, w *Weather, region string, candidates []RecipeCard) ([]RecipeCard, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("ranking unavailable: no API key configured")
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	var sb strings.Builder
	if w != nil {
		fmt.Fprintf(&sb, "Weather: %s, %.1f°C in %s.\n", w.Condition, w.Temp, w.City)
	}
	if region != "" {
		fmt.Fprintf(&sb, "Preferred region: %s.\n", region)
	}
	// Ids are qualified with the source; bare catalog ids can collide
	// between Spoonacular and TheMealDB.
	sb.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s title=%q\n", cardKey(c), c.Title)
	}

	reqBody := rankRequest{
		Model: "deepseek-chat",
		Messages: []Message{
			{Role: "system", Content: rankSystemPrompt},
			{Role: "user", Content: sb.String()},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.3,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ExternalRequestsTotal.WithLabelValues("deepseek", "error").Inc()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ExternalRequestsTotal.WithLabelValues("deepseek", "error").Inc()
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	metrics.ExternalRequestsTotal.WithLabelValues("deepseek", "ok").Inc()

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	var ranking struct {
		Ranking []struct {
			ID     string `json:"id"`
			Reason string `json:"reason"`
		} `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &ranking); err != nil {
		return nil, fmt.Errorf("failed to parse ranking: %w", err)
	}

	byKey := make(map[string]RecipeCard, len(candidates))
	for _, c := range candidates {
		byKey[cardKey(c)] = c
	}

	ordered := make([]RecipeCard, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, r := range ranking.Ranking {
		c, ok := byKey[r.ID]
		if !ok || seen[r.ID] {
			continue
		}
		c.Reason = r.Reason
		ordered = append(ordered, c)
		seen[r.ID] = true
	}
	for _, c := range candidates {
		if !seen[cardKey(c)] {
			ordered = append(ordered, c)
		}
	}

	return ordered, nil
}

// SetBaseURL overrides the DeepSeek endpoint; used by tests.
func (s *LLMService) SetBaseURL(u string) {
	s.apiURL = u
}
