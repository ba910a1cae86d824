package itembank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// GeneratorClient implements Selector against an external model-backed item
// generator service. The generator owns authoring; this client only asks
// for one item at a requested difficulty, excluding served prompts.
type GeneratorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the generator client.
type GeneratorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // default: 10s; the bank must fail fast
}

// NewGeneratorClient creates a generator-backed item source.
func NewGeneratorClient(cfg GeneratorConfig) *GeneratorClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &GeneratorClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type generateRequest struct {
	Subject    string   `json:"subject"`
	Course     string   `json:"course"`
	Difficulty string   `json:"difficulty"`
	Excluded   []string `json:"excludedPrompts,omitempty"`
}

// Find requests one item from the generator. A 204 means the generator
// declined to produce an item at this level, which the engine treats the
// same as an exhausted bank.
func (g *GeneratorClient) Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error) {
	body, err := json.Marshal(generateRequest{
		Subject:    subject,
		Course:     course,
		Difficulty: string(difficulty),
		Excluded:   excluded,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/items/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return nil, nil
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generator error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	item := &domain.AssessmentItem{}
	if err := json.NewDecoder(resp.Body).Decode(item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}

	// Generated content is unvetted input; an item the engine cannot score
	// safely is rejected, never repaired.
	if err := item.Validate(); err != nil {
		return nil, err
	}
	for _, p := range excluded {
		if item.Prompt == p {
			return nil, fmt.Errorf("%w: generator repeated excluded prompt %q", domain.ErrInvalidItem, p)
		}
	}
	return item, nil
}
