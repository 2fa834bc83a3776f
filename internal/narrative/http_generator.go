package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/datasource"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/metrics"
	"github.com/Pilou89/puck-predictor-pro-sub000/internal/models"
)

// maxResponseBytes bounds the generator response read into memory.
const maxResponseBytes = 1 << 20

// completionRequest is the payload sent to the text generator.
type completionRequest struct {
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Prompt    string `json:"prompt"`
}

// HTTPGenerator calls a JSON completion endpoint.
type HTTPGenerator struct {
	client *datasource.RateLimitedHTTPClient
	cfg    config.NarrativeConfig
	cache  *Cache
	logger *logrus.Logger
}

// NewHTTPGenerator creates a generator with retries, rate limiting and a response cache.
func NewHTTPGenerator(cfg config.NarrativeConfig, logger *logrus.Logger) *HTTPGenerator {
	httpCfg := datasource.DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimit
	httpCfg.CircuitBreakerMax = 3

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &HTTPGenerator{
		client: datasource.NewRateLimitedHTTPClient(httpCfg, logger),
		cfg:    cfg,
		cache:  NewCache(ttl, cfg.CacheMaxSize),
		logger: logger,
	}
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, candidates []models.Candidate) (*Narrative, error) {
	prompt := BuildPrompt(candidates)
	key := Key(g.cfg.Model, prompt)

	if cached, ok := g.cache.Get(key); ok {
		metrics.RecordNarrativeRequest("cached")
		return cached, nil
	}

	start := time.Now()
	body, err := json.Marshal(completionRequest{Model: g.cfg.Model, MaxTokens: g.cfg.MaxTokens, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		metrics.RecordNarrativeRequest("error")
		return nil, fmt.Errorf("%w: %v", models.ErrNarrativeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordNarrativeRequest("error")
		return nil, fmt.Errorf("%w: status %d", models.ErrNarrativeUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordNarrativeRequest("error")
		return nil, fmt.Errorf("%w: %v", models.ErrNarrativeUnavailable, err)
	}

	n, err := decodeNarrative(data)
	if err != nil {
		metrics.RecordNarrativeRequest("malformed")
		return nil, err
	}

	g.cache.Set(key, n)
	metrics.RecordNarrativeRequest("generated")

	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"selections": len(n.Selections),
			"duration":   time.Since(start),
		}).Debug("Narrative generated")
	}

	return n, nil
}

// decodeNarrative accepts only a non-empty summary and selections that name a subject.
func decodeNarrative(data []byte) (*Narrative, error) {
	var n Narrative
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedNarrative, err)
	}
	if strings.TrimSpace(n.Summary) == "" {
		return nil, fmt.Errorf("%w: empty summary", models.ErrMalformedNarrative)
	}
	for i, s := range n.Selections {
		if strings.TrimSpace(s.Subject) == "" {
			return nil, fmt.Errorf("%w: selection %d has no subject", models.ErrMalformedNarrative, i)
		}
	}
	n.Source = SourceGenerator
	return &n, nil
}

// Close releases idle connections.
func (g *HTTPGenerator) Close() error {
	return g.client.Close()
}
