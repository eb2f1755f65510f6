package estimator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// HTTPConfig holds configuration for the remote estimator client.
type HTTPConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// HTTPClient calls a remote reasoning service that returns a probability
// estimate for a single market selection.
type HTTPClient struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewHTTPClient creates a remote estimator client.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

type estimateRequest struct {
	GameID      string           `json:"game_id"`
	HomeTeam    string           `json:"home_team"`
	AwayTeam    string           `json:"away_team"`
	StartTime   time.Time        `json:"start_time"`
	MarketType  types.MarketType `json:"market_type"`
	Quote       types.Quote      `json:"quote"`
	Opposing    types.Quote      `json:"opposing"`
	HomeStats   *types.TeamStats `json:"home_stats,omitempty"`
	AwayStats   *types.TeamStats `json:"away_stats,omitempty"`
	InjuryNotes string           `json:"injury_notes,omitempty"`
}

type estimateResponse struct {
	Probability   *float64        `json:"probability"`
	Confidence    float64         `json:"confidence"`
	Reasoning     json.RawMessage `json:"reasoning"`
	ProposedUnits *float64        `json:"proposed_units"`
}

// Estimate posts the selection to /v1/estimate. Server errors and
// transport failures are retried with linear backoff; client errors are
// not.
func (c *HTTPClient) Estimate(ctx context.Context, req types.EstimateRequest) (types.ProbabilityEstimate, error) {
	body, err := json.Marshal(estimateRequest{
		GameID:      req.Game.ID,
		HomeTeam:    req.Game.HomeTeam,
		AwayTeam:    req.Game.AwayTeam,
		StartTime:   req.Game.StartTime,
		MarketType:  req.Selection.MarketType,
		Quote:       req.Selection.Quote,
		Opposing:    req.Selection.Opposing,
		HomeStats:   req.Game.HomeStats,
		AwayStats:   req.Game.AwayStats,
		InjuryNotes: req.Game.InjuryNotes,
	})
	if err != nil {
		return types.ProbabilityEstimate{}, fmt.Errorf("marshal estimate request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.retryBackoff
			c.logger.Debug("estimate-retry",
				zap.String("game-id", req.Game.ID),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return types.ProbabilityEstimate{}, fmt.Errorf("%w: %w", types.ErrExternalCallFailed, ctx.Err())
			case <-time.After(wait):
			}
		}

		est, retry, err := c.do(ctx, body)
		if err == nil {
			EstimateRequestsTotal.WithLabelValues("http", "ok").Inc()
			return est, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}

	EstimateRequestsTotal.WithLabelValues("http", "error").Inc()
	return types.ProbabilityEstimate{}, fmt.Errorf("%w: %w", types.ErrExternalCallFailed, lastErr)
}

func (c *HTTPClient) do(ctx context.Context, body []byte) (est types.ProbabilityEstimate, retry bool, err error) {
	url := fmt.Sprintf("%s/v1/estimate", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return est, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "hoops-edge/1.0")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return est, true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retry = resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return est, retry, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var data estimateResponse
	err = json.NewDecoder(resp.Body).Decode(&data)
	if err != nil {
		return est, false, fmt.Errorf("decode response: %w", err)
	}
	if data.Probability == nil {
		return est, false, fmt.Errorf("response missing probability")
	}

	return types.ProbabilityEstimate{
		Probability:   *data.Probability,
		Confidence:    data.Confidence,
		Reasoning:     data.Reasoning,
		ProposedUnits: data.ProposedUnits,
		Source:        "http",
	}, false, nil
}
