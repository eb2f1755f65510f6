package settlement

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// DefaultScoreboardURL is ESPN's public men's college basketball scoreboard.
const DefaultScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball/scoreboard"

// ScoreSource returns completed games.
type ScoreSource interface {
	Completed(ctx context.Context) ([]FinalScore, error)
}

// ScoreboardClient reads completed games from the ESPN scoreboard.
type ScoreboardClient struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewScoreboardClient creates a scoreboard client.
func NewScoreboardClient(url string, logger *zap.Logger) *ScoreboardClient {
	if url == "" {
		url = DefaultScoreboardURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreboardClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type scoreboard struct {
	Events []struct {
		ID     string `json:"id"`
		Status struct {
			Type struct {
				State string `json:"state"`
			} `json:"type"`
		} `json:"status"`
		Competitions []struct {
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					Location string `json:"location"`
					Name     string `json:"name"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

// Completed returns games whose status is final.
func (c *ScoreboardClient) Completed(ctx context.Context) ([]FinalScore, error) {
	sep := "?"
	if strings.Contains(c.url, "?") {
		sep = "&"
	}
	requestURL := c.url + sep + "limit=400"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hoops-edge/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scoreboard: %w", types.ErrExternalCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: scoreboard status %d: %s", types.ErrExternalCallFailed, resp.StatusCode, string(body))
	}

	var board scoreboard
	err = json.NewDecoder(resp.Body).Decode(&board)
	if err != nil {
		return nil, fmt.Errorf("%w: decode scoreboard: %w", types.ErrExternalCallFailed, err)
	}

	var out []FinalScore
	for _, ev := range board.Events {
		if ev.Status.Type.State != "post" {
			continue
		}
		for _, comp := range ev.Competitions {
			fs := FinalScore{EventID: ev.ID}
			for _, t := range comp.Competitors {
				name := strings.ToLower(strings.TrimSpace(t.Team.Location + " " + t.Team.Name))
				score, convErr := strconv.Atoi(t.Score)
				if convErr != nil {
					c.logger.Debug("scoreboard-bad-score",
						zap.String("event-id", ev.ID),
						zap.String("score", t.Score))
				}
				if t.HomeAway == "home" {
					fs.HomeTeam, fs.HomeScore = name, score
				} else {
					fs.AwayTeam, fs.AwayScore = name, score
				}
			}
			if fs.HomeTeam != "" && fs.AwayTeam != "" {
				out = append(out, fs)
			}
		}
	}

	c.logger.Debug("scoreboard-fetched",
		zap.Int("events", len(board.Events)),
		zap.Int("completed", len(out)))
	return out, nil
}
