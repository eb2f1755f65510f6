package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/oddsmath"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

const (
	DefaultOddsAPIURL = "https://api.the-odds-api.com/v4"
	DefaultSport      = "basketball_ncaab"
	DefaultBookmaker  = "fanduel"

	defaultInjuryNote = "Live game, check injury reports before approving."
)

// OddsAPIConfig holds configuration for the odds provider client.
type OddsAPIConfig struct {
	BaseURL   string
	APIKey    string
	Sport     string
	Bookmaker string
	Stats     StatsLookup
	Timeout   time.Duration
	Logger    *zap.Logger
}

// OddsAPIClient fetches one bookmaker's spreads, totals and moneylines from
// The Odds API and maps them into games.
type OddsAPIClient struct {
	baseURL    string
	apiKey     string
	sport      string
	bookmaker  string
	stats      StatsLookup
	httpClient *http.Client
	logger     *zap.Logger
}

// Quota is the request allowance reported by the provider.
type Quota struct {
	Remaining int
	Used      int
}

// NewOddsAPIClient creates a new odds provider client.
func NewOddsAPIClient(cfg OddsAPIConfig) *OddsAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOddsAPIURL
	}
	if cfg.Sport == "" {
		cfg.Sport = DefaultSport
	}
	if cfg.Bookmaker == "" {
		cfg.Bookmaker = DefaultBookmaker
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &OddsAPIClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		sport:     cfg.Sport,
		bookmaker: cfg.Bookmaker,
		stats:     cfg.Stats,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

type oddsEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// Games fetches and parses the current slate.
func (c *OddsAPIClient) Games(ctx context.Context) ([]types.Game, error) {
	events, quota, err := c.fetch(ctx)
	if err != nil {
		FetchesTotal.WithLabelValues("odds-api", "error").Inc()
		return nil, fmt.Errorf("%w: %w", types.ErrExternalCallFailed, err)
	}

	OddsAPIRequestsRemaining.Set(float64(quota.Remaining))
	c.logger.Info("odds-api-quota",
		zap.Int("used", quota.Used),
		zap.Int("remaining", quota.Remaining))

	games := c.parse(events)
	FetchesTotal.WithLabelValues("odds-api", "ok").Inc()
	GamesFetched.Set(float64(len(games)))

	c.logger.Info("odds-api-slate-fetched",
		zap.Int("events", len(events)),
		zap.Int("games", len(games)))

	return games, nil
}

func (c *OddsAPIClient) fetch(ctx context.Context) ([]oddsEvent, Quota, error) {
	var quota Quota
	if c.apiKey == "" {
		return nil, quota, fmt.Errorf("odds api key is not set")
	}

	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us")
	params.Add("markets", "spreads,totals,h2h")
	params.Add("bookmakers", c.bookmaker)
	params.Add("oddsFormat", "american")
	params.Add("dateFormat", "iso")

	requestURL := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, c.sport, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, quota, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hoops-edge/1.0")

	c.logger.Debug("fetching-odds",
		zap.String("sport", c.sport),
		zap.String("bookmaker", c.bookmaker))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, quota, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	quota.Remaining, _ = strconv.Atoi(resp.Header.Get("x-requests-remaining"))
	quota.Used, _ = strconv.Atoi(resp.Header.Get("x-requests-used"))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, quota, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var events []oddsEvent
	err = json.NewDecoder(resp.Body).Decode(&events)
	if err != nil {
		return nil, quota, fmt.Errorf("decode response: %w", err)
	}

	return events, quota, nil
}

// parse maps provider events into games. Events with neither a spread nor
// a total from the configured bookmaker are skipped.
func (c *OddsAPIClient) parse(events []oddsEvent) []types.Game {
	games := make([]types.Game, 0, len(events))

	for _, ev := range events {
		var quotes []types.Quote
		for _, bm := range ev.Bookmakers {
			if bm.Key != c.bookmaker {
				continue
			}
			for _, m := range bm.Markets {
				quotes = append(quotes, c.marketQuotes(ev, m)...)
			}
		}

		if !hasLineMarket(quotes) {
			GamesSkippedTotal.WithLabelValues("no_lines").Inc()
			c.logger.Debug("odds-api-game-skipped",
				zap.String("game-id", ev.ID),
				zap.String("matchup", ev.AwayTeam+" @ "+ev.HomeTeam))
			continue
		}

		g := types.Game{
			ID:          ev.ID,
			HomeTeam:    ev.HomeTeam,
			AwayTeam:    ev.AwayTeam,
			StartTime:   ev.CommenceTime.UTC(),
			Quotes:      quotes,
			InjuryNotes: defaultInjuryNote,
		}
		if c.stats != nil {
			g.HomeStats = c.stats.Lookup(ev.HomeTeam)
			g.AwayStats = c.stats.Lookup(ev.AwayTeam)
		}
		games = append(games, g)
	}

	return games
}

func (c *OddsAPIClient) marketQuotes(ev oddsEvent, m oddsMarket) []types.Quote {
	var mt types.MarketType
	switch m.Key {
	case "spreads":
		mt = types.MarketSpread
	case "totals":
		mt = types.MarketTotal
	case "h2h":
		mt = types.MarketMoneyline
	default:
		return nil
	}

	quotes := make([]types.Quote, 0, len(m.Outcomes))
	for _, o := range m.Outcomes {
		d, err := oddsmath.AmericanToDecimal(o.Price)
		if err != nil {
			c.logger.Warn("odds-api-bad-price",
				zap.String("game-id", ev.ID),
				zap.String("market", m.Key),
				zap.Int("price", o.Price))
			continue
		}

		q := types.Quote{
			MarketType:   mt,
			Side:         outcomeSide(mt, o.Name, ev.HomeTeam),
			DecimalOdds:  d,
			AmericanOdds: o.Price,
			Sportsbook:   c.bookmaker,
		}
		if mt != types.MarketMoneyline {
			q.Line = o.Point
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func outcomeSide(mt types.MarketType, name, homeTeam string) types.Side {
	if mt == types.MarketTotal {
		if strings.EqualFold(name, "Over") {
			return types.SideOver
		}
		return types.SideUnder
	}
	if name == homeTeam {
		return types.SideHome
	}
	return types.SideAway
}

func hasLineMarket(quotes []types.Quote) bool {
	for _, q := range quotes {
		if q.MarketType == types.MarketSpread || q.MarketType == types.MarketTotal {
			return true
		}
	}
	return false
}
