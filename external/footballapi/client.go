package footballapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jakubzver/footboard/internal/platform/logging"
	"github.com/jakubzver/footboard/internal/platform/resilience"
	"github.com/jakubzver/footboard/internal/usecase"
)

const (
	defaultBaseURL = "https://api-football-v1.p.rapidapi.com/v3"
	defaultHost    = "api-football-v1.p.rapidapi.com"

	maxResponseBytes = 6 << 20
)

var apiKeyHeaderRegex = regexp.MustCompile(`(?i)(x-rapidapi-key|x-apisports-key)[=: ][^&\s"']+`)
var errProviderTransient = crerr.New("football api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Host           string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the api-football v3 API through RapidAPI. Requests share a
// circuit breaker and are deduplicated per URL while in flight.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	host           string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		host:           host,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchFixtures(ctx context.Context, leagueExternalID int64, season int) ([]usecase.FixtureRecord, error) {
	if leagueExternalID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}
	if season <= 0 {
		return nil, fmt.Errorf("season must be greater than zero")
	}

	query := map[string]string{
		"league": strconv.FormatInt(leagueExternalID, 10),
		"season": strconv.Itoa(season),
	}

	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch fixtures league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("provider rejected fixtures request: %s", envelope.Errors.String())
	}

	out := make([]usecase.FixtureRecord, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		record, err := mapFixture(item)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed fixture from provider",
				"fixture_id", item.Fixture.ID,
				"league", leagueExternalID,
				"season", season,
				"error", err,
			)
			continue
		}
		out = append(out, record)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].FixtureID < out[j].FixtureID
	})

	return out, nil
}

func (c *Client) FetchStandings(ctx context.Context, leagueExternalID int64, season int) ([]usecase.StandingRecord, error) {
	if leagueExternalID <= 0 {
		return nil, fmt.Errorf("league id must be greater than zero")
	}
	if season <= 0 {
		return nil, fmt.Errorf("season must be greater than zero")
	}

	query := map[string]string{
		"league": strconv.FormatInt(leagueExternalID, 10),
		"season": strconv.Itoa(season),
	}

	var envelope standingsEnvelope
	if err := c.doJSON(ctx, "/standings", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("provider rejected standings request: %s", envelope.Errors.String())
	}

	out := make([]usecase.StandingRecord, 0, 20)
	for _, item := range envelope.Response {
		// The provider nests groups of rows; the first group is the main
		// table, later groups cover split formats we do not serve.
		for _, group := range item.League.Standings {
			for _, row := range group {
				record, ok := mapStanding(row)
				if !ok {
					c.logger.WarnContext(ctx, "skip malformed standing row from provider",
						"team_id", row.Team.ID,
						"league", leagueExternalID,
						"season", season,
					)
					continue
				}
				out = append(out, record)
			}
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].TeamID < out[j].TeamID
	})

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football api circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errProviderTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.host)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errProviderTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errProviderTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errProviderTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if key != "" {
		value = strings.ReplaceAll(value, key, "REDACTED")
	}
	return apiKeyHeaderRegex.ReplaceAllString(value, "$1=REDACTED")
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 512
	body := strings.TrimSpace(string(raw))
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
