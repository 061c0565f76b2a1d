package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jakubzver/footboard/internal/platform/logging"
	"github.com/jakubzver/footboard/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	// URL is the endpoint that receives sync events. Empty disables the
	// notifier entirely.
	URL            string
	AuthToken      string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier posts sync-completed events to a configured endpoint.
// Delivery runs off the sync path; a dead endpoint slows nothing down.
type WebhookNotifier struct {
	client         *http.Client
	url            string
	authToken      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	now            func() time.Time
}

func NewWebhookNotifier(cfg WebhookConfig, logger *logging.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookNotifier{
		client: &http.Client{
			Timeout: timeout,
		},
		url:            strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		authToken:      strings.TrimSpace(cfg.AuthToken),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// Enabled reports whether an endpoint is configured.
func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

type syncCompletedEvent struct {
	Event       string    `json:"event"`
	LeagueID    int64     `json:"leagueId"`
	Season      int       `json:"season"`
	MatchCount  int       `json:"matchCount"`
	CompletedAt time.Time `json:"completedAt"`
}

// NotifySyncCompleted satisfies usecase.SyncNotifier. Delivery happens in a
// separate goroutine and failures are logged, never surfaced to the caller.
func (n *WebhookNotifier) NotifySyncCompleted(ctx context.Context, leagueExternalID int64, season int, matchCount int) {
	if !n.Enabled() {
		return
	}

	event := syncCompletedEvent{
		Event:       "sync.completed",
		LeagueID:    leagueExternalID,
		Season:      season,
		MatchCount:  matchCount,
		CompletedAt: n.now().UTC(),
	}

	// Keep trace linkage but drop the request deadline so a finished sync
	// cannot cancel its own notification mid-flight.
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := n.publish(detached, event); err != nil {
			n.logger.WarnContext(detached, "sync webhook delivery failed",
				"league", event.LeagueID,
				"season", event.Season,
				"error", err,
			)
		}
	}()
}

func (n *WebhookNotifier) publish(ctx context.Context, event syncCompletedEvent) error {
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("webhook endpoint is temporarily unavailable: %w", err)
		}
	}

	endpoint, err := validateHTTPBaseURL(n.url)
	if err != nil {
		return crerr.Wrap(err, "invalid webhook URL")
	}

	body, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrap(err, "marshal sync event")
	}
	curlPreview := buildWebhookCurlPreview(endpoint, string(body), n.authToken != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.url", endpoint),
			attribute.String("webhook.event", event.Event),
			attribute.String("webhook.request_curl_preview", curlPreview),
		)
	}
	n.logger.DebugContext(ctx, "webhook publish request", "url", endpoint, "event", event.Event, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if n.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.authToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post sync event url=%s: %v", errWebhookTransient, endpoint, err)
		n.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isWebhookRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf("%w: post sync event status=%d url=%s body=%s",
				errWebhookTransient, resp.StatusCode, endpoint, strings.TrimSpace(string(raw)))
			n.recordCircuitResult(callErr)
			return callErr
		}

		callErr := fmt.Errorf("post sync event status=%d url=%s body=%s",
			resp.StatusCode, endpoint, strings.TrimSpace(string(raw)))
		n.recordCircuitResult(callErr)
		return callErr
	}

	n.logger.InfoContext(ctx, "sync event delivered", "url", endpoint, "league", event.LeagueID, "season", event.Season)
	n.recordCircuitResult(nil)
	return nil
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err == nil {
		n.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildWebhookCurlPreview(endpoint string, body string, withAuth bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withAuth {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(truncateForLog(body, 4096)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isWebhookRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
