package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecomputePath is the internal API route a scheduled job calls back into.
const RecomputePath = "/v1/internal/rankings/recompute"

const jobTokenForwardHeader = "Upstash-Forward-X-Internal-Job-Token"

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	HTTPClient       *http.Client
}

// QStashPublisher schedules ranking recomputes through Upstash QStash, which
// later POSTs to the API's internal recompute route with the job token.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

// RecomputeJob is the body delivered to the recompute route.
type RecomputeJob struct {
	Reason      string `json:"reason"`
	RequestedAt string `json:"requestedAt"`
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &QStashPublisher{
		client:           client,
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewCircuitBreakerFromConfig("qstash", cfg.CircuitBreaker),
	}
}

// ScheduleRecompute asks QStash to trigger a recompute after delay. Calls
// sharing a deduplication id within QStash's window collapse into one job.
func (p *QStashPublisher) ScheduleRecompute(ctx context.Context, job RecomputeJob, delay time.Duration, deduplicationID string) error {
	if p.token == "" {
		return crerr.New("QSTASH_TOKEN is required")
	}
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	targetURL := targetBaseURL + RecomputePath
	publishURL := baseURL + "/v2/publish/" + targetURL

	body, err := sonic.Marshal(job)
	if err != nil {
		return crerr.Wrap(err, "marshal recompute job")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", publishURL),
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.delay", normalizeDelay(delay)),
		)
	}
	p.logger.InfoContext(ctx, "qstash publish request",
		"target_url", targetURL,
		"curl_preview", curlPreview(publishURL, delay, p.retries, deduplicationID, string(body), p.internalJobToken != ""),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", normalizeDelay(delay))
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		req.Header.Set("Upstash-Deduplication-Id", id)
	}
	if p.internalJobToken != "" {
		req.Header.Set(jobTokenForwardHeader, p.internalJobToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: publish recompute job target_url=%s: %v", errQStashTransient, targetURL, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("publish recompute job status=%d target_url=%s body=%s", resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
		if isQStashRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errQStashTransient, callErr)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.InfoContext(ctx, "recompute job scheduled", "delay", normalizeDelay(delay), "deduplication_id", deduplicationID)
	p.recordCircuitResult(nil)
	return nil
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int(delay.Round(time.Second).Seconds()))
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

// curlPreview renders the publish call for logs with secrets masked.
func curlPreview(publishURL string, delay time.Duration, retries int, deduplicationID, body string, withForwardToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	part := func(value string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(value)
	}
	header := func(value string) {
		part("-H")
		part(shellQuote(value))
	}

	part("curl -X POST")
	part(shellQuote(publishURL))
	header("Authorization: Bearer ***")
	header("Upstash-Method: POST")
	if retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if delay > 0 {
		header("Upstash-Delay: " + normalizeDelay(delay))
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		header("Upstash-Deduplication-Id: " + id)
	}
	if withForwardToken {
		header(jobTokenForwardHeader + ": ***")
	}
	part("-d")
	part(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func (p *QStashPublisher) recordCircuitResult(err error) {
	if err == nil || !stderrors.Is(err, errQStashTransient) {
		p.breaker.RecordSuccess()
		return
	}
	p.breaker.RecordFailure()
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
