package statsprovider

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout      = 10 * time.Second
	maxResponseBodySize = 4 << 20
)

var errProviderTransient = crerr.New("stats provider transient failure")
var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

// ClientConfig configures one provider endpoint.
type ClientConfig struct {
	Name           string
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RateLimitRPS   float64
	Headers        map[string]string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	HTTPClient     *fasthttp.Client
}

// Client performs rate limited, retried GETs against one provider.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	timeout time.Duration
	retry   resilience.RetryPolicy
	limiter *rate.Limiter
	headers map[string]string
	http    *fasthttp.Client
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

type queryParam struct {
	key   string
	value string
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "invalid base url for provider %s", cfg.Name)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryDelay := cfg.RetryBaseDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
		burst = max(int(cfg.RateLimitRPS), 1)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "fantasy-hoops",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     64,
			MaxResponseBodySize: maxResponseBodySize,
		}
	}

	return &Client{
		name:    cfg.Name,
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		retry: resilience.RetryPolicy{
			MaxRetries: max(cfg.MaxRetries, 0),
			BaseDelay:  retryDelay,
		},
		limiter: rate.NewLimiter(limit, burst),
		headers: cfg.Headers,
		http:    httpClient,
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.Name, cfg.CircuitBreaker),
		logger:  logger.Named("statsprovider").With("provider", cfg.Name),
	}, nil
}

// getJSON returns the raw body of a 2xx response. 404 maps to
// gamelog.ErrPlayerNotFound; a rejected breaker maps to
// usecase.ErrDependencyUnavailable.
func (c *Client) getJSON(ctx context.Context, path string, params ...queryParam) ([]byte, error) {
	fullURL := c.buildRequestURL(path, params)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("stats.provider", c.name),
			attribute.String("stats.url", sanitizeSensitiveText(fullURL, c.apiKey)),
		)
	}

	var body []byte
	err := c.breaker.Execute(func() error {
		return resilience.Retry(ctx, c.retry, isTransient, func(attempt int) error {
			if err := c.limiter.Wait(ctx); err != nil {
				return crerr.Wrap(err, "wait for rate limiter")
			}
			raw, reqErr := c.execute(ctx, fullURL)
			if reqErr != nil {
				if isTransient(reqErr) && attempt < c.retry.MaxRetries {
					c.logger.DebugContext(ctx, "stats provider request failed, retrying", "attempt", attempt+1, "error", reqErr)
				}
				return reqErr
			}
			body = raw
			return nil
		})
	}, isTransient)
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "stats provider circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: stats provider %s is temporarily unavailable", usecase.ErrDependencyUnavailable, c.name)
		}
		if !stderrors.Is(err, gamelog.ErrPlayerNotFound) {
			c.logger.WarnContext(ctx, "stats provider request failed", "url", sanitizeSensitiveText(fullURL, c.apiKey), "error", err)
		}
		return nil, err
	}

	return body, nil
}

func (c *Client) execute(ctx context.Context, fullURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Wrapf(errProviderTransient, "send request to %s: %s", c.name, sanitizeSensitiveText(err.Error(), c.apiKey))
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return append([]byte(nil), resp.Body()...), nil
	case status == fasthttp.StatusNotFound:
		return nil, crerr.Wrapf(gamelog.ErrPlayerNotFound, "provider %s status=%d", c.name, status)
	case isRetryableStatus(status):
		return nil, crerr.Wrapf(errProviderTransient, "provider %s status=%d body=%s", c.name, status, abbreviateBody(resp.Body()))
	default:
		return nil, crerr.Newf("provider %s status=%d body=%s", c.name, status, abbreviateBody(resp.Body()))
	}
}

func (c *Client) buildRequestURL(path string, params []queryParam) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	if path != "" && !strings.HasPrefix(path, "/") {
		_ = buf.WriteByte('/')
	}
	_, _ = buf.WriteString(path)
	for i, param := range params {
		if i == 0 {
			_ = buf.WriteByte('?')
		} else {
			_ = buf.WriteByte('&')
		}
		_, _ = buf.WriteString(url.QueryEscape(param.key))
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(url.QueryEscape(param.value))
	}

	return buf.String()
}

func isTransient(err error) bool {
	return stderrors.Is(err, errProviderTransient)
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("base url is required")
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

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
