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
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	Token            string
	TargetURL        string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher hands events to QStash, which retries delivery to TargetURL.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetURL        string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &QStashPublisher{
		client:           client,
		baseURL:          strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:            strings.TrimSpace(cfg.Token),
		targetURL:        strings.TrimSpace(cfg.TargetURL),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewBreaker(cfg.CircuitBreaker.Named("qstash")),
	}
}

// Publish implements event.Publisher; the event id doubles as the
// deduplication id so QStash drops accidental resubmits.
func (p *QStashPublisher) Publish(ctx context.Context, evt event.Event) error {
	err := p.breaker.Execute(func() error {
		return p.publish(ctx, evt)
	}, isQStashCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return crerr.Wrap(err, "qstash is temporarily unavailable")
	}
	return err
}

func (p *QStashPublisher) publish(ctx context.Context, evt event.Event) error {
	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetURL, err := validateHTTPBaseURL(p.targetURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_TARGET_URL")
	}
	publishURL := baseURL + "/v2/publish/" + targetURL

	body, err := sonic.Marshal(evt)
	if err != nil {
		return crerr.Wrap(err, "marshal event payload")
	}
	bodyText := truncateForLog(string(body), 4096)
	curlPreview := buildQStashCurlPreview(publishURL, p.retries, evt.ID, bodyText, p.internalJobToken != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", publishURL),
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.event_kind", string(evt.Kind)),
			attribute.String("qstash.request_curl_preview", curlPreview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "event_id", evt.ID, "target_url", targetURL, "curl_preview", curlPreview)

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
	if strings.TrimSpace(evt.ID) != "" {
		req.Header.Set("Upstash-Deduplication-Id", strings.TrimSpace(evt.ID))
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish qstash event target_url=%s: %v", errQStashTransient, targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isQStashRetryableStatus(resp.StatusCode) {
			return fmt.Errorf(
				"%w: publish qstash event status=%d target_url=%s body=%s",
				errQStashTransient,
				resp.StatusCode,
				targetURL,
				strings.TrimSpace(string(raw)),
			)
		}
		return crerr.Newf(
			"publish qstash event status=%d target_url=%s body=%s",
			resp.StatusCode,
			targetURL,
			strings.TrimSpace(string(raw)),
		)
	}

	p.logger.DebugContext(ctx, "qstash event published", "event_id", evt.ID, "kind", string(evt.Kind))
	return nil
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

func buildQStashCurlPreview(publishURL string, retries int, deduplicationID, body string, withForwardToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendFlagHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(publishURL))
	appendFlagHeader("Authorization: Bearer ***")
	appendFlagHeader("Content-Type: application/json")
	appendFlagHeader("Upstash-Method: POST")
	if retries > 0 {
		appendFlagHeader("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if strings.TrimSpace(deduplicationID) != "" {
		appendFlagHeader("Upstash-Deduplication-Id: " + strings.TrimSpace(deduplicationID))
	}
	if withForwardToken {
		appendFlagHeader("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	appendPart("-d")
	appendPart(shellQuote(body))

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

func isQStashCircuitFailure(err error) bool {
	return stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
