package eventbus

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battle-arena/internal/domain/event"
	"github.com/riskibarqy/battle-arena/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	SignatureHeader = "X-Arena-Signature"
	TimestampHeader = "X-Arena-Timestamp"
	EventIDHeader   = "X-Arena-Event-Id"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher POSTs each event as signed JSON.
type WebhookPublisher struct {
	client  *fasthttp.Client
	url     string
	secret  []byte
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

func NewWebhookPublisher(cfg WebhookConfig) (*WebhookPublisher, error) {
	target := strings.TrimSpace(cfg.URL)
	if target == "" {
		return nil, crerr.New("webhook url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
			MaxConnsPerHost: 32,
		},
		url:     target,
		secret:  []byte(cfg.Secret),
		timeout: timeout,
		breaker: resilience.NewBreaker(cfg.CircuitBreaker.Named("webhook")),
		now:     time.Now,
	}, nil
}

func (p *WebhookPublisher) Publish(ctx context.Context, evt event.Event) error {
	body, err := sonic.Marshal(evt)
	if err != nil {
		return crerr.Wrap(err, "marshal webhook event")
	}

	err = p.breaker.Execute(func() error {
		return p.send(ctx, evt.ID, body)
	}, func(err error) bool {
		return stderrors.Is(err, errWebhookTransient)
	})
	if err != nil {
		return crerr.Wrapf(err, "deliver webhook event_id=%s", evt.ID)
	}
	return nil
}

func (p *WebhookPublisher) send(ctx context.Context, eventID string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	timestamp := strconv.FormatInt(p.now().Unix(), 10)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(p.url)
	req.Header.SetContentType("application/json")
	req.Header.Set(EventIDHeader, eventID)
	req.Header.Set(TimestampHeader, timestamp)
	if len(p.secret) > 0 {
		req.Header.Set(SignatureHeader, "sha256="+Sign(p.secret, timestamp, body))
	}
	req.SetBody(body)

	if err := p.client.DoDeadline(req, resp, p.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: post webhook: %v", errWebhookTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError:
		return fmt.Errorf("%w: webhook status=%d", errWebhookTransient, status)
	default:
		return crerr.Newf("webhook rejected event status=%d body=%s", status, truncateForLog(string(resp.Body()), 512))
	}
}

func (p *WebhookPublisher) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(p.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

// Sign returns the hex HMAC-SHA256 of "<timestamp>.<body>".
func Sign(secret []byte, timestamp string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(timestamp)
	_ = buf.WriteByte('.')
	_, _ = buf.Write(body)

	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(buf.B)
	return hex.EncodeToString(mac.Sum(nil))
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
