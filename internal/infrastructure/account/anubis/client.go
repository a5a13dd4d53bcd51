package anubis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/battle-arena/internal/domain/user"
	"github.com/riskibarqy/battle-arena/internal/platform/cache"
	"github.com/riskibarqy/battle-arena/internal/platform/logging"
	"github.com/riskibarqy/battle-arena/internal/platform/resilience"
	"github.com/riskibarqy/battle-arena/internal/usecase"
)

const (
	defaultPrincipalTTL = 30 * time.Second
	defaultPremiumTTL   = 5 * time.Minute
	maxResponseBytes    = 1 << 20
)

var errAnubisTransient = crerr.New("anubis transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	AccountPath    string
	AdminKey       string
	Timeout        time.Duration
	PrincipalTTL   time.Duration
	PremiumTTL     time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client talks to the Anubis account service: token introspection for the
// HTTP layer and premium lookups for scoring.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	accountURL    string
	adminKey      string
	principals    *cache.Store[user.Principal]
	premium       *cache.Store[bool]
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
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
		httpClient.Timeout = 5 * time.Second
	}

	principalTTL := cfg.PrincipalTTL
	if principalTTL <= 0 {
		principalTTL = defaultPrincipalTTL
	}
	premiumTTL := cfg.PremiumTTL
	if premiumTTL <= 0 {
		premiumTTL = defaultPremiumTTL
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		accountURL:    buildURL(cfg.BaseURL, cfg.AccountPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		principals:    cache.NewStore[user.Principal](principalTTL),
		premium:       cache.NewStore[bool](premiumTTL),
		breaker:       resilience.NewBreaker(cfg.CircuitBreaker.Named("anubis")),
		logger:        logger.Named("anubis"),
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	principal, err := c.principals.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (user.Principal, error) {
		return c.introspect(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}

	c.premium.Set(ctx, principal.UserID, principal.Premium)
	return principal, nil
}

// IsPremium reads the account flag through the admin API.
func (c *Client) IsPremium(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput)
	}

	return c.premium.GetOrLoad(ctx, userID, func(ctx context.Context) (bool, error) {
		var decoded accountResponse
		endpoint := c.accountURL + "/" + url.PathEscape(userID)
		if err := c.call(ctx, http.MethodGet, endpoint, nil, &decoded); err != nil {
			return false, err
		}
		return decoded.Premium || hasRole(decoded.Roles, premiumRole), nil
	})
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	var decoded introspectResponse
	if err := c.call(ctx, http.MethodPost, c.introspectURL, encoded, &decoded); err != nil {
		return user.Principal{}, err
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID:  decoded.UserID,
		Email:   decoded.Email,
		Premium: decoded.Premium || hasRole(decoded.Roles, premiumRole),
	}, nil
}

func (c *Client) call(ctx context.Context, method, endpoint string, body []byte, out any) error {
	err := c.breaker.Execute(func() error {
		return c.do(ctx, method, endpoint, body, out)
	}, isCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: anubis is temporarily unavailable: %w", usecase.ErrDependencyUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return crerr.Wrap(err, "create anubis request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w: request anubis: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %w: read anubis response: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: anubis rejected the token", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: anubis account not found", usecase.ErrNotFound)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.WarnContext(ctx, "anubis denied admin key", "status_code", resp.StatusCode, "url", endpoint)
		return fmt.Errorf("%w: anubis denied admin key", usecase.ErrDependencyUnavailable)
	case isRetryableStatus(resp.StatusCode):
		c.logger.WarnContext(ctx, "anubis request failed", "status_code", resp.StatusCode, "url", endpoint)
		return fmt.Errorf("%w: %w: anubis status %d", usecase.ErrDependencyUnavailable, errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return crerr.Newf("anubis request failed with status %d", resp.StatusCode)
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		return crerr.Wrap(err, "unmarshal anubis response")
	}
	return nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active  bool     `json:"active"`
	UserID  string   `json:"user_id"`
	Email   string   `json:"email"`
	Premium bool     `json:"premium"`
	Roles   []string `json:"roles"`
}

type accountResponse struct {
	UserID  string   `json:"user_id"`
	Premium bool     `json:"premium"`
	Roles   []string `json:"roles"`
}
