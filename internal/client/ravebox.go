package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"ravebox/discover/internal/config"
	"ravebox/discover/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const xsrfHeader = "x-xsrf-token"

type RaveboxClient interface {
	DiscoverGroups(ctx context.Context, term string) ([]domain.DiscoverGroup, error)
	ListByQuery(ctx context.Context, query string) ([]domain.Review, error)
	ReviewByID(ctx context.Context, id string) (domain.Review, error)
	RatingByReview(ctx context.Context, reviewID string) (domain.RatingCounts, error)
	RatingToken(ctx context.Context, reviewID string) (string, error)
	Rate(ctx context.Context, token string, reviewID string, rating domain.Rating) (domain.RatingCounts, error)
	PublicProfileStatistics(ctx context.Context, userID string) (domain.ProfileStatistics, error)
	Following(ctx context.Context) ([]domain.User, error)
}

type raveboxClient struct {
	rl         ratelimit.Limiter
	config     config.APIConfig
	baseURL    *url.URL
	httpClient *resty.Client
	jar        http.CookieJar

	// Requests are refused locally while the API rate limit is in effect
	pauseMu     sync.Mutex
	pausedUntil time.Time
	pauseDelay  time.Duration
}

func NewRaveboxClient(cfg config.APIConfig) (RaveboxClient, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.NewWithClient(&http.Client{Jar: jar}).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &raveboxClient{
		rl:         rl,
		config:     cfg,
		baseURL:    baseURL,
		httpClient: client,
		jar:        jar,
		pauseDelay: cfg.CircuitBreakerDelay,
	}, nil
}

func (c *raveboxClient) DiscoverGroups(ctx context.Context, term string) ([]domain.DiscoverGroup, error) {
	status, body, err := c.do(ctx, http.MethodGet, "search/discover/"+url.PathEscape(term), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discover groups for %q: %w", term, err)
	}
	return decodeField[[]domain.DiscoverGroup](status, body, "groups")
}

type listRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (c *raveboxClient) ListByQuery(ctx context.Context, query string) ([]domain.Review, error) {
	status, body, err := c.do(ctx, http.MethodPost, "review/list/product/"+url.PathEscape(query), listRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review list for %q: %w", query, err)
	}
	return decodeField[[]domain.Review](status, body, "reviews")
}

func (c *raveboxClient) ReviewByID(ctx context.Context, id string) (domain.Review, error) {
	status, body, err := c.do(ctx, http.MethodGet, "review/"+url.PathEscape(id), nil)
	if err != nil {
		return domain.Review{}, fmt.Errorf("failed to fetch review %s: %w", id, err)
	}
	return decodeField[domain.Review](status, body, "review")
}

func (c *raveboxClient) RatingByReview(ctx context.Context, reviewID string) (domain.RatingCounts, error) {
	status, body, err := c.do(ctx, http.MethodGet, "statistics/review/rating/"+url.PathEscape(reviewID), nil)
	if err != nil {
		return domain.RatingCounts{}, fmt.Errorf("failed to fetch rating for review %s: %w", reviewID, err)
	}
	return decodeField[domain.RatingCounts](status, body, "rating")
}

func (c *raveboxClient) RatingToken(ctx context.Context, reviewID string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, "statistics/review/token/"+url.PathEscape(reviewID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to fetch rating token for review %s: %w", reviewID, err)
	}
	return decodeField[string](status, body, "token")
}

type rateRequest struct {
	ReviewID string        `json:"reviewId"`
	Rating   domain.Rating `json:"rating"`
}

func (c *raveboxClient) Rate(ctx context.Context, token string, reviewID string, rating domain.Rating) (domain.RatingCounts, error) {
	req := rateRequest{ReviewID: reviewID, Rating: rating}
	status, body, err := c.do(ctx, http.MethodPost, "statistics/review/rate/"+url.PathEscape(token), req)
	if err != nil {
		return domain.RatingCounts{}, fmt.Errorf("failed to rate review %s: %w", reviewID, err)
	}
	return decodeField[domain.RatingCounts](status, body, "rating")
}

func (c *raveboxClient) PublicProfileStatistics(ctx context.Context, userID string) (domain.ProfileStatistics, error) {
	status, body, err := c.do(ctx, http.MethodGet, "user/statistics/profile/"+url.PathEscape(userID), nil)
	if err != nil {
		return domain.ProfileStatistics{}, fmt.Errorf("failed to fetch profile statistics for %s: %w", userID, err)
	}
	return decodeField[domain.ProfileStatistics](status, body, "statistics")
}

func (c *raveboxClient) Following(ctx context.Context) ([]domain.User, error) {
	status, body, err := c.do(ctx, http.MethodGet, "user/following", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch following: %w", err)
	}
	return decodeField[[]domain.User](status, body, "following")
}

// pauseRemaining reports how long requests stay refused after a 429. The
// first call after the pause has run out clears it.
func (c *raveboxClient) pauseRemaining() time.Duration {
	c.pauseMu.Lock()
	defer c.pauseMu.Unlock()

	if c.pausedUntil.IsZero() {
		return 0
	}
	if remaining := time.Until(c.pausedUntil); remaining > 0 {
		return remaining
	}
	c.pausedUntil = time.Time{}
	log.Infof("✅ API rate limit pause is over, resuming requests")
	return 0
}

// pause refuses requests for the Retry-After seconds the API asked for, or
// the configured delay when it did not say. A shorter pause never cuts a
// longer one short.
func (c *raveboxClient) pause(retryAfter string) {
	delay := c.pauseDelay
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
		delay = time.Duration(secs) * time.Second
	}

	c.pauseMu.Lock()
	defer c.pauseMu.Unlock()

	if until := time.Now().Add(delay); until.After(c.pausedUntil) {
		c.pausedUntil = until
	}
	log.Warnf("🚫 API rate limit hit, pausing requests until %s (%v)",
		c.pausedUntil.Format("15:04:05"), delay)
}

// xsrfToken reads the anti-forgery token the API set as a cookie
func (c *raveboxClient) xsrfToken() string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == c.config.XSRFCookie {
			return cookie.Value
		}
	}
	return ""
}

// do sends one request and returns the status and body of a non-error
// response. HTTP 404 is reported as domain.ErrNotFound, other error
// statuses as *domain.APIError.
func (c *raveboxClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if remaining := c.pauseRemaining(); remaining > 0 {
		log.Debugf("🚫 %s %s refused, rate limit pause has %v left", method, path, remaining.Round(time.Second))
		return 0, nil, fmt.Errorf("%w: requests paused for %v more", domain.ErrCircuitOpen, remaining.Round(time.Second))
	}

	c.rl.Take()

	reqCtx := ctx
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req := c.httpClient.R().SetContext(reqCtx)
	if method != http.MethodGet {
		if token := c.xsrfToken(); token != "" {
			req.SetHeader(xsrfHeader, token)
		}
		if body != nil {
			req.SetBody(body)
		}
	}

	target := c.baseURL.String() + path
	log.Debugf("%s %s", method, target)

	resp, err := req.Execute(method, target)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	status := resp.StatusCode()
	payload := []byte(resp.String())

	switch {
	case status == http.StatusTooManyRequests:
		c.pause(resp.Header().Get("Retry-After"))
		return status, nil, &domain.APIError{StatusCode: status, Code: errorCode(payload)}
	case status == http.StatusNotFound:
		return status, nil, fmt.Errorf("%s: %w", target, domain.ErrNotFound)
	case resp.IsError():
		return status, nil, &domain.APIError{StatusCode: status, Code: errorCode(payload)}
	}

	return status, payload, nil
}
