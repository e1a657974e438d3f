package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ravebox/discover/internal/config"
	"ravebox/discover/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) RaveboxClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewRaveboxClient(config.APIConfig{
		BaseURL:             srv.URL + "/api",
		Timeout:             5 * time.Second,
		XSRFCookie:          "XSRF-TOKEN",
		CircuitBreakerDelay: time.Minute,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDiscoverGroups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search/discover/{term}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "home & garden", r.PathValue("term"))
		writeJSON(w, http.StatusOK, map[string]any{
			"groups": []domain.DiscoverGroup{
				{Category: domain.Category{Key: "home", Label: "Home"}},
			},
		})
	})

	c := newTestClient(t, mux)
	groups, err := c.DiscoverGroups(context.Background(), "home & garden")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "home", groups[0].Category.Key)
}

func TestEnvelopeClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "MissingField",
			status: http.StatusOK,
			body:   map[string]any{"other": true},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			},
		},
		{
			name:   "NullField",
			status: http.StatusOK,
			body:   map[string]any{"review": nil},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			},
		},
		{
			name:   "ErrorCode",
			status: http.StatusOK,
			body:   map[string]any{"review": map[string]any{"_id": "r1"}, "errorCode": "REVIEW_HIDDEN"},
			wantErr: func(t *testing.T, err error) {
				var apiErr *domain.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "REVIEW_HIDDEN", apiErr.Code)
				assert.Equal(t, http.StatusOK, apiErr.StatusCode)
			},
		},
		{
			name:   "HTTPNotFound",
			status: http.StatusNotFound,
			body:   map[string]any{},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			},
		},
		{
			name:   "ServerError",
			status: http.StatusInternalServerError,
			body:   map[string]any{"errorCode": 5001},
			wantErr: func(t *testing.T, err error) {
				var apiErr *domain.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
				assert.Equal(t, "5001", apiErr.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))

			_, err := c.ReviewByID(context.Background(), "r1")
			require.Error(t, err)
			tt.wantErr(t, err)
		})
	}
}

func TestMalformedResponseIsFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))

	_, err := c.Following(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestRateSendsXSRFToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/statistics/review/token/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "xsrf-123", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"token": "one-time-" + r.PathValue("id")})
	})
	mux.HandleFunc("POST /api/statistics/review/rate/{token}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-xsrf-token") != "xsrf-123" {
			writeJSON(w, http.StatusForbidden, map[string]any{"errorCode": "XSRF"})
			return
		}
		assert.Equal(t, "one-time-r1", r.PathValue("token"))

		var req rateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "r1", req.ReviewID)
		assert.Equal(t, domain.RatingUp, req.Rating)

		writeJSON(w, http.StatusOK, map[string]any{
			"rating": domain.RatingCounts{Up: 11, Down: 2, UserRating: domain.RatingUp},
		})
	})

	c := newTestClient(t, mux)

	token, err := c.RatingToken(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "one-time-r1", token)

	counts, err := c.Rate(context.Background(), token, "r1", domain.RatingUp)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingCounts{Up: 11, Down: 2, UserRating: domain.RatingUp}, counts)
}

func TestReadEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/review/list/product/{query}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"reviews": []domain.Review{{ID: r.PathValue("query") + "-r1"}}})
	})
	mux.HandleFunc("GET /api/statistics/review/rating/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rating": map[string]any{"up": 3, "down": 1, "userRating": -1}})
	})
	mux.HandleFunc("GET /api/user/statistics/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"statistics": domain.ProfileStatistics{Followers: 7}})
	})
	mux.HandleFunc("GET /api/user/following", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"following": []domain.User{{ID: "u2"}}})
	})

	c := newTestClient(t, mux)
	ctx := context.Background()

	reviews, err := c.ListByQuery(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1-r1", reviews[0].ID)

	counts, err := c.RatingByReview(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingCounts{Up: 3, Down: 1, UserRating: domain.RatingDown}, counts)

	statistics, err := c.PublicProfileStatistics(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), statistics.Followers)

	following, err := c.Following(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{ID: "u2"}}, following)
}

func TestTooManyRequestsPausesClient(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"errorCode": "RATE_LIMITED"})
	}))

	_, err := c.Following(context.Background())
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	_, err = c.Following(context.Background())
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRateLimitPauseHonoursRetryAfter(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "600")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"errorCode": "RATE_LIMITED"})
	}))

	_, err := c.Following(context.Background())
	require.Error(t, err)

	remaining := c.(*raveboxClient).pauseRemaining()
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRateLimitPauseEnds(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"following": []domain.User{{ID: "u2"}}})
	}))
	rc := c.(*raveboxClient)

	rc.pausedUntil = time.Now().Add(-time.Second)
	following, err := c.Following(context.Background())
	require.NoError(t, err)
	assert.Len(t, following, 1)
	assert.True(t, rc.pausedUntil.IsZero())
}

func TestCancelledRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DiscoverGroups(ctx, "technology")
	assert.ErrorIs(t, err, context.Canceled)
}
