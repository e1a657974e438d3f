// Package rating loads and changes the up/down vote counts of one review.
package rating

import (
	"context"
	"fmt"
	"sync"

	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/format"
	"ravebox/discover/internal/retrieval"

	log "github.com/sirupsen/logrus"
)

// countDigits is the decimal precision of displayed counts, e.g. "1.2k"
const countDigits = 1

type API interface {
	RatingByReview(ctx context.Context, reviewID string) (domain.RatingCounts, error)
	RatingToken(ctx context.Context, reviewID string) (string, error)
	Rate(ctx context.Context, token string, reviewID string, rating domain.Rating) (domain.RatingCounts, error)
}

// Results are rating counts ready for display
type Results struct {
	Up         string        `json:"up"`
	Down       string        `json:"down"`
	UserRating domain.Rating `json:"userRating"`
}

// FormatResults turns raw counts into display results
func FormatResults(counts domain.RatingCounts) Results {
	return Results{
		Up:         format.NumericSuffix(float64(counts.Up), countDigits),
		Down:       format.NumericSuffix(float64(counts.Down), countDigits),
		UserRating: counts.UserRating,
	}
}

// Rater holds the rating state of a single review
type Rater struct {
	api       API
	reviewID  string
	retriever *retrieval.Retriever[string, domain.RatingCounts]

	mu        sync.RWMutex
	results   Results
	retrieved bool
	// committed is set once results were written by Rate or SetResults; a
	// load that lands afterwards is older than them and is dropped
	committed bool
}

func New(api API, reviewID string) *Rater {
	r := &Rater{
		api:      api,
		reviewID: reviewID,
		results:  FormatResults(domain.RatingCounts{}),
	}
	r.retriever = retrieval.New[string, domain.RatingCounts]("rating", api.RatingByReview, func(_ string, counts domain.RatingCounts) {
		r.setLoaded(FormatResults(counts))
	})
	return r
}

// Load fetches the current counts once and blocks until they arrive or ctx
// is done. It reports whether counts were retrieved.
func (r *Rater) Load(ctx context.Context) bool {
	r.retriever.Retrieve(ctx, r.reviewID)
	state := r.retriever.Wait(ctx)
	return state.Status == retrieval.Success
}

func (r *Rater) Status() retrieval.Status {
	return r.retriever.Status()
}

func (r *Rater) Results() Results {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.results
}

// Retrieved reports whether results came from the server at least once
func (r *Rater) Retrieved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.retrieved
}

// SetResults replaces the results. Loads still in flight no longer apply.
func (r *Rater) SetResults(results Results) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = results
	r.retrieved = true
	r.committed = true
}

func (r *Rater) setLoaded(results Results) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed {
		log.Debugf("dropping loaded rating of review %s, results already replaced", r.reviewID)
		return
	}
	r.results = results
	r.retrieved = true
}

// Token fetches a one-time token that authorises a single Rate call
func (r *Rater) Token(ctx context.Context) (string, error) {
	token, err := r.api.RatingToken(ctx, r.reviewID)
	if err != nil {
		return "", fmt.Errorf("failed to get rating token for review %s: %w", r.reviewID, err)
	}
	return token, nil
}

// Rate submits rating with a one-time token. The results are replaced by
// the counts the server returns; nothing is incremented locally. Without a
// token there is nothing to do.
func (r *Rater) Rate(ctx context.Context, rating domain.Rating, token string) error {
	if token == "" {
		return nil
	}

	counts, err := r.api.Rate(ctx, token, r.reviewID, rating)
	if err != nil {
		log.Errorf("Failed to rate review %s %s: %v", r.reviewID, rating, err)
		return fmt.Errorf("failed to rate review %s: %w", r.reviewID, err)
	}

	r.SetResults(FormatResults(counts))
	return nil
}

// Close stops any pending load; a late response is dropped
func (r *Rater) Close() {
	r.retriever.Close()
}
