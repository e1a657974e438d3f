package retrieval

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ravebox/discover/internal/domain"
	"ravebox/discover/internal/store"

	"golang.org/x/sync/errgroup"
)

type DiscoverAPI interface {
	DiscoverGroups(ctx context.Context, term string) ([]domain.DiscoverGroup, error)
}

type ListAPI interface {
	ListByQuery(ctx context.Context, query string) ([]domain.Review, error)
}

type ReviewAPI interface {
	ReviewByID(ctx context.Context, id string) (domain.Review, error)
}

type ProfileAPI interface {
	PublicProfileStatistics(ctx context.Context, userID string) (domain.ProfileStatistics, error)
}

type FollowingAPI interface {
	Following(ctx context.Context) ([]domain.User, error)
}

// NewDiscoverGroups retrieves discover groups by search term. On success the
// groups, and the lists flattened from them, land in the discover slice.
func NewDiscoverGroups(api DiscoverAPI, st *store.Store) *Retriever[string, []domain.DiscoverGroup] {
	var onSuccess func(string, []domain.DiscoverGroup)
	if st != nil {
		onSuccess = func(term string, groups []domain.DiscoverGroup) {
			st.Dispatch(store.SetDiscoverGroups{Term: term, Groups: groups})
		}
	}
	return New[string, []domain.DiscoverGroup]("discover groups", api.DiscoverGroups, onSuccess)
}

// NewReviewByID retrieves a single review and makes it the active review
func NewReviewByID(api ReviewAPI, st *store.Store) *Retriever[string, domain.Review] {
	var onSuccess func(string, domain.Review)
	if st != nil {
		onSuccess = func(_ string, review domain.Review) {
			st.Dispatch(store.SetActiveReview{Review: review})
		}
	}
	return New[string, domain.Review]("review by id", api.ReviewByID, onSuccess)
}

func NewPublicProfileStatistics(api ProfileAPI, st *store.Store) *Retriever[string, domain.ProfileStatistics] {
	var onSuccess func(string, domain.ProfileStatistics)
	if st != nil {
		onSuccess = func(userID string, statistics domain.ProfileStatistics) {
			st.Dispatch(store.SetProfileStatistics{UserID: userID, Statistics: statistics})
		}
	}
	return New[string, domain.ProfileStatistics]("public profile statistics", api.PublicProfileStatistics, onSuccess)
}

// NewFollowing retrieves who the signed-in user follows. The key is the
// signed-in user's ID: the request itself is session scoped, the key only
// decides when to fetch again.
func NewFollowing(api FollowingAPI, st *store.Store) *Retriever[string, []domain.User] {
	var onSuccess func(string, []domain.User)
	if st != nil {
		onSuccess = func(_ string, following []domain.User) {
			st.Dispatch(store.SetFollowing{Following: following})
		}
	}
	fetch := func(ctx context.Context, _ string) ([]domain.User, error) {
		return api.Following(ctx)
	}
	return New[string, []domain.User]("following", fetch, onSuccess)
}

// querySeparator joins a query list into one comparable key
const querySeparator = "\x1f"

// ListsByQuery retrieves one review list per query. Queries are fetched
// concurrently; a query with no reviews is left out, and the retrieval is
// NotFound only when every query came back empty.
type ListsByQuery struct {
	*Retriever[string, []domain.ReviewList]
}

func NewListsByQuery(api ListAPI, st *store.Store) *ListsByQuery {
	var onSuccess func(string, []domain.ReviewList)
	if st != nil {
		onSuccess = func(_ string, lists []domain.ReviewList) {
			for _, list := range lists {
				st.Dispatch(store.SetReviewList{Name: list.ID, Reviews: list.Reviews})
			}
		}
	}

	fetch := func(ctx context.Context, key string) ([]domain.ReviewList, error) {
		if key == "" {
			return nil, fmt.Errorf("empty query list: %w", domain.ErrNotFound)
		}
		return fetchLists(ctx, api, strings.Split(key, querySeparator))
	}

	return &ListsByQuery{New[string, []domain.ReviewList]("lists by query", fetch, onSuccess)}
}

// Retrieve tracks the query list; the same queries in the same order count
// as an unchanged input.
func (l *ListsByQuery) Retrieve(ctx context.Context, queries []string) bool {
	return l.Retriever.Retrieve(ctx, strings.Join(queries, querySeparator))
}

// ListURL is the client route for a product review list
func ListURL(query string) string {
	return "/product/" + url.PathEscape(query)
}

func fetchLists(ctx context.Context, api ListAPI, queries []string) ([]domain.ReviewList, error) {
	results := make([][]domain.Review, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			reviews, err := api.ListByQuery(gctx, query)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to retrieve list %q: %w", query, err)
			}
			results[i] = reviews
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	lists := make([]domain.ReviewList, 0, len(queries))
	for i, reviews := range results {
		if len(reviews) == 0 {
			continue
		}
		lists = append(lists, domain.ReviewList{
			ID:      queries[i],
			Title:   queries[i],
			URL:     ListURL(queries[i]),
			Reviews: reviews,
		})
	}

	if len(lists) == 0 {
		return nil, fmt.Errorf("no reviews for %d queries: %w", len(queries), domain.ErrNotFound)
	}
	return lists, nil
}
