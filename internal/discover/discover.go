// Package discover turns the nested discover response into flat review lists.
package discover

import (
	"net/url"

	"ravebox/discover/internal/domain"
)

// ListURL is the client route that shows a full discover list
func ListURL(key string) string {
	return "/discover/" + url.PathEscape(key)
}

// CreateReviewLists flattens each top-level group into one list. Reviews are
// concatenated in encountered order, walking sub-group then product group,
// and are not de-duplicated. An empty input, or a first group whose category
// has no key, yields no lists.
func CreateReviewLists(groups []domain.DiscoverGroup) []domain.ReviewList {
	if len(groups) == 0 || groups[0].Category.Key == "" {
		return []domain.ReviewList{}
	}

	lists := make([]domain.ReviewList, 0, len(groups))
	for _, group := range groups {
		reviews := make([]domain.Review, 0)
		for _, sub := range group.Items {
			for _, productGroup := range sub.Items {
				reviews = append(reviews, productGroup.Reviews...)
			}
		}

		lists = append(lists, domain.ReviewList{
			ID:      group.Category.Key,
			Title:   group.Category.Label,
			URL:     ListURL(group.Category.Key),
			Reviews: reviews,
		})
	}

	return lists
}

// ExcludeReview returns a copy of reviews without the one with the given ID,
// used to keep the active review out of its own "more like this" list.
func ExcludeReview(reviews []domain.Review, id string) []domain.Review {
	filtered := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.ID == id {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
