package discover

import (
	"testing"

	"ravebox/discover/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func review(id string) domain.Review {
	return domain.Review{ID: id, Title: "Review " + id}
}

func TestCreateReviewListsEmpty(t *testing.T) {
	t.Run("NoGroups", func(t *testing.T) {
		lists := CreateReviewLists(nil)
		assert.NotNil(t, lists)
		assert.Empty(t, lists)
	})

	t.Run("SentinelEmptyKey", func(t *testing.T) {
		lists := CreateReviewLists([]domain.DiscoverGroup{
			{Category: domain.Category{Key: "", Label: ""}, Items: []domain.DiscoverSubGroup{}},
		})
		assert.Empty(t, lists)
	})
}

func TestCreateReviewListsOrder(t *testing.T) {
	groups := []domain.DiscoverGroup{
		{
			Category: domain.Category{Key: "technology", Label: "Technology"},
			Items: []domain.DiscoverSubGroup{
				{
					Category: domain.Category{Key: "smartphones", Label: "Smartphones"},
					Items: []domain.DiscoverProductGroup{
						{Product: domain.Product{ID: "p1"}, Reviews: []domain.Review{review("r1")}},
						{Product: domain.Product{ID: "p2"}, Reviews: []domain.Review{review("r2"), review("r3")}},
					},
				},
			},
		},
	}

	lists := CreateReviewLists(groups)
	require.Len(t, lists, 1)

	list := lists[0]
	assert.Equal(t, "technology", list.ID)
	assert.Equal(t, "Technology", list.Title)
	assert.Equal(t, "/discover/technology", list.URL)
	assert.Equal(t, []domain.Review{review("r1"), review("r2"), review("r3")}, list.Reviews)
}

func TestCreateReviewListsMultipleGroups(t *testing.T) {
	groups := []domain.DiscoverGroup{
		{
			Category: domain.Category{Key: "technology", Label: "Technology"},
			Items: []domain.DiscoverSubGroup{
				{Items: []domain.DiscoverProductGroup{{Reviews: []domain.Review{review("r1")}}}},
				{Items: []domain.DiscoverProductGroup{{Reviews: []domain.Review{review("r2")}}}},
			},
		},
		{
			Category: domain.Category{Key: "beauty", Label: "Beauty"},
			Items: []domain.DiscoverSubGroup{
				{Items: []domain.DiscoverProductGroup{{Reviews: []domain.Review{review("r1"), review("r4")}}}},
			},
		},
		{
			Category: domain.Category{Key: "home", Label: "Home"},
		},
	}

	lists := CreateReviewLists(groups)
	require.Len(t, lists, 3)

	assert.Equal(t, []domain.Review{review("r1"), review("r2")}, lists[0].Reviews)
	// duplicates across groups are kept
	assert.Equal(t, []domain.Review{review("r1"), review("r4")}, lists[1].Reviews)
	assert.NotNil(t, lists[2].Reviews)
	assert.Empty(t, lists[2].Reviews)
}

func TestCreateReviewListsDoesNotAliasInput(t *testing.T) {
	source := []domain.Review{review("r1")}
	groups := []domain.DiscoverGroup{
		{
			Category: domain.Category{Key: "technology"},
			Items: []domain.DiscoverSubGroup{
				{Items: []domain.DiscoverProductGroup{{Reviews: source}}},
			},
		},
	}

	lists := CreateReviewLists(groups)
	lists[0].Reviews[0].Title = "changed"

	assert.Equal(t, "Review r1", source[0].Title)
}

func TestExcludeReview(t *testing.T) {
	reviews := []domain.Review{review("r1"), review("r2"), review("r3")}

	assert.Equal(t, []domain.Review{review("r1"), review("r3")}, ExcludeReview(reviews, "r2"))
	assert.Equal(t, reviews, ExcludeReview(reviews, "missing"))
	assert.Len(t, reviews, 3)
	assert.Empty(t, ExcludeReview(nil, "r1"))
}

func TestListURLEscapes(t *testing.T) {
	assert.Equal(t, "/discover/health%20&%20fitness", ListURL("health & fitness"))
}
