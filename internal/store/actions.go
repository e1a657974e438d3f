package store

import "ravebox/discover/internal/domain"

// Action is a typed state change. Each action belongs to exactly one slice
// and is applied by that slice's reducer.
type Action interface {
	Slice() Slice
	Verb() string
}

// Review slice

type SetActiveReview struct {
	Review domain.Review
}

func (SetActiveReview) Slice() Slice { return SliceReview }
func (SetActiveReview) Verb() string { return "SET_ACTIVE" }

type SetReviewList struct {
	Name    string
	Reviews []domain.Review
}

func (SetReviewList) Slice() Slice { return SliceReview }
func (SetReviewList) Verb() string { return "SET_LIST" }

// Discover slice

type SetDiscoverGroups struct {
	Term   string
	Groups []domain.DiscoverGroup
}

func (SetDiscoverGroups) Slice() Slice { return SliceDiscover }
func (SetDiscoverGroups) Verb() string { return "SET_GROUPS" }

// Video slice

type SetActiveVideo struct {
	Review domain.Review
}

func (SetActiveVideo) Slice() Slice { return SliceVideo }
func (SetActiveVideo) Verb() string { return "SET_ACTIVE" }

// Channel slice

type SetProfileStatistics struct {
	UserID     string
	Statistics domain.ProfileStatistics
}

func (SetProfileStatistics) Slice() Slice { return SliceChannel }
func (SetProfileStatistics) Verb() string { return "SET_STATISTICS" }

type SetFollowing struct {
	Following []domain.User
}

func (SetFollowing) Slice() Slice { return SliceChannel }
func (SetFollowing) Verb() string { return "SET_FOLLOWING" }

// Loading slice

type SetLoading struct {
	Key     string
	Loading bool
}

func (SetLoading) Slice() Slice { return SliceLoading }
func (SetLoading) Verb() string { return "SET_LOADING" }
