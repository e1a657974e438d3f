package store

import "ravebox/discover/internal/domain"

// Slice names a partition of the application state
type Slice string

const (
	SliceReview   Slice = "review"
	SliceDiscover Slice = "discover"
	SliceVideo    Slice = "video"
	SliceChannel  Slice = "channel"
	SliceLoading  Slice = "loading"
)

// State is the whole application state. Values are replaced, never
// mutated: reducers copy maps and slices before changing them, so a State
// handed out by the store can be read without locking.
type State struct {
	Review   ReviewState   `json:"review"`
	Discover DiscoverState `json:"discover"`
	Video    VideoState    `json:"video"`
	Channel  ChannelState  `json:"channel"`
	Loading  LoadingState  `json:"loading"`
}

type ReviewState struct {
	Active *domain.Review              `json:"active,omitempty"`
	Lists  map[string][]domain.Review `json:"lists,omitempty"` // Keyed by list name
}

type DiscoverState struct {
	Term   string                 `json:"term,omitempty"`
	Groups []domain.DiscoverGroup `json:"groups,omitempty"`
	Lists  []domain.ReviewList    `json:"lists,omitempty"`
}

type VideoState struct {
	Active *domain.Review `json:"active,omitempty"` // Review whose video is playing
}

type ChannelState struct {
	UserID     string                    `json:"userId,omitempty"`
	Statistics *domain.ProfileStatistics `json:"statistics,omitempty"`
	Following  []domain.User             `json:"following,omitempty"`
}

type LoadingState struct {
	Pending map[string]bool `json:"pending,omitempty"`
}

// IsLoading reports whether any operation is pending
func (l LoadingState) IsLoading() bool {
	return len(l.Pending) > 0
}
