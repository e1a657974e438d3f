package domain

// Rating is a user's vote on a review
type Rating int

const (
	RatingDown Rating = -1
	RatingNone Rating = 0
	RatingUp   Rating = 1
)

func (r Rating) String() string {
	switch r {
	case RatingDown:
		return "down"
	case RatingUp:
		return "up"
	default:
		return "none"
	}
}

// RatingCounts holds aggregate votes for a review and the caller's own vote
type RatingCounts struct {
	Up         int64  `json:"up"`
	Down       int64  `json:"down"`
	UserRating Rating `json:"userRating"`
}
