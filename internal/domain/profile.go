package domain

// ProfileStatistics are the public counters shown on a user's channel
type ProfileStatistics struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Ratings   int64 `json:"ratings"`
	Reviews   int64 `json:"reviews"`
}
