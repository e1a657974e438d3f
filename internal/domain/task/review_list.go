package task

import "ravebox/discover/internal/domain"

// ReviewListTask carries one flattened discover list to be stored
type ReviewListTask struct {
	Term string            `json:"term"` // Discover term the list was produced for
	List domain.ReviewList `json:"list"`
}

func (t *ReviewListTask) TaskType() string {
	return TypeReviewList
}

func (t *ReviewListTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
