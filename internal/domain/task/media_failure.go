package task

import "time"

// MediaFailureTask reports a source video that could not be removed
type MediaFailureTask struct {
	ID       string    `json:"id"`
	Bucket   string    `json:"bucket"`
	Key      string    `json:"key"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

func (t *MediaFailureTask) TaskType() string {
	return TypeMediaFailure
}

func (t *MediaFailureTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
