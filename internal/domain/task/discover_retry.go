package task

type DiscoverRetryTask struct {
	Term       string `json:"term"`        // Discover term that failed
	RetryCount int    `json:"retry_count"` // Attempts made so far
	Error      string `json:"error"`       // Last failure
}

func (t *DiscoverRetryTask) TaskType() string {
	return TypeDiscoverRetry
}

func (t *DiscoverRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
