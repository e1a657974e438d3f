package task

import "encoding/json"

// Task is a unit of work carried on a queue stream. TaskType names the
// stream, TaskValue is the JSON payload stored with the message.
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

const (
	TypeReviewList    = "ReviewListTask"
	TypeDiscoverRetry = "DiscoverRetryTask"
	TypeMediaFailure  = "MediaFailureTask"
)

// Types lists every task type that has a stream
var Types = []string{TypeReviewList, TypeDiscoverRetry, TypeMediaFailure}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task interface{}) ([]byte, error) {
	return json.Marshal(task)
}

func UnmarshalTask[T Task](data []byte) (T, error) {
	var t T
	err := json.Unmarshal(data, &t)
	return t, err
}
