package queue

import (
	"errors"
	"testing"

	"ravebox/discover/internal/domain/task"

	"github.com/stretchr/testify/assert"
)

func TestStreamName(t *testing.T) {
	assert.Equal(t, "ravebox:stream:ReviewListTask", StreamName(task.TypeReviewList))
	assert.Equal(t, "ravebox:stream:MediaFailureTask", StreamName((&task.MediaFailureTask{}).TaskType()))
}

func TestIsBusyGroup(t *testing.T) {
	assert.True(t, isBusyGroup(errors.New("BUSYGROUP Consumer Group name already exists")))
	assert.False(t, isBusyGroup(errors.New("ERR no such key")))
	assert.False(t, isBusyGroup(nil))
}
