package alertqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealwatch/dealwatch/modules/alertqueue"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, alertqueue.StatusPending.Valid())
	assert.True(t, alertqueue.StatusCompleted.Valid())
	assert.True(t, alertqueue.StatusFailed.Valid())
	assert.False(t, alertqueue.Status("processing").Valid())
	assert.False(t, alertqueue.Status("").Valid())

	assert.False(t, alertqueue.StatusPending.Terminal())
	assert.True(t, alertqueue.StatusCompleted.Terminal())
	assert.True(t, alertqueue.StatusFailed.Terminal())
}
