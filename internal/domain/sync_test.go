package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncStatusTransitions(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	poll := Started(CyclePoll)
	assert.Equal(t, SyncPolling, poll.State)
	assert.True(t, poll.InFlight())

	full := Started(CycleSync)
	assert.Equal(t, SyncSyncing, full.State)

	ok := poll.Succeeded(now)
	assert.Equal(t, SyncSucceeded, ok.State)
	assert.Equal(t, now, ok.At)
	assert.False(t, ok.InFlight())

	failed := full.Failed(now, "boom")
	assert.Equal(t, SyncFailed, failed.State)
	assert.Equal(t, "boom", failed.Reason)
	assert.Equal(t, CycleSync, failed.Cycle)

	assert.Empty(t, failed.Succeeded(now).Reason)
	assert.False(t, SyncStatus{State: SyncIdle}.InFlight())
}
