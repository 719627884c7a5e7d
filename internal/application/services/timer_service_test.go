package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

func newTimerFixture() (*TimerService, *fakeTimerRepo, *fakePublisher) {
	repo := &fakeTimerRepo{}
	pub := &fakePublisher{}
	svc := NewTimerService(repo, pub, logger.NewNop())
	return svc, repo, pub
}

func TestTimerGetCreatesDefaultOnFirstAccess(t *testing.T) {
	svc, repo, _ := newTimerFixture()

	timer, err := svc.Get(context.Background())

	require.NoError(t, err)
	assert.False(t, timer.IsActive)
	require.NotNil(t, repo.timer)

	// A second read returns the same record, not a new one.
	again, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, timer.ID, again.ID)
}

func TestTimerSetUpdatesTargetAndFlag(t *testing.T) {
	svc, repo, pub := newTimerFixture()

	target := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	active := true
	timer, err := svc.Set(context.Background(), ports.SetTimerRequest{
		TargetDate: &target,
		IsActive:   &active,
	})

	require.NoError(t, err)
	assert.True(t, timer.IsActive)
	assert.True(t, timer.TargetDate.Equal(target))

	require.Len(t, repo.updateCalls, 1)
	assert.Len(t, repo.updateCalls[0], 2)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "collections.timers.documents", events[0].Channel)
}

func TestTimerSetUnchangedWritesNothing(t *testing.T) {
	svc, repo, pub := newTimerFixture()

	timer, err := svc.Get(context.Background())
	require.NoError(t, err)

	same := timer.IsActive
	sameDate := timer.TargetDate
	_, err = svc.Set(context.Background(), ports.SetTimerRequest{
		TargetDate: &sameDate,
		IsActive:   &same,
	})

	require.NoError(t, err)
	assert.Empty(t, repo.updateCalls)
	assert.Empty(t, pub.all())
}
