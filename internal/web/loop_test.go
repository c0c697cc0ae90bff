package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoop_RunsJobsInOrder(t *testing.T) {
	l := newLoop()
	defer l.stop()

	var got []int
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Do(context.Background(), func() { got = append(got, i) }))
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_StoppedRejectsJobs(t *testing.T) {
	l := newLoop()
	l.stop()
	l.stop()

	ran := false
	err := l.Do(context.Background(), func() { ran = true })
	require.ErrorIs(t, err, errLoopStopped)
	require.False(t, ran)
}

func TestLoop_CanceledWhileBusy(t *testing.T) {
	l := newLoop()
	defer l.stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := l.Do(ctx, func() { ran = true })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)

	require.NoError(t, l.Do(context.Background(), func() {}))
	require.False(t, ran)
}
