package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"go.uber.org/goleak"

	"github.com/ternarybob/pokedex/internal/interfaces"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockPrefetcher implements Prefetcher for testing
type mockPrefetcher struct {
	calls   atomic.Int32
	mu      sync.Mutex
	lastReq []string
}

func (m *mockPrefetcher) Prefetch(ctx context.Context, names []string) interfaces.PrefetchResult {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastReq = names
	m.mu.Unlock()
	return interfaces.PrefetchResult{Requested: len(names), Fetched: len(names)}
}

func TestRunNow_RecordsResult(t *testing.T) {
	prefetcher := &mockPrefetcher{}
	svc := NewService(prefetcher, []string{"bulbasaur", "ivysaur"}, arbor.NewNoOpLogger())

	svc.RunNow().Wait()

	assert.Equal(t, int32(1), prefetcher.calls.Load())
	status := svc.Status()
	require.NotNil(t, status.LastRun)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 2, status.LastResult.Fetched)
	assert.False(t, status.Running)
}

func TestStart_RunsOnSchedule(t *testing.T) {
	prefetcher := &mockPrefetcher{}
	svc := NewService(prefetcher, []string{"bulbasaur"}, arbor.NewNoOpLogger())

	require.NoError(t, svc.Start("* * * * * *"))
	defer svc.Stop()

	status := svc.Status()
	assert.True(t, status.Running)
	assert.Equal(t, "* * * * * *", status.Schedule)
	assert.NotNil(t, status.NextRun)

	assert.Eventually(t, func() bool {
		return prefetcher.calls.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStart_Errors(t *testing.T) {
	svc := NewService(&mockPrefetcher{}, nil, arbor.NewNoOpLogger())

	assert.Error(t, svc.Start("not a schedule"))

	require.NoError(t, svc.Start(""))
	defer svc.Stop()
	assert.Error(t, svc.Start("* * * * * *"))
}

func TestStop_Idempotent(t *testing.T) {
	svc := NewService(&mockPrefetcher{}, nil, arbor.NewNoOpLogger())
	svc.Stop()

	require.NoError(t, svc.Start("0 0 * * * *"))
	svc.Stop()
	svc.Stop()
	assert.False(t, svc.Status().Running)
}

func TestStop_RemovesScheduleBeforeRestart(t *testing.T) {
	svc := NewService(&mockPrefetcher{}, []string{"bulbasaur"}, arbor.NewNoOpLogger())

	require.NoError(t, svc.Start("0 0 */6 * * *"))
	svc.Stop()
	assert.Empty(t, svc.cron.Entries())

	require.NoError(t, svc.Start("0 0 */6 * * *"))
	defer svc.Stop()
	assert.Len(t, svc.cron.Entries(), 1)
	assert.NotNil(t, svc.Status().NextRun)
}
