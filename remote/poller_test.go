package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/provider"
)

// fakeBackend scripts a sequence of poll observations.
type fakeBackend struct {
	statuses []Status
	polls    int
	fetched  bool
}

func (f *fakeBackend) Submit(ctx context.Context) (string, error) { return "job-1", nil }

func (f *fakeBackend) Poll(ctx context.Context, id string) (Status, error) {
	i := f.polls
	f.polls++
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *fakeBackend) Fetch(ctx context.Context, result, destination string) error {
	f.fetched = true
	return os.WriteFile(destination, []byte(result), 0644)
}

// testPoller returns a poller with a fake clock that advances by the
// interval on every sleep, so no test waits on real time.
func testPoller(interval, budget time.Duration) (*Poller, *time.Time) {
	p := New("fake", interval, budget, logrus.New())
	now := time.Unix(1000, 0)
	p.now = func() time.Time { return now }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}
	return p, &now
}

func TestPollerFetchesAfterSuccess(t *testing.T) {
	backend := &fakeBackend{statuses: []Status{
		{State: StateSubmitted},
		{State: StateRunning},
		{State: StateRunning},
		{State: StateSucceeded, Result: "payload"},
	}}
	p, _ := testPoller(time.Second, time.Minute)

	dest := filepath.Join(t.TempDir(), "out.mp4")
	require.NoError(t, p.Run(context.Background(), backend, dest))

	assert.True(t, backend.fetched, "result must be fetched before Run returns")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 4, backend.polls)
}

func TestPollerTimesOutAtBudgetNotBefore(t *testing.T) {
	backend := &fakeBackend{statuses: []Status{{State: StateRunning}}}
	p, _ := testPoller(time.Second, 10*time.Second)

	err := p.Run(context.Background(), backend, filepath.Join(t.TempDir(), "out.mp4"))

	var terr *provider.TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 10*time.Second, terr.Budget)
	// Exactly budget/interval observations fit inside the window.
	assert.Equal(t, 10, backend.polls)
	assert.False(t, backend.fetched)
}

func TestPollerFailureCarriesRemoteReason(t *testing.T) {
	backend := &fakeBackend{statuses: []Status{
		{State: StateRunning},
		{State: StateFailed, Reason: "NSFW content detected"},
	}}
	p, _ := testPoller(time.Second, time.Minute)

	err := p.Run(context.Background(), backend, filepath.Join(t.TempDir(), "out.mp4"))

	var gerr *provider.GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "NSFW content detected", gerr.Reason)
	assert.False(t, backend.fetched)
}

func TestPollerStopsOnCancelledContext(t *testing.T) {
	backend := &fakeBackend{statuses: []Status{{State: StateRunning}}}
	p := New("fake", time.Second, time.Minute, logrus.New())
	p.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx, backend, filepath.Join(t.TempDir(), "out.mp4"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.False(t, StateSubmitted.Terminal())
}
