package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/schugaa/schugaa/pkg/liblinkup"
	"github.com/stretchr/testify/assert"
)

// fakeClock is a hand-advanced clock safe for use from the fetch goroutine.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestPoller(t *testing.T, c *fakeClient) (*Poller, *fakeClock) {
	t.Helper()

	agg := newTestAggregator(t, c)
	settings := Settings{
		AutoSpacing:   45 * time.Second,
		ForcedSpacing: 10 * time.Second,
		PollInterval:  time.Hour,
	}

	clock := &fakeClock{t: time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)}
	p := NewPoller(agg, settings, nil, agg.log)
	p.now = clock.Now
	return p, clock
}

func settleInflight(t *testing.T, p *Poller) {
	t.Helper()
	assert.Eventually(t, func() bool { return !p.inflight.Load() }, time.Second, time.Millisecond)
}

func workingClient(t *testing.T) *fakeClient {
	t.Helper()

	base := time.Date(2026, 1, 31, 8, 0, 0, 0, time.Local)
	c := &fakeClient{connectionsFn: onePatient}
	c.graphFn = func(string) (*liblinkup.GraphResponse, []byte, error) {
		graph, raw := graphPayload(t, base, time.Minute)
		return graph, raw, nil
	}
	return c
}

func TestPoller_SpacingWindows(t *testing.T) {
	p, clock := newTestPoller(t, workingClient(t))

	assert.True(t, p.Request(true))
	<-p.Results()
	settleInflight(t, p)

	// Inside both windows everything is dropped.
	clock.Advance(5 * time.Second)
	assert.False(t, p.Request(true))
	assert.False(t, p.Request(false))

	// The forced window opens first.
	clock.Advance(6 * time.Second)
	assert.False(t, p.Request(false))
	assert.True(t, p.Request(true))
	<-p.Results()
	settleInflight(t, p)

	// The automatic window counts from the last accepted request.
	clock.Advance(44 * time.Second)
	assert.False(t, p.Request(false))
	clock.Advance(2 * time.Second)
	assert.True(t, p.Request(false))
	<-p.Results()
}

func TestPoller_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	c := workingClient(t)
	c.connectionsFn = func() ([]liblinkup.Patient, error) {
		<-release
		return onePatient()
	}

	p, clock := newTestPoller(t, c)

	assert.True(t, p.Request(true))

	// Even past the spacing window, a fetch in flight blocks a new one.
	clock.Advance(time.Minute)
	assert.False(t, p.Request(true))

	close(release)
	result := <-p.Results()
	assert.NoError(t, result.Err)
	assert.True(t, result.Reading.HasValue())
	settleInflight(t, p)

	clock.Advance(time.Minute)
	assert.True(t, p.Request(true))
	<-p.Results()
}

func TestPoller_RunFetchesImmediately(t *testing.T) {
	p, _ := newTestPoller(t, workingClient(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	result := <-p.Results()
	assert.NoError(t, result.Err)
	assert.True(t, result.Reading.HasValue())

	cancel()
	<-done
}

func TestPoller_ErrorResult(t *testing.T) {
	c := workingClient(t)
	c.connectionsFn = func() ([]liblinkup.Patient, error) { return nil, nil }

	p, _ := newTestPoller(t, c)

	assert.True(t, p.Request(true))
	result := <-p.Results()
	assert.Error(t, result.Err)
	assert.Equal(t, liblinkup.KindNoPatient, liblinkup.KindOf(result.Err))
	assert.False(t, result.Reading.HasValue())
}
