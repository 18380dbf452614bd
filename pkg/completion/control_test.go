package completion_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/kinetic/pkg/completion"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manual struct {
	ch chan error
}

func newManual() *manual {
	return &manual{ch: make(chan error, 1)}
}

func (m *manual) Finished() <-chan error { return m.ch }
func (m *manual) resolve()               { close(m.ch) }
func (m *manual) reject(err error)       { m.ch <- err }

func waitDone(t *testing.T, p *completion.Pending) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("pending completion never settled")
	}
}

func TestControl_FinishActionFiresOnce(t *testing.T) {
	var calls atomic.Int32
	c := completion.New()
	c.SetFinishAction(func() { calls.Add(1) })

	m := newManual()
	p := c.Track(m)
	m.resolve()
	waitDone(t, p)

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, p.Canceled())
	assert.NoError(t, p.Err())

	// cancel after resolution is a no-op
	c.Cancel()
	c.Cancel()
	assert.Equal(t, int32(1), calls.Load())
}

type channelless struct{}

func (channelless) Finished() <-chan error { return nil }

func TestControl_NilCompletionFinishes(t *testing.T) {
	for name, c := range map[string]domain.Completion{
		"nil":        nil,
		"no channel": channelless{},
	} {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			ctrl := completion.New()
			ctrl.SetFinishAction(func() { calls.Add(1) })

			p := ctrl.Track(c)
			waitDone(t, p)

			assert.Equal(t, int32(1), calls.Load())
			assert.False(t, p.Canceled())
			assert.NoError(t, p.Err())
			assert.False(t, ctrl.Active())
		})
	}
}

func TestControl_CancelPreventsFinish(t *testing.T) {
	var calls atomic.Int32
	c := completion.New()
	c.SetFinishAction(func() { calls.Add(1) })

	m := newManual()
	p := c.Track(m)
	c.Cancel()
	waitDone(t, p)
	m.resolve()

	// give a late resolution a chance to misbehave
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.True(t, p.Canceled())
	assert.True(t, c.Canceled())
}

func TestControl_CancelIsIdempotentWithoutTrack(t *testing.T) {
	c := completion.New()
	assert.NotPanics(t, func() {
		c.Cancel()
		c.Cancel()
	})
}

func TestControl_Rejection(t *testing.T) {
	var finished atomic.Bool
	var rejected atomic.Value
	boom := errors.New("boom")

	c := completion.New(completion.WithErrorHandler(func(err error) { rejected.Store(err) }))
	c.SetFinishAction(func() { finished.Store(true) })

	m := newManual()
	p := c.Track(m)
	m.reject(boom)
	waitDone(t, p)

	assert.ErrorIs(t, p.Err(), boom)
	assert.False(t, finished.Load())
	require.NotNil(t, rejected.Load())
	assert.ErrorIs(t, rejected.Load().(error), boom)
}

func TestControl_ValueOnChannelResolves(t *testing.T) {
	var calls atomic.Int32
	c := completion.New()
	c.SetFinishAction(func() { calls.Add(1) })

	ch := make(chan error, 1)
	ch <- nil
	p := c.Track(domain.CompletionFunc(func() <-chan error { return ch }))
	waitDone(t, p)

	assert.Equal(t, int32(1), calls.Load())
}

func TestControl_TrackAfterCancel(t *testing.T) {
	var calls atomic.Int32
	c := completion.New()
	c.SetFinishAction(func() { calls.Add(1) })

	first := newManual()
	p1 := c.Track(first)
	assert.True(t, c.Active())
	c.Cancel()
	assert.False(t, c.Active())
	waitDone(t, p1)

	second := newManual()
	p2 := c.Track(second)
	assert.False(t, c.Canceled())
	second.resolve()
	waitDone(t, p2)

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.Active())
}

func TestControl_TrackReplacesPrevious(t *testing.T) {
	var calls atomic.Int32
	c := completion.New()
	c.SetFinishAction(func() { calls.Add(1) })

	first := newManual()
	p1 := c.Track(first)
	second := newManual()
	p2 := c.Track(second)

	waitDone(t, p1)
	assert.True(t, p1.Canceled())

	first.resolve()
	second.resolve()
	waitDone(t, p2)
	assert.Equal(t, int32(1), calls.Load())
}
