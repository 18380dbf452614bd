// Package motion is a small animation engine operating on node style properties.
//
// Every constructor returns a domain.Animation. Timed animations step the property
// from a start to an end value on a background goroutine and resolve their
// completion when the last step was applied.
package motion

import (
	"sync"
	"time"

	"github.com/aretw0/kinetic/pkg/domain"
)

// Styler is implemented by nodes whose style properties can be animated.
type Styler interface {
	SetStyle(key string, value float64)
}

// Ticker abstracts time so tests can step animations deterministically.
type Ticker interface {
	// Tick returns a channel receiving steps ticks spaced by interval, then closes it.
	Tick(interval time.Duration, steps int) <-chan struct{}
}

// RealTime is the wall-clock Ticker.
type RealTime struct{}

// Tick implements Ticker.
func (RealTime) Tick(interval time.Duration, steps int) <-chan struct{} {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for i := 0; i < steps; i++ {
			<-t.C
			ch <- struct{}{}
		}
	}()
	return ch
}

// Instantly is a Ticker that emits every tick without waiting.
type Instantly struct{}

// Tick implements Ticker.
func (Instantly) Tick(_ time.Duration, steps int) <-chan struct{} {
	ch := make(chan struct{}, steps)
	for i := 0; i < steps; i++ {
		ch <- struct{}{}
	}
	close(ch)
	return ch
}

// Tween animates one style property.
type Tween struct {
	Property string
	From     float64
	To       float64
	Duration time.Duration
	// Steps is the number of intermediate values applied; defaults to 10.
	Steps  int
	Ticker Ticker
}

const defaultSteps = 10

// Animation returns the domain.Animation running the tween.
func (t Tween) Animation() domain.Animation {
	return func(ctx domain.AnimationContext) domain.Completion {
		styler, _ := ctx.Node.(Styler)
		set := func(v float64) {
			if styler != nil {
				styler.SetStyle(t.Property, v)
			}
		}

		steps := t.Steps
		if steps <= 0 {
			steps = defaultSteps
		}
		ticker := t.Ticker
		if ticker == nil {
			ticker = RealTime{}
		}

		set(t.From)
		if t.Duration <= 0 {
			set(t.To)
			return Done()
		}

		done := make(chan error, 1)
		ticks := ticker.Tick(t.Duration/time.Duration(steps), steps)
		go func() {
			defer close(done)
			i := 0
			for range ticks {
				i++
				set(t.From + (t.To-t.From)*float64(i)/float64(steps))
			}
			set(t.To)
		}()
		return domain.CompletionFunc(func() <-chan error { return done })
	}
}

// Fade animates opacity from 0 to 1.
func Fade(d time.Duration) domain.Animation {
	return Tween{Property: "opacity", From: 0, To: 1, Duration: d}.Animation()
}

// FadeOut animates opacity from 1 to 0.
func FadeOut(d time.Duration) domain.Animation {
	return Tween{Property: "opacity", From: 1, To: 0, Duration: d}.Animation()
}

// Slide animates the x offset.
func Slide(from, to float64, d time.Duration) domain.Animation {
	return Tween{Property: "x", From: from, To: to, Duration: d}.Animation()
}

// Instant sets a property and returns no completion, finishing the cycle at once.
func Instant(property string, value float64) domain.Animation {
	return func(ctx domain.AnimationContext) domain.Completion {
		if s, ok := ctx.Node.(Styler); ok {
			s.SetStyle(property, value)
		}
		return nil
	}
}

// Delay resolves after d without touching the node.
func Delay(d time.Duration) domain.Animation {
	return func(domain.AnimationContext) domain.Completion {
		done := make(chan error)
		time.AfterFunc(d, func() { close(done) })
		return domain.CompletionFunc(func() <-chan error { return done })
	}
}

// Fail returns an animation whose completion is rejected with err.
func Fail(err error) domain.Animation {
	return func(domain.AnimationContext) domain.Completion {
		done := make(chan error, 1)
		done <- err
		return domain.CompletionFunc(func() <-chan error { return done })
	}
}

// Sequence runs animations one after another on the same node.
// A rejection stops the sequence.
func Sequence(anims ...domain.Animation) domain.Animation {
	return func(ctx domain.AnimationContext) domain.Completion {
		done := make(chan error, 1)
		go func() {
			defer close(done)
			for _, anim := range anims {
				c := anim(ctx)
				if c == nil {
					continue
				}
				if err, ok := <-c.Finished(); ok && err != nil {
					done <- err
					return
				}
			}
		}()
		return domain.CompletionFunc(func() <-chan error { return done })
	}
}

var (
	doneOnce sync.Once
	doneCh   chan error
)

// Done returns an already resolved completion.
func Done() domain.Completion {
	doneOnce.Do(func() {
		doneCh = make(chan error)
		close(doneCh)
	})
	return domain.CompletionFunc(func() <-chan error { return doneCh })
}
