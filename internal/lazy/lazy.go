// Package lazy provides a build-once value shared by concurrent callers.
package lazy

import (
	"context"
	"fmt"
	"sync"
)

// State describes where a Value is in its lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateInFlight
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInFlight:
		return "in-flight"
	case StateReady:
		return "ready"
	default:
		return "not-started"
	}
}

type attempt[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Value holds the result of a single build. The first caller of Get runs the
// build; callers arriving while it is in flight wait for the same result.
// The result, including a failure, is kept until Reset.
type Value[T any] struct {
	mu      sync.Mutex
	current *attempt[T]
}

// Get returns the built value, building it on first use.
// Waiters give up when ctx is done; the build itself keeps running.
func (v *Value[T]) Get(ctx context.Context, build func() (T, error)) (T, error) {
	v.mu.Lock()
	a := v.current
	if a == nil {
		a = &attempt[T]{done: make(chan struct{})}
		v.current = a
		v.mu.Unlock()

		a.value, a.err = run(build)
		close(a.done)
		return a.value, a.err
	}
	v.mu.Unlock()

	// A finished build wins over a done ctx.
	select {
	case <-a.done:
		return a.value, a.err
	default:
	}
	select {
	case <-a.done:
		return a.value, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the value without building it.
func (v *Value[T]) Peek() (T, bool) {
	v.mu.Lock()
	a := v.current
	v.mu.Unlock()

	var zero T
	if a == nil {
		return zero, false
	}
	select {
	case <-a.done:
		if a.err != nil {
			return zero, false
		}
		return a.value, true
	default:
		return zero, false
	}
}

// State reports the lifecycle state of the current build.
func (v *Value[T]) State() State {
	v.mu.Lock()
	a := v.current
	v.mu.Unlock()

	if a == nil {
		return StateNotStarted
	}
	select {
	case <-a.done:
		return StateReady
	default:
		return StateInFlight
	}
}

// Reset drops the cached result. A build in flight still completes for the
// callers already waiting on it, but the next Get starts a new build.
func (v *Value[T]) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = nil
}

func run[T any](build func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build panicked: %v", r)
		}
	}()
	return build()
}
