// Package steps holds what the individual wizard steps share: the mount lifecycle that
// discards async results arriving after an unmount.
package steps

import (
	"context"
	"errors"
	"sync"
)

var ErrNotMounted = errors.New("STEP_NOT_MOUNTED")

// Lifecycle tracks one step's mounts. Begin, End, Current and Context must be called with
// the owning step's mutex held, so a generation check and the state write it guards are atomic.
// Go and Wait take their own lock and may be called from any goroutine.
type Lifecycle struct {
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	mounted bool

	wmu     sync.Mutex
	running int
	idle    *sync.Cond
}

// Begin starts a new mount and returns its context and generation. A previous mount is ended first.
func (l *Lifecycle) Begin(parent context.Context) (context.Context, uint64) {
	l.End()
	l.ctx, l.cancel = context.WithCancel(parent)
	l.mounted = true
	l.gen++
	return l.ctx, l.gen
}

// End cancels the mount context and bumps the generation so in-flight results are discarded.
func (l *Lifecycle) End() {
	if !l.mounted {
		return
	}
	l.cancel()
	l.mounted = false
	l.gen++
}

func (l *Lifecycle) Mounted() bool { return l.mounted }

// Current reports whether gen is the live mount.
func (l *Lifecycle) Current(gen uint64) bool {
	return l.mounted && gen == l.gen
}

// Context returns the live mount context and generation, or ErrNotMounted.
func (l *Lifecycle) Context() (context.Context, uint64, error) {
	if !l.mounted {
		return nil, 0, ErrNotMounted
	}
	return l.ctx, l.gen, nil
}

// Go runs fn in a goroutine tracked by Wait.
func (l *Lifecycle) Go(fn func()) {
	l.wmu.Lock()
	l.running++
	l.wmu.Unlock()
	go func() {
		defer l.finish()
		fn()
	}()
}

func (l *Lifecycle) finish() {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	l.running--
	if l.running == 0 && l.idle != nil {
		l.idle.Broadcast()
	}
}

// Wait blocks until no goroutine started with Go is running. Work started while
// Wait is blocked extends the wait.
func (l *Lifecycle) Wait() {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	if l.idle == nil {
		l.idle = sync.NewCond(&l.wmu)
	}
	for l.running > 0 {
		l.idle.Wait()
	}
}
