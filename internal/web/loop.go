package web

import (
	"context"
	"errors"
	"sync"
)

var errLoopStopped = errors.New("web: board loop stopped")

// loop runs every board interaction on one goroutine. The store is not safe
// for concurrent use; HTTP handlers hand it closures instead.
type loop struct {
	reqs     chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func newLoop() *loop {
	l := &loop{
		reqs: make(chan func()),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *loop) run() {
	for {
		select {
		case fn := <-l.reqs:
			fn()
		case <-l.done:
			return
		}
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.reqs <- job:
	case <-l.done:
		return errLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the job always runs to completion.
	<-finished
	return nil
}

func (l *loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
