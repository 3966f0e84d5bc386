package session

import (
	"sync"

	imap "github.com/luhaoyun888/go-imap-async"
)

// Result is the payload a completed command resolves with: the final
// status response plus every untagged response that arrived while the
// command was pending (spec §4.F "Completion").
type Result struct {
	Status StatusResult
	Lines  []string
}

// StatusResult mirrors the tagged completion's status without pulling in
// the wire decoder's Response type, so callers of Future don't need to
// import internal/wire.
type StatusResult struct {
	Type string // "OK", "NO", "BAD"
	Code string
	Text string
}

// Future is the single-shot result carrier every Submit call returns
// (spec §4.H). It generalizes the teacher's single-consumer
// `done chan error` into a value that supports both blocking Wait and
// fire-and-forget OnDone callbacks, first-writer-wins via sync.Once.
type Future struct {
	once sync.Once
	done chan struct{}

	mu        sync.Mutex
	result    Result
	err       error
	callbacks []func(Result, error)
}

// NewFuture returns an unresolved Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete resolves the future exactly once; subsequent calls are no-ops.
// This is the only way a Future's result is ever set.
func (f *Future) complete(result Result, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.result = result
		f.err = err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(result, err)
		}
	})
}

// Done returns a channel closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves and returns its result.
func (f *Future) Wait() (Result, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

// OnDone registers cb to run when the future resolves. If it has already
// resolved, cb runs synchronously before OnDone returns.
func (f *Future) OnDone(cb func(Result, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		result, err := f.result, f.err
		f.mu.Unlock()
		cb(result, err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Cancel is advisory: it resolves the future with *cancelled* if it has
// not already resolved, but does not forcibly terminate an in-flight
// command (spec §4 "Cancellation"). Callers that want IDLE to actually
// stop must call Session.Terminate.
func (f *Future) Cancel() {
	f.complete(Result{}, &imap.Error{Kind: imap.ErrCancelled})
}
