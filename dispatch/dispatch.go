// Package dispatch is an optional convenience layer on top of nio.Selector:
// a tiny reactor that drives Select in a loop and fans ready monitors out to
// an ants goroutine pool, so callers who want event-loop ergonomics don't
// have to hand-roll one. nio itself stays a pure readiness primitive; this
// package is deliberately separate and never imported by it. The pool is
// sized to effectively unbounded (ants' 0-means-unlimited convention)
// unless the caller opts into a smaller pool via WithPoolSize.
package dispatch

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/shixiongfei/nio"
	"github.com/shixiongfei/nio/log"
)

// Handler is invoked once per ready Monitor surfaced by a Select call. It
// runs on a pool goroutine, not the Runner's loop goroutine, so handlers
// may block on their own I/O without stalling dispatch of other monitors.
type Handler func(mon *nio.Monitor)

// Runner drives a nio.Selector's Select loop on its own goroutine and
// dispatches each ready Monitor to Handler via an ants.PoolWithFunc, which
// is unbounded unless WithPoolSize sets a size.
type Runner struct {
	sel       *nio.Selector
	handler   Handler
	pool      *ants.PoolWithFunc
	capacity  int
	timeoutMs int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures a Runner.
type Option func(*runnerOptions)

type runnerOptions struct {
	poolSize     int
	selectCap    int
	selectTimeMs int
}

func defaultRunnerOptions() runnerOptions {
	return runnerOptions{
		poolSize:     0, // unbounded: ants treats 0 as no limit
		selectCap:    128,
		selectTimeMs: -1,
	}
}

// WithPoolSize bounds the number of goroutines dispatching handlers
// concurrently. 0 (the default) means unbounded.
func WithPoolSize(n int) Option {
	return func(o *runnerOptions) { o.poolSize = n }
}

// WithSelectCapacity bounds how many ready monitors a single Select call
// may return.
func WithSelectCapacity(n int) Option {
	return func(o *runnerOptions) { o.selectCap = n }
}

// WithSelectTimeout overrides the per-iteration Select timeout in
// milliseconds. The default is -1 (indefinite); Stop still interrupts it
// promptly via Wakeup.
func WithSelectTimeout(ms int) Option {
	return func(o *runnerOptions) { o.selectTimeMs = ms }
}

// NewRunner builds a Runner over sel. handler is called for every monitor
// Select surfaces, on a pool goroutine.
func NewRunner(sel *nio.Selector, handler Handler, opts ...Option) (*Runner, error) {
	o := defaultRunnerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Runner{
		sel:       sel,
		handler:   handler,
		capacity:  o.selectCap,
		timeoutMs: o.selectTimeMs,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	pool, err := ants.NewPoolWithFunc(o.poolSize, func(v any) {
		mon, ok := v.(*nio.Monitor)
		if !ok {
			return
		}
		r.handler(mon)
	})
	if err != nil {
		return nil, err
	}
	r.pool = pool
	return r, nil
}

// Run blocks, repeatedly calling Select and dispatching ready monitors,
// until Stop is called or the selector closes.
func (r *Runner) Run() {
	defer close(r.doneCh)
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		if r.sel.Closed() {
			return
		}

		ready, err := r.sel.Select(r.capacity, r.timeoutMs)
		if err != nil {
			log.Errorf("dispatch: select failed: %v", err)
			continue
		}
		for _, mon := range ready {
			if err := r.pool.Invoke(mon); err != nil {
				log.Errorf("dispatch: pool invoke failed: %v", err)
			}
		}
	}
}

// Stop interrupts Run and waits for it to return. Safe to call more than
// once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		_ = r.sel.Wakeup()
	})
	<-r.doneCh
	r.pool.Release()
}
