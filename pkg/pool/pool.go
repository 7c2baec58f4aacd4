// Package pool implements the Worker Pool: lifecycle
// management and round-robin dispatch across a fixed set of Worker
// Handles, grounded on the construct/size/dispose-style lifecycle of the
// wider codebase's own worker pool but re-cut to the file-processing
// protocol's request shape.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/entropic-build/filepool/pkg/channel"
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/poolerr"
	"github.com/entropic-build/filepool/pkg/resolve"
	"github.com/entropic-build/filepool/pkg/worker"
)

// Pool is the Worker Pool: a fixed-size set of Worker Handles dispatched
// to round-robin, each importing the same set of modules so any worker
// can service any processFile request.
type Pool struct {
	run      *fsmodel.Run
	resolver *resolve.Resolver

	mu       sync.Mutex
	workers  []*worker.Handle
	cursor   int
	disposed bool

	moduleCounter atomic.Int64

	// ProtoErrs and ExitErrs surface channel-level and worker-lifecycle
	// errors that aren't attributable to any single in-flight call,
	// mirroring the build engine's own event-emitter sink.
	ProtoErrs chan error
	ExitErrs  chan error
}

// Config configures pool construction.
type Config struct {
	Concurrency int
	Run         *fsmodel.Run
	Loader      resolve.Loader
}

// New constructs a Pool of cfg.Concurrency workers, each running against
// cfg.Run's cwd. Loader defaults to resolve.NativeLoader{} if nil.
func New(cfg Config) (*Pool, error) {
	if cfg.Run == nil {
		return nil, poolerr.InvalidConfig("run is required")
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, poolerr.InvalidConfig(err.Error())
	}
	if cfg.Concurrency <= 0 {
		return nil, poolerr.InvalidConfig("concurrency must be a positive integer")
	}

	var loader resolve.Loader = cfg.Loader
	if loader == nil {
		loader = resolve.NativeLoader{}
	}

	p := &Pool{
		run:       cfg.Run,
		resolver:  resolve.NewResolver(loader),
		workers:   make([]*worker.Handle, cfg.Concurrency),
		ProtoErrs: make(chan error, cfg.Concurrency),
		ExitErrs:  make(chan error, cfg.Concurrency),
	}
	for i := 0; i < cfg.Concurrency; i++ {
		p.workers[i] = worker.Spawn(i, p.resolver, p.ProtoErrs, p.ExitErrs)
	}
	return p, nil
}

// Size returns the number of live Worker Handles in the pool, 0 once the
// pool has been disposed.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// IsDisposed reports whether Dispose has been called; it is true from
// the start of the first Dispose, before its workers have terminated.
func (p *Pool) IsDisposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// next selects the next worker round-robin, advancing the cursor.
func (p *Pool) next() (*worker.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return nil, poolerr.PoolDisposed()
	}
	w := p.workers[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.workers)
	return w, nil
}

// ImportFileProcessor imports moduleID as a Processor on every worker in
// the pool, returning a single moduleUID all workers share.
func (p *Pool) ImportFileProcessor(moduleID string) (int, error) {
	return p.importOnAllWorkers(func(uid int, w *worker.Handle) error {
		return w.ImportFileProcessor(uid, moduleID, p.run.Cwd)
	})
}

// ImportModule imports moduleID as a Factory on every worker in the
// pool, invoking the Factory with data, returning a single moduleUID.
func (p *Pool) ImportModule(moduleID string, data any) (int, error) {
	return p.importOnAllWorkers(func(uid int, w *worker.Handle) error {
		return w.ImportModule(uid, moduleID, p.run.Cwd, data)
	})
}

// importOnAllWorkers allocates a fresh moduleUID and runs importOne
// against every worker concurrently, so any worker can later service a
// processFile request for that module.
func (p *Pool) importOnAllWorkers(importOne func(uid int, w *worker.Handle) error) (int, error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return 0, poolerr.PoolDisposed()
	}
	workers := append([]*worker.Handle(nil), p.workers...)
	uid := int(p.moduleCounter.Add(1))
	p.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, len(workers))
	for i, w := range workers {
		wg.Add(1)
		go func(i int, w *worker.Handle) {
			defer wg.Done()
			errs[i] = importOne(uid, w)
		}(i, w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}
	return uid, nil
}

// ProcessFile dispatches file to the next worker round-robin, running
// moduleUID's Processor over it under the pool's Run.
func (p *Pool) ProcessFile(moduleUID int, file *fsmodel.File) (*channel.Stream, error) {
	w, err := p.next()
	if err != nil {
		return nil, err
	}
	return w.ProcessFile(moduleUID, file, p.run)
}

// Dispose terminates every worker, rejecting any in-flight requests with
// poolerr.Terminating. Dispose is idempotent.
func (p *Pool) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	workers := p.workers
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker.Handle) {
			defer wg.Done()
			w.Terminate()
		}(w)
	}
	wg.Wait()

	p.mu.Lock()
	p.workers = nil
	p.mu.Unlock()
}
