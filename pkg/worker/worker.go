// Package worker implements the Worker Handle: the
// Controller-side reference to one Executor goroutine, wrapping a
// Message Channel and the goroutine's lifecycle (spawn, terminate,
// unexpected-exit detection). A goroutine runs its Executor loop as soon
// as it is scheduled, so there is no separate online-wait step.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/entropic-build/filepool/pkg/channel"
	"github.com/entropic-build/filepool/pkg/executor"
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/poolerr"
	"github.com/entropic-build/filepool/pkg/resolve"
	"github.com/entropic-build/filepool/pkg/transport"
)

// Handle is one Worker Handle: an id, the goroutine backing it, and the
// Message Channel used to talk to it.
type Handle struct {
	ID int

	ch       *channel.Channel
	cancel   context.CancelFunc
	requests chan channel.Request

	terminating atomic.Bool
	exited      chan struct{}

	mu      sync.Mutex
	exitErr error
}

// Spawn starts the Executor for id in its own goroutine and returns its
// Handle without waiting for the goroutine to run. protoErrs receives unattributable Message Channel
// protocol errors; exitErrs receives UnexpectedExit if the
// goroutine's Run loop returns without Terminate having been called.
func Spawn(id int, resolver *resolve.Resolver, protoErrs chan<- error, exitErrs chan<- error) *Handle {
	ctx, cancel := context.WithCancel(context.Background())

	requests := make(chan channel.Request)
	replies := make(chan channel.Reply)

	h := &Handle{
		ID:       id,
		ch:       channel.New(requests, replies, protoErrs),
		cancel:   cancel,
		requests: requests,
		exited:   make(chan struct{}),
	}

	go h.run(ctx, id, resolver, requests, replies, exitErrs)
	return h
}

func (h *Handle) run(ctx context.Context, id int, resolver *resolve.Resolver, requests chan channel.Request, replies chan channel.Reply, exitErrs chan<- error) {
	defer close(h.exited)
	defer close(replies)

	e := executor.New(id, resolver)
	exitCode := e.Run(ctx, requests, replies)

	if !h.terminating.Load() {
		err := poolerr.UnexpectedExit(exitCode)
		h.mu.Lock()
		h.exitErr = err
		h.mu.Unlock()
		h.ch.RejectAllPending(err)
		if exitErrs != nil {
			select {
			case exitErrs <- err:
			default:
			}
		}
	}
}

// ImportFileProcessor asks the worker to load moduleID directly as a
// Processor, registering it under moduleUID.
func (h *Handle) ImportFileProcessor(moduleUID int, moduleID, cwd string) error {
	_, err := h.ch.SendAwait(channel.Request{
		ID:        channel.NextID(),
		Type:      channel.ReqImportFileProcessor,
		ModuleUID: moduleUID,
		ModuleID:  moduleID,
		Cwd:       cwd,
	})
	return err
}

// ImportModule asks the worker to load moduleID's Factory and invoke it
// with data, registering the resulting Processor under moduleUID.
func (h *Handle) ImportModule(moduleUID int, moduleID, cwd string, data any) error {
	_, err := h.ch.SendAwait(channel.Request{
		ID:        channel.NextID(),
		Type:      channel.ReqImportModule,
		ModuleUID: moduleUID,
		ModuleID:  moduleID,
		Cwd:       cwd,
		Data:      data,
	})
	return err
}

// ProcessFile asks the worker to run moduleUID's Processor over file
// under run, returning a Stream of "file" replies terminated by
// "finished" or "error". file and run cross into the Executor through
// transport.PrepareFile/PrepareRun, so a transferable input buffer is
// moved (not copied) and the Controller's own Run is never mutated by
// what the Executor does with its copy.
func (h *Handle) ProcessFile(moduleUID int, file *fsmodel.File, run *fsmodel.Run) (*channel.Stream, error) {
	return h.ch.Stream(channel.Request{
		ID:        channel.NextID(),
		Type:      channel.ReqProcessFile,
		ModuleUID: moduleUID,
		File:      transport.PrepareFile(file),
		Run:       transport.PrepareRun(run),
	})
}

// Terminate stops the worker's goroutine and rejects any requests still
// in flight with poolerr.Terminating, marking the exit as intentional so
// it is not reported as UnexpectedExit.
func (h *Handle) Terminate() {
	h.terminating.Store(true)
	h.cancel()
	h.ch.RejectAllPending(poolerr.Terminating())
	close(h.requests)
	<-h.exited
}
