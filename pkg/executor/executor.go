// Package executor implements the Executor Runtime: the
// goroutine-side counterpart of a Worker Handle that holds the loaded
// processor registry and dispatches each incoming Request to either the
// module loader or a registered Processor, replying over the Message
// Channel's wire types.
package executor

import (
	"context"
	"fmt"

	"github.com/entropic-build/filepool/pkg/channel"
	"github.com/entropic-build/filepool/pkg/plugin"
	"github.com/entropic-build/filepool/pkg/poolerr"
	"github.com/entropic-build/filepool/pkg/resolve"
	"github.com/entropic-build/filepool/pkg/transport"
)

// Executor is the per-worker runtime loop. It owns no goroutine of its
// own; Run is invoked by the Worker Handle inside the goroutine it spawns.
type Executor struct {
	id       int
	resolver *resolve.Resolver

	processors map[int]plugin.Processor
}

// New builds an Executor identified by workerID (used only for
// diagnostics in wrapped errors), loading modules through resolver.
func New(workerID int, resolver *resolve.Resolver) *Executor {
	return &Executor{
		id:         workerID,
		resolver:   resolver,
		processors: make(map[int]plugin.Processor),
	}
}

// Run dispatches requests from in to replies on out until in is closed,
// recovering from a panicking Processor by converting it to an "error"
// reply rather than propagating it. It returns the exit code the caller
// should report if this return turns out to be unexpected (the request
// channel was not closed via a deliberate Terminate).
func (e *Executor) Run(ctx context.Context, in <-chan channel.Request, out chan<- channel.Reply) int {
	for req := range in {
		e.dispatch(ctx, req, out)
	}
	return 0
}

func (e *Executor) dispatch(ctx context.Context, req channel.Request, out chan<- channel.Reply) {
	defer func() {
		if r := recover(); r != nil {
			out <- errorReply(req.ID, fmt.Errorf("panic in executor: %v", r))
		}
	}()

	switch req.Type {
	case channel.ReqImportFileProcessor:
		e.handleImport(ctx, req, out, nil)
	case channel.ReqImportModule:
		e.handleImport(ctx, req, out, req.Data)
	case channel.ReqProcessFile:
		e.handleProcessFile(ctx, req, out)
	default:
		out <- errorReply(req.ID, poolerr.ProtocolError(req.ID))
	}
}

// handleImport services both importFileProcessor (factoryData == nil,
// the module exports a Processor directly) and importModule
// (factoryData supplied, the module exports a Factory invoked with it).
func (e *Executor) handleImport(ctx context.Context, req channel.Request, out chan<- channel.Reply, factoryData any) {
	proc, factory, err := e.resolver.LoadModule(ctx, req.ModuleID, req.Cwd)
	if err != nil {
		out <- errorReply(req.ID, poolerr.ModuleImportFailed(req.ModuleID, err))
		return
	}

	if factory != nil {
		proc, err = factory(ctx, factoryData)
		if err != nil {
			out <- errorReply(req.ID, poolerr.ModuleImportFailed(req.ModuleID, err))
			return
		}
	}
	if proc == nil {
		out <- errorReply(req.ID, poolerr.InvalidProcessor("the module exported a Factory that returned a nil Processor"))
		return
	}

	e.processors[req.ModuleUID] = proc
	out <- channel.Reply{To: req.ID, Type: channel.ReplyFileProcessorImported}
}

func (e *Executor) handleProcessFile(ctx context.Context, req channel.Request, out chan<- channel.Reply) {
	proc, ok := e.processors[req.ModuleUID]
	if !ok {
		out <- errorReply(req.ID, poolerr.ModuleNotFound(e.id, req.ModuleID))
		return
	}

	// req.Run already crossed the boundary through transport.PrepareRun,
	// so it's a copy the Controller never sees again: safe to mutate in
	// place to install the boundary logger.
	run := req.Run
	if run != nil {
		run.Log = newReplyLogger(req.ID, run.Debug, out)
	}

	for item := range proc(ctx, req.File, run) {
		if item.Err != nil {
			out <- errorReply(req.ID, item.Err)
			return
		}
		if err := item.File.Validate(); err != nil {
			out <- errorReply(req.ID, poolerr.InvalidFile(item.File))
			return
		}
		out <- channel.Reply{To: req.ID, Type: channel.ReplyFile, File: transport.PrepareFile(item.File)}
	}
	out <- channel.Reply{To: req.ID, Type: channel.ReplyFinished}
}

func errorReply(to uint64, err error) channel.Reply {
	return channel.Reply{To: to, Type: channel.ReplyError, Error: transport.ToRecord(err)}
}

// replyLogger forwards fsmodel.Logger calls across the Message Channel
// as "log" replies tagged with the originating request id. debug
// entries are dropped unless the originating Run asked for them.
type replyLogger struct {
	requestID uint64
	debug     bool
	out       chan<- channel.Reply
}

func newReplyLogger(requestID uint64, debug bool, out chan<- channel.Reply) *replyLogger {
	return &replyLogger{requestID: requestID, debug: debug, out: out}
}

// Log routes message to Error if it is an error, Info otherwise.
func (l *replyLogger) Log(message any, data map[string]any) {
	if _, ok := message.(error); ok {
		l.emit(channel.LevelError, message, data)
		return
	}
	l.emit(channel.LevelInfo, message, data)
}

func (l *replyLogger) Info(message string, data map[string]any) {
	l.emit(channel.LevelInfo, message, data)
}

func (l *replyLogger) Warn(message string, data map[string]any) {
	l.emit(channel.LevelWarning, message, data)
}

func (l *replyLogger) Error(message string, data map[string]any) {
	l.emit(channel.LevelError, message, data)
}

func (l *replyLogger) Debug(message string, data map[string]any) {
	if !l.debug {
		return
	}
	l.emit(channel.LevelDebug, message, data)
}

func (l *replyLogger) emit(level channel.LogLevel, message any, data map[string]any) {
	l.out <- channel.Reply{
		To:      l.requestID,
		Type:    channel.ReplyLog,
		Level:   level,
		Message: message,
		Data:    data,
	}
}
