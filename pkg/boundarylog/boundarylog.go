// Package boundarylog implements the Controller-side half of the
// per-request logging channel. The Executor side
// (pkg/executor's replyLogger) tags every Logger call a Processor makes
// with the originating message id and posts it as a "log" reply;
// Forward is the Controller-side counterpart that reattaches each
// forwarded entry to the caller's own Logger as the reply stream is
// consumed, the same way a request-scoped logger gets threaded through
// the wider codebase's own component loggers.
package boundarylog

import (
	"fmt"
	"iter"

	"github.com/entropic-build/filepool/pkg/channel"
	"github.com/entropic-build/filepool/pkg/fsmodel"
	"github.com/entropic-build/filepool/pkg/plugin"
)

// Forward consumes stream, immediately forwarding every "log" reply to
// log and yielding a plugin.Item for every "file" reply. It returns once
// the stream reaches "finished" (no trailing Item) or "error" (a single
// Item carrying Err). log may be nil, in which case log replies are
// simply discarded.
func Forward(stream *channel.Stream, log fsmodel.Logger) iter.Seq[plugin.Item] {
	return func(yield func(plugin.Item) bool) {
		for {
			reply, done, err := stream.Next()
			if err != nil {
				yield(plugin.Item{Err: err})
				return
			}
			if done {
				return
			}
			if reply.Type == channel.ReplyLog {
				forwardEntry(log, reply)
				continue
			}
			if !yield(plugin.Item{File: reply.File}) {
				return
			}
		}
	}
}

func forwardEntry(log fsmodel.Logger, reply channel.Reply) {
	if log == nil {
		return
	}
	message := messageString(reply.Message)
	switch reply.Level {
	case channel.LevelWarning:
		log.Warn(message, reply.Data)
	case channel.LevelError:
		log.Error(message, reply.Data)
	case channel.LevelDebug:
		log.Debug(message, reply.Data)
	default:
		log.Info(message, reply.Data)
	}
}

func messageString(message any) string {
	if s, ok := message.(string); ok {
		return s
	}
	return fmt.Sprint(message)
}
