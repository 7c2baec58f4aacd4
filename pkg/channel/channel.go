package channel

import (
	"sync"
	"sync/atomic"

	"github.com/entropic-build/filepool/pkg/poolerr"
)

// nextMessageID is the process-wide monotonic message id counter,
// shared by every Channel in the process.
var nextMessageID atomic.Uint64

// NextID allocates the next process-wide message id.
func NextID() uint64 {
	return nextMessageID.Add(1)
}

type delivery struct {
	reply Reply
	err   error
}

// Channel is one Worker Handle's Message Channel: the duplex carrier
// wrapping a pair of Go channels with request/reply correlation,
// streaming, and reject-on-terminate.
type Channel struct {
	out chan<- Request
	in  <-chan Reply

	mu         sync.Mutex
	pending    map[uint64]chan delivery
	completed  *completedSet
	terminated bool

	// protoErrs receives ProtocolError events — replies for an id this
	// channel has no record of and that isn't in the completed history —
	// a channel-level (not caller-scoped) error event.
	protoErrs chan<- error
}

// New wires a Channel around out (requests posted to the Executor) and in
// (replies read from the Executor), reporting unattributable protocol
// errors to protoErrs. It starts the dispatch loop immediately.
func New(out chan<- Request, in <-chan Reply, protoErrs chan<- error) *Channel {
	c := &Channel{
		out:       out,
		in:        in,
		pending:   make(map[uint64]chan delivery),
		completed: newCompletedSet(4096),
		protoErrs: protoErrs,
	}
	go c.dispatchLoop()
	return c
}

func (c *Channel) dispatchLoop() {
	for reply := range c.in {
		c.mu.Lock()
		waiter, ok := c.pending[reply.To]
		if ok && (reply.Type == ReplyFinished || reply.Type == ReplyError || reply.Type == ReplyFileProcessorImported) {
			delete(c.pending, reply.To)
			c.completed.add(reply.To)
		}
		c.mu.Unlock()

		if !ok {
			if c.completed.has(reply.To) {
				continue // arrived-after-cancel: ignored, not an error
			}
			c.reportProtocolError(reply.To)
			continue
		}
		waiter <- delivery{reply: reply}
	}
}

func (c *Channel) reportProtocolError(id uint64) {
	if c.protoErrs == nil {
		return
	}
	select {
	case c.protoErrs <- poolerr.ProtocolError(id):
	default:
	}
}

// Send is the fire-and-forget mode: post req and return its id without
// registering a waiter. Held under the same lock as RejectAllPending,
// and a no-op once it has marked the channel terminated, so a send never
// follows the owner's close of the underlying request channel.
func (c *Channel) Send(req Request) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return req.ID
	}
	c.out <- req
	return req.ID
}

// SendAwait is the single-reply mode: register a pending waiter for
// req.ID, post req, and block for the first reply. A reply of type
// "error" is reconstructed and returned as the error.
func (c *Channel) SendAwait(req Request) (Reply, error) {
	waiter, err := c.registerAndSend(req)
	if err != nil {
		return Reply{}, err
	}
	d := <-waiter
	if d.err != nil {
		return Reply{}, d.err
	}
	if d.reply.Type == ReplyError {
		return Reply{}, fromErrorReply(d.reply)
	}
	return d.reply, nil
}

// Stream is the streamed-reply mode. It registers a single waiter for
// req.ID for the lifetime of the exchange and returns a Stream that
// yields each non-terminal reply via Next, terminating on a "finished" or
// "error" reply.
func (c *Channel) Stream(req Request) (*Stream, error) {
	waiter, err := c.registerAndSend(req)
	if err != nil {
		return nil, err
	}
	return &Stream{ch: waiter}, nil
}

// registerAndSend registers req.ID's waiter and posts req to c.out under
// a single critical section, so RejectAllPending can never observe a
// waiter registered for a request that was never actually sent (or vice
// versa).
func (c *Channel) registerAndSend(req Request) (chan delivery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return nil, poolerr.Terminating()
	}
	waiter := make(chan delivery, 1)
	c.pending[req.ID] = waiter
	c.out <- req
	return waiter, nil
}

// RejectAllPending atomically drains the pending table and force-rejects
// every outstanding waiter with err, then marks every drained id
// completed so a reply that arrives afterward is ignored rather than
// raising a ProtocolError. It also marks the channel terminated, so later
// sends are refused. It does not close the underlying request channel;
// the caller that owns that channel closes it afterwards.
func (c *Channel) RejectAllPending(err error) {
	c.mu.Lock()
	c.terminated = true
	drained := c.pending
	c.pending = make(map[uint64]chan delivery)
	c.mu.Unlock()

	for id, waiter := range drained {
		waiter <- delivery{err: err}
		c.completed.add(id)
	}
}

// Stream is a streamed-reply consumer for one request.
type Stream struct {
	ch   chan delivery
	done bool
}

// Next blocks for the next reply. It returns (reply, false, nil) for each
// non-terminal reply, (zero, true, nil) once "finished" arrives, and
// (zero, true, err) if the stream ended in error or force-rejection.
func (s *Stream) Next() (Reply, bool, error) {
	if s.done {
		return Reply{}, true, nil
	}
	d := <-s.ch
	if d.err != nil {
		s.done = true
		return Reply{}, true, d.err
	}
	switch d.reply.Type {
	case ReplyFinished:
		s.done = true
		return Reply{}, true, nil
	case ReplyError:
		s.done = true
		return Reply{}, true, fromErrorReply(d.reply)
	default:
		return d.reply, false, nil
	}
}
