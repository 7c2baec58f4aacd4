package channel

import "github.com/entropic-build/filepool/pkg/transport"

// fromErrorReply reconstructs the error carried by an "error" reply.
func fromErrorReply(r Reply) error {
	return transport.FromRecord(r.Error)
}
