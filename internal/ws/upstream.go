package ws

import "context"

// Upstream is a live connection to the speech model. Send pushes guest
// audio up; Events delivers everything coming back. The channel closes when
// the upstream ends, after which Send and RespondTool fail.
type Upstream interface {
	Send(ctx context.Context, audio []byte) error
	Events() <-chan Event
	RespondTool(ctx context.Context, callID, name, result string) error
	Close() error
}

// Dialer opens a fresh upstream for one voice session. A nil dialer means
// voice is not configured and the endpoint refuses connections.
type Dialer func(ctx context.Context) (Upstream, error)
