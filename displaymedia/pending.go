package displaymedia

import (
	"context"

	"go2tv.app/displaymedia/mediastream"
)

// Pending is the result of a capture request. It settles once.
type Pending struct {
	done   chan struct{}
	stream *mediastream.MediaStream
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// settle must be called exactly once; a second call panics on the closed
// channel.
func (p *Pending) settle(stream *mediastream.MediaStream, err error) {
	p.stream, p.err = stream, err
	close(p.done)
}

// Done is closed when the request settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the request has settled, without blocking.
func (p *Pending) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the request settles.
func (p *Pending) Wait() (*mediastream.MediaStream, error) {
	<-p.done
	return p.stream, p.err
}

// WaitContext stops waiting when ctx is done. The request itself keeps
// running and still settles.
func (p *Pending) WaitContext(ctx context.Context) (*mediastream.MediaStream, error) {
	select {
	case <-p.done:
		return p.stream, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
