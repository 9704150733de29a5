package frontend

import "context"

// Proxy sends events to a Loop. It is safe for concurrent use and cheap to
// copy.
type Proxy struct {
	events chan<- Event
	done   <-chan struct{}
}

// Send queues ev, blocking while the queue is full. It returns ErrLoopClosed
// if the loop has terminated. An event queued while the loop terminates is
// also reported as ErrLoopClosed; it may or may not have been handled.
func (p Proxy) Send(ev Event) error {
	return p.SendContext(context.Background(), ev)
}

// SendContext is like Send but gives up when ctx is done.
func (p Proxy) SendContext(ctx context.Context, ev Event) error {
	select {
	case <-p.done:
		return ErrLoopClosed
	default:
	}
	select {
	case p.events <- ev:
		return p.closed()
	case <-p.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p Proxy) closed() error {
	select {
	case <-p.done:
		return ErrLoopClosed
	default:
		return nil
	}
}

// RequestRedraw queues a redraw without blocking. It reports whether the
// request was queued; requests are dropped while the queue is full or after
// the loop terminated.
func (p Proxy) RequestRedraw() bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.events <- MainEventsCleared{}:
		return p.closed() == nil
	default:
		return false
	}
}
