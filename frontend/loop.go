// Package frontend implements the render loop and the handle that UI code
// uses to talk to it.
//
// A Loop owns the renderer state and the target it renders to. Both are only
// ever touched by the goroutine executing Run; every other goroutine
// communicates with the loop by sending events through a Proxy. Events are
// handled in the order they were sent, and each event is handled completely,
// including rendering, before the next one.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"honnef.co/go/prism/internal/xlog"
	"honnef.co/go/prism/profiler"
	"honnef.co/go/prism/renderer"
)

var (
	ErrLoopClosed = errors.New("render loop has terminated")
	ErrNoCapture  = errors.New("render loop has no capture target")
)

const DefaultQueueSize = 16

// Target executes frame recordings. Engines implement Target.
type Target interface {
	RunRecording(rec *renderer.Recording) error
	Reconfigure(width, height uint32)
}

// Capturer is a Target that renders into an image.
type Capturer interface {
	Target
	Image() *image.RGBA
}

type Phase int32

const (
	Idle Phase = iota
	Rendering
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

type Options struct {
	// QueueSize is the capacity of the event queue. It defaults to
	// DefaultQueueSize.
	QueueSize int
	// Capture renders Capture events. Without it, captures fail with
	// ErrNoCapture.
	Capture Capturer
	Logger  *slog.Logger

	// Profiler receives a span for every rendered frame and capture.
	Profiler profiler.Group
}

type Loop struct {
	state   *renderer.State
	target  Target
	capture Capturer
	log     *slog.Logger
	prof    profiler.Group

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	phase     atomic.Int32
	frames    atomic.Uint64
	started   bool
}

func NewLoop(state *renderer.State, target Target, opts *Options) *Loop {
	if opts == nil {
		opts = &Options{}
	}
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		state:   state,
		target:  target,
		capture: opts.Capture,
		log:     xlog.Or(opts.Logger),
		prof:    profiler.Or(opts.Profiler),
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
}

// Proxy returns a handle for sending events to the loop. All proxies of a
// loop share its queue.
func (l *Loop) Proxy() Proxy {
	return Proxy{events: l.events, done: l.done}
}

func (l *Loop) Phase() Phase { return Phase(l.phase.Load()) }

// Frames returns the number of frames the target rendered successfully.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// Done is closed once the loop has terminated.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) terminate() {
	l.phase.Store(int32(Terminated))
	l.closeOnce.Do(func() { close(l.done) })
}

// Start renders the first frame synchronously. Run calls Start if it hasn't
// been called yet.
func (l *Loop) Start() error {
	if l.started {
		return nil
	}
	l.started = true
	if err := l.render(); err != nil {
		l.log.Error("render loop terminated", "err", err)
		l.terminate()
		return err
	}
	return nil
}

// Run handles events until a Quit event arrives, ctx is cancelled, or
// rendering fails fatally. It returns nil after Quit, ctx.Err() after
// cancellation, and renderer.ErrOutOfMemory if the device ran out of memory.
func (l *Loop) Run(ctx context.Context) error {
	if l.Phase() == Terminated {
		return ErrLoopClosed
	}
	if err := l.Start(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			l.terminate()
			return ctx.Err()
		case ev := <-l.events:
			quit, err := l.handle(ev)
			if err != nil {
				l.log.Error("render loop terminated", "err", err)
				l.terminate()
				return err
			}
			if quit {
				l.terminate()
				return nil
			}
		}
	}
}

func (l *Loop) handle(ev Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case MainEventsCleared:
	case Step:
		l.state.Uniform.Step()
		l.log.Debug("selected effect", "effect", l.state.Uniform.Effect)
	case ToggleFill:
		l.state.Uniform.ToggleFill()
		l.log.Debug("toggled fill mode", "fill", l.state.Uniform.FillMode)
	case NewImage:
		if err := l.state.Texture.Submit(ev.Image); err != nil {
			l.log.Warn("rejected image", "err", err)
		} else {
			l.log.Info("received image", "width", ev.Image.Width, "height", ev.Image.Height)
		}
	case NewColors:
	case Resize:
		if l.state.Resize(ev.Width, ev.Height) {
			l.target.Reconfigure(ev.Width, ev.Height)
		}
	case Capture:
		l.reply(ev.Reply, l.captureFrame())
		return false, nil
	case Quit:
		return true, nil
	default:
		panic(fmt.Sprintf("unhandled event %T", ev))
	}
	return false, l.render()
}

// render renders one frame. Only fatal errors are returned.
func (l *Loop) render() error {
	l.phase.Store(int32(Rendering))
	defer l.phase.Store(int32(Idle))
	pg := l.prof.Start("frame")
	defer pg.End()

	err := l.target.RunRecording(l.state.Frame())
	switch {
	case err == nil:
		l.frames.Add(1)
		return nil
	case errors.Is(err, renderer.ErrSurfaceLost):
		w, h := l.state.Size()
		l.log.Warn("surface lost, reconfiguring", "width", w, "height", h)
		l.target.Reconfigure(w, h)
		return nil
	case errors.Is(err, renderer.ErrOutOfMemory):
		return err
	default:
		l.log.Warn("dropped frame", "err", err)
		return nil
	}
}

func (l *Loop) captureFrame() CaptureResult {
	if l.capture == nil {
		return CaptureResult{Err: ErrNoCapture}
	}
	pg := l.prof.Start("capture")
	defer pg.End()
	l.capture.Reconfigure(l.state.Size())
	if err := l.capture.RunRecording(l.state.Snapshot()); err != nil {
		return CaptureResult{Err: fmt.Errorf("couldn't capture frame: %w", err)}
	}
	src := l.capture.Image()
	img := &image.RGBA{
		Pix:    append([]byte(nil), src.Pix...),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	return CaptureResult{Image: img}
}

func (l *Loop) reply(ch chan<- CaptureResult, res CaptureResult) {
	if ch == nil {
		return
	}
	select {
	case ch <- res:
	default:
		l.log.Warn("dropped capture result, reply channel not ready")
	}
}
