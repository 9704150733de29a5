// Package prism displays an image through one of a fixed set of fragment
// shader effects. A Session owns the GPU context, the render loop and
// everything the loop renders with; RenderImage produces the same frames
// without a GPU.
package prism

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"honnef.co/go/prism/engine/cpu_engine"
	"honnef.co/go/prism/engine/wgpu_engine"
	"honnef.co/go/prism/frontend"
	"honnef.co/go/prism/profiler"
	"honnef.co/go/prism/renderer"
)

type Session struct {
	cfg     Config
	gpu     *wgpu_engine.Context
	engine  *wgpu_engine.Engine
	capture *cpu_engine.Engine
	state   *renderer.State
	loop    *frontend.Loop
	log     *slog.Logger
}

// NewSession creates the GPU context for host and a render loop presenting
// to it. The loop doesn't run until Run is called.
func NewSession(host wgpu_engine.Host, cfg Config) (_ *Session, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := Logger()
	present, _ := cfg.WGPUPresentMode()
	power, _ := cfg.WGPUPowerPreference()
	bg, _ := cfg.ClearColor()

	gpu, err := wgpu_engine.NewContext(host, wgpu_engine.ContextOptions{
		PowerPreference: power,
		PresentMode:     present,
		Timestamps:      cfg.Profile,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			gpu.Release()
		}
	}()

	gpuProf := wgpu_engine.NewNopProfiler()
	cpuProf := profiler.Nop()
	if cfg.Profile {
		cpuProf = profiler.Log(log)
		if gpu.HasTimestamps {
			gpuProf = wgpu_engine.NewProfiler(gpu.Device)
		}
	}

	w, h := gpu.Size()
	s := &Session{
		cfg: cfg,
		gpu: gpu,
		engine: wgpu_engine.New(gpu, &wgpu_engine.Options{
			Profiler: gpuProf,
			Logger:   log,
		}),
		capture: cpu_engine.New(w, h, &cpu_engine.Options{Logger: log}),
		state:   newState(w, h, cfg.Effect, cfg.Fill, bg),
		log:     log,
	}
	s.loop = frontend.NewLoop(s.state, s.engine, &frontend.Options{
		QueueSize: cfg.QueueSize,
		Capture:   s.capture,
		Logger:    log,
		Profiler:  cpuProf,
	})
	return s, nil
}

func newState(w, h uint32, effect int, fill bool, bg [4]float64) *renderer.State {
	state := renderer.NewState(w, h)
	state.Uniform.SetEffect(effect)
	if fill {
		state.Uniform.FillMode = renderer.FillStretch
	}
	state.Clear = bg
	return state
}

func (s *Session) Config() Config { return s.cfg }

// Proxy returns the handle that producers use to send events to the loop.
func (s *Session) Proxy() frontend.Proxy { return s.loop.Proxy() }

func (s *Session) Loop() *frontend.Loop { return s.loop }

// Run renders the first frame and then handles events until the loop
// terminates. See frontend.Loop.Run.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("starting render loop", "effect", s.cfg.Effect, "fill", s.cfg.Fill)
	return s.loop.Run(ctx)
}

// Close releases all GPU resources. The loop must not be running.
func (s *Session) Close() {
	s.engine.Release()
	s.capture.Release()
	s.gpu.Release()
}

// RenderOptions configures RenderImage.
type RenderOptions struct {
	// Width and Height are the size of the output. Zero means the size of
	// the image.
	Width  uint32
	Height uint32
	Effect int
	Fill   bool
	// Background is a CSS colour. Empty means the default background.
	Background string
}

// RenderImage renders img with an effect on the CPU and returns the frame.
func RenderImage(img *renderer.Image, opts RenderOptions) (*image.RGBA, error) {
	if opts.Effect < 0 || opts.Effect >= renderer.NumEffects {
		return nil, fmt.Errorf("%w: effect %d out of range [0, %d)", ErrInvalidConfig, opts.Effect, renderer.NumEffects)
	}
	bg, err := parseBackground(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: background: %s", ErrInvalidConfig, err)
	}
	if img == nil {
		return nil, renderer.ErrNoImage
	}
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = img.Width
	}
	if h == 0 {
		h = img.Height
	}

	state := newState(w, h, opts.Effect, opts.Fill, bg)
	if err := state.Texture.Submit(img); err != nil {
		return nil, err
	}
	eng := cpu_engine.New(w, h, &cpu_engine.Options{Logger: Logger()})
	defer eng.Release()
	if err := eng.RunRecording(state.Frame()); err != nil {
		return nil, err
	}
	return eng.Image(), nil
}
