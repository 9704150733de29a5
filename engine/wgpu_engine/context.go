package wgpu_engine

import (
	"errors"
	"fmt"
	"log/slog"

	"honnef.co/go/prism/internal/xlog"
	"honnef.co/go/wgpu"
)

var (
	ErrNoAdapter       = errors.New("no suitable GPU adapter")
	ErrNoDevice        = errors.New("couldn't create GPU device")
	ErrNoSurfaceFormat = errors.New("surface supports no texture formats")
)

// Host provides the surface that frames are presented to, such as a window.
type Host interface {
	SurfaceDescriptor() (wgpu.SurfaceDescriptor, error)
	// Size returns the size of the drawable area in pixels.
	Size() (width, height uint32)
}

type ContextOptions struct {
	PowerPreference wgpu.PowerPreference
	PresentMode     wgpu.PresentMode
	// Timestamps requests support for timestamp queries, which the profiler
	// needs. Adapters without the feature are still accepted.
	Timestamps bool
	Logger     *slog.Logger
}

// Context owns the GPU objects that live as long as the session: instance,
// surface, adapter, device and queue.
type Context struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Format   wgpu.TextureFormat
	// HasTimestamps reports whether the device was created with timestamp
	// query support.
	HasTimestamps bool

	config wgpu.SurfaceConfiguration
	log    *slog.Logger
}

// NewContext creates the GPU context for host and configures its surface at
// the host's current size.
func NewContext(host Host, opts ContextOptions) (_ *Context, err error) {
	ctx := &Context{log: xlog.Or(opts.Logger)}
	defer func() {
		if err != nil {
			ctx.Release()
		}
	}()

	ctx.Instance = wgpu.CreateInstance(wgpu.InstanceDescriptor{})

	desc, err := host.SurfaceDescriptor()
	if err != nil {
		return nil, fmt.Errorf("couldn't get surface descriptor: %w", err)
	}
	ctx.Surface = ctx.Instance.CreateSurface(desc)

	ctx.Adapter, err = ctx.Instance.RequestAdapter(wgpu.RequestAdapterOptions{
		CompatibleSurface: ctx.Surface,
		PowerPreference:   opts.PowerPreference,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}

	var features []wgpu.FeatureName
	if opts.Timestamps {
		if ctx.Adapter.HasFeature(wgpu.FeatureNameTimestampQuery) {
			features = append(features, wgpu.FeatureNameTimestampQuery)
			ctx.HasTimestamps = true
		} else {
			ctx.log.Warn("adapter doesn't support timestamp queries, profiling disabled")
		}
	}
	ctx.Device, err = ctx.Adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "prism device",
		RequiredFeatures: features,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDevice, err)
	}
	ctx.Queue = ctx.Device.Queue()

	caps := ctx.Surface.Capabilities(ctx.Adapter)
	format, ok := chooseFormat(caps.Formats)
	if !ok {
		return nil, ErrNoSurfaceFormat
	}
	ctx.Format = format

	width, height := host.Size()
	ctx.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       max(width, 1),
		Height:      max(height, 1),
		PresentMode: opts.PresentMode,
		AlphaMode:   wgpu.CompositeAlphaModeAuto,
	}
	ctx.Surface.Configure(ctx.Device, &ctx.config)
	ctx.log.Info("configured surface",
		"format", format,
		"width", ctx.config.Width,
		"height", ctx.config.Height,
		"present_mode", opts.PresentMode,
		"timestamps", ctx.HasTimestamps)
	return ctx, nil
}

// chooseFormat picks the first sRGB format, falling back to the first format.
func chooseFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, bool) {
	if len(formats) == 0 {
		return 0, false
	}
	for _, f := range formats {
		if isSRGB(f) {
			return f, true
		}
	}
	return formats[0], true
}

func isSRGB(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}

// Size returns the size the surface is configured at.
func (ctx *Context) Size() (width, height uint32) {
	return ctx.config.Width, ctx.config.Height
}

// Configure reconfigures the surface at the given size. Requests for a zero
// width or height are ignored.
func (ctx *Context) Configure(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	ctx.config.Width = width
	ctx.config.Height = height
	ctx.Surface.Configure(ctx.Device, &ctx.config)
	ctx.log.Debug("reconfigured surface", "width", width, "height", height)
}

// Release releases all GPU objects in reverse order of creation. It is safe
// to call on partially constructed contexts.
func (ctx *Context) Release() {
	if ctx.Queue != nil {
		ctx.Queue.Release()
		ctx.Queue = nil
	}
	if ctx.Device != nil {
		ctx.Device.Release()
		ctx.Device = nil
	}
	if ctx.Adapter != nil {
		ctx.Adapter.Release()
		ctx.Adapter = nil
	}
	if ctx.Surface != nil {
		ctx.Surface.Release()
		ctx.Surface = nil
	}
	if ctx.Instance != nil {
		ctx.Instance.Release()
		ctx.Instance = nil
	}
}
