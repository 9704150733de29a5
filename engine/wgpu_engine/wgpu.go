package wgpu_engine

import (
	"errors"
	"fmt"
	"log/slog"

	"honnef.co/go/prism/engine/wgpu_engine/shaders"
	"honnef.co/go/prism/internal/xlog"
	"honnef.co/go/prism/renderer"
	"honnef.co/go/wgpu"
)

type Options struct {
	// ShaderSource replaces the built-in WGSL module. It must provide the
	// same entry points and bind groups.
	ShaderSource []byte
	Profiler     *Profiler
	Logger       *slog.Logger
}

// SurfaceError is returned when acquiring the surface texture failed for a
// reason other than a lost surface or exhausted memory.
type SurfaceError struct {
	Err error
}

func (err *SurfaceError) Error() string {
	return fmt.Sprintf("couldn't acquire surface texture: %s", err.Err)
}

func (err *SurfaceError) Unwrap() error { return err.Err }

// surfaceStatusError maps errors from acquiring the surface texture to the
// renderer's error classes.
func surfaceStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wgpu.ErrCurrentTextureLost), errors.Is(err, wgpu.ErrCurrentTextureOutdated):
		return fmt.Errorf("%w: %w", renderer.ErrSurfaceLost, err)
	case errors.Is(err, wgpu.ErrCurrentTextureOutOfMemory):
		return fmt.Errorf("%w: %w", renderer.ErrOutOfMemory, err)
	default:
		return &SurfaceError{Err: err}
	}
}

type gpuImage struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

func (img *gpuImage) release() {
	img.bindGroup.Release()
	img.view.Release()
	img.texture.Release()
}

type gpuUniform struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

func (u *gpuUniform) release() {
	u.bindGroup.Release()
	u.buffer.Release()
}

// Engine executes recordings on the GPU and presents the result to the
// context's surface. It owns the pipeline, the quad vertex buffer and every
// resource that recordings upload. Engine is not safe for concurrent use.
type Engine struct {
	ctx       *Context
	pipeline  *effectPipeline
	vertexBuf *wgpu.Buffer
	images    map[renderer.ResourceID]*gpuImage
	uniforms  map[renderer.ResourceID]*gpuUniform
	profiler  *Profiler
	log       *slog.Logger
	frame     uint64
}

func New(ctx *Context, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	sh := shaders.Effect
	if len(opts.ShaderSource) != 0 {
		sh = sh.WithSource(opts.ShaderSource)
	}

	eng := &Engine{
		ctx:      ctx,
		pipeline: newEffectPipeline(ctx.Device, sh, ctx.Format),
		images:   make(map[renderer.ResourceID]*gpuImage),
		uniforms: make(map[renderer.ResourceID]*gpuUniform),
		profiler: opts.Profiler,
		log:      xlog.Or(opts.Logger),
	}

	quad := renderer.QuadBytes()
	eng.vertexBuf = ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "quad vertices",
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		Size:  uint64(len(quad)),
	})
	ctx.Queue.WriteBuffer(eng.vertexBuf, 0, quad)
	return eng
}

// Reconfigure reconfigures the surface, typically after a resize or after
// RunRecording returned renderer.ErrSurfaceLost.
func (eng *Engine) Reconfigure(width, height uint32) {
	eng.ctx.Configure(width, height)
}

// RunRecording executes rec. Uploads take effect even if presenting fails, so
// a recording that failed with renderer.ErrSurfaceLost must not be replayed.
func (eng *Engine) RunRecording(rec *renderer.Recording) (err error) {
	eng.frame++
	eng.profiler.Begin(eng.frame)

	var freeImages, freeBufs []renderer.ResourceID
	defer func() {
		for _, id := range freeImages {
			if img, ok := eng.images[id]; ok {
				delete(eng.images, id)
				img.release()
			}
		}
		for _, id := range freeBufs {
			if u, ok := eng.uniforms[id]; ok {
				delete(eng.uniforms, id)
				u.release()
			}
		}
		if len(freeImages) != 0 {
			eng.log.Debug("released images", "count", len(freeImages), "live", len(eng.images))
		}
		eng.profiler.End()
		eng.profiler.Collect(eng.log)
	}()

	for _, cmd := range rec.Commands {
		switch cmd := cmd.(type) {
		case *renderer.UploadImage:
			eng.uploadImage(cmd)

		case *renderer.UploadUniform:
			eng.uploadUniform(cmd)

		case *renderer.FreeImage:
			freeImages = append(freeImages, cmd.Image.ID)

		case *renderer.FreeBuffer:
			freeBufs = append(freeBufs, cmd.Buffer.ID)

		case *renderer.Draw:
			if err := eng.draw(cmd); err != nil {
				return err
			}

		default:
			panic(fmt.Sprintf("unhandled command %T", cmd))
		}
	}
	return nil
}

func (eng *Engine) uploadImage(cmd *renderer.UploadImage) {
	dev := eng.ctx.Device
	proxy := cmd.Image
	format := imageFormatToWGPU(proxy.Format)
	blockSize, ok := format.BlockCopySize(wgpu.TextureAspectAll)
	if !ok {
		panic("image format must have a valid block size")
	}
	size := wgpu.Extent3D{
		Width:              proxy.Width,
		Height:             proxy.Height,
		DepthOrArrayLayers: 1,
	}
	texture := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "image",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Format:        format,
	})
	view := texture.CreateView(&wgpu.TextureViewDescriptor{
		Dimension:       wgpu.TextureViewDimension2D,
		Aspect:          wgpu.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
		Format:          format,
	})
	eng.ctx.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		cmd.Data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  proxy.Width * blockSize,
			RowsPerImage: proxy.Height,
		},
		&size,
	)
	bindGroup := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "image bind group",
		Layout: eng.pipeline.Layouts[0],
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: eng.pipeline.Sampler},
		},
	})
	if old, ok := eng.images[proxy.ID]; ok {
		old.release()
	}
	eng.images[proxy.ID] = &gpuImage{texture: texture, view: view, bindGroup: bindGroup}
	eng.log.Debug("uploaded image", "id", proxy.ID, "width", proxy.Width, "height", proxy.Height)
}

func (eng *Engine) uploadUniform(cmd *renderer.UploadUniform) {
	u, ok := eng.uniforms[cmd.Buffer.ID]
	if !ok {
		dev := eng.ctx.Device
		buf := dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: cmd.Buffer.Name,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			Size:  cmd.Buffer.Size,
		})
		bindGroup := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  cmd.Buffer.Name + " bind group",
			Layout: eng.pipeline.Layouts[1],
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: buf, Size: ^uint64(0)},
			},
		})
		u = &gpuUniform{buffer: buf, bindGroup: bindGroup}
		eng.uniforms[cmd.Buffer.ID] = u
	}
	eng.ctx.Queue.WriteBuffer(u.buffer, 0, cmd.Data)
}

func (eng *Engine) draw(cmd *renderer.Draw) error {
	img, ok := eng.images[cmd.Image.ID]
	if !ok {
		panic(fmt.Sprintf("draw uses unknown image %d", cmd.Image.ID))
	}
	u, ok := eng.uniforms[cmd.Uniform.ID]
	if !ok {
		panic(fmt.Sprintf("draw uses unknown uniform buffer %d", cmd.Uniform.ID))
	}

	surface, err := eng.ctx.Surface.CurrentTexture()
	if err != nil {
		return surfaceStatusError(err)
	}
	if surface.Suboptimal {
		eng.log.Debug("surface texture is suboptimal")
	}
	surfaceView := surface.Texture.CreateView(nil)
	defer surfaceView.Release()

	encoder := eng.ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "effect"})
	defer encoder.Release()
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "effect pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    surfaceView,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: cmd.Clear[0],
					G: cmd.Clear[1],
					B: cmd.Clear[2],
					A: cmd.Clear[3],
				},
			},
		},
		TimestampWrites: eng.profiler.Render("effect"),
	})
	pass.SetPipeline(eng.pipeline.Pipeline)
	pass.SetBindGroup(0, img.bindGroup, nil)
	pass.SetBindGroup(1, u.bindGroup, nil)
	pass.SetVertexBuffer(0, eng.vertexBuf, 0, eng.vertexBuf.Size())
	pass.Draw(cmd.VertexCount, cmd.InstanceCount, 0, 0)
	pass.End()
	pass.Release()

	eng.profiler.Resolve(encoder)
	cmdBuf := encoder.Finish(nil)
	defer cmdBuf.Release()
	eng.ctx.Queue.Submit(cmdBuf)
	eng.ctx.Surface.Present()
	return nil
}

// Release releases every GPU resource owned by the engine. The context is
// not released.
func (eng *Engine) Release() {
	for id, img := range eng.images {
		img.release()
		delete(eng.images, id)
	}
	for id, u := range eng.uniforms {
		u.release()
		delete(eng.uniforms, id)
	}
	eng.vertexBuf.Release()
	eng.pipeline.Release()
	eng.profiler.Release()
}
