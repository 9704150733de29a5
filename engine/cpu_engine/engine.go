// Package cpu_engine executes recordings on the CPU, rendering into an
// in-memory image instead of a surface. It produces the same frames as the
// wgpu engine and is used for exporting, batch rendering and tests.
package cpu_engine

import (
	"encoding/binary"
	"fmt"
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"honnef.co/go/prism/engine/wgpu_engine/shaders/cpu"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/internal/xlog"
	"honnef.co/go/prism/profiler"
	"honnef.co/go/prism/renderer"
)

// rows rendered per task
const bandHeight = 32

type Options struct {
	Logger *slog.Logger

	// Profiler, if set, receives a span per recording and per draw.
	Profiler profiler.Group
}

type Engine struct {
	target   *image.RGBA
	images   map[renderer.ResourceID]*cpu.Texture
	uniforms map[renderer.ResourceID]renderer.ShaderUniform
	log      *slog.Logger
	prof     profiler.Group
}

func New(width, height uint32, opts *Options) *Engine {
	if opts == nil {
		opts = &Options{}
	}
	return &Engine{
		target:   image.NewRGBA(image.Rect(0, 0, int(max(width, 1)), int(max(height, 1)))),
		images:   make(map[renderer.ResourceID]*cpu.Texture),
		uniforms: make(map[renderer.ResourceID]renderer.ShaderUniform),
		log:      xlog.Or(opts.Logger),
		prof:     profiler.Or(opts.Profiler),
	}
}

// Image returns the render target. Its contents change with every draw.
func (eng *Engine) Image() *image.RGBA { return eng.target }

// Reconfigure resizes the render target, discarding its contents. Zero-sized
// requests are ignored.
func (eng *Engine) Reconfigure(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	b := eng.target.Bounds()
	if b.Dx() == int(width) && b.Dy() == int(height) {
		return
	}
	eng.target = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
}

func (eng *Engine) RunRecording(rec *renderer.Recording) error {
	pg := eng.prof.Start("recording")
	defer pg.End()

	var freeImages, freeBufs []renderer.ResourceID
	for _, cmd := range rec.Commands {
		switch cmd := cmd.(type) {
		case *renderer.UploadImage:
			eng.images[cmd.Image.ID] = decodeTexels(cmd.Image, cmd.Data)

		case *renderer.UploadUniform:
			var u renderer.ShaderUniform
			if _, err := binary.Decode(cmd.Data, binary.LittleEndian, &u); err != nil {
				return fmt.Errorf("couldn't decode uniform %q: %w", cmd.Buffer.Name, err)
			}
			eng.uniforms[cmd.Buffer.ID] = u

		case *renderer.FreeImage:
			freeImages = append(freeImages, cmd.Image.ID)

		case *renderer.FreeBuffer:
			freeBufs = append(freeBufs, cmd.Buffer.ID)

		case *renderer.Draw:
			dg := pg.Start("draw")
			eng.draw(cmd)
			dg.End()

		default:
			panic(fmt.Sprintf("unhandled command %T", cmd))
		}
	}
	for _, id := range freeImages {
		delete(eng.images, id)
	}
	for _, id := range freeBufs {
		delete(eng.uniforms, id)
	}
	return nil
}

func decodeTexels(proxy renderer.ImageProxy, data []byte) *cpu.Texture {
	n := int(proxy.Width) * int(proxy.Height)
	if len(data) != n*renderer.BytesPerPixel {
		panic(fmt.Sprintf("image %d has %d bytes of data, want %d", proxy.ID, len(data), n*renderer.BytesPerPixel))
	}
	tex := &cpu.Texture{
		Width:  int(proxy.Width),
		Height: int(proxy.Height),
		Texels: make([][4]float32, n),
	}
	for i := range tex.Texels {
		px := data[i*4 : i*4+4 : i*4+4]
		r, g, b, a := px[0], px[1], px[2], px[3]
		if proxy.Format == renderer.Bgra8 {
			r, b = b, r
		}
		switch proxy.Format {
		case renderer.Rgba8Srgb:
			tex.Texels[i] = [4]float32{gfx.DecodeByte(r), gfx.DecodeByte(g), gfx.DecodeByte(b), float32(a) / 255}
		default:
			tex.Texels[i] = [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
		}
	}
	return tex
}

func (eng *Engine) draw(cmd *renderer.Draw) {
	tex, ok := eng.images[cmd.Image.ID]
	if !ok {
		panic(fmt.Sprintf("draw uses unknown image %d", cmd.Image.ID))
	}
	u, ok := eng.uniforms[cmd.Uniform.ID]
	if !ok {
		panic(fmt.Sprintf("draw uses unknown uniform buffer %d", cmd.Uniform.ID))
	}
	clearColor := [4]float32{
		float32(cmd.Clear[0]),
		float32(cmd.Clear[1]),
		float32(cmd.Clear[2]),
		float32(cmd.Clear[3]),
	}

	dst := eng.target
	width := dst.Rect.Dx()
	height := dst.Rect.Dy()

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y0 := 0; y0 < height; y0 += bandHeight {
		y1 := min(y0+bandHeight, height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
				for x := range width {
					src := cpu.Fragment(tex, u, cpu.TexCoords(x, y, width, height))
					c := cpu.Blend(src, clearColor)
					px := row[x*4 : x*4+4 : x*4+4]
					px[0] = gfx.EncodeByte(c[0])
					px[1] = gfx.EncodeByte(c[1])
					px[2] = gfx.EncodeByte(c[2])
					px[3] = uint8(min(max(c[3], 0), 1)*255 + 0.5)
				}
			}
			return nil
		})
	}
	g.Wait()
	eng.log.Debug("drew frame", "width", width, "height", height, "effect", u.Effect)
}

// Release drops all resources. The engine remains usable.
func (eng *Engine) Release() {
	clear(eng.images)
	clear(eng.uniforms)
}
