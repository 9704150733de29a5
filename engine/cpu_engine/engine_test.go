package cpu_engine

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/prism/gfx"
	"honnef.co/go/prism/profiler"
	"honnef.co/go/prism/renderer"
)

func solid(t *testing.T, w, h uint32, c color.RGBA) *renderer.Image {
	t.Helper()
	pix := make([]byte, 0, w*h*4)
	for range w * h {
		pix = append(pix, c.R, c.G, c.B, c.A)
	}
	img, err := renderer.NewImage(w, h, pix)
	require.NoError(t, err)
	return img
}

func background() color.RGBA {
	c := renderer.DefaultBackground
	return color.RGBA{
		R: gfx.EncodeByte(float32(c[0])),
		G: gfx.EncodeByte(float32(c[1])),
		B: gfx.EncodeByte(float32(c[2])),
		A: 255,
	}
}

func render(t *testing.T, s *renderer.State, eng *Engine) {
	t.Helper()
	require.NoError(t, eng.RunRecording(s.Frame()))
}

func TestPlaceholderFrame(t *testing.T) {
	s := renderer.NewState(4, 4)
	eng := New(4, 4, nil)
	render(t, s, eng)

	// The placeholder is transparent, so only the clear colour is visible.
	bg := background()
	img := eng.Image()
	for y := range 4 {
		for x := range 4 {
			assert.Equal(t, bg, img.RGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestFitLetterboxes(t *testing.T) {
	s := renderer.NewState(4, 2)
	eng := New(4, 2, nil)
	red := color.RGBA{255, 0, 0, 255}
	require.NoError(t, s.Texture.Submit(solid(t, 2, 2, red)))
	render(t, s, eng)

	img := eng.Image()
	bg := background()
	for y := range 2 {
		assert.Equal(t, bg, img.RGBAAt(0, y))
		assert.Equal(t, red, img.RGBAAt(1, y))
		assert.Equal(t, red, img.RGBAAt(2, y))
		assert.Equal(t, bg, img.RGBAAt(3, y))
	}
}

func TestFillStretches(t *testing.T) {
	s := renderer.NewState(4, 2)
	eng := New(4, 2, nil)
	red := color.RGBA{255, 0, 0, 255}
	require.NoError(t, s.Texture.Submit(solid(t, 2, 2, red)))
	s.Uniform.ToggleFill()
	render(t, s, eng)

	img := eng.Image()
	for y := range 2 {
		for x := range 4 {
			assert.Equal(t, red, img.RGBAAt(x, y))
		}
	}
}

func TestInvertEffect(t *testing.T) {
	s := renderer.NewState(2, 2)
	eng := New(2, 2, nil)
	require.NoError(t, s.Texture.Submit(solid(t, 2, 2, color.RGBA{255, 0, 0, 255})))
	s.Uniform.SetEffect(2)
	render(t, s, eng)
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, eng.Image().RGBAAt(1, 1))
}

func TestFreesResources(t *testing.T) {
	s := renderer.NewState(2, 2)
	eng := New(2, 2, nil)
	render(t, s, eng)
	assert.Len(t, eng.images, 1)

	require.NoError(t, s.Texture.Submit(solid(t, 1, 1, color.RGBA{A: 255})))
	render(t, s, eng)
	assert.Len(t, eng.images, 1)
	assert.Contains(t, eng.images, s.Texture.Proxy().ID)
}

func TestSnapshotOnFreshEngine(t *testing.T) {
	s := renderer.NewState(2, 2)
	green := color.RGBA{0, 255, 0, 255}
	require.NoError(t, s.Texture.Submit(solid(t, 2, 2, green)))

	eng := New(2, 2, nil)
	require.NoError(t, eng.RunRecording(s.Snapshot()))
	assert.Equal(t, green, eng.Image().RGBAAt(0, 0))
	assert.Empty(t, eng.images)
	assert.Empty(t, eng.uniforms)
}

func TestProfilerSpans(t *testing.T) {
	rec := profiler.NewRecorder()
	s := renderer.NewState(2, 2)
	eng := New(2, 2, &Options{Profiler: rec})
	render(t, s, eng)

	var labels []string
	for _, span := range rec.Spans() {
		labels = append(labels, span.Label)
	}
	assert.Equal(t, []string{"draw", "recording"}, labels)
}

func TestReconfigure(t *testing.T) {
	eng := New(2, 2, nil)
	eng.Reconfigure(8, 3)
	assert.Equal(t, 8, eng.Image().Bounds().Dx())
	assert.Equal(t, 3, eng.Image().Bounds().Dy())
	eng.Reconfigure(0, 3)
	assert.Equal(t, 8, eng.Image().Bounds().Dx())
}

func TestDecodeTexels(t *testing.T) {
	proxy := renderer.ImageProxy{Width: 1, Height: 1, Format: renderer.Bgra8}
	tex := decodeTexels(proxy, []byte{255, 0, 51, 255})
	assert.InDeltaSlice(t, []float32{0.2, 0, 1, 1}, tex.Texels[0][:], 1e-6)

	proxy.Format = renderer.Rgba8Srgb
	tex = decodeTexels(proxy, []byte{255, 255, 255, 0})
	assert.InDeltaSlice(t, []float32{1, 1, 1, 0}, tex.Texels[0][:], 1e-6)

	assert.Panics(t, func() { decodeTexels(proxy, []byte{1, 2, 3}) })
}
