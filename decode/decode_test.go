package decode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func redSquare(n int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, redSquare(2))), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Len(t, img.Pix, 16)
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[:4])
	assert.Equal(t, float32(1), img.Aspect())
}

func TestDecodeBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	src.SetRGBA(1, 0, color.RGBA{0, 0, 0, 255})
	src.SetRGBA(2, 0, color.RGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	img, err := Decode(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), img.Width)
	assert.Equal(t, []byte{0, 0, 255, 255}, img.Pix[8:12])
}

func TestConvertUnpremultiplies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	// Premultiplied half-transparent white.
	src.SetRGBA(0, 0, color.RGBA{128, 128, 128, 128})
	img, err := Convert(src, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 255, 128}, img.Pix)
}

func TestConvertOffsetBounds(t *testing.T) {
	src := redSquare(4).SubImage(image.Rect(1, 1, 3, 2))
	img, err := Convert(src, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(1), img.Height)
	assert.Len(t, img.Pix, 8)
}

func TestConvertDownscales(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 10))
	img, err := Convert(src, &Options{MaxDimension: 8})
	require.NoError(t, err)
	assert.Equal(t, uint32(8), img.Width)
	assert.Equal(t, uint32(2), img.Height)
}

func TestFitWithin(t *testing.T) {
	w, h := fitWithin(100, 50, 200)
	assert.Equal(t, [2]int{100, 50}, [2]int{w, h})
	w, h = fitWithin(100, 50, 10)
	assert.Equal(t, [2]int{10, 5}, [2]int{w, h})
	w, h = fitWithin(1, 1000, 10)
	assert.Equal(t, [2]int{1, 10}, [2]int{w, h})
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")), nil)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, redSquare(3)), 0666))

	img, err := File(path, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), img.Width)

	_, err = File(filepath.Join(dir, "missing.png"), nil)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, filepath.Join(dir, "missing.png"), derr.Path)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0666))
	_, err = File(bad, nil)
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, bad, derr.Path)
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "red.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, redSquare(2)), 0666))

	res, ok := <-Start(context.Background(), path, nil)
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, path, res.Path)
	assert.Equal(t, uint32(2), res.Image.Width)

	res = <-Start(context.Background(), filepath.Join(dir, "missing.png"), nil)
	assert.Error(t, res.Err)
}

func TestStartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := <-Start(ctx, "whatever.png", nil)
	assert.False(t, ok)
}
