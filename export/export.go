// Package export writes rendered frames to disk.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is the file name used when saving without an explicit path.
const DefaultName = "render.png"

// PNG encodes img as PNG.
func PNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// WriteFile writes img to path as PNG, replacing any existing file. The image
// is encoded into a temporary file in the same directory, which is then
// renamed to path.
func WriteFile(path string, img image.Image) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err := PNG(bw, img); err != nil {
		return fmt.Errorf("couldn't encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Name returns the output name for rendering the image at src with the given
// effect, as in "photo.3.png".
func Name(src string, effect int) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s.%d.png", base, effect)
}
