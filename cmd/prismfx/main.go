// Command prismfx renders images through the prism effects without a GPU and
// writes the results as PNG files.
//
// Usage:
//
//	prismfx [-effect n] [-fill] [-w width] [-h height] [-o dir] images...
//
// By default every effect is rendered. Outputs are named after the input and
// the effect, as in photo.3.png.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"honnef.co/go/prism"
	"honnef.co/go/prism/decode"
	"honnef.co/go/prism/export"
	"honnef.co/go/prism/renderer"
)

type job struct {
	src    string
	img    *renderer.Image
	effect int
}

func run(ctx context.Context) error {
	var (
		effect  = flag.Int("effect", -1, "effect to render, or -1 for all effects")
		fill    = flag.Bool("fill", false, "stretch images to the output size")
		width   = flag.Uint("w", 0, "output width, defaults to the image width")
		height  = flag.Uint("h", 0, "output height, defaults to the image height")
		out     = flag.String("o", ".", "output directory")
		bg      = flag.String("bg", "", "background colour")
		maxSize = flag.Int("max", decode.DefaultMaxDimension, "maximum image dimension")
		verbose = flag.Bool("v", false, "log progress")
	)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] images...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *effect < -1 || *effect >= renderer.NumEffects {
		return fmt.Errorf("effect %d out of range [0, %d)", *effect, renderer.NumEffects)
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	prism.SetLogger(log)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	effects := []int{*effect}
	if *effect == -1 {
		effects = effects[:0]
		for i := range renderer.NumEffects {
			effects = append(effects, i)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	// One slot is taken by the decoder feeding jobs.
	g.SetLimit(runtime.GOMAXPROCS(0) + 1)
	jobs := make(chan job)
	g.Go(func() error {
		defer close(jobs)
		for _, src := range flag.Args() {
			img, err := decode.File(src, &decode.Options{MaxDimension: *maxSize})
			if err != nil {
				return err
			}
			for _, e := range effects {
				select {
				case jobs <- job{src: src, img: img, effect: e}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	opts := prism.RenderOptions{
		Width:      uint32(*width),
		Height:     uint32(*height),
		Fill:       *fill,
		Background: *bg,
	}
	for j := range jobs {
		g.Go(func() error {
			opts := opts
			opts.Effect = j.effect
			frame, err := prism.RenderImage(j.img, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", j.src, err)
			}
			path := filepath.Join(*out, export.Name(j.src, j.effect))
			if err := export.WriteFile(path, frame); err != nil {
				return err
			}
			log.Info("wrote frame", "src", j.src, "effect", j.effect, "path", path)
			return nil
		})
	}
	return g.Wait()
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "prismfx:", err)
		os.Exit(1)
	}
}
