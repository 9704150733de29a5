// Command prism shows an image through a selection of shader effects.
//
// Usage:
//
//	prism [-config file] [image]
//
// Space or Right selects the next effect, F toggles between fitting and
// stretching the image, P cycles the palette, S saves the current frame to
// render.png and Esc quits. Dropping a file onto the window opens it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"honnef.co/go/prism"
	"honnef.co/go/prism/frontend"
	"honnef.co/go/prism/internal/glfwhost"
	"honnef.co/go/prism/palette"
	"honnef.co/go/prism/ui"
)

func init() {
	// glfw must be driven from the main thread.
	runtime.LockOSThread()
}

type app struct {
	ctx     context.Context
	cfg     prism.Config
	win     *glfw.Window
	proxy   frontend.Proxy
	exec    *ui.Executor
	inputs  chan ui.Input
	state   ui.State
	palette *palette.List
	log     *slog.Logger
}

func (a *app) dispatch(in ui.Input) {
	var cmds []ui.Command
	prev := a.state
	a.state, cmds = ui.Update(a.state, in)
	if a.state.Palette != prev.Palette {
		a.palette.Next()
	}
	for _, cmd := range cmds {
		a.exec.Exec(a.ctx, cmd)
	}
	if a.state.Status != prev.Status {
		a.win.SetTitle(fmt.Sprintf("%s: %s", a.cfg.Title, a.state.Status))
		a.log.Info(a.state.Status)
	}
}

func (a *app) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeySpace, glfw.KeyRight:
		a.dispatch(ui.StepPressed{})
	case glfw.KeyF:
		a.dispatch(ui.FillPressed{})
	case glfw.KeyP:
		a.dispatch(ui.PalettePressed{})
	case glfw.KeyS:
		a.dispatch(ui.SaveRequested{})
	case glfw.KeyEscape:
		a.win.SetShouldClose(true)
	}
}

func (a *app) onResize(_ *glfw.Window, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	ev := frontend.Resize{Width: uint32(width), Height: uint32(height)}
	if err := a.proxy.SendContext(a.ctx, ev); err != nil {
		a.log.Warn("couldn't send resize", "err", err)
	}
}

func (a *app) onDrop(_ *glfw.Window, names []string) {
	if len(names) > 0 {
		a.dispatch(ui.OpenRequested{Path: names[0]})
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := prism.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = prism.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	prism.SetLogger(log)

	pal, err := palette.Parse(cfg.Palette)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("couldn't initialize glfw: %w", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("couldn't create window: %w", err)
	}
	defer win.Destroy()

	session, err := prism.NewSession(glfwhost.Host{Window: win}, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	inputs := make(chan ui.Input, 16)
	a := &app{
		ctx:   ctx,
		cfg:   cfg,
		win:   win,
		proxy: session.Proxy(),
		exec: &ui.Executor{
			Proxy:  session.Proxy(),
			Inputs: inputs,
			Decode: cfg.DecodeOptions(),
			Logger: log,
		},
		inputs:  inputs,
		state:   ui.NewState(pal.Len()),
		palette: pal,
		log:     log,
	}
	a.state.Effect = cfg.Effect
	a.state.Fill = cfg.Fill
	win.SetKeyCallback(a.onKey)
	win.SetFramebufferSizeCallback(a.onResize)
	win.SetDropCallback(a.onDrop)

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	if flag.NArg() == 1 {
		a.dispatch(ui.OpenRequested{Path: flag.Arg(0)})
	}

	for !win.ShouldClose() {
		glfw.WaitEventsTimeout(1.0 / 60)
	drain:
		for {
			select {
			case in := <-inputs:
				a.dispatch(in)
			default:
				break drain
			}
		}
		select {
		case err := <-done:
			return loopErr(err)
		default:
		}
		a.proxy.RequestRedraw()
	}

	if err := a.proxy.Send(frontend.Quit{}); err != nil && !errors.Is(err, frontend.ErrLoopClosed) {
		return err
	}
	return loopErr(<-done)
}

// loopErr filters out the error the loop returns when interrupted.
func loopErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "prism:", err)
		os.Exit(1)
	}
}
