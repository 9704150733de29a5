package ui

import (
	"context"
	"fmt"
	"log/slog"

	"honnef.co/go/prism/decode"
	"honnef.co/go/prism/export"
	"honnef.co/go/prism/frontend"
	"honnef.co/go/prism/internal/xlog"
)

// Executor carries out commands. Commands that take time run on their own
// goroutines and report back by sending inputs on Inputs.
type Executor struct {
	Proxy  frontend.Proxy
	Inputs chan<- Input
	Decode *decode.Options
	Logger *slog.Logger
}

func (e *Executor) post(ctx context.Context, in Input) {
	select {
	case e.Inputs <- in:
	case <-ctx.Done():
	}
}

func (e *Executor) Exec(ctx context.Context, cmd Command) {
	log := xlog.Or(e.Logger)
	switch cmd := cmd.(type) {
	case Send:
		if err := e.Proxy.SendContext(ctx, cmd.Event); err != nil {
			log.Warn("couldn't send event", "event", fmt.Sprintf("%T", cmd.Event), "err", err)
		}

	case StartDecode:
		ch := decode.Start(ctx, cmd.Path, e.Decode)
		go func() {
			res, ok := <-ch
			if !ok {
				return
			}
			if res.Err != nil {
				e.post(ctx, DecodeFailed{Path: res.Path, Err: res.Err})
				return
			}
			e.post(ctx, DecodeDone{Path: res.Path, Image: res.Image})
		}()

	case Save:
		go func() {
			e.post(ctx, SaveDone{Path: cmd.Path, Err: e.save(ctx, cmd.Path)})
		}()

	default:
		panic(fmt.Sprintf("unhandled command %T", cmd))
	}
}

func (e *Executor) save(ctx context.Context, path string) error {
	reply := make(chan frontend.CaptureResult, 1)
	if err := e.Proxy.SendContext(ctx, frontend.Capture{Reply: reply}); err != nil {
		return err
	}
	var res frontend.CaptureResult
	select {
	case res = <-reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return res.Err
	}
	return export.WriteFile(path, res.Image)
}
