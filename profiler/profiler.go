// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package profiler measures nested spans of CPU work, such as the frames of
// a render loop and the passes within them.
package profiler

import (
	"log/slog"
	"sync"
	"time"
)

// Group is an open span. Start opens a child span; End closes the span.
type Group interface {
	Start(label string) Group
	End()
}

type nopGroup struct{}

func (nopGroup) Start(string) Group { return nopGroup{} }
func (nopGroup) End()               {}

func Nop() Group { return nopGroup{} }

// Or returns g, or a group that does nothing if g is nil.
func Or(g Group) Group {
	if g == nil {
		return nopGroup{}
	}
	return g
}

type Span struct {
	Label    string
	Depth    int
	Start    time.Time
	Duration time.Duration
}

// Recorder is a Group that records every span closed under it. Spans are
// listed in the order they ended. Recorder is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	spans []Span
	// Zero means time.Now.
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Recorder) Start(label string) Group {
	return &recorderGroup{r: r, label: label, start: r.clock()}
}

// End does nothing; the recorder itself is never timed.
func (r *Recorder) End() {}

// Spans returns a copy of the recorded spans.
func (r *Recorder) Spans() []Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Span(nil), r.spans...)
}

// Reset discards all recorded spans.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = r.spans[:0]
}

type recorderGroup struct {
	r     *Recorder
	label string
	depth int
	start time.Time
	ended bool
}

func (g *recorderGroup) Start(label string) Group {
	return &recorderGroup{r: g.r, label: label, depth: g.depth + 1, start: g.r.clock()}
}

func (g *recorderGroup) End() {
	if g.ended {
		panic("span ended twice")
	}
	g.ended = true
	end := g.r.clock()
	g.r.mu.Lock()
	defer g.r.mu.Unlock()
	g.r.spans = append(g.r.spans, Span{
		Label:    g.label,
		Depth:    g.depth,
		Start:    g.start,
		Duration: end.Sub(g.start),
	})
}

// Log returns a Group that logs every span at debug level when it ends.
func Log(log *slog.Logger) Group {
	return &logGroup{log: log}
}

type logGroup struct {
	log   *slog.Logger
	label string
	depth int
	start time.Time
}

func (g *logGroup) Start(label string) Group {
	return &logGroup{log: g.log, label: label, depth: g.depth + 1, start: time.Now()}
}

func (g *logGroup) End() {
	if g.label == "" {
		return
	}
	g.log.Debug("span", "label", g.label, "depth", g.depth-1, "duration", time.Since(g.start))
}
