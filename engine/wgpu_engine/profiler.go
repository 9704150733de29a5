// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package wgpu_engine

import (
	"log/slog"
	"time"

	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"
)

const (
	maxFrameTimestamps = 16
	// Frames whose timestamps haven't been read back yet. Frames beyond this
	// aren't profiled.
	maxFramesInFlight = 4
)

// Profiler records GPU timestamps around render passes and reads them back
// asynchronously. A nil *Profiler is valid and does nothing.
type Profiler struct {
	dev *wgpu.Device

	current *profiledFrame
	// frames that have been submitted and are being mapped, oldest first
	mapped []*profiledFrame
	// free list
	free []*profiledFrame
}

type profiledFrame struct {
	seq        uint64
	set        *wgpu.QuerySet
	resolveBuf *wgpu.Buffer
	mapBuf     *wgpu.Buffer
	labels     []string
	next       uint32
	cpuStart   time.Time
	cpuEnd     time.Time
	ch         <-chan error
}

func (f *profiledFrame) release() {
	f.set.Release()
	f.resolveBuf.Release()
	f.mapBuf.Release()
}

// FrameTiming is the result for one profiled frame. GPU timestamps are in
// device ticks.
type FrameTiming struct {
	Seq    uint64
	CPU    time.Duration
	Passes []PassTiming
}

type PassTiming struct {
	Label string
	Start uint64
	End   uint64
}

func (p PassTiming) Ticks() uint64 { return p.End - p.Start }

// NewProfiler returns a profiler for dev, which must have been created with
// timestamp query support.
func NewProfiler(dev *wgpu.Device) *Profiler {
	return &Profiler{dev: dev}
}

func NewNopProfiler() *Profiler {
	return nil
}

func (p *Profiler) getFrame() *profiledFrame {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		f.labels = f.labels[:0]
		f.next = 0
		f.ch = nil
		return f
	}
	return &profiledFrame{
		set: p.dev.CreateQuerySet(&wgpu.QuerySetDescriptor{
			Type:  wgpu.QueryTypeTimestamp,
			Count: maxFrameTimestamps,
		}),
		resolveBuf: p.dev.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageQueryResolve | wgpu.BufferUsageCopySrc,
			Size:  maxFrameTimestamps * 8,
		}),
		mapBuf: p.dev.CreateBuffer(&wgpu.BufferDescriptor{
			Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
			Size:  maxFrameTimestamps * 8,
		}),
	}
}

// Begin starts profiling frame seq.
func (p *Profiler) Begin(seq uint64) {
	if p == nil {
		return
	}
	if p.current != nil {
		panic("profiler frame already started")
	}
	if len(p.mapped) >= maxFramesInFlight {
		return
	}
	f := p.getFrame()
	f.seq = seq
	f.cpuStart = time.Now()
	p.current = f
}

// Render returns the timestamp writes for a render pass in the current frame.
func (p *Profiler) Render(label string) *wgpu.RenderPassTimestampWrites {
	if p == nil || p.current == nil || p.current.next+2 > maxFrameTimestamps {
		return nil
	}
	f := p.current
	start := f.next
	f.next += 2
	f.labels = append(f.labels, label)
	return &wgpu.RenderPassTimestampWrites{
		QuerySet:                  f.set,
		BeginningOfPassWriteIndex: start,
		EndOfPassWriteIndex:       start + 1,
	}
}

// Resolve records the copy of the current frame's timestamps into its map
// buffer. It must be called before the frame's commands are finished.
func (p *Profiler) Resolve(enc *wgpu.CommandEncoder) {
	if p == nil || p.current == nil || p.current.next == 0 {
		return
	}
	f := p.current
	enc.ResolveQuerySet(f.set, 0, f.next, f.resolveBuf, 0)
	enc.CopyBufferToBuffer(f.resolveBuf, 0, f.mapBuf, 0, uint64(f.next)*8)
}

// End ends the current frame and, if any pass was timed, starts mapping its
// timestamps. It must be called after the frame has been submitted.
func (p *Profiler) End() {
	if p == nil || p.current == nil {
		return
	}
	f := p.current
	p.current = nil
	f.cpuEnd = time.Now()
	if f.next == 0 {
		p.free = append(p.free, f)
		return
	}
	f.ch = f.mapBuf.Map(p.dev, wgpu.MapModeRead, 0, int(f.next)*8)
	p.mapped = append(p.mapped, f)
}

// Collect returns the timings of all frames whose timestamps are available,
// in submission order, and logs them at debug level.
func (p *Profiler) Collect(log *slog.Logger) []FrameTiming {
	if p == nil {
		return nil
	}
	var out []FrameTiming
	n := 0
frames:
	for _, f := range p.mapped {
		select {
		case err := <-f.ch:
			n++
			if err != nil {
				log.Warn("couldn't map profiler results", "frame", f.seq, "err", err)
				p.free = append(p.free, f)
				continue
			}
			out = append(out, p.read(f))
			p.free = append(p.free, f)
		default:
			// Stop at the first pending frame so that results are returned
			// in order.
			break frames
		}
	}
	copy(p.mapped, p.mapped[n:])
	clear(p.mapped[len(p.mapped)-n:])
	p.mapped = p.mapped[:len(p.mapped)-n]
	for _, timing := range out {
		for _, pass := range timing.Passes {
			log.Debug("frame timing",
				"frame", timing.Seq,
				"pass", pass.Label,
				"gpu_ticks", pass.Ticks(),
				"cpu", timing.CPU)
		}
	}
	return out
}

func (p *Profiler) read(f *profiledFrame) FrameTiming {
	values := safeish.SliceCast[[]uint64](f.mapBuf.ReadOnlyMappedRange(0, int(f.next)*8))
	timing := FrameTiming{
		Seq:    f.seq,
		CPU:    f.cpuEnd.Sub(f.cpuStart),
		Passes: make([]PassTiming, len(f.labels)),
	}
	for i, label := range f.labels {
		timing.Passes[i] = PassTiming{
			Label: label,
			Start: values[2*i],
			End:   values[2*i+1],
		}
	}
	f.mapBuf.Unmap()
	return timing
}

func (p *Profiler) Release() {
	if p == nil {
		return
	}
	for _, f := range p.mapped {
		f.release()
	}
	for _, f := range p.free {
		f.release()
	}
	p.mapped = nil
	p.free = nil
}
