package renderer

import (
	"sync/atomic"
)

var resourceID atomic.Uint64

func nextResourceID() ResourceID {
	return ResourceID(resourceID.Add(1))
}

type ResourceID uint64

// Recording is an ordered list of commands for an engine to execute. The
// renderer never talks to a GPU directly; engines interpret recordings, either
// on the GPU or on the CPU.
type Recording struct {
	Commands []Command
}

func (rec *Recording) push(cmd Command) {
	rec.Commands = append(rec.Commands, cmd)
}

// Append adds all commands of other to rec.
func (rec *Recording) Append(other *Recording) {
	rec.Commands = append(rec.Commands, other.Commands...)
}

func (rec *Recording) Len() int { return len(rec.Commands) }

func (rec *Recording) UploadImage(width, height uint32, format ImageFormat, data []byte) ImageProxy {
	imageProxy := NewImageProxy(width, height, format)
	rec.push(&UploadImage{imageProxy, data})
	return imageProxy
}

// UploadUniform writes data into buf. Unlike UploadImage, the buffer proxy is
// supplied by the caller so that a single uniform buffer can be rewritten
// every frame.
func (rec *Recording) UploadUniform(buf BufferProxy, data []byte) {
	rec.push(&UploadUniform{buf, data})
}

func (rec *Recording) FreeImage(image ImageProxy) {
	rec.push(&FreeImage{image})
}

func (rec *Recording) FreeBuffer(buf BufferProxy) {
	rec.push(&FreeBuffer{buf})
}

func (rec *Recording) Draw(cmd Draw) {
	rec.push(&cmd)
}

func NewBufferProxy(size uint64, name string) BufferProxy {
	id := nextResourceID()
	return BufferProxy{size, id, name}
}

func NewImageProxy(width, height uint32, format ImageFormat) ImageProxy {
	id := nextResourceID()
	return ImageProxy{
		Width:  width,
		Height: height,
		Format: format,
		ID:     id,
	}
}

type BufferProxy struct {
	Size uint64
	ID   ResourceID
	Name string
}

type ImageFormat int

const (
	Rgba8 ImageFormat = iota
	Rgba8Srgb
	Bgra8
)

type ImageProxy struct {
	Width  uint32
	Height uint32
	Format ImageFormat
	ID     ResourceID
}

type Command interface {
	isCommand()
}

func (*UploadUniform) isCommand() {}
func (*UploadImage) isCommand()   {}
func (*FreeImage) isCommand()     {}
func (*FreeBuffer) isCommand()    {}
func (*Draw) isCommand()          {}

type UploadUniform struct {
	Buffer BufferProxy
	Data   []byte
}

type UploadImage struct {
	Image ImageProxy
	Data  []byte
}

type FreeImage struct {
	Image ImageProxy
}

type FreeBuffer struct {
	Buffer BufferProxy
}

// Draw is a single render pass over the full-screen quad. The pass clears the
// target to Clear (linear RGBA), binds Image at group 0 and Uniform at group 1,
// and issues a non-indexed draw.
type Draw struct {
	Image         ImageProxy
	Uniform       BufferProxy
	Clear         [4]float64
	VertexCount   uint32
	InstanceCount uint32
}
