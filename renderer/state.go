package renderer

import (
	"honnef.co/go/prism/jmath"
)

// State is everything the renderer knows about a session: the uniform block,
// the image texture, the viewport and the clear colour. State is not safe for
// concurrent use; it is owned by whoever drives the frames.
type State struct {
	Uniform ShaderUniform
	Texture *ImageTexture
	// Clear is the linear colour the target is cleared to before drawing.
	Clear [4]float64

	uniformBuf BufferProxy
	width      uint32
	height     uint32
	pending    Recording
}

// NewState returns the state for a viewport of the given size. The returned
// state has a placeholder texture, which the first frame uploads.
func NewState(width, height uint32) *State {
	s := &State{
		Uniform:    NewShaderUniform(jmath.Aspect(width, height)),
		Clear:      DefaultBackground,
		uniformBuf: NewBufferProxy(UniformSize, "input_uniform"),
		width:      width,
		height:     height,
	}
	s.Texture = newImageTexture(&s.pending)
	return s
}

func (s *State) Size() (width, height uint32) {
	return s.width, s.height
}

// UniformBuffer returns the proxy of the persistent uniform buffer.
func (s *State) UniformBuffer() BufferProxy { return s.uniformBuf }

// Resize updates the viewport. Zero-sized viewports are ignored, matching
// surfaces that refuse to be configured at zero size.
func (s *State) Resize(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	s.width = width
	s.height = height
	s.Uniform.ViewportAspect = jmath.Aspect(width, height)
	return true
}

// Frame records the work for the next frame: replacing the texture if a new
// image has been submitted, uploading the uniform block and drawing the quad.
// The uniform is uploaded every frame, whether it changed or not.
func (s *State) Frame() *Recording {
	rec := &Recording{}
	if s.pending.Len() > 0 {
		rec.Append(&s.pending)
		s.pending = Recording{}
	}
	s.Texture.Refresh(rec, &s.Uniform)
	rec.UploadUniform(s.uniformBuf, s.Uniform.Bytes())
	rec.Draw(s.draw(s.Texture.Proxy()))
	return rec
}

// Snapshot records a self-contained frame of the current state, suitable for
// an engine that has never seen any of this state's resources. It uses the
// most recently submitted image even if no frame has refreshed the texture
// yet. Snapshot doesn't modify s.
func (s *State) Snapshot() *Recording {
	rec := &Recording{}
	img, aspect := s.Texture.record(rec)
	u := s.Uniform
	u.ImageAspect = aspect
	buf := NewBufferProxy(UniformSize, "input_uniform")
	rec.UploadUniform(buf, u.Bytes())
	draw := s.draw(img)
	draw.Uniform = buf
	rec.Draw(draw)
	rec.FreeImage(img)
	rec.FreeBuffer(buf)
	return rec
}

func (s *State) draw(img ImageProxy) Draw {
	return Draw{
		Image:         img,
		Uniform:       s.uniformBuf,
		Clear:         s.Clear,
		VertexCount:   uint32(len(QuadVertices)),
		InstanceCount: 1,
	}
}
