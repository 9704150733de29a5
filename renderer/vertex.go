package renderer

import (
	"structs"
	"unsafe"

	"honnef.co/go/safeish"
)

type Vertex struct {
	_         structs.HostLayout
	Position  [2]float32
	TexCoords [2]float32
}

const VertexStride = uint64(unsafe.Sizeof(Vertex{}))

// QuadVertices are two triangles covering clip space. Texture coordinates
// have their origin in the top left corner.
var QuadVertices = [6]Vertex{
	{Position: [2]float32{-1, 1}, TexCoords: [2]float32{0, 0}},
	{Position: [2]float32{-1, -1}, TexCoords: [2]float32{0, 1}},
	{Position: [2]float32{1, 1}, TexCoords: [2]float32{1, 0}},

	{Position: [2]float32{1, 1}, TexCoords: [2]float32{1, 0}},
	{Position: [2]float32{-1, -1}, TexCoords: [2]float32{0, 1}},
	{Position: [2]float32{1, -1}, TexCoords: [2]float32{1, 1}},
}

// QuadBytes returns the vertex buffer contents for QuadVertices.
func QuadBytes() []byte {
	return safeish.SliceCast[[]byte](QuadVertices[:])
}
