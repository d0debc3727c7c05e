// Package mesh builds the CPU-side vertex data uploaded by the render device:
// the procedural icosphere, the burst particle swarm and the fullscreen quad.
package mesh

import (
	"errors"
	"fmt"
)

// Primitive is the topology of a mesh.
type Primitive int

const (
	Triangles Primitive = iota
	Points
)

// Attribute is one float vector in an interleaved vertex. Attributes bind to
// shader locations in declaration order.
type Attribute struct {
	Name string
	Size int // float components, 1 to 4
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Data holds interleaved float32 vertices ready for GPU upload.
type Data struct {
	Name       string
	Attributes []Attribute
	Vertices   []float32
	Indices    []uint32 // optional
	Primitive  Primitive
}

// Stride returns the number of floats per vertex.
func (d *Data) Stride() int {
	n := 0
	for _, a := range d.Attributes {
		n += a.Size
	}
	return n
}

// VertexCount returns the number of whole vertices.
func (d *Data) VertexCount() int {
	stride := d.Stride()
	if stride == 0 {
		return 0
	}
	return len(d.Vertices) / stride
}

// ElementCount returns how many elements a draw call submits.
func (d *Data) ElementCount() int {
	if len(d.Indices) > 0 {
		return len(d.Indices)
	}
	return d.VertexCount()
}

// Validate checks the layout against the vertex and index data.
func (d *Data) Validate() error {
	if len(d.Attributes) == 0 {
		return errors.New("mesh has no attributes")
	}
	for _, a := range d.Attributes {
		if a.Size < 1 || a.Size > 4 {
			return fmt.Errorf("attribute %q: size %d out of range", a.Name, a.Size)
		}
	}
	stride := d.Stride()
	if len(d.Vertices) == 0 || len(d.Vertices)%stride != 0 {
		return fmt.Errorf("vertex data length %d is not a multiple of stride %d", len(d.Vertices), stride)
	}
	count := uint32(d.VertexCount())
	for i, idx := range d.Indices {
		if idx >= count {
			return fmt.Errorf("index %d: %d out of range (%d vertices)", i, idx, count)
		}
	}
	return nil
}

// Bounds computes the box around the first attribute, taken as position.
func (d *Data) Bounds() Bounds {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	stride := d.Stride()
	if stride == 0 || len(d.Attributes) == 0 {
		return Bounds{}
	}
	size := d.Attributes[0].Size
	if size > 3 {
		size = 3
	}
	for i := 0; i+stride <= len(d.Vertices); i += stride {
		for c := 0; c < size; c++ {
			v := d.Vertices[i+c]
			if v < b.Min[c] {
				b.Min[c] = v
			}
			if v > b.Max[c] {
				b.Max[c] = v
			}
		}
	}
	for c := size; c < 3; c++ {
		b.Min[c], b.Max[c] = 0, 0
	}
	return b
}
