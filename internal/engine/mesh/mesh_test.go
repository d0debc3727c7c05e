package mesh

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/icebead/pkg/math"
)

func vec3At(d *Data, vertex, offset int) math.Vec3 {
	i := vertex*d.Stride() + offset
	return math.Vec3{X: d.Vertices[i], Y: d.Vertices[i+1], Z: d.Vertices[i+2]}
}

func TestIcosphereCounts(t *testing.T) {
	tests := []struct {
		detail    int
		vertices  int
		triangles int
	}{
		{0, 12, 20},
		{1, 42, 80},
		{2, 162, 320},
		{-3, 12, 20},
	}
	for _, tt := range tests {
		d := Icosphere(tt.detail)
		require.NoError(t, d.Validate())
		assert.Equal(t, tt.vertices, d.VertexCount(), "detail %d", tt.detail)
		assert.Equal(t, tt.triangles*3, d.ElementCount(), "detail %d", tt.detail)
		assert.Equal(t, 11, d.Stride())
	}
}

func TestIcosphereGeometry(t *testing.T) {
	d := Icosphere(3)
	for v := 0; v < d.VertexCount(); v++ {
		pos := vec3At(d, v, 0)
		normal := vec3At(d, v, 3)
		tangent := vec3At(d, v, 8)

		require.InDelta(t, 1, pos.Length(), 1e-5, "vertex %d", v)
		require.InDelta(t, 0, pos.Sub(normal).Length(), 1e-6, "vertex %d", v)
		require.InDelta(t, 1, tangent.Length(), 1e-5, "vertex %d", v)
		require.InDelta(t, 0, tangent.Dot(normal), 1e-5, "vertex %d", v)

		uv := d.Vertices[v*d.Stride()+6 : v*d.Stride()+8]
		require.True(t, uv[0] >= 0 && uv[0] <= 1 && uv[1] >= 0 && uv[1] <= 1, "vertex %d uv %v", v, uv)
	}
}

func TestIcosphereWindsOutward(t *testing.T) {
	d := Icosphere(1)
	for i := 0; i < len(d.Indices); i += 3 {
		a := vec3At(d, int(d.Indices[i]), 0)
		b := vec3At(d, int(d.Indices[i+1]), 0)
		c := vec3At(d, int(d.Indices[i+2]), 0)
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c)
		assert.Greater(t, n.Dot(centroid), float32(0), "triangle %d faces inward", i/3)
	}
}

func TestParticleSwarm(t *testing.T) {
	d := ParticleSwarm(4000, 1)
	require.NoError(t, d.Validate())
	assert.Equal(t, Points, d.Primitive)
	assert.Equal(t, 4000, d.VertexCount())
	assert.Empty(t, d.Indices)

	for v := 0; v < d.VertexCount(); v++ {
		origin := vec3At(d, v, 0)
		dir := vec3At(d, v, 3)
		seed := d.Vertices[v*d.Stride()+6]
		require.InDelta(t, 1, origin.Length(), 1e-5)
		require.InDelta(t, 1, dir.Length(), 1e-5)
		require.True(t, seed >= 0 && seed < 1)
	}

	again := ParticleSwarm(4000, 1)
	assert.Equal(t, d.Vertices, again.Vertices, "same seed, same swarm")
	assert.Equal(t, 1, ParticleSwarm(0, 1).VertexCount())
}

func TestFullscreenQuad(t *testing.T) {
	d := FullscreenQuad()
	require.NoError(t, d.Validate())
	b := d.Bounds()
	assert.Equal(t, [3]float32{-1, -1, 0}, b.Min)
	assert.Equal(t, [3]float32{1, 1, 0}, b.Max)
	assert.Equal(t, 6, d.ElementCount())
}

func TestValidateRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		data Data
	}{
		{"no attributes", Data{Vertices: []float32{1}}},
		{"bad size", Data{Attributes: []Attribute{{Name: "p", Size: 5}}, Vertices: make([]float32, 5)}},
		{"ragged", Data{Attributes: []Attribute{{Name: "p", Size: 3}}, Vertices: make([]float32, 4)}},
		{"empty", Data{Attributes: []Attribute{{Name: "p", Size: 3}}}},
		{"index out of range", Data{Attributes: []Attribute{{Name: "p", Size: 3}}, Vertices: make([]float32, 3), Indices: []uint32{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.data.Validate())
		})
	}
}

func TestIcosphereBounds(t *testing.T) {
	b := Icosphere(4).Bounds()
	for c := 0; c < 3; c++ {
		assert.InDelta(t, -1, b.Min[c], 1e-2)
		assert.InDelta(t, 1, b.Max[c], 1e-2)
	}
	assert.False(t, gomath.IsNaN(float64(b.Min[0])))
}
