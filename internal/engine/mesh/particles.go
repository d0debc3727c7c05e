package mesh

import (
	gomath "math"
	"math/rand"
)

// ParticleAttributes is the vertex layout of ParticleSwarm.
var ParticleAttributes = []Attribute{
	{Name: "origin", Size: 3},
	{Name: "direction", Size: 3},
	{Name: "seed", Size: 1},
}

// ParticleSwarm scatters count points over the unit sphere. Each point
// carries an outward direction with some spread and a random seed in [0, 1)
// the particle shader uses for speed and size.
func ParticleSwarm(count int, seed int64) *Data {
	if count < 1 {
		count = 1
	}
	rng := rand.New(rand.NewSource(seed))

	data := &Data{
		Name:       "particles",
		Attributes: ParticleAttributes,
		Vertices:   make([]float32, 0, count*7),
		Primitive:  Points,
	}
	for i := 0; i < count; i++ {
		// Uniform on the sphere: z uniform in [-1, 1], angle uniform.
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * gomath.Pi
		r := gomath.Sqrt(1 - z*z)
		x, y := r*gomath.Cos(phi), r*gomath.Sin(phi)

		dx := x + (rng.Float64()-0.5)*0.6
		dy := y + (rng.Float64()-0.5)*0.6
		dz := z + (rng.Float64()-0.5)*0.6
		l := gomath.Sqrt(dx*dx + dy*dy + dz*dz)
		if l < 1e-6 {
			dx, dy, dz, l = x, y, z, 1
		}

		data.Vertices = append(data.Vertices,
			float32(x), float32(y), float32(z),
			float32(dx/l), float32(dy/l), float32(dz/l),
			rng.Float32(),
		)
	}
	return data
}

// FullscreenQuad covers clip space with two triangles.
func FullscreenQuad() *Data {
	return &Data{
		Name: "quad",
		Attributes: []Attribute{
			{Name: "position", Size: 2},
			{Name: "uv", Size: 2},
		},
		Vertices: []float32{
			-1, -1, 0, 0,
			1, -1, 1, 0,
			1, 1, 1, 1,
			-1, 1, 0, 1,
		},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		Primitive: Triangles,
	}
}
