package mesh

import (
	gomath "math"

	"github.com/Faultbox/icebead/pkg/math"
)

// MaxIcosphereDetail caps subdivision; detail 6 is already 40962 vertices.
const MaxIcosphereDetail = 6

// IcosphereAttributes is the vertex layout of Icosphere.
var IcosphereAttributes = []Attribute{
	{Name: "position", Size: 3},
	{Name: "normal", Size: 3},
	{Name: "uv", Size: 2},
	{Name: "tangent", Size: 3},
}

// Icosphere builds a unit sphere by subdividing an icosahedron detail times.
// Detail is clamped to [0, MaxIcosphereDetail].
func Icosphere(detail int) *Data {
	if detail < 0 {
		detail = 0
	}
	if detail > MaxIcosphereDetail {
		detail = MaxIcosphereDetail
	}

	t := float32((1 + gomath.Sqrt(5)) / 2)
	points := []math.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range points {
		points[i] = points[i].Normalize()
	}
	faces := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for i := 0; i < detail; i++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{a, b}
			if a > b {
				key = [2]uint32{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			p := points[a].Add(points[b]).Scale(0.5).Normalize()
			idx := uint32(len(points))
			points = append(points, p)
			midpoints[key] = idx
			return idx
		}

		next := make([][3]uint32, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]uint32{f[0], ab, ca},
				[3]uint32{f[1], bc, ab},
				[3]uint32{f[2], ca, bc},
				[3]uint32{ab, bc, ca},
			)
		}
		faces = next
	}

	data := &Data{
		Name:       "icosphere",
		Attributes: IcosphereAttributes,
		Vertices:   make([]float32, 0, len(points)*11),
		Indices:    make([]uint32, 0, len(faces)*3),
		Primitive:  Triangles,
	}
	for _, p := range points {
		u := 0.5 + float32(gomath.Atan2(float64(p.Z), float64(p.X))/(2*gomath.Pi))
		v := 0.5 - float32(gomath.Asin(float64(math.Clamp(p.Y, -1, 1)))/gomath.Pi)
		tan := SphereTangent(p)
		data.Vertices = append(data.Vertices,
			p.X, p.Y, p.Z,
			p.X, p.Y, p.Z,
			u, v,
			tan.X, tan.Y, tan.Z,
		)
	}
	for _, f := range faces {
		data.Indices = append(data.Indices, f[0], f[1], f[2])
	}
	return data
}

// SphereTangent returns the unit tangent at normal n, pointing
// along increasing longitude and falling back to +X at the poles.
func SphereTangent(n math.Vec3) math.Vec3 {
	t := math.Vec3{Y: 1}.Cross(n)
	if t.Length() < 1e-6 {
		return math.Vec3{X: 1}
	}
	return t.Normalize()
}
