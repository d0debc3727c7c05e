package assets

import (
	"bytes"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/pkg/math"
)

// DecodeGLB extracts the first triangle primitive of the named mesh from a
// binary glTF file, laid out as mesh.IcosphereAttributes. An empty name
// selects the first mesh. Missing normals, UVs and tangents are derived from
// the vertex position.
func DecodeGLB(data []byte, meshName string) (*mesh.Data, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glb: %w", err)
	}

	var src *gltf.Mesh
	for _, m := range doc.Meshes {
		if meshName == "" || m.Name == meshName {
			src = m
			break
		}
	}
	if src == nil {
		if meshName == "" {
			return nil, fmt.Errorf("glb has no meshes")
		}
		return nil, fmt.Errorf("glb has no mesh named %q", meshName)
	}

	var prim *gltf.Primitive
	for _, p := range src.Primitives {
		if p.Mode == gltf.PrimitiveTriangles {
			prim = p
			break
		}
	}
	if prim == nil {
		return nil, fmt.Errorf("mesh %q has no triangle primitive", src.Name)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("mesh %q: no POSITION attribute", src.Name)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: reading positions: %w", src.Name, err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("mesh %q: reading normals: %w", src.Name, err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("mesh %q: reading uvs: %w", src.Name, err)
		}
	}
	var tangents [][4]float32
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("mesh %q: reading tangents: %w", src.Name, err)
		}
	}

	out := &mesh.Data{
		Name:       src.Name,
		Attributes: mesh.IcosphereAttributes,
		Vertices:   make([]float32, 0, len(positions)*11),
		Primitive:  mesh.Triangles,
	}
	for i, p := range positions {
		pos := math.Vec3{X: p[0], Y: p[1], Z: p[2]}
		n := pos.Normalize()
		if i < len(normals) {
			n = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		uv := sphericalUV(n)
		if i < len(uvs) {
			uv = uvs[i]
		}
		t := mesh.SphereTangent(n)
		if i < len(tangents) {
			t = math.Vec3{X: tangents[i][0], Y: tangents[i][1], Z: tangents[i][2]}
		}
		out.Vertices = append(out.Vertices,
			pos.X, pos.Y, pos.Z,
			n.X, n.Y, n.Z,
			uv[0], uv[1],
			t.X, t.Y, t.Z,
		)
	}

	if prim.Indices != nil {
		out.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: reading indices: %w", src.Name, err)
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// sphericalUV maps a unit direction to equirectangular coordinates.
func sphericalUV(n math.Vec3) [2]float32 {
	u := 0.5 + float32(gomath.Atan2(float64(n.Z), float64(n.X))/(2*gomath.Pi))
	v := 0.5 - float32(gomath.Asin(float64(math.Clamp(n.Y, -1, 1)))/gomath.Pi)
	return [2]float32{u, v}
}
