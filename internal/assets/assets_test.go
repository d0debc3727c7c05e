package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/icebead/internal/engine/mesh"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func TestManagerSearchOrder(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "a.txt", []byte("low"))
	writeFile(t, high, "a.txt", []byte("high"))
	writeFile(t, low, "sub/b.txt", []byte("only low"))

	m := NewManager(low, high)
	assert.Equal(t, []string{filepath.Clean(high), filepath.Clean(low)}, m.SearchPaths())

	data, err := m.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "high", string(data))

	data, err = m.Load("sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "only low", string(data))
}

func TestManagerNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Resolve(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("v1"))
	m := NewManager(dir)

	_, err := m.Load("a.txt")
	require.NoError(t, err)
	writeFile(t, dir, "a.txt", []byte("v2"))

	data, err := m.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data), "second read must come from the cache")

	hits, misses := m.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Close()
	data, err = m.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestLoaderProceduralMesh(t *testing.T) {
	l := NewLoader(NewManager())
	ctx := context.Background()

	d, err := l.LoadMesh(ctx, "procedural://icosphere?detail=2")
	require.NoError(t, err)
	assert.Equal(t, mesh.Icosphere(2).VertexCount(), d.VertexCount())

	d, err = l.LoadMesh(ctx, "procedural://icosphere")
	require.NoError(t, err)
	assert.Equal(t, mesh.Icosphere(DefaultIcosphereDetail).VertexCount(), d.VertexCount())

	_, err = l.LoadMesh(ctx, "procedural://icosphere?detail=high")
	assert.Error(t, err)
	_, err = l.LoadMesh(ctx, "procedural://torus")
	assert.Error(t, err)
	_, err = l.LoadMesh(ctx, "model.obj")
	assert.Error(t, err)
}

func TestLoaderProceduralImage(t *testing.T) {
	l := NewLoader(NewManager())

	img, err := l.LoadImage(context.Background(), "procedural://vignette?size=32")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())

	img, err = l.LoadImage(context.Background(), "procedural://vignette")
	require.NoError(t, err)
	assert.Equal(t, DefaultVignetteSize, img.Bounds().Dx())

	_, err = l.LoadImage(context.Background(), "procedural://noise")
	assert.Error(t, err)
}

func TestLoaderImageFile(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	dir := t.TempDir()
	writeFile(t, dir, "textures/overlay.png", buf.Bytes())

	img, err := NewLoader(NewManager(dir)).LoadImage(context.Background(), "textures/overlay.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
}

func TestLoaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(NewManager())
	_, err := l.LoadMesh(ctx, "procedural://icosphere")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = l.LoadImage(ctx, "procedural://vignette")
	assert.ErrorIs(t, err, context.Canceled)
}

// triangleGLB encodes a binary glTF holding two meshes. Only "Ice" carries
// normals.
func triangleGLB(t *testing.T) []byte {
	t.Helper()
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{
		{
			Name: "Other",
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(idx),
				Attributes: map[string]int{gltf.POSITION: pos},
			}},
		},
		{
			Name: "Ice",
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(idx),
				Attributes: map[string]int{gltf.POSITION: pos, gltf.NORMAL: nrm},
			}},
		},
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

func TestDecodeGLB(t *testing.T) {
	data := triangleGLB(t)

	d, err := DecodeGLB(data, "Ice")
	require.NoError(t, err)
	assert.Equal(t, "Ice", d.Name)
	assert.Equal(t, 11, d.Stride())
	assert.Equal(t, 3, d.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, d.Indices)
	// Vertex 1 keeps its file normal rather than the derived one.
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1}, d.Vertices[11:17])

	first, err := DecodeGLB(data, "")
	require.NoError(t, err)
	assert.Equal(t, "Other", first.Name)
	// Derived normal is the normalized position.
	assert.InDeltaSlice(t, []float32{1, 0, 0}, first.Vertices[14:17], 1e-6)

	_, err = DecodeGLB(data, "Missing")
	assert.Error(t, err)
	_, err = DecodeGLB([]byte("not a glb"), "")
	assert.Error(t, err)
}

func TestLoaderGLBFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.glb", triangleGLB(t))

	d, err := NewLoader(NewManager(dir)).LoadMesh(context.Background(), "model.glb#Ice")
	require.NoError(t, err)
	assert.Equal(t, "Ice", d.Name)
}
