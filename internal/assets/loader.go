package assets

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/internal/engine/texture"
)

// ProceduralScheme prefixes URIs that are generated instead of read.
const ProceduralScheme = "procedural"

// Defaults for procedural parameters left out of a URI.
const (
	DefaultIcosphereDetail = 5
	DefaultVignetteSize    = 512
)

// Loader fetches meshes and images for the render pipeline.
//
// Supported URIs:
//
//	procedural://icosphere?detail=N
//	procedural://vignette?size=N
//	<name>.glb[#MeshName]       (first mesh when no name is given)
//	<name>.png | .bmp | .tga
type Loader struct {
	manager *Manager
}

// NewLoader creates a loader reading files through m.
func NewLoader(m *Manager) *Loader {
	return &Loader{manager: m}
}

// LoadMesh returns the vertex data for uri.
func (l *Loader) LoadMesh(ctx context.Context, uri string) (*mesh.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if gen, q, ok, err := parseProcedural(uri); ok {
		if err != nil {
			return nil, err
		}
		switch gen {
		case "icosphere":
			detail, err := intParam(q, "detail", DefaultIcosphereDetail)
			if err != nil {
				return nil, err
			}
			return mesh.Icosphere(detail), nil
		default:
			return nil, fmt.Errorf("unknown procedural mesh %q", gen)
		}
	}

	name, meshName, _ := strings.Cut(uri, "#")
	if strings.ToLower(path.Ext(name)) != ".glb" {
		return nil, fmt.Errorf("unsupported mesh format: %s", name)
	}
	data, err := l.manager.Load(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DecodeGLB(data, meshName)
}

// LoadImage returns the decoded image for uri.
func (l *Loader) LoadImage(ctx context.Context, uri string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if gen, q, ok, err := parseProcedural(uri); ok {
		if err != nil {
			return nil, err
		}
		switch gen {
		case "vignette":
			size, err := intParam(q, "size", DefaultVignetteSize)
			if err != nil {
				return nil, err
			}
			return texture.Vignette(size), nil
		default:
			return nil, fmt.Errorf("unknown procedural image %q", gen)
		}
	}

	data, err := l.manager.Load(uri)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return texture.Decode(uri, data)
}

// parseProcedural reports whether uri uses the procedural scheme and, if so,
// splits it into generator name and parameters.
func parseProcedural(uri string) (string, url.Values, bool, error) {
	if !strings.HasPrefix(uri, ProceduralScheme+"://") {
		return "", nil, false, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", nil, true, fmt.Errorf("parsing %s: %w", uri, err)
	}
	return u.Host, u.Query(), true, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", key, err)
	}
	return v, nil
}
