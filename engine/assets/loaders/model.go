package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/greenmatthew/velecs/engine/core"
	"github.com/greenmatthew/velecs/engine/math"
)

// LoadGLTFMesh opens a .glb or .gltf file and flattens every triangle
// primitive into one vertex/index pair. Vertex colour comes from the
// COLOR_0 attribute when present, otherwise white.
func LoadGLTFMesh(path string) ([]math.Vertex, []uint32, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	var vertices []math.Vertex
	var indices []uint32

	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, nil, fmt.Errorf("gltf %q mesh %d primitive %d mode %d: %w",
					path, mi, pi, prim.Mode, core.ErrUnsupportedMeshKind)
			}

			posIdx, ok := prim.Attributes["POSITION"]
			if !ok {
				return nil, nil, fmt.Errorf("gltf %q mesh %d primitive %d has no POSITION attribute", path, mi, pi)
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("gltf %q positions: %w", path, err)
			}

			var colours [][4]uint8
			if idx, ok := prim.Attributes["COLOR_0"]; ok {
				colours, _ = modeler.ReadColor(doc, doc.Accessors[idx], nil)
			}

			base := uint32(len(vertices))
			for i, p := range positions {
				v := math.Vertex{
					Position: math.NewVec3(p[0], p[1], p[2]),
					Colour:   math.NewVec3One(),
				}
				if i < len(colours) {
					v.Colour = math.NewVec3(
						float32(colours[i][0])/255.0,
						float32(colours[i][1])/255.0,
						float32(colours[i][2])/255.0)
				}
				vertices = append(vertices, v)
			}

			if prim.Indices == nil {
				for i := uint32(0); i < uint32(len(positions)); i++ {
					indices = append(indices, base+i)
				}
				continue
			}
			primIndices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("gltf %q indices: %w", path, err)
			}
			for _, idx := range primIndices {
				indices = append(indices, base+idx)
			}
		}
	}

	if len(vertices) == 0 {
		return nil, nil, fmt.Errorf("gltf %q contains no triangle geometry", path)
	}
	return vertices, indices, nil
}
