// Package export converts decoded models into glTF scenes.
package export

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/utils/gltfutils"
	"github.com/mogaika/xnbtool/xnb/content"
)

var ErrNotAModel = errors.New("content is not a model")

// Scene is an exported glTF document together with the layout of its single
// buffer.
type Scene struct {
	Doc      *gltf.Document
	Regions  []Region
	Warnings []string
}

func (s *Scene) WriteGLB(w io.Writer) error {
	return gltfutils.ExportBinary(w, s.Doc)
}

// Export converts the primary content of the graph.
func Export(g *content.Graph) (*Scene, error) {
	switch primary := g.Primary.(type) {
	case *content.Model:
		return ExportModel(g, primary)
	case *content.SkinnedModel:
		return ExportSkinnedModel(g, primary)
	default:
		return nil, errors.Wrapf(ErrNotAModel, "primary content is %T", g.Primary)
	}
}

type exporter struct {
	graph  *content.Graph
	model  *content.Model
	cacher *gltfutils.GLTFCacher
	doc    *gltf.Document
	packer Packer

	vertexRegions []Region
	indexRegions  []Region
	warnings      []string
}

func newExporter(g *content.Graph, m *content.Model) *exporter {
	cacher := gltfutils.NewCacher()
	return &exporter{
		graph:  g,
		model:  m,
		cacher: cacher,
		doc:    cacher.Doc,
	}
}

func (e *exporter) warnf(format string, args ...interface{}) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *exporter) addNode(node *gltf.Node) uint32 {
	e.doc.Nodes = append(e.doc.Nodes, node)
	return uint32(len(e.doc.Nodes) - 1)
}

func (e *exporter) addChild(parent, child uint32) {
	e.doc.Nodes[parent].Children = append(e.doc.Nodes[parent].Children, child)
}

func (e *exporter) addBufferView(offset, length, stride int, target gltf.Target) uint32 {
	e.doc.BufferViews = append(e.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(offset),
		ByteLength: uint32(length),
		ByteStride: uint32(stride),
		Target:     target,
	})
	return uint32(len(e.doc.BufferViews) - 1)
}

func (e *exporter) addAccessor(a *gltf.Accessor) uint32 {
	e.doc.Accessors = append(e.doc.Accessors, a)
	return uint32(len(e.doc.Accessors) - 1)
}

// regionAccessor exposes a whole tightly packed region as one accessor.
func (e *exporter) regionAccessor(r Region, componentType gltf.ComponentType, accessorType gltf.AccessorType) uint32 {
	view := e.addBufferView(r.Offset, r.Length, 0, 0)
	return e.addAccessor(&gltf.Accessor{
		BufferView:    gltf.Index(view),
		ComponentType: componentType,
		Type:          accessorType,
		Count:         uint32(r.Count),
	})
}

// packGeometry writes every mesh's vertices, then every mesh's indices with
// reversed winding.
func (e *exporter) packGeometry() error {
	e.vertexRegions = make([]Region, len(e.model.Meshes))
	for i, mesh := range e.model.Meshes {
		count := 0
		if len(mesh.Parts) > 0 {
			decl, err := e.model.VertexDeclaration(mesh.Parts[0])
			if err != nil {
				return errors.Wrapf(err, "mesh %q", mesh.Name)
			}
			if stride := decl.Stride(); stride > 0 {
				count = len(mesh.VertexBuffer.Data) / stride
			}
		}
		e.vertexRegions[i] = e.packer.Append(RegionVertices, mesh.VertexBuffer.Data, count)
	}

	e.indexRegions = make([]Region, len(e.model.Meshes))
	for i, mesh := range e.model.Meshes {
		ib := mesh.IndexBuffer
		if len(ib.Data)%(3*ib.IndexSize()) != 0 {
			e.warnf("mesh %q index buffer of %d bytes is not a whole number of triangles", mesh.Name, len(ib.Data))
		}
		indices := ReverseWinding(ib.Data, ib.Is16Bit)
		e.indexRegions[i] = e.packer.Append(RegionIndices, indices, len(indices)/ib.IndexSize())
	}
	return nil
}

func (e *exporter) finish() *Scene {
	data := e.packer.Bytes()
	e.doc.Buffers = []*gltf.Buffer{{
		ByteLength: uint32(len(data)),
		Data:       data,
	}}
	return &Scene{
		Doc:      e.doc,
		Regions:  e.packer.Regions(),
		Warnings: e.warnings,
	}
}
