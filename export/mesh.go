package export

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/xnb/content"
)

type accessorFormat struct {
	componentType gltf.ComponentType
	accessorType  gltf.AccessorType
	normalized    bool
}

var accessorFormats = map[content.VertexElementFormat]accessorFormat{
	content.FormatSingle:           {gltf.ComponentFloat, gltf.AccessorScalar, false},
	content.FormatVector2:          {gltf.ComponentFloat, gltf.AccessorVec2, false},
	content.FormatVector3:          {gltf.ComponentFloat, gltf.AccessorVec3, false},
	content.FormatVector4:          {gltf.ComponentFloat, gltf.AccessorVec4, false},
	content.FormatColor:            {gltf.ComponentUbyte, gltf.AccessorVec4, true},
	content.FormatByte4:            {gltf.ComponentUbyte, gltf.AccessorVec4, false},
	content.FormatShort2:           {gltf.ComponentShort, gltf.AccessorVec2, false},
	content.FormatShort4:           {gltf.ComponentShort, gltf.AccessorVec4, false},
	content.FormatRgba32:           {gltf.ComponentUbyte, gltf.AccessorVec4, true},
	content.FormatNormalizedShort2: {gltf.ComponentShort, gltf.AccessorVec2, true},
	content.FormatNormalizedShort4: {gltf.ComponentShort, gltf.AccessorVec4, true},
	content.FormatRg32:             {gltf.ComponentUshort, gltf.AccessorVec2, true},
	content.FormatRgba64:           {gltf.ComponentUshort, gltf.AccessorVec4, true},
}

// attributeFor maps a vertex element onto a glTF attribute name and the
// accessor layout it is exposed with. ok is false for elements glTF has no
// place for.
func attributeFor(el content.VertexElement) (name string, f accessorFormat, ok bool) {
	f, known := accessorFormats[el.Format]
	if !known {
		return "", f, false
	}

	switch el.Usage {
	case content.UsagePosition, content.UsageNormal:
		// four component positions are read as their xyz part
		if f.componentType != gltf.ComponentFloat || (f.accessorType != gltf.AccessorVec3 && f.accessorType != gltf.AccessorVec4) {
			return "", f, false
		}
		f.accessorType = gltf.AccessorVec3
		if el.Usage == content.UsagePosition {
			return "POSITION", f, el.UsageIndex == 0
		}
		return "NORMAL", f, el.UsageIndex == 0
	case content.UsageTangent:
		if f.componentType != gltf.ComponentFloat || f.accessorType != gltf.AccessorVec4 {
			return "", f, false
		}
		return "TANGENT", f, el.UsageIndex == 0
	case content.UsageTextureCoordinate:
		if f.accessorType != gltf.AccessorVec2 || f.componentType == gltf.ComponentShort {
			return "", f, false
		}
		return fmt.Sprintf("TEXCOORD_%d", el.UsageIndex), f, true
	case content.UsageColor:
		if f.accessorType != gltf.AccessorVec4 || (f.componentType != gltf.ComponentFloat && !f.normalized) ||
			f.componentType == gltf.ComponentShort {
			return "", f, false
		}
		return fmt.Sprintf("COLOR_%d", el.UsageIndex), f, true
	case content.UsageBlendIndices:
		if f.accessorType != gltf.AccessorVec4 || f.componentType == gltf.ComponentFloat {
			return "", f, false
		}
		// joint indices are unsigned integers
		if f.componentType == gltf.ComponentShort {
			f.componentType = gltf.ComponentUshort
		}
		f.normalized = false
		return fmt.Sprintf("JOINTS_%d", el.UsageIndex), f, true
	case content.UsageBlendWeight:
		if f.accessorType != gltf.AccessorVec4 || (f.componentType != gltf.ComponentFloat && !f.normalized) ||
			f.componentType == gltf.ComponentShort {
			return "", f, false
		}
		return fmt.Sprintf("WEIGHTS_%d", el.UsageIndex), f, true
	default:
		return "", f, false
	}
}

// partPrimitive lays one mesh part out as a glTF primitive: a strided
// vertex view starting at the part's base vertex, one accessor per mappable
// element and an index view over the part's triangles.
func (e *exporter) partPrimitive(meshIndex int, part *content.MeshPart) (*gltf.Primitive, error) {
	mesh := e.model.Meshes[meshIndex]
	decl, err := e.model.VertexDeclaration(part)
	if err != nil {
		return nil, err
	}
	stride := decl.Stride()
	if stride == 0 {
		return nil, errors.New("vertex declaration has no elements")
	}
	if part.VertexCount == 0 || part.PrimitiveCount == 0 {
		return nil, errors.New("part has no geometry")
	}

	vertexStart := int(part.StreamOffset) + int(part.BaseVertex)*stride
	vertexLength := int(part.VertexCount) * stride
	if vertexStart+vertexLength > len(mesh.VertexBuffer.Data) {
		return nil, errors.Errorf("vertices %d..%d past vertex buffer of %d bytes",
			vertexStart, vertexStart+vertexLength, len(mesh.VertexBuffer.Data))
	}
	vertexView := e.addBufferView(e.vertexRegions[meshIndex].Offset+vertexStart, vertexLength, stride, gltf.TargetArrayBuffer)

	prim := &gltf.Primitive{
		Attributes: make(map[string]uint32),
		Mode:       gltf.PrimitiveTriangles,
	}
	for _, el := range decl.Elements {
		name, f, ok := attributeFor(el)
		if !ok {
			e.warnf("mesh %q: %v %v element %d skipped", mesh.Name, el.Format, el.Usage, el.UsageIndex)
			continue
		}
		if _, dup := prim.Attributes[name]; dup {
			e.warnf("mesh %q: duplicate %s attribute skipped", mesh.Name, name)
			continue
		}

		accessor := &gltf.Accessor{
			BufferView:    gltf.Index(vertexView),
			ByteOffset:    uint32(el.Offset),
			ComponentType: f.componentType,
			Normalized:    f.normalized,
			Type:          f.accessorType,
			Count:         part.VertexCount,
		}
		if name == "POSITION" {
			min, max, err := PositionBounds(mesh.VertexBuffer.Data[vertexStart:vertexStart+vertexLength],
				stride, int(el.Offset), int(part.VertexCount))
			if err != nil {
				return nil, errors.Wrap(err, "Failed to compute position bounds")
			}
			accessor.Min = min[:]
			accessor.Max = max[:]
		}
		prim.Attributes[name] = e.addAccessor(accessor)
	}
	if _, ok := prim.Attributes["POSITION"]; !ok {
		return nil, errors.New("vertex declaration has no usable position element")
	}

	ib := mesh.IndexBuffer
	indexStart := int(part.StartIndex) * ib.IndexSize()
	indexCount := int(part.PrimitiveCount) * 3
	if indexStart+indexCount*ib.IndexSize() > len(ib.Data) {
		return nil, errors.Errorf("indices %d..%d past index buffer of %d indices",
			part.StartIndex, int(part.StartIndex)+indexCount, len(ib.Data)/ib.IndexSize())
	}
	indexView := e.addBufferView(e.indexRegions[meshIndex].Offset+indexStart, indexCount*ib.IndexSize(), 0, gltf.TargetElementArrayBuffer)
	indexType := gltf.ComponentUint
	if ib.Is16Bit {
		indexType = gltf.ComponentUshort
	}
	prim.Indices = gltf.Index(e.addAccessor(&gltf.Accessor{
		BufferView:    gltf.Index(indexView),
		ComponentType: indexType,
		Type:          gltf.AccessorScalar,
		Count:         uint32(indexCount),
	}))

	material, err := e.material(part.Material)
	if err != nil {
		return nil, err
	}
	prim.Material = material
	return prim, nil
}

// meshNode creates a node holding the given parts of a mesh, nil parts
// lists yield no node.
func (e *exporter) meshNode(meshIndex int, name string, parts []*content.MeshPart) (uint32, bool, error) {
	if len(parts) == 0 {
		return 0, false, nil
	}
	gm := &gltf.Mesh{Name: name}
	for i, part := range parts {
		prim, err := e.partPrimitive(meshIndex, part)
		if err != nil {
			return 0, false, errors.Wrapf(err, "Failed to export mesh %q part %d", e.model.Meshes[meshIndex].Name, i)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}
	e.doc.Meshes = append(e.doc.Meshes, gm)
	node := e.addNode(&gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(e.doc.Meshes) - 1)),
	})
	return node, true, nil
}
