package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/xnb/content"
)

// ExportModel converts a rigid model: one node per bone carrying its
// matrix, meshes attached to their parent bone's node.
func ExportModel(g *content.Graph, m *content.Model) (*Scene, error) {
	e := newExporter(g, m)
	if err := e.packGeometry(); err != nil {
		return nil, err
	}
	e.exportMaterials()

	boneNodes, err := e.exportBones()
	if err != nil {
		return nil, err
	}

	for i, mesh := range m.Meshes {
		node, ok, err := e.meshNode(i, mesh.Name, mesh.Parts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if mesh.ParentBone != 0 {
			if int(mesh.ParentBone) > len(boneNodes) {
				return nil, errors.Errorf("mesh %q parent bone %d out of range", mesh.Name, mesh.ParentBone)
			}
			e.addChild(boneNodes[mesh.ParentBone-1], node)
		}
	}
	return e.finish(), nil
}

// exportBones creates the bone nodes in model order and links them as the
// hierarchy says. The returned slice is indexed by local bone ref - 1.
func (e *exporter) exportBones() ([]uint32, error) {
	m := e.model
	if len(m.Hierarchy) != len(m.Bones) {
		return nil, errors.Errorf("model has %d bones and %d hierarchy entries", len(m.Bones), len(m.Hierarchy))
	}

	refs := make([]content.LocalBoneRef, len(m.Bones))
	for i := range refs {
		refs[i] = content.LocalBoneRef(i + 1)
	}
	link := func(ref content.LocalBoneRef) (*content.BoneLink, error) {
		if ref == 0 || int(ref) > len(m.Hierarchy) {
			return nil, errors.Wrapf(ErrHierarchy, "local bone reference %d out of range", ref)
		}
		return &m.Hierarchy[ref-1], nil
	}
	order, err := walkHierarchy(refs,
		func(ref content.LocalBoneRef) (content.LocalBoneRef, error) {
			l, err := link(ref)
			if err != nil {
				return 0, err
			}
			return l.Parent, nil
		},
		func(ref content.LocalBoneRef) ([]content.LocalBoneRef, error) {
			l, err := link(ref)
			if err != nil {
				return nil, err
			}
			return l.Children, nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to walk model bones")
	}
	if len(order) > 0 && m.Root != 0 && m.Root != order[0] {
		e.warnf("model root bone %d differs from hierarchy root %d", m.Root, order[0])
	}

	nodes := make([]uint32, len(m.Bones))
	for i, bone := range m.Bones {
		node := &gltf.Node{Name: bone.Name}
		if bone.Transform != mgl32.Ident4() {
			node.Matrix = bone.Transform
		}
		nodes[i] = e.addNode(node)
	}
	for i, l := range m.Hierarchy {
		for _, child := range l.Children {
			e.addChild(nodes[i], nodes[child-1])
		}
	}
	return nodes, nil
}
