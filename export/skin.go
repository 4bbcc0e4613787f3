package export

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/utils"
	"github.com/mogaika/xnbtool/xnb/content"
)

// JointOrderError reports a bone whose Index disagrees with its position in
// the skeleton walk. Vertex blend indices address bones by Index, so the
// joint list would bind the wrong bones.
type JointOrderError struct {
	Bone     string
	Index    uint16
	Position int
}

func (e *JointOrderError) Error() string {
	return fmt.Sprintf("bone %q has index %d but is joint %d", e.Bone, e.Index, e.Position)
}

// skeleton is the joint side of a skinned export. Joints, inverse bind
// matrices and the bones themselves all follow the walk order.
type skeleton struct {
	order []content.BoneRef
	bones []*content.SkinnedModelBone
	nodes map[content.BoneRef]uint32
	skin  uint32
}

// ExportSkinnedModel converts a skinned model: joints from the pool
// skeleton, one skin, and one animation per referenced clip.
func ExportSkinnedModel(g *content.Graph, sm *content.SkinnedModel) (*Scene, error) {
	if sm.Model == nil {
		return nil, errors.New("skinned model without model")
	}
	e := newExporter(g, sm.Model)
	if err := e.packGeometry(); err != nil {
		return nil, err
	}

	sk, err := e.exportSkeleton(sm)
	if err != nil {
		return nil, err
	}
	e.exportMaterials()

	for i, mesh := range sm.Model.Meshes {
		if err := e.exportSkinnedMesh(sm, sk, i, mesh); err != nil {
			return nil, err
		}
	}

	if err := e.exportAnimations(sm, sk); err != nil {
		return nil, err
	}
	return e.finish(), nil
}

func (e *exporter) exportSkeleton(sm *content.SkinnedModel) (*skeleton, error) {
	bone := func(ref content.BoneRef) (*content.SkinnedModelBone, error) {
		b, err := e.graph.Bone(ref)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, errors.Wrap(ErrHierarchy, "null bone reference")
		}
		return b, nil
	}

	order, err := walkHierarchy(sm.Bones,
		func(ref content.BoneRef) (content.BoneRef, error) {
			b, err := bone(ref)
			if err != nil {
				return 0, err
			}
			return b.Parent, nil
		},
		func(ref content.BoneRef) ([]content.BoneRef, error) {
			b, err := bone(ref)
			if err != nil {
				return nil, err
			}
			return b.Children, nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to walk skeleton")
	}

	sk := &skeleton{
		order: order,
		bones: make([]*content.SkinnedModelBone, len(order)),
		nodes: make(map[content.BoneRef]uint32, len(order)),
	}
	if len(order) == 0 {
		return sk, nil
	}

	ibm := make([]float32, 0, 16*len(order))
	for i, ref := range order {
		b, _ := bone(ref)
		sk.bones[i] = b
		if int(b.Index) != i {
			return nil, errors.WithStack(&JointOrderError{Bone: b.Name, Index: b.Index, Position: i})
		}

		sk.nodes[ref] = e.addNode(&gltf.Node{
			Name:        b.Name,
			Translation: b.Translation,
			Rotation:    utils.QuatXYZW(utils.NormalizedQuat(b.Orientation)),
			Scale:       b.Scale,
		})
		ibm = append(ibm, b.InverseBindPose[:]...)
	}

	joints := make([]uint32, len(order))
	for i, ref := range order {
		joints[i] = sk.nodes[ref]
		for _, child := range sk.bones[i].Children {
			e.addChild(sk.nodes[ref], sk.nodes[child])
		}
	}

	region, err := e.packer.AppendFloats(RegionInverseBindMatrices, ibm, 16)
	if err != nil {
		return nil, err
	}
	accessor := e.regionAccessor(region, gltf.ComponentFloat, gltf.AccessorMat4)

	e.doc.Skins = append(e.doc.Skins, &gltf.Skin{
		Name:                "skin",
		InverseBindMatrices: gltf.Index(accessor),
		Skeleton:            gltf.Index(joints[0]),
		Joints:              joints,
	})
	sk.skin = uint32(len(e.doc.Skins) - 1)
	return sk, nil
}

// exportSkinnedMesh splits the parts of a mesh by whether their vertices
// carry blend indices. Skinned parts are bound to the skin at the scene root,
// rigid parts hang under the joint of the mesh's parent bone.
func (e *exporter) exportSkinnedMesh(sm *content.SkinnedModel, sk *skeleton, meshIndex int, mesh *content.Mesh) error {
	var skinned, rigid []*content.MeshPart
	for _, part := range mesh.Parts {
		decl, err := sm.Model.VertexDeclaration(part)
		if err != nil {
			return errors.Wrapf(err, "mesh %q", mesh.Name)
		}
		if decl.Skinned() && len(sk.order) != 0 {
			skinned = append(skinned, part)
		} else {
			rigid = append(rigid, part)
		}
	}

	node, ok, err := e.meshNode(meshIndex, mesh.Name, skinned)
	if err != nil {
		return err
	}
	if ok {
		e.doc.Nodes[node].Skin = gltf.Index(sk.skin)
	}

	name := mesh.Name
	if len(skinned) != 0 {
		name += "_rigid"
	}
	node, ok, err = e.meshNode(meshIndex, name, rigid)
	if err != nil || !ok {
		return err
	}

	ref, err := sm.SharedBone(e.graph, mesh.ParentBone)
	if err != nil {
		var unmatched *content.UnmatchedBoneError
		if !errors.As(err, &unmatched) {
			return errors.Wrapf(err, "mesh %q", mesh.Name)
		}
		e.warnf("mesh %q: parent bone %q is not part of the skeleton", mesh.Name, unmatched.Name)
		return nil
	}
	if joint, ok := sk.nodes[ref]; ok {
		e.addChild(joint, node)
	}
	return nil
}
