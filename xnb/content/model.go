package content

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// LocalBoneRef is a 1-based index into Model.Bones, 0 means no bone. It is a
// different numbering from BoneRef, see SkinnedModel.SharedBone.
type LocalBoneRef uint32

type Bone struct {
	Name      string
	Transform mgl32.Mat4
}

type BoneLink struct {
	Parent   LocalBoneRef
	Children []LocalBoneRef
}

type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

type MeshPart struct {
	StreamOffset           uint32
	BaseVertex             uint32
	VertexCount            uint32
	StartIndex             uint32
	PrimitiveCount         uint32
	VertexDeclarationIndex uint32
	Tag                    byte
	Material               MaterialRef
}

type Mesh struct {
	Name         string
	ParentBone   LocalBoneRef
	Bounds       BoundingSphere
	VertexBuffer *VertexBuffer
	IndexBuffer  *IndexBuffer
	Tag          byte
	Parts        []*MeshPart
}

type Model struct {
	Bones              []Bone
	Hierarchy          []BoneLink
	VertexDeclarations []*VertexDeclaration
	Meshes             []*Mesh
	Root               LocalBoneRef
	Tag                byte
}

func (*Model) isContent() {}

// Bone resolves a model-local reference. Reference 0 resolves to nil.
func (m *Model) Bone(ref LocalBoneRef) (*Bone, error) {
	if ref == 0 {
		return nil, nil
	}
	if int(ref) > len(m.Bones) {
		return nil, errors.Errorf("local bone reference %d out of range, model has %d bones", ref, len(m.Bones))
	}
	return &m.Bones[ref-1], nil
}

func (m *Model) VertexDeclaration(part *MeshPart) (*VertexDeclaration, error) {
	if int(part.VertexDeclarationIndex) >= len(m.VertexDeclarations) {
		return nil, errors.Errorf("vertex declaration index %d out of range, model has %d",
			part.VertexDeclarationIndex, len(m.VertexDeclarations))
	}
	return m.VertexDeclarations[part.VertexDeclarationIndex], nil
}

// boneRefReader decodes model-local bone references. Their width depends on
// the bone count and is the same for every reference in the model.
type boneRefReader struct {
	r    *Reader
	wide bool
}

func (b boneRefReader) read() (LocalBoneRef, error) {
	if b.wide {
		v, err := b.r.ReadU32()
		return LocalBoneRef(v), err
	}
	v, err := b.r.ReadU8()
	return LocalBoneRef(v), err
}

func (b boneRefReader) size() int {
	if b.wide {
		return 4
	}
	return 1
}

func readModel(r *Reader) (Content, error) {
	m := &Model{}

	// a bone is at least a null name and a matrix
	boneCount, err := r.ReadCount(1 + 64)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read bone count")
	}
	m.Bones = make([]Bone, boneCount)
	for i := range m.Bones {
		if m.Bones[i].Name, err = readStringContent(r); err != nil {
			return nil, errors.Wrapf(err, "Failed to read bone %d name", i)
		}
		if m.Bones[i].Transform, err = r.ReadMat4(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read bone %d transform", i)
		}
	}

	refs := boneRefReader{r: r, wide: boneCount > 255}
	m.Hierarchy = make([]BoneLink, boneCount)
	for i := range m.Hierarchy {
		link := &m.Hierarchy[i]
		if link.Parent, err = refs.read(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read bone %d parent", i)
		}
		childCount, err := r.ReadCount(refs.size())
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read bone %d child count", i)
		}
		link.Children = make([]LocalBoneRef, childCount)
		for j := range link.Children {
			if link.Children[j], err = refs.read(); err != nil {
				return nil, errors.Wrapf(err, "Failed to read bone %d child %d", i, j)
			}
		}
	}

	declCount, err := r.ReadCount(1)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read vertex declaration count")
	}
	m.VertexDeclarations = make([]*VertexDeclaration, declCount)
	for i := range m.VertexDeclarations {
		decl, err := readContentAs[*VertexDeclaration](r, "vertex declaration")
		if err == nil && decl == nil {
			err = errors.WithStack(&UnexpectedContentError{Expected: "vertex declaration"})
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read vertex declaration %d", i)
		}
		m.VertexDeclarations[i] = decl
	}

	meshCount, err := r.ReadCount(1)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read mesh count")
	}
	m.Meshes = make([]*Mesh, meshCount)
	for i := range m.Meshes {
		if m.Meshes[i], err = readMesh(r, refs); err != nil {
			return nil, errors.Wrapf(err, "Failed to read mesh %d", i)
		}
	}

	if m.Root, err = refs.read(); err != nil {
		return nil, errors.Wrap(err, "Failed to read root bone")
	}
	if m.Tag, err = r.ReadU8(); err != nil {
		return nil, errors.Wrap(err, "Failed to read model tag")
	}
	return m, nil
}

func readMesh(r *Reader, refs boneRefReader) (*Mesh, error) {
	var err error
	mesh := &Mesh{}

	if mesh.Name, err = readStringContent(r); err != nil {
		return nil, errors.Wrap(err, "Failed to read name")
	}
	if mesh.ParentBone, err = refs.read(); err != nil {
		return nil, errors.Wrap(err, "Failed to read parent bone")
	}
	if mesh.Bounds.Center, err = r.ReadVec3(); err != nil {
		return nil, errors.Wrap(err, "Failed to read bounds")
	}
	if mesh.Bounds.Radius, err = r.ReadF32(); err != nil {
		return nil, errors.Wrap(err, "Failed to read bounds")
	}

	if mesh.VertexBuffer, err = readContentAs[*VertexBuffer](r, "vertex buffer"); err != nil {
		return nil, errors.Wrap(err, "Failed to read vertex buffer")
	}
	if mesh.VertexBuffer == nil {
		return nil, errors.WithStack(&UnexpectedContentError{Expected: "vertex buffer"})
	}
	if mesh.IndexBuffer, err = readContentAs[*IndexBuffer](r, "index buffer"); err != nil {
		return nil, errors.Wrap(err, "Failed to read index buffer")
	}
	if mesh.IndexBuffer == nil {
		return nil, errors.WithStack(&UnexpectedContentError{Expected: "index buffer"})
	}

	if mesh.Tag, err = r.ReadU8(); err != nil {
		return nil, errors.Wrap(err, "Failed to read tag")
	}

	const minPartSize = 6*4 + 1 + 1
	partCount, err := r.ReadCount(minPartSize)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read part count")
	}
	mesh.Parts = make([]*MeshPart, partCount)
	for i := range mesh.Parts {
		if mesh.Parts[i], err = readMeshPart(r); err != nil {
			return nil, errors.Wrapf(err, "Failed to read part %d", i)
		}
	}
	return mesh, nil
}

func readMeshPart(r *Reader) (*MeshPart, error) {
	p := &MeshPart{}
	for _, f := range []*uint32{
		&p.StreamOffset, &p.BaseVertex, &p.VertexCount,
		&p.StartIndex, &p.PrimitiveCount, &p.VertexDeclarationIndex,
	} {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		*f = v
	}

	var err error
	if p.Tag, err = r.ReadU8(); err != nil {
		return nil, err
	}
	material, err := r.Read7BitEncodedInt()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read material reference")
	}
	p.Material = MaterialRef(material)
	return p, nil
}
