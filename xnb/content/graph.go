package content

import (
	"github.com/pkg/errors"
)

// References into the shared pool are 1-based, 0 means absent. Each
// referenced kind has its own type so they cannot be mixed up.
type (
	SharedRef    uint32
	BoneRef      uint32
	AnimationRef uint32
	MaterialRef  uint32
)

// Graph is a decoded content stream: the primary value plus the shared pool
// it references by index.
type Graph struct {
	TypeReaders []TypeReader
	Primary     Content
	Shared      []Content
}

// Decode reads the type table, the shared pool size, the primary content and
// then every shared entry in stream order. References are left unresolved,
// entries may point forward in the pool.
func Decode(data []byte) (*Graph, error) {
	r := NewReader(data)

	trs, err := ReadTypeReaders(r)
	if err != nil {
		return nil, err
	}
	r.typeReaders = trs

	sharedCount, err := r.Read7BitEncodedInt()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read shared resource count")
	}
	// a shared entry takes at least its type id byte
	if int64(sharedCount) > int64(r.Remaining()) {
		return nil, errors.WithStack(&TruncatedError{Offset: r.Offset(), Need: int(sharedCount)})
	}

	g := &Graph{TypeReaders: trs}
	if g.Primary, err = r.ReadContent(); err != nil {
		return nil, errors.Wrap(err, "Failed to read primary content")
	}

	g.Shared = make([]Content, sharedCount)
	for i := range g.Shared {
		if g.Shared[i], err = r.ReadContent(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read shared resource %d", i+1)
		}
	}
	return g, nil
}

func resolve[T Content](g *Graph, kind string, index uint32) (T, error) {
	var zero T
	if index == 0 {
		return zero, nil
	}
	if int(index) > len(g.Shared) {
		return zero, errors.WithStack(&InvalidRefError{Kind: kind, Index: index, Pool: len(g.Shared)})
	}
	c := g.Shared[index-1]
	v, ok := c.(T)
	if !ok {
		return zero, errors.WithStack(&InvalidRefError{Kind: kind, Index: index, Pool: len(g.Shared), Actual: c})
	}
	return v, nil
}

// Resolve looks up an untyped reference. Reference 0 resolves to nil.
func (g *Graph) Resolve(ref SharedRef) (Content, error) {
	if ref == 0 {
		return nil, nil
	}
	if int(ref) > len(g.Shared) {
		return nil, errors.WithStack(&InvalidRefError{Kind: "shared", Index: uint32(ref), Pool: len(g.Shared)})
	}
	return g.Shared[ref-1], nil
}

func (g *Graph) Bone(ref BoneRef) (*SkinnedModelBone, error) {
	return resolve[*SkinnedModelBone](g, "bone", uint32(ref))
}

func (g *Graph) AnimationClip(ref AnimationRef) (*SkinnedModelAnimationClip, error) {
	return resolve[*SkinnedModelAnimationClip](g, "animation", uint32(ref))
}

func (g *Graph) Material(ref MaterialRef) (Effect, error) {
	return resolve[Effect](g, "material", uint32(ref))
}
