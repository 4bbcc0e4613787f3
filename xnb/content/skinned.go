package content

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// SkinnedModel is a Model plus the skeleton and clips stored in the shared
// pool.
type SkinnedModel struct {
	Model      *Model
	Bones      []BoneRef
	Animations []AnimationRef
}

func (*SkinnedModel) isContent() {}

// SharedBone translates a model-local bone reference into the shared pool
// bone with the same name. It is the only place where the two numberings
// meet. Local reference 0 translates to 0.
func (m *SkinnedModel) SharedBone(g *Graph, local LocalBoneRef) (BoneRef, error) {
	bone, err := m.Model.Bone(local)
	if err != nil || bone == nil {
		return 0, err
	}
	for _, ref := range m.Bones {
		shared, err := g.Bone(ref)
		if err != nil {
			return 0, err
		}
		if shared != nil && shared.Name == bone.Name {
			return ref, nil
		}
	}
	return 0, errors.WithStack(&UnmatchedBoneError{Name: bone.Name})
}

type SkinnedModelBone struct {
	Index           uint16
	Name            string
	Translation     mgl32.Vec3
	Orientation     mgl32.Quat
	Scale           mgl32.Vec3
	InverseBindPose mgl32.Mat4
	Parent          BoneRef
	Children        []BoneRef
}

func (*SkinnedModelBone) isContent() {}

type Keyframe struct {
	Time        float32
	Translation mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
}

type AnimationChannel struct {
	BoneName  string
	Keyframes []Keyframe
}

type SkinnedModelAnimationClip struct {
	Name     string
	Duration float32
	Channels []AnimationChannel
}

func (*SkinnedModelAnimationClip) isContent() {}

// readRefs reads an i32 count of 7-bit encoded shared references.
func readRefs(r *Reader) ([]uint32, error) {
	count, err := r.ReadCount(1)
	if err != nil {
		return nil, err
	}
	refs := make([]uint32, count)
	for i := range refs {
		if refs[i], err = r.Read7BitEncodedInt(); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func readSkinnedModel(r *Reader) (Content, error) {
	model, err := readContentAs[*Model](r, "model")
	if err == nil && model == nil {
		err = errors.WithStack(&UnexpectedContentError{Expected: "model"})
	}
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read model")
	}

	m := &SkinnedModel{Model: model}

	bones, err := readRefs(r)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read bone references")
	}
	m.Bones = make([]BoneRef, len(bones))
	for i, ref := range bones {
		m.Bones[i] = BoneRef(ref)
	}

	animations, err := readRefs(r)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read animation references")
	}
	m.Animations = make([]AnimationRef, len(animations))
	for i, ref := range animations {
		m.Animations[i] = AnimationRef(ref)
	}
	return m, nil
}

func readSkinnedModelBone(r *Reader) (Content, error) {
	var err error
	b := &SkinnedModelBone{}

	if b.Index, err = r.ReadU16(); err != nil {
		return nil, err
	}
	if b.Name, err = r.ReadString(); err != nil {
		return nil, errors.Wrap(err, "Failed to read name")
	}
	if b.Translation, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if b.Orientation, err = r.ReadQuat(); err != nil {
		return nil, err
	}
	if b.Scale, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if b.InverseBindPose, err = r.ReadMat4(); err != nil {
		return nil, err
	}

	parent, err := r.Read7BitEncodedInt()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read parent")
	}
	b.Parent = BoneRef(parent)

	children, err := readRefs(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read children of %q", b.Name)
	}
	b.Children = make([]BoneRef, len(children))
	for i, ref := range children {
		b.Children[i] = BoneRef(ref)
	}
	return b, nil
}

const keyframeSize = 4 + 12 + 16 + 12

func readAnimationClip(r *Reader) (Content, error) {
	var err error
	clip := &SkinnedModelAnimationClip{}

	if clip.Name, err = r.ReadString(); err != nil {
		return nil, errors.Wrap(err, "Failed to read name")
	}
	if clip.Duration, err = r.ReadF32(); err != nil {
		return nil, err
	}

	// a channel is at least an empty name and a frame count
	channelCount, err := r.ReadCount(1 + 4)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read channel count")
	}
	clip.Channels = make([]AnimationChannel, channelCount)
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		if ch.BoneName, err = r.ReadString(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read channel %d name", i)
		}
		frameCount, err := r.ReadCount(keyframeSize)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read channel %q frame count", ch.BoneName)
		}
		ch.Keyframes = make([]Keyframe, frameCount)
		for j := range ch.Keyframes {
			if err := readKeyframe(r, &ch.Keyframes[j]); err != nil {
				return nil, errors.Wrapf(err, "Failed to read channel %q frame %d", ch.BoneName, j)
			}
		}
	}
	return clip, nil
}

func readKeyframe(r *Reader, k *Keyframe) (err error) {
	if k.Time, err = r.ReadF32(); err != nil {
		return err
	}
	if k.Translation, err = r.ReadVec3(); err != nil {
		return err
	}
	if k.Orientation, err = r.ReadQuat(); err != nil {
		return err
	}
	k.Scale, err = r.ReadVec3()
	return err
}
