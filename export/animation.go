package export

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/utils"
	"github.com/mogaika/xnbtool/xnb/content"
)

// UnmatchedChannelError reports an animation channel whose bone name matches
// no joint of the skeleton.
type UnmatchedChannelError struct {
	Clip string
	Bone string
}

func (e *UnmatchedChannelError) Error() string {
	return fmt.Sprintf("clip %q animates unknown bone %q", e.Clip, e.Bone)
}

func (e *exporter) exportAnimations(sm *content.SkinnedModel, sk *skeleton) error {
	joints := make(map[string]uint32, len(sk.order))
	for i, ref := range sk.order {
		joints[sk.bones[i].Name] = sk.nodes[ref]
	}

	for _, ref := range sm.Animations {
		clip, err := e.graph.AnimationClip(ref)
		if err != nil {
			return errors.Wrap(err, "Failed to resolve animation clip")
		}
		if clip == nil {
			e.warnf("null animation clip reference skipped")
			continue
		}
		if err := e.exportClip(clip, joints); err != nil {
			return errors.Wrapf(err, "Failed to export clip %q", clip.Name)
		}
	}
	return nil
}

func (e *exporter) exportClip(clip *content.SkinnedModelAnimationClip, joints map[string]uint32) error {
	anim := &gltf.Animation{Name: clip.Name}

	for _, ch := range clip.Channels {
		node, ok := joints[ch.BoneName]
		if !ok {
			return errors.WithStack(&UnmatchedChannelError{Clip: clip.Name, Bone: ch.BoneName})
		}
		if len(ch.Keyframes) == 0 {
			e.warnf("clip %q: channel %q has no keyframes", clip.Name, ch.BoneName)
			continue
		}

		n := len(ch.Keyframes)
		times := make([]float32, n)
		translations := make([]float32, 0, 3*n)
		rotations := make([]float32, 0, 4*n)
		scales := make([]float32, 0, 3*n)
		for i, k := range ch.Keyframes {
			times[i] = k.Time
			translations = append(translations, k.Translation[:]...)
			q := utils.QuatXYZW(utils.NormalizedQuat(k.Orientation))
			rotations = append(rotations, q[:]...)
			scales = append(scales, k.Scale[:]...)
		}

		timeRegion, err := e.packer.AppendFloats(RegionTimes, times, 1)
		if err != nil {
			return err
		}
		input := e.regionAccessor(timeRegion, gltf.ComponentFloat, gltf.AccessorScalar)
		min, max := times[0], times[0]
		for _, t := range times {
			if t < min {
				min = t
			}
			if t > max {
				max = t
			}
		}
		e.doc.Accessors[input].Min = []float32{min}
		e.doc.Accessors[input].Max = []float32{max}

		outputs := []struct {
			path   gltf.TRSProperty
			kind   RegionKind
			values []float32
			typ    gltf.AccessorType
			width  int
		}{
			{gltf.TRSTranslation, RegionTranslations, translations, gltf.AccessorVec3, 3},
			{gltf.TRSRotation, RegionRotations, rotations, gltf.AccessorVec4, 4},
			{gltf.TRSScale, RegionScales, scales, gltf.AccessorVec3, 3},
		}
		for _, out := range outputs {
			region, err := e.packer.AppendFloats(out.kind, out.values, out.width)
			if err != nil {
				return err
			}
			output := e.regionAccessor(region, gltf.ComponentFloat, out.typ)

			anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
				Input:         gltf.Index(input),
				Interpolation: gltf.InterpolationLinear,
				Output:        gltf.Index(output),
			})
			anim.Channels = append(anim.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
				Target: gltf.ChannelTarget{
					Node: gltf.Index(node),
					Path: out.path,
				},
			})
		}
	}

	if len(anim.Channels) == 0 {
		e.warnf("clip %q has no animated channels", clip.Name)
		return nil
	}
	e.doc.Animations = append(e.doc.Animations, anim)
	return nil
}
