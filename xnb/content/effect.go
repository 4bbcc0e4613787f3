package content

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Effect is content a mesh part can reference as its material.
type Effect interface {
	Content
	isEffect()
}

type BasicEffect struct {
	Texture            string
	DiffuseColor       mgl32.Vec3
	EmissiveColor      mgl32.Vec3
	SpecularColor      mgl32.Vec3
	SpecularPower      float32
	Alpha              float32
	VertexColorEnabled bool
}

func (*BasicEffect) isContent() {}
func (*BasicEffect) isEffect()  {}

func readBasicEffect(r *Reader) (Content, error) {
	var err error
	e := &BasicEffect{}
	if e.Texture, err = r.ReadString(); err != nil {
		return nil, errors.Wrap(err, "Failed to read texture reference")
	}
	for _, c := range []*mgl32.Vec3{&e.DiffuseColor, &e.EmissiveColor, &e.SpecularColor} {
		if *c, err = r.ReadVec3(); err != nil {
			return nil, err
		}
	}
	if e.SpecularPower, err = r.ReadF32(); err != nil {
		return nil, err
	}
	if e.Alpha, err = r.ReadF32(); err != nil {
		return nil, err
	}
	if e.VertexColorEnabled, err = r.ReadBool(); err != nil {
		return nil, err
	}
	return e, nil
}

type RenderDeferredMaterial struct {
	DiffuseTextureAlphaDisabled bool
	AlphaMaskEnabled            bool
	DiffuseColor                mgl32.Vec3
	SpecAmount                  float32
	SpecPower                   float32
	EmissiveAmount              float32
	NormalPower                 float32
	Reflectiveness              float32
	DiffuseTexture              string
	MaterialTexture             string
	NormalTexture               string
}

type RenderDeferredEffect struct {
	Alpha                               float32
	Sharpness                           float32
	VertexColorEnabled                  bool
	UseMaterialTextureForReflectiveness bool
	ReflectionMap                       string
	Material0                           RenderDeferredMaterial
	Material1                           *RenderDeferredMaterial
}

func (*RenderDeferredEffect) isContent() {}
func (*RenderDeferredEffect) isEffect()  {}

func readRenderDeferredEffect(r *Reader) (Content, error) {
	var err error
	e := &RenderDeferredEffect{}
	if e.Alpha, err = r.ReadF32(); err != nil {
		return nil, err
	}
	if e.Sharpness, err = r.ReadF32(); err != nil {
		return nil, err
	}
	if e.VertexColorEnabled, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if e.UseMaterialTextureForReflectiveness, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if e.ReflectionMap, err = r.ReadString(); err != nil {
		return nil, errors.Wrap(err, "Failed to read reflection map")
	}
	if err := readRenderDeferredMaterial(r, &e.Material0); err != nil {
		return nil, errors.Wrap(err, "Failed to read material 0")
	}

	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if present {
		e.Material1 = &RenderDeferredMaterial{}
		if err := readRenderDeferredMaterial(r, e.Material1); err != nil {
			return nil, errors.Wrap(err, "Failed to read material 1")
		}
	}
	return e, nil
}

func readRenderDeferredMaterial(r *Reader, m *RenderDeferredMaterial) (err error) {
	if m.DiffuseTextureAlphaDisabled, err = r.ReadBool(); err != nil {
		return err
	}
	if m.AlphaMaskEnabled, err = r.ReadBool(); err != nil {
		return err
	}
	if m.DiffuseColor, err = r.ReadVec3(); err != nil {
		return err
	}
	for _, f := range []*float32{&m.SpecAmount, &m.SpecPower, &m.EmissiveAmount, &m.NormalPower, &m.Reflectiveness} {
		if *f, err = r.ReadF32(); err != nil {
			return err
		}
	}
	for _, s := range []*string{&m.DiffuseTexture, &m.MaterialTexture, &m.NormalTexture} {
		if *s, err = r.ReadString(); err != nil {
			return err
		}
	}
	return nil
}
