package export

import (
	"fmt"
	"path"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/mogaika/xnbtool/xnb/content"
)

// TextureURI maps a content texture name onto the PNG written for it.
func TextureURI(name string) string {
	return strings.ReplaceAll(name, `\`, "/") + ".png"
}

type textureKey string

// exportMaterials turns every effect of the shared pool into a material.
// Materials are cached by their pool reference, textures by URI.
func (e *exporter) exportMaterials() {
	for i, c := range e.graph.Shared {
		effect, ok := c.(content.Effect)
		if !ok {
			continue
		}
		ref := content.MaterialRef(i + 1)

		var name, texture string
		var color [4]float32
		alphaMode := gltf.AlphaOpaque
		switch fx := effect.(type) {
		case *content.BasicEffect:
			texture = fx.Texture
			color = [4]float32{fx.DiffuseColor[0], fx.DiffuseColor[1], fx.DiffuseColor[2], fx.Alpha}
		case *content.RenderDeferredEffect:
			texture = fx.Material0.DiffuseTexture
			dc := fx.Material0.DiffuseColor
			color = [4]float32{dc[0], dc[1], dc[2], fx.Alpha}
			if fx.Material0.AlphaMaskEnabled {
				alphaMode = gltf.AlphaMask
			}
		}
		if color[3] < 1 && alphaMode == gltf.AlphaOpaque {
			alphaMode = gltf.AlphaBlend
		}

		if texture != "" {
			name = path.Base(strings.ReplaceAll(texture, `\`, "/"))
		} else {
			name = fmt.Sprintf("material_%d", ref)
		}

		gm := &gltf.Material{
			Name:      name,
			AlphaMode: alphaMode,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
			},
			Extras: effect,
		}
		if texture != "" {
			gm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
				Index: e.texture(texture),
			}
		}

		e.doc.Materials = append(e.doc.Materials, gm)
		e.cacher.AddCache(ref, uint32(len(e.doc.Materials)-1))
	}
}

func (e *exporter) texture(name string) uint32 {
	uri := TextureURI(name)
	return e.cacher.GetCachedOr(textureKey(uri), func() interface{} {
		e.doc.Images = append(e.doc.Images, &gltf.Image{
			Name: name,
			URI:  uri,
		})
		e.doc.Textures = append(e.doc.Textures, &gltf.Texture{
			Name:   name,
			Source: gltf.Index(uint32(len(e.doc.Images) - 1)),
		})
		return uint32(len(e.doc.Textures) - 1)
	}).(uint32)
}

// material resolves a part's material reference to the exported material.
// Reference 0 means no material.
func (e *exporter) material(ref content.MaterialRef) (*uint32, error) {
	effect, err := e.graph.Material(ref)
	if err != nil || effect == nil {
		return nil, err
	}
	if v := e.cacher.GetCached(ref); v != nil {
		return gltf.Index(v.(uint32)), nil
	}
	return nil, nil
}
