package gltfutils

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// GLTFCacher keeps already exported resources of a document so they are
// written once no matter how many primitives use them.
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[interface{}]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   NewDocument(),
		cache: make(map[interface{}]interface{}),
	}
}

func (c *GLTFCacher) AddCache(key interface{}, v interface{}) {
	c.cache[key] = v
}

func (c *GLTFCacher) GetCached(key interface{}) interface{} {
	if v, ok := c.cache[key]; ok {
		return v
	}
	return nil
}

func (c *GLTFCacher) GetCachedOr(key interface{}, f func() interface{}) interface{} {
	if v, ok := c.cache[key]; ok {
		return v
	}
	v := f()
	c.cache[key] = v
	return v
}

// RootNodes lists the nodes that are nobody's child.
func RootNodes(doc *gltf.Document) []uint32 {
	isChild := make([]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			if int(child) < len(isChild) {
				isChild[child] = true
			}
		}
	}

	roots := make([]uint32, 0)
	for iNode := range doc.Nodes {
		if !isChild[iNode] {
			roots = append(roots, uint32(iNode))
		}
	}
	return roots
}

// ExportBinary fills the default scene with the root nodes and writes the
// document as GLB. The document must hold a single buffer without URI.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	doc.Scenes[0].Nodes = RootNodes(doc)

	if len(doc.Buffers) != 1 {
		return errors.Errorf("GLB needs exactly one buffer, document has %d", len(doc.Buffers))
	}
	doc.Buffers[0].ByteLength = uint32(len(doc.Buffers[0].Data))

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(err, "Failed to encode glb")
	}
	return nil
}
