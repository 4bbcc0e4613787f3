package content

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	StringReaderName            = "Microsoft.Xna.Framework.Content.StringReader"
	Int32ReaderName             = "Microsoft.Xna.Framework.Content.Int32Reader"
	SingleReaderName            = "Microsoft.Xna.Framework.Content.SingleReader"
	BooleanReaderName           = "Microsoft.Xna.Framework.Content.BooleanReader"
	ExternalReferenceReaderName = "Microsoft.Xna.Framework.Content.ExternalReferenceReader"
	Texture2DReaderName         = "Microsoft.Xna.Framework.Content.Texture2DReader"
	ModelReaderName             = "Microsoft.Xna.Framework.Content.ModelReader"
	VertexDeclarationReaderName = "Microsoft.Xna.Framework.Content.VertexDeclarationReader"
	VertexBufferReaderName      = "Microsoft.Xna.Framework.Content.VertexBufferReader"
	IndexBufferReaderName       = "Microsoft.Xna.Framework.Content.IndexBufferReader"
	BasicEffectReaderName       = "Microsoft.Xna.Framework.Content.BasicEffectReader"

	RenderDeferredEffectReaderName = "PolygonHead.Pipeline.RenderDeferredEffectReader"

	SkinnedModelReaderName     = "XNAnimation.Pipeline.SkinnedModelReader"
	SkinnedModelBoneReaderName = "XNAnimation.Pipeline.SkinnedModelBoneReader"
	AnimationClipReaderName    = "XNAnimation.Pipeline.AnimationClipReader"

	CharacterTemplateReaderName = "Magicka.ContentReaders.CharacterTemplateReader"
)

// TypeReader is one entry of the type table. Its position plus one is the
// type id used by content in the stream.
type TypeReader struct {
	Name    string
	Version int32
}

// ShortName strips the assembly qualifier.
func (t TypeReader) ShortName() string {
	if i := strings.IndexByte(t.Name, ','); i >= 0 {
		return strings.TrimSpace(t.Name[:i])
	}
	return t.Name
}

func ReadTypeReaders(r *Reader) ([]TypeReader, error) {
	count, err := r.Read7BitEncodedInt()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read type reader count")
	}
	// every entry is at least a length byte and a version
	if int64(count)*5 > int64(r.Remaining()) {
		return nil, errors.WithStack(&TruncatedError{Offset: r.Offset(), Need: int(count) * 5})
	}

	trs := make([]TypeReader, count)
	for i := range trs {
		if trs[i].Name, err = r.ReadString(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read type reader %d name", i)
		}
		if trs[i].Version, err = r.ReadI32(); err != nil {
			return nil, errors.Wrapf(err, "Failed to read type reader %d version", i)
		}
	}
	return trs, nil
}

type readFunc func(r *Reader) (Content, error)

// lookupReader maps a reader name onto its decoder. The set is closed.
func lookupReader(name string) (readFunc, error) {
	switch name {
	case StringReaderName:
		return readString, nil
	case Int32ReaderName:
		return readInt32, nil
	case SingleReaderName:
		return readSingle, nil
	case BooleanReaderName:
		return readBoolean, nil
	case ExternalReferenceReaderName:
		return readExternalReference, nil
	case Texture2DReaderName:
		return readTexture2D, nil
	case ModelReaderName:
		return readModel, nil
	case VertexDeclarationReaderName:
		return readVertexDeclaration, nil
	case VertexBufferReaderName:
		return readVertexBuffer, nil
	case IndexBufferReaderName:
		return readIndexBuffer, nil
	case BasicEffectReaderName:
		return readBasicEffect, nil
	case RenderDeferredEffectReaderName:
		return readRenderDeferredEffect, nil
	case SkinnedModelReaderName:
		return readSkinnedModel, nil
	case SkinnedModelBoneReaderName:
		return readSkinnedModelBone, nil
	case AnimationClipReaderName:
		return readAnimationClip, nil
	case CharacterTemplateReaderName:
		return readCharacterTemplate, nil
	default:
		return nil, errors.WithStack(&UnresolvedTypeError{Name: name})
	}
}

// ReadContent reads a type id and the value it introduces. Type id 0 is null
// content and decodes to nil.
func (r *Reader) ReadContent() (Content, error) {
	at := r.Offset()
	id, err := r.Read7BitEncodedInt()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read type id")
	}
	if id == 0 {
		return nil, nil
	}
	if int(id) > len(r.typeReaders) {
		return nil, errors.WithStack(&InvalidTypeIDError{ID: id, Count: len(r.typeReaders)})
	}

	name := r.typeReaders[id-1].ShortName()
	read, err := lookupReader(name)
	if err != nil {
		return nil, err
	}
	c, err := read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %s at offset %d", name, at)
	}
	return c, nil
}

// readContentAs reads nested content that must be of type T. Null content
// yields the zero T.
func readContentAs[T Content](r *Reader, expected string) (T, error) {
	var zero T
	c, err := r.ReadContent()
	if err != nil || c == nil {
		return zero, err
	}
	v, ok := c.(T)
	if !ok {
		return zero, errors.WithStack(&UnexpectedContentError{Expected: expected, Actual: c})
	}
	return v, nil
}
