// Package content decodes the XNB content graph: the type table, the primary
// value and the shared pool.
package content

// Content is one decoded value. The implementations are the types of this
// package and nothing else. Null content is a nil Content.
type Content interface {
	isContent()
}

type String string

type Int32 int32

type Single float32

type Boolean bool

// ExternalReference names an asset stored in another file.
type ExternalReference string

func (String) isContent()            {}
func (Int32) isContent()             {}
func (Single) isContent()            {}
func (Boolean) isContent()           {}
func (ExternalReference) isContent() {}

func readString(r *Reader) (Content, error) {
	s, err := r.ReadString()
	return String(s), err
}

func readInt32(r *Reader) (Content, error) {
	v, err := r.ReadI32()
	return Int32(v), err
}

func readSingle(r *Reader) (Content, error) {
	v, err := r.ReadF32()
	return Single(v), err
}

func readBoolean(r *Reader) (Content, error) {
	v, err := r.ReadBool()
	return Boolean(v), err
}

func readExternalReference(r *Reader) (Content, error) {
	s, err := r.ReadString()
	return ExternalReference(s), err
}

// readStringContent reads a String written as nested content, null reads as
// the empty string.
func readStringContent(r *Reader) (string, error) {
	s, err := readContentAs[String](r, "string")
	return string(s), err
}
