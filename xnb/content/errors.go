package content

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrTruncated  = errors.New("unexpected end of content stream")
	ErrEncodedInt = errors.New("7-bit encoded int is too long")
)

type TruncatedError struct {
	Offset int
	Need   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%v: need %d bytes at offset %d", ErrTruncated, e.Need, e.Offset)
}

func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncated
}

type UnresolvedTypeError struct {
	Name string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("unresolved type reader %q", e.Name)
}

type InvalidTypeIDError struct {
	ID    uint32
	Count int
}

func (e *InvalidTypeIDError) Error() string {
	return fmt.Sprintf("type id %d out of range, table has %d readers", e.ID, e.Count)
}

// UnknownKindError is a selector value outside of its closed set. Value keeps
// the raw discriminant.
type UnknownKindError struct {
	Kind  string
	Value uint32
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown %s: %d (0x%x)", e.Kind, e.Value, e.Value)
}

// InvalidRefError is a shared pool reference that is out of range or that
// points at content of an unexpected kind.
type InvalidRefError struct {
	Kind   string
	Index  uint32
	Pool   int
	Actual Content
}

func (e *InvalidRefError) Error() string {
	if e.Index == 0 || int(e.Index) > e.Pool {
		return fmt.Sprintf("%s reference %d out of range, shared pool has %d entries", e.Kind, e.Index, e.Pool)
	}
	return fmt.Sprintf("%s reference %d points at %T", e.Kind, e.Index, e.Actual)
}

type UnexpectedContentError struct {
	Expected string
	Actual   Content
}

func (e *UnexpectedContentError) Error() string {
	if e.Actual == nil {
		return fmt.Sprintf("expected %s, got null content", e.Expected)
	}
	return fmt.Sprintf("expected %s, got %T", e.Expected, e.Actual)
}

type UnmatchedBoneError struct {
	Name string
}

func (e *UnmatchedBoneError) Error() string {
	return fmt.Sprintf("model bone %q has no skinned bone with the same name", e.Name)
}
