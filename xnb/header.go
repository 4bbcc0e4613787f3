package xnb

import (
	"fmt"
	"io"

	"github.com/anaminus/parse"
	"github.com/pkg/errors"
)

const Magic = "XNB"

type Platform byte

const (
	PlatformWindows      Platform = 'w'
	PlatformWindowsPhone Platform = 'm'
	PlatformXbox360      Platform = 'x'
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "Windows"
	case PlatformWindowsPhone:
		return "Windows Phone"
	case PlatformXbox360:
		return "Xbox 360"
	default:
		return fmt.Sprintf("Platform(%q)", byte(p))
	}
}

type Version byte

const (
	VersionXNA31 Version = 4
	VersionXNA40 Version = 5
)

func (v Version) String() string {
	switch v {
	case VersionXNA31:
		return "XNA 3.1"
	case VersionXNA40:
		return "XNA 4.0"
	default:
		return fmt.Sprintf("Version(%d)", byte(v))
	}
}

// SupportedVersion is the only schema generation the content decoders
// understand.
const SupportedVersion = VersionXNA31

const (
	FlagHiDef = 0x01
	FlagLZ4   = 0x40
	FlagLZX   = 0x80
)

type Compression int

const (
	CompressionNone Compression = iota
	CompressionLZX
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionLZX:
		return "LZX"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "none"
	}
}

const (
	headerSize           = 10
	compressedHeaderSize = 14
)

type Header struct {
	Platform         Platform
	Version          Version
	HiDef            bool
	Compression      Compression
	CompressedSize   uint32 // whole file size, header included
	UncompressedSize uint32 // only present when compressed
}

func (h *Header) Compressed() bool {
	return h.Compression != CompressionNone
}

// Size returns the encoded header length.
func (h *Header) Size() int {
	if h.Compressed() {
		return compressedHeaderSize
	}
	return headerSize
}

var (
	ErrInvalidMagic       = errors.New("not a valid XNB container")
	ErrUnsupportedVersion = errors.New("unsupported XNB version")
)

type UnknownPlatformError struct {
	Value byte
}

func (e UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown platform: %q", e.Value)
}

func readError(fr *parse.BinaryReader, what string) error {
	err := fr.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrapf(err, "Failed to read %s at offset %d", what, fr.N())
}

// ReadHeader parses the container envelope. Bad magic, platform or version
// are fatal for the input.
func ReadHeader(r io.Reader) (*Header, error) {
	fr := parse.NewBinaryReader(r)
	h := &Header{}

	var magic [3]byte
	if fr.Bytes(magic[:]) {
		return nil, readError(fr, "magic")
	}
	if string(magic[:]) != Magic {
		return nil, errors.Wrapf(ErrInvalidMagic, "magic %q", magic[:])
	}

	var platform, version, flags uint8
	if fr.Number(&platform) {
		return nil, readError(fr, "platform")
	}
	switch p := Platform(platform); p {
	case PlatformWindows, PlatformWindowsPhone, PlatformXbox360:
		h.Platform = p
	default:
		return nil, errors.WithStack(UnknownPlatformError{Value: platform})
	}

	if fr.Number(&version) {
		return nil, readError(fr, "version")
	}
	h.Version = Version(version)
	if h.Version != SupportedVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%v", h.Version)
	}

	if fr.Number(&flags) {
		return nil, readError(fr, "flags")
	}
	h.HiDef = flags&FlagHiDef != 0
	switch {
	case flags&FlagLZX != 0:
		h.Compression = CompressionLZX
	case flags&FlagLZ4 != 0:
		h.Compression = CompressionLZ4
	}

	if fr.Number(&h.CompressedSize) {
		return nil, readError(fr, "compressed size")
	}
	if h.Compressed() {
		if fr.Number(&h.UncompressedSize) {
			return nil, readError(fr, "uncompressed size")
		}
	}

	return h, nil
}
