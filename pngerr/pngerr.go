// Package pngerr defines the single error taxonomy used throughout the
// decoder. Every failure from chunk parsing down to DEFLATE symbol
// decoding surfaces as a *pngerr.Error carrying one Kind.
package pngerr

import "fmt"

// Kind enumerates every way a decode can fail. The zero value means "no
// error" and is never returned wrapped in an *Error.
type Kind int

const (
	_ Kind = iota // zero value reserved for "no error"

	// Header.
	BadSignature
	TypeNotSupported

	// Structural.
	InvalidFile
	IhdrNotFound
	MultipleIhdr
	NoIdat
	NoPlte
	UnexpectedPlte
	GamaAfterPlte
	MultipleGama
	IdatSizeLimit
	CorruptIhdr

	// IHDR validation.
	BadBitDepth
	BadColourType
	BadBitDepthCombination
	BadInterlace
	ImageTooBig
	ZeroSize

	// CRC.
	CrcMismatch

	// Zlib / DEFLATE.
	ZlibHeaderCorrupted
	ZlibCompression
	PresetDict
	InvalidZlibValue
	BadHuffmanCodeLengths
	CorruptedFile

	// Resource.
	OutOfMemory
	MemoryError

	// Supplemented (§4.J/4.K/4.L of SPEC_FULL.md).
	BadFilterType
	PaletteIndexOOB
	InterlaceUnsupported
)

var messages = map[Kind]string{
	BadSignature:           "not a PNG file: bad signature",
	TypeNotSupported:       "chunk type not supported",
	InvalidFile:            "invalid PNG file",
	IhdrNotFound:           "first chunk is not IHDR",
	MultipleIhdr:           "more than one IHDR chunk",
	NoIdat:                 "no IDAT chunk before IEND",
	NoPlte:                 "indexed colour type requires a PLTE chunk",
	UnexpectedPlte:         "PLTE chunk not allowed for this colour type",
	GamaAfterPlte:          "gAMA chunk after PLTE",
	MultipleGama:           "more than one gAMA chunk",
	IdatSizeLimit:          "IDAT chunk exceeds size limit",
	CorruptIhdr:            "IHDR chunk has the wrong length or an unsupported compression/filter method",
	BadBitDepth:            "unsupported bit depth",
	BadColourType:          "unsupported colour type",
	BadBitDepthCombination: "bit depth not allowed for this colour type",
	BadInterlace:           "unsupported interlace method",
	ImageTooBig:            "image dimensions exceed the configured maximum",
	ZeroSize:               "image width or height is zero",
	CrcMismatch:            "chunk CRC does not match stored value",
	ZlibHeaderCorrupted:    "corrupt zlib header",
	ZlibCompression:        "unsupported zlib compression method",
	PresetDict:             "zlib preset dictionaries are not supported",
	InvalidZlibValue:       "invalid value in zlib stream",
	BadHuffmanCodeLengths:  "invalid Huffman code lengths",
	CorruptedFile:          "corrupt compressed data",
	OutOfMemory:            "allocation exceeded configured limit",
	MemoryError:            "internal allocation error",
	BadFilterType:          "unknown scanline filter type",
	PaletteIndexOOB:        "palette index out of range",
	InterlaceUnsupported:   "interlaced pixel reordering is not implemented",
}

// String returns the human-readable description of k. This is the
// Go-shaped form of the source's error_code_to_message.
func (k Kind) String() string {
	if s, ok := messages[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the concrete error type returned by every decoder layer. It
// pairs a Kind with the specific context that produced it, and supports
// errors.Is against any *Error of the same Kind (see Sentinel) via a
// Kind-only comparison in Is.
type Error struct {
	Kind Kind
	Msg  string // additional context, e.g. "chunk IDAT at offset 142"
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Msg)
}

// Is allows errors.Is(err, pngerr.New(SomeKind)) and, more usefully,
// errors.Is(err, pngerr.Sentinel(SomeKind)) to match any *Error with the
// same Kind regardless of Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an *Error with no additional context.
func New(k Kind) *Error { return &Error{Kind: k} }

// Newf creates an *Error with a formatted context message.
func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel returns a bare *Error suitable for errors.Is comparisons,
// e.g. errors.Is(err, pngerr.Sentinel(pngerr.CrcMismatch)).
func Sentinel(k Kind) *Error { return &Error{Kind: k} }
