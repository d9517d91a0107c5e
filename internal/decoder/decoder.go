// Package decoder implements the PNG chunk state machine (spec.md §4.H):
// signature check, IHDR validation, chunk ordering/multiplicity rules,
// IDAT concatenation, gAMA/PLTE handling, IEND termination, and driving
// the zlib/DEFLATE stage over the accumulated IDAT payload.
package decoder

import (
	"encoding/binary"

	"github.com/ernestoBayma/pngdecode/internal/chunk"
	"github.com/ernestoBayma/pngdecode/internal/crc32table"
	"github.com/ernestoBayma/pngdecode/internal/pool"
	"github.com/ernestoBayma/pngdecode/internal/zlib"
	"github.com/ernestoBayma/pngdecode/pngerr"
)

// Signature is the exact 8-byte PNG magic (spec.md §6, and the fix for
// spec.md §9 open question 1: the reference source compared a variable
// to itself and could never reject a bad signature).
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// ColorType is the PNG colour_type IHDR field.
type ColorType uint8

const (
	Greyscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GreyscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

// Channels returns the number of samples per pixel for c.
func (c ColorType) Channels() int {
	switch c {
	case Greyscale, Indexed:
		return 1
	case GreyscaleAlpha:
		return 2
	case Truecolor:
		return 3
	case TruecolorAlpha:
		return 4
	default:
		return 0
	}
}

// allowedBitDepths maps colour_type to its valid bit depths (spec.md
// §4.H table). Built as a lookup table rather than range comparisons:
// spec.md §9 open question 2 flags the reference's `&&`-where-`||`-was-
// needed range check as dead code; a table sidesteps that class of bug
// entirely.
var allowedBitDepths = map[ColorType]map[uint8]bool{
	Greyscale:      {1: true, 2: true, 4: true, 8: true, 16: true},
	Truecolor:      {8: true, 16: true},
	Indexed:        {1: true, 2: true, 4: true, 8: true},
	GreyscaleAlpha: {8: true, 16: true},
	TruecolorAlpha: {8: true, 16: true},
}

// Config holds the compile-time options of spec.md §6, made runtime
// parameters in Go's idiom.
type Config struct {
	// MaxImageDimension bounds both width and height (spec.md
	// PNG_MAX_IMAGE_SIZE, default 2^24).
	MaxImageDimension uint32
	// CheckCRC enables per-chunk CRC-32 verification (spec.md
	// PNG_CHECK_CRC). Defaults to true: spec.md §9 open question 5 flags
	// the reference's off-by-default CRC check as a bug this rewrite
	// fixes.
	CheckCRC bool
	// IDATBlockSize is the initial capacity for the IDAT accumulator
	// (spec.md IDAT_DEFAULT_BLOCK_SIZE, default 4096).
	IDATBlockSize int
}

// DefaultConfig returns the spec.md §6 default option values.
func DefaultConfig() Config {
	return Config{
		MaxImageDimension: 1 << 24,
		CheckCRC:          true,
		IDATBlockSize:     4096,
	}
}

// ImageInfo is the in-flight and output record of a decode (spec.md §3).
type ImageInfo struct {
	Width, Height uint32
	ColorType     ColorType
	BitDepth      uint8
	Interlace     uint8
	Gamma         *uint32 // 1/100000-units, nil if no gAMA chunk
	PLTE          []byte  // raw palette bytes, 3 per entry; nil if absent
	Compressed    []byte  // concatenation of all IDAT data fields, in order
	Uncompressed  []byte  // DEFLATE output
}

// maxIdatLength additionally bounds any single IDAT's length field beyond
// chunk.MaxLength (spec.md §3: "this implementation additionally rejects
// length > 2^30 for IDAT").
const maxIdatLength = 1 << 30

// Decode runs the full chunk state machine over data (signature already
// expected at the very start) and returns the populated ImageInfo, or the
// first error observed — the decode short-circuits at the first failure,
// per spec.md §7.
func Decode(data []byte, cfg Config) (*ImageInfo, error) {
	if len(data) < len(Signature) {
		return nil, pngerr.New(pngerr.BadSignature)
	}
	for i, b := range Signature {
		if data[i] != b {
			return nil, pngerr.New(pngerr.BadSignature)
		}
	}

	r := chunk.NewReader(data[len(Signature):])
	info := &ImageInfo{}

	var (
		first       = true
		seenIHDR    bool
		seenPLTE    bool
		seenGAMA    bool
		idatStarted bool
		idatClosed  bool // a non-IDAT chunk appeared after IDAT started
		sawIEND     bool
	)

	for !r.AtEnd() {
		c, err := r.Next()
		if err != nil {
			return nil, err
		}

		if first && c.Type != chunk.TypeIHDR {
			return nil, pngerr.New(pngerr.IhdrNotFound)
		}
		first = false

		if cfg.CheckCRC {
			w := crc32table.NewWriter()
			w.Write(c.Type[:])
			w.Write(c.Data)
			if w.Sum32() != c.CRC {
				return nil, pngerr.New(pngerr.CrcMismatch)
			}
		}

		// IDAT contiguity (spec.md §4.H open question: "the source does
		// not enforce contiguity; a spec-faithful implementation
		// should" — resolved in SPEC_FULL.md §9 item 3 as "enforced").
		if c.Type == chunk.TypeIDAT {
			if idatClosed {
				return nil, pngerr.New(pngerr.InvalidFile)
			}
			idatStarted = true
		} else if idatStarted {
			idatClosed = true
		}

		switch c.Type {
		case chunk.TypeIHDR:
			if seenIHDR {
				return nil, pngerr.New(pngerr.MultipleIhdr)
			}
			if err := parseIHDR(c.Data, cfg, info); err != nil {
				return nil, err
			}
			seenIHDR = true

		case chunk.TypePLTE:
			if info.ColorType == Greyscale || info.ColorType == GreyscaleAlpha {
				return nil, pngerr.New(pngerr.UnexpectedPlte)
			}
			if seenPLTE {
				return nil, pngerr.New(pngerr.InvalidFile)
			}
			if len(c.Data)%3 != 0 || len(c.Data) == 0 {
				return nil, pngerr.New(pngerr.InvalidFile)
			}
			info.PLTE = append([]byte{}, c.Data...)
			seenPLTE = true

		case chunk.TypeGAMA:
			if seenPLTE || idatStarted {
				return nil, pngerr.New(pngerr.GamaAfterPlte)
			}
			if seenGAMA {
				return nil, pngerr.New(pngerr.MultipleGama)
			}
			if len(c.Data) != 4 {
				return nil, pngerr.New(pngerr.InvalidFile)
			}
			g := binary.BigEndian.Uint32(c.Data)
			info.Gamma = &g
			seenGAMA = true

		case chunk.TypeIDAT:
			if int(c.Length) > maxIdatLength {
				return nil, pngerr.New(pngerr.IdatSizeLimit)
			}
			info.Compressed = appendGrowing(info.Compressed, c.Data, cfg.IDATBlockSize)

		case chunk.TypeIEND:
			if !idatStarted {
				return nil, pngerr.New(pngerr.NoIdat)
			}
			if info.ColorType == Indexed && !seenPLTE {
				return nil, pngerr.New(pngerr.NoPlte)
			}
			sawIEND = true

		default:
			if !c.Type.IsAncillary() {
				// Unknown critical chunk (spec.md §4.H open question 3,
				// resolved in SPEC_FULL.md §9 item 4: unknown ancillary
				// chunks are skipped, unknown critical chunks still fail).
				return nil, pngerr.New(pngerr.InvalidFile)
			}
		}

		if sawIEND {
			break
		}
	}

	if !sawIEND {
		return nil, pngerr.New(pngerr.InvalidFile)
	}

	uncompressed, err := zlib.Inflate(info.Compressed)
	if err != nil {
		return nil, err
	}
	info.Uncompressed = uncompressed

	return info, nil
}

// appendGrowing appends data to buf, pre-growing buf's capacity by
// doubling from floor when needed (spec.md §4.H: "doubling the buffer
// capacity from a 4 KiB floor"). Growth allocations come from the shared
// size-bucketed pool; a buffer superseded by a larger one is returned to
// the pool immediately since IDAT accumulation only ever grows forward.
func appendGrowing(buf, data []byte, floor int) []byte {
	need := len(buf) + len(data)
	if cap(buf) >= need {
		return append(buf, data...)
	}
	newCap := cap(buf)
	if newCap < floor {
		newCap = floor
	}
	for newCap < need {
		newCap *= 2
	}
	grown := pool.Get(newCap)[:len(buf)]
	copy(grown, buf)
	if cap(buf) >= floor {
		pool.Put(buf)
	}
	return append(grown, data...)
}

// parseIHDR validates and fills in the fixed IHDR fields (spec.md §4.H).
func parseIHDR(data []byte, cfg Config, info *ImageInfo) error {
	if len(data) != 13 {
		return pngerr.New(pngerr.CorruptIhdr)
	}

	width := binary.BigEndian.Uint32(data[0:4])
	height := binary.BigEndian.Uint32(data[4:8])
	bitDepth := data[8]
	colorType := ColorType(data[9])
	compressionMethod := data[10]
	filterMethod := data[11]
	interlaceMethod := data[12]

	allowed, ok := allowedBitDepths[colorType]
	if !ok {
		return pngerr.New(pngerr.BadColourType)
	}
	switch bitDepth {
	case 1, 2, 4, 8, 16:
	default:
		return pngerr.New(pngerr.BadBitDepth)
	}
	if !allowed[bitDepth] {
		return pngerr.New(pngerr.BadBitDepthCombination)
	}
	if compressionMethod != 0 || filterMethod != 0 {
		return pngerr.New(pngerr.CorruptIhdr)
	}
	if interlaceMethod != 0 && interlaceMethod != 1 {
		return pngerr.New(pngerr.BadInterlace)
	}
	if width == 0 || height == 0 {
		return pngerr.New(pngerr.ZeroSize)
	}
	if width > cfg.MaxImageDimension || height > cfg.MaxImageDimension {
		return pngerr.New(pngerr.ImageTooBig)
	}

	info.Width = width
	info.Height = height
	info.BitDepth = bitDepth
	info.ColorType = colorType
	info.Interlace = interlaceMethod
	return nil
}
