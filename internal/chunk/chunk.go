// Package chunk reads one PNG chunk at a time from a byte cursor:
// big-endian length, 4-byte type, data slice, big-endian CRC (spec.md
// §4.G). Every read is bounds-checked against the buffer.
package chunk

import (
	"encoding/binary"

	"github.com/ernestoBayma/pngdecode/pngerr"
)

// HeaderSize is length(4) + type(4); Chunk.CRC is read separately after
// the variable-length data field.
const HeaderSize = 8

// MaxLength is the largest data-field length this reader accepts for any
// chunk (2^31 - 1, per spec.md §3). Callers apply a tighter limit for
// IDAT specifically (spec.md §3: "additionally rejects length > 2^30 for
// IDAT").
const MaxLength = 1<<31 - 1

// Chunk is one PNG chunk: {length, type, data, crc} (spec.md §3). Type is
// a fixed 4-byte binary identifier, not interpreted as ASCII except when
// a caller wants a human-readable name (see Type.String).
type Chunk struct {
	Length uint32
	Type   Type
	Data   []byte
	CRC    uint32
}

// Type is a PNG chunk type code: 4 raw bytes whose bit 5 of each byte
// carries PNG's ancillary/critical, public/private, and
// reserved/safe-to-copy flags (spec.md §4.H open question 4 uses byte 0's
// bit 5, the ancillary bit).
type Type [4]byte

func (t Type) String() string { return string(t[:]) }

// IsAncillary reports whether the type's first byte has its
// lower-case bit (bit 5, 0x20) set, marking the chunk as ancillary per
// the PNG spec (critical chunks have it clear).
func (t Type) IsAncillary() bool { return t[0]&0x20 != 0 }

var (
	TypeIHDR = Type{'I', 'H', 'D', 'R'}
	TypeIDAT = Type{'I', 'D', 'A', 'T'}
	TypeIEND = Type{'I', 'E', 'N', 'D'}
	TypePLTE = Type{'P', 'L', 'T', 'E'}
	TypeGAMA = Type{'g', 'A', 'M', 'A'}
)

// Reader walks a byte buffer one chunk at a time (spec.md §3 "Reader").
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at the start of data. Callers are
// expected to have already consumed the 8-byte PNG signature.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current byte cursor, useful for error context.
func (r *Reader) Offset() int { return r.pos }

// AtEnd reports whether the cursor has consumed the entire buffer.
func (r *Reader) AtEnd() bool { return r.pos >= len(r.data) }

// Next reads one chunk starting at the current cursor and advances past
// it. Every field read is bounds-checked; a read that would pass the end
// of the buffer fails with pngerr.CorruptedFile (spec.md §4.G).
func (r *Reader) Next() (Chunk, error) {
	if len(r.data)-r.pos < HeaderSize {
		return Chunk{}, pngerr.New(pngerr.CorruptedFile)
	}
	length := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	if length > MaxLength {
		return Chunk{}, pngerr.New(pngerr.CorruptedFile)
	}
	var typ Type
	copy(typ[:], r.data[r.pos+4:r.pos+8])
	r.pos += HeaderSize

	end := r.pos + int(length)
	if end < r.pos || end > len(r.data) {
		return Chunk{}, pngerr.New(pngerr.CorruptedFile)
	}
	data := r.data[r.pos:end]
	r.pos = end

	if len(r.data)-r.pos < 4 {
		return Chunk{}, pngerr.New(pngerr.CorruptedFile)
	}
	crc := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4

	return Chunk{Length: length, Type: typ, Data: data, CRC: crc}, nil
}
