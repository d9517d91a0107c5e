// Package huffman builds canonical Huffman decode tables from code-length
// vectors and decodes symbols against a bitio.Reader (spec.md §4.D).
//
// Unlike the teacher's two-level internal/lossless.BuildHuffmanTable (root
// table plus overflow sub-tables, needed because VP8L alphabets run past
// 2^15 entries), DEFLATE code lengths never exceed 15 bits, so spec.md
// specifies a single flat table of 1<<maxCodeBits entries indexed by the
// bit-reversed next maxCodeBits of the stream. The construction algorithm
// (histogram → next_code → bit-reversed fan-out) is the same idea scaled
// down to one level, and the entry shape (Bits, Symbol) mirrors the
// teacher's HuffmanCode.
package huffman

import "github.com/ernestoBayma/pngdecode/pngerr"

// MaxCodeBits is the longest Huffman code DEFLATE ever produces.
const MaxCodeBits = 15

// Entry is one slot of a Table: the number of bits the matched code
// consumes, and the symbol it decodes to. Bits == 0 marks an
// uninitialised slot (no valid code has this bit-reversed prefix).
type Entry struct {
	Bits   uint8
	Symbol uint16
}

// Table is the flat, bit-reversed-indexed Huffman decode table of
// spec.md §3: length 1<<MaxCodeBits, indexed by the bit-reversed next
// MaxCodeBits bits of the stream.
type Table struct {
	MaxCodeBits uint8
	Entries     []Entry
}

// reverseBits reverses the low n bits of v (spec.md §4.D).
func reverseBits(v uint32, n uint) uint32 {
	var out uint32
	for i := uint(0); i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

// Build constructs a canonical Huffman table from lens, a code-length
// vector indexed by symbol (each entry 0..maxBits; 0 means "symbol
// unused"). No value in lens may exceed maxBits, which is at most
// MaxCodeBits; the table has 1<<maxBits entries.
//
// This follows spec.md §4.D exactly:
//  1. histogram code lengths (hist[0] is never used to assign codes).
//  2. next_code[len] = (next_code[len-1] + hist[len-1]) << 1.
//  3. for each symbol with length L, assign the next code of that length
//     and fan it out across every table slot whose low L bits, reversed,
//     equal that code.
func Build(lens []int, maxBits uint8) (*Table, error) {
	if maxBits == 0 || maxBits > MaxCodeBits {
		return nil, pngerr.New(pngerr.BadHuffmanCodeLengths)
	}

	var hist [MaxCodeBits + 1]int
	for _, l := range lens {
		if l < 0 || l > int(maxBits) {
			return nil, pngerr.New(pngerr.BadHuffmanCodeLengths)
		}
		hist[l]++
	}
	hist[0] = 0

	// Reject over-subscribed code spaces: left counts the codes of length
	// L not yet taken by shorter codes; more codes of length L than that
	// means the lengths don't form a valid prefix code.
	var nextCode [MaxCodeBits + 2]int
	code := 0
	left := 1
	for l := 1; l <= int(maxBits); l++ {
		code = (code + hist[l-1]) << 1
		nextCode[l] = code
		left = left<<1 - hist[l]
		if left < 0 {
			return nil, pngerr.New(pngerr.BadHuffmanCodeLengths)
		}
	}

	size := 1 << maxBits
	entries := make([]Entry, size)
	for sym, l := range lens {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		shifted := uint32(c) << (uint(maxBits) - uint(l))
		fill := uint32(1) << (uint(maxBits) - uint(l))
		for e := uint32(0); e < fill; e++ {
			idx := reverseBits(shifted|e, uint(maxBits))
			entries[idx] = Entry{Bits: uint8(l), Symbol: uint16(sym)}
		}
	}

	return &Table{MaxCodeBits: maxBits, Entries: entries}, nil
}

// BitReader is the subset of bitio.Reader the decoder needs: peeking
// without consuming, then consuming a known number of bits.
type BitReader interface {
	PeekBits(n uint) uint32
	Consume(n uint)
}

// Decode reads and consumes one symbol from br using t.
func (t *Table) Decode(br BitReader) (uint16, error) {
	idx := br.PeekBits(uint(t.MaxCodeBits))
	e := t.Entries[idx]
	if e.Bits == 0 {
		return 0, pngerr.New(pngerr.CorruptedFile)
	}
	br.Consume(uint(e.Bits))
	return e.Symbol, nil
}
