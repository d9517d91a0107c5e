// Package deflate implements the DEFLATE (RFC 1951) block decoder:
// stored, fixed-Huffman, and dynamic-Huffman blocks, resolving
// length/distance back-references against the already-emitted output
// (spec.md §4.E). This is one of the three components the whole decoder
// exists to implement from scratch, in the same spirit as the teacher's
// internal/lossless package hand-building its own LZ77-style
// backward-reference decode loop (decodeImageData / copyBlock32) instead
// of reusing compress/flate.
package deflate

import (
	"github.com/ernestoBayma/pngdecode/internal/bitio"
	"github.com/ernestoBayma/pngdecode/internal/huffman"
	"github.com/ernestoBayma/pngdecode/pngerr"
)

const maxBackref = 258

var (
	fixedLitTable  *huffman.Table
	fixedDistTable *huffman.Table
)

func init() {
	// Fixed-Huffman tables never change, so they're built once at package
	// init rather than per block. This mirrors spec.md §5's guidance to
	// guard the lazily-built fixed table behind deterministic, idempotent
	// construction; building eagerly at init sidesteps the race entirely.
	var err error
	fixedLitTable, err = huffman.Build(fixedLitLens(), 9)
	if err != nil {
		panic("deflate: invalid fixed literal/length table: " + err.Error())
	}
	fixedDistTable, err = huffman.Build(fixedDistLens(), 5)
	if err != nil {
		panic("deflate: invalid fixed distance table: " + err.Error())
	}
}

// DecodeBlock decodes one DEFLATE block from br, appending literal and
// back-reference bytes to *out. It returns final=true when this was the
// last block in the stream (BFINAL==1).
func DecodeBlock(br *bitio.Reader, out *[]byte) (final bool, err error) {
	bfinal := br.GetBits(1)
	btype := br.GetBits(2)

	switch btype {
	case 0: // stored
		err = decodeStored(br, out)
	case 1: // fixed Huffman
		err = decodeHuffmanBlock(br, fixedLitTable, fixedDistTable, out)
	case 2: // dynamic Huffman
		err = decodeDynamicBlock(br, out)
	default: // 3 is reserved
		err = pngerr.New(pngerr.CorruptedFile)
	}
	if err != nil {
		return false, err
	}
	if br.Failed() {
		return false, pngerr.New(pngerr.CorruptedFile)
	}
	return bfinal == 1, nil
}

// decodeStored implements spec.md §4.E BTYPE 00: align to a byte boundary,
// read LEN/NLEN, verify they're complements, then copy LEN bytes verbatim.
func decodeStored(br *bitio.Reader, out *[]byte) error {
	br.AlignToByte()
	lenNlen, ok := br.ReadAlignedBytes(4)
	if !ok {
		return pngerr.New(pngerr.CorruptedFile)
	}
	length := uint16(lenNlen[0]) | uint16(lenNlen[1])<<8
	nlen := uint16(lenNlen[2]) | uint16(lenNlen[3])<<8
	if length != ^nlen {
		return pngerr.New(pngerr.CorruptedFile)
	}
	data, ok := br.ReadAlignedBytes(int(length))
	if !ok {
		return pngerr.New(pngerr.CorruptedFile)
	}
	*out = append(*out, data...)
	return nil
}

// decodeDynamicBlock implements spec.md §4.E BTYPE 10.
func decodeDynamicBlock(br *bitio.Reader, out *[]byte) error {
	hlit := int(br.GetBits(5)) + 257
	hdist := int(br.GetBits(5)) + 1
	hclen := int(br.GetBits(4)) + 4

	var clcLens [19]int
	for i := 0; i < hclen; i++ {
		clcLens[clcOrder[i]] = int(br.GetBits(3))
	}
	clcTable, err := huffman.Build(clcLens[:], 7)
	if err != nil {
		return err
	}

	total := hlit + hdist
	lens := make([]int, 0, total)
	var prev int
	for len(lens) < total {
		sym, err := clcTable.Decode(br)
		if err != nil {
			return err
		}
		switch {
		case sym <= 15:
			prev = int(sym)
			lens = append(lens, prev)
		case sym == 16:
			if len(lens) == 0 {
				return pngerr.New(pngerr.CorruptedFile)
			}
			n := int(br.GetBits(2)) + 3
			for i := 0; i < n; i++ {
				lens = append(lens, prev)
			}
		case sym == 17:
			n := int(br.GetBits(3)) + 3
			for i := 0; i < n; i++ {
				lens = append(lens, 0)
			}
		case sym == 18:
			n := int(br.GetBits(7)) + 11
			for i := 0; i < n; i++ {
				lens = append(lens, 0)
			}
		default:
			return pngerr.New(pngerr.CorruptedFile)
		}
	}
	if len(lens) != total {
		return pngerr.New(pngerr.CorruptedFile)
	}

	litLens := lens[:hlit]
	distLens := lens[hlit:]

	litTable, err := huffman.Build(litLens, maxLen(litLens))
	if err != nil {
		return err
	}
	distTable, err := huffman.Build(distLens, maxLen(distLens))
	if err != nil {
		return err
	}
	return decodeHuffmanBlock(br, litTable, distTable, out)
}

func maxLen(lens []int) uint8 {
	var m int
	for _, l := range lens {
		if l > m {
			m = l
		}
	}
	if m == 0 {
		m = 1 // Build rejects maxBits==0; an all-zero table still needs a shape.
	}
	return uint8(m)
}

// decodeHuffmanBlock runs spec.md §4.E's "common literal/length loop"
// against the given literal/length and distance tables.
func decodeHuffmanBlock(br *bitio.Reader, litTable, distTable *huffman.Table, out *[]byte) error {
	for {
		sym, err := litTable.Decode(br)
		if err != nil {
			return err
		}

		switch {
		case sym < 256:
			*out = append(*out, byte(sym))

		case sym == 256:
			return nil

		case sym <= 285:
			li := int(sym) - 257
			length := lengthBase[li] + int(br.GetBits(lengthExtraBits[li]))

			dsym, err := distTable.Decode(br)
			if err != nil {
				return err
			}
			if int(dsym) >= len(distBase) {
				return pngerr.New(pngerr.CorruptedFile)
			}
			distance := distBase[dsym] + int(br.GetBits(distExtraBits[dsym]))

			if distance > len(*out) || length > maxBackref {
				return pngerr.New(pngerr.CorruptedFile)
			}
			// Copy byte-by-byte: overlapping runs (distance < length) are
			// the RLE trick DEFLATE relies on, and only a byte-at-a-time
			// copy gives the right result when src and dst overlap.
			start := len(*out) - distance
			for i := 0; i < length; i++ {
				*out = append(*out, (*out)[start+i])
			}

		default: // sym >= 286 is reserved in the literal/length alphabet
			return pngerr.New(pngerr.CorruptedFile)
		}
	}
}
