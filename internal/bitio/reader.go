// Package bitio implements the LSB-first bit reader DEFLATE needs
// (spec.md §4.A). The code-length vectors used during Huffman table
// construction live in internal/deflate, not here.
//
// The design mirrors the teacher's internal/bitio.LosslessReader: a wide
// register (code_buf) refilled from the byte stream in bulk, with bits
// consumed LSB-first and shifted out as they're read. DEFLATE only ever
// needs up to 16 bits per call (a Huffman code is at most 15 bits, plus
// separate extra-bits reads of at most 13), so a 32-bit register refilled
// to 25+ bits is always enough headroom for one call without an
// intermediate refill.
package bitio

// Reader is the BitReader of spec.md §4.A: wraps a byte slice with a
// 32-bit code buffer and a count of valid low bits in it.
type Reader struct {
	data []byte
	pos  int // byte cursor into data

	codeBuf   uint32
	codeBits  uint // number of valid low bits in codeBuf, 0..32
	pastEnd   bool // a read was attempted with no bits left to satisfy it
}

// NewReader creates a Reader over data, with the cursor at the start.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Refill shifts bytes from the input into codeBuf until at least 25 bits
// are buffered or the byte cursor reaches the end of data. 25 is the
// spec.md §4.A threshold: it leaves enough room for one more byte without
// overflowing the 32-bit buffer mid-shift.
func (r *Reader) Refill() {
	for r.codeBits < 25 && r.pos < len(r.data) {
		r.codeBuf |= uint32(r.data[r.pos]) << r.codeBits
		r.pos++
		r.codeBits += 8
	}
}

// GetBits reads n bits (0 <= n <= 16) LSB-first from the stream, refilling
// first if necessary, and returns them as the low n bits of the result.
// If fewer than n bits remain anywhere in the stream it returns the
// zero-extended remainder and records the over-read, reported by Failed;
// callers turn that into pngerr.CorruptedFile.
func (r *Reader) GetBits(n uint) uint32 {
	if r.codeBits < n {
		r.Refill()
	}
	if r.codeBits < n {
		// Not enough bits anywhere in the stream: spec.md §4.A says treat
		// missing bits as a failure, but DEFLATE's own block-end /
		// BFINAL framing means callers rarely hit this in valid input.
		// Zero-extend and flag so the caller can fail the decode.
		r.pastEnd = true
		val := r.codeBuf & mask(n)
		r.codeBuf = 0
		r.codeBits = 0
		return val
	}
	val := r.codeBuf & mask(n)
	r.codeBuf >>= n
	r.codeBits -= n
	return val
}

// PeekBits returns the low n bits without consuming them, refilling first
// if necessary. Used by the Huffman decoder, which must peek max_code_bits
// to index the table before knowing how many bits the matched code
// actually used.
func (r *Reader) PeekBits(n uint) uint32 {
	if r.codeBits < n {
		r.Refill()
	}
	return r.codeBuf & mask(n)
}

// Consume discards n already-peeked bits (n <= current buffered bits in
// the common case; if fewer are buffered than requested, Consume empties
// the buffer and the over-read is reported by Failed right away).
func (r *Reader) Consume(n uint) {
	if n >= r.codeBits {
		r.pastEnd = r.pastEnd || n > r.codeBits
		r.codeBuf = 0
		r.codeBits = 0
		return
	}
	r.codeBuf >>= n
	r.codeBits -= n
}

// AlignToByte discards the low codeBits%8 bits, so the next GetBits call
// starts at a byte boundary of the underlying stream (used before reading
// a stored block's LEN/NLEN fields).
func (r *Reader) AlignToByte() {
	drop := r.codeBits % 8
	r.Consume(drop)
}

// ReadAlignedBytes reads n bytes directly from the byte cursor. The
// caller must have called AlignToByte first, so the buffered bits are a
// whole number of bytes; those buffered bytes are handed back to the byte
// cursor first so none of them is skipped.
func (r *Reader) ReadAlignedBytes(n int) ([]byte, bool) {
	if r.codeBits%8 != 0 {
		// AlignToByte was not called; refuse rather than silently misread.
		return nil, false
	}
	r.pos -= int(r.codeBits / 8)
	r.codeBuf = 0
	r.codeBits = 0
	if r.pos+n > len(r.data) {
		r.pastEnd = true
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

// EndOfStream reports whether the byte cursor has reached the end of the
// buffer and no bits remain buffered.
func (r *Reader) EndOfStream() bool {
	return r.pos >= len(r.data) && r.codeBits == 0
}

// Failed reports whether a read was attempted past the end of the stream
// with insufficient bits to satisfy it.
func (r *Reader) Failed() bool {
	return r.pastEnd
}

func mask(n uint) uint32 {
	if n >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << n) - 1
}
