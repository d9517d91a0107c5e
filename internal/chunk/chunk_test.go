package chunk

import (
	"encoding/binary"
	"testing"

	"github.com/ernestoBayma/pngdecode/pngerr"
)

func encodeChunk(typ Type, data []byte, crc uint32) []byte {
	buf := make([]byte, HeaderSize+len(data)+4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:8], typ[:])
	copy(buf[8:], data)
	binary.BigEndian.PutUint32(buf[8+len(data):], crc)
	return buf
}

func TestNextReadsIHDR(t *testing.T) {
	ihdrData := []byte{0, 0, 0, 32, 0, 0, 0, 32, 8, 2, 0, 0, 0}
	buf := encodeChunk(TypeIHDR, ihdrData, 0xdeadbeef)

	r := NewReader(buf)
	c, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.Type != TypeIHDR {
		t.Fatalf("Type = %v, want IHDR", c.Type)
	}
	if c.Length != 13 {
		t.Fatalf("Length = %d, want 13", c.Length)
	}
	if c.CRC != 0xdeadbeef {
		t.Fatalf("CRC = %#x, want 0xdeadbeef", c.CRC)
	}
	if !r.AtEnd() {
		t.Fatalf("expected reader to be at end after one chunk")
	}
}

func TestNextTwoChunks(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeChunk(TypeIDAT, []byte("AB"), 1)...)
	buf = append(buf, encodeChunk(TypeIEND, nil, 2)...)

	r := NewReader(buf)
	c1, err := r.Next()
	if err != nil {
		t.Fatalf("Next 1: %v", err)
	}
	if string(c1.Data) != "AB" {
		t.Fatalf("chunk 1 data = %q, want AB", c1.Data)
	}
	c2, err := r.Next()
	if err != nil {
		t.Fatalf("Next 2: %v", err)
	}
	if c2.Type != TypeIEND {
		t.Fatalf("chunk 2 type = %v, want IEND", c2.Type)
	}
	if !r.AtEnd() {
		t.Fatalf("expected reader to be at end")
	}
}

func TestNextTruncatedHeader(t *testing.T) {
	r := NewReader([]byte{0, 0, 0})
	_, err := r.Next()
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.CorruptedFile {
		t.Fatalf("Next() err = %v, want CorruptedFile", err)
	}
}

func TestNextTruncatedData(t *testing.T) {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], 100) // claims 100 bytes of data
	copy(buf[4:8], TypeIDAT[:])
	r := NewReader(buf)
	_, err := r.Next()
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.CorruptedFile {
		t.Fatalf("Next() err = %v, want CorruptedFile", err)
	}
}

func TestNextMissingCRC(t *testing.T) {
	buf := make([]byte, HeaderSize+2)
	binary.BigEndian.PutUint32(buf[0:4], 2)
	copy(buf[4:8], TypeIDAT[:])
	r := NewReader(buf)
	_, err := r.Next()
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.CorruptedFile {
		t.Fatalf("Next() err = %v, want CorruptedFile", err)
	}
}

func TestTypeIsAncillary(t *testing.T) {
	if TypeIHDR.IsAncillary() {
		t.Fatalf("IHDR should be critical, not ancillary")
	}
	if !TypeGAMA.IsAncillary() {
		t.Fatalf("gAMA should be ancillary")
	}
	unknown := Type{'z', 'T', 'X', 't'}
	if !unknown.IsAncillary() {
		t.Fatalf("lower-case-first unknown type should report ancillary")
	}
}
