package pngdecode_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ernestoBayma/pngdecode"
	"github.com/ernestoBayma/pngdecode/internal/crc32table"
)

// buildStoredPNG builds a width x height 8-bit truecolor PNG whose IDAT
// payload is a single uncompressed (stored) DEFLATE block, so the
// benchmarks measure chunk/filter/pixel-assembly overhead without being
// dominated by Huffman decode cost.
func buildStoredPNG(b *testing.B, width, height int) []byte {
	b.Helper()

	stride := 1 + width*3
	raw := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		row := raw[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			row[1+x*3] = byte(x)
			row[1+x*3+1] = byte(y)
			row[1+x*3+2] = byte(x + y)
		}
	}

	deflate := storedDeflate(raw)
	zlibStream := append([]byte{0x78, 0x01}, deflate...)

	var buf bytes.Buffer
	buf.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	writeBenchChunk(&buf, "IHDR", ihdrBytes(width, height))
	writeBenchChunk(&buf, "IDAT", zlibStream)
	writeBenchChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func ihdrBytes(width, height int) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], uint32(width))
	binary.BigEndian.PutUint32(b[4:8], uint32(height))
	b[8] = 8 // bit depth
	b[9] = 2 // truecolor
	return b
}

// storedDeflate wraps data in the minimum number of DEFLATE stored blocks
// (max 65535 bytes each, per RFC 1951 §3.2.4).
func storedDeflate(data []byte) []byte {
	var out bytes.Buffer
	const maxStored = 65535
	for len(data) > 0 {
		chunk := data
		final := byte(1)
		if len(chunk) > maxStored {
			chunk = chunk[:maxStored]
			final = 0
		}
		out.WriteByte(final) // BFINAL + BTYPE=00, byte-aligned
		var lenBuf [4]byte
		binary.LittleEndian.PutUint16(lenBuf[0:2], uint16(len(chunk)))
		binary.LittleEndian.PutUint16(lenBuf[2:4], ^uint16(len(chunk)))
		out.Write(lenBuf[:])
		out.Write(chunk)
		data = data[len(chunk):]
	}
	return out.Bytes()
}

func writeBenchChunk(buf *bytes.Buffer, typ string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.WriteString(typ)
	buf.Write(data)

	w := crc32table.NewWriter()
	w.Write([]byte(typ))
	w.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], w.Sum32())
	buf.Write(crcBuf[:])
}

func BenchmarkDecodeInfo640x480(b *testing.B) {
	data := buildStoredPNG(b, 640, 480)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pngdecode.DecodeInfo(data); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(len(data)))
}

func BenchmarkDecode640x480(b *testing.B) {
	data := buildStoredPNG(b, 640, 480)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pngdecode.Decode(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(len(data)))
}

func BenchmarkDecode64x64(b *testing.B) {
	data := buildStoredPNG(b, 64, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pngdecode.Decode(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(len(data)))
}
