package crc32table

import "testing"

func TestChecksumIHDR(t *testing.T) {
	// IHDR for a 32x32, 8-bit, colour_type 2 image: type+data bytes taken
	// from a real PNGSuite basn2c08.png chunk.
	data := []byte{
		'I', 'H', 'D', 'R',
		0x00, 0x00, 0x00, 0x20, // width = 32
		0x00, 0x00, 0x00, 0x20, // height = 32
		0x08, 0x02, 0x00, 0x00, 0x00,
	}
	got := Checksum(data)
	const want = 0xfc18eda3
	if got != want {
		t.Fatalf("Checksum() = %#08x, want %#08x", got, want)
	}
}

func TestChecksumEmpty(t *testing.T) {
	if got := Checksum(nil); got != 0 {
		t.Fatalf("Checksum(nil) = %#08x, want 0", got)
	}
}

func TestWriterMatchesChecksum(t *testing.T) {
	data := []byte("IDATsome fake compressed payload")
	w := NewWriter()
	w.Write(data[:4])
	w.Write(data[4:])
	if got, want := w.Sum32(), Checksum(data); got != want {
		t.Fatalf("Writer.Sum32() = %#08x, want %#08x", got, want)
	}
}

func TestTableIsIdempotent(t *testing.T) {
	t1 := *Table()
	t2 := *Table()
	if t1 != t2 {
		t.Fatalf("Table() produced different results across calls")
	}
	if t1[1] != 0x77073096 {
		t.Fatalf("table[1] = %#08x, want 0x77073096 (well-known CRC-32 table entry)", t1[1])
	}
}
