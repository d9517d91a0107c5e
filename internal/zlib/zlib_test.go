package zlib

import (
	"bytes"
	"testing"

	"github.com/ernestoBayma/pngdecode/pngerr"
)

func TestInflateRoundTrip(t *testing.T) {
	raw := []byte{
		0x78, 0xda, 0xcb, 0x48, 0xcd, 0xc9, 0xc9, 0x57, 0x08, 0xf0, 0x73, 0x57, 0xa8, 0xca, 0xc9, 0x4c,
		0x52, 0x28, 0xcf, 0x2f, 0xca, 0x49, 0x51, 0x54, 0xc8, 0xc0, 0x26, 0x0a, 0x00, 0x47, 0x0a, 0x0e,
		0xc7,
	}
	got, err := Inflate(raw)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	want := []byte("hello PNG zlib world! hello PNG zlib world!")
	if !bytes.Equal(got, want) {
		t.Fatalf("Inflate() = %q, want %q", got, want)
	}
}

func TestInflateBadHeaderFCheck(t *testing.T) {
	_, err := Inflate([]byte{0x78, 0x9d}) // valid method, invalid FCHECK
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.ZlibHeaderCorrupted {
		t.Fatalf("Inflate() err = %v, want ZlibHeaderCorrupted", err)
	}
}

func TestInflateWrongMethod(t *testing.T) {
	// CMF=0x77 (method 7) with a valid FCHECK for FLG=0x01.
	cmf := byte(0x77)
	var flg byte
	for f := 0; f < 256; f++ {
		if (uint16(cmf)*256+uint16(f))%31 == 0 {
			flg = byte(f)
			break
		}
	}
	_, err := Inflate([]byte{cmf, flg})
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.ZlibCompression {
		t.Fatalf("Inflate() err = %v, want ZlibCompression", err)
	}
}

func TestInflatePresetDictRejected(t *testing.T) {
	cmf := byte(0x78)
	var flg byte
	for f := 0x20; f < 256; f++ {
		if (uint16(cmf)*256+uint16(f))%31 == 0 {
			flg = byte(f)
			break
		}
	}
	_, err := Inflate([]byte{cmf, flg})
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.PresetDict {
		t.Fatalf("Inflate() err = %v, want PresetDict", err)
	}
}

func TestInflateTruncatedHeader(t *testing.T) {
	_, err := Inflate([]byte{0x78})
	perr, ok := err.(*pngerr.Error)
	if !ok || perr.Kind != pngerr.ZlibHeaderCorrupted {
		t.Fatalf("Inflate() err = %v, want ZlibHeaderCorrupted", err)
	}
}
