// Package raster turns a decoded PNG's raw DEFLATE output into pixel
// samples: undoing the per-scanline filter (RFC 2083 §6 / PNG 1.2 §9) and,
// for indexed images, resolving palette entries to RGB. Mirrors the
// per-component predictor style of internal/dsp's VP8L predictors, applied
// to PNG's simpler byte-wise filters instead of ARGB words.
package raster

import "github.com/ernestoBayma/pngdecode/pngerr"

// Filter type bytes (PNG 1.2 §9.2).
const (
	filterNone = 0
	filterSub  = 1
	filterUp   = 2
	filterAvg  = 3
	filterPaeth = 4
)

// Stride returns the byte width of one unfiltered scanline.
func Stride(width uint32, channels int, bitDepth uint8) int {
	bitsPerPixel := channels * int(bitDepth)
	return (int(width)*bitsPerPixel + 7) / 8
}

// BytesPerPixel returns the filter's notion of "bpp": the byte distance
// back to the pixel directly to the left, minimum 1 (sub-byte-depth
// samples, e.g. 1-bit greyscale, still look back exactly one byte).
func BytesPerPixel(channels int, bitDepth uint8) int {
	bpp := (channels*int(bitDepth) + 7) / 8
	if bpp < 1 {
		return 1
	}
	return bpp
}

// Defilter strips the leading filter-type byte from every scanline of data
// and undoes it into a new buffer, returning height*stride bytes with no filter
// bytes. data must be exactly height*(1+stride) bytes.
func Defilter(data []byte, width, height uint32, channels int, bitDepth uint8) ([]byte, error) {
	stride := Stride(width, channels, bitDepth)
	bpp := BytesPerPixel(channels, bitDepth)

	want := int(height) * (1 + stride)
	if len(data) != want {
		return nil, pngerr.Newf(pngerr.InvalidFile, "uncompressed size %d, want %d", len(data), want)
	}

	out := make([]byte, int(height)*stride)
	var prevRow []byte

	for y := 0; y < int(height); y++ {
		rowStart := y * (1 + stride)
		filterType := data[rowStart]
		src := data[rowStart+1 : rowStart+1+stride]
		dst := out[y*stride : (y+1)*stride]

		if err := unfilterRow(filterType, src, dst, prevRow, bpp); err != nil {
			return nil, err
		}
		prevRow = dst
	}

	return out, nil
}

func unfilterRow(filterType byte, src, dst, prev []byte, bpp int) error {
	switch filterType {
	case filterNone:
		copy(dst, src)

	case filterSub:
		for i := range src {
			var left byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			dst[i] = src[i] + left
		}

	case filterUp:
		for i := range src {
			var up byte
			if prev != nil {
				up = prev[i]
			}
			dst[i] = src[i] + up
		}

	case filterAvg:
		for i := range src {
			var left, up int
			if i >= bpp {
				left = int(dst[i-bpp])
			}
			if prev != nil {
				up = int(prev[i])
			}
			dst[i] = src[i] + byte((left+up)/2)
		}

	case filterPaeth:
		for i := range src {
			var left, up, upLeft int
			if i >= bpp {
				left = int(dst[i-bpp])
			}
			if prev != nil {
				up = int(prev[i])
				if i >= bpp {
					upLeft = int(prev[i-bpp])
				}
			}
			dst[i] = src[i] + paeth(left, up, upLeft)
		}

	default:
		return pngerr.Newf(pngerr.BadFilterType, "filter type %d", filterType)
	}
	return nil
}

// paeth implements the PNG Paeth predictor (PNG 1.2 §9.3): pick whichever
// of left/up/upLeft is closest to left+up-upLeft.
func paeth(left, up, upLeft int) byte {
	p := left + up - upLeft
	pLeft := abs(p - left)
	pUp := abs(p - up)
	pUpLeft := abs(p - upLeft)

	if pLeft <= pUp && pLeft <= pUpLeft {
		return byte(left)
	}
	if pUp <= pUpLeft {
		return byte(up)
	}
	return byte(upLeft)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RGB is one resolved 8-bit-per-channel pixel.
type RGB struct {
	R, G, B byte
}

// ResolvePalette maps each bit_depth-packed index sample in a defiltered,
// colour_type==3 scanline set to its RGB palette entry. width/height are
// the image dimensions; palette holds 3 bytes per entry (spec.md PLTE
// layout). Returns one RGB per pixel, row-major.
func ResolvePalette(processed []byte, width, height uint32, bitDepth uint8, palette []byte) ([]RGB, error) {
	stride := Stride(width, 1, bitDepth)
	out := make([]RGB, int(width)*int(height))
	maxIndex := len(palette) / 3

	for y := 0; y < int(height); y++ {
		row := processed[y*stride : (y+1)*stride]
		for x := 0; x < int(width); x++ {
			idx := sampleAt(row, x, bitDepth)
			if int(idx) >= maxIndex {
				return nil, pngerr.Newf(pngerr.PaletteIndexOOB, "index %d at (%d,%d), palette has %d entries", idx, x, y, maxIndex)
			}
			p := palette[idx*3 : idx*3+3]
			out[y*int(width)+x] = RGB{p[0], p[1], p[2]}
		}
	}
	return out, nil
}

// sampleAt extracts the x-th sample (MSB-first within each byte, per PNG
// 1.2 §7.2) from a scanline packed at bitDepth bits per sample.
func sampleAt(row []byte, x int, bitDepth uint8) uint16 {
	switch bitDepth {
	case 8:
		return uint16(row[x])
	case 16:
		return uint16(row[x*2])<<8 | uint16(row[x*2+1])
	default:
		samplesPerByte := 8 / int(bitDepth)
		byteIdx := x / samplesPerByte
		shift := uint(8 - int(bitDepth)*(x%samplesPerByte+1))
		mask := byte(1<<bitDepth - 1)
		return uint16((row[byteIdx] >> shift) & mask)
	}
}

// SampleAt is the exported form of sampleAt, used for non-indexed colour
// types (greyscale/truecolor/alpha channels) where callers need individual
// channel samples rather than a palette lookup.
func SampleAt(row []byte, x int, bitDepth uint8) uint16 {
	return sampleAt(row, x, bitDepth)
}
