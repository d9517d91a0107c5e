package pngdecode

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"github.com/ernestoBayma/pngdecode/internal/decoder"
	"github.com/ernestoBayma/pngdecode/internal/raster"
	"github.com/ernestoBayma/pngdecode/pngerr"
)

func init() {
	image.RegisterFormat("png", string(decoder.Signature[:]), Decode, DecodeConfig)
}

// ImageInfo is the decoded chunk/zlib-stage record: dimensions, IHDR
// fields, and the raw (still filtered) pixel bytes. Re-exported from
// internal/decoder so callers of DecodeInfo never need to import an
// internal package.
type ImageInfo = decoder.ImageInfo

// ColorType is the PNG colour_type IHDR field.
type ColorType = decoder.ColorType

// Config holds the decoder's runtime limits (dimension cap, CRC
// verification, IDAT accumulator floor).
type Config = decoder.Config

// DefaultConfig returns the default Config: CRC verification on, a 2^24
// pixel cap on width and height, and a 4 KiB IDAT accumulator floor.
func DefaultConfig() Config { return decoder.DefaultConfig() }

// ErrInterlaceUnsupported is returned by Decode/ToImage when the source
// IHDR declares interlace_method == 1 (Adam7): dimensions and the raw
// zlib/DEFLATE output are still available via DecodeInfo, but pixel
// reordering into an image.Image is out of scope.
var ErrInterlaceUnsupported = pngerr.Sentinel(pngerr.InterlaceUnsupported)

// Features describes a PNG file's properties, as returned by [GetFeatures].
type Features struct {
	Width      int
	Height     int
	ColorType  decoder.ColorType
	BitDepth   uint8
	HasAlpha   bool
	HasPalette bool
	Gamma      *uint32
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of the
// repeated doublings io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// DecodeInfo decodes the full chunk state machine and zlib/DEFLATE stage
// over data, using the default Config (CRC checking on, 2^24 pixel cap on
// width and height, 4 KiB IDAT accumulator floor). It is the direct entry point for
// callers that want the raw ImageInfo rather than an image.Image.
func DecodeInfo(data []byte) (*ImageInfo, error) {
	return DecodeInfoWithConfig(data, DefaultConfig())
}

// DecodeInfoWithConfig is DecodeInfo with an explicit Config.
func DecodeInfoWithConfig(data []byte, cfg Config) (*ImageInfo, error) {
	info, err := decoder.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "pngdecode: decoding chunks")
	}
	return info, nil
}

// Decode reads a PNG image from r and returns it as an image.Image.
// Greyscale images decode to *image.Gray or *image.Gray16, indexed images
// to *image.Paletted, and everything else to *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("pngdecode: reading data: %w", err)
	}
	info, err := DecodeInfo(data)
	if err != nil {
		return nil, err
	}
	return ToImage(info)
}

// DecodeConfig returns the color model and dimensions of a PNG image
// without defiltering or resolving pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("pngdecode: reading data: %w", err)
	}
	info, err := DecodeInfo(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: colorModelFor(info),
		Width:      int(info.Width),
		Height:     int(info.Height),
	}, nil
}

// GetFeatures runs the same chunk and zlib/DEFLATE stages as DecodeInfo
// and reports dimensions, colour type, and gamma, without defiltering
// scanlines.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("pngdecode: reading data: %w", err)
	}
	info, err := DecodeInfo(data)
	if err != nil {
		return nil, err
	}
	return &Features{
		Width:      int(info.Width),
		Height:     int(info.Height),
		ColorType:  info.ColorType,
		BitDepth:   info.BitDepth,
		HasAlpha:   info.ColorType == decoder.GreyscaleAlpha || info.ColorType == decoder.TruecolorAlpha,
		HasPalette: info.PLTE != nil,
		Gamma:      info.Gamma,
	}, nil
}

func colorModelFor(info *decoder.ImageInfo) color.Model {
	switch info.ColorType {
	case decoder.Greyscale:
		if info.BitDepth == 16 {
			return color.Gray16Model
		}
		return color.GrayModel
	case decoder.Indexed:
		return color.RGBAModel // palette itself carries no alpha
	default:
		return color.NRGBAModel
	}
}

// ToImage defilters and, for indexed images, resolves palette entries,
// producing a standard-library image.Image. Interlaced sources
// (interlace_method == 1) return ErrInterlaceUnsupported: DecodeInfo still
// succeeds for them, only pixel reassembly is out of scope.
func ToImage(info *decoder.ImageInfo) (image.Image, error) {
	if info.Interlace != 0 {
		return nil, ErrInterlaceUnsupported
	}

	channels := info.ColorType.Channels()
	processed, err := raster.Defilter(info.Uncompressed, info.Width, info.Height, channels, info.BitDepth)
	if err != nil {
		return nil, errors.Wrap(err, "pngdecode: defiltering")
	}

	switch info.ColorType {
	case decoder.Indexed:
		return buildPaletted(info, processed)
	case decoder.Greyscale:
		return buildGray(info, processed)
	default:
		return buildNRGBA(info, processed)
	}
}

func buildPaletted(info *decoder.ImageInfo, processed []byte) (*image.Paletted, error) {
	pal := make(color.Palette, len(info.PLTE)/3)
	for i := range pal {
		p := info.PLTE[i*3 : i*3+3]
		pal[i] = color.RGBA{p[0], p[1], p[2], 255}
	}

	img := image.NewPaletted(image.Rect(0, 0, int(info.Width), int(info.Height)), pal)
	stride := raster.Stride(info.Width, 1, info.BitDepth)
	for y := 0; y < int(info.Height); y++ {
		row := processed[y*stride : (y+1)*stride]
		for x := 0; x < int(info.Width); x++ {
			idx := raster.SampleAt(row, x, info.BitDepth)
			if int(idx) >= len(pal) {
				return nil, pngerr.Newf(pngerr.PaletteIndexOOB, "index %d at (%d,%d)", idx, x, y)
			}
			img.SetColorIndex(x, y, byte(idx))
		}
	}
	return img, nil
}

func buildGray(info *decoder.ImageInfo, processed []byte) (image.Image, error) {
	stride := raster.Stride(info.Width, 1, info.BitDepth)
	if info.BitDepth == 16 {
		img := image.NewGray16(image.Rect(0, 0, int(info.Width), int(info.Height)))
		for y := 0; y < int(info.Height); y++ {
			row := processed[y*stride : (y+1)*stride]
			for x := 0; x < int(info.Width); x++ {
				v := raster.SampleAt(row, x, info.BitDepth)
				img.SetGray16(x, y, color.Gray16{Y: v})
			}
		}
		return img, nil
	}
	img := image.NewGray(image.Rect(0, 0, int(info.Width), int(info.Height)))
	maxVal := (1 << info.BitDepth) - 1
	for y := 0; y < int(info.Height); y++ {
		row := processed[y*stride : (y+1)*stride]
		for x := 0; x < int(info.Width); x++ {
			v := int(raster.SampleAt(row, x, info.BitDepth))
			img.SetGray(x, y, color.Gray{Y: byte(v * 255 / maxVal)})
		}
	}
	return img, nil
}

func buildNRGBA(info *decoder.ImageInfo, processed []byte) (*image.NRGBA, error) {
	channels := info.ColorType.Channels()
	hasAlpha := info.ColorType == decoder.GreyscaleAlpha || info.ColorType == decoder.TruecolorAlpha
	isGrey := info.ColorType == decoder.GreyscaleAlpha

	stride := raster.Stride(info.Width, channels, info.BitDepth)
	img := image.NewNRGBA(image.Rect(0, 0, int(info.Width), int(info.Height)))
	bytesPerSample := 1
	if info.BitDepth == 16 {
		bytesPerSample = 2
	}

	for y := 0; y < int(info.Height); y++ {
		row := processed[y*stride : (y+1)*stride]
		for x := 0; x < int(info.Width); x++ {
			base := x * channels * bytesPerSample
			read := func(ch int) byte {
				off := base + ch*bytesPerSample
				if bytesPerSample == 2 {
					return row[off] // high byte, big-endian 16-bit truncated to 8-bit display depth
				}
				return row[off]
			}

			var r, g, b, a byte
			a = 255
			switch {
			case isGrey:
				r, g, b = read(0), read(0), read(0)
				if hasAlpha {
					a = read(1)
				}
			default:
				r, g, b = read(0), read(1), read(2)
				if hasAlpha {
					a = read(3)
				}
			}

			di := img.PixOffset(x, y)
			img.Pix[di] = r
			img.Pix[di+1] = g
			img.Pix[di+2] = b
			img.Pix[di+3] = a
		}
	}
	return img, nil
}
