// Package pngdecode implements a pure Go decoder for the PNG image format.
//
// It parses the chunk structure directly (IHDR, PLTE, gAMA, IDAT, IEND),
// runs its own zlib/DEFLATE implementation over the concatenated IDAT
// payload, and reassembles scanlines (defiltering, palette resolution)
// without depending on compress/flate or image/png. It registers itself
// with the standard library's image package so that image.Decode can
// transparently read PNG files.
//
// Basic usage for decoding:
//
//	img, err := pngdecode.Decode(reader)
//
// Basic usage for inspecting a file without building an image:
//
//	feat, err := pngdecode.GetFeatures(reader)
package pngdecode
