// Package imgsig classifies byte buffers as image data using magic-byte
// signatures. Classification never consults file extensions or declared
// MIME types, since both are producer-controlled and unreliable across
// clipboard tools.
package imgsig

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a recognized image format.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatWEBP
	FormatTIFF
	FormatICO
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatBMP:
		return "bmp"
	case FormatWEBP:
		return "webp"
	case FormatTIFF:
		return "tiff"
	case FormatICO:
		return "ico"
	default:
		return "unknown"
	}
}

// Extension returns the preferred file extension for the format, without
// the leading dot. Unknown formats default to "png" so that materialized
// files always carry a usable name.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatUnknown:
		return "png"
	default:
		return f.String()
	}
}

var (
	pngMagic    = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic   = []byte{0xFF, 0xD8, 0xFF}
	tiffLEMagic = []byte{0x49, 0x49, 0x2A, 0x00}
	tiffBEMagic = []byte{0x4D, 0x4D, 0x00, 0x2A}
	icoMagic    = []byte{0x00, 0x00, 0x01, 0x00}
	riffMagic   = []byte("RIFF")
	webpFourCC  = []byte("WEBP")
	gif87aMagic = []byte("GIF87a")
	gif89aMagic = []byte("GIF89a")
	bmpMagic    = []byte("BM")
)

// Detect classifies data by matching magic prefixes in fixed priority
// order. It returns FormatUnknown for empty, short, or unrecognized
// buffers; it never fails. A buffer shorter than one signature's prefix
// is only rejected for that signature, not for the whole buffer.
func Detect(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// PNG: exact 8-byte sequence.
	if bytes.HasPrefix(data, pngMagic) {
		return FormatPNG
	}

	// JPEG: 3-byte prefix only. JFIF, EXIF, and raw streams differ in
	// the fourth byte, so requiring one would miss valid files.
	if bytes.HasPrefix(data, jpegMagic) {
		return FormatJPEG
	}

	// GIF: 6-byte ASCII version stamp.
	if bytes.HasPrefix(data, gif87aMagic) || bytes.HasPrefix(data, gif89aMagic) {
		return FormatGIF
	}

	// WEBP: RIFF container with WEBP FourCC at offset 8. Checked before
	// BMP so a hypothetical "BM.."-prefixed RIFF cannot shadow it.
	if len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], webpFourCC) {
		return FormatWEBP
	}

	// TIFF: little- or big-endian byte-order mark.
	if bytes.HasPrefix(data, tiffLEMagic) || bytes.HasPrefix(data, tiffBEMagic) {
		return FormatTIFF
	}

	// ICO.
	if bytes.HasPrefix(data, icoMagic) {
		return FormatICO
	}

	// BMP: 2-byte prefix, checked last because it is the weakest
	// signature.
	if bytes.HasPrefix(data, bmpMagic) {
		return FormatBMP
	}

	return FormatUnknown
}

// IsImage reports whether data carries any recognized image signature.
func IsImage(data []byte) bool {
	return Detect(data) != FormatUnknown
}

// imageExtensions covers the extensions the reference scanner and the
// live tracker accept. SVG has no magic signature but is a legitimate
// reference target.
var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {},
	".webp": {}, ".svg": {}, ".tiff": {}, ".tif": {}, ".ico": {},
}

// HasImageExtension reports whether path ends in a supported image
// extension, case-insensitive. This is the cheap per-keystroke check; it
// does not read the file.
func HasImageExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := imageExtensions[ext]
	return ok
}
