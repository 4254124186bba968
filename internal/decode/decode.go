// Package decode normalizes textual clipboard or stream content into raw
// image bytes. It understands data: URIs, bare base64 payloads, and
// binary bytes stuffed into a text-typed slot; decoded output is only
// accepted when imgsig confirms an image signature.
package decode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/KooshaPari/KlipDot/internal/imgsig"
)

// ErrInvalidDataURL reports a data:image/ URI whose base64 payload could
// not be decoded. This is terminal for the attempt: a declared data URI
// with a broken payload is never reinterpreted as something else.
var ErrInvalidDataURL = errors.New("invalid data URL")

// ErrNotImage reports content that decoded cleanly under no strategy, or
// whose decoded bytes carried no image signature. For ordinary clipboard
// text this is the overwhelmingly common, expected outcome.
var ErrNotImage = errors.New("content is not image data")

const dataURLPrefix = "data:image/"

// Bare base64 shorter than this is never attempted; short alphanumeric
// strings ("hello", commit hashes) are valid base64 by charset alone.
const minBase64Len = 100

// Decode normalizes content into raw image bytes and the detected
// format. The strategies, in order: data URI, plausible bare base64,
// raw bytes. Content matching none of them returns ErrNotImage.
func Decode(content string) ([]byte, imgsig.Format, error) {
	if strings.HasPrefix(content, dataURLPrefix) {
		return decodeDataURL(content)
	}

	if isPlausibleBase64(content) {
		if data, err := base64.StdEncoding.DecodeString(content); err == nil {
			if format := imgsig.Detect(data); format != imgsig.FormatUnknown {
				return data, format, nil
			}
			// Valid base64 text with no signature: plain text that
			// happens to fit the alphabet, not an image.
		}
	}

	// Some terminals and clipboard tools place binary image bytes
	// directly into a text-typed slot.
	raw := []byte(content)
	if format := imgsig.Detect(raw); format != imgsig.FormatUnknown {
		return raw, format, nil
	}

	return nil, imgsig.FormatUnknown, ErrNotImage
}

// IsImageContent reports whether content would decode to image bytes
// under any strategy, without returning them.
func IsImageContent(content string) bool {
	_, _, err := Decode(content)
	return err == nil
}

func decodeDataURL(content string) ([]byte, imgsig.Format, error) {
	comma := strings.IndexByte(content, ',')
	if comma < 0 {
		return nil, imgsig.FormatUnknown, fmt.Errorf("%w: missing comma separator", ErrInvalidDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(content[comma+1:])
	if err != nil {
		return nil, imgsig.FormatUnknown, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}

	return data, imgsig.Detect(data), nil
}

// isPlausibleBase64 applies the cheap pre-filter before attempting a
// bare decode: standard alphabet only, and long enough that accidental
// charset matches are unlikely.
func isPlausibleBase64(content string) bool {
	if len(content) <= minBase64Len {
		return false
	}
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=':
		default:
			return false
		}
	}
	return true
}
