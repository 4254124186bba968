package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Describe returns a one-line text summary of an image file: name,
// pixel dimensions when decodable, and size on disk. It is the render
// output for MethodNone and the fallback shown after render failures.
func Describe(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}

	summary := filepath.Base(path)
	if w, h, err := Dimensions(path); err == nil {
		summary += fmt.Sprintf(" (%dx%d)", w, h)
	}
	summary += " - " + FormatFileSize(fi.Size())
	return summary, nil
}

// Dimensions returns the pixel width and height of an image file. Only
// the header is decoded, never the full pixel data.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// FormatFileSize renders a byte count in human-readable units.
func FormatFileSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", size, units[0])
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}
