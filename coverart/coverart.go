// Package coverart turns uploaded images into data URLs for embedding.
package coverart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for data that isn't a known raster format.
var ErrUnsupportedImage = errors.New("coverart: unsupported image")

// MaxBytes caps an upload; covers only render at a few hundred pixels.
const MaxBytes = 8 << 20

// Info describes a decoded cover.
type Info struct {
	Format string
	Width  int
	Height int
}

// Inspect reads the image header without decoding pixels.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("%w: empty", ErrUnsupportedImage)
	}
	if len(data) > MaxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrUnsupportedImage, len(data), MaxBytes)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// DataURL returns data as a base64 data URL with the sniffed mime type.
func DataURL(data []byte) (string, error) {
	info, err := Inspect(data)
	if err != nil {
		return "", err
	}
	return "data:image/" + info.Format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// FromFile loads an image from disk as a data URL.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DataURL(data)
}

// Check validates a data URL posted by a browser and returns it normalised
// to the sniffed format. An empty string means no cover and is accepted.
func Check(dataURL string) (string, error) {
	if dataURL == "" {
		return "", nil
	}
	meta, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return "", fmt.Errorf("%w: not a base64 image data url", ErrUnsupportedImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return DataURL(data)
}
