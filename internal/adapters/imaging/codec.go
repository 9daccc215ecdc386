// Package imaging implements page detection and cropping in pure Go.
package imaging

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 92

// writableExts are the page formats the crop worker can write back.
var writableExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// IsPageFile reports whether name has an extension the pipeline can both
// read and write.
func IsPageFile(name string) bool {
	return writableExts[strings.ToLower(filepath.Ext(name))]
}

// Open decodes the image at path.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

type encodeFunc func(w io.Writer, img image.Image) error

// encoderFor selects an encoder from the output file extension.
func encoderFor(path string, quality int) (encodeFunc, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
		}, nil
	case ".png":
		return png.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}
