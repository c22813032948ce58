package media

import (
	"image"
	"io"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format tags reported in ImageRef.Format and EmbeddedObjectRef.PreviewFormat.
const (
	FormatPNG     = "png"
	FormatJPEG    = "jpeg"
	FormatGIF     = "gif"
	FormatBMP     = "bmp"
	FormatTIFF    = "tiff"
	FormatWebP    = "webp"
	FormatSVG     = "svg"
	FormatEMF     = "emf"
	FormatWMF     = "wmf"
	FormatUnknown = "unknown"
)

var contentTypeFormats = map[string]string{
	"image/png":      FormatPNG,
	"image/jpeg":     FormatJPEG,
	"image/jpg":      FormatJPEG,
	"image/pjpeg":    FormatJPEG,
	"image/gif":      FormatGIF,
	"image/bmp":      FormatBMP,
	"image/x-bmp":    FormatBMP,
	"image/x-ms-bmp": FormatBMP,
	"image/tiff":     FormatTIFF,
	"image/webp":     FormatWebP,
	"image/svg+xml":  FormatSVG,
	"image/x-emf":    FormatEMF,
	"image/emf":      FormatEMF,
	"image/x-wmf":    FormatWMF,
	"image/wmf":      FormatWMF,
}

var extensionFormats = map[string]string{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"jpe":  FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"dib":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"webp": FormatWebP,
	"svg":  FormatSVG,
	"emf":  FormatEMF,
	"wmf":  FormatWMF,
}

// decodable lists the formats whose headers image.DecodeConfig can read.
var decodable = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
	FormatGIF:  true,
	FormatBMP:  true,
	FormatTIFF: true,
	FormatWebP: true,
}

// FormatFromContentType maps a MIME type to a format tag, or "".
func FormatFromContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return contentTypeFormats[ct]
}

// FormatFromName maps a part name's extension to a format tag, or "".
func FormatFromName(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	return extensionFormats[ext]
}

// Sniff detects the format of r from its leading bytes. It returns the
// format tag ("" when not an image format) and the detected MIME type.
func Sniff(r io.Reader) (format, contentType string, err error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", err
	}
	format = FormatFromContentType(mt.String())
	if format == "" {
		format = extensionFormats[strings.TrimPrefix(mt.Extension(), ".")]
	}
	return format, mt.String(), nil
}

// Decodable reports whether pixel dimensions can be read from the format's
// header.
func Decodable(format string) bool {
	return decodable[format]
}

// Dimensions reads the pixel size from an image header without decoding
// pixel data.
func Dimensions(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Extension returns the file extension used when storing a format.
func Extension(format string) string {
	switch format {
	case "", FormatUnknown:
		return "bin"
	case FormatJPEG:
		return "jpg"
	default:
		return format
	}
}
