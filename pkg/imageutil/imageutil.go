// Package imageutil turns logo bytes into something the renderer can use:
// data URLs, natural dimensions and decoded images.
package imageutil

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const MimeSVG = "image/svg+xml"

var (
	ErrNotDataURL = errors.New("not a data url")
	ErrNotImage   = errors.New("data is not an image")
)

// Dimensions are the natural pixel dimensions of an image.
type Dimensions struct {
	Width  int
	Height int
	Format string
}

func (d Dimensions) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// DetectMIME sniffs the content type of data. SVG documents are reported as
// MimeSVG even though the sniffer sees them as text or xml.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "text/") && isSVG(data) {
		return MimeSVG
	}
	return mime
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// ToDataURL encodes data as a base64 data URL with a sniffed media type.
func ToDataURL(data []byte) string {
	return "data:" + DetectMIME(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func IsDataURL(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// ParseDataURL decodes a data URL and returns its payload and media type.
// Both base64 and percent-encoded payloads are accepted.
func ParseDataURL(s string) ([]byte, string, error) {
	if !IsDataURL(s) {
		return nil, "", ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(s[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload", ErrNotDataURL)
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if mime == "" {
		mime = "text/plain"
	}
	base64Encoded := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			base64Encoded = true
		}
	}

	if base64Encoded {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, "", fmt.Errorf("decode base64 payload: %w", err)
		}
		return data, mime, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("unescape payload: %w", err)
	}
	return []byte(unescaped), mime, nil
}

// DecodeDimensions reads the natural size of a raster or SVG image without
// decoding the raster pixels.
func DecodeDimensions(data []byte) (Dimensions, error) {
	if DetectMIME(data) == MimeSVG {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			return Dimensions{}, fmt.Errorf("%w: %v", ErrNotImage, err)
		}
		w, h := int(icon.ViewBox.W+0.5), int(icon.ViewBox.H+0.5)
		if w <= 0 || h <= 0 {
			return Dimensions{}, fmt.Errorf("%w: svg has no view box", ErrNotImage)
		}
		return Dimensions{Width: w, Height: h, Format: "svg"}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: empty image", ErrNotImage)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Decode decodes data into an image. SVG documents are rasterised at their
// view box size.
func Decode(data []byte) (image.Image, error) {
	if DetectMIME(data) == MimeSVG {
		return rasterizeSVG(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	w, h := int(icon.ViewBox.W+0.5), int(icon.ViewBox.H+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: svg has no view box", ErrNotImage)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}
