package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

type Style string

const (
	StyleSquares Style = "squares"
	StyleDots    Style = "dots"
	StyleFluid   Style = "fluid"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

const (
	// DefaultQuietZone is the margin around the symbol, in modules.
	DefaultQuietZone = 4
	finderSize       = 7
)

type Options struct {
	Content string
	Size    int // Canvas side in pixels
	Style   Style
	// EyeRadius rounds the corners of the three finder patterns, in pixels.
	EyeRadius  float64
	Background color.Color
	Foreground color.Color

	Logo        image.Image
	LogoWidth   float64
	LogoHeight  float64
	LogoOpacity float64

	// RecoveryLevel counts from 1 (Low) to 4 (Highest). Zero picks High when
	// a logo is drawn and Medium otherwise.
	RecoveryLevel int
	QuietZone     int
}

func (o *Options) recoveryLevel() qrcode.RecoveryLevel {
	if o.RecoveryLevel >= 1 && o.RecoveryLevel <= 4 {
		return qrcode.RecoveryLevel(o.RecoveryLevel - 1)
	}
	if o.Logo != nil {
		return qrcode.High
	}
	return qrcode.Medium
}

// Render draws the symbol described by o onto a Size x Size canvas.
func Render(o Options) (image.Image, error) {
	if o.Size <= 0 {
		return nil, fmt.Errorf("invalid canvas size %d", o.Size)
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Foreground == nil {
		o.Foreground = color.Black
	}
	if o.QuietZone < 0 {
		o.QuietZone = 0
	}

	q, err := qrcode.New(o.Content, o.recoveryLevel())
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()
	n := len(bitmap)

	cell := float64(o.Size) / float64(n+2*o.QuietZone)
	offset := float64(o.QuietZone) * cell

	dc := gg.NewContext(o.Size, o.Size)
	dc.SetColor(o.Background)
	dc.Clear()

	dc.SetColor(o.Foreground)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !bitmap[y][x] || inFinder(x, y, n) {
				continue
			}
			px := offset + float64(x)*cell
			py := offset + float64(y)*cell
			switch o.Style {
			case StyleDots:
				dc.DrawCircle(px+cell/2, py+cell/2, cell/2)
			case StyleFluid:
				dc.DrawCircle(px+cell/2, py+cell/2, cell/2)
				dc.Fill()
				// Bridge to dark right and bottom neighbours so runs merge into one blob
				if x+1 < n && bitmap[y][x+1] && !inFinder(x+1, y, n) {
					dc.DrawRectangle(px+cell/2, py, cell, cell)
					dc.Fill()
				}
				if y+1 < n && bitmap[y+1][x] && !inFinder(x, y+1, n) {
					dc.DrawRectangle(px, py+cell/2, cell, cell)
				}
			default:
				dc.DrawRectangle(px, py, cell, cell)
			}
			dc.Fill()
		}
	}

	for _, origin := range [][2]int{{0, 0}, {n - finderSize, 0}, {0, n - finderSize}} {
		drawEye(dc, offset+float64(origin[0])*cell, offset+float64(origin[1])*cell, cell, o)
	}

	if o.Logo != nil {
		drawLogo(dc, o)
	}

	return dc.Image(), nil
}

func inFinder(x, y, n int) bool {
	left := x < finderSize
	right := x >= n-finderSize
	top := y < finderSize
	bottom := y >= n-finderSize
	return (left && top) || (right && top) || (left && bottom)
}

// drawEye draws a 7x7 finder pattern: a dark ring, a light ring and a 3x3 dark center.
func drawEye(dc *gg.Context, x, y, cell float64, o Options) {
	side := finderSize * cell
	radius := math.Max(0, math.Min(o.EyeRadius, side/2))

	layers := []struct {
		inset float64
		c     color.Color
	}{
		{0, o.Foreground},
		{cell, o.Background},
		{2 * cell, o.Foreground},
	}
	for _, l := range layers {
		s := side - 2*l.inset
		r := radius * s / side
		dc.SetColor(l.c)
		if r > 0 {
			dc.DrawRoundedRectangle(x+l.inset, y+l.inset, s, s, r)
		} else {
			dc.DrawRectangle(x+l.inset, y+l.inset, s, s)
		}
		dc.Fill()
	}
}

func drawLogo(dc *gg.Context, o Options) {
	w := math.Min(math.Round(o.LogoWidth), float64(o.Size))
	h := math.Min(math.Round(o.LogoHeight), float64(o.Size))
	if w < 1 || h < 1 {
		return
	}
	opacity := math.Max(0, math.Min(o.LogoOpacity, 1))
	if opacity == 0 {
		return
	}

	resized := resize.Resize(uint(w), uint(h), o.Logo, resize.Lanczos3)

	x := (o.Size - int(w)) / 2
	y := (o.Size - int(h)) / 2
	dst, ok := dc.Image().(draw.Image)
	if !ok {
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	draw.DrawMask(dst, image.Rect(x, y, x+int(w), y+int(h)), resized, resized.Bounds().Min, mask, image.Point{}, draw.Over)
}

// Encode writes img in the requested raster format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: 95})
	case FormatPNG, "":
		return png.Encode(w, img)
	}
	return fmt.Errorf("unsupported raster format %q", format)
}

// EncodeBytes is Encode into a byte slice.
func EncodeBytes(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flatten composites img over white, since jpeg has no alpha channel.
func flatten(img image.Image) image.Image {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// ParseFormat maps a configured format name onto a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "png", "":
		return FormatPNG, true
	case "jpeg", "jpg":
		return FormatJPEG, true
	}
	return "", false
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}
