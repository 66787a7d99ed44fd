package entity

import "strings"

type Style string

const (
	StyleDots    Style = "dots"
	StyleSquares Style = "squares"
	StyleFluid   Style = "fluid"
)

// ParseStyle accepts a style name as submitted by the view layer.
func ParseStyle(s string) (Style, bool) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleDots:
		return StyleDots, true
	case StyleSquares:
		return StyleSquares, true
	case StyleFluid:
		return StyleFluid, true
	}
	return "", false
}

type SourceKind string

const (
	SourceURL    SourceKind = "url"
	SourceUpload SourceKind = "upload"
)

const (
	DefaultPayload          = "https://www.webexpress.se"
	DefaultContainerSize    = 450
	DefaultLogoScalePercent = 20
	DefaultLogoOpacity      = 0.8
	DefaultEyeRadius        = 5
	DefaultBackgroundColor  = "#ffffff"
	DefaultForegroundColor  = "#000000"
	DefaultExportFileName   = "qr_code"
)

// LogoAsset is a decoded logo. Values are shared between configuration
// snapshots and must not be mutated once published.
type LogoAsset struct {
	SourceKind SourceKind
	// RawSource is the URL for url sources and the data URL built from the
	// uploaded bytes for upload sources.
	RawSource     string
	Data          []byte
	MimeType      string
	NaturalWidth  int
	NaturalHeight int
	AspectRatio   float64
	Generation    uint64
}

// Configuration is the canonical set of visual parameters of a session.
type Configuration struct {
	Payload       string
	ContainerSize int
	Logo          *LogoAsset
	// RequestedLogoScale is the scale the user asked for. It is kept across
	// logo changes so a request made before a logo finishes decoding is
	// honored once the logo's shape is known.
	RequestedLogoScale float64
	// LogoScalePercent is RequestedLogoScale clamped into the bounds of the
	// current logo's shape class.
	LogoScalePercent float64
	LogoOpacity      float64
	Style            Style
	EyeRadius        int
	BackgroundColor  string
	ForegroundColor  string
	ExportFileName   string
}

// DefaultConfiguration returns the configuration every session starts with.
// containerSize is deployment specific; non-positive values fall back to DefaultContainerSize.
func DefaultConfiguration(containerSize int) Configuration {
	if containerSize <= 0 {
		containerSize = DefaultContainerSize
	}
	return Configuration{
		Payload:            DefaultPayload,
		ContainerSize:      containerSize,
		RequestedLogoScale: DefaultLogoScalePercent,
		LogoScalePercent:   DefaultLogoScalePercent,
		LogoOpacity:        DefaultLogoOpacity,
		Style:              StyleSquares,
		EyeRadius:          DefaultEyeRadius,
		BackgroundColor:    DefaultBackgroundColor,
		ForegroundColor:    DefaultForegroundColor,
		ExportFileName:     DefaultExportFileName,
	}
}

// AspectRatio returns the logo aspect ratio, or 0 when no logo is set.
func (c Configuration) AspectRatio() float64 {
	if c.Logo == nil {
		return 0
	}
	return c.Logo.AspectRatio
}
