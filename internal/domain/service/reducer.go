package service

import (
	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/internal/domain/utils/geometry"
	"github.com/Badsnus/qr-studio/internal/domain/utils/hexcolor"
	"github.com/Badsnus/qr-studio/internal/domain/utils/validator"
)

// Event is a single user or system input to the configuration.
type Event interface {
	isEvent()
}

type (
	SetPayload         struct{ Payload string }
	SetContainerSize   struct{ Size int }
	SetLogoScale       struct{ Percent float64 }
	SetLogoOpacity     struct{ Opacity float64 }
	SetStyle           struct{ Style string }
	SetEyeRadius       struct{ Radius int }
	SetBackgroundColor struct{ Color hexcolor.Input }
	SetForegroundColor struct{ Color hexcolor.Input }
	SetExportFileName  struct{ FileName string }

	// LogoDecoded promotes a decoded asset. It only reaches the reducer
	// after the store has checked its generation.
	LogoDecoded struct{ Asset entity.LogoAsset }
	ClearLogo   struct{}
)

func (SetPayload) isEvent()         {}
func (SetContainerSize) isEvent()   {}
func (SetLogoScale) isEvent()       {}
func (SetLogoOpacity) isEvent()     {}
func (SetStyle) isEvent()           {}
func (SetEyeRadius) isEvent()       {}
func (SetBackgroundColor) isEvent() {}
func (SetForegroundColor) isEvent() {}
func (SetExportFileName) isEvent()  {}
func (LogoDecoded) isEvent()        {}
func (ClearLogo) isEvent()          {}

// Reduce applies e to c and returns the resulting configuration. Malformed
// input is recovered here: numeric values are clamped, invalid colors fall
// back to the current color and unusable payloads or styles keep the
// current value. c itself is never modified.
func Reduce(c entity.Configuration, e Event) entity.Configuration {
	c = apply(c, e)
	// the effective scale follows the current logo's shape class
	c.LogoScalePercent = geometry.ClampScale(c.RequestedLogoScale, c.AspectRatio())
	return c
}

func apply(c entity.Configuration, e Event) entity.Configuration {
	switch e := e.(type) {
	case SetPayload:
		if validator.Payload(e.Payload) {
			c.Payload = e.Payload
		}
	case SetContainerSize:
		c.ContainerSize = validator.ContainerSize(e.Size)
	case SetLogoScale:
		c.RequestedLogoScale = geometry.ClampRequested(e.Percent)
	case SetLogoOpacity:
		c.LogoOpacity = validator.Opacity(e.Opacity, c.LogoOpacity)
	case SetStyle:
		if s, ok := entity.ParseStyle(e.Style); ok {
			c.Style = s
		}
	case SetEyeRadius:
		c.EyeRadius = validator.EyeRadius(e.Radius)
	case SetBackgroundColor:
		c.BackgroundColor = hexcolor.Normalize(e.Color, c.BackgroundColor)
	case SetForegroundColor:
		c.ForegroundColor = hexcolor.Normalize(e.Color, c.ForegroundColor)
	case SetExportFileName:
		c.ExportFileName = e.FileName
	case LogoDecoded:
		asset := e.Asset
		c.Logo = &asset
	case ClearLogo:
		c.Logo = nil
	}
	return c
}

// ReduceAll folds events over c in order.
func ReduceAll(c entity.Configuration, events ...Event) entity.Configuration {
	for _, e := range events {
		c = Reduce(c, e)
	}
	return c
}

// Sanitize brings an arbitrary configuration back within its invariants.
func Sanitize(c entity.Configuration) entity.Configuration {
	def := entity.DefaultConfiguration(0)
	if !validator.Payload(c.Payload) {
		c.Payload = def.Payload
	}
	c.ContainerSize = validator.ContainerSize(c.ContainerSize)
	if c.RequestedLogoScale == 0 {
		c.RequestedLogoScale = c.LogoScalePercent
	}
	c.RequestedLogoScale = geometry.ClampRequested(c.RequestedLogoScale)
	c.LogoScalePercent = geometry.ClampScale(c.RequestedLogoScale, c.AspectRatio())
	c.LogoOpacity = validator.Opacity(c.LogoOpacity, def.LogoOpacity)
	if s, ok := entity.ParseStyle(string(c.Style)); ok {
		c.Style = s
	} else {
		c.Style = def.Style
	}
	c.EyeRadius = validator.EyeRadius(c.EyeRadius)
	c.BackgroundColor = hexcolor.Normalize(hexcolor.Text(c.BackgroundColor), def.BackgroundColor)
	c.ForegroundColor = hexcolor.Normalize(hexcolor.Text(c.ForegroundColor), def.ForegroundColor)
	return c
}
