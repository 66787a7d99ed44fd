package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Badsnus/qr-studio/internal/domain/entity"
	"github.com/Badsnus/qr-studio/internal/domain/utils/hexcolor"
)

func TestReduce(t *testing.T) {
	base := entity.DefaultConfiguration(450)

	tests := []struct {
		name  string
		event Event
		check func(t *testing.T, got entity.Configuration)
	}{
		{"payload", SetPayload{Payload: "hello"}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, "hello", got.Payload)
		}},
		{"empty payload keeps previous", SetPayload{Payload: "  "}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, entity.DefaultPayload, got.Payload)
		}},
		{"container size clamped", SetContainerSize{Size: -10}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, 100, got.ContainerSize)
		}},
		{"scale clamped for square default", SetLogoScale{Percent: 35}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, 30.0, got.LogoScalePercent)
			assert.Equal(t, 35.0, got.RequestedLogoScale)
		}},
		{"scale request bounded", SetLogoScale{Percent: 90}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, 40.0, got.RequestedLogoScale)
		}},
		{"opacity clamped", SetLogoOpacity{Opacity: 3}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, 1.0, got.LogoOpacity)
		}},
		{"opacity NaN ignored", SetLogoOpacity{Opacity: math.NaN()}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, entity.DefaultLogoOpacity, got.LogoOpacity)
		}},
		{"style", SetStyle{Style: "Dots"}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, entity.StyleDots, got.Style)
		}},
		{"unknown style ignored", SetStyle{Style: "hexagons"}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, entity.StyleSquares, got.Style)
		}},
		{"eye radius clamped", SetEyeRadius{Radius: 99}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, 20, got.EyeRadius)
		}},
		{"background from picker", SetBackgroundColor{Color: hexcolor.Picker("#ABCDEF")}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, "#abcdef", got.BackgroundColor)
		}},
		{"invalid foreground keeps previous", SetForegroundColor{Color: hexcolor.Text("blue")}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, "#000000", got.ForegroundColor)
		}},
		{"file name stored raw", SetExportFileName{FileName: "../x"}, func(t *testing.T, got entity.Configuration) {
			assert.Equal(t, "../x", got.ExportFileName)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := base
			tt.check(t, Reduce(base, tt.event))
			assert.Equal(t, before, base, "input configuration must not change")
		})
	}
}

func TestReduceScaleIsOrderIndependent(t *testing.T) {
	rect := LogoDecoded{Asset: entity.LogoAsset{AspectRatio: 2, Generation: 1}}
	scale := SetLogoScale{Percent: 35}

	scaleFirst := ReduceAll(entity.DefaultConfiguration(450), scale, rect)
	logoFirst := ReduceAll(entity.DefaultConfiguration(450), rect, scale)

	assert.Equal(t, 35.0, scaleFirst.LogoScalePercent)
	assert.Equal(t, logoFirst, scaleFirst)
}

func TestReduceScaleFollowsShape(t *testing.T) {
	c := ReduceAll(entity.DefaultConfiguration(450),
		LogoDecoded{Asset: entity.LogoAsset{AspectRatio: 2, Generation: 1}},
		SetLogoScale{Percent: 40},
	)
	assert.Equal(t, 40.0, c.LogoScalePercent)

	c = Reduce(c, LogoDecoded{Asset: entity.LogoAsset{AspectRatio: 1, Generation: 2}})
	assert.Equal(t, 30.0, c.LogoScalePercent)
	assert.Equal(t, uint64(2), c.Logo.Generation)

	c = Reduce(c, ClearLogo{})
	assert.Nil(t, c.Logo)
	assert.Equal(t, 30.0, c.LogoScalePercent)

	// back to a rectangle, the original request applies again
	c = Reduce(c, LogoDecoded{Asset: entity.LogoAsset{AspectRatio: 0.5, Generation: 3}})
	assert.Equal(t, 40.0, c.LogoScalePercent)
}

func TestSanitize(t *testing.T) {
	got := Sanitize(entity.Configuration{
		ContainerSize:    0,
		LogoScalePercent: 90,
		LogoOpacity:      -1,
		Style:            "weird",
		EyeRadius:        -4,
		BackgroundColor:  "FFFFFF",
		ForegroundColor:  "nope",
	})
	assert.Equal(t, entity.DefaultPayload, got.Payload)
	assert.Equal(t, 100, got.ContainerSize)
	assert.Equal(t, 30.0, got.LogoScalePercent)
	assert.Equal(t, 40.0, got.RequestedLogoScale)
	assert.Equal(t, 0.0, got.LogoOpacity)
	assert.Equal(t, entity.StyleSquares, got.Style)
	assert.Equal(t, 0, got.EyeRadius)
	assert.Equal(t, "#ffffff", got.BackgroundColor)
	assert.Equal(t, "#000000", got.ForegroundColor)
}
