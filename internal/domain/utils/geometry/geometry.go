// Package geometry derives the on-canvas logo size from the container size,
// the requested scale and the logo aspect ratio.
package geometry

import (
	"fmt"
	"math"

	"github.com/Badsnus/qr-studio/internal/domain/common/errorz"
)

type Shape string

const (
	ShapeSquare    Shape = "square"
	ShapeRectangle Shape = "rectangle"
)

const (
	MinScale          = 10.0
	MaxSquareScale    = 30.0
	MaxRectangleScale = 40.0

	// squareTolerance is how far the aspect ratio may drift from 1 and still
	// count as a square logo.
	squareTolerance = 0.05
)

// Result is the derived logo geometry.
type Result struct {
	Width  float64
	Height float64
	// ScalePercent is the requested scale after clamping into the shape bounds.
	ScalePercent float64
	// EffectiveScalePercent reads 100 at the shape specific maximum.
	EffectiveScalePercent float64
	Shape                 Shape
}

// SanitizeAspect returns aspect, or 1 when it is unknown, non-positive or not finite.
func SanitizeAspect(aspect float64) float64 {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return 1
	}
	return aspect
}

func Classify(aspect float64) Shape {
	if math.Abs(SanitizeAspect(aspect)-1) <= squareTolerance {
		return ShapeSquare
	}
	return ShapeRectangle
}

// Bounds returns the allowed scale range for a logo of the given aspect ratio.
func Bounds(aspect float64) (min, max float64) {
	if Classify(aspect) == ShapeSquare {
		return MinScale, MaxSquareScale
	}
	return MinScale, MaxRectangleScale
}

// ClampScale clamps percent into the bounds of the shape class of aspect.
// NaN is treated as the minimum.
func ClampScale(percent, aspect float64) float64 {
	lo, hi := Bounds(aspect)
	switch {
	case math.IsNaN(percent), percent < lo:
		return lo
	case percent > hi:
		return hi
	}
	return percent
}

// ClampRequested bounds a requested scale by the widest shape bounds, so it
// stays meaningful whichever logo ends up current. NaN is treated as the
// minimum.
func ClampRequested(percent float64) float64 {
	switch {
	case math.IsNaN(percent), percent < MinScale:
		return MinScale
	case percent > MaxRectangleScale:
		return MaxRectangleScale
	}
	return percent
}

// Resolve computes the logo width and height. A non-positive container size
// is a caller bug and is rejected with errorz.ErrInvalidContainerSize.
func Resolve(containerSize, scalePercent, aspect float64) (Result, error) {
	if !(containerSize > 0) || math.IsInf(containerSize, 0) {
		return Result{}, fmt.Errorf("%w: %v", errorz.ErrInvalidContainerSize, containerSize)
	}

	aspect = SanitizeAspect(aspect)
	_, hi := Bounds(aspect)
	scale := ClampScale(scalePercent, aspect)
	width := containerSize * scale / 100

	return Result{
		Width:                 width,
		Height:                width / aspect,
		ScalePercent:          scale,
		EffectiveScalePercent: scale / hi * 100,
		Shape:                 Classify(aspect),
	}, nil
}
