package validator

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MinContainerSize = 100
	MaxContainerSize = 2000

	MinEyeRadius = 0
	MaxEyeRadius = 20

	// MaxPayloadBytes is the byte capacity of a version 40 symbol at the
	// highest error correction level, which is used whenever a logo is set.
	MaxPayloadBytes = 1273
)

// Payload reports whether s can be encoded into a symbol.
func Payload(s string) bool {
	return strings.TrimSpace(s) != "" && utf8.ValidString(s) && len(s) <= MaxPayloadBytes
}

func ContainerSize(size int) int {
	return clampInt(size, MinContainerSize, MaxContainerSize)
}

func EyeRadius(radius int) int {
	return clampInt(radius, MinEyeRadius, MaxEyeRadius)
}

// Opacity clamps v into [0,1]. NaN keeps prev.
func Opacity(v, prev float64) float64 {
	switch {
	case math.IsNaN(v):
		return prev
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
