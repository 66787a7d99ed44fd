// Package hexcolor canonicalizes color values coming from the view layer into
// the "#rrggbb" form used by the configuration.
package hexcolor

import (
	"encoding/json"
	"image/color"
	"strconv"
	"strings"
)

type kind uint8

const (
	kindNone kind = iota
	kindText
	kindPicker
)

// Input is a color value in one of the shapes the view layer produces:
// nothing at all, a plain or '#'-prefixed hex string, or a picker value
// exposing a hex field.
type Input struct {
	kind kind
	text string
}

// None is a missing color value.
func None() Input { return Input{} }

// Text wraps a plain ("ffffff") or prefixed ("#ffffff") hex string.
func Text(s string) Input { return Input{kind: kindText, text: s} }

// Picker wraps a structured picker value by its hex field. An empty hex
// means the field was absent.
func Picker(hex string) Input { return Input{kind: kindPicker, text: hex} }

type pickerValue struct {
	Hex *string `json:"hex"`
}

// FromJSON interprets a raw JSON color value: a string, an object with a
// "hex" field, or null. Anything else yields None.
func FromJSON(raw []byte) Input {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Text(s)
	}
	var v pickerValue
	if err := json.Unmarshal(raw, &v); err == nil && v.Hex != nil {
		return Picker(*v.Hex)
	}
	return None()
}

// Normalize returns the canonical lowercase "#rrggbb" form of in, or fallback
// when in cannot be read as a six digit hex color.
func Normalize(in Input, fallback string) string {
	switch in.kind {
	case kindText:
		s := strings.TrimSpace(in.text)
		s = strings.TrimPrefix(s, "#")
		if !isHex6(s) {
			return fallback
		}
		return "#" + strings.ToLower(s)
	case kindPicker:
		if in.text == "" {
			return fallback
		}
		return Normalize(Text(in.text), fallback)
	default:
		return fallback
	}
}

// IsCanonical reports whether s is already in "#rrggbb" lowercase form.
func IsCanonical(s string) bool {
	return len(s) == 7 && s[0] == '#' && isHex6(s[1:]) && strings.ToLower(s) == s
}

// RGBA converts a canonical color into an opaque color.RGBA.
func RGBA(s string) (color.RGBA, bool) {
	if !IsCanonical(s) {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func isHex6(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
