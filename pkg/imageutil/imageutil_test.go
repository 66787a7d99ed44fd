package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="200" height="100">
<rect x="0" y="0" width="200" height="100" fill="#ff0000"/>
</svg>`

func createImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeDimensions(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		d, err := DecodeDimensions(createImageData(t, "png", 40, 20))
		require.NoError(t, err)
		assert.Equal(t, Dimensions{Width: 40, Height: 20, Format: "png"}, d)
		assert.Equal(t, 2.0, d.AspectRatio())
	})

	t.Run("jpeg", func(t *testing.T) {
		d, err := DecodeDimensions(createImageData(t, "jpeg", 16, 16))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", d.Format)
		assert.Equal(t, 1.0, d.AspectRatio())
	})

	t.Run("svg", func(t *testing.T) {
		d, err := DecodeDimensions([]byte(testSVG))
		require.NoError(t, err)
		assert.Equal(t, 200, d.Width)
		assert.Equal(t, 100, d.Height)
		assert.Equal(t, "svg", d.Format)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := DecodeDimensions([]byte("this is not an image"))
		assert.ErrorIs(t, err, ErrNotImage)
	})
}

func TestDataURLRoundTrip(t *testing.T) {
	data := createImageData(t, "png", 8, 4)

	u := ToDataURL(data)
	assert.True(t, IsDataURL(u))
	assert.Contains(t, u, "data:image/png;base64,")

	got, mime, err := ParseDataURL(u)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, got)
}

func TestParseDataURL(t *testing.T) {
	got, mime, err := ParseDataURL("data:image/svg+xml,%3Csvg%3E%3C%2Fsvg%3E")
	require.NoError(t, err)
	assert.Equal(t, MimeSVG, mime)
	assert.Equal(t, "<svg></svg>", string(got))

	_, _, err = ParseDataURL("https://example.com/logo.png")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = ParseDataURL("data:image/png;base64")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = ParseDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	img, err := Decode([]byte(testSVG))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
	r, _, _, a := img.At(100, 50).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	img, err = Decode(createImageData(t, "png", 3, 5))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, MimeSVG, DetectMIME([]byte(testSVG)))
	assert.Equal(t, "image/png", DetectMIME(createImageData(t, "png", 1, 1)))
	assert.Equal(t, "text/plain; charset=utf-8", DetectMIME([]byte("hello")))
}
