package bigchar

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

func TestHalfBlocks(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(0, 1, color.Gray{Y: 255})
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(2, 1, color.Gray{Y: 255})
	img.SetGray(3, 0, color.Gray{Y: 20})

	assert.Equal(t, "█▀▄ ", halfBlocks(img, 4, 1))
}

func TestScaleDown(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: 200})
		}
	}

	small := scaleDown(img, 2, 2)
	assert.Equal(t, uint8(200), small.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), small.GrayAt(1, 1).Y)
}

func TestRender(t *testing.T) {
	fnt, err := opentype.Parse(goregular.TTF)
	require.NoError(t, err)
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: 64, DPI: 72})
	require.NoError(t, err)

	r := NewRenderer(face)
	out := r.Render("H", 20, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Len(t, []rune(lines[0]), 20)
	assert.Contains(t, out, "█")
	assert.Equal(t, out, r.Render("Hello", 20, 10), "only the first rune is drawn")
}

func TestRenderNil(t *testing.T) {
	var r *Renderer
	assert.Equal(t, "", r.Render("好", 10, 5))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/font.ttc")
	assert.ErrorIs(t, err, ErrNoFont)
}
