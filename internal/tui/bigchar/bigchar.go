// Package bigchar renders Chinese characters as large block art using half-block characters.
package bigchar

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned by Load when none of the font files could be used.
var ErrNoFont = errors.New("no usable CJK font")

// FontPaths lists common CJK font locations on macOS, Linux and Windows.
var FontPaths = []string{
	"/System/Library/Fonts/STHeiti Light.ttc",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/Hiragino Sans GB.ttc",
	"/Library/Fonts/Arial Unicode.ttf",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"C:\\Windows\\Fonts\\msyh.ttc",
	"C:\\Windows\\Fonts\\simsun.ttc",
}

// threshold is the gray level above which a pixel counts as ink.
const threshold = 40

type cacheKey struct {
	char       string
	cols, rows int
}

// Renderer draws glyphs of one font face. It is safe for concurrent use.
type Renderer struct {
	face font.Face

	mu    sync.Mutex
	cache map[cacheKey]string
}

// NewRenderer wraps a font face.
func NewRenderer(face font.Face) *Renderer {
	return &Renderer{face: face, cache: make(map[cacheKey]string)}
}

// Load returns a renderer for the first font in paths that parses, either
// as a collection or as a single font. With no paths, FontPaths is used.
func Load(paths ...string) (*Renderer, error) {
	if len(paths) == 0 {
		paths = FontPaths
	}
	opts := &opentype.FaceOptions{Size: 64, DPI: 72}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var fnt *opentype.Font
		if coll, err := opentype.ParseCollection(data); err == nil && coll.NumFonts() > 0 {
			fnt, _ = coll.Font(0)
		}
		if fnt == nil {
			if fnt, err = opentype.Parse(data); err != nil {
				continue
			}
		}

		face, err := opentype.NewFace(fnt, opts)
		if err != nil {
			continue
		}
		return NewRenderer(face), nil
	}
	return nil, ErrNoFont
}

// Render draws the first rune of char in cols x rows terminal cells.
// It returns "" for a nil renderer or an empty string.
func (r *Renderer) Render(char string, cols, rows int) string {
	if r == nil || r.face == nil || char == "" || cols <= 0 || rows <= 0 {
		return ""
	}
	glyph := string([]rune(char)[0])

	key := cacheKey{glyph, cols, rows}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	out := halfBlocks(scaleDown(r.draw(glyph), cols, rows*2), cols, rows)
	r.cache[key] = out
	return out
}

// draw paints the glyph white on black with some padding around it.
func (r *Renderer) draw(glyph string) *image.Gray {
	bounds, _, _ := r.face.GlyphBounds([]rune(glyph)[0])
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()

	const padding = 4
	width := max(w+padding*2, 64)
	height := max(h+padding*2, 64)

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P((width-w)/2-bounds.Min.X.Floor(), height-padding-bounds.Max.Y.Ceil()),
	}
	d.DrawString(glyph)
	return img
}

// scaleDown shrinks src to w x h by averaging each source area.
func scaleDown(src *image.Gray, w, h int) *image.Gray {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for dy := 0; dy < h; dy++ {
		y0, y1 := dy*sh/h, min((dy+1)*sh/h, sh)
		for dx := 0; dx < w; dx++ {
			x0, x1 := dx*sw/w, min((dx+1)*sw/w, sw)

			sum, n := 0, 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += int(src.GrayAt(x, y).Y)
					n++
				}
			}
			if n > 0 {
				dst.SetGray(dx, dy, color.Gray{Y: uint8(sum / n)})
			}
		}
	}
	return dst
}

// halfBlocks maps each pair of vertical pixels to one of ' ', '▀', '▄', '█'.
func halfBlocks(img *image.Gray, cols, rows int) string {
	on := func(x, y int) bool {
		if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
			return false
		}
		return img.GrayAt(x, y).Y > threshold
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top, bottom := on(col, row*2), on(col, row*2+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
	}
	return sb.String()
}
