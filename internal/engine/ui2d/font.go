package ui2d

import (
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	fontFirstRune = 32
	fontLastRune  = 126
	fontAtlasCols = 16
)

// Font is a fixed-width ASCII glyph atlas rasterized from
// basicfont.Face7x13 and uploaded as a single-channel texture.
type Font struct {
	texture     uint32
	glyphWidth  int
	glyphHeight int
	atlasWidth  int
	atlasHeight int
}

// NewFont bakes the glyph atlas and uploads it. Requires a current
// OpenGL context.
func NewFont() *Font {
	face := basicfont.Face7x13
	f := &Font{
		glyphWidth:  face.Advance,
		glyphHeight: face.Height,
	}

	glyphs := fontLastRune - fontFirstRune + 1
	rows := (glyphs + fontAtlasCols - 1) / fontAtlasCols
	f.atlasWidth = fontAtlasCols * f.glyphWidth
	f.atlasHeight = rows * f.glyphHeight

	img := image.NewAlpha(image.Rect(0, 0, f.atlasWidth, f.atlasHeight))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Opaque),
		Face: face,
	}
	for r := fontFirstRune; r <= fontLastRune; r++ {
		col := (r - fontFirstRune) % fontAtlasCols
		row := (r - fontFirstRune) / fontAtlasCols
		d.Dot = fixed.P(col*f.glyphWidth, row*f.glyphHeight+face.Ascent)
		d.DrawString(string(rune(r)))
	}

	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8,
		int32(f.atlasWidth), int32(f.atlasHeight), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return f
}

// TextureID returns the atlas texture.
func (f *Font) TextureID() uint32 {
	return f.texture
}

// GlyphSize returns the fixed glyph cell size in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphWidth, f.glyphHeight
}

// GetGlyphUV returns the atlas UV rectangle for a rune. Runes outside
// the atlas map to '?'.
func (f *Font) GetGlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < fontFirstRune || r > fontLastRune {
		r = '?'
	}
	idx := int(r) - fontFirstRune
	col := idx % fontAtlasCols
	row := idx / fontAtlasCols

	u0 = float32(col*f.glyphWidth) / float32(f.atlasWidth)
	v0 = float32(row*f.glyphHeight) / float32(f.atlasHeight)
	u1 = float32((col+1)*f.glyphWidth) / float32(f.atlasWidth)
	v1 = float32((row+1)*f.glyphHeight) / float32(f.atlasHeight)
	return
}

// MeasureText returns the width and height of rendered text.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	maxLine, line, lines := 0, 0, 1
	for _, r := range text {
		if r == '\n' {
			lines++
			line = 0
			continue
		}
		line++
		if line > maxLine {
			maxLine = line
		}
	}
	return float32(maxLine) * float32(f.glyphWidth) * scale,
		float32(lines) * float32(f.glyphHeight) * scale
}

// Close releases the atlas texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
