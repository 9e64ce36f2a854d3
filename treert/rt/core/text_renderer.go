package core

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

type TextItem struct {
	Text     string
	Position [2]float32 // pixels from the top-left corner
	Scale    float32
	Color    [4]float32
}

type GlyphInfo struct {
	UVMin [2]float32
	UVMax [2]float32
	Size  [2]float32
	Off   [2]float32
	Adv   float32
}

type TextRenderer struct {
	AtlasImage *image.Alpha
	Glyphs     map[rune]GlyphInfo
	Face       font.Face
}

// NewTextRenderer rasterizes printable ASCII from the bundled Go Regular face
// into a single alpha atlas.
func NewTextRenderer(fontSize float64) (*TextRenderer, error) {
	return NewTextRendererFromTTF(goregular.TTF, fontSize)
}

func NewTextRendererFromTTF(fontBytes []byte, fontSize float64) (*TextRenderer, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	const atlasSize = 512
	atlas := image.NewAlpha(image.Rect(0, 0, atlasSize, atlasSize))
	glyphs := make(map[rune]GlyphInfo)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= atlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}

		if y+h >= atlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = GlyphInfo{
			UVMin: [2]float32{float32(x) / atlasSize, float32(y) / atlasSize},
			UVMax: [2]float32{float32(x+w) / atlasSize, float32(y+h) / atlasSize},
			Size:  [2]float32{float32(w), float32(h)},
			Off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Adv:   float32(adv) / 64.0, // Convert fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &TextRenderer{
		AtlasImage: atlas,
		Glyphs:     glyphs,
		Face:       face,
	}, nil
}

func (tr *TextRenderer) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(items)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	metrics := tr.Face.Metrics()
	ascent := float32(metrics.Ascent.Ceil())
	lineHeight := float32(metrics.Height.Ceil())

	for _, item := range items {
		penX := item.Position[0]
		penY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			if r == '\n' {
				penX = item.Position[0]
				penY += lineHeight * item.Scale
				continue
			}
			g, ok := tr.Glyphs[r]
			if !ok {
				continue
			}

			// pixel rect -> NDC, y flipped
			x0 := (penX+g.Off[0]*item.Scale)/sw*2.0 - 1.0
			y0 := 1.0 - (penY+g.Off[1]*item.Scale)/sh*2.0
			x1 := (penX+(g.Off[0]+g.Size[0])*item.Scale)/sw*2.0 - 1.0
			y1 := 1.0 - (penY+(g.Off[1]+g.Size[1])*item.Scale)/sh*2.0

			vertices = appendGlyphQuad(vertices, [4]float32{x0, y0, x1, y1}, g, item.Color)
			penX += g.Adv * item.Scale
		}
	}

	return vertices
}

func appendGlyphQuad(dst []TextVertex, rect [4]float32, g GlyphInfo, color [4]float32) []TextVertex {
	x0, y0, x1, y1 := rect[0], rect[1], rect[2], rect[3]
	u0, v0, u1, v1 := g.UVMin[0], g.UVMin[1], g.UVMax[0], g.UVMax[1]
	return append(dst,
		TextVertex{Pos: [2]float32{x0, y0}, UV: [2]float32{u0, v0}, Color: color},
		TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: color},
		TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: color},
		TextVertex{Pos: [2]float32{x1, y0}, UV: [2]float32{u1, v0}, Color: color},
		TextVertex{Pos: [2]float32{x1, y1}, UV: [2]float32{u1, v1}, Color: color},
		TextVertex{Pos: [2]float32{x0, y1}, UV: [2]float32{u0, v1}, Color: color},
	)
}

// MeasureText returns the pixel width of the widest line and the total height.
func (tr *TextRenderer) MeasureText(text string, scale float32) (float32, float32) {
	if tr == nil {
		return 0, 0
	}

	lineHeight := float32(tr.Face.Metrics().Height.Ceil()) * scale
	var widest, line float32
	lines := 1
	for _, r := range text {
		if r == '\n' {
			widest = max(widest, line)
			line = 0
			lines++
			continue
		}
		if g, ok := tr.Glyphs[r]; ok {
			line += g.Adv * scale
		}
	}
	return max(widest, line), lineHeight * float32(lines)
}
