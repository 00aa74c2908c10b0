package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
	"gonum.org/v1/gonum/spatial/r3"

	"snowglobe/internal/mesh"
)

const minLabelPixels = 4

// Label is a line of text anchored at a world position. Size is the glyph
// height in world units; the label shrinks with distance like the meshes
// around it.
type Label struct {
	Text     string
	Position r3.Vec
	Size     float64
	Material *mesh.Material
}

var labelFont struct {
	sync.Mutex
	once   sync.Once
	source *text.FontSource
	err    error
}

func fontSource() (*text.FontSource, error) {
	labelFont.once.Do(func() {
		labelFont.source, labelFont.err = text.NewFontSource(goregular.TTF)
	})
	return labelFont.source, labelFont.err
}

// drawLabels centres every visible label on its projected anchor, tinted with
// its material colour and opacity.
func drawLabels(dc *gg.Context, proj projector, labels []Label) error {
	if len(labels) == 0 {
		return nil
	}
	src, err := fontSource()
	if err != nil {
		return fmt.Errorf("load label font: %w", err)
	}

	labelFont.Lock()
	defer labelFont.Unlock()
	for _, l := range labels {
		if l.Text == "" || l.Material == nil {
			continue
		}
		alpha := 1.0
		if l.Material.Transparent {
			alpha = l.Material.Opacity
		}
		if alpha <= 0 {
			continue
		}
		x, y, depth, ok := proj.project(l.Position)
		if !ok {
			continue
		}
		px := l.Size * proj.focal / depth
		if px < minLabelPixels {
			continue
		}
		col := gg.Hex(l.Material.Color)
		dc.SetRGBA(col.R, col.G, col.B, alpha)
		dc.SetFont(src.Face(px))
		dc.DrawStringAnchored(l.Text, x, y, 0.5, 0.5)
	}
	return nil
}
