// Package export renders a scene to static image files. SVG output is the
// primary format; PNG rasterization shares the same scene walk so the two
// stay visually in sync.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/treebrowse/pkg/render"
)

// TreeSnapshotOptions controls tree snapshot export behaviour.
type TreeSnapshotOptions struct {
	Path     string        // Output path; format inferred from extension when Format empty
	Format   string        // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string        // Optional title rendered in the header band
	Scene    *render.Scene // Scene to render, in layout coordinates
	DataHash string        // Hash of the loaded tree for provenance
	TipCount int           // Tip count rendered in the header band
	Scale    float64       // Optional uniform scale; 0 means 1
}

const (
	snapshotPad  = 32.0
	headerHeight = 48.0
	// Tip labels extend past the layout bounding box, which only tracks
	// node geometry. Scenes that carry labels get a wider right margin.
	labelMargin = 220.0
)

// SaveTreeSnapshot renders a static tree snapshot (SVG or PNG).
func SaveTreeSnapshot(opts TreeSnapshotOptions) error {
	if opts.Scene == nil || len(opts.Scene.Primitives) == 0 {
		return fmt.Errorf("no scene to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	frame := buildFrame(opts)

	switch format {
	case "svg":
		return renderSVGFile(opts, frame)
	case "png":
		return renderPNG(opts, frame)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// frame is the pixel-space placement of the scene inside the image.
type frame struct {
	Width, Height int
	// OffsetX/OffsetY translate layout coordinates into pixel space
	// after scaling.
	OffsetX, OffsetY float64
	Scale            float64
	Header           float64
}

func buildFrame(opts TreeSnapshotOptions) frame {
	s := opts.Scene
	scale := opts.Scale

	margin := snapshotPad
	if hasLabels(s) {
		margin = labelMargin
	}
	header := 0.0
	if opts.Title != "" || opts.DataHash != "" {
		header = headerHeight
	}

	w := (s.MaxX-s.MinX)*scale + snapshotPad + margin
	h := (s.MaxY-s.MinY)*scale + snapshotPad*2 + header
	if w < 320 {
		w = 320
	}
	if h < 240 {
		h = 240
	}
	return frame{
		Width:   int(w),
		Height:  int(h),
		OffsetX: snapshotPad - s.MinX*scale,
		OffsetY: snapshotPad + header - s.MinY*scale,
		Scale:   scale,
		Header:  header,
	}
}

func hasLabels(s *render.Scene) bool {
	for _, p := range s.Primitives {
		if _, ok := p.(render.Label); ok {
			return true
		}
	}
	return false
}
