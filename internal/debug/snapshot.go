package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"time"
)

// Disc is one island footprint seen from above.
type Disc struct {
	X, Z   float32
	Radius float32
	Color  [4]float32
}

// background is the map fill color.
var background = color.RGBA{R: 24, G: 32, B: 48, A: 255}

// RenderMap draws discs top-down into a size×size image, scaled so every
// disc fits with a margin. +X points right and +Z points up.
func RenderMap(discs []Disc, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = background.R, background.G, background.B, background.A
	}
	if len(discs) == 0 || size <= 0 {
		return img
	}

	minX, minZ := float32(gomath.MaxFloat32), float32(gomath.MaxFloat32)
	maxX, maxZ := -minX, -minZ
	for _, d := range discs {
		minX = min(minX, d.X-d.Radius)
		maxX = max(maxX, d.X+d.Radius)
		minZ = min(minZ, d.Z-d.Radius)
		maxZ = max(maxZ, d.Z+d.Radius)
	}
	extent := max(maxX-minX, maxZ-minZ, 1)
	margin := extent * 0.05
	scale := float32(size) / (extent + 2*margin)
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2

	toPixel := func(x, z float32) (float32, float32) {
		px := (x-cx)*scale + float32(size)/2
		py := float32(size)/2 - (z-cz)*scale
		return px, py
	}

	for _, d := range discs {
		px, py := toPixel(d.X, d.Z)
		r := max(d.Radius*scale, 1)
		c := toRGBA(d.Color)
		x0, x1 := int(px-r), int(px+r)
		y0, y1 := int(py-r), int(py+r)
		for y := max(y0, 0); y <= min(y1, size-1); y++ {
			for x := max(x0, 0); x <= min(x1, size-1); x++ {
				dx, dy := float32(x)+0.5-px, float32(y)+0.5-py
				if dx*dx+dy*dy <= r*r {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}
	return img
}

func toRGBA(c [4]float32) color.RGBA {
	channel := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return color.RGBA{R: channel(c[0]), G: channel(c[1]), B: channel(c[2]), A: channel(c[3])}
}

// MapWriter saves layout maps as PNG files.
type MapWriter struct {
	outputDir string
	prefix    string
}

// NewMapWriter creates a map writer.
func NewMapWriter(outputDir, prefix string) *MapWriter {
	return &MapWriter{
		outputDir: outputDir,
		prefix:    prefix,
	}
}

// Filename generates a timestamped map filename without saving.
func (mw *MapWriter) Filename(now time.Time) string {
	filename := fmt.Sprintf("%s_%s.png", mw.prefix, now.Format("2006-01-02_15-04-05"))
	if mw.outputDir != "" {
		filename = filepath.Join(mw.outputDir, filename)
	}
	return filename
}

// Write saves img and returns the file path.
func (mw *MapWriter) Write(img image.Image) (string, error) {
	if mw.outputDir != "" {
		if err := os.MkdirAll(mw.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := mw.Filename(time.Now())
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
