// SPDX-License-Identifier: GPL-2.0-or-later

// Package process normalizes raw animation frames: it computes the
// global alpha bounding box over every folder animation of a run,
// crops and scales each frame onto a uniform square canvas and
// premultiplies the result.
package process

import (
	"image"
	"image/draw"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// MaxTargetSize bounds the canvas edge length.
const MaxTargetSize = 4096

// A ProcessedFrame is a frame after crop, scale, centering and
// premultiplication. Image is TargetSize x TargetSize.
type ProcessedFrame struct {
	Image        *image.NRGBA
	OriginalSize image.Point
	BBox         BoundingBox
	Offset       image.Point
	SourcePath   string
}

// Processor transforms single frames against a fixed square canvas.
type Processor struct {
	targetSize int
}

func NewProcessor(targetSize int) (*Processor, error) {
	if targetSize <= 0 {
		return nil, errors.Errorf("target size must be positive, got %d", targetSize)
	}
	if targetSize > MaxTargetSize {
		return nil, errors.Errorf("target size %d exceeds maximum %d", targetSize, MaxTargetSize)
	}
	return &Processor{targetSize: targetSize}, nil
}

func (p *Processor) TargetSize() int {
	return p.targetSize
}

func loadNRGBA(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == image.Pt(0, 0) {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Rect, img, b.Min, draw.Src)
	return n
}

// GlobalBBox unions the alpha bounding box of every listed frame.
func (p *Processor) GlobalBBox(paths []string) (BoundingBox, error) {
	if len(paths) == 0 {
		return BoundingBox{}, errors.New("no images provided")
	}
	var global BoundingBox
	for i, path := range paths {
		img, err := loadNRGBA(path)
		if err != nil {
			return BoundingBox{}, errors.Wrapf(err, "frame %s", path)
		}
		box, err := FindBBox(img)
		if err != nil {
			if e, ok := err.(*EmptyImageError); ok {
				e.Path = path
			}
			return BoundingBox{}, err
		}
		if i == 0 {
			global = box
		} else {
			global.Update(box)
		}
	}
	return global, nil
}

// ProcessFrame crops img to the global box, scales it to fit the
// target canvas preserving aspect ratio, centers it and premultiplies
// the channels. Premultiplication happens after compositing onto the
// canvas.
func (p *Processor) ProcessFrame(img *image.NRGBA, global BoundingBox, path string) (*ProcessedFrame, error) {
	frameBox, err := FindBBox(img)
	if err != nil {
		if e, ok := err.(*EmptyImageError); ok {
			e.Path = path
		}
		return nil, err
	}

	scale := float64(p.targetSize) / float64(global.Width())
	if s := float64(p.targetSize) / float64(global.Height()); s < scale {
		scale = s
	}
	newW := clampDim(int(float64(global.Width())*scale), p.targetSize)
	newH := clampDim(int(float64(global.Height())*scale), p.targetSize)

	canvas := image.NewNRGBA(image.Rect(0, 0, p.targetSize, p.targetSize))
	offset := image.Pt((p.targetSize-newW)/2, (p.targetSize-newH)/2)
	dst := image.Rect(offset.X, offset.Y, offset.X+newW, offset.Y+newH)
	xdraw.CatmullRom.Scale(canvas, dst, img, global.rect(), xdraw.Src, nil)

	premultiply(canvas)

	return &ProcessedFrame{
		Image:        canvas,
		OriginalSize: image.Pt(img.Rect.Dx(), img.Rect.Dy()),
		BBox:         frameBox,
		Offset:       offset,
		SourcePath:   path,
	}, nil
}

// A degenerate global box can scale a dimension to zero pixels.
func clampDim(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}

// premultiply scales each color channel by alpha/255 in place. Alpha
// is unchanged.
func premultiply(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 255 {
			continue
		}
		img.Pix[i+0] = uint8((int(img.Pix[i+0])*a + 127) / 255)
		img.Pix[i+1] = uint8((int(img.Pix[i+1])*a + 127) / 255)
		img.Pix[i+2] = uint8((int(img.Pix[i+2])*a + 127) / 255)
	}
}
