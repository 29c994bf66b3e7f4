// SPDX-License-Identifier: GPL-2.0-or-later

package process

import (
	"fmt"
	"image"
)

// BoundingBox is the pixel rectangle of non-transparent content.
// Right and Bottom are exclusive.
type BoundingBox struct {
	Left, Top, Right, Bottom int
}

func (b BoundingBox) Width() int {
	return b.Right - b.Left
}

func (b BoundingBox) Height() int {
	return b.Bottom - b.Top
}

// Update grows the box to the outer envelope of both boxes.
func (b *BoundingBox) Update(o BoundingBox) {
	if o.Left < b.Left {
		b.Left = o.Left
	}
	if o.Top < b.Top {
		b.Top = o.Top
	}
	if o.Right > b.Right {
		b.Right = o.Right
	}
	if o.Bottom > b.Bottom {
		b.Bottom = o.Bottom
	}
}

func (b BoundingBox) rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// EmptyImageError reports an image with no pixel of alpha > 0.
type EmptyImageError struct {
	Path string
}

func (e *EmptyImageError) Error() string {
	if e.Path == "" {
		return "image is fully transparent"
	}
	return fmt.Sprintf("image is fully transparent (%s)", e.Path)
}

// FindBBox returns the smallest box covering every pixel with
// alpha > 0. The image is expected to sit at origin.
func FindBBox(img *image.NRGBA) (BoundingBox, error) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	box := BoundingBox{Left: w, Top: h, Right: 0, Bottom: 0}
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < box.Left {
				box.Left = x
			}
			if x+1 > box.Right {
				box.Right = x + 1
			}
			if y < box.Top {
				box.Top = y
			}
			box.Bottom = y + 1
		}
	}
	if box.Right <= box.Left || box.Bottom <= box.Top {
		return BoundingBox{}, &EmptyImageError{}
	}
	return box, nil
}
