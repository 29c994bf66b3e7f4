// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"image"
	"image/color"
	"testing"

	"animaker/process"
)

func solidFrame(size int, c color.NRGBA) *process.ProcessedFrame {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return &process.ProcessedFrame{
		Image:        img,
		OriginalSize: image.Pt(size, size),
		Offset:       image.Pt(0, 0),
	}
}

func TestSheetLayout(t *testing.T) {
	cases := []struct {
		frames, cols, rows int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{4, 2, 2},
		{5, 3, 2},
		{9, 3, 3},
		{10, 4, 3},
	}
	for _, c := range cases {
		cols, rows := sheetLayout(c.frames)
		if cols != c.cols || rows != c.rows {
			t.Errorf("sheetLayout(%d) = %d,%d, want %d,%d", c.frames, cols, rows, c.cols, c.rows)
		}
	}
}

func TestPackSheetFiveFrames(t *testing.T) {
	frames := make([]*process.ProcessedFrame, 5)
	for i := range frames {
		frames[i] = solidFrame(64, color.NRGBA{R: uint8(50 * i), A: 255})
	}
	sheet, err := PackSheet(frames)
	if err != nil {
		t.Fatal(err)
	}
	if got := sheet.Image.Rect.Dx(); got != 192 {
		t.Errorf("atlas width = %d, want 192", got)
	}
	if got := sheet.Image.Rect.Dy(); got != 128 {
		t.Errorf("atlas height = %d, want 128", got)
	}
	if sheet.Positions[4] != image.Pt(64, 64) {
		t.Errorf("frame 4 at %v, want (64,64)", sheet.Positions[4])
	}
	if sheet.FrameSize != image.Pt(64, 64) {
		t.Errorf("frame size = %v", sheet.FrameSize)
	}
	// Frame 4's pixels land in its cell.
	if got := sheet.Image.NRGBAAt(70, 70).R; got != 200 {
		t.Errorf("frame 4 pixel R = %d, want 200", got)
	}
	// The unused cell stays transparent.
	if got := sheet.Image.NRGBAAt(150, 100).A; got != 0 {
		t.Errorf("unused cell alpha = %d, want 0", got)
	}
}

func TestPackSheetEmpty(t *testing.T) {
	if _, err := PackSheet(nil); err == nil {
		t.Error("PackSheet(nil) did not fail")
	}
}

func TestAtlasDoc(t *testing.T) {
	frames := []*process.ProcessedFrame{
		solidFrame(64, color.NRGBA{A: 255}),
		solidFrame(64, color.NRGBA{A: 255}),
		solidFrame(64, color.NRGBA{A: 255}),
	}
	sheet, err := PackSheet(frames)
	if err != nil {
		t.Fatal(err)
	}
	doc := atlasDoc(sheet, "gfx/bori_love/Hero_Idle.png")
	if doc.ImagePath != "gfx/bori_love/Hero_Idle.png" || doc.Hires != "true" {
		t.Errorf("atlas attrs = %+v", doc)
	}
	if doc.Width != 128 || doc.Height != 128 {
		t.Errorf("atlas size = %dx%d, want 128x128", doc.Width, doc.Height)
	}
	if len(doc.Sprites) != 3 {
		t.Fatalf("sprite count = %d, want 3", len(doc.Sprites))
	}
	s := doc.Sprites[2]
	if s.Name != "frame_002" {
		t.Errorf("sprite name = %q", s.Name)
	}
	if s.X != 0 || s.Y != 64 || s.W != 64 || s.H != 64 {
		t.Errorf("sprite box = %d,%d %dx%d", s.X, s.Y, s.W, s.H)
	}
	if s.PivotX != "0.5" || s.PivotY != "0.5" {
		t.Errorf("pivot = %s,%s", s.PivotX, s.PivotY)
	}
}
