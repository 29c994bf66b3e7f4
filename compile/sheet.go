// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"encoding/xml"
	"image"
	"image/draw"
	"os"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"animaker/builder"
	"animaker/process"
)

// A Sheet is one packed spritesheet: the atlas image and the top-left
// placement of every frame.
type Sheet struct {
	Image     *image.NRGBA
	Positions []image.Point
	FrameSize image.Point
}

// sheetLayout returns the near-square grid for frameCount frames.
func sheetLayout(frameCount int) (cols, rows int) {
	cols = int(math32.Ceil(math32.Sqrt(float32(frameCount))))
	rows = (frameCount + cols - 1) / cols
	return cols, rows
}

// PackSheet arranges the frames of one animation into a near-square
// grid. Frame i goes to cell (i mod cols, i div cols). All frames
// share the processor's fixed canvas size.
func PackSheet(frames []*process.ProcessedFrame) (*Sheet, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames provided")
	}
	size := image.Pt(frames[0].Image.Rect.Dx(), frames[0].Image.Rect.Dy())
	cols, rows := sheetLayout(len(frames))

	sheet := image.NewNRGBA(image.Rect(0, 0, cols*size.X, rows*size.Y))
	positions := make([]image.Point, 0, len(frames))
	for i, frame := range frames {
		pos := image.Pt((i%cols)*size.X, (i/cols)*size.Y)
		r := image.Rectangle{Min: pos, Max: pos.Add(size)}
		draw.Draw(sheet, r, frame.Image, frame.Image.Rect.Min, draw.Src)
		positions = append(positions, pos)
	}
	return &Sheet{Image: sheet, Positions: positions, FrameSize: size}, nil
}

type atlasSprite struct {
	Name   string `xml:"n,attr"`
	X      int    `xml:"x,attr"`
	Y      int    `xml:"y,attr"`
	W      int    `xml:"w,attr"`
	H      int    `xml:"h,attr"`
	PivotX string `xml:"pX,attr"`
	PivotY string `xml:"pY,attr"`
}

type textureAtlas struct {
	XMLName   xml.Name      `xml:"TextureAtlas"`
	ImagePath string        `xml:"imagePath,attr"`
	Width     int           `xml:"width,attr"`
	Height    int           `xml:"height,attr"`
	Hires     string        `xml:"hires,attr"`
	Sprites   []atlasSprite `xml:"sprite"`
}

// atlasDoc builds the TextureAtlas metadata for a sheet. Sprite names
// match the frame sprite channel so engine lookups line up by name.
// The pivot sits at the frame center.
func atlasDoc(sheet *Sheet, imagePath string) *textureAtlas {
	doc := &textureAtlas{
		ImagePath: imagePath,
		Width:     sheet.Image.Rect.Dx(),
		Height:    sheet.Image.Rect.Dy(),
		Hires:     "true",
	}
	for i, pos := range sheet.Positions {
		doc.Sprites = append(doc.Sprites, atlasSprite{
			Name:   builder.SpriteName(i),
			X:      pos.X,
			Y:      pos.Y,
			W:      sheet.FrameSize.X,
			H:      sheet.FrameSize.Y,
			PivotX: "0.5",
			PivotY: "0.5",
		})
	}
	return doc
}

func writeAtlasXML(path string, sheet *Sheet, imagePath string) error {
	data, err := xml.MarshalIndent(atlasDoc(sheet, imagePath), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}
