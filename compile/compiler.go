// SPDX-License-Identifier: GPL-2.0-or-later

// Package compile turns processed frames and the assembled animation
// graph into the final output set: spritesheet PNGs, TextureAtlas XML
// files and the binary descriptor.
package compile

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"animaker/anim"
	"animaker/binfile"
	"animaker/process"
)

// IncompleteOutputError reports a compile whose output set failed
// post-compile verification.
type IncompleteOutputError struct {
	MissingPNG bool
	MissingXML bool
	MissingBin bool
}

func (e *IncompleteOutputError) Error() string {
	return fmt.Sprintf("incomplete output set (png missing: %v, xml missing: %v, bin missing: %v)",
		e.MissingPNG, e.MissingXML, e.MissingBin)
}

// OutputPaths are the three output subtrees of a compile run.
type OutputPaths struct {
	GfxDir string
	XMLDir string
	BinDir string
}

// CreateOutputPaths builds the output directory structure under root.
// Idempotent.
func CreateOutputPaths(root string) (*OutputPaths, error) {
	p := &OutputPaths{
		GfxDir: filepath.Join(root, "gfx", "bori"),
		XMLDir: filepath.Join(root, "xml_resources"),
		BinDir: filepath.Join(root, "xml_bin"),
	}
	for _, dir := range []string{p.GfxDir, p.XMLDir, p.BinDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output directories")
		}
	}
	return p, nil
}

// A Compiler writes the output set of one run.
type Compiler struct {
	paths *OutputPaths
}

func NewCompiler(outputRoot string) (*Compiler, error) {
	paths, err := CreateOutputPaths(outputRoot)
	if err != nil {
		return nil, err
	}
	return &Compiler{paths: paths}, nil
}

func (c *Compiler) Paths() *OutputPaths {
	return c.paths
}

// Cleanup deletes outputs of a previous compile with the same names,
// so a run with fewer frames leaves no stale artifacts behind.
func (c *Compiler) Cleanup(commonName, binName string) error {
	for _, g := range []string{
		filepath.Join(c.paths.GfxDir, commonName+"_*.png"),
		filepath.Join(c.paths.XMLDir, commonName+"_*.xml"),
	} {
		matches, err := filepath.Glob(g)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil {
				return errors.Wrapf(err, "remove stale output %s", m)
			}
		}
	}
	bin := filepath.Join(c.paths.BinDir, binName+".bin")
	if err := os.Remove(bin); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove stale output %s", bin)
	}
	return nil
}

// Compile writes one spritesheet PNG and atlas XML per animation with
// frames, back-fills the sources with the generated atlas filenames
// and dimensions, and serializes the descriptor. Any failure aborts
// the run.
func (c *Compiler) Compile(res *process.Result, sources []anim.Source, animations []anim.Animation, binName, commonName string) error {
	xmlPaths := make(map[string]string)
	for i := range animations {
		name := animations[i].Name
		frames := res.Frames[name]
		if len(frames) == 0 {
			continue
		}
		spriteName := fmt.Sprintf("%s_%s", commonName, name)
		sheet, err := PackSheet(frames)
		if err != nil {
			return errors.Wrapf(err, "animation %q", name)
		}
		if err := writePNG(filepath.Join(c.paths.GfxDir, spriteName+".png"), sheet); err != nil {
			return errors.Wrapf(err, "animation %q", name)
		}
		imagePath := fmt.Sprintf("gfx/bori_love/%s.png", spriteName)
		if err := writeAtlasXML(filepath.Join(c.paths.XMLDir, spriteName+".xml"), sheet, imagePath); err != nil {
			return errors.Wrapf(err, "animation %q", name)
		}
		xmlPaths[name] = spriteName + ".xml"
	}

	backfillSources(sources, animations, res, xmlPaths, commonName)

	w := binfile.NewWriter()
	if err := anim.WriteDescriptor(w, sources, animations); err != nil {
		return errors.Wrap(err, "encode descriptor")
	}
	bin := filepath.Join(c.paths.BinDir, binName+".bin")
	if err := os.WriteFile(bin, w.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write descriptor")
	}
	return nil
}

// backfillSources replaces every source's placeholder path with the
// recorded atlas XML filename and fills in the canvas size of the
// first processed frame of the owning animation.
func backfillSources(sources []anim.Source, animations []anim.Animation, res *process.Result, xmlPaths map[string]string, commonName string) {
	for i := range sources {
		for j := range animations {
			name := animations[j].Name
			xmlName, ok := xmlPaths[name]
			if !ok {
				continue
			}
			if sources[i].Path != fmt.Sprintf("%s_%s.xml", commonName, name) {
				continue
			}
			sources[i].Path = xmlName
			if frames := res.Frames[name]; len(frames) > 0 {
				sources[i].Width = uint16(frames[0].Image.Rect.Dx())
				sources[i].Height = uint16(frames[0].Image.Rect.Dy())
			}
			break
		}
	}
}

func writePNG(path string, sheet *Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, sheet.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Verify checks the post-conditions of a compile: at least one PNG
// and one XML matching the common name pattern, and the descriptor
// file.
func (c *Compiler) Verify(commonName, binName string) error {
	pngs, err := filepath.Glob(filepath.Join(c.paths.GfxDir, commonName+"_*.png"))
	if err != nil {
		return err
	}
	xmls, err := filepath.Glob(filepath.Join(c.paths.XMLDir, commonName+"_*.xml"))
	if err != nil {
		return err
	}
	_, statErr := os.Stat(filepath.Join(c.paths.BinDir, binName+".bin"))
	out := &IncompleteOutputError{
		MissingPNG: len(pngs) == 0,
		MissingXML: len(xmls) == 0,
		MissingBin: statErr != nil,
	}
	if out.MissingPNG || out.MissingXML || out.MissingBin {
		return out
	}
	return nil
}
