// SPDX-License-Identifier: GPL-2.0-or-later

package process

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"animaker/anim"
)

// A Set is the collection of animations of one compile run. Folder
// animations contribute frames on disk; copy and first-frame
// animations borrow the frames of a folder animation. ProcessAll
// derives one global bounding box over every folder frame before any
// frame is transformed, so all spritesheets of the run share the same
// crop and scale geometry.
type Set struct {
	proc    *Processor
	order   []string
	types   map[string]anim.Type
	folders map[string][]string
	refs    map[string]string
}

func NewSet(targetSize int) (*Set, error) {
	proc, err := NewProcessor(targetSize)
	if err != nil {
		return nil, err
	}
	return &Set{
		proc:    proc,
		types:   make(map[string]anim.Type),
		folders: make(map[string][]string),
		refs:    make(map[string]string),
	}, nil
}

// Add registers one animation. Folder animations need an existing
// source directory with at least one PNG; copy and first-frame
// animations need a reference name.
func (s *Set) Add(name string, typ anim.Type, source, ref string) error {
	if _, ok := s.types[name]; ok {
		return errors.Errorf("animation %q already exists", name)
	}
	switch typ {
	case anim.Folder:
		if source == "" {
			return errors.Errorf("animation %q: folder animation needs a source directory", name)
		}
		paths, err := listFrames(source)
		if err != nil {
			return errors.Wrapf(err, "animation %q", name)
		}
		if len(paths) == 0 {
			return errors.Errorf("animation %q: no PNG files in %s", name, source)
		}
		s.folders[name] = paths
	case anim.Copy, anim.FirstFrame:
		if ref == "" {
			return errors.Errorf("animation %q: %s animation needs a reference animation", name, typ)
		}
		s.refs[name] = ref
	default:
		return errors.Errorf("animation %q: unsupported type %s", name, typ)
	}
	s.types[name] = typ
	s.order = append(s.order, name)
	return nil
}

// listFrames returns the PNG files of dir in lexicographic order.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Result is the output of ProcessAll. Frames holds the processed
// frames of every animation, Order preserves registration order so
// later stages iterate deterministically.
type Result struct {
	Frames    map[string][]*ProcessedFrame
	Order     []string
	GlobalBox BoundingBox
}

// FrameCounts returns the frame count per animation.
func (r *Result) FrameCounts() map[string]int {
	counts := make(map[string]int, len(r.Frames))
	for name, frames := range r.Frames {
		counts[name] = len(frames)
	}
	return counts
}

// ProcessAll transforms every animation of the set. The global box is
// computed over all folder frames first; copy animations receive
// shallow copies of the reference frames, first-frame animations only
// the first one.
func (s *Set) ProcessAll() (*Result, error) {
	var all []string
	for _, name := range s.order {
		if s.types[name] == anim.Folder {
			all = append(all, s.folders[name]...)
		}
	}
	if len(all) == 0 {
		return nil, errors.New("no frames found to process")
	}
	global, err := s.proc.GlobalBBox(all)
	if err != nil {
		return nil, errors.Wrap(err, "global bounding box")
	}

	res := &Result{
		Frames:    make(map[string][]*ProcessedFrame, len(s.order)),
		Order:     append([]string(nil), s.order...),
		GlobalBox: global,
	}
	// Folder animations first, so references always resolve against a
	// fully processed animation no matter the registration order.
	for _, name := range s.order {
		if s.types[name] != anim.Folder {
			continue
		}
		frames := make([]*ProcessedFrame, 0, len(s.folders[name]))
		for _, path := range s.folders[name] {
			img, err := loadNRGBA(path)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q: frame %s", name, path)
			}
			frame, err := s.proc.ProcessFrame(img, global, path)
			if err != nil {
				return nil, errors.Wrapf(err, "animation %q", name)
			}
			frames = append(frames, frame)
		}
		res.Frames[name] = frames
	}
	for _, name := range s.order {
		typ := s.types[name]
		if typ != anim.Copy && typ != anim.FirstFrame {
			continue
		}
		// References may only point at folder animations, no chains.
		refName := s.refs[name]
		ref, ok := res.Frames[refName]
		if !ok || s.types[refName] != anim.Folder {
			return nil, errors.Errorf("animation %q: reference %q is not a processed folder animation", name, refName)
		}
		if typ == anim.Copy {
			res.Frames[name] = append([]*ProcessedFrame(nil), ref...)
		} else {
			res.Frames[name] = ref[:1:1]
		}
	}
	return res, nil
}
