// SPDX-License-Identifier: GPL-2.0-or-later

// Package builder assembles the source/animation/layer/frame graph
// for one compile run from animation configurations and frame counts.
package builder

import (
	"fmt"

	"github.com/pkg/errors"

	"animaker/anim"
	"animaker/config"
)

// UnresolvedReferenceError reports a copy or first-frame animation
// whose reference is not a resolved folder animation.
type UnresolvedReferenceError struct {
	Anim string
	Ref  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("animation %q references %q, which is not a resolved folder animation", e.Anim, e.Ref)
}

// IncompleteGraphError reports animations left unresolved after both
// build passes.
type IncompleteGraphError struct {
	Missing []string
}

func (e *IncompleteGraphError) Error() string {
	return fmt.Sprintf("animations were not processed: %v", e.Missing)
}

// A Session owns the id counters and configuration registry of one
// compile run. Sessions are not safe for concurrent use; build one per
// run.
type Session struct {
	targetSize    int
	order         []string
	configs       map[string]*config.Animation
	sourceCounter uint16
	layerCounter  int16
}

func NewSession(targetSize int) *Session {
	s := &Session{targetSize: targetSize}
	s.Reset()
	return s
}

// Reset clears the registry and restarts both id counters.
func (s *Session) Reset() {
	s.order = nil
	s.configs = make(map[string]*config.Animation)
	s.sourceCounter = 0
	s.layerCounter = 0
}

// Add registers an animation configuration.
func (s *Session) Add(cfg *config.Animation) error {
	if _, ok := s.configs[cfg.Name]; ok {
		return errors.Errorf("animation %q already exists", cfg.Name)
	}
	s.configs[cfg.Name] = cfg
	s.order = append(s.order, cfg.Name)
	return nil
}

// BuildAll builds the graph in two passes: folder animations allocate
// sources and resolve first, then copy and first-frame animations
// alias the source of their reference. Copy animations inherit the
// reference frame count, first-frame animations get exactly one frame.
func (s *Session) BuildAll(frameCounts map[string]int, commonName string) ([]anim.Source, []anim.Animation, error) {
	s.sourceCounter = 0
	s.layerCounter = 0

	var sources []anim.Source
	var animations []anim.Animation
	sourceIDs := make(map[string]uint16)
	resolved := make(map[string]bool)

	for _, name := range s.order {
		cfg := s.configs[name]
		if cfg.Type != anim.Folder {
			continue
		}
		count, ok := frameCounts[name]
		if !ok {
			return nil, nil, errors.Errorf("no frame count for animation %q", name)
		}
		src := s.newSource(name, commonName)
		sources = append(sources, src)
		sourceIDs[name] = src.ID
		animations = append(animations, s.newAnimation(name, count, int16(src.ID), cfg, commonName))
		resolved[name] = true
	}

	for _, name := range s.order {
		cfg := s.configs[name]
		if cfg.Type == anim.Folder {
			continue
		}
		if cfg.Reference == "" {
			return nil, nil, errors.Errorf("no reference animation specified for %q", name)
		}
		srcID, ok := sourceIDs[cfg.Reference]
		if !ok {
			return nil, nil, &UnresolvedReferenceError{Anim: name, Ref: cfg.Reference}
		}
		count := 1
		if cfg.Type == anim.Copy {
			count = frameCounts[cfg.Reference]
		}
		animations = append(animations, s.newAnimation(name, count, int16(srcID), cfg, commonName))
		resolved[name] = true
	}

	var missing []string
	for _, name := range s.order {
		if !resolved[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &IncompleteGraphError{Missing: missing}
	}
	return sources, animations, nil
}

// newSource allocates the next source id with a placeholder path built
// from the common name. The compiler back-fills path and dimensions
// once the atlas exists.
func (s *Session) newSource(name, commonName string) anim.Source {
	src := anim.Source{
		Path: fmt.Sprintf("%s_%s.xml", commonName, name),
		ID:   s.sourceCounter,
	}
	s.sourceCounter++
	return src
}

func (s *Session) newAnimation(name string, frameCount int, sourceID int16, cfg *config.Animation, commonName string) anim.Animation {
	centered := uint32(0)
	if cfg.Centered {
		centered = 1
	}
	return anim.Animation{
		Name:       name,
		Width:      uint16(s.targetSize),
		Height:     uint16(s.targetSize),
		LoopOffset: 0,
		Centered:   centered,
		Layers:     []anim.Layer{s.newLayer(frameCount, sourceID, cfg, commonName)},
	}
}

func (s *Session) newLayer(frameCount int, sourceID int16, cfg *config.Animation, commonName string) anim.Layer {
	l := anim.Layer{
		Name:     "Anim Maker " + commonName,
		Type:     1,
		Blend:    cfg.Blend,
		Parent:   -1,
		ID:       s.layerCounter,
		Source:   sourceID,
		Width:    uint16(s.targetSize),
		Height:   uint16(s.targetSize),
		AnchorX:  0,
		AnchorY:  0,
		Metadata: "",
		Frames:   s.newFrames(frameCount, cfg),
	}
	s.layerCounter++
	return l
}

// newFrames synthesizes the keyframes. Position carries a scale
// correction of (100-scale)*0.8 on both axes so visually scaled
// sprites stay anchored. Color is never authored.
func (s *Session) newFrames(frameCount int, cfg *config.Animation) []anim.Frame {
	frameTime := 1.0 / cfg.FPS
	scaleFactor := cfg.Scale / 100.0
	scaleOffset := (100.0 - cfg.Scale) * 0.8
	size := float32(s.targetSize)

	frames := make([]anim.Frame, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		frames = append(frames, anim.Frame{
			Time: float32(i) * frameTime,
			Position: anim.Position{
				Immediate: anim.Set,
				X:         cfg.PositionX + scaleOffset,
				Y:         cfg.PositionY + scaleOffset,
			},
			Scale: anim.Scale{
				Immediate: anim.Set,
				X:         size * scaleFactor,
				Y:         size * scaleFactor,
			},
			Rotation: anim.Value{Immediate: anim.Set, Value: 0},
			Opacity:  anim.Value{Immediate: anim.Set, Value: 100},
			Sprite:   anim.Sprite{Immediate: anim.Set, Name: SpriteName(i)},
			Color:    anim.Color{Immediate: anim.Unset, R: -1, G: -1, B: -1},
		})
	}
	return frames
}

// SpriteName returns the atlas sprite name of frame i. The packer uses
// the same name for its metadata entries so engine lookups line up.
func SpriteName(i int) string {
	return fmt.Sprintf("frame_%03d", i)
}
