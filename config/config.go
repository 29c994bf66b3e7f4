// SPDX-License-Identifier: GPL-2.0-or-later

// Package config holds the per-animation compile configuration and
// the YAML metadata file the tool is driven by.
package config

import (
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v2"

	"animaker/anim"
)

// Defaults applied to fields the metadata file leaves out.
const (
	DefaultFPS       = 30.0
	DefaultPositionY = -70.0
	DefaultScale     = 100.0
)

// Animation is the configuration of one animation. Immutable once
// handed to the pipeline.
type Animation struct {
	Name       string
	Type       anim.Type
	SourcePath string
	Reference  string
	FPS        float32
	Centered   bool
	Blend      anim.BlendMode
	PositionX  float32
	PositionY  float32
	Scale      float32
}

// ValidationError reports a malformed animation entry.
type ValidationError struct {
	Anim string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Anim == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: animation %q: %s", e.Anim, e.Msg)
}

// Validate checks the cross-field rules of one entry.
func (a *Animation) Validate() error {
	if a.Name == "" {
		return &ValidationError{Msg: "animation has no name"}
	}
	if math32.IsNaN(a.FPS) || math32.IsInf(a.FPS, 0) || a.FPS <= 0 {
		return &ValidationError{Anim: a.Name, Msg: fmt.Sprintf("fps must be a positive number, got %v", a.FPS)}
	}
	if math32.IsNaN(a.Scale) || math32.IsInf(a.Scale, 0) || a.Scale <= 0 {
		return &ValidationError{Anim: a.Name, Msg: fmt.Sprintf("scale must be a positive percentage, got %v", a.Scale)}
	}
	switch a.Type {
	case anim.Folder:
		if a.SourcePath == "" {
			return &ValidationError{Anim: a.Name, Msg: "folder animation needs a source directory"}
		}
	case anim.Copy, anim.FirstFrame:
		if a.Reference == "" {
			return &ValidationError{Anim: a.Name, Msg: fmt.Sprintf("%s animation needs a reference animation", a.Type)}
		}
	default:
		return &ValidationError{Anim: a.Name, Msg: fmt.Sprintf("unknown animation type %d", a.Type)}
	}
	return nil
}

// ParseType maps a metadata type string onto anim.Type.
func ParseType(s string) (anim.Type, error) {
	switch s {
	case "folder":
		return anim.Folder, nil
	case "copy":
		return anim.Copy, nil
	case "first_frame":
		return anim.FirstFrame, nil
	}
	return 0, fmt.Errorf("unknown animation type %q", s)
}

// ParseBlend maps a metadata blend string onto anim.BlendMode. An
// empty string means normal.
func ParseBlend(s string) (anim.BlendMode, error) {
	switch s {
	case "", "normal":
		return anim.BlendNormal, nil
	case "additive":
		return anim.BlendAdditive, nil
	case "subtractive":
		return anim.BlendSubtractive, nil
	}
	return 0, fmt.Errorf("unknown blend mode %q", s)
}

type entry struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Source    string   `yaml:"source"`
	Reference string   `yaml:"reference"`
	FPS       *float32 `yaml:"fps"`
	Centered  *bool    `yaml:"centered"`
	Blend     string   `yaml:"blend"`
	PositionX *float32 `yaml:"positionX"`
	PositionY *float32 `yaml:"positionY"`
	Scale     *float32 `yaml:"scale"`
}

// Parse decodes the animation metadata document: a YAML list of
// animation entries, in the order the pipeline will process them.
func Parse(data []byte) ([]*Animation, error) {
	var entries []entry
	if err := yaml.UnmarshalStrict(data, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &ValidationError{Msg: "no animations in metadata file"}
	}
	seen := make(map[string]bool, len(entries))
	configs := make([]*Animation, 0, len(entries))
	for _, e := range entries {
		if seen[e.Name] {
			return nil, &ValidationError{Anim: e.Name, Msg: "duplicate animation name"}
		}
		seen[e.Name] = true

		typ, err := ParseType(e.Type)
		if err != nil {
			return nil, &ValidationError{Anim: e.Name, Msg: err.Error()}
		}
		blend, err := ParseBlend(e.Blend)
		if err != nil {
			return nil, &ValidationError{Anim: e.Name, Msg: err.Error()}
		}
		a := &Animation{
			Name:       e.Name,
			Type:       typ,
			SourcePath: e.Source,
			Reference:  e.Reference,
			FPS:        DefaultFPS,
			Centered:   true,
			Blend:      blend,
			PositionY:  DefaultPositionY,
			Scale:      DefaultScale,
		}
		if e.FPS != nil {
			a.FPS = *e.FPS
		}
		if e.Centered != nil {
			a.Centered = *e.Centered
		}
		if e.PositionX != nil {
			a.PositionX = *e.PositionX
		}
		if e.PositionY != nil {
			a.PositionY = *e.PositionY
		}
		if e.Scale != nil {
			a.Scale = *e.Scale
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, a)
	}
	return configs, nil
}

// Load reads and parses a metadata file.
func Load(path string) ([]*Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
