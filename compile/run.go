// SPDX-License-Identifier: GPL-2.0-or-later

package compile

import (
	"log"

	"github.com/pkg/errors"

	"animaker/anim"
	"animaker/builder"
	"animaker/config"
	"animaker/process"
)

// Options describe one compile run.
type Options struct {
	Configs    []*config.Animation
	OutputRoot string
	CommonName string
	BinName    string
	TargetSize int
}

// RunResult is everything a compile produced in memory: processed
// frames for previews and the serialized graph with back-filled
// sources.
type RunResult struct {
	Frames     *process.Result
	Sources    []anim.Source
	Animations []anim.Animation
}

// Run executes a full compile: process all frames against one global
// bounding box, assemble the animation graph, clean stale outputs,
// write spritesheets, atlas XML and the binary descriptor, and verify
// the output set. The processed frames are returned so callers can
// show per-animation previews. Cleanup runs before regeneration, so a
// failing run can leave the output directory without prior artifacts
// for these names.
func Run(opts Options) (*RunResult, error) {
	if len(opts.Configs) == 0 {
		return nil, errors.New("no animations configured")
	}
	if opts.CommonName == "" || opts.BinName == "" {
		return nil, errors.New("common name and bin name must be set")
	}

	set, err := process.NewSet(opts.TargetSize)
	if err != nil {
		return nil, err
	}
	for _, cfg := range opts.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := set.Add(cfg.Name, cfg.Type, cfg.SourcePath, cfg.Reference); err != nil {
			return nil, err
		}
	}

	res, err := set.ProcessAll()
	if err != nil {
		return nil, err
	}
	log.Printf("processed %d animations, global box %dx%d",
		len(res.Order), res.GlobalBox.Width(), res.GlobalBox.Height())

	session := builder.NewSession(opts.TargetSize)
	for _, cfg := range opts.Configs {
		if err := session.Add(cfg); err != nil {
			return nil, err
		}
	}
	sources, animations, err := session.BuildAll(res.FrameCounts(), opts.CommonName)
	if err != nil {
		return nil, err
	}
	log.Printf("built %d sources, %d animations", len(sources), len(animations))

	c, err := NewCompiler(opts.OutputRoot)
	if err != nil {
		return nil, err
	}
	if err := c.Cleanup(opts.CommonName, opts.BinName); err != nil {
		return nil, err
	}
	if err := c.Compile(res, sources, animations, opts.BinName, opts.CommonName); err != nil {
		return nil, err
	}
	if err := c.Verify(opts.CommonName, opts.BinName); err != nil {
		return nil, err
	}
	return &RunResult{Frames: res, Sources: sources, Animations: animations}, nil
}
