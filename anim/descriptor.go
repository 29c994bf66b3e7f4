// SPDX-License-Identifier: GPL-2.0-or-later

package anim

import (
	"fmt"

	"animaker/binfile"
)

// Watermark closes every descriptor file.
const Watermark = "created by borealis & riotlove"

// WriteDescriptor encodes the full graph: source count and sources,
// animation count and animations, a 4 byte zero sentinel and the
// watermark string.
func WriteDescriptor(w *binfile.Writer, sources []Source, animations []Animation) error {
	w.WriteUint32(uint32(len(sources)))
	for i := range sources {
		if err := sources[i].Write(w); err != nil {
			return err
		}
	}
	w.WriteUint32(uint32(len(animations)))
	for i := range animations {
		if err := animations[i].Write(w); err != nil {
			return err
		}
	}
	w.WriteInt32(0)
	return w.WriteString(Watermark)
}

// ReadDescriptor decodes a stream produced by WriteDescriptor and
// checks the sentinel and watermark.
func ReadDescriptor(r *binfile.Reader) ([]Source, []Animation, error) {
	sourceCount, err := r.ReadUint32()
	if err != nil {
		return nil, nil, err
	}
	sources := make([]Source, 0, sourceCount)
	for i := uint32(0); i < sourceCount; i++ {
		s, err := ReadSource(r)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, s)
	}
	animCount, err := r.ReadUint32()
	if err != nil {
		return nil, nil, err
	}
	animations := make([]Animation, 0, animCount)
	for i := uint32(0); i < animCount; i++ {
		a, err := ReadAnimation(r)
		if err != nil {
			return nil, nil, err
		}
		animations = append(animations, a)
	}
	sentinel, err := r.ReadInt32()
	if err != nil {
		return nil, nil, err
	}
	if sentinel != 0 {
		return nil, nil, fmt.Errorf("anim: descriptor sentinel is %d, want 0", sentinel)
	}
	mark, err := r.ReadString()
	if err != nil {
		return nil, nil, err
	}
	if mark != Watermark {
		return nil, nil, fmt.Errorf("anim: descriptor watermark is %q", mark)
	}
	return sources, animations, nil
}
