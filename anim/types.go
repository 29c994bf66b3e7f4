// SPDX-License-Identifier: GPL-2.0-or-later

// Package anim holds the animation object graph written into the
// engine binary descriptor: sources, animations, layers, frames and
// the per-channel keyframe values.
package anim

import (
	"fmt"

	"animaker/binfile"
)

// ImmediateState tags a frame channel as explicitly authored (Set),
// absent (Unset) or intentionally cleared (None).
type ImmediateState int8

const (
	Unset ImmediateState = -1
	Set   ImmediateState = 0
	None  ImmediateState = 1
)

func (s ImmediateState) write(w *binfile.Writer) {
	w.WriteInt8(int8(s))
}

func readImmediateState(r *binfile.Reader) (ImmediateState, error) {
	v, err := r.ReadInt8()
	if err != nil {
		return Unset, err
	}
	s := ImmediateState(v)
	switch s {
	case Unset, Set, None:
		return s, nil
	}
	return Unset, fmt.Errorf("anim: invalid immediate state %d", v)
}

// BlendMode selects how a layer composites onto the scene.
type BlendMode uint32

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendSubtractive
)

func (b BlendMode) String() string {
	switch b {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	case BlendSubtractive:
		return "subtractive"
	}
	return fmt.Sprintf("BlendMode(%d)", uint32(b))
}

func (b BlendMode) write(w *binfile.Writer) {
	w.WriteUint32(uint32(b))
}

func readBlendMode(r *binfile.Reader) (BlendMode, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return BlendNormal, err
	}
	b := BlendMode(v)
	switch b {
	case BlendNormal, BlendAdditive, BlendSubtractive:
		return b, nil
	}
	return BlendNormal, fmt.Errorf("anim: invalid blend mode %d", v)
}

// Type says where an animation gets its frames from: a folder of
// numbered PNGs, a full copy of another animation, or just the first
// frame of another animation.
type Type int

const (
	Folder Type = iota
	Copy
	FirstFrame
)

func (t Type) String() string {
	switch t {
	case Folder:
		return "folder"
	case Copy:
		return "copy"
	case FirstFrame:
		return "first_frame"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Position is an animatable x/y channel.
type Position struct {
	Immediate ImmediateState
	X, Y      float32
}

func (p *Position) Write(w *binfile.Writer) {
	p.Immediate.write(w)
	w.WriteFloat(p.X)
	w.WriteFloat(p.Y)
}

func ReadPosition(r *binfile.Reader) (Position, error) {
	var p Position
	var err error
	if p.Immediate, err = readImmediateState(r); err != nil {
		return p, err
	}
	if p.X, err = r.ReadFloat(); err != nil {
		return p, err
	}
	p.Y, err = r.ReadFloat()
	return p, err
}

// Scale is an animatable x/y scale channel.
type Scale struct {
	Immediate ImmediateState
	X, Y      float32
}

func (s *Scale) Write(w *binfile.Writer) {
	s.Immediate.write(w)
	w.WriteFloat(s.X)
	w.WriteFloat(s.Y)
}

func ReadScale(r *binfile.Reader) (Scale, error) {
	var s Scale
	var err error
	if s.Immediate, err = readImmediateState(r); err != nil {
		return s, err
	}
	if s.X, err = r.ReadFloat(); err != nil {
		return s, err
	}
	s.Y, err = r.ReadFloat()
	return s, err
}

// Value is a single-float channel (rotation, opacity).
type Value struct {
	Immediate ImmediateState
	Value     float32
}

func (v *Value) Write(w *binfile.Writer) {
	v.Immediate.write(w)
	w.WriteFloat(v.Value)
}

func ReadValue(r *binfile.Reader) (Value, error) {
	var v Value
	var err error
	if v.Immediate, err = readImmediateState(r); err != nil {
		return v, err
	}
	v.Value, err = r.ReadFloat()
	return v, err
}

// Color is an rgb tint channel. The pipeline never authors it, so the
// immediate state stays Unset and the components stay -1.
type Color struct {
	Immediate ImmediateState
	R, G, B   int8
}

func (c *Color) Write(w *binfile.Writer) {
	c.Immediate.write(w)
	w.WriteInt8(c.R)
	w.WriteInt8(c.G)
	w.WriteInt8(c.B)
}

func ReadColor(r *binfile.Reader) (Color, error) {
	var c Color
	var err error
	if c.Immediate, err = readImmediateState(r); err != nil {
		return c, err
	}
	if c.R, err = r.ReadInt8(); err != nil {
		return c, err
	}
	if c.G, err = r.ReadInt8(); err != nil {
		return c, err
	}
	c.B, err = r.ReadInt8()
	return c, err
}

// Sprite names the atlas frame shown at a keyframe.
type Sprite struct {
	Immediate ImmediateState
	Name      string
}

func (s *Sprite) Write(w *binfile.Writer) error {
	s.Immediate.write(w)
	return w.WriteString(s.Name)
}

func ReadSprite(r *binfile.Reader) (Sprite, error) {
	var s Sprite
	var err error
	if s.Immediate, err = readImmediateState(r); err != nil {
		return s, err
	}
	s.Name, err = r.ReadString()
	return s, err
}

// Frame is one keyframe of a layer.
type Frame struct {
	Time     float32
	Position Position
	Scale    Scale
	Rotation Value
	Opacity  Value
	Sprite   Sprite
	Color    Color
}

func (f *Frame) Write(w *binfile.Writer) error {
	w.WriteFloat(f.Time)
	f.Position.Write(w)
	f.Scale.Write(w)
	f.Rotation.Write(w)
	f.Opacity.Write(w)
	if err := f.Sprite.Write(w); err != nil {
		return err
	}
	f.Color.Write(w)
	return nil
}

func ReadFrame(r *binfile.Reader) (Frame, error) {
	var f Frame
	var err error
	if f.Time, err = r.ReadFloat(); err != nil {
		return f, err
	}
	if f.Position, err = ReadPosition(r); err != nil {
		return f, err
	}
	if f.Scale, err = ReadScale(r); err != nil {
		return f, err
	}
	if f.Rotation, err = ReadValue(r); err != nil {
		return f, err
	}
	if f.Opacity, err = ReadValue(r); err != nil {
		return f, err
	}
	if f.Sprite, err = ReadSprite(r); err != nil {
		return f, err
	}
	f.Color, err = ReadColor(r)
	return f, err
}

// Layer is the single drawing layer of an animation. Parent is -1 when
// the layer has no parent. Source is a foreign key into the source
// list.
type Layer struct {
	Name     string
	Type     int32
	Blend    BlendMode
	Parent   int16
	ID       int16
	Source   int16
	Width    uint16
	Height   uint16
	AnchorX  float32
	AnchorY  float32
	Metadata string
	Frames   []Frame
}

func (l *Layer) Write(w *binfile.Writer) error {
	if err := w.WriteString(l.Name); err != nil {
		return err
	}
	w.WriteInt32(l.Type)
	l.Blend.write(w)
	w.WriteInt16(l.Parent)
	w.WriteInt16(l.ID)
	w.WriteInt16(l.Source)
	w.WriteUint16(l.Width)
	w.WriteUint16(l.Height)
	w.WriteFloat(l.AnchorX)
	w.WriteFloat(l.AnchorY)
	if err := w.WriteString(l.Metadata); err != nil {
		return err
	}
	w.WriteUint32(uint32(len(l.Frames)))
	for i := range l.Frames {
		if err := l.Frames[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

func ReadLayer(r *binfile.Reader) (Layer, error) {
	var l Layer
	var err error
	if l.Name, err = r.ReadString(); err != nil {
		return l, err
	}
	if l.Type, err = r.ReadInt32(); err != nil {
		return l, err
	}
	if l.Blend, err = readBlendMode(r); err != nil {
		return l, err
	}
	if l.Parent, err = r.ReadInt16(); err != nil {
		return l, err
	}
	if l.ID, err = r.ReadInt16(); err != nil {
		return l, err
	}
	if l.Source, err = r.ReadInt16(); err != nil {
		return l, err
	}
	if l.Width, err = r.ReadUint16(); err != nil {
		return l, err
	}
	if l.Height, err = r.ReadUint16(); err != nil {
		return l, err
	}
	if l.AnchorX, err = r.ReadFloat(); err != nil {
		return l, err
	}
	if l.AnchorY, err = r.ReadFloat(); err != nil {
		return l, err
	}
	if l.Metadata, err = r.ReadString(); err != nil {
		return l, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return l, err
	}
	l.Frames = make([]Frame, 0, count)
	for i := uint32(0); i < count; i++ {
		f, err := ReadFrame(r)
		if err != nil {
			return l, err
		}
		l.Frames = append(l.Frames, f)
	}
	return l, nil
}

// Animation is one named animation. The pipeline always emits exactly
// one layer per animation.
type Animation struct {
	Name       string
	Width      uint16
	Height     uint16
	LoopOffset float32
	Centered   uint32
	Layers     []Layer
}

func (a *Animation) Write(w *binfile.Writer) error {
	if err := w.WriteString(a.Name); err != nil {
		return err
	}
	w.WriteUint16(a.Width)
	w.WriteUint16(a.Height)
	w.WriteFloat(a.LoopOffset)
	w.WriteUint32(a.Centered)
	w.WriteUint32(uint32(len(a.Layers)))
	for i := range a.Layers {
		if err := a.Layers[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

func ReadAnimation(r *binfile.Reader) (Animation, error) {
	var a Animation
	var err error
	if a.Name, err = r.ReadString(); err != nil {
		return a, err
	}
	if a.Width, err = r.ReadUint16(); err != nil {
		return a, err
	}
	if a.Height, err = r.ReadUint16(); err != nil {
		return a, err
	}
	if a.LoopOffset, err = r.ReadFloat(); err != nil {
		return a, err
	}
	if a.Centered, err = r.ReadUint32(); err != nil {
		return a, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return a, err
	}
	a.Layers = make([]Layer, 0, count)
	for i := uint32(0); i < count; i++ {
		l, err := ReadLayer(r)
		if err != nil {
			return a, err
		}
		a.Layers = append(a.Layers, l)
	}
	return a, nil
}

// Source is an atlas reference. Path starts out as a placeholder and
// is back-filled with the generated atlas XML filename; width and
// height stay 0 until the compiler fills them in.
type Source struct {
	Path   string
	ID     uint16
	Width  uint16
	Height uint16
}

func (s *Source) Write(w *binfile.Writer) error {
	if err := w.WriteString(s.Path); err != nil {
		return err
	}
	w.WriteUint16(s.ID)
	w.WriteUint16(s.Width)
	w.WriteUint16(s.Height)
	return nil
}

func ReadSource(r *binfile.Reader) (Source, error) {
	var s Source
	var err error
	if s.Path, err = r.ReadString(); err != nil {
		return s, err
	}
	if s.ID, err = r.ReadUint16(); err != nil {
		return s, err
	}
	if s.Width, err = r.ReadUint16(); err != nil {
		return s, err
	}
	s.Height, err = r.ReadUint16()
	return s, err
}
