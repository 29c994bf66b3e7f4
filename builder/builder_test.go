// SPDX-License-Identifier: GPL-2.0-or-later

package builder

import (
	"testing"

	"animaker/anim"
	"animaker/config"
)

func folderConfig(name, source string) *config.Animation {
	return &config.Animation{
		Name: name, Type: anim.Folder, SourcePath: source,
		FPS: 30, Centered: true, PositionY: -70, Scale: 100,
	}
}

func refConfig(name string, typ anim.Type, ref string) *config.Animation {
	return &config.Animation{
		Name: name, Type: typ, Reference: ref,
		FPS: 30, Centered: true, PositionY: -70, Scale: 100,
	}
}

func TestBuildFolderAnimation(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("Idle", "frames/idle")); err != nil {
		t.Fatal(err)
	}
	sources, animations, err := s.BuildAll(map[string]int{"Idle": 4}, "Hero")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("source count = %d, want 1", len(sources))
	}
	if len(animations) != 1 {
		t.Fatalf("animation count = %d, want 1", len(animations))
	}
	src := sources[0]
	if src.ID != 0 || src.Path != "Hero_Idle.xml" || src.Width != 0 || src.Height != 0 {
		t.Errorf("source = %+v", src)
	}

	a := animations[0]
	if a.Name != "Idle" || a.Width != 192 || a.Height != 192 || a.Centered != 1 {
		t.Errorf("animation = %+v", a)
	}
	if len(a.Layers) != 1 {
		t.Fatalf("layer count = %d, want 1", len(a.Layers))
	}
	l := a.Layers[0]
	if l.Name != "Anim Maker Hero" || l.Type != 1 || l.Parent != -1 || l.ID != 0 || l.Source != 0 {
		t.Errorf("layer = %+v", l)
	}
	if len(l.Frames) != 4 {
		t.Fatalf("frame count = %d, want 4", len(l.Frames))
	}
	if l.Frames[0].Time != 0 {
		t.Errorf("frame 0 time = %v, want 0", l.Frames[0].Time)
	}
	if got, want := l.Frames[3].Time, float32(3)*(float32(1.0)/30); got != want {
		t.Errorf("frame 3 time = %v, want %v", got, want)
	}
	f := l.Frames[2]
	if f.Position.Immediate != anim.Set || f.Position.X != 0 || f.Position.Y != -70 {
		t.Errorf("position = %+v", f.Position)
	}
	if f.Scale.Immediate != anim.Set || f.Scale.X != 192 || f.Scale.Y != 192 {
		t.Errorf("scale = %+v", f.Scale)
	}
	if f.Rotation.Value != 0 || f.Opacity.Value != 100 {
		t.Errorf("rotation/opacity = %+v/%+v", f.Rotation, f.Opacity)
	}
	if f.Sprite.Name != "frame_002" || f.Sprite.Immediate != anim.Set {
		t.Errorf("sprite = %+v", f.Sprite)
	}
	if f.Color.Immediate != anim.Unset || f.Color.R != -1 {
		t.Errorf("color = %+v", f.Color)
	}
}

func TestScaleCorrection(t *testing.T) {
	s := NewSession(192)
	cfg := folderConfig("Idle", "frames/idle")
	cfg.Scale = 50
	cfg.PositionX = 3
	if err := s.Add(cfg); err != nil {
		t.Fatal(err)
	}
	_, animations, err := s.BuildAll(map[string]int{"Idle": 1}, "Hero")
	if err != nil {
		t.Fatal(err)
	}
	f := animations[0].Layers[0].Frames[0]
	// (100-50)*0.8 = 40 added to both axes.
	if f.Position.X != 43 || f.Position.Y != -30 {
		t.Errorf("position = (%v,%v), want (43,-30)", f.Position.X, f.Position.Y)
	}
	if f.Scale.X != 96 || f.Scale.Y != 96 {
		t.Errorf("scale = (%v,%v), want (96,96)", f.Scale.X, f.Scale.Y)
	}
}

func TestCopyAndFirstFrameAliasSource(t *testing.T) {
	s := NewSession(192)
	for _, cfg := range []*config.Animation{
		folderConfig("Idle", "frames/idle"),
		refConfig("IdleCopy", anim.Copy, "Idle"),
		refConfig("Still", anim.FirstFrame, "Idle"),
	} {
		if err := s.Add(cfg); err != nil {
			t.Fatal(err)
		}
	}
	sources, animations, err := s.BuildAll(map[string]int{"Idle": 4}, "Hero")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 {
		t.Fatalf("source count = %d, want 1 (copies alias the folder source)", len(sources))
	}
	if len(animations) != 3 {
		t.Fatalf("animation count = %d, want 3", len(animations))
	}
	idle := animations[0]
	cp := animations[1]
	still := animations[2]
	if cp.Name != "IdleCopy" || still.Name != "Still" {
		t.Fatalf("pass order wrong: %s, %s", cp.Name, still.Name)
	}
	if cp.Layers[0].Source != idle.Layers[0].Source {
		t.Errorf("copy source id = %d, want %d", cp.Layers[0].Source, idle.Layers[0].Source)
	}
	if len(cp.Layers[0].Frames) != 4 {
		t.Errorf("copy frame count = %d, want 4", len(cp.Layers[0].Frames))
	}
	if len(still.Layers[0].Frames) != 1 {
		t.Errorf("first-frame frame count = %d, want 1", len(still.Layers[0].Frames))
	}
	// Layer ids keep counting across passes.
	if idle.Layers[0].ID != 0 || cp.Layers[0].ID != 1 || still.Layers[0].ID != 2 {
		t.Errorf("layer ids = %d,%d,%d", idle.Layers[0].ID, cp.Layers[0].ID, still.Layers[0].ID)
	}
}

func TestUnresolvedReference(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("Idle", "frames/idle")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(refConfig("Broken", anim.Copy, "Nope")); err != nil {
		t.Fatal(err)
	}
	_, _, err := s.BuildAll(map[string]int{"Idle": 4}, "Hero")
	if err == nil {
		t.Fatal("BuildAll did not fail")
	}
	ref, ok := err.(*UnresolvedReferenceError)
	if !ok {
		t.Fatalf("error is %T, want *UnresolvedReferenceError", err)
	}
	if ref.Anim != "Broken" || ref.Ref != "Nope" {
		t.Errorf("error = %+v", ref)
	}
}

func TestCopyOfCopyFails(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("Idle", "frames/idle")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(refConfig("CopyA", anim.Copy, "Idle")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(refConfig("CopyB", anim.Copy, "CopyA")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.BuildAll(map[string]int{"Idle": 4}, "Hero"); err == nil {
		t.Fatal("copy of a copy did not fail")
	}
}

func TestMissingFrameCount(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("Idle", "frames/idle")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.BuildAll(map[string]int{}, "Hero"); err == nil {
		t.Fatal("missing frame count did not fail")
	}
}

func TestDuplicateAdd(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("Idle", "frames/idle")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(folderConfig("Idle", "frames/other")); err == nil {
		t.Error("duplicate add accepted")
	}
}

func TestResetRestartsCounters(t *testing.T) {
	s := NewSession(192)
	if err := s.Add(folderConfig("A", "frames/a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(folderConfig("B", "frames/b")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.BuildAll(map[string]int{"A": 1, "B": 1}, "Hero"); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if err := s.Add(folderConfig("C", "frames/c")); err != nil {
		t.Fatal(err)
	}
	sources, animations, err := s.BuildAll(map[string]int{"C": 1}, "Hero")
	if err != nil {
		t.Fatal(err)
	}
	if sources[0].ID != 0 {
		t.Errorf("source id after reset = %d, want 0", sources[0].ID)
	}
	if animations[0].Layers[0].ID != 0 {
		t.Errorf("layer id after reset = %d, want 0", animations[0].Layers[0].ID)
	}
}
