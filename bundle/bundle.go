// SPDX-License-Identifier: GPL-2.0-or-later

// Package bundle writes the optional debug bundle of a compile run: a
// JSON manifest of the generated graph plus per-animation preview
// thumbnails, stored in a single bbolt file an editor can open.
// Bundle failures never abort a compile.
package bundle

import (
	"bytes"
	"encoding/json"
	"image/png"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"animaker/anim"
	"animaker/process"
)

var (
	manifestBucket = []byte("manifest")
	previewBucket  = []byte("previews")
	manifestKey    = []byte("info")
)

type SourceInfo struct {
	Path   string `json:"path"`
	ID     uint16 `json:"id"`
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

type LayerInfo struct {
	Name       string  `json:"name"`
	Type       int32   `json:"type"`
	Blend      string  `json:"blend"`
	Source     int16   `json:"source"`
	AnchorX    float32 `json:"anchor_x"`
	AnchorY    float32 `json:"anchor_y"`
	FrameCount int     `json:"frame_count"`
}

type AnimationInfo struct {
	Name     string      `json:"name"`
	Width    uint16      `json:"width"`
	Height   uint16      `json:"height"`
	Centered uint32      `json:"centered"`
	Layers   []LayerInfo `json:"layers"`
}

// Manifest describes one compile run.
type Manifest struct {
	RunID      string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	CommonName string          `json:"common_name"`
	BinName    string          `json:"bin_name"`
	Sources    []SourceInfo    `json:"sources"`
	Animations []AnimationInfo `json:"animations"`
}

// BuildManifest flattens the compiled graph into the manifest form.
func BuildManifest(commonName, binName string, sources []anim.Source, animations []anim.Animation) *Manifest {
	m := &Manifest{
		RunID:      uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		CommonName: commonName,
		BinName:    binName,
	}
	for _, s := range sources {
		m.Sources = append(m.Sources, SourceInfo{
			Path: s.Path, ID: s.ID, Width: s.Width, Height: s.Height,
		})
	}
	for _, a := range animations {
		info := AnimationInfo{
			Name: a.Name, Width: a.Width, Height: a.Height, Centered: a.Centered,
		}
		for _, l := range a.Layers {
			info.Layers = append(info.Layers, LayerInfo{
				Name:       l.Name,
				Type:       l.Type,
				Blend:      l.Blend.String(),
				Source:     l.Source,
				AnchorX:    l.AnchorX,
				AnchorY:    l.AnchorY,
				FrameCount: len(l.Frames),
			})
		}
		m.Animations = append(m.Animations, info)
	}
	return m
}

// EncodePreviews encodes the first processed frame of every animation
// as PNG bytes, keyed by animation name.
func EncodePreviews(res *process.Result) (map[string][]byte, error) {
	previews := make(map[string][]byte, len(res.Order))
	for _, name := range res.Order {
		frames := res.Frames[name]
		if len(frames) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, frames[0].Image); err != nil {
			return nil, errors.Wrapf(err, "preview for %q", name)
		}
		previews[name] = buf.Bytes()
	}
	return previews, nil
}

// Write stores the manifest and previews in the bbolt file at path,
// replacing the contents of a previous run.
func Write(path string, m *Manifest, previews map[string][]byte) error {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return errors.Wrap(err, "open bundle")
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{manifestBucket, previewBucket} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		mb, err := tx.CreateBucket(manifestBucket)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		if err := mb.Put(manifestKey, data); err != nil {
			return err
		}
		pb, err := tx.CreateBucket(previewBucket)
		if err != nil {
			return err
		}
		for name, img := range previews {
			if err := pb.Put([]byte(name), img); err != nil {
				return err
			}
		}
		return nil
	})
}

// Read loads the manifest and previews back from a bundle file.
func Read(path string) (*Manifest, map[string][]byte, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, nil, errors.Wrap(err, "open bundle")
	}
	defer db.Close()

	var m Manifest
	previews := make(map[string][]byte)
	err = db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(manifestBucket)
		if mb == nil {
			return errors.New("no manifest bucket")
		}
		data := mb.Get(manifestKey)
		if data == nil {
			return errors.New("no manifest entry")
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if pb := tx.Bucket(previewBucket); pb != nil {
			return pb.ForEach(func(k, v []byte) error {
				previews[string(k)] = append([]byte(nil), v...)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &m, previews, nil
}
