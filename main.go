// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"log"
	"path/filepath"
	"strings"

	"animaker/bundle"
	"animaker/compile"
	"animaker/config"
)

var (
	configFlag = flag.String("config", "anim_meta.yaml", "animation metadata file")
	outFlag    = flag.String("out", "build", "output root directory")
	commonFlag = flag.String("common-name", "Animation", "common name prefix for spritesheets and atlases")
	binFlag    = flag.String("bin-name", "", "descriptor name, defaults to the output directory name")
	sizeFlag   = flag.Int("size", 192, "target canvas size in pixels")
	bundleFlag = flag.String("bundle", "", "optional debug bundle file")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	binName := *binFlag
	if binName == "" {
		base := filepath.Base(*outFlag)
		binName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	configs, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load metadata: %v", err)
	}

	res, err := compile.Run(compile.Options{
		Configs:    configs,
		OutputRoot: *outFlag,
		CommonName: *commonFlag,
		BinName:    binName,
		TargetSize: *sizeFlag,
	})
	if err != nil {
		log.Fatalf("compile: %v", err)
	}
	log.Printf("wrote %d animations to %s", len(res.Animations), *outFlag)

	if *bundleFlag != "" {
		writeBundle(*bundleFlag, *commonFlag, binName, res)
	}
}

// writeBundle is best effort. A broken bundle must not fail a compile
// that already wrote its outputs.
func writeBundle(path, commonName, binName string, res *compile.RunResult) {
	previews, err := bundle.EncodePreviews(res.Frames)
	if err != nil {
		log.Printf("warning: bundle previews: %v", err)
		return
	}
	m := bundle.BuildManifest(commonName, binName, res.Sources, res.Animations)
	if err := bundle.Write(path, m, previews); err != nil {
		log.Printf("warning: write bundle: %v", err)
		return
	}
	log.Printf("wrote debug bundle %s", path)
}
