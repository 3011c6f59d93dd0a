// Command cfgimport converts a legacy .cfg classification file into a
// dataset document, migrating legacy taxonomy names along the way.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"plate-annotator/internal/config"
	"plate-annotator/internal/dataset"
	"plate-annotator/internal/legacycfg"
	"plate-annotator/internal/logging"
	"plate-annotator/internal/version"
)

func main() {
	cfgPath := flag.String("config", "", "Path to app config (TOML)")
	inPath := flag.String("in", "", "Legacy .cfg file to import")
	outPath := flag.String("out", "", "Output dataset JSON (default: <in>.json)")
	plateID := flag.String("plate", "", "Plate identifier (default: input filename stem)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *inPath == "" {
		fmt.Println("Usage: cfgimport -in <file.cfg> [-out dataset.json] [-plate id] [-config app.toml]")
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, cleanup, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	id := *plateID
	if id == "" {
		base := filepath.Base(*inPath)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	layout := cfg.PlateLayout()
	classifications, err := legacycfg.ParseFile(*inPath, layout.StartWell())
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}

	store := dataset.New(id)
	microbe := cfg.MicrobeType()
	imported, skipped := 0, 0
	wells := make([]int, 0, len(classifications))
	for well := range classifications {
		wells = append(wells, well)
	}
	sort.Ints(wells)
	for _, well := range wells {
		raw := classifications[well]
		rec, err := legacycfg.Materialize(id, well, raw, microbe)
		if err != nil {
			logger.Warn("classification skipped", "well", well, "value", raw, "error", err)
			skipped++
			continue
		}
		if err := store.Upsert(rec); err != nil {
			logger.Warn("record rejected", "well", well, "error", err)
			skipped++
			continue
		}
		imported++
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(*inPath, filepath.Ext(*inPath)) + ".json"
	}
	if err := store.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d wells (%d skipped) from %s\n", imported, skipped, *inPath)
	fmt.Printf("Wrote %s\n", out)
}
