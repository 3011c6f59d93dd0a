// Command suggest runs the growth suggester over a plate scan and
// writes suggested annotations to a dataset document.
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
	"plate-annotator/internal/imageio"
	"plate-annotator/internal/logging"
	"plate-annotator/internal/suggest"
	"plate-annotator/internal/version"
)

func main() {
	cfgPath := flag.String("config", "", "Path to app config (TOML)")
	imagePath := flag.String("image", "", "Plate scan image (png, jpg, bmp, tiff)")
	outPath := flag.String("out", "", "Output dataset JSON (default: <image>.json)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *imagePath == "" {
		fmt.Println("Usage: suggest -image <scan.png> [-out dataset.json] [-config app.toml]")
		os.Exit(1)
	}
	if !imageio.IsSupportedFormat(*imagePath) {
		fmt.Fprintf(os.Stderr, "unsupported image format, want one of %v\n", imageio.SupportedFormats())
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

	img, err := imageio.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %dx%d pixels\n", filepath.Base(img.Path), img.Width(), img.Height())

	params := suggest.Params{
		BlurKernel:    cfg.Suggest.BlurKernel,
		DarkThreshold: cfg.Suggest.DarkThreshold,
		MinCoverage:   cfg.Suggest.MinCoverage,
		HeavyCoverage: cfg.Suggest.HeavyCoverage,
		CenterRatio:   cfg.Suggest.CenterRatio,
	}
	engine := suggest.New(params, logger)

	plateID := img.PlateID()
	records, err := engine.SuggestPlate(plateID, img.Image, cfg.PlateLayout(), cfg.MicrobeType())
	if err != nil {
		fmt.Fprintf(os.Stderr, "suggest: %v\n", err)
		os.Exit(1)
	}

	store := dataset.New(plateID)
	wells := make([]int, 0, len(records))
	for well := range records {
		wells = append(wells, well)
	}
	sort.Ints(wells)
	for _, well := range wells {
		if err := store.Upsert(records[well]); err != nil {
			logger.Warn("suggestion rejected", "well", well, "error", err)
		}
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(*imagePath, filepath.Ext(*imagePath)) + ".json"
	}
	if err := store.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Suggested %d wells, wrote %s\n", len(records), out)
}
