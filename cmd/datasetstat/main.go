// Command datasetstat summarizes one or more dataset documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/dataset"
	"plate-annotator/internal/taxonomy"
	"plate-annotator/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() == 0 {
		fmt.Println("Usage: datasetstat <dataset.json> [more.json ...]")
		os.Exit(1)
	}

	exit := 0
	for _, path := range flag.Args() {
		store, report, err := dataset.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exit = 1
			continue
		}
		printStats(path, store, report)
	}
	os.Exit(exit)
}

func printStats(path string, store *dataset.Store, report dataset.LoadReport) {
	stats := store.Statistics()

	fmt.Printf("%s (plate %s)\n", path, store.PlateID())
	fmt.Printf("  annotated: %d / %d", stats.Annotated, stats.TotalWells)
	if len(report.Skipped) > 0 {
		fmt.Printf("  (%d records skipped on load)", len(report.Skipped))
	}
	fmt.Println()

	levels := make([]string, 0, len(stats.ByLevel))
	for level := range stats.ByLevel {
		levels = append(levels, string(level))
	}
	sort.Strings(levels)
	for _, name := range levels {
		level := taxonomy.GrowthLevel(name)
		fmt.Printf("  %-10s %4d", name, stats.ByLevel[level])
		if mean, ok := stats.ConfidenceMean[level]; ok {
			fmt.Printf("  confidence %.2f (sd %.2f)", mean, stats.ConfidenceStdDev[level])
		}
		fmt.Println()
	}

	sources := make([]string, 0, len(stats.BySource))
	for source := range stats.BySource {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)
	for _, name := range sources {
		fmt.Printf("  source %-18s %4d\n", name, stats.BySource[annotation.Source(name)])
	}
}
