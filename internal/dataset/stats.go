package dataset

import (
	"gonum.org/v1/gonum/stat"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

// Statistics is an on-demand snapshot of the dataset for a status
// display. A well counts as unannotated when it has no record or its
// record still holds every default value.
type Statistics struct {
	TotalWells  int
	Annotated   int
	Unannotated int

	ByLevel  map[taxonomy.GrowthLevel]int
	BySource map[annotation.Source]int

	// Sample mean and standard deviation of confidence per growth
	// level, over annotated wells only. NaN when a level has no
	// annotated wells (mean) or fewer than two (stddev).
	ConfidenceMean   map[taxonomy.GrowthLevel]float64
	ConfidenceStdDev map[taxonomy.GrowthLevel]float64
}

// Statistics recomputes the snapshot from the current records.
func (s *Store) Statistics() Statistics {
	stats := Statistics{
		TotalWells:       plate.WellCount,
		ByLevel:          make(map[taxonomy.GrowthLevel]int),
		BySource:         make(map[annotation.Source]int),
		ConfidenceMean:   make(map[taxonomy.GrowthLevel]float64),
		ConfidenceStdDev: make(map[taxonomy.GrowthLevel]float64),
	}

	confidences := make(map[taxonomy.GrowthLevel][]float64)
	for _, rec := range s.records {
		if rec.IsDefault() {
			continue
		}
		stats.Annotated++
		stats.ByLevel[rec.Level]++
		stats.BySource[rec.Source]++
		confidences[rec.Level] = append(confidences[rec.Level], rec.Confidence)
	}
	stats.Unannotated = stats.TotalWells - stats.Annotated

	for level, vals := range confidences {
		stats.ConfidenceMean[level] = stat.Mean(vals, nil)
		stats.ConfidenceStdDev[level] = stat.StdDev(vals, nil)
	}
	return stats
}
