// Package taxonomy defines the current microbial growth classification
// vocabulary and the one-way migration from retired vocabularies.
//
// The current scheme is two-level (negative/positive) with a growth
// pattern partitioned by level and microbe type. A retired three-level
// scheme carried an intermediate weak_growth level; its values are
// accepted on load and mapped forward, never written back.
package taxonomy

import (
	"fmt"
	"strings"
)

// MicrobeType identifies the organism class a well was inoculated with.
type MicrobeType string

const (
	MicrobeBacteria MicrobeType = "bacteria"
	MicrobeFungi    MicrobeType = "fungi"
)

// Valid reports whether the microbe type is part of the vocabulary.
func (m MicrobeType) Valid() bool {
	return m == MicrobeBacteria || m == MicrobeFungi
}

func (m MicrobeType) String() string {
	return string(m)
}

// GrowthLevel is the coarse growth classification.
type GrowthLevel string

const (
	GrowthNegative GrowthLevel = "negative"
	GrowthPositive GrowthLevel = "positive"
)

// Valid reports whether the level is part of the current vocabulary.
func (g GrowthLevel) Valid() bool {
	return g == GrowthNegative || g == GrowthPositive
}

func (g GrowthLevel) String() string {
	return string(g)
}

// GrowthPattern is the fine-grained shape/distribution classification,
// conditioned on growth level and microbe type.
type GrowthPattern string

const (
	// Negative patterns.
	PatternClean           GrowthPattern = "clean"
	PatternWeakScattered   GrowthPattern = "weak_scattered"
	PatternFaintCenterDots GrowthPattern = "faint_center_dots"

	// Positive patterns.
	PatternFocal           GrowthPattern = "focal"
	PatternScatteredStrong GrowthPattern = "scattered_strong"
	PatternHeavyGrowth     GrowthPattern = "heavy_growth"
	PatternCenterDots      GrowthPattern = "center_dots"
	PatternScatteredWeak   GrowthPattern = "scattered_weak"
	PatternIrregular       GrowthPattern = "irregular"

	// Positive patterns observed only for fungi.
	PatternDiffuse             GrowthPattern = "diffuse"
	PatternFilamentousNonFused GrowthPattern = "filamentous_non_fused"
	PatternFilamentousFused    GrowthPattern = "filamentous_fused"
)

func (p GrowthPattern) String() string {
	return string(p)
}

// Interference is a visual artifact recorded alongside the classification.
type Interference string

const (
	InterferencePores         Interference = "pores"
	InterferenceArtifacts     Interference = "artifacts"
	InterferenceDebris        Interference = "debris"
	InterferenceContamination Interference = "contamination"
)

// Valid reports whether the interference factor is part of the vocabulary.
func (i Interference) Valid() bool {
	switch i {
	case InterferencePores, InterferenceArtifacts, InterferenceDebris, InterferenceContamination:
		return true
	}
	return false
}

func (i Interference) String() string {
	return string(i)
}

var negativePatterns = []GrowthPattern{
	PatternClean, PatternWeakScattered, PatternFaintCenterDots,
}

var positivePatterns = []GrowthPattern{
	PatternFocal, PatternScatteredStrong, PatternHeavyGrowth,
	PatternCenterDots, PatternScatteredWeak, PatternIrregular,
}

var fungiPositivePatterns = []GrowthPattern{
	PatternDiffuse, PatternFilamentousNonFused, PatternFilamentousFused,
}

// PatternsFor returns the growth patterns valid for a (level, microbe)
// pair, in display order. Fungi share the positive patterns of bacteria
// and add the filamentous family.
func PatternsFor(level GrowthLevel, microbe MicrobeType) []GrowthPattern {
	switch level {
	case GrowthNegative:
		return append([]GrowthPattern(nil), negativePatterns...)
	case GrowthPositive:
		out := append([]GrowthPattern(nil), positivePatterns...)
		if microbe == MicrobeFungi {
			out = append(out, fungiPositivePatterns...)
		}
		return out
	}
	return nil
}

// ValidPattern reports whether pattern is valid for the (level, microbe)
// pair.
func ValidPattern(pattern GrowthPattern, level GrowthLevel, microbe MicrobeType) bool {
	for _, p := range PatternsFor(level, microbe) {
		if p == pattern {
			return true
		}
	}
	return false
}

// DefaultPattern returns the pattern used when a record carries a level
// but no pattern: clean for negative, focal for positive.
func DefaultPattern(level GrowthLevel) GrowthPattern {
	if level == GrowthPositive {
		return PatternFocal
	}
	return PatternClean
}

// ParseMicrobeType parses a microbe type string.
func ParseMicrobeType(s string) (MicrobeType, error) {
	m := MicrobeType(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return MicrobeBacteria, nil
	}
	if !m.Valid() {
		return "", fmt.Errorf("unknown microbe type %q", s)
	}
	return m, nil
}
