package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTaxonomy is returned when a historical classification string
// cannot be mapped to the current vocabulary.
var ErrUnknownTaxonomy = errors.New("unknown taxonomy value")

// levelRenames maps retired growth levels to current ones. The retired
// three-level scheme folded weak_growth into positive.
var levelRenames = map[string]GrowthLevel{
	"weak_growth": GrowthPositive,
}

// patternRenames is the fixed rename table from retired pattern
// vocabularies to the current one. The left column covers both the
// three-level scheme's patterns and the legacy default placeholders
// historical config importers wrote.
var patternRenames = map[string]GrowthPattern{
	"small_dots":          PatternCenterDots,
	"clustered":           PatternFocal,
	"scattered":           PatternScatteredStrong,
	"strong_scattered":    PatternScatteredStrong,
	"small_center_weak":   PatternFaintCenterDots,
	"litter_center_dots":  PatternFaintCenterDots,
	"light_gray":          PatternScatteredWeak,
	"weak_scattered_pos":  PatternScatteredWeak,
	"irregular_areas":     PatternIrregular,
	"default_positive":    PatternFocal,
	"default_weak_growth": PatternCenterDots,
}

// interferenceRenames maps retired interference names to current ones.
var interferenceRenames = map[string]Interference{
	"noise":     InterferenceArtifacts,
	"edge_blur": InterferencePores,
	"scratches": InterferenceDebris,
}

// MigrateGrowthLevel maps a historical growth level string to the
// current vocabulary. Current values pass through unchanged, so the
// mapping is idempotent.
func MigrateGrowthLevel(raw string) (GrowthLevel, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if level := GrowthLevel(s); level.Valid() {
		return level, nil
	}
	if level, ok := levelRenames[s]; ok {
		return level, nil
	}
	return "", fmt.Errorf("%w: growth level %q", ErrUnknownTaxonomy, raw)
}

// MigrateGrowthPattern maps a historical growth pattern string to the
// current vocabulary under the given (level, microbe) context. Values
// already current pass through unchanged; an empty value resolves to the
// level's default pattern. The mapping is idempotent: migrating a
// migrated value returns it unchanged.
func MigrateGrowthPattern(raw string, level GrowthLevel, microbe MicrobeType) (GrowthPattern, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultPattern(level), nil
	}
	if p := GrowthPattern(s); ValidPattern(p, level, microbe) {
		return p, nil
	}
	if p, ok := patternRenames[s]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: growth pattern %q for %s/%s", ErrUnknownTaxonomy, raw, level, microbe)
}

// MigrateInterference maps a historical interference factor name to the
// current vocabulary. Idempotent like the other migrations.
func MigrateInterference(raw string) (Interference, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if f := Interference(s); f.Valid() {
		return f, nil
	}
	if f, ok := interferenceRenames[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: interference factor %q", ErrUnknownTaxonomy, raw)
}

// MigrateLabel parses a free-form legacy classification label of the
// shape "level" or "level_pattern" (for example "positive_clustered" or
// the bare symbols "+"/"-") and returns its current-vocabulary
// equivalent. Config importers use it to materialize records from
// legacy plate config files.
func MigrateLabel(raw string, microbe MicrobeType) (GrowthLevel, GrowthPattern, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "+":
		return GrowthPositive, DefaultPattern(GrowthPositive), nil
	case "-":
		return GrowthNegative, DefaultPattern(GrowthNegative), nil
	}

	// Longest level prefix first so "weak_growth_small_dots" does not
	// stop at a bogus "weak" level.
	for _, prefix := range []string{"weak_growth", "negative", "positive"} {
		if s == prefix {
			level, err := MigrateGrowthLevel(prefix)
			if err != nil {
				return "", "", err
			}
			// A bare retired level keeps its era's placeholder pattern.
			if prefix == "weak_growth" {
				return level, patternRenames["default_weak_growth"], nil
			}
			return level, DefaultPattern(level), nil
		}
		if strings.HasPrefix(s, prefix+"_") {
			level, err := MigrateGrowthLevel(prefix)
			if err != nil {
				return "", "", err
			}
			pattern, err := MigrateGrowthPattern(strings.TrimPrefix(s, prefix+"_"), level, microbe)
			if err != nil {
				return "", "", err
			}
			return level, pattern, nil
		}
	}
	return "", "", fmt.Errorf("%w: classification label %q", ErrUnknownTaxonomy, raw)
}
