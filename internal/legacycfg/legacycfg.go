// Package legacycfg parses the legacy per-plate classification config
// files (.cfg) that predate dataset documents. A parsed config maps well
// numbers to raw legacy classification strings; callers migrate the
// strings through the taxonomy package.
package legacycfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

// configExtensions are tried, in order, when locating the config that
// accompanies a plate image.
var configExtensions = []string{".cfg", ".txt", ".config"}

// FindFor returns the config file sitting next to a plate image, if any.
func FindFor(imagePath string) (string, bool) {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	for _, ext := range configExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// ParseFile reads and parses a config file. startWell is the well number
// of the file's first positional entry (plate-variant dependent).
func ParseFile(path string, startWell int) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	m, err := Parse(string(data), startWell)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses config content. Three historical formats are tried in
// order: a JSON object keyed by well number, line entries of the form
// "well:classification" (colon, comma or whitespace separated), and a
// positional symbol string of '+'/'-' characters starting at startWell.
// Empty content yields an empty map.
func Parse(content string, startWell int) (map[int]string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return map[int]string{}, nil
	}

	if m, ok := parseJSON(content); ok {
		return m, nil
	}
	if m, ok := parseLines(content); ok {
		return m, nil
	}
	if m, ok := parseSymbols(content, startWell); ok {
		return m, nil
	}
	return nil, fmt.Errorf("unrecognized config format")
}

// parseJSON handles {"25": "positive", "26": {"growth_level": ...}}.
// Object values are flattened to "level" or "level_pattern".
func parseJSON(content string) (map[int]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, false
	}

	out := make(map[int]string, len(raw))
	for key, val := range raw {
		well, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || well < 1 || well > plate.WellCount {
			continue
		}

		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			out[well] = s
			continue
		}
		var obj struct {
			GrowthLevel   string `json:"growth_level"`
			GrowthPattern string `json:"growth_pattern"`
		}
		if err := json.Unmarshal(val, &obj); err == nil && obj.GrowthLevel != "" {
			if obj.GrowthPattern != "" {
				out[well] = obj.GrowthLevel + "_" + obj.GrowthPattern
			} else {
				out[well] = obj.GrowthLevel
			}
		}
	}
	return out, true
}

// parseLines handles one entry per line: "25:positive", "25,positive"
// or "25 positive". Blank lines and '#' comments are skipped.
func parseLines(content string) (map[int]string, bool) {
	out := make(map[int]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var fields []string
		switch {
		case strings.Contains(line, ":"):
			fields = strings.SplitN(line, ":", 2)
		case strings.Contains(line, ","):
			fields = strings.SplitN(line, ",", 2)
		default:
			fields = strings.Fields(line)
		}
		if len(fields) != 2 {
			return nil, false
		}

		well, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || well < 1 || well > plate.WellCount {
			return nil, false
		}
		out[well] = strings.TrimSpace(fields[1])
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// parseSymbols handles a bare run of '+'/'-' characters, one per well,
// position i mapping to well startWell+i.
func parseSymbols(content string, startWell int) (map[int]string, bool) {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, content)
	if compact == "" {
		return nil, false
	}

	out := make(map[int]string, len(compact))
	for i, r := range compact {
		well := startWell + i
		if well > plate.WellCount {
			break
		}
		switch r {
		case '+', '-':
			out[well] = string(r)
		default:
			return nil, false
		}
	}
	return out, true
}

// Materialize converts one parsed classification into an annotation
// record with source config_import and the import default confidence.
func Materialize(plateID string, well int, raw string, microbe taxonomy.MicrobeType) (annotation.Record, error) {
	level, pattern, err := taxonomy.MigrateLabel(raw, microbe)
	if err != nil {
		return annotation.Record{}, err
	}
	return annotation.New(plateID, well, microbe, level, pattern, nil,
		annotation.ConfigImportConfidence, annotation.SourceConfigImport)
}

// Map is an in-memory multi-plate config lookup satisfying the
// navigation ConfigSource contract.
type Map struct {
	plates map[string]map[int]string
}

// NewMap creates an empty lookup.
func NewMap() *Map {
	return &Map{plates: make(map[string]map[int]string)}
}

// Add registers a parsed config for a plate.
func (m *Map) Add(plateID string, classifications map[int]string) {
	m.plates[plateID] = classifications
}

// Classification returns the raw legacy classification for a well.
func (m *Map) Classification(plateID string, well int) (string, bool) {
	cfg, ok := m.plates[plateID]
	if !ok {
		return "", false
	}
	raw, ok := cfg[well]
	return raw, ok
}
