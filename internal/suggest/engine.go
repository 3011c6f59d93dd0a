// Package suggest proposes growth annotations from well image content.
// Suggestions carry source model_suggestion and are never confirmed;
// an annotator reviews and promotes them.
package suggest

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"gocv.io/x/gocv"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

// Params tunes the growth measurement.
type Params struct {
	// BlurKernel is the Gaussian blur aperture, odd.
	BlurKernel int
	// DarkThreshold separates growth (dark) from agar background on the
	// blurred grayscale well crop, 0-255.
	DarkThreshold float64
	// MinCoverage is the growth pixel fraction below which a well is
	// considered clean.
	MinCoverage float64
	// HeavyCoverage is the fraction above which growth is heavy.
	HeavyCoverage float64
	// CenterRatio is the center-disc vs full-disc coverage ratio above
	// which growth counts as center concentrated.
	CenterRatio float64
}

// DefaultParams returns thresholds tuned on panoramic plate scans.
func DefaultParams() Params {
	return Params{
		BlurKernel:    5,
		DarkThreshold: 110,
		MinCoverage:   0.02,
		HeavyCoverage: 0.45,
		CenterRatio:   2.0,
	}
}

// Measurement is the raw per-well signal extracted from the image.
type Measurement struct {
	Coverage       float64 // growth pixel fraction over the well disc
	CenterCoverage float64 // growth fraction over the inner third disc
	MeanIntensity  float64 // mean gray level over the disc, 0-255
}

// Engine measures wells on a plate scan and turns the measurements
// into suggested annotations.
type Engine struct {
	params Params
	logger *slog.Logger
}

// New creates an engine. A nil logger uses the default.
func New(params Params, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{params: params, logger: logger}
}

// SuggestWell measures a single well and returns its suggested record.
func (e *Engine) SuggestWell(plateID string, img image.Image, layout plate.Layout, well int, microbe taxonomy.MicrobeType) (annotation.Record, error) {
	if img == nil {
		return annotation.Record{}, fmt.Errorf("nil plate image")
	}
	if err := layout.Validate(); err != nil {
		return annotation.Record{}, fmt.Errorf("layout: %w", err)
	}

	mat, err := imageToMat(img)
	if err != nil {
		return annotation.Record{}, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := e.params.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{k, k}, 0, 0, gocv.BorderDefault)

	m, ok := e.measureWell(blurred, layout, well)
	if !ok {
		return annotation.Record{}, fmt.Errorf("well %d disc outside image", well)
	}
	level, pattern, confidence := classify(m, e.params, microbe)
	return annotation.New(plateID, well, microbe, level, pattern, nil,
		confidence, annotation.SourceModelSuggestion)
}

// SuggestPlate measures every well of the layout and returns suggested
// records keyed by well number. Wells before the variant start well are
// skipped. The microbe type steers which patterns are suggested.
func (e *Engine) SuggestPlate(plateID string, img image.Image, layout plate.Layout, microbe taxonomy.MicrobeType) (map[int]annotation.Record, error) {
	if img == nil {
		return nil, fmt.Errorf("nil plate image")
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := e.params.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Point{k, k}, 0, 0, gocv.BorderDefault)

	out := make(map[int]annotation.Record)
	start := layout.Variant.StartWell()
	for well := start; well <= plate.WellCount; well++ {
		m, ok := e.measureWell(blurred, layout, well)
		if !ok {
			continue
		}
		level, pattern, confidence := classify(m, e.params, microbe)
		rec, err := annotation.New(plateID, well, microbe, level, pattern, nil,
			confidence, annotation.SourceModelSuggestion)
		if err != nil {
			e.logger.Warn("suggestion rejected", "well", well, "error", err)
			continue
		}
		out[well] = rec
	}
	e.logger.Info("plate suggested", "plate", plateID, "wells", len(out))
	return out, nil
}

// measureWell crops the well disc from the blurred grayscale plate and
// extracts coverage statistics. Wells whose disc falls outside the
// image report ok=false.
func (e *Engine) measureWell(blurred gocv.Mat, layout plate.Layout, well int) (Measurement, bool) {
	center, err := layout.WellCenter(well)
	if err != nil {
		return Measurement{}, false
	}
	radius := layout.WellDiameter / 2

	x1 := int(center.X - radius)
	y1 := int(center.Y - radius)
	x2 := int(center.X + radius)
	y2 := int(center.Y + radius)
	if x1 < 0 || y1 < 0 || x2 > blurred.Cols() || y2 > blurred.Rows() || x2 <= x1 || y2 <= y1 {
		return Measurement{}, false
	}

	roi := blurred.Region(image.Rect(x1, y1, x2, y2))
	defer roi.Close()

	var darkTotal, darkCenter, total, centerTotal, sum float64
	cx := float64(roi.Cols()) / 2
	cy := float64(roi.Rows()) / 2
	centerRadius := radius / 3
	for y := 0; y < roi.Rows(); y++ {
		for x := 0; x < roi.Cols(); x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d := math.Sqrt(dx*dx + dy*dy)
			if d > radius {
				continue
			}
			v := float64(roi.GetUCharAt(y, x))
			sum += v
			total++
			dark := v < e.params.DarkThreshold
			if dark {
				darkTotal++
			}
			if d <= centerRadius {
				centerTotal++
				if dark {
					darkCenter++
				}
			}
		}
	}
	if total == 0 {
		return Measurement{}, false
	}

	m := Measurement{
		Coverage:      darkTotal / total,
		MeanIntensity: sum / total,
	}
	if centerTotal > 0 {
		m.CenterCoverage = darkCenter / centerTotal
	}
	return m, true
}

// classify maps a measurement to a growth level, pattern and confidence.
func classify(m Measurement, p Params, microbe taxonomy.MicrobeType) (taxonomy.GrowthLevel, taxonomy.GrowthPattern, float64) {
	if m.Coverage < p.MinCoverage {
		conf := 1 - m.Coverage/p.MinCoverage*0.5
		return taxonomy.GrowthNegative, taxonomy.PatternClean, conf
	}

	centerRatio := 0.0
	if m.Coverage > 0 {
		centerRatio = m.CenterCoverage / m.Coverage
	}

	level := taxonomy.GrowthPositive
	var pattern taxonomy.GrowthPattern
	switch {
	case m.Coverage >= p.HeavyCoverage:
		pattern = taxonomy.PatternHeavyGrowth
	case centerRatio >= p.CenterRatio:
		pattern = taxonomy.PatternCenterDots
	case microbe == taxonomy.MicrobeFungi && m.Coverage >= p.HeavyCoverage/2:
		pattern = taxonomy.PatternDiffuse
	case m.Coverage >= p.HeavyCoverage/2:
		pattern = taxonomy.PatternScatteredStrong
	default:
		pattern = taxonomy.PatternScatteredWeak
	}

	// Confidence grows with distance from the clean threshold, capped
	// below manual certainty.
	conf := 0.5 + math.Min(m.Coverage/p.HeavyCoverage, 1)*0.4
	return level, pattern, conf
}

// imageToMat converts a Go image.Image to an OpenCV Mat in BGR order.
func imageToMat(srcImg image.Image) (gocv.Mat, error) {
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := srcImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
