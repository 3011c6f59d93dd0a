package plate

import (
	"plate-annotator/pkg/geometry"
)

// FitPolicy selects how an image is scaled into a canvas.
type FitPolicy int

const (
	// FitContain scales so the whole image is visible, centered with
	// letterbox bars on the shorter axis.
	FitContain FitPolicy = iota
	// FitCover scales so the canvas is fully covered; the image may be
	// cropped on the longer axis.
	FitCover
)

func (p FitPolicy) String() string {
	switch p {
	case FitContain:
		return "fit"
	case FitCover:
		return "fill"
	default:
		return "unknown"
	}
}

// Viewport maps original-image coordinates onto a canvas:
// canvas = image*Scale + Offset. It is ephemeral state, recomputed on
// every canvas resize or image change and never persisted; calibration
// data must never be stored pre-multiplied by Scale.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// ComputeViewport derives the viewport for an image of imgW x imgH pixels
// shown on a canvas of canvasW x canvasH. Callers must recompute on every
// canvas-size or source-image change; a cached viewport from a previous
// size produces wrong hit-tests.
func ComputeViewport(canvasW, canvasH, imgW, imgH float64, policy FitPolicy) Viewport {
	if canvasW <= 0 || canvasH <= 0 || imgW <= 0 || imgH <= 0 {
		return Viewport{Scale: 1}
	}

	sx := canvasW / imgW
	sy := canvasH / imgH

	var scale float64
	if policy == FitCover {
		scale = max(sx, sy)
	} else {
		scale = min(sx, sy)
	}

	return Viewport{
		Scale:   scale,
		OffsetX: (canvasW - imgW*scale) / 2,
		OffsetY: (canvasH - imgH*scale) / 2,
	}
}

// Transform returns the viewport as an affine image-to-canvas transform.
func (v Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.OffsetX, v.OffsetY).Compose(geometry.Scale(v.Scale, v.Scale))
}

// ImageToCanvas maps an original-image point to canvas coordinates.
func (v Viewport) ImageToCanvas(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// CanvasToImage maps a canvas point back to original-image coordinates.
// It is the exact inverse of ImageToCanvas for any non-degenerate scale.
func (v Viewport) CanvasToImage(p geometry.Point2D) geometry.Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return geometry.Point2D{}
	}
	return inv.Apply(p)
}
