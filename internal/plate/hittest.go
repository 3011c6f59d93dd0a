package plate

import (
	"plate-annotator/pkg/geometry"
)

// hitSlack widens the clickable radius by half a pixel so clicks landing
// on the rasterized well edge still select it. It stays below one pixel:
// a click a full pixel outside the well must miss.
const hitSlack = 0.5

// HitTest maps a canvas point through the viewport into original-image
// space and returns the well under it. A point is inside a well when it
// lies within WellDiameter/2 + hitSlack of the well center; the nearest
// such well wins. The second return is false when no well is hit.
func (l Layout) HitTest(canvasPoint geometry.Point2D, vp Viewport) (int, bool) {
	imagePoint := vp.CanvasToImage(canvasPoint)

	best := 0
	bestDist := l.WellDiameter/2 + hitSlack
	for well := 1; well <= l.WellCount(); well++ {
		center, err := l.WellCenter(well)
		if err != nil {
			return 0, false
		}
		if d := imagePoint.Distance(center); d <= bestDist {
			best = well
			bestDist = d
		}
	}
	if best == 0 {
		return 0, false
	}
	return best, true
}
