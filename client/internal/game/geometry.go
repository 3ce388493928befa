package game

import "math"

// Coordinate is a pixel position in the natural (unscaled) image grid.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type sizeF struct{ w, h float64 }

type vec struct{ x, y float64 }

// ImageDimensions describes how the natural image maps onto its on-screen
// container under "contain" scaling: the painted size, the letterbox offset
// and the rendered->natural scale factors. Recomputed on image load and on
// every container resize; pointer input is ignored while it is unset.
type ImageDimensions struct {
	natural  sizeF
	rendered sizeF
	offset   vec
	scale    vec
}

// computeDimensions fits an image of naturalW x naturalH into a container of
// containerW x containerH preserving aspect ratio, centering along the
// letterboxed axis. Returns false when either size is degenerate.
func computeDimensions(naturalW, naturalH int, containerW, containerH float64) (ImageDimensions, bool) {
	if naturalW <= 0 || naturalH <= 0 || containerW <= 0 || containerH <= 0 {
		return ImageDimensions{}, false
	}
	nw, nh := float64(naturalW), float64(naturalH)
	imageAspect := nw / nh
	containerAspect := containerW / containerH

	var d ImageDimensions
	d.natural = sizeF{nw, nh}
	if imageAspect > containerAspect {
		d.rendered.w = containerW
		d.rendered.h = containerW / imageAspect
		d.offset = vec{0, (containerH - d.rendered.h) / 2}
	} else {
		d.rendered.h = containerH
		d.rendered.w = containerH * imageAspect
		d.offset = vec{(containerW - d.rendered.w) / 2, 0}
	}
	d.scale = vec{nw / d.rendered.w, nh / d.rendered.h}
	return d, true
}

// clampToImage pins a container-local point to the rendered image's box.
func (d *ImageDimensions) clampToImage(x, y float64) (float64, float64) {
	cx := math.Max(d.offset.x, math.Min(x, d.offset.x+d.rendered.w))
	cy := math.Max(d.offset.y, math.Min(y, d.offset.y+d.rendered.h))
	return cx, cy
}

// screenToCanonical converts a container-local point into a natural-image
// Coordinate. Points outside the rendered box are rejected unless allowClamp
// is set, in which case they snap to the nearest edge (drag tracking). The
// result is always inside [0,W-1] x [0,H-1].
func (d *ImageDimensions) screenToCanonical(x, y float64, allowClamp bool) (Coordinate, bool) {
	outside := x < d.offset.x || x > d.offset.x+d.rendered.w ||
		y < d.offset.y || y > d.offset.y+d.rendered.h
	if outside && !allowClamp {
		return Coordinate{}, false
	}

	cx, cy := d.clampToImage(x, y)

	canonX := int(math.Round((cx - d.offset.x) * d.scale.x))
	canonY := int(math.Round((cy - d.offset.y) * d.scale.y))

	// Rounding can overshoot the last pixel by one.
	canonX = clampInt(canonX, 0, int(d.natural.w)-1)
	canonY = clampInt(canonY, 0, int(d.natural.h)-1)
	return Coordinate{X: canonX, Y: canonY}, true
}

// canonicalToScreen is the forward transform, used to place the marker.
func (d *ImageDimensions) canonicalToScreen(c Coordinate) (float64, float64) {
	x := d.offset.x + float64(c.X)/d.natural.w*d.rendered.w
	y := d.offset.y + float64(c.Y)/d.natural.h*d.rendered.h
	return x, y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
