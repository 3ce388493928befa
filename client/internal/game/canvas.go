package game

import (
	"fmt"
	"image/color"

	"github.com/jeefxM/STB-World/shared/protocol"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

// Magnifier geometry: a 120px loupe at 2.5x zoom, lifted above the finger.
const (
	magnifierSize = 120
	magnifierZoom = 2.5
	magnifierLift = 30
)

// Canvas shows the obscured game image inside a fixed screen region and turns
// taps and drags into natural-image Coordinates. It owns only the ephemeral
// interaction session (drag flag + clamped touch position for the loupe);
// the committed Coordinate lives in the Session and is passed back into Draw.
type Canvas struct {
	bounds rect
	img    *ebiten.Image
	dims   *ImageDimensions

	dragging bool
	touchPos *vec // container-local, clamped to the rendered box

	activeTouchID ebiten.TouchID

	hintDone  bool
	hintPulse *gween.Tween
	hintAlpha float32

	magLayer *ebiten.Image

	onSelect func(Coordinate)
}

func NewCanvas(onSelect func(Coordinate)) *Canvas {
	return &Canvas{
		activeTouchID: -1,
		hintPulse:     gween.New(0.55, 1.0, 0.8, ease.InOutQuad),
		hintAlpha:     1,
		onSelect:      onSelect,
	}
}

// SetImage installs the decoded game image and computes the mapping for the
// current bounds. Until this happens all pointer input is ignored.
func (c *Canvas) SetImage(img *ebiten.Image) {
	c.img = img
	c.recalc()
}

// SetBounds places the canvas on screen. Called on every layout pass so a
// window resize recomputes the letterbox mapping before the next hit-test.
func (c *Canvas) SetBounds(r rect) {
	if r == c.bounds {
		return
	}
	c.bounds = r
	c.recalc()
}

func (c *Canvas) recalc() {
	c.dims = nil
	if c.img == nil || c.bounds.w <= 0 || c.bounds.h <= 0 {
		return
	}
	b := c.img.Bounds()
	if d, ok := computeDimensions(b.Dx(), b.Dy(), float64(c.bounds.w), float64(c.bounds.h)); ok {
		c.dims = &d
	}
}

// press starts a drag. A press landing on the letterbox bars (or outside the
// container) is a silent no-op so a stray tap never registers a guess.
func (c *Canvas) press(sx, sy float64, disabled bool) bool {
	if disabled || c.dims == nil {
		return false
	}
	lx, ly := sx-float64(c.bounds.x), sy-float64(c.bounds.y)
	coord, ok := c.dims.screenToCanonical(lx, ly, false)
	if !ok {
		return false
	}
	c.dragging = true
	c.touchPos = &vec{lx, ly}
	c.hintDone = true
	c.onSelect(coord)
	return true
}

// move updates the live drag. Outside the image edge the coordinate clamps to
// the boundary instead of being dropped, so the loupe keeps tracking.
func (c *Canvas) move(sx, sy float64, disabled bool) {
	if !c.dragging || disabled || c.dims == nil {
		return
	}
	lx, ly := sx-float64(c.bounds.x), sy-float64(c.bounds.y)
	cx, cy := c.dims.clampToImage(lx, ly)
	c.touchPos = &vec{cx, cy}
	if coord, ok := c.dims.screenToCanonical(lx, ly, true); ok {
		c.onSelect(coord)
	}
}

// release ends the gesture without touching the last emitted Coordinate.
func (c *Canvas) release() {
	c.dragging = false
	c.touchPos = nil
}

// Update feeds the current frame's pointer state through press/move/release.
// The first touch point owns the gesture; extra fingers are ignored. Losing
// the tracked touch, or the mouse button going up anywhere, releases the drag
// so the flag can never wedge on.
func (c *Canvas) Update(disabled bool) {
	c.updateHint()

	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		if c.activeTouchID == -1 {
			tid := ids[0]
			tx, ty := ebiten.TouchPosition(tid)
			if c.press(float64(tx), float64(ty), disabled) {
				c.activeTouchID = tid
			}
		} else {
			alive := false
			for _, id := range ids {
				if id == c.activeTouchID {
					alive = true
					tx, ty := ebiten.TouchPosition(id)
					c.move(float64(tx), float64(ty), disabled)
					break
				}
			}
			if !alive {
				c.activeTouchID = -1
				c.release()
			}
		}
		return
	}
	if c.activeTouchID != -1 {
		c.activeTouchID = -1
		c.release()
		return
	}

	mx, my := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		c.press(float64(mx), float64(my), disabled)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		c.move(float64(mx), float64(my), disabled)
	case c.dragging:
		c.release()
	}
}

func (c *Canvas) updateHint() {
	if c.hintDone {
		return
	}
	a, done := c.hintPulse.Update(1.0 / 60.0)
	c.hintAlpha = a
	if done {
		// ping-pong the pulse
		if a > 0.9 {
			c.hintPulse = gween.New(1.0, 0.55, 0.8, ease.InOutQuad)
		} else {
			c.hintPulse = gween.New(0.55, 1.0, 0.8, ease.InOutQuad)
		}
	}
}

// Draw renders the letterboxed image, the committed marker (only while not
// dragging, the loupe replaces it mid-gesture), the loupe, the one-time tap
// hint and the inactive-game overlay.
func (c *Canvas) Draw(screen *ebiten.Image, coord *Coordinate, statusKnown bool, status protocol.GameStatus, disabled bool) {
	b := c.bounds
	ebitenutil.DrawRect(screen, float64(b.x), float64(b.y), float64(b.w), float64(b.h), color.NRGBA{18, 18, 26, 255})

	if c.img == nil || c.dims == nil {
		text.Draw(screen, "Loading image...", basicfont.Face7x13, b.x+b.w/2-56, b.y+b.h/2, color.NRGBA{170, 170, 180, 255})
		return
	}
	d := c.dims

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(d.rendered.w/d.natural.w, d.rendered.h/d.natural.h)
	op.GeoM.Translate(float64(b.x)+d.offset.x, float64(b.y)+d.offset.y)
	if disabled {
		op.ColorScale.Scale(0.5, 0.5, 0.5, 1)
	}
	screen.DrawImage(c.img, op)

	if coord != nil && !c.dragging {
		px, py := d.canonicalToScreen(*coord)
		drawCrosshair(screen, float64(b.x)+px, float64(b.y)+py, 16)
	}

	if c.dragging && c.touchPos != nil {
		drawCrosshair(screen, float64(b.x)+c.touchPos.x, float64(b.y)+c.touchPos.y, 12)
		c.drawMagnifier(screen, coord)
	}

	if !c.hintDone && coord == nil && !disabled {
		a := uint8(200 * c.hintAlpha)
		w, h := 220, 54
		x := b.x + (b.w-w)/2
		y := b.y + (b.h-h)/2
		ebitenutil.DrawRect(screen, float64(x), float64(y), float64(w), float64(h), color.NRGBA{15, 18, 34, a})
		text.Draw(screen, "Tap or drag to select", basicfont.Face7x13, x+36, y+24, color.NRGBA{255, 255, 255, a})
		text.Draw(screen, "Where is the ball?", basicfont.Face7x13, x+48, y+42, color.NRGBA{160, 160, 180, a})
	}

	if statusKnown && !status.Playable() {
		ebitenutil.DrawRect(screen, float64(b.x), float64(b.y), float64(b.w), float64(b.h), color.NRGBA{5, 8, 16, 170})
		msg := "Game not started yet"
		if status == protocol.GameClaim || status == protocol.GameStopped {
			msg = "Game has ended"
		}
		text.Draw(screen, msg, basicfont.Face7x13, b.x+(b.w-len(msg)*7)/2, b.y+b.h/2, color.White)
	}
}

// drawMagnifier paints the zoomed loupe above the touch point with a centered
// crosshair and the live coordinate readout underneath.
func (c *Canvas) drawMagnifier(screen *ebiten.Image, coord *Coordinate) {
	if c.magLayer == nil {
		c.magLayer = ebiten.NewImage(magnifierSize, magnifierSize)
	}
	d := c.dims
	c.magLayer.Fill(color.NRGBA{10, 10, 14, 255})

	// Rendered-space point under the finger.
	imgX := c.touchPos.x - d.offset.x
	imgY := c.touchPos.y - d.offset.y

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(magnifierZoom*d.rendered.w/d.natural.w, magnifierZoom*d.rendered.h/d.natural.h)
	op.GeoM.Translate(magnifierSize/2-imgX*magnifierZoom, magnifierSize/2-imgY*magnifierZoom)
	c.magLayer.DrawImage(c.img, op)

	// Loupe crosshair.
	ebitenutil.DrawRect(c.magLayer, 0, magnifierSize/2-0.5, magnifierSize, 1, color.NRGBA{255, 60, 60, 180})
	ebitenutil.DrawRect(c.magLayer, magnifierSize/2-0.5, 0, 1, magnifierSize, color.NRGBA{255, 60, 60, 180})
	ebitenutil.DrawRect(c.magLayer, magnifierSize/2-3, magnifierSize/2-3, 6, 6, color.NRGBA{255, 60, 60, 255})

	mx := float64(c.bounds.x) + c.touchPos.x - magnifierSize/2
	my := float64(c.bounds.y) + c.touchPos.y - magnifierSize - magnifierLift

	// Border frame.
	ebitenutil.DrawRect(screen, mx-3, my-3, magnifierSize+6, magnifierSize+6, color.NRGBA{240, 240, 240, 255})
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Translate(mx, my)
	screen.DrawImage(c.magLayer, op)

	if coord != nil {
		label := fmt.Sprintf("%d, %d", coord.X, coord.Y)
		lx := int(mx) + (magnifierSize-len(label)*7)/2
		ly := int(my) + magnifierSize + 16
		ebitenutil.DrawRect(screen, float64(lx-6), float64(ly-12), float64(len(label)*7+12), 18, color.NRGBA{10, 12, 24, 230})
		text.Draw(screen, label, basicfont.Face7x13, lx, ly, color.White)
	}
}

func drawCrosshair(dst *ebiten.Image, x, y, arm float64) {
	ebitenutil.DrawRect(dst, x-arm, y-1, 2*arm, 2, color.NRGBA{239, 68, 68, 255})
	ebitenutil.DrawRect(dst, x-1, y-arm, 2, 2*arm, color.NRGBA{239, 68, 68, 255})
	ebitenutil.DrawRect(dst, x-4, y-4, 8, 8, color.NRGBA{239, 68, 68, 255})
	ebitenutil.DrawRect(dst, x-3, y-3, 6, 6, color.NRGBA{255, 255, 255, 255})
}
