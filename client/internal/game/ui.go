package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font/basicfont"
)

type rect struct{ x, y, w, h int }

func (r rect) hit(mx, my int) bool {
	return mx >= r.x && mx <= r.x+r.w && my >= r.y && my <= r.y+r.h
}

// button is a labeled tappable region.
type button struct {
	rect
	label    string
	disabled bool
}

func (b *button) draw(dst *ebiten.Image, bg color.NRGBA) {
	if b.disabled {
		bg = color.NRGBA{60, 60, 70, 255}
	}
	ebitenutil.DrawRect(dst, float64(b.x), float64(b.y), float64(b.w), float64(b.h), bg)
	tw := len(b.label) * 7
	text.Draw(dst, b.label, basicfont.Face7x13, b.x+(b.w-tw)/2, b.y+b.h/2+4, color.White)
}

const toastTicks = 3 * 60

// toast is a transient banner that slides down from the top edge.
type toast struct {
	msg    string
	bg     color.NRGBA
	slide  *gween.Tween
	y      float32
	ticks  int
	active bool
}

func showToast(msg string, bg color.NRGBA) *toast {
	return &toast{
		msg:    msg,
		bg:     bg,
		slide:  gween.New(-40, 16, 0.25, ease.OutQuad),
		y:      -40,
		ticks:  toastTicks,
		active: true,
	}
}

func (t *toast) update() {
	if t == nil || !t.active {
		return
	}
	y, _ := t.slide.Update(1.0 / 60.0)
	t.y = y
	t.ticks--
	if t.ticks <= 0 {
		t.active = false
	}
}

func (t *toast) draw(dst *ebiten.Image, screenW int) {
	if t == nil || !t.active {
		return
	}
	w := float64(screenW - 32)
	ebitenutil.DrawRect(dst, 16, float64(t.y), w, 36, t.bg)
	text.Draw(dst, trim(t.msg, 52), basicfont.Face7x13, 28, int(t.y)+22, color.White)
}

func trim(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
