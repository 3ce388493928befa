package game

import (
	"math"
	"testing"
)

func TestComputeDimensionsPreservesAspect(t *testing.T) {
	cases := []struct {
		nw, nh int
		cw, ch float64
	}{
		{1024, 768, 390, 600},  // portrait phone, landscape image
		{1024, 768, 800, 600},  // wider container
		{600, 1200, 390, 600},  // tall image
		{500, 500, 500, 500},   // exact fit
		{4000, 1000, 390, 844}, // extreme panorama
	}
	for _, c := range cases {
		d, ok := computeDimensions(c.nw, c.nh, c.cw, c.ch)
		if !ok {
			t.Fatalf("computeDimensions(%d,%d,%v,%v) rejected", c.nw, c.nh, c.cw, c.ch)
		}
		wantAspect := float64(c.nw) / float64(c.nh)
		gotAspect := d.rendered.w / d.rendered.h
		if math.Abs(wantAspect-gotAspect) > 1e-9 {
			t.Errorf("aspect drift: want %v got %v", wantAspect, gotAspect)
		}
		if d.offset.x < 0 || d.offset.y < 0 {
			t.Errorf("negative letterbox offset: %+v", d.offset)
		}
		if d.offset.x > 1e-9 && d.offset.y > 1e-9 {
			t.Errorf("double letterbox: %+v", d.offset)
		}
		if d.rendered.w > c.cw+1e-9 || d.rendered.h > c.ch+1e-9 {
			t.Errorf("rendered exceeds container: %+v", d.rendered)
		}
	}
}

func TestComputeDimensionsRejectsDegenerate(t *testing.T) {
	if _, ok := computeDimensions(0, 100, 390, 600); ok {
		t.Fatal("zero natural width accepted")
	}
	if _, ok := computeDimensions(100, 100, 0, 600); ok {
		t.Fatal("zero container width accepted")
	}
}

func TestScreenToCanonicalRoundTrip(t *testing.T) {
	d, _ := computeDimensions(1024, 768, 390, 600)
	coords := []Coordinate{{0, 0}, {512, 300}, {1023, 767}, {1, 766}, {777, 13}}
	for _, want := range coords {
		sx, sy := d.canonicalToScreen(want)
		got, ok := d.screenToCanonical(sx, sy, false)
		if !ok {
			t.Fatalf("round trip rejected %+v at (%v,%v)", want, sx, sy)
		}
		if abs(got.X-want.X) > 1 || abs(got.Y-want.Y) > 1 {
			t.Errorf("round trip %+v -> %+v", want, got)
		}
	}
}

func TestScreenToCanonicalClamped(t *testing.T) {
	d, _ := computeDimensions(1024, 768, 390, 600)
	far := []vec{{-500, -500}, {10000, 10000}, {-1, 300}, {200, 10000}}
	for _, p := range far {
		c, ok := d.screenToCanonical(p.x, p.y, true)
		if !ok {
			t.Fatalf("clamped conversion of (%v,%v) returned nothing", p.x, p.y)
		}
		if c.X < 0 || c.X > 1023 || c.Y < 0 || c.Y > 767 {
			t.Errorf("clamped coordinate out of range: %+v", c)
		}
	}
	// Far beyond the top-left corner lands exactly on (0,0).
	if c, _ := d.screenToCanonical(-9999, -9999, true); c != (Coordinate{0, 0}) {
		t.Errorf("want (0,0), got %+v", c)
	}
	// Far beyond the bottom-right corner lands on the last pixel.
	if c, _ := d.screenToCanonical(9999, 9999, true); c != (Coordinate{1023, 767}) {
		t.Errorf("want (1023,767), got %+v", c)
	}
}

func TestScreenToCanonicalRejectsOutside(t *testing.T) {
	// Tall image in a portrait container: letterbox bars left and right.
	d, _ := computeDimensions(600, 1200, 390, 600)
	if d.offset.x <= 0 {
		t.Fatalf("expected horizontal letterbox, got %+v", d.offset)
	}
	if _, ok := d.screenToCanonical(d.offset.x-2, 300, false); ok {
		t.Error("press in the left bar must be rejected")
	}
	if _, ok := d.screenToCanonical(d.offset.x+1, 300, false); !ok {
		t.Error("press just inside the image must register")
	}
	if _, ok := d.screenToCanonical(-50, -50, false); ok {
		t.Error("press outside the container must be rejected")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
