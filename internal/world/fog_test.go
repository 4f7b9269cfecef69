package world

import (
	"testing"

	"github.com/vovakirdan/latte-escape/internal/core"
)

func TestVisibilityRadius(t *testing.T) {
	f := Fog{Radius: DefaultFogRadius, Aspect: 1}
	obs := core.V(5.5, 5.5)

	tests := []struct {
		cell core.Coord
		want float64
	}{
		{core.C(5, 5), 1},
		{core.C(6, 6), 1}, // diagonal neighbour, ~1.414
		{core.C(4, 4), 1},
		{core.C(7, 5), 0}, // two cells away
		{core.C(5, 3), 0},
		{core.C(-3, 5), 0},
	}
	for _, tt := range tests {
		if got := f.Visibility(tt.cell, obs, nil); got != tt.want {
			t.Errorf("Visibility(%v) = %v, expected %v", tt.cell, got, tt.want)
		}
	}
}

func TestVisibilitySymmetry(t *testing.T) {
	f := Fog{Radius: 2.3, Aspect: 1}
	obs := core.V(10.5, 10.5)

	for dx := -4; dx <= 4; dx++ {
		for dy := -4; dy <= 4; dy++ {
			base := f.Visibility(core.C(10+dx, 10+dy), obs, nil)
			// Rotate (dx, dy) by 90 degrees three times.
			rx, ry := dx, dy
			for i := 0; i < 3; i++ {
				rx, ry = -ry, rx
				if got := f.Visibility(core.C(10+rx, 10+ry), obs, nil); got != base {
					t.Errorf("Visibility(%d,%d) = %v but rotated (%d,%d) = %v", dx, dy, base, rx, ry, got)
				}
			}
		}
	}
}

func TestVisibilityAspect(t *testing.T) {
	obs := core.V(5.5, 5.5)
	cell := core.C(7, 5) // two columns to the right

	square := Fog{Radius: 1.75, Aspect: 1}
	if square.Visibility(cell, obs, nil) != 0 {
		t.Fatal("expected cell hidden with square aspect")
	}
	wide := Fog{Radius: 1.75, Aspect: 2}
	if wide.Visibility(cell, obs, nil) != 1 {
		t.Error("expected cell visible when columns are twice as wide")
	}
}

func TestVisibilityOcclusion(t *testing.T) {
	m := NewMap(mustGrid(t, [][]int{{0, 3, 0, 0}}, nil))
	f := Fog{Radius: 3, Aspect: 1, Occlude: true}
	obs := core.V(0.5, 0.5)

	if f.Visibility(core.C(1, 0), obs, m) != 1 {
		t.Error("a closed gate itself should be visible")
	}
	if f.Visibility(core.C(2, 0), obs, m) != 0 {
		t.Error("cell behind a closed gate should be hidden")
	}
	m.Gates.SetOpen(1, 0, true)
	if f.Visibility(core.C(2, 0), obs, m) != 1 {
		t.Error("cell behind an open gate should be visible")
	}
}

func TestMask(t *testing.T) {
	m := NewMap(mustGrid(t, box(6, 5), nil))
	f := Fog{Radius: DefaultFogRadius}

	mask := f.Mask(m, core.V(1.5, 1.5))
	if len(mask) != 5 || len(mask[0]) != 6 {
		t.Fatalf("Mask() size = %dx%d, expected 6x5", len(mask[0]), len(mask))
	}

	lit := 0
	for _, row := range mask {
		for _, v := range row {
			if v != 0 && v != 1 {
				t.Fatalf("Mask() value %v is not binary", v)
			}
			lit += int(v)
		}
	}
	if lit != 9 {
		t.Errorf("lit cells = %d, expected 9", lit)
	}
	if mask[0][0] != 1 || mask[3][1] != 0 {
		t.Errorf("mask[0][0] = %v, mask[3][1] = %v", mask[0][0], mask[3][1])
	}
}
