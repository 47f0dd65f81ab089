package detection

import (
	"math"
	"testing"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

func TestComputeThresholds(t *testing.T) {
	// 10x10 map with a single cell at 100: mean 1, population variance
	// (99*1 + 99^2) / 100 = 99, stddev sqrt(99).
	m := frame.New(10, 10)
	m.Set(4, 4, 100)

	th := ComputeThresholds(m, 5, 3)

	wantDet := math.Sqrt(99) * 5
	if math.Abs(th.Detection-wantDet) > 1e-9 {
		t.Errorf("Detection: got %f, want %f", th.Detection, wantDet)
	}
	if math.Abs(th.Promising-wantDet*3) > 1e-9 {
		t.Errorf("Promising: got %f, want %f", th.Promising, wantDet*3)
	}
}

func TestComputeThresholds_ZeroMap(t *testing.T) {
	m := frame.New(8, 8)
	th := ComputeThresholds(m, 5, 3)

	if th.Detection != 0 || th.Promising != 0 {
		t.Errorf("zero map thresholds: got %+v, want zero", th)
	}
}

func TestExtractPoints_StrictComparison(t *testing.T) {
	m := frame.New(3, 3)
	m.Set(0, 0, 5) // exactly at threshold: excluded
	m.Set(1, 1, 6) // above threshold: included
	m.Set(2, 2, 4) // below: excluded

	points := ExtractPoints(m, 5)

	if len(points) != 1 {
		t.Fatalf("got %d points, want 1 (comparison must be strict)", len(points))
	}
	if points[0].X != 1 || points[0].Y != 1 {
		t.Errorf("point: got (%d,%d), want (1,1)", points[0].X, points[0].Y)
	}
}

func TestExtractPoints_ZeroMapZeroThreshold(t *testing.T) {
	// An all-zero map with a zero threshold must yield no candidates:
	// 0 > 0 is false.
	m := frame.New(10, 10)
	if points := ExtractPoints(m, 0); len(points) != 0 {
		t.Errorf("got %d points, want 0", len(points))
	}
}

func TestExtractPoints_ConstantAboveThreshold(t *testing.T) {
	m := frame.New(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, 10)
		}
	}

	points := ExtractPoints(m, 5)
	if len(points) != 12 {
		t.Errorf("got %d points, want 12 (every cell exceeds the threshold)", len(points))
	}
}

func TestExtractPoints_RowMajorOrder(t *testing.T) {
	m := frame.New(3, 3)
	m.Set(2, 0, 10)
	m.Set(0, 1, 10)
	m.Set(1, 2, 10)

	points := ExtractPoints(m, 5)

	want := []Point{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 2}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("points[%d]: got %+v, want %+v (scan order is row-major)", i, points[i], want[i])
		}
	}
}
