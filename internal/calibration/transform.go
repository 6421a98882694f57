package calibration

import (
	"errors"
	"math"

	"gocv.io/x/gocv"
)

// ErrDegenerate is returned when three of the four points are collinear, in
// which case no unique projective mapping exists.
var ErrDegenerate = errors.New("degenerate calibration quadrilateral")

const collinearEpsilon = 1e-6

// Transform is a 3x3 homography in row-major order.
type Transform [3][3]float64

// ComputeTransform returns the projective mapping that takes src[i] onto
// dst[i] for every i.
func ComputeTransform(src, dst [NumPoints]Point) (Transform, error) {
	if degenerate(src) || degenerate(dst) {
		return Transform{}, ErrDegenerate
	}

	srcVec := gocv.NewPoint2fVectorFromPoints(toPoint2f(src))
	defer srcVec.Close()
	dstVec := gocv.NewPoint2fVectorFromPoints(toPoint2f(dst))
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	defer m.Close()

	if m.Empty() || m.Rows() != 3 || m.Cols() != 3 {
		return Transform{}, ErrDegenerate
	}

	var t Transform
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := m.GetDoubleAt(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Transform{}, ErrDegenerate
			}
			t[r][c] = v
		}
	}
	return t, nil
}

// Apply maps (x, y) through the transform. ok is false when the point maps
// to infinity.
func (t Transform) Apply(x, y float64) (float64, float64, bool) {
	w := t[2][0]*x + t[2][1]*y + t[2][2]
	if w == 0 {
		return 0, 0, false
	}
	px := (t[0][0]*x + t[0][1]*y + t[0][2]) / w
	py := (t[1][0]*x + t[1][1]*y + t[1][2]) / w
	return px, py, true
}

func toPoint2f(pts [NumPoints]Point) []gocv.Point2f {
	out := make([]gocv.Point2f, NumPoints)
	for i, p := range pts {
		out[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return out
}

// degenerate reports whether any three points are collinear.
func degenerate(pts [NumPoints]Point) bool {
	for i := 0; i < NumPoints; i++ {
		for j := i + 1; j < NumPoints; j++ {
			for k := j + 1; k < NumPoints; k++ {
				a, b, c := pts[i], pts[j], pts[k]
				cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
				if math.Abs(cross) < collinearEpsilon {
					return true
				}
			}
		}
	}
	return false
}
