package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinSplinePoints is the smallest control polygon a Catmull-Rom segment can be built from.
const MinSplinePoints = 4

// InvalidCurveError is returned when a spline is built from too few control points.
type InvalidCurveError struct {
	Points int
}

func (e *InvalidCurveError) Error() string {
	return fmt.Sprintf("invalid curve: %d control points, need at least %d", e.Points, MinSplinePoints)
}

// Spline is a centripetal Catmull-Rom curve through an ordered list of control points.
// A closed spline wraps from the last point back to the first, so PointAt(0) == PointAt(1).
// Splines are immutable once built.
type Spline struct {
	points []mgl64.Vec3
	closed bool
}

// NewSpline copies points and builds a centripetal Catmull-Rom spline over them.
func NewSpline(points []mgl64.Vec3, closed bool) (*Spline, error) {
	if len(points) < MinSplinePoints {
		return nil, &InvalidCurveError{Points: len(points)}
	}
	cp := make([]mgl64.Vec3, len(points))
	copy(cp, points)
	return &Spline{points: cp, closed: closed}, nil
}

func (s *Spline) Closed() bool { return s.closed }

// ControlPoints returns a copy of the control polygon.
func (s *Spline) ControlPoints() []mgl64.Vec3 {
	cp := make([]mgl64.Vec3, len(s.points))
	copy(cp, s.points)
	return cp
}

// segment resolves t to the four control points around it and the local parameter.
func (s *Spline) segment(t float64) (p0, p1, p2, p3 mgl64.Vec3, w float64) {
	l := len(s.points)
	var p float64
	if s.closed {
		p = float64(l) * t
	} else {
		p = float64(l-1) * t
	}
	i := int(math.Floor(p))
	w = p - float64(i)

	if s.closed {
		i = ((i % l) + l) % l
	} else if w == 0 && i == l-1 {
		i = l - 2
		w = 1
	}

	if s.closed || i > 0 {
		p0 = s.points[((i-1)%l+l)%l]
	} else {
		// extrapolate a virtual point before the first one
		p0 = s.points[0].Sub(s.points[1]).Add(s.points[0])
	}
	p1 = s.points[i%l]
	p2 = s.points[(i+1)%l]
	if s.closed || i+2 < l {
		p3 = s.points[(i+2)%l]
	} else {
		p3 = s.points[l-1].Sub(s.points[l-2]).Add(s.points[l-1])
	}
	return p0, p1, p2, p3, w
}

// cubic holds per-axis polynomial coefficients c0 + c1*t + c2*t^2 + c3*t^3.
type cubic [3][4]float64

func centripetalCubic(p0, p1, p2, p3 mgl64.Vec3) cubic {
	// alpha = 0.5: knot spacing is the square root of chord length
	dt0 := math.Pow(p0.Sub(p1).LenSqr(), 0.25)
	dt1 := math.Pow(p1.Sub(p2).LenSqr(), 0.25)
	dt2 := math.Pow(p2.Sub(p3).LenSqr(), 0.25)

	// coincident points
	if dt1 < 1e-4 {
		dt1 = 1.0
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	var c cubic
	for axis := 0; axis < 3; axis++ {
		x0, x1, x2, x3 := p0[axis], p1[axis], p2[axis], p3[axis]
		t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
		t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
		t1 *= dt1
		t2 *= dt1

		c[axis] = [4]float64{
			x1,
			t1,
			-3*x1 + 3*x2 - 2*t1 - t2,
			2*x1 - 2*x2 + t1 + t2,
		}
	}
	return c
}

func (c cubic) at(w float64) mgl64.Vec3 {
	w2 := w * w
	w3 := w2 * w
	var v mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		k := c[axis]
		v[axis] = k[0] + k[1]*w + k[2]*w2 + k[3]*w3
	}
	return v
}

func (c cubic) derivative(w float64) mgl64.Vec3 {
	var v mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		k := c[axis]
		v[axis] = k[1] + 2*k[2]*w + 3*k[3]*w*w
	}
	return v
}

// PointAt evaluates the curve at parameter t. For closed splines t is taken modulo 1.
func (s *Spline) PointAt(t float64) mgl64.Vec3 {
	t = s.clamp(t)
	p0, p1, p2, p3, w := s.segment(t)
	return centripetalCubic(p0, p1, p2, p3).at(w)
}

// TangentAt returns the unit direction of travel at parameter t.
func (s *Spline) TangentAt(t float64) mgl64.Vec3 {
	t = s.clamp(t)
	p0, p1, p2, p3, w := s.segment(t)
	d := centripetalCubic(p0, p1, p2, p3).derivative(w)
	if d.Len() < 1e-12 {
		// degenerate segment: fall back to the chord
		d = p2.Sub(p1)
		if d.Len() < 1e-12 {
			return mgl64.Vec3{0, 0, 1}
		}
	}
	return d.Normalize()
}

// Points samples divisions+1 points evenly in parameter space, for path visualization.
// On a closed spline the last point repeats the first.
func (s *Spline) Points(divisions int) []mgl64.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]mgl64.Vec3, 0, divisions+1)
	for i := 0; i <= divisions; i++ {
		t := float64(i) / float64(divisions)
		if s.closed && i == divisions {
			t = 0
		}
		out = append(out, s.PointAt(t))
	}
	return out
}

// Length approximates the arc length by summing chords over the given number of divisions.
func (s *Spline) Length(divisions int) float64 {
	pts := s.Points(divisions)
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += pts[i].Sub(pts[i-1]).Len()
	}
	return sum
}

func (s *Spline) clamp(t float64) float64 {
	if s.closed {
		t = math.Mod(t, 1)
		if t < 0 {
			t += 1
		}
		return t
	}
	return math.Max(0, math.Min(1, t))
}
