// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import "github.com/cpmech/gosl/chk"

// Ipoint holds the natural coordinates and weight of one integration point
type Ipoint struct {
	X, Y, Z float64 // natural coordinates
	W       float64 // weight
}

// R returns the natural coordinates as a vector
func (o Ipoint) R() []float64 { return []float64{o.X, o.Y, o.Z} }

// Gauss-Legendre points and weights on [-1,1]
var gaussPts = map[int][]float64{
	1: {0},
	2: {-0.577350269189625764509148780502, 0.577350269189625764509148780502},
	3: {-0.774596669241483377035853079956, 0, 0.774596669241483377035853079956},
	4: {-0.861136311594052575223946488893, -0.339981043584856264802665759103,
		0.339981043584856264802665759103, 0.861136311594052575223946488893},
	5: {-0.906179845938663992797626878299, -0.538469310105683091036314420700, 0,
		0.538469310105683091036314420700, 0.906179845938663992797626878299},
}

var gaussWts = map[int][]float64{
	1: {2},
	2: {1, 1},
	3: {0.555555555555555555555555555556, 0.888888888888888888888888888889,
		0.555555555555555555555555555556},
	4: {0.347854845137453857373063949222, 0.652145154862546142626936050778,
		0.652145154862546142626936050778, 0.347854845137453857373063949222},
	5: {0.236926885056189087514264040720, 0.478628670499366468041291514836,
		0.568888888888888888888888888889, 0.478628670499366468041291514836,
		0.236926885056189087514264040720},
}

// gaussN returns the number of Gauss points needed for exact integration of
// polynomials with given degree (capped at the largest table entry)
func gaussN(degree int) int {
	n := (degree + 2) / 2
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n
}

// Ips returns an integration rule for this shape which is exact (up to the
// largest rule available) for polynomial integrands with given degree
func (o *Shape) Ips(degree int) []Ipoint {
	return ipsByGeo(o.Geo, degree)
}

// FaceIps returns an integration rule for the faces of this shape
func (o *Shape) FaceIps(degree int) []Ipoint {
	if o.Gndim == 1 {
		return []Ipoint{{W: 1}}
	}
	return ipsByGeo(o.FaceGeo, degree)
}

// ipsByGeo returns an integration rule for a basic geometry class
func ipsByGeo(geo string, degree int) []Ipoint {
	switch geo {
	case "lin":
		n := gaussN(degree)
		pts := make([]Ipoint, n)
		for i := 0; i < n; i++ {
			pts[i] = Ipoint{X: gaussPts[n][i], W: gaussWts[n][i]}
		}
		return pts
	case "qua":
		n := gaussN(degree)
		pts := make([]Ipoint, 0, n*n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				pts = append(pts, Ipoint{
					X: gaussPts[n][i], Y: gaussPts[n][j],
					W: gaussWts[n][i] * gaussWts[n][j],
				})
			}
		}
		return pts
	case "hex":
		n := gaussN(degree)
		pts := make([]Ipoint, 0, n*n*n)
		for k := 0; k < n; k++ {
			for j := 0; j < n; j++ {
				for i := 0; i < n; i++ {
					pts = append(pts, Ipoint{
						X: gaussPts[n][i], Y: gaussPts[n][j], Z: gaussPts[n][k],
						W: gaussWts[n][i] * gaussWts[n][j] * gaussWts[n][k],
					})
				}
			}
		}
		return pts
	case "tri":
		return ipsTri(degree)
	case "tet":
		return ipsTet(degree)
	}
	chk.Panic("ips: unknown geometry class %q", geo)
	return nil
}

// ipsTri returns integration rules on the unit triangle (weights sum to 1/2)
func ipsTri(degree int) []Ipoint {
	switch {
	case degree <= 1:
		return []Ipoint{
			{X: 1.0 / 3.0, Y: 1.0 / 3.0, W: 1.0 / 2.0},
		}
	case degree == 2:
		return []Ipoint{
			{X: 1.0 / 6.0, Y: 1.0 / 6.0, W: 1.0 / 6.0},
			{X: 2.0 / 3.0, Y: 1.0 / 6.0, W: 1.0 / 6.0},
			{X: 1.0 / 6.0, Y: 2.0 / 3.0, W: 1.0 / 6.0},
		}
	case degree == 3:
		return []Ipoint{
			{X: 1.0 / 3.0, Y: 1.0 / 3.0, W: -27.0 / 96.0},
			{X: 1.0 / 5.0, Y: 1.0 / 5.0, W: 25.0 / 96.0},
			{X: 3.0 / 5.0, Y: 1.0 / 5.0, W: 25.0 / 96.0},
			{X: 1.0 / 5.0, Y: 3.0 / 5.0, W: 25.0 / 96.0},
		}
	default:
		// Dunavant 7-point rule: degree 5
		a, wa := 0.470142064105115, 0.066197076394253
		b, wb := 0.101286507323456, 0.062969590272414
		return []Ipoint{
			{X: 1.0 / 3.0, Y: 1.0 / 3.0, W: 0.1125},
			{X: a, Y: a, W: wa},
			{X: 1 - 2*a, Y: a, W: wa},
			{X: a, Y: 1 - 2*a, W: wa},
			{X: b, Y: b, W: wb},
			{X: 1 - 2*b, Y: b, W: wb},
			{X: b, Y: 1 - 2*b, W: wb},
		}
	}
}

// ipsTet returns integration rules on the unit tetrahedron (weights sum to 1/6)
func ipsTet(degree int) []Ipoint {
	switch {
	case degree <= 1:
		return []Ipoint{
			{X: 1.0 / 4.0, Y: 1.0 / 4.0, Z: 1.0 / 4.0, W: 1.0 / 6.0},
		}
	case degree == 2:
		a := 0.585410196624969 // (5+3*sqrt(5))/20
		b := 0.138196601125011 // (5-sqrt(5))/20
		return []Ipoint{
			{X: a, Y: b, Z: b, W: 1.0 / 24.0},
			{X: b, Y: a, Z: b, W: 1.0 / 24.0},
			{X: b, Y: b, Z: a, W: 1.0 / 24.0},
			{X: b, Y: b, Z: b, W: 1.0 / 24.0},
		}
	case degree == 3:
		// Keast 5-point rule
		return []Ipoint{
			{X: 1.0 / 4.0, Y: 1.0 / 4.0, Z: 1.0 / 4.0, W: -2.0 / 15.0},
			{X: 1.0 / 2.0, Y: 1.0 / 6.0, Z: 1.0 / 6.0, W: 3.0 / 40.0},
			{X: 1.0 / 6.0, Y: 1.0 / 2.0, Z: 1.0 / 6.0, W: 3.0 / 40.0},
			{X: 1.0 / 6.0, Y: 1.0 / 6.0, Z: 1.0 / 2.0, W: 3.0 / 40.0},
			{X: 1.0 / 6.0, Y: 1.0 / 6.0, Z: 1.0 / 6.0, W: 3.0 / 40.0},
		}
	default:
		// Keast 11-point rule: degree 4 (the largest tet rule here; higher
		// requests get this one)
		a := 0.785714285714286 // 11/14
		b := 0.0714285714285714
		c := 0.399403576166799 // (1+sqrt(5/14))/4
		d := 0.100596423833201 // (1-sqrt(5/14))/4
		wa := 343.0 / 45000.0
		wc := 28.0 / 1125.0
		return []Ipoint{
			{X: 1.0 / 4.0, Y: 1.0 / 4.0, Z: 1.0 / 4.0, W: -74.0 / 5625.0},
			{X: a, Y: b, Z: b, W: wa},
			{X: b, Y: a, Z: b, W: wa},
			{X: b, Y: b, Z: a, W: wa},
			{X: b, Y: b, Z: b, W: wa},
			{X: c, Y: c, Z: d, W: wc},
			{X: c, Y: d, Z: c, W: wc},
			{X: d, Y: c, Z: c, W: wc},
			{X: c, Y: d, Z: d, W: wc},
			{X: d, Y: c, Z: d, W: wc},
			{X: d, Y: d, Z: c, W: wc},
		}
	}
}
