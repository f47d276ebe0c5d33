// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape functions of qua4 and qua9 cells ([-1,1] x [-1,1])
//
//    3-----------2          3-----6-----2
//    |     s     |          |     s     |
//    |     |     |          7     8--r  5
//    |     +--r  |          |           |
//    0-----------1          0-----4-----1

// 1D quadratic Lagrange functions at nodes -1, +1, 0
func lag3(a, t float64) float64 {
	switch {
	case a < 0:
		return 0.5 * t * (t - 1.0)
	case a > 0:
		return 0.5 * t * (t + 1.0)
	}
	return 1.0 - t*t
}

func dlag3(a, t float64) float64 {
	switch {
	case a < 0:
		return t - 0.5
	case a > 0:
		return t + 0.5
	}
	return -2.0 * t
}

func init() {

	// qua4
	qua4 := &Shape{
		Type:   "qua4",
		Geo:    "qua",
		Order:  1,
		Gndim:  2,
		Nverts: 4,
		NatCoords: [][]float64{
			{-1, 1, 1, -1},
			{-1, -1, 1, 1},
		},
		FaceType:       "lin2",
		FaceGeo:        "lin",
		FaceNverts:     2,
		FaceLocalVerts: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
	qua4.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		rm := [4]float64{-1, 1, 1, -1}
		sm := [4]float64{-1, -1, 1, 1}
		for m := 0; m < 4; m++ {
			S[m] = 0.25 * (1.0 + r[0]*rm[m]) * (1.0 + r[1]*sm[m])
		}
		if !derivs {
			return
		}
		for m := 0; m < 4; m++ {
			dSdR[m][0] = 0.25 * rm[m] * (1.0 + r[1]*sm[m])
			dSdR[m][1] = 0.25 * sm[m] * (1.0 + r[0]*rm[m])
		}
	}
	factory["qua4"] = qua4

	// qua9
	qua9 := &Shape{
		Type:   "qua9",
		Geo:    "qua",
		Order:  2,
		Gndim:  2,
		Nverts: 9,
		NatCoords: [][]float64{
			{-1, 1, 1, -1, 0, 1, 0, -1, 0},
			{-1, -1, 1, 1, -1, 0, 1, 0, 0},
		},
		FaceType:       "lin3",
		FaceGeo:        "lin",
		FaceNverts:     3,
		FaceLocalVerts: [][]int{{0, 1, 4}, {1, 2, 5}, {2, 3, 6}, {3, 0, 7}},
	}
	qua9.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		rm := [9]float64{-1, 1, 1, -1, 0, 1, 0, -1, 0}
		sm := [9]float64{-1, -1, 1, 1, -1, 0, 1, 0, 0}
		for m := 0; m < 9; m++ {
			S[m] = lag3(rm[m], r[0]) * lag3(sm[m], r[1])
		}
		if !derivs {
			return
		}
		for m := 0; m < 9; m++ {
			dSdR[m][0] = dlag3(rm[m], r[0]) * lag3(sm[m], r[1])
			dSdR[m][1] = lag3(rm[m], r[0]) * dlag3(sm[m], r[1])
		}
	}
	factory["qua9"] = qua9
}
