// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape functions of lin2 and lin3 cells
//
//   lin2:  0-----------1      lin3:  0-----2-----1
//         -1           1            -1     0     1

func init() {

	// lin2
	lin2 := &Shape{
		Type:   "lin2",
		Geo:    "lin",
		Order:  1,
		Gndim:  1,
		Nverts: 2,
		NatCoords: [][]float64{
			{-1, 1},
		},
		FaceNverts:     1,
		FaceLocalVerts: [][]int{{0}, {1}},
	}
	lin2.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		S[0] = 0.5 * (1.0 - r[0])
		S[1] = 0.5 * (1.0 + r[0])
		if !derivs {
			return
		}
		dSdR[0][0] = -0.5
		dSdR[1][0] = 0.5
	}
	factory["lin2"] = lin2

	// lin3
	lin3 := &Shape{
		Type:   "lin3",
		Geo:    "lin",
		Order:  2,
		Gndim:  1,
		Nverts: 3,
		NatCoords: [][]float64{
			{-1, 1, 0},
		},
		FaceNverts:     1,
		FaceLocalVerts: [][]int{{0}, {1}},
	}
	lin3.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		S[0] = 0.5 * r[0] * (r[0] - 1.0)
		S[1] = 0.5 * r[0] * (r[0] + 1.0)
		S[2] = 1.0 - r[0]*r[0]
		if !derivs {
			return
		}
		dSdR[0][0] = r[0] - 0.5
		dSdR[1][0] = r[0] + 0.5
		dSdR[2][0] = -2.0 * r[0]
	}
	factory["lin3"] = lin3
}
