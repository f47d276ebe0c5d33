// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape functions of hex8 cells ([-1,1]^3)
//
//      7-----------6
//     /|          /|        t  s
//    4-----------5 |        | /
//    | |         | |        +--r
//    | 3---------|-2
//    |/          |/
//    0-----------1
//
//    faces are listed with outward orientation

func init() {
	hex8 := &Shape{
		Type:   "hex8",
		Geo:    "hex",
		Order:  1,
		Gndim:  3,
		Nverts: 8,
		NatCoords: [][]float64{
			{-1, 1, 1, -1, -1, 1, 1, -1},
			{-1, -1, 1, 1, -1, -1, 1, 1},
			{-1, -1, -1, -1, 1, 1, 1, 1},
		},
		FaceType:   "qua4",
		FaceGeo:    "qua",
		FaceNverts: 4,
		FaceLocalVerts: [][]int{
			{0, 4, 7, 3}, // x-
			{1, 2, 6, 5}, // x+
			{0, 1, 5, 4}, // y-
			{2, 3, 7, 6}, // y+
			{0, 3, 2, 1}, // z-
			{4, 5, 6, 7}, // z+
		},
	}
	hex8.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		rm := [8]float64{-1, 1, 1, -1, -1, 1, 1, -1}
		sm := [8]float64{-1, -1, 1, 1, -1, -1, 1, 1}
		tm := [8]float64{-1, -1, -1, -1, 1, 1, 1, 1}
		for m := 0; m < 8; m++ {
			S[m] = 0.125 * (1.0 + r[0]*rm[m]) * (1.0 + r[1]*sm[m]) * (1.0 + r[2]*tm[m])
		}
		if !derivs {
			return
		}
		for m := 0; m < 8; m++ {
			dSdR[m][0] = 0.125 * rm[m] * (1.0 + r[1]*sm[m]) * (1.0 + r[2]*tm[m])
			dSdR[m][1] = 0.125 * sm[m] * (1.0 + r[0]*rm[m]) * (1.0 + r[2]*tm[m])
			dSdR[m][2] = 0.125 * tm[m] * (1.0 + r[0]*rm[m]) * (1.0 + r[1]*sm[m])
		}
	}
	factory["hex8"] = hex8
}
