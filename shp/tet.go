// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// shape functions of tet4 cells (unit tetrahedron)
//
//    vertices: 0:(0,0,0)  1:(1,0,0)  2:(0,1,0)  3:(0,0,1)
//    faces are listed with outward orientation

func init() {
	tet4 := &Shape{
		Type:   "tet4",
		Geo:    "tet",
		Order:  1,
		Gndim:  3,
		Nverts: 4,
		NatCoords: [][]float64{
			{0, 1, 0, 0},
			{0, 0, 1, 0},
			{0, 0, 0, 1},
		},
		FaceType:   "tri3",
		FaceGeo:    "tri",
		FaceNverts: 3,
		FaceLocalVerts: [][]int{
			{0, 2, 1},
			{0, 1, 3},
			{0, 3, 2},
			{1, 2, 3},
		},
	}
	tet4.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
		S[0] = 1.0 - r[0] - r[1] - r[2]
		S[1] = r[0]
		S[2] = r[1]
		S[3] = r[2]
		if !derivs {
			return
		}
		dSdR[0][0], dSdR[0][1], dSdR[0][2] = -1.0, -1.0, -1.0
		dSdR[1][0], dSdR[1][1], dSdR[1][2] = 1.0, 0.0, 0.0
		dSdR[2][0], dSdR[2][1], dSdR[2][2] = 0.0, 1.0, 0.0
		dSdR[3][0], dSdR[3][1], dSdR[3][2] = 0.0, 0.0, 1.0
	}
	factory["tet4"] = tet4
}
