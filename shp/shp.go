// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shp implements shape functions and numerical quadrature for
// isoparametric finite elements (lin, tri, qua, tet and hex geometries).
package shp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// MINDET is the minimum determinant allowed for dxdR
const MINDET = 1.0e-14

// ShpFunc is the shape functions callback function
type ShpFunc func(S []float64, dSdR [][]float64, r []float64, derivs bool)

// Shape holds geometry data and a scratchpad for computations at
// integration points
type Shape struct {

	// geometry
	Type           string      // name; e.g. "qua9"
	Geo            string      // basic geometry class: "lin", "tri", "qua", "tet", "hex"
	Order          int         // interpolation order; e.g. "qua9" => 2
	Gndim          int         // geometry dimension; e.g. "lin3" => 1 (even in 2D meshes)
	Nverts         int         // number of vertices in cell; e.g. "qua9" => 9
	Func           ShpFunc     // shape/derivs callback function
	FaceType       string      // geometry of face; e.g. "qua9" => "lin3"
	FaceGeo        string      // basic geometry class of face
	FaceFunc       ShpFunc     // face shape/derivs callback function
	FaceNverts     int         // number of vertices on face
	FaceLocalVerts [][]int     // face local vertices [nfaces][nfverts]
	NatCoords      [][]float64 // natural coordinates [gndim][nverts]

	// scratchpad: volume
	S    []float64   // [nverts] shape functions
	G    [][]float64 // [nverts][gndim] G == dSdx. derivative of shape function
	J    float64     // Jacobian: determinant of dxdR
	DSdR [][]float64 // [nverts][gndim] derivatives of S w.r.t natural coordinates
	DxdR [][]float64 // [gndim][gndim] derivatives of real coordinates w.r.t natural coordinates
	DRdx [][]float64 // [gndim][gndim] dRdx == inverse(dxdR)

	// scratchpad: line cells
	Jvec3d []float64 // Jacobian vector: dxdR for line cells (size==3)

	// scratchpad: face
	Sf     []float64   // [FaceNverts] face shape function values
	Fnvec  []float64   // [gndim] face normal vector scaled by the face Jacobian
	DSfdRf [][]float64 // [FaceNverts][gndim-1] derivatives of Sf w.r.t natural coordinates
	DxfdRf [][]float64 // [gndim][gndim-1] derivatives of real coordinates w.r.t natural coordinates
}

// factory holds prototypes of all Shapes available
var factory = make(map[string]*Shape)

// Get returns a Shape structure of given type with a freshly allocated
// scratchpad, so each caller may compute independently.
//
//	Note: returns nil if geoType is unknown
func Get(geoType string) *Shape {
	p, ok := factory[geoType]
	if !ok {
		return nil
	}
	o := new(Shape)
	*o = *p
	o.FaceLocalVerts = utl.IntClone(p.FaceLocalVerts)
	o.NatCoords = la.MatClone(p.NatCoords)
	if o.FaceType != "" {
		o.FaceFunc = factory[o.FaceType].Func // resolved here: init order across files is undefined
	}
	o.initScratchpad()
	return o
}

// GetFaceLocalVerts returns the local vertices of face idxface of cells
// with given type
//
//	Note: returns nil if geoType is unknown
func GetFaceLocalVerts(geoType string, idxface int) []int {
	p, ok := factory[geoType]
	if !ok {
		return nil
	}
	if idxface < 0 || idxface >= len(p.FaceLocalVerts) {
		return nil
	}
	return p.FaceLocalVerts[idxface]
}

// GetOrder returns the interpolation order of cells with given type
//
//	Note: returns -1 if geoType is unknown
func GetOrder(geoType string) int {
	p, ok := factory[geoType]
	if !ok {
		return -1
	}
	return p.Order
}

// GetNverts returns the number of vertices of cells with given type
//
//	Note: returns -1 if geoType is unknown
func GetNverts(geoType string) int {
	p, ok := factory[geoType]
	if !ok {
		return -1
	}
	return p.Nverts
}

// IpRealCoords returns the real coordinates (y) of an integration point
func (o *Shape) IpRealCoords(x [][]float64, ip Ipoint) (y []float64) {
	ndim := len(x)
	y = make([]float64, ndim)
	o.Func(o.S, o.DSdR, ip.R(), false)
	for i := 0; i < ndim; i++ {
		for m := 0; m < o.Nverts; m++ {
			y[i] += o.S[m] * x[i][m]
		}
	}
	return
}

// IpRealCoordsFromS returns the real coordinates corresponding to the shape
// values currently in the scratchpad (i.e. after CalcAtIp or CalcAtR)
func (o *Shape) IpRealCoordsFromS(x [][]float64) (y []float64) {
	ndim := len(x)
	y = make([]float64, ndim)
	for i := 0; i < ndim; i++ {
		for m := 0; m < o.Nverts; m++ {
			y[i] += o.S[m] * x[i][m]
		}
	}
	return
}

// FaceIpRealCoords returns the real coordinates (y) of an integration point
// on face idxface
func (o *Shape) FaceIpRealCoords(x [][]float64, ipf Ipoint, idxface int) (y []float64) {
	ndim := len(x)
	y = make([]float64, ndim)
	if o.Gndim == 1 {
		v := o.FaceLocalVerts[idxface][0]
		for i := 0; i < ndim; i++ {
			y[i] = x[i][v]
		}
		return
	}
	o.FaceFunc(o.Sf, o.DSfdRf, ipf.R(), false)
	for i := 0; i < ndim; i++ {
		for k, n := range o.FaceLocalVerts[idxface] {
			y[i] += o.Sf[k] * x[i][n]
		}
	}
	return
}

// CalcAtIp calculates volume data such as S and G at the natural coordinates
// of an integration point
//
//	Input:
//	 x[ndim][nverts] -- coordinates matrix of cell
//	 ip              -- integration point
//	Output:
//	 S, DSdR, DxdR, DRdx, G, and J
func (o *Shape) CalcAtIp(x [][]float64, ip Ipoint, derivs bool) (err error) {
	return o.CalcAtR(x, ip.R(), derivs)
}

// CalcAtR calculates volume data such as S and G at natural coordinates r
func (o *Shape) CalcAtR(x [][]float64, r []float64, derivs bool) (err error) {

	// S and dSdR
	o.Func(o.S, o.DSdR, r, derivs)
	if !derivs {
		return
	}

	// line cells: J is the norm of the Jacobian vector
	if o.Gndim == 1 {
		for i := 0; i < len(x); i++ {
			o.Jvec3d[i] = 0.0
			for m := 0; m < o.Nverts; m++ {
				o.Jvec3d[i] += x[i][m] * o.DSdR[m][0] // dxdR := x * dSdR
			}
		}
		o.J = la.VecNorm(o.Jvec3d)
		if o.J < MINDET {
			return chk.Err("%s: Jacobian is too small = %g", o.Type, o.J)
		}
		for m := 0; m < o.Nverts; m++ {
			o.G[m][0] = o.DSdR[m][0] / o.J
		}
		return
	}

	// dxdR := sum_n x * dSdR  =>  dx_i/dR_j := sum_n x^n_i * dS^n/dR_j
	for i := 0; i < len(x); i++ {
		for j := 0; j < o.Gndim; j++ {
			o.DxdR[i][j] = 0.0
			for n := 0; n < o.Nverts; n++ {
				o.DxdR[i][j] += x[i][n] * o.DSdR[n][j]
			}
		}
	}

	// dRdx := inv(dxdR)
	o.J, err = la.MatInv(o.DRdx, o.DxdR, MINDET)
	if err != nil {
		return
	}

	// G == dSdx := dSdR * dRdx
	la.MatMul(o.G, 1, o.DSdR, o.DRdx)
	return
}

// CalcAtFaceIp calculates face data such as Sf and Fnvec at the natural
// coordinates of a face integration point
//
//	Input:
//	 x[ndim][nverts] -- coordinates matrix of cell
//	 ipf             -- integration point on face
//	 idxface         -- local index of face
//	Output:
//	 Sf and Fnvec (normal vector scaled by the face Jacobian)
func (o *Shape) CalcAtFaceIp(x [][]float64, ipf Ipoint, idxface int) (err error) {

	// line cells: faces are the endpoint vertices
	if o.Gndim == 1 {
		o.Sf[0] = 1.0
		if idxface == 0 {
			o.Fnvec[0] = -1.0
		} else {
			o.Fnvec[0] = 1.0
		}
		return
	}

	// Sf and dSfdRf
	o.FaceFunc(o.Sf, o.DSfdRf, ipf.R(), true)

	// dxfdRf := sum_n x * dSfdRf
	for i := 0; i < len(x); i++ {
		for j := 0; j < o.Gndim-1; j++ {
			o.DxfdRf[i][j] = 0.0
			for k, n := range o.FaceLocalVerts[idxface] {
				o.DxfdRf[i][j] += x[i][n] * o.DSfdRf[k][j]
			}
		}
	}

	// face normal vector
	if o.Gndim == 2 {
		o.Fnvec[0] = o.DxfdRf[1][0]
		o.Fnvec[1] = -o.DxfdRf[0][0]
		return
	}
	o.Fnvec[0] = o.DxfdRf[1][0]*o.DxfdRf[2][1] - o.DxfdRf[2][0]*o.DxfdRf[1][1]
	o.Fnvec[1] = o.DxfdRf[2][0]*o.DxfdRf[0][1] - o.DxfdRf[0][0]*o.DxfdRf[2][1]
	o.Fnvec[2] = o.DxfdRf[0][0]*o.DxfdRf[1][1] - o.DxfdRf[1][0]*o.DxfdRf[0][1]
	return
}

// initScratchpad allocates volume and face scratchpad data
func (o *Shape) initScratchpad() {

	// volume data
	o.S = make([]float64, o.Nverts)
	o.DSdR = la.MatAlloc(o.Nverts, o.Gndim)
	o.DxdR = la.MatAlloc(o.Gndim, o.Gndim)
	o.DRdx = la.MatAlloc(o.Gndim, o.Gndim)
	o.G = la.MatAlloc(o.Nverts, o.Gndim)

	// face data
	if o.Gndim > 1 {
		o.Sf = make([]float64, o.FaceNverts)
		o.DSfdRf = la.MatAlloc(o.FaceNverts, o.Gndim-1)
		o.DxfdRf = la.MatAlloc(o.Gndim, o.Gndim-1)
		o.Fnvec = make([]float64, o.Gndim)
	}

	// line data
	if o.Gndim == 1 {
		o.Jvec3d = make([]float64, 3)
		o.Sf = make([]float64, 1)
		o.Fnvec = make([]float64, 1)
	}
}
