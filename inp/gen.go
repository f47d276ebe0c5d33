// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"fmt"

	"github.com/cpmech/gosl/chk"
)

// Interval generates a 1D mesh of the interval [xa, xb] with n cells of
// given order (1 => lin2, 2 => lin3). Boundary regions: "left", "right".
func Interval(xa, xb float64, n, order int) (*Mesh, error) {
	if n < 1 {
		return nil, chk.Err("number of cells must be positive; got %d", n)
	}
	if order != 1 && order != 2 {
		return nil, chk.Err("interval: order must be 1 or 2; got %d", order)
	}
	npts := order*n + 1
	dx := (xb - xa) / float64(npts-1)
	o := new(Mesh)
	o.Verts = make([]*Vert, npts)
	for i := 0; i < npts; i++ {
		o.Verts[i] = &Vert{Id: i, C: []float64{xa + float64(i)*dx}}
	}
	o.Cells = make([]*Cell, n)
	for e := 0; e < n; e++ {
		a := order * e
		if order == 1 {
			o.Cells[e] = &Cell{Id: e, Type: "lin2", Verts: []int{a, a + 1}}
		} else {
			o.Cells[e] = &Cell{Id: e, Type: "lin3", Verts: []int{a, a + 2, a + 1}}
		}
	}
	o.Regions = map[string][]Facet{
		"left":  {{Cell: 0, Face: 0}},
		"right": {{Cell: n - 1, Face: 1}},
	}
	return o, o.Init()
}

// Rectangle generates a structured quadrilateral mesh of [xa,xb] x [ya,yb]
// with nx by ny cells of given order (1 => qua4, 2 => qua9).
// Boundary regions: "left", "right", "bottom", "top".
func Rectangle(xa, xb, ya, yb float64, nx, ny, order int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, chk.Err("number of cells must be positive; got nx=%d ny=%d", nx, ny)
	}
	if order != 1 && order != 2 {
		return nil, chk.Err("rectangle: order must be 1 or 2; got %d", order)
	}

	// grid of points: (order*nx+1) x (order*ny+1)
	npx, npy := order*nx+1, order*ny+1
	dx, dy := (xb-xa)/float64(npx-1), (yb-ya)/float64(npy-1)
	idx := func(i, j int) int { return j*npx + i }
	o := new(Mesh)
	o.Verts = make([]*Vert, npx*npy)
	for j := 0; j < npy; j++ {
		for i := 0; i < npx; i++ {
			o.Verts[idx(i, j)] = &Vert{Id: idx(i, j), C: []float64{xa + float64(i)*dx, ya + float64(j)*dy}}
		}
	}

	// cells
	o.Cells = make([]*Cell, nx*ny)
	for ej := 0; ej < ny; ej++ {
		for ei := 0; ei < nx; ei++ {
			e := ej*nx + ei
			a, b := order*ei, order*ej
			if order == 1 {
				o.Cells[e] = &Cell{Id: e, Type: "qua4", Verts: []int{
					idx(a, b), idx(a+1, b), idx(a+1, b+1), idx(a, b+1),
				}}
			} else {
				o.Cells[e] = &Cell{Id: e, Type: "qua9", Verts: []int{
					idx(a, b), idx(a+2, b), idx(a+2, b+2), idx(a, b+2),
					idx(a+1, b), idx(a+2, b+1), idx(a+1, b+2), idx(a, b+1),
					idx(a+1, b+1),
				}}
			}
		}
	}

	// boundary regions; qua face order: 0:(0,1) bottom, 1:(1,2) right,
	// 2:(2,3) top, 3:(3,0) left
	o.Regions = make(map[string][]Facet)
	for ei := 0; ei < nx; ei++ {
		o.Regions["bottom"] = append(o.Regions["bottom"], Facet{Cell: ei, Face: 0})
		o.Regions["top"] = append(o.Regions["top"], Facet{Cell: (ny-1)*nx + ei, Face: 2})
	}
	for ej := 0; ej < ny; ej++ {
		o.Regions["left"] = append(o.Regions["left"], Facet{Cell: ej * nx, Face: 3})
		o.Regions["right"] = append(o.Regions["right"], Facet{Cell: ej*nx + nx - 1, Face: 1})
	}
	return o, o.Init()
}

// RectangleTri generates a structured triangular mesh of [xa,xb] x [ya,yb]
// by splitting each of nx by ny quads along the diagonal (order 1 => tri3,
// order 2 => tri6). Boundary regions as in Rectangle.
func RectangleTri(xa, xb, ya, yb float64, nx, ny, order int) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, chk.Err("number of cells must be positive; got nx=%d ny=%d", nx, ny)
	}
	if order != 1 && order != 2 {
		return nil, chk.Err("rectangle-tri: order must be 1 or 2; got %d", order)
	}
	npx, npy := order*nx+1, order*ny+1
	dx, dy := (xb-xa)/float64(npx-1), (yb-ya)/float64(npy-1)
	idx := func(i, j int) int { return j*npx + i }
	o := new(Mesh)
	o.Verts = make([]*Vert, npx*npy)
	for j := 0; j < npy; j++ {
		for i := 0; i < npx; i++ {
			o.Verts[idx(i, j)] = &Vert{Id: idx(i, j), C: []float64{xa + float64(i)*dx, ya + float64(j)*dy}}
		}
	}

	// two triangles per quad. lower: (sw, se, ne); upper: (sw, ne, nw).
	// the shared diagonal sw-ne is face 2 of the lower and face 0 of
	// the upper triangle
	o.Cells = make([]*Cell, 2*nx*ny)
	for ej := 0; ej < ny; ej++ {
		for ei := 0; ei < nx; ei++ {
			lo, up := 2*(ej*nx+ei), 2*(ej*nx+ei)+1
			a, b := order*ei, order*ej
			if order == 1 {
				o.Cells[lo] = &Cell{Id: lo, Type: "tri3", Verts: []int{
					idx(a, b), idx(a+1, b), idx(a+1, b+1),
				}}
				o.Cells[up] = &Cell{Id: up, Type: "tri3", Verts: []int{
					idx(a, b), idx(a+1, b+1), idx(a, b+1),
				}}
			} else {
				o.Cells[lo] = &Cell{Id: lo, Type: "tri6", Verts: []int{
					idx(a, b), idx(a+2, b), idx(a+2, b+2),
					idx(a+1, b), idx(a+2, b+1), idx(a+1, b+1),
				}}
				o.Cells[up] = &Cell{Id: up, Type: "tri6", Verts: []int{
					idx(a, b), idx(a+2, b+2), idx(a, b+2),
					idx(a+1, b+1), idx(a+1, b+2), idx(a, b+1),
				}}
			}
		}
	}

	// tri faces: 0:(0,1), 1:(1,2), 2:(2,0). on the lower triangle,
	// face 0 is the quad bottom and face 1 the quad right; on the upper,
	// face 1 is the quad top and face 2 the quad left
	o.Regions = make(map[string][]Facet)
	for ei := 0; ei < nx; ei++ {
		o.Regions["bottom"] = append(o.Regions["bottom"], Facet{Cell: 2 * ei, Face: 0})
		o.Regions["top"] = append(o.Regions["top"], Facet{Cell: 2*((ny-1)*nx+ei) + 1, Face: 1})
	}
	for ej := 0; ej < ny; ej++ {
		o.Regions["left"] = append(o.Regions["left"], Facet{Cell: 2*ej*nx + 1, Face: 2})
		o.Regions["right"] = append(o.Regions["right"], Facet{Cell: 2 * (ej*nx + nx - 1), Face: 1})
	}
	return o, o.Init()
}

// Box generates a structured hexahedral mesh of [xa,xb] x [ya,yb] x [za,zb]
// with nx by ny by nz hex8 cells. Boundary regions: "left", "right",
// "bottom", "top", "front", "back". Only order 1 is available in 3D.
func Box(xa, xb, ya, yb, za, zb float64, nx, ny, nz int) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, chk.Err("number of cells must be positive; got nx=%d ny=%d nz=%d", nx, ny, nz)
	}
	npx, npy, npz := nx+1, ny+1, nz+1
	dx := (xb - xa) / float64(nx)
	dy := (yb - ya) / float64(ny)
	dz := (zb - za) / float64(nz)
	idx := func(i, j, k int) int { return (k*npy+j)*npx + i }
	o := new(Mesh)
	o.Verts = make([]*Vert, npx*npy*npz)
	for k := 0; k < npz; k++ {
		for j := 0; j < npy; j++ {
			for i := 0; i < npx; i++ {
				o.Verts[idx(i, j, k)] = &Vert{Id: idx(i, j, k), C: []float64{
					xa + float64(i)*dx, ya + float64(j)*dy, za + float64(k)*dz,
				}}
			}
		}
	}
	o.Cells = make([]*Cell, nx*ny*nz)
	cid := func(i, j, k int) int { return (k*ny+j)*nx + i }
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				o.Cells[cid(i, j, k)] = &Cell{Id: cid(i, j, k), Type: "hex8", Verts: []int{
					idx(i, j, k), idx(i+1, j, k), idx(i+1, j+1, k), idx(i, j+1, k),
					idx(i, j, k+1), idx(i+1, j, k+1), idx(i+1, j+1, k+1), idx(i, j+1, k+1),
				}}
			}
		}
	}

	// hex8 faces: 0:x-min, 1:x-max, 2:y-min, 3:y-max, 4:z-min, 5:z-max
	o.Regions = make(map[string][]Facet)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			o.Regions["left"] = append(o.Regions["left"], Facet{Cell: cid(0, j, k), Face: 0})
			o.Regions["right"] = append(o.Regions["right"], Facet{Cell: cid(nx-1, j, k), Face: 1})
		}
	}
	for k := 0; k < nz; k++ {
		for i := 0; i < nx; i++ {
			o.Regions["front"] = append(o.Regions["front"], Facet{Cell: cid(i, 0, k), Face: 2})
			o.Regions["back"] = append(o.Regions["back"], Facet{Cell: cid(i, ny-1, k), Face: 3})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			o.Regions["bottom"] = append(o.Regions["bottom"], Facet{Cell: cid(i, j, 0), Face: 4})
			o.Regions["top"] = append(o.Regions["top"], Facet{Cell: cid(i, j, nz-1), Face: 5})
		}
	}
	return o, o.Init()
}

// Deformed returns a copy of the mesh with vertex coordinates displaced by
// disp[vid][i]. Topology (cells, regions) is shared with the receiver.
func (o *Mesh) Deformed(disp [][]float64) (*Mesh, error) {
	if len(disp) != len(o.Verts) {
		return nil, fmt.Errorf("displacement has %d rows; mesh has %d vertices", len(disp), len(o.Verts))
	}
	m := new(Mesh)
	m.Verts = make([]*Vert, len(o.Verts))
	for i, v := range o.Verts {
		c := make([]float64, o.Ndim)
		for k := 0; k < o.Ndim; k++ {
			c[k] = v.C[k] + disp[i][k]
		}
		m.Verts[i] = &Vert{Id: v.Id, C: c}
	}
	m.Cells = o.Cells
	m.Regions = o.Regions
	return m, m.Init()
}
