// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
)

// GridFunc holds nodal values of a function in a Space. The flat vector V
// follows the space's equation numbering, so V can be used directly as a
// solution or right-hand-side vector.
type GridFunc struct {
	Spc *Space    // the space
	V   []float64 // [Ndofs] nodal values
}

// NewGridFunc allocates a zero grid function on the space
func NewGridFunc(s *Space) *GridFunc {
	return &GridFunc{Spc: s, V: make([]float64, s.Ndofs)}
}

// Fill sets all nodal values to v
func (o *GridFunc) Fill(v float64) {
	la.VecFill(o.V, v)
}

// Clone returns a deep copy
func (o *GridFunc) Clone() *GridFunc {
	return &GridFunc{Spc: o.Spc, V: la.VecClone(o.V)}
}

// VertVals returns the component values at one vertex, as a view into V
func (o *GridFunc) VertVals(vid int) []float64 {
	return o.V[vid*o.Spc.Arity : (vid+1)*o.Spc.Arity]
}

// PerVert returns the nodal values as one vector per mesh vertex; for
// vector-valued spaces this is the displacement layout Mesh.Deformed takes
func (o *GridFunc) PerVert() [][]float64 {
	n := len(o.Spc.Msh.Verts)
	out := make([][]float64, n)
	for vid := 0; vid < n; vid++ {
		out[vid] = la.VecClone(o.VertVals(vid))
	}
	return out
}

// CellVals gathers the local nodal values of a cell: entry m*arity+j is
// component j at local node m
func (o *GridFunc) CellVals(cellId int) []float64 {
	l2g := o.Spc.LocToGlob(cellId)
	vals := make([]float64, len(l2g))
	for r, I := range l2g {
		vals[r] = o.V[I]
	}
	return vals
}
