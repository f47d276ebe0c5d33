// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/shp"
)

// Space holds a nodal Lagrange function space over a mesh: the map from
// local element degrees of freedom to global equation numbers, and the set
// of equations left free after essential boundary conditions.
//
// Equation numbering is deterministic: eq = vid*arity + j, with component j
// interleaved per vertex. Constrained equations are those whose vertex lies
// on any facet of a Dirichlet region; on region intersections the
// constraint wins.
type Space struct {

	// input
	Msh   *inp.Mesh // the mesh
	Order int       // interpolation order
	Arity int       // number of components per node (1: scalar, ndim: vector field)

	// derived
	Ndofs int            // total number of equations
	free  *bitset.BitSet // free equations (not on Dirichlet regions)

	// derived: scratch
	shapes map[string]*shp.Shape // shape per cell type, shared scratchpads
}

// NewSpace allocates a function space over the mesh. The order must match
// the interpolation order of every cell in the mesh; dirichlet lists the
// names of regions whose nodes are constrained.
func NewSpace(msh *inp.Mesh, order, arity int, dirichlet []string) (*Space, error) {
	if order < 1 || order > 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if arity < 1 {
		return nil, fmt.Errorf("arity must be positive; got %d", arity)
	}
	for _, c := range msh.Cells {
		if shp.GetOrder(c.Type) != order {
			return nil, fmt.Errorf("%w: cell %d (%s) cannot carry order %d", ErrInvalidOrder, c.Id, c.Type, order)
		}
	}

	o := &Space{Msh: msh, Order: order, Arity: arity}
	o.Ndofs = len(msh.Verts) * arity
	o.shapes = make(map[string]*shp.Shape)
	for _, c := range msh.Cells {
		if _, ok := o.shapes[c.Type]; !ok {
			o.shapes[c.Type] = shp.Get(c.Type)
		}
	}

	// free equations = complement of Dirichlet vertices
	o.free = bitset.New(uint(o.Ndofs))
	for eq := 0; eq < o.Ndofs; eq++ {
		o.free.Set(uint(eq))
	}
	for _, name := range dirichlet {
		verts, err := msh.RegionVerts(name)
		if err != nil {
			return nil, err
		}
		for _, vid := range verts {
			for j := 0; j < arity; j++ {
				o.free.Clear(uint(vid*arity + j))
			}
		}
	}
	return o, nil
}

// FreeDofs returns the set of free equations. The set is shared, not copied.
func (o *Space) FreeDofs() *bitset.BitSet {
	return o.free
}

// IsFree tells whether equation eq is unconstrained
func (o *Space) IsFree(eq int) bool {
	return o.free.Test(uint(eq))
}

// Shape returns the (shared) shape structure of a cell
func (o *Space) Shape(cellId int) *shp.Shape {
	return o.shapes[o.Msh.Cells[cellId].Type]
}

// LocToGlob returns the local-to-global map of a cell: entry m*arity+j is
// the global equation of component j at local node m
func (o *Space) LocToGlob(cellId int) []int {
	cell := o.Msh.Cells[cellId]
	l2g := make([]int, len(cell.Verts)*o.Arity)
	for m, vid := range cell.Verts {
		for j := 0; j < o.Arity; j++ {
			l2g[m*o.Arity+j] = vid*o.Arity + j
		}
	}
	return l2g
}

// VertDofs returns the equations of all components at one vertex
func (o *Space) VertDofs(vid int) []int {
	dofs := make([]int, o.Arity)
	for j := 0; j < o.Arity; j++ {
		dofs[j] = vid*o.Arity + j
	}
	return dofs
}
