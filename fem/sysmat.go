// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
)

// Matrix accumulates a sparse system matrix in triplet form. The diagonal
// is tracked separately during assembly so iterative solvers can build a
// Jacobi preconditioner without touching the compressed-column internals.
type Matrix struct {
	T    la.Triplet // triplet storage
	Diag []float64  // [n] assembled diagonal
	n    int
	cc   *la.CCMatrix // cached conversion; dropped on Put/Start
}

// NewMatrix allocates an n-by-n matrix with room for max entries
func NewMatrix(n, max int) *Matrix {
	o := &Matrix{Diag: make([]float64, n), n: n}
	o.T.Init(n, n, max)
	return o
}

// Put adds v to entry (i, j)
func (o *Matrix) Put(i, j int, v float64) {
	o.T.Put(i, j, v)
	if i == j {
		o.Diag[i] += v
	}
	o.cc = nil
}

// Start resets the accumulator so the matrix can be assembled again
func (o *Matrix) Start() {
	o.T.Start()
	la.VecFill(o.Diag, 0)
	o.cc = nil
}

// N returns the matrix dimension
func (o *Matrix) N() int {
	return o.n
}

// CC converts the accumulated triplet to compressed-column format. The
// conversion is cached until the next Put or Start.
func (o *Matrix) CC() *la.CCMatrix {
	if o.cc == nil {
		o.cc = o.T.ToMatrix(nil)
	}
	return o.cc
}
