// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

func init() {
	io.Verbose = false
}

func verbose() bool {
	return io.Verbose
}

func Test_space01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("space01. deterministic numbering and free set")

	msh, err := inp.Rectangle(0, 2, 0, 1, 2, 1, 1)
	if err != nil {
		tst.Errorf("Rectangle failed: %v", err)
		return
	}
	spc, err := NewSpace(msh, 1, 2, []string{"left"})
	if err != nil {
		tst.Errorf("NewSpace failed: %v", err)
		return
	}
	if spc.Ndofs != 2*len(msh.Verts) {
		tst.Errorf("wrong Ndofs: %d", spc.Ndofs)
		return
	}

	// left edge has 2 vertices => 4 constrained equations
	nfree := int(spc.FreeDofs().Count())
	if nfree != spc.Ndofs-4 {
		tst.Errorf("wrong free count: %d", nfree)
		return
	}
	left, _ := msh.RegionVerts("left")
	for _, vid := range left {
		for _, eq := range spc.VertDofs(vid) {
			if spc.IsFree(eq) {
				tst.Errorf("equation %d of left vertex %d must be constrained", eq, vid)
			}
		}
	}

	// l2g is eq = vid*arity + j, node-major
	l2g := spc.LocToGlob(0)
	cell := msh.Cells[0]
	for m, vid := range cell.Verts {
		for j := 0; j < 2; j++ {
			if l2g[m*2+j] != vid*2+j {
				tst.Errorf("wrong l2g at node %d comp %d: %d", m, j, l2g[m*2+j])
			}
		}
	}

	// two spaces over the same mesh number identically
	spc2, _ := NewSpace(msh, 1, 2, []string{"left"})
	chk.Ints(tst, "l2g repeatable", spc.LocToGlob(1), spc2.LocToGlob(1))
}

func Test_space02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("space02. order and region validation")

	msh, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 1)
	if err != nil {
		tst.Errorf("Rectangle failed: %v", err)
		return
	}

	// qua4 cells cannot carry order 2
	if _, err = NewSpace(msh, 2, 2, nil); !errors.Is(err, ErrInvalidOrder) {
		tst.Errorf("expected ErrInvalidOrder; got %v", err)
	}
	if _, err = NewSpace(msh, 0, 2, nil); !errors.Is(err, ErrInvalidOrder) {
		tst.Errorf("expected ErrInvalidOrder for order 0; got %v", err)
	}
	if _, err = NewSpace(msh, 1, 2, []string{"nowhere"}); !errors.Is(err, inp.ErrUnknownRegion) {
		tst.Errorf("expected ErrUnknownRegion; got %v", err)
	}

	// qua9 mesh carries order 2
	msh2, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 2)
	if err != nil {
		tst.Errorf("Rectangle order 2 failed: %v", err)
		return
	}
	spc, err := NewSpace(msh2, 2, 1, []string{"left"})
	if err != nil {
		tst.Errorf("NewSpace order 2 failed: %v", err)
		return
	}
	if spc.Ndofs != len(msh2.Verts) {
		tst.Errorf("wrong scalar Ndofs: %d", spc.Ndofs)
	}
}

// laplacian assembles the finite-difference Laplacian with unit spacing on
// an interval space: 2 on the diagonal, -1 off diagonal
func laplacian(spc *Space) *Matrix {
	n := spc.Ndofs
	A := NewMatrix(n, 3*n)
	for i := 0; i < n; i++ {
		A.Put(i, i, 2)
		if i > 0 {
			A.Put(i, i-1, -1)
		}
		if i < n-1 {
			A.Put(i, i+1, -1)
		}
	}
	return A
}

func Test_solve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve01. elimination reproduces prescribed values exactly")

	msh, err := inp.Interval(0, 1, 8, 1)
	if err != nil {
		tst.Errorf("Interval failed: %v", err)
		return
	}
	spc, err := NewSpace(msh, 1, 1, []string{"left", "right"})
	if err != nil {
		tst.Errorf("NewSpace failed: %v", err)
		return
	}
	A := laplacian(spc)
	n := spc.Ndofs
	b := make([]float64, n)
	la.VecFill(b, 1)
	ug := make([]float64, n)
	ug[0] = 0.3
	ug[n-1] = -0.7

	for _, name := range []string{"cg", "chol"} {
		sol := GetSolver(name, 1e-12, 1000)
		u, err := SolveSystem(A, b, ug, spc, sol)
		if err != nil {
			tst.Errorf("SolveSystem (%s) failed: %v", name, err)
			return
		}

		// constrained values must hold bit for bit
		if u[0] != 0.3 || u[n-1] != -0.7 {
			tst.Errorf("(%s) constrained entries not exact: %v %v", name, u[0], u[n-1])
			return
		}

		// residual must vanish on the free set
		r := la.VecClone(b)
		la.SpMatVecMulAdd(r, -1, A.CC(), u)
		for i := 0; i < n; i++ {
			if spc.IsFree(i) {
				chk.Scalar(tst, io.Sf("(%s) residual at %d", name, i), 1e-9, r[i], 0)
			}
		}
	}
}

func Test_solve02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve02. cg and chol agree; transpose solve on symmetric A")

	msh, err := inp.Interval(0, 1, 10, 1)
	if err != nil {
		tst.Errorf("Interval failed: %v", err)
		return
	}
	spc, err := NewSpace(msh, 1, 1, []string{"left"})
	if err != nil {
		tst.Errorf("NewSpace failed: %v", err)
		return
	}
	A := laplacian(spc)
	b := make([]float64, spc.Ndofs)
	for i := range b {
		b[i] = float64(i%3) - 1
	}
	ug := make([]float64, spc.Ndofs)

	ucg, err := SolveSystem(A, b, ug, spc, GetSolver("cg", 1e-13, 2000))
	if err != nil {
		tst.Errorf("cg failed: %v", err)
		return
	}
	uch, err := SolveSystem(A, b, ug, spc, GetSolver("chol", 0, 0))
	if err != nil {
		tst.Errorf("chol failed: %v", err)
		return
	}
	chk.Vector(tst, "cg vs chol", 1e-8, ucg, uch)

	// A symmetric: transpose solve must agree too
	for _, name := range []string{"cg", "chol"} {
		sol := GetSolver(name, 1e-13, 2000)
		w, err := SolveSystemT(A, b, spc, sol)
		if err != nil {
			tst.Errorf("SolveSystemT (%s) failed: %v", name, err)
			return
		}
		chk.Vector(tst, io.Sf("transpose (%s)", name), 1e-8, w, uch)
	}
}

func Test_solve03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solve03. singular systems are reported")

	msh, err := inp.Interval(0, 1, 4, 1)
	if err != nil {
		tst.Errorf("Interval failed: %v", err)
		return
	}
	spc, err := NewSpace(msh, 1, 1, nil)
	if err != nil {
		tst.Errorf("NewSpace failed: %v", err)
		return
	}

	// pure Neumann Laplacian: singular
	n := spc.Ndofs
	A := NewMatrix(n, 3*n)
	for i := 0; i < n; i++ {
		d := 2.0
		if i == 0 || i == n-1 {
			d = 1.0
		}
		A.Put(i, i, d)
		if i > 0 {
			A.Put(i, i-1, -1)
		}
		if i < n-1 {
			A.Put(i, i+1, -1)
		}
	}
	b := make([]float64, n)
	b[0] = 1 // incompatible right-hand side
	ug := make([]float64, n)

	_, err = SolveSystem(A, b, ug, spc, GetSolver("chol", 0, 0))
	if !errors.Is(err, ErrSingularSystem) {
		tst.Errorf("chol: expected ErrSingularSystem; got %v", err)
	}
	_, err = SolveSystem(A, b, ug, spc, GetSolver("cg", 1e-14, 50))
	if !errors.Is(err, ErrSingularSystem) {
		tst.Errorf("cg: expected ErrSingularSystem; got %v", err)
	}
}

func Test_gridfn01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gridfn01. grid function layout")

	msh, err := inp.Rectangle(0, 1, 0, 1, 1, 1, 1)
	if err != nil {
		tst.Errorf("Rectangle failed: %v", err)
		return
	}
	spc, err := NewSpace(msh, 1, 2, nil)
	if err != nil {
		tst.Errorf("NewSpace failed: %v", err)
		return
	}
	gf := NewGridFunc(spc)
	for vid := range msh.Verts {
		vv := gf.VertVals(vid)
		vv[0] = float64(vid)
		vv[1] = -float64(vid)
	}
	chk.Scalar(tst, "V[6]", 1e-17, gf.V[6], 3)
	chk.Scalar(tst, "V[7]", 1e-17, gf.V[7], -3)

	pv := gf.PerVert()
	chk.Vector(tst, "vert 2", 1e-17, pv[2], []float64{2, -2})

	cv := gf.CellVals(0)
	if len(cv) != 8 {
		tst.Errorf("wrong cell vals length: %d", len(cv))
		return
	}
	chk.Scalar(tst, "cell val node1 comp0", 1e-17, cv[2], 1)

	cl := gf.Clone()
	cl.V[0] = 99
	chk.Scalar(tst, "clone is deep", 1e-17, gf.V[0], 0)
}

func Test_getsolver01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("getsolver01. solver selection")

	if _, ok := GetSolver("chol", 0, 0).(*CholSolver); !ok {
		tst.Errorf("chol must select the Cholesky solver")
	}
	for _, name := range []string{"", "cg"} {
		cg, ok := GetSolver(name, 0, 0).(*CGSolver)
		if !ok {
			tst.Errorf("%q must select the CG solver", name)
			continue
		}
		chk.Scalar(tst, "default tol", 1e-17, cg.Tol, 1e-10)
		if cg.MaxIt != 10000 {
			tst.Errorf("default MaxIt not applied: %d", cg.MaxIt)
		}
	}

	defer func() {
		if recover() == nil {
			tst.Errorf("unknown solver name must panic")
		}
	}()
	GetSolver("umfpack", 0, 0)
}
