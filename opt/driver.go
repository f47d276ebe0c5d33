// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opt implements adjoint-based shape optimization of elasticity
// problems: a steepest-descent loop that minimizes the strain energy over
// admissible deformations of the base mesh.
//
// This is a descent heuristic with an optional line search, not an
// algorithm with a convergence guarantee; termination is by iteration cap
// or line-search collapse.
package opt

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cpmech/gosl/la"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/frm"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/logger"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/solid"
)

// ErrDegenerateLineSearch indicates that the line-search step collapsed
// below its threshold without decreasing the objective
var ErrDegenerateLineSearch = errors.New("line search collapsed without decreasing the objective")

// Checkpoint is called after every completed iteration with the deformed
// mesh, the converged state field and the objective value; callers may use
// it for export or visualization
type Checkpoint func(iteration int, msh *inp.Mesh, gfu *fem.GridFunc, J float64)

// Driver minimizes the strain energy J(u) = ∫ σ(u):ε(u) of a beam problem
// over deformations of its base mesh, subject to the elasticity equation
// holding on the deformed domain
type Driver struct {

	// configuration
	Beam       *solid.Beam // problem on the base mesh
	Step       float64     // descent step scale
	MaxIt      int         // iteration cap
	LineSearch bool        // halve the step while J fails to decrease
	MinStep    float64     // line-search collapse threshold; 0 means Step/1024
	Free       string      // regions allowed to move; "" means all but fixed and loaded
	Checkpoint Checkpoint  // optional per-iteration callback

	// state (externally readable between iterations)
	Gfset *fem.GridFunc // accumulated mesh displacement on the base mesh
	J     float64       // current objective value
	It    int           // completed iterations
}

// Result summarizes an optimization run
type Result struct {
	J          float64   // final objective value
	Iterations int       // completed iterations
	History    []float64 // objective value after each iteration, J0 first
}

// NewDriver prepares a driver for the beam problem
func NewDriver(beam *solid.Beam, step float64, maxIt int, lineSearch bool) *Driver {
	return &Driver{Beam: beam, Step: step, MaxIt: maxIt, LineSearch: lineSearch}
}

// State bundles the artifacts of one state solve on a deformed mesh
type State struct {
	Msh  *inp.Mesh   // the deformed mesh
	Beam *solid.Beam // the solved problem on it
	J    float64     // objective value
}

// Cost deforms the base mesh by the given accumulated displacement, solves
// the state equation on it and evaluates the objective. This is the single
// cost evaluator used by both the descent step and the line search.
func (o *Driver) Cost(gfset *fem.GridFunc) (*State, error) {
	dmsh, err := o.Beam.Msh.Deformed(gfset.PerVert())
	if err != nil {
		return nil, err
	}
	b := o.Beam.WithMesh(dmsh)
	if err := b.DefineSpace(); err != nil {
		return nil, err
	}
	if err := b.AssembleForms(); err != nil {
		return nil, err
	}
	if err := b.Solve(); err != nil {
		return nil, err
	}
	J, err := b.Energy()
	if err != nil {
		return nil, err
	}
	return &State{Msh: dmsh, Beam: b, J: J}, nil
}

// descentDirection computes the smoothed shape gradient gfX on the deformed
// mesh of a solved state: adjoint solve with the transpose of the state
// matrix, shape derivative of the Lagrangian, then an H1 smoothing solve
// (∇X:∇W + X·W) against that load
func (o *Driver) descentDirection(s *State) (*fem.GridFunc, error) {
	beam := s.Beam
	spc := beam.Spc
	n := spc.Ndofs

	// adjoint: Kᵀ p = −dJ/du
	dj := make([]float64, n)
	if err := frm.StateDerivative(beam.StrainEnergy(beam.Gfu), beam.Gfu, dj); err != nil {
		return nil, err
	}
	rhs := make([]float64, n)
	la.VecCopy(rhs, -1, dj)
	pvals, err := fem.SolveSystemT(beam.K, rhs, spc, beam.Solver())
	if err != nil {
		return nil, fmt.Errorf("adjoint solve: %w", err)
	}
	gfp := fem.NewGridFunc(spc)
	copy(gfp.V, pvals)

	// shape derivative of the Lagrangian J(u) + a(u,p) − l(p) over the
	// deformation space; anchored boundaries are constrained
	dspc, err := fem.NewSpace(s.Msh, beam.Order, s.Msh.Ndim, o.anchoredRegions())
	if err != nil {
		return nil, err
	}
	lagr := frm.Add(beam.StrainEnergy(beam.Gfu), beam.ResidualEnergy(beam.Gfu, gfp))
	dL := make([]float64, dspc.Ndofs)
	if err := frm.ShapeDerivative(dspc, lagr, dL); err != nil {
		return nil, err
	}

	// smoothing solve: (∇X:∇W + X·W) X = dL
	nv := len(s.Msh.Cells[0].Verts) * dspc.Arity
	H := fem.NewMatrix(dspc.Ndofs, len(s.Msh.Cells)*nv*nv)
	h := frm.Add(
		frm.DDot(frm.Grad(frm.Trial()), frm.Grad(frm.Test())),
		frm.Dot(frm.Trial(), frm.Test()),
	)
	if err := frm.NewBilinear(dspc, h).Assemble(H); err != nil {
		return nil, err
	}
	ug := make([]float64, dspc.Ndofs)
	xvals, err := fem.SolveSystem(H, dL, ug, dspc, beam.Solver())
	if err != nil {
		return nil, fmt.Errorf("smoothing solve: %w", err)
	}
	gfX := fem.NewGridFunc(dspc)
	copy(gfX.V, xvals)
	return gfX, nil
}

// anchoredRegions returns the regions whose geometry must not move: the
// fixed and loaded boundaries always, plus every other named region not
// listed in Free
func (o *Driver) anchoredRegions() []string {
	regions := inp.SplitRegions(o.Beam.Fixed)
	regions = append(regions, inp.SplitRegions(o.Beam.Loaded)...)
	if o.Free == "" {
		return regions
	}
	skip := make(map[string]bool)
	for _, name := range inp.SplitRegions(o.Free) {
		skip[name] = true
	}
	for _, name := range regions {
		skip[name] = true
	}
	names := make([]string, 0, len(o.Beam.Msh.Regions))
	for name := range o.Beam.Msh.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !skip[name] {
			regions = append(regions, name)
		}
	}
	return regions
}

// anchor zeroes the deformation components on the anchored regions of the
// base mesh, so those boundaries never move
func (o *Driver) anchor(gfset *fem.GridFunc) error {
	for _, name := range o.anchoredRegions() {
		verts, err := o.Beam.Msh.RegionVerts(name)
		if err != nil {
			return err
		}
		for _, vid := range verts {
			vv := gfset.VertVals(vid)
			la.VecFill(vv, 0)
		}
	}
	return nil
}

// Run executes the optimization loop. It terminates at the iteration cap or,
// with the line search enabled, when the step collapses below the threshold;
// the collapse is reported as ErrDegenerateLineSearch together with the
// result reached so far. A non-convergent state solve aborts the run.
func (o *Driver) Run() (*Result, error) {
	log := logger.Logger()
	minStep := o.MinStep
	if minStep <= 0 {
		minStep = o.Step / 1024
	}

	// deformation bookkeeping lives on a vector space over the base mesh
	baseSpc, err := fem.NewSpace(o.Beam.Msh, o.Beam.Order, o.Beam.Msh.Ndim, nil)
	if err != nil {
		return nil, err
	}
	o.Gfset = fem.NewGridFunc(baseSpc)

	cur, err := o.Cost(o.Gfset)
	if err != nil {
		return nil, err
	}
	o.J = cur.J
	res := &Result{History: []float64{cur.J}}
	defer func() { res.J, res.Iterations = o.J, o.It }()
	log.Info().Int("iteration", 0).Float64("J", cur.J).Msg("initial state")

	for it := 1; it <= o.MaxIt; it++ {
		gfX, err := o.descentDirection(cur)
		if err != nil {
			return res, err
		}
		norm := la.VecNorm(gfX.V)
		if norm == 0 {
			log.Info().Int("iteration", it).Msg("vanishing shape gradient")
			break
		}

		// candidate update: gfset − (scale/|gfX|)·gfX, anchors re-zeroed
		scale := o.Step
		var next *fem.GridFunc
		var nextCur *State
		for {
			next = o.Gfset.Clone()
			la.VecAdd(next.V, -scale/norm, gfX.V)
			if err := o.anchor(next); err != nil {
				return res, err
			}
			nextCur, err = o.Cost(next)
			if err != nil {
				return res, err
			}
			if !o.LineSearch || nextCur.J < cur.J {
				break
			}
			scale /= 2
			log.Debug().Int("iteration", it).Float64("scale", scale).Float64("J", nextCur.J).Msg("halving step")
			if scale < minStep {
				return res, fmt.Errorf("%w: scale %g below %g at iteration %d", ErrDegenerateLineSearch, scale, minStep, it)
			}
		}

		// commit only at the end of a completed iteration
		o.Gfset = next
		o.J = nextCur.J
		o.It = it
		cur = nextCur
		res.History = append(res.History, cur.J)
		log.Info().Int("iteration", it).Float64("J", cur.J).Float64("scale", scale).Msg("iteration done")
		if o.Checkpoint != nil {
			o.Checkpoint(it, cur.Msh, cur.Beam.Gfu, cur.J)
		}
	}
	return res, nil
}
