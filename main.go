// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/logger"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/opt"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/out"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/solid"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// input parameters
	simfn, fnkey := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	saveVtu := io.ArgToBool(2, true)
	if !verbose {
		logger.Disable()
	}

	// message
	if verbose {
		io.Pf("\n%v\n", io.ArgsTable(
			"simulation filename", "simfn", simfn,
			"show messages", "verbose", verbose,
			"save vtu files", "saveVtu", saveVtu,
		))
	}

	// read input
	sim, err := inp.ReadSim(simfn)
	if err != nil {
		chk.Panic("cannot read simulation:\n%v", err)
	}
	msh, err := inp.ReadMesh(sim.MeshPath())
	if err != nil {
		chk.Panic("cannot read mesh:\n%v", err)
	}

	// build problem
	beam, err := newBeam(sim, msh)
	if err != nil {
		chk.Panic("cannot build problem:\n%v", err)
	}
	dirout := filepath.Join(sim.DirOut, fnkey+"-out")

	// run
	if sim.Opt != nil {
		runOptimization(sim, beam, dirout, saveVtu)
		return
	}
	runStatic(beam, dirout, fnkey, saveVtu)
}

// newBeam builds the elasticity problem from the simulation input
func newBeam(sim *inp.Simulation, msh *inp.Mesh) (*solid.Beam, error) {
	d := sim.Beam
	beam, err := solid.NewBeam(msh, sim.Data.Order, d.Lam, d.Mu, d.Fixed, d.Loaded)
	if err != nil {
		return nil, err
	}
	beam.Traction = d.Traction
	beam.Body = d.Body
	if d.LoadFcn != "" {
		if beam.LoadFcn, err = sim.GetFunction(d.LoadFcn); err != nil {
			return nil, err
		}
	}
	if d.BodyFcn != "" {
		if beam.BodyFcn, err = sim.GetFunction(d.BodyFcn); err != nil {
			return nil, err
		}
	}
	beam.LinSol = sim.LinSol.Name
	beam.Tol = sim.LinSol.Tol
	beam.LinMaxIt = sim.LinSol.MaxIt
	return beam, nil
}

// runStatic solves the state equation once and exports the displacement
func runStatic(beam *solid.Beam, dirout, fnkey string, saveVtu bool) {
	if err := beam.DefineSpace(); err != nil {
		chk.Panic("cannot define space:\n%v", err)
	}
	if err := beam.AssembleForms(); err != nil {
		chk.Panic("cannot assemble forms:\n%v", err)
	}
	if err := beam.Solve(); err != nil {
		chk.Panic("state solve failed:\n%v", err)
	}
	J, err := beam.Energy()
	if err != nil {
		chk.Panic("cannot evaluate energy:\n%v", err)
	}
	logger.Logger().Info().Float64("J", J).Msg("state solved")
	if saveVtu {
		err = out.WriteVtu(dirout, fnkey, beam.Msh, []out.Field{{Name: "u", Gf: beam.Gfu}})
		if err != nil {
			chk.Panic("cannot write results:\n%v", err)
		}
		io.Pf("results written to %s\n", dirout)
	}
}

// runOptimization runs the shape optimization loop, exporting the deformed
// mesh and displacement after every iteration
func runOptimization(sim *inp.Simulation, beam *solid.Beam, dirout string, saveVtu bool) {
	drv := opt.NewDriver(beam, sim.Opt.Step, sim.Opt.MaxIt, sim.Opt.LineSearch)
	drv.Free = sim.Opt.Free
	if saveVtu {
		drv.Checkpoint = func(it int, msh *inp.Mesh, gfu *fem.GridFunc, J float64) {
			fn := io.Sf("opt_%04d", it)
			if err := out.WriteVtu(dirout, fn, msh, []out.Field{{Name: "u", Gf: gfu}}); err != nil {
				chk.Panic("cannot write results:\n%v", err)
			}
		}
	}
	res, err := drv.Run()
	if err != nil && !errors.Is(err, opt.ErrDegenerateLineSearch) {
		chk.Panic("optimization failed:\n%v", err)
	}
	log := logger.Logger()
	if errors.Is(err, opt.ErrDegenerateLineSearch) {
		log.Warn().Msg("line search collapsed; reporting last completed iteration")
	}
	log.Info().Int("iterations", res.Iterations).Float64("J", res.J).Msg("optimization done")
	if saveVtu {
		io.Pf("results written to %s\n", dirout)
	}
}
