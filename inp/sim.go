// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	fun "github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// Data holds global simulation data
type Data struct {
	Sim   string `json:"sim" yaml:"sim"`     // simulation name
	Mesh  string `json:"mesh" yaml:"mesh"`   // mesh filename (relative to sim file)
	Order int    `json:"order" yaml:"order"` // polynomial order of the displacement space
}

// FuncData holds the definition of one named scalar function of (t, x)
type FuncData struct {
	Name string             `json:"name" yaml:"name"` // name to refer to this function
	Type string             `json:"type" yaml:"type"` // type; e.g. "cte"
	Prms map[string]float64 `json:"prms" yaml:"prms"` // parameters
}

// BeamData holds the parameters of the elasticity problem
type BeamData struct {
	Lam      float64   `json:"lam" yaml:"lam"`           // Lamé λ
	Mu       float64   `json:"mu" yaml:"mu"`             // Lamé μ (shear modulus)
	Fixed    string    `json:"fixed" yaml:"fixed"`       // clamped regions; e.g. "left"
	Loaded   string    `json:"loaded" yaml:"loaded"`     // traction regions; e.g. "right|top"
	Traction []float64 `json:"traction" yaml:"traction"` // traction direction vector
	LoadFcn  string    `json:"loadfcn" yaml:"loadfcn"`   // name of traction magnitude function
	Body     []float64 `json:"body" yaml:"body"`         // body force vector (optional)
	BodyFcn  string    `json:"bodyfcn" yaml:"bodyfcn"`   // name of body force magnitude function (optional)
}

// LinSolData holds the linear solver parameters
type LinSolData struct {
	Name  string  `json:"name" yaml:"name"`   // "cg" or "chol"
	Tol   float64 `json:"tol" yaml:"tol"`     // relative residual tolerance (cg)
	MaxIt int     `json:"maxit" yaml:"maxit"` // iteration cap (cg)
}

// OptData holds the shape optimization parameters
type OptData struct {
	MaxIt      int     `json:"maxit" yaml:"maxit"`           // outer iteration cap
	Step       float64 `json:"step" yaml:"step"`             // initial descent step size
	LineSearch bool    `json:"linesearch" yaml:"linesearch"` // enable step-halving line search
	Free       string  `json:"free" yaml:"free"`             // regions whose geometry may move
}

// Simulation holds one simulation: problem data, named functions and solver
// parameters, read together from one .sim file
type Simulation struct {
	Data      Data        `json:"data" yaml:"data"`
	Functions []*FuncData `json:"functions" yaml:"functions"`
	Beam      *BeamData   `json:"beam" yaml:"beam"`
	LinSol    LinSolData  `json:"linsol" yaml:"linsol"`
	Opt       *OptData    `json:"opt" yaml:"opt"`

	// derived
	DirOut string `json:"-" yaml:"-"` // directory holding the sim file
}

// ReadSim reads a simulation file (.sim in JSON, or .yaml/.yml)
func ReadSim(path string) (*Simulation, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read sim file %q: %w", path, err)
	}
	var o Simulation
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &o)
	default:
		err = json.Unmarshal(b, &o)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot decode sim file %q: %w", path, err)
	}
	o.DirOut = filepath.Dir(path)
	o.SetDefaults()
	if err = o.Check(); err != nil {
		return nil, err
	}
	return &o, nil
}

// SetDefaults fills missing solver and optimization parameters
func (o *Simulation) SetDefaults() {
	if o.Data.Order == 0 {
		o.Data.Order = 1
	}
	if o.LinSol.Name == "" {
		o.LinSol.Name = "cg"
	}
	if o.LinSol.Tol == 0 {
		o.LinSol.Tol = 1e-10
	}
	if o.LinSol.MaxIt == 0 {
		o.LinSol.MaxIt = 10000
	}
	if o.Opt != nil {
		if o.Opt.MaxIt == 0 {
			o.Opt.MaxIt = 100
		}
		if o.Opt.Step == 0 {
			o.Opt.Step = 0.1
		}
	}
}

// Check validates the simulation data
func (o *Simulation) Check() error {
	if o.Beam == nil {
		return fmt.Errorf("sim %q: missing beam data", o.Data.Sim)
	}
	if o.LinSol.Name != "cg" && o.LinSol.Name != "chol" {
		return fmt.Errorf("sim %q: unknown linear solver %q", o.Data.Sim, o.LinSol.Name)
	}
	if o.Beam.Mu <= 0 || 3*o.Beam.Lam+2*o.Beam.Mu <= 0 {
		return fmt.Errorf("sim %q: invalid material: mu=%g lam=%g", o.Data.Sim, o.Beam.Mu, o.Beam.Lam)
	}
	if o.Beam.Fixed == "" {
		return fmt.Errorf("sim %q: beam needs at least one fixed region", o.Data.Sim)
	}
	if o.Beam.Loaded != "" && len(o.Beam.Traction) == 0 {
		return fmt.Errorf("sim %q: loaded region %q needs a traction vector", o.Data.Sim, o.Beam.Loaded)
	}
	if o.Beam.LoadFcn != "" {
		if _, err := o.GetFunction(o.Beam.LoadFcn); err != nil {
			return err
		}
	}
	if o.Beam.BodyFcn != "" {
		if len(o.Beam.Body) == 0 {
			return fmt.Errorf("sim %q: body force function %q needs a body vector", o.Data.Sim, o.Beam.BodyFcn)
		}
		if _, err := o.GetFunction(o.Beam.BodyFcn); err != nil {
			return err
		}
	}
	return nil
}

// MeshPath returns the mesh filename resolved relative to the sim file
func (o *Simulation) MeshPath() string {
	if filepath.IsAbs(o.Data.Mesh) {
		return o.Data.Mesh
	}
	return filepath.Join(o.DirOut, o.Data.Mesh)
}

// GetFunction builds the named scalar function of (t, x)
func (o *Simulation) GetFunction(name string) (fun.T, error) {
	for _, fd := range o.Functions {
		if fd.Name != name {
			continue
		}
		switch fd.Type {
		case "cte":
			return &fun.Cte{C: fd.Prms["c"]}, nil
		default:
			return nil, fmt.Errorf("function %q has unknown type %q", name, fd.Type)
		}
	}
	return nil, fmt.Errorf("cannot find function %q", name)
}
