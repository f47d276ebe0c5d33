// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the input data structures: meshes with named
// boundary regions and simulation (.sim) parameter files. Both JSON and
// YAML encodings are accepted.
package inp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/shp"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// ErrUnknownRegion indicates that a named boundary region is absent from
// the mesh
var ErrUnknownRegion = errors.New("unknown boundary region")

// Vert holds vertex data
type Vert struct {
	Id int       `json:"id" yaml:"id"` // id
	C  []float64 `json:"c" yaml:"c"`   // coordinates (size == 1, 2 or 3)
}

// Cell holds cell data
type Cell struct {
	Id    int    `json:"id" yaml:"id"`       // id
	Type  string `json:"type" yaml:"type"`   // geometry type; e.g. "qua4"
	Verts []int  `json:"verts" yaml:"verts"` // vertices
}

// Facet refers to one face of one cell; boundary regions are sets of facets
type Facet struct {
	Cell int `json:"cell" yaml:"cell"` // cell id
	Face int `json:"face" yaml:"face"` // local face index within cell
}

// Mesh holds a mesh for FE analyses. Meshes are built by an external mesher
// (or by the generators in this package) and are immutable for the duration
// of one solve; Deformed produces a displaced copy with shared topology.
type Mesh struct {

	// input
	Verts   []*Vert            `json:"verts" yaml:"verts"`     // vertices
	Cells   []*Cell            `json:"cells" yaml:"cells"`     // cells
	Regions map[string][]Facet `json:"regions" yaml:"regions"` // named boundary regions

	// derived
	Ndim       int     `json:"-" yaml:"-"` // space dimension
	Xmin, Xmax float64 `json:"-" yaml:"-"` // x-coordinate limits
	Ymin, Ymax float64 `json:"-" yaml:"-"` // y-coordinate limits
	Zmin, Zmax float64 `json:"-" yaml:"-"` // z-coordinate limits

	// derived: maps
	regionVerts map[string][]int // region name => unique vertices on region facets
}

// ReadMesh reads a mesh file (.json, .msh or .yaml/.yml) for FE analyses
func ReadMesh(path string) (*Mesh, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read mesh file %q: %w", path, err)
	}
	var o Mesh
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &o)
	default:
		err = json.Unmarshal(b, &o)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot decode mesh file %q: %w", path, err)
	}
	if err = o.Init(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Init checks the mesh and computes derived data. It must be called after
// the Verts/Cells/Regions fields are set; ReadMesh and the generators call
// it automatically.
func (o *Mesh) Init() error {

	// check vertices
	if len(o.Verts) < 2 {
		return fmt.Errorf("mesh must have at least 2 vertices")
	}
	o.Ndim = len(o.Verts[0].C)
	if o.Ndim < 1 || o.Ndim > 3 {
		return fmt.Errorf("invalid space dimension = %d", o.Ndim)
	}
	for i, v := range o.Verts {
		if v.Id != i {
			return fmt.Errorf("vertex ids must be sequential: got %d at position %d", v.Id, i)
		}
		if len(v.C) != o.Ndim {
			return fmt.Errorf("vertex %d has %d coordinates; mesh is %dD", v.Id, len(v.C), o.Ndim)
		}
	}

	// limits
	o.Xmin, o.Xmax = o.Verts[0].C[0], o.Verts[0].C[0]
	if o.Ndim > 1 {
		o.Ymin, o.Ymax = o.Verts[0].C[1], o.Verts[0].C[1]
	}
	if o.Ndim > 2 {
		o.Zmin, o.Zmax = o.Verts[0].C[2], o.Verts[0].C[2]
	}
	for _, v := range o.Verts {
		o.Xmin, o.Xmax = utl.Min(o.Xmin, v.C[0]), utl.Max(o.Xmax, v.C[0])
		if o.Ndim > 1 {
			o.Ymin, o.Ymax = utl.Min(o.Ymin, v.C[1]), utl.Max(o.Ymax, v.C[1])
		}
		if o.Ndim > 2 {
			o.Zmin, o.Zmax = utl.Min(o.Zmin, v.C[2]), utl.Max(o.Zmax, v.C[2])
		}
	}

	// check cells
	if len(o.Cells) < 1 {
		return fmt.Errorf("mesh must have at least 1 cell")
	}
	for i, c := range o.Cells {
		if c.Id != i {
			return fmt.Errorf("cell ids must be sequential: got %d at position %d", c.Id, i)
		}
		nverts := shp.GetNverts(c.Type)
		if nverts < 0 {
			return fmt.Errorf("cell %d has unknown type %q", c.Id, c.Type)
		}
		if len(c.Verts) != nverts {
			return fmt.Errorf("cell %d (%s) must have %d vertices; got %d", c.Id, c.Type, nverts, len(c.Verts))
		}
		for _, vid := range c.Verts {
			if vid < 0 || vid >= len(o.Verts) {
				return fmt.Errorf("cell %d references invalid vertex %d", c.Id, vid)
			}
		}
	}

	// check regions and collect vertices on facets
	o.regionVerts = make(map[string][]int)
	for name, facets := range o.Regions {
		var verts []int
		for _, f := range facets {
			if f.Cell < 0 || f.Cell >= len(o.Cells) {
				return fmt.Errorf("region %q references invalid cell %d", name, f.Cell)
			}
			cell := o.Cells[f.Cell]
			lverts := shp.GetFaceLocalVerts(cell.Type, f.Face)
			if lverts == nil {
				return fmt.Errorf("region %q references invalid face %d of cell %d (%s)", name, f.Face, f.Cell, cell.Type)
			}
			for _, l := range lverts {
				verts = append(verts, cell.Verts[l])
			}
		}
		o.regionVerts[name] = utl.IntUnique(verts)
	}
	return nil
}

// HasRegion tells whether a named boundary region exists
func (o *Mesh) HasRegion(name string) bool {
	_, ok := o.Regions[name]
	return ok
}

// RegionFacets returns the facets of a named boundary region.
// Returns an error wrapping ErrUnknownRegion if the name cannot be resolved.
func (o *Mesh) RegionFacets(name string) ([]Facet, error) {
	facets, ok := o.Regions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return facets, nil
}

// RegionVerts returns the unique vertices touching a named boundary region
func (o *Mesh) RegionVerts(name string) ([]int, error) {
	verts, ok := o.regionVerts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return verts, nil
}

// SplitRegions splits a pipe-delimited alternation of region names;
// e.g. "top|bottom|left" => ["top", "bottom", "left"]
func SplitRegions(spec string) (names []string) {
	for _, s := range strings.Split(spec, "|") {
		s = strings.TrimSpace(s)
		if s != "" {
			names = append(names, s)
		}
	}
	return
}

// CellCoords returns the coordinates matrix x[ndim][nverts] of a cell
func (o *Mesh) CellCoords(cellId int) [][]float64 {
	cell := o.Cells[cellId]
	x := make([][]float64, o.Ndim)
	for i := 0; i < o.Ndim; i++ {
		x[i] = make([]float64, len(cell.Verts))
		for m, vid := range cell.Verts {
			x[i][m] = o.Verts[vid].C[i]
		}
	}
	return x
}

// String returns a JSON representation of *Vert
func (o *Vert) String() string {
	b, _ := json.Marshal(o)
	return string(b)
}

// String returns a JSON representation of *Cell
func (o *Cell) String() string {
	b, _ := json.Marshal(o)
	return string(b)
}
