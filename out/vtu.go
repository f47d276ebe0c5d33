// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out exports meshes and nodal fields to VTK unstructured-grid
// files (.vtu) for visualization in Paraview
package out

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/io"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

// vtkCodes maps cell geometry types to VTK cell type codes
var vtkCodes = map[string]int{
	"lin2": 3,
	"lin3": 21,
	"tri3": 5,
	"tri6": 22,
	"qua4": 9,
	"qua9": 28,
	"tet4": 10,
	"hex8": 12,
}

// Field is one named nodal field to export. Arity 1 becomes a scalar
// point-data array; arity 2 or 3 becomes a vector array padded to three
// components.
type Field struct {
	Name string
	Gf   *fem.GridFunc
}

// WriteVtu writes the mesh and the given nodal fields to dirout/fnkey.vtu,
// creating dirout if needed
func WriteVtu(dirout, fnkey string, msh *inp.Mesh, fields []Field) error {
	geo := new(bytes.Buffer)
	if err := topology(geo, msh); err != nil {
		return err
	}
	dat := new(bytes.Buffer)
	if err := pointData(dat, msh, fields); err != nil {
		return err
	}

	var buf bytes.Buffer
	io.Ff(&buf, "<?xml version=\"1.0\"?>\n<VTKFile type=\"UnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n<UnstructuredGrid>\n")
	io.Ff(&buf, "<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", len(msh.Verts), len(msh.Cells))
	buf.Write(geo.Bytes())
	buf.Write(dat.Bytes())
	io.Ff(&buf, "</Piece>\n</UnstructuredGrid>\n</VTKFile>\n")

	if err := os.MkdirAll(dirout, 0755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", dirout, err)
	}
	fn := filepath.Join(dirout, fnkey+".vtu")
	if err := os.WriteFile(fn, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write %q: %w", fn, err)
	}
	return nil
}

// topology writes points, connectivities, offsets and cell types
func topology(buf *bytes.Buffer, msh *inp.Mesh) error {

	// coordinates, padded to 3 components
	io.Ff(buf, "<Points>\n<DataArray type=\"Float64\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, v := range msh.Verts {
		var c [3]float64
		copy(c[:], v.C)
		io.Ff(buf, "%23.15e %23.15e %23.15e ", c[0], c[1], c[2])
	}
	io.Ff(buf, "\n</DataArray>\n</Points>\n")

	// connectivities
	io.Ff(buf, "<Cells>\n<DataArray type=\"Int32\" Name=\"connectivity\" format=\"ascii\">\n")
	for _, c := range msh.Cells {
		for _, vid := range c.Verts {
			io.Ff(buf, "%d ", vid)
		}
	}

	// offsets
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"offsets\" format=\"ascii\">\n")
	var offset int
	for _, c := range msh.Cells {
		offset += len(c.Verts)
		io.Ff(buf, "%d ", offset)
	}

	// cell types
	io.Ff(buf, "\n</DataArray>\n<DataArray type=\"UInt8\" Name=\"types\" format=\"ascii\">\n")
	for _, c := range msh.Cells {
		code, ok := vtkCodes[c.Type]
		if !ok {
			return fmt.Errorf("cannot handle cell type %q", c.Type)
		}
		io.Ff(buf, "%d ", code)
	}
	io.Ff(buf, "\n</DataArray>\n</Cells>\n")
	return nil
}

// pointData writes vertex ids and the nodal fields
func pointData(buf *bytes.Buffer, msh *inp.Mesh, fields []Field) error {
	io.Ff(buf, "<PointData>\n")

	io.Ff(buf, "<DataArray type=\"Int32\" Name=\"nid\" NumberOfComponents=\"1\" format=\"ascii\">\n")
	for _, v := range msh.Verts {
		io.Ff(buf, "%d ", v.Id)
	}
	io.Ff(buf, "\n</DataArray>\n")

	for _, f := range fields {
		arity := f.Gf.Spc.Arity
		if arity != 1 && arity != msh.Ndim {
			return fmt.Errorf("field %q has arity %d; want 1 or %d", f.Name, arity, msh.Ndim)
		}
		ncomp := arity
		if ncomp > 1 {
			ncomp = 3
		}
		io.Ff(buf, "<DataArray type=\"Float64\" Name=%q NumberOfComponents=\"%d\" format=\"ascii\">\n", f.Name, ncomp)
		for _, v := range msh.Verts {
			vals := f.Gf.VertVals(v.Id)
			if arity == 1 {
				io.Ff(buf, "%23.15e ", vals[0])
				continue
			}
			var c [3]float64
			copy(c[:], vals)
			io.Ff(buf, "%23.15e %23.15e %23.15e ", c[0], c[1], c[2])
		}
		io.Ff(buf, "\n</DataArray>\n")
	}
	io.Ff(buf, "</PointData>\n")
	return nil
}
