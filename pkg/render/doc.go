// Package render draws a sheet's dependency graph.
//
// # Overview
//
// [ToDOT] turns the cells of a sheet into Graphviz DOT source: one node per
// stored cell, one edge per formula reference, pointing from the formula
// cell to the cell it reads.
//
//	dot := render.ToDOT(s, render.Options{Values: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Formula cells are drawn as boxes, text cells as plain ellipses and empty
// placeholders with a dashed outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering; no Graphviz installation is needed.
package render
