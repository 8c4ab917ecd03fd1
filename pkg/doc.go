// Package pkg provides the core libraries for cellgraph.
//
// # Overview
//
// cellgraph is a spreadsheet engine: cells hold text or formulas, formulas
// read other cells, and the sheet keeps the resulting dependency graph
// acyclic while caching formula values. The pkg directory is organized as:
//
//  1. [position] - A1 cell coordinates
//  2. [formula] - Values, the formula parser and the evaluator
//  3. [sheet] - Cells, dependency edges, cycle checks and invalidation
//  4. [script], [render], [server] - Batch edits, graph export and the HTTP API
//  5. [cache], [observability], [errors], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through cellgraph:
//
//	edit script / REPL / HTTP request
//	         ↓
//	    [sheet] package (Set, cycle check, invalidate dependents)
//	         ↓
//	    [formula] package (evaluate on read, cached until invalidated)
//	         ↓
//	    table, TSV, JSON or DOT/SVG/PNG output
//
// # Quick Start
//
//	s := sheet.New()
//	_ = s.SetCell(position.MustParse("A1"), "2")
//	_ = s.SetCell(position.MustParse("B1"), "=A1*3")
//	v, _ := s.CellValue(position.MustParse("B1"))
//	fmt.Println(v) // 6
//
// [position]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/position
// [formula]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/formula
// [sheet]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/sheet
// [script]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/script
// [render]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cellgraph/pkg/buildinfo
package pkg
