// Package sheet implements the cell dependency graph and its cache
// invalidation engine.
//
// # Overview
//
// A [Sheet] owns a sparse grid of [Cell] values. Each cell is empty,
// holds text or holds a formula. Formula cells keep outgoing edges to the
// cells they read, and every edge is mirrored by an incoming edge on its
// target, so a change can be pushed to exactly the cells that depend on
// it.
//
//	s := sheet.New()
//	_ = s.SetCell(position.MustParse("A1"), "1")
//	_ = s.SetCell(position.MustParse("B1"), "=A1*2")
//	c, _ := s.Cell(position.MustParse("B1"))
//	fmt.Println(c.Value()) // 2
//
// # Edits
//
// [Sheet.SetCell] parses formula text, creates empty placeholders for
// referenced positions nobody has set, installs the new edges and then
// checks the graph. An edit that would close a cycle fails with
// CIRCULAR_DEPENDENCY; one that would make a dependency chain longer than
// the configured limit fails with DEPENDENCY_TOO_DEEP. Either way the
// edges and placeholders are rolled back and the sheet is left exactly as
// it was.
//
// # Caching
//
// Formula values are computed on first read and cached. Any accepted edit
// discards the cache of the edited cell and of everything that
// transitively depends on it; nothing is recomputed until read again.
//
// # Concurrency
//
// Sheets are not safe for concurrent use. Reads mutate caches, so even
// readers must hold an exclusive lock when a sheet is shared.
package sheet
