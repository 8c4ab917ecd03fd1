package sheet

import (
	"maps"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/formula"
	"github.com/matzehuels/cellgraph/pkg/position"
)

// edgeTx records what swapDependencies replaced so rollback can restore it.
type edgeTx struct {
	cell         *Cell
	old          posSet
	placeholders []position.Position
}

// link adds the edge from -> to on both sides.
func (s *Sheet) link(from, to *Cell) {
	from.deps[to.pos] = struct{}{}
	to.dependents[from.pos] = struct{}{}
}

// dropDependencies removes every outgoing edge of c together with its
// mirror. Incoming edges are kept.
func (s *Sheet) dropDependencies(c *Cell) {
	for p := range c.deps {
		if target := s.cellAt(p); target != nil {
			delete(target.dependents, c.pos)
		}
	}
	c.deps = posSet{}
}

// swapDependencies tentatively replaces c's outgoing edges with refs,
// creating empty placeholders for referenced positions nothing occupies.
func (s *Sheet) swapDependencies(c *Cell, refs []position.Position) edgeTx {
	tx := edgeTx{cell: c, old: maps.Clone(c.deps)}
	s.dropDependencies(c)
	for _, p := range refs {
		target := s.cellAt(p)
		if target == nil {
			target = s.materialize(p)
			tx.placeholders = append(tx.placeholders, p)
			s.logger.Debug("placeholder created", "cell", p, "for", c.pos)
		}
		s.link(c, target)
	}
	return tx
}

// rollback undoes swapDependencies, restoring both sides of every edge and
// releasing the placeholders the attempt created.
func (s *Sheet) rollback(tx edgeTx) {
	c := tx.cell
	s.dropDependencies(c)
	for p := range tx.old {
		s.link(c, s.cellAt(p))
	}
	for _, p := range tx.placeholders {
		if ph := s.cellAt(p); ph != nil && ph.IsEmpty() && len(ph.dependents) == 0 {
			s.release(p)
		}
	}
}

// checkDependencies runs after swapDependencies. It rejects the new edges
// of root when they close a cycle or, with a chain limit set, when the
// longest dependency chain through root grows past it.
func (s *Sheet) checkDependencies(root *Cell) error {
	down, err := s.longestChain(root, func(c *Cell) posSet { return c.deps }, s.maxChainDepth)
	if err != nil {
		return err
	}
	if s.maxChainDepth <= 0 {
		return nil
	}
	// The graph is acyclic at this point, so walking dependents cannot
	// revisit the active path.
	up, err := s.longestChain(root, func(c *Cell) posSet { return c.dependents }, s.maxChainDepth-down+1)
	if err != nil {
		return err
	}
	if chain := down + up - 1; chain > s.maxChainDepth {
		return cgerrors.New(cgerrors.ErrCodeDependencyTooDeep,
			"%s: dependency chain of %d cells exceeds limit %d", root.pos, chain, s.maxChainDepth)
	}
	return nil
}

// walkFrame is one entry of the explicit DFS stack.
type walkFrame struct {
	cell     *Cell
	children []position.Position
	next     int
	height   int
}

// longestChain walks the edges returned by next depth-first from root and
// returns the number of cells on the longest path. A cell met again while
// it is still on the active path is a cycle. Fully explored cells are
// memoised, so shared subgraphs are visited once. limit <= 0 disables the
// depth check.
func (s *Sheet) longestChain(root *Cell, next func(*Cell) posSet, limit int) (int, error) {
	onPath := posSet{}
	done := make(map[position.Position]int)

	push := func(stack []walkFrame, c *Cell) []walkFrame {
		onPath[c.pos] = struct{}{}
		return append(stack, walkFrame{cell: c, children: next(c).sorted()})
	}
	stack := push(nil, root)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.children) {
			p := top.children[top.next]
			top.next++
			if _, ok := onPath[p]; ok {
				return 0, cgerrors.New(cgerrors.ErrCodeCircularDependency,
					"%s: circular dependency through %s", root.pos, p)
			}
			h, seen := done[p]
			if limit > 0 && len(stack)+max(h, 1) > limit {
				return 0, cgerrors.New(cgerrors.ErrCodeDependencyTooDeep,
					"%s: dependency chain exceeds limit %d", root.pos, s.maxChainDepth)
			}
			if seen {
				top.height = max(top.height, h)
				continue
			}
			stack = push(stack, s.cellAt(p))
			continue
		}

		h := top.height + 1
		done[top.cell.pos] = h
		delete(onPath, top.cell.pos)
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			parent := &stack[len(stack)-1]
			parent.height = max(parent.height, h)
		}
	}
	return done[root.pos], nil
}

// invalidate discards the cached value of c and of every cell that
// transitively depends on it.
func (s *Sheet) invalidate(c *Cell) {
	visited := posSet{c.pos: {}}
	stack := []*Cell{c}
	dropped := 0

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.cached {
			cur.cached = false
			cur.cache = formula.Value{}
			dropped++
		}
		for p := range cur.dependents {
			if _, ok := visited[p]; ok {
				continue
			}
			visited[p] = struct{}{}
			if dep := s.cellAt(p); dep != nil {
				stack = append(stack, dep)
			}
		}
	}
	s.hooks.OnInvalidate(dropped)
}
