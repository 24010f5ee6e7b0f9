package doctree

import (
	"github.com/hangy/AntiXss-sub003/internal/complexity"
)

// Validate checks every structural invariant of the tree: each sibling
// cycle has exactly ChildCount members and returns to the first child, every
// child points back at its parent, the predecessor found by scanning agrees
// with the order of the walk, text nodes have no children, and in-order
// children lie inside their parent's range in ascending position order.
func (d *Document) Validate() error {
	type item struct {
		h          NodeHandle
		outOfOrder bool
	}
	limit := d.NodeCount()
	seen := 0
	stack := []item{{h: RootNode}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen++
		if seen > limit {
			return complexity.Misuse("tree has more reachable nodes than the %d allocated", limit)
		}
		n := d.Node(it.h)
		if n.Begin > n.End && !n.IsOpen() {
			return complexity.Misuse("node %d range [%d, %d) is inverted", it.h, n.Begin, n.End)
		}
		if n.LastChild == NullNode {
			continue
		}
		if n.IsText() {
			return complexity.Misuse("text node %d has children", it.h)
		}
		if d.Node(n.LastChild).Parent != it.h {
			return complexity.Misuse("last child %d of %d has parent %d", n.LastChild, it.h, d.Node(n.LastChild).Parent)
		}

		first := d.Node(n.LastChild).NextSibling
		prev := n.LastChild
		cur := first
		steps := 0
		rangeCheck := !it.outOfOrder && !n.IsOpen()
		var prevEnd = n.Begin
		for {
			steps++
			if steps > limit {
				return complexity.Misuse("sibling list of %d does not cycle", it.h)
			}
			c := d.Node(cur)
			if c.Parent != it.h {
				return complexity.Misuse("child %d of %d has parent %d", cur, it.h, c.Parent)
			}
			if scanned := d.predecessor(it.h, cur); scanned != prev {
				return complexity.Misuse("predecessor of %d is %d by scan, %d by walk", cur, scanned, prev)
			}
			ooo := it.outOfOrder || c.IsOutOfOrder()
			if !ooo {
				if c.Begin < prevEnd {
					return complexity.Misuse("child %d starts at %d before %d", cur, c.Begin, prevEnd)
				}
				if rangeCheck && c.End > n.End {
					return complexity.Misuse("child %d ends at %d after parent end %d", cur, c.End, n.End)
				}
				prevEnd = c.End
			}
			stack = append(stack, item{h: cur, outOfOrder: ooo})
			if cur == n.LastChild {
				break
			}
			prev = cur
			cur = c.NextSibling
		}
		if d.Node(n.LastChild).NextSibling != first {
			return complexity.Misuse("sibling cycle of %d does not return to its first child", it.h)
		}
		if count := d.ChildCount(it.h); count != steps {
			return complexity.Misuse("sibling cycle of %d has %d members, %d children", it.h, steps, count)
		}
	}
	return nil
}
