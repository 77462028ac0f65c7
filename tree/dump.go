package tree

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per node, indented by depth, in pre-order. The
// format matches what path queries select on: kind name, text, position.
func Dump(w io.Writer, t *Tree) error {
	type frame struct {
		n     Node
		depth int
	}
	stack := []frame{{n: t.Root()}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", f.depth), f.n); err != nil {
			return err
		}
		for c := f.n.LastChild(); !c.IsNil(); c = c.PreviousSibling() {
			stack = append(stack, frame{n: c, depth: f.depth + 1})
		}
	}
	return nil
}
