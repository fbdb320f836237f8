package tree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint takes an io.Writer and the root node of a tree and writes
// a human-readable rendering of the tree to the writer. Decision
// nodes render their question and then their true and false
// branches with increasing indentation; leaves render their
// label-count mapping. The traversal is depth-first and read-only.
func Fprint(w io.Writer, n Node) error {
	return fprint(w, n, "")
}

// Sprint returns the rendering Fprint would write for the given
// node.
func Sprint(n Node) string {
	var sb strings.Builder
	fprint(&sb, n, "")
	return sb.String()
}

func fprint(w io.Writer, n Node, indent string) error {
	switch n := n.(type) {
	case *Leaf:
		_, err := fmt.Fprintf(w, "%spredict %s\n", indent, n)
		return err
	case *Decision:
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, n.Question); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s--> true:\n", indent); err != nil {
			return err
		}
		if err := fprint(w, n.True, indent+"  "); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s--> false:\n", indent); err != nil {
			return err
		}
		return fprint(w, n.False, indent+"  ")
	default:
		return fmt.Errorf("unknown node type %T", n)
	}
}
