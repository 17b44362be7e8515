package main

import (
	"io"
	"strings"

	"github.com/Dosada05/tournament-bracket/brackets"
)

// writeTree draws the bracket sideways with the final at the left margin.
// A node's right subtree is drawn above it and its left subtree below.
// Undecided nodes print as "?".
func writeTree(w io.Writer, m *brackets.Mapping) error {
	if m == nil {
		_, err := io.WriteString(w, "no bracket\n")
		return err
	}
	var b strings.Builder
	drawNode(&b, m, "", true)
	_, err := io.WriteString(w, b.String())
	return err
}

func drawNode(b *strings.Builder, m *brackets.Mapping, prefix string, lower bool) {
	if m.Right != nil {
		next := prefix + "    "
		if lower {
			next = prefix + "|   "
		}
		drawNode(b, m.Right, next, false)
	}

	b.WriteString(prefix)
	if lower {
		b.WriteString("`-- ")
	} else {
		b.WriteString(",-- ")
	}
	if m.Value != nil {
		b.WriteString(*m.Value)
	} else {
		b.WriteString("?")
	}
	b.WriteByte('\n')

	if m.Left != nil {
		next := prefix + "|   "
		if lower {
			next = prefix + "    "
		}
		drawNode(b, m.Left, next, true)
	}
}
