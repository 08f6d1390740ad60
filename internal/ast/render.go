package ast

import (
	"fmt"
	"strings"
)

// RenderText produces an indented, human-centric view of a tree. Tagged
// tuples print their tag followed by one child per line; leaves print inline.
func RenderText(node Node, indent int) string {
	var sb strings.Builder
	renderText(&sb, node, indent)
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderText(sb *strings.Builder, node Node, indent int) {
	sp := strings.Repeat("  ", indent)

	t, ok := node.(Tuple)
	if !ok {
		sb.WriteString(sp + Format(node) + "\n")
		return
	}

	if len(t) == 0 {
		sb.WriteString(sp + "()\n")
		return
	}

	tag, tagged := t.Tag()
	if !tagged {
		// untagged tuples (sequence results, captured suffixes) list every element
		sb.WriteString(sp + "(\n")
		for _, child := range t {
			renderText(sb, child, indent+1)
		}
		sb.WriteString(sp + ")\n")
		return
	}

	// a node whose children are all leaves stays on one line
	if allLeaves(t.Children()) {
		parts := make([]string, 0, len(t))
		parts = append(parts, tag)
		for _, child := range t.Children() {
			parts = append(parts, Format(child))
		}
		sb.WriteString(sp + strings.Join(parts, " ") + "\n")
		return
	}

	sb.WriteString(fmt.Sprintf("%s%s\n", sp, tag))
	for _, child := range t.Children() {
		renderText(sb, child, indent+1)
	}
}

func allLeaves(children Tuple) bool {
	for _, c := range children {
		if _, ok := c.(Tuple); ok {
			return false
		}
	}
	return true
}
