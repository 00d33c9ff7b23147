// Package display formats text for line-oriented terminals.
package display

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// WrapIndent wraps text so that it fits DefaultWidth once indented by n.
func WrapIndent(text string, n uint) string {
	return indent.String(wordwrap.String(text, DefaultWidth-int(n)), n)
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Table lays rows out in left-aligned columns separated by two spaces.
func Table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], len(cell))
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(padding.String(cell, uint(widths[i])))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
