// Package token defines the source-location type shared by every AST node
// and every diagnostic. The lexer/parser that actually produce tokens live
// outside this repository; this package only carries what the checker core
// needs to report a position back to a caller.
package token

import "fmt"

// Position is a 1-based line/column pair. The zero value means "no known
// location" and is rendered as an empty string.
type Position struct {
	Line   int
	Column int
}

// None is the zero Position, used by synthetic nodes that have no source
// origin (e.g. built-in constructors).
var None = Position{}

func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

func (p Position) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
