package rowan

import (
	"fmt"
	"strings"
)

// span is a cursor into a source document. Sub-parsers take a span and return
// the unconsumed remainder, so alternation is just "try, and on no-match hand
// the same span to the next candidate".
type span struct {
	file string
	src  string
	pos  int
}

func newSpan(file, src string) span {
	return span{file: file, src: src}
}

// rest returns the unconsumed source text.
func (s span) rest() string {
	return s.src[s.pos:]
}

func (s span) len() int {
	return len(s.src) - s.pos
}

func (s span) empty() bool {
	return s.pos >= len(s.src)
}

// advance moves the cursor forward n bytes.
func (s span) advance(n int) span {
	s.pos += n
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
	return s
}

// peek returns the next byte, or 0 at end of input.
func (s span) peek() byte {
	if s.empty() {
		return 0
	}
	return s.src[s.pos]
}

// location computes the 1-based line and column of the cursor.
func (s span) location() (line, col int) {
	consumed := s.src[:s.pos]
	line = 1 + strings.Count(consumed, "\n")
	if i := strings.LastIndexByte(consumed, '\n'); i >= 0 {
		col = len(consumed) - i
	} else {
		col = len(consumed) + 1
	}
	return line, col
}

// ParseError is a structural parse failure with source location.
type ParseError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// parseErrorf builds a ParseError at the given span position.
func parseErrorf(s span, format string, args ...any) *ParseError {
	line, col := s.location()
	return &ParseError{File: s.file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}
