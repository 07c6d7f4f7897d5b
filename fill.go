package rowan

import "strings"

// Fill is preserved whitespace and comment text attached to a value node.
// It is captured verbatim during parsing and re-emitted verbatim during
// serialization, so unedited documents round-trip byte-identically.
// Fill never participates in value equality.
type Fill struct {
	Text string
}

func newFill(text string) Fill {
	return Fill{Text: text}
}

// parseFill consumes whitespace (spaces, newlines), ignored separators
// (commas, semicolons), line comments (// to end of line), and block comments
// (/* to */). It cannot fail; the fill may be empty.
func parseFill(s span) (Fill, span) {
	start := s.pos
	for !s.empty() {
		c := s.peek()
		switch {
		case c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == ',' || c == ';':
			s = s.advance(1)
		case strings.HasPrefix(s.rest(), "//"):
			if i := strings.IndexByte(s.rest(), '\n'); i >= 0 {
				s = s.advance(i + 1)
			} else {
				s = s.advance(s.len())
			}
		case strings.HasPrefix(s.rest(), "/*"):
			if i := strings.Index(s.rest()[2:], "*/"); i >= 0 {
				s = s.advance(2 + i + 2)
			} else {
				s = s.advance(s.len())
			}
		default:
			return newFill(s.src[start:s.pos]), s
		}
	}
	return newFill(s.src[start:s.pos]), s
}

// Len returns the fill length in bytes.
func (f Fill) Len() int {
	return len(f.Text)
}

// EndsWithNewline reports whether the fill ends on a fresh line.
func (f Fill) EndsWithNewline() bool {
	return strings.HasSuffix(f.Text, "\n")
}

// IndentAfterNewline returns the number of trailing spaces following the last
// newline in the fill. The second result is false if the fill does not end in
// a newline-then-spaces run, meaning the next token is not at the start of a
// line. Used to calibrate scene layer depth.
func (f Fill) IndentAfterNewline() (int, bool) {
	trimmed := strings.TrimRight(f.Text, " ")
	if !strings.HasSuffix(trimmed, "\n") {
		return 0, false
	}
	return len(f.Text) - len(trimmed), true
}

// Recover copies the other fill if this fill is empty. Used after editing a
// document in memory so programmatically built values pick up the formatting
// of the values they replaced.
func (f *Fill) Recover(other Fill) {
	if f.Len() == 0 {
		*f = other
	}
}

// write emits the fill, or the fallback when the fill is empty.
func (f Fill) write(sb *strings.Builder, fallback string) {
	if f.Len() == 0 {
		sb.WriteString(fallback)
		return
	}
	sb.WriteString(f.Text)
}
