package rowan

import (
	"strconv"
	"strings"
)

// Number is a numeric scalar. Integers and floats share one type; equality
// compares across the two numerically. Serialization emits the canonical
// form, so lossy spellings (trailing zeroes, bare leading dot) normalize on
// the first save and are a fixed point thereafter.
type Number struct {
	fill  Fill
	IsInt bool
	Int   int64
	Float float64
}

// NewInt builds an integer number value.
func NewInt(v int64) *Number {
	return &Number{IsInt: true, Int: v}
}

// NewFloat builds a floating-point number value.
func NewFloat(v float64) *Number {
	return &Number{Float: v}
}

func (n *Number) Fill() *Fill { return &n.fill }

func (n *Number) Equals(other Value) bool {
	o, ok := other.(*Number)
	if !ok {
		return false
	}
	if n.IsInt && o.IsInt {
		return n.Int == o.Int
	}
	return n.asFloat() == o.asFloat()
}

func (n *Number) asFloat() float64 {
	if n.IsInt {
		return float64(n.Int)
	}
	return n.Float
}

func (n *Number) Clone() Value {
	c := *n
	return &c
}

// Canonical returns the normalized spelling of the number.
func (n *Number) Canonical() string {
	if n.IsInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return strconv.FormatFloat(n.Float, 'g', -1, 64)
}

func (n *Number) write(sb *strings.Builder) {
	sb.WriteString(n.Canonical())
}

func (n *Number) recoverFill(other Value) {
	if o, ok := other.(*Number); ok {
		n.fill.Recover(o.fill)
	}
}

func parseNumber(fill Fill, s span) (Value, Fill, span, error) {
	rest := s.rest()
	i := 0
	if i < len(rest) && (rest[i] == '-' || rest[i] == '+') {
		i++
	}
	digits := 0
	for i < len(rest) && isDigit(rest[i]) {
		i++
		digits++
	}
	isFloat := false
	if i < len(rest) && rest[i] == '.' {
		isFloat = true
		i++
		for i < len(rest) && isDigit(rest[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return nil, fill, s, nil
	}
	if i < len(rest) && (rest[i] == 'e' || rest[i] == 'E') {
		j := i + 1
		if j < len(rest) && (rest[j] == '-' || rest[j] == '+') {
			j++
		}
		expDigits := 0
		for j < len(rest) && isDigit(rest[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			isFloat = true
			i = j
		}
	}
	raw := rest[:i]
	rem := s.advance(i)
	if !isFloat {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			next, rem2 := parseFill(rem)
			return &Number{fill: fill, IsInt: true, Int: v}, next, rem2, nil
		}
		// Out of int64 range; fall through to float.
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fill, s, parseErrorf(s, "malformed number %q", raw)
	}
	next, rem2 := parseFill(rem)
	return &Number{fill: fill, Float: v}, next, rem2, nil
}

// --- Color ---

// Color is a hex color scalar, written #RRGGBB or #RRGGBBAA. The canonical
// spelling is uppercase.
type Color struct {
	fill Fill
	Hex  string // uppercase digits, no leading '#'
}

func (c *Color) Fill() *Fill { return &c.fill }

func (c *Color) Equals(other Value) bool {
	o, ok := other.(*Color)
	return ok && o.Hex == c.Hex
}

func (c *Color) Clone() Value {
	cc := *c
	return &cc
}

func (c *Color) write(sb *strings.Builder) {
	sb.WriteByte('#')
	sb.WriteString(c.Hex)
}

func (c *Color) recoverFill(other Value) {
	if o, ok := other.(*Color); ok {
		c.fill.Recover(o.fill)
	}
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func parseColor(fill Fill, s span) (Value, Fill, span, error) {
	rest := s.rest()
	if len(rest) == 0 || rest[0] != '#' {
		return nil, fill, s, nil
	}
	i := 1
	for i < len(rest) && isHexDigit(rest[i]) {
		i++
	}
	n := i - 1
	if n != 6 && n != 8 {
		// Section keywords also start with '#'; only 6/8 hex digits is a color.
		return nil, fill, s, nil
	}
	hex := strings.ToUpper(rest[1:i])
	next, rem := parseFill(s.advance(i))
	return &Color{fill: fill, Hex: hex}, next, rem, nil
}
