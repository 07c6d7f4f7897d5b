package rowan

import "strings"

// Value is one node of a parsed COB document. Every value carries the fill
// (whitespace and comments) that preceded it in source, used only for
// re-serialization; fill never affects Equals.
type Value interface {
	// Fill returns a pointer to the fill preceding the value.
	Fill() *Fill
	// Equals reports value equality. Fill is ignored.
	Equals(other Value) bool
	// Clone returns a deep copy.
	Clone() Value

	write(sb *strings.Builder)
	recoverFill(other Value)
}

// parseValue tries each value form at the cursor. It returns a nil Value when
// no form matches (caller-level alternation), and a non-nil error only when a
// construct begins unambiguously but is malformed.
//
// On a match the returned fill is the fill following the value; on a miss the
// input fill is returned unchanged.
func parseValue(fill Fill, s span) (Value, Fill, span, error) {
	type parser func(Fill, span) (Value, Fill, span, error)
	for _, p := range []parser{
		parseEnum,
		parseColor,
		parseArray,
		parseTuple,
		parseMap,
		parseNumber,
		parseBoolOrNone,
		parseString,
		parseConstantRef,
		parseSpecParam,
		parseSpecInvocation,
		parseInsertion,
	} {
		v, next, rem, err := p(fill, s)
		if err != nil {
			return nil, fill, s, err
		}
		if v != nil {
			return v, next, rem, nil
		}
	}
	return nil, fill, s, nil
}

// ParseValue parses a single standalone value from src, requiring the whole
// input to be consumed (trailing fill aside).
func ParseValue(src string) (Value, error) {
	s := newSpan("<value>", src)
	fill, rem := parseFill(s)
	v, _, rem, err := parseValue(fill, rem)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, parseErrorf(rem, "expected a value")
	}
	if !rem.empty() {
		return nil, parseErrorf(rem, "unexpected trailing input after value")
	}
	return v, nil
}

// FormatValue renders a value without its leading fill.
func FormatValue(v Value) string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

// --- Bool ---

// Bool is a boolean scalar.
type Bool struct {
	fill  Fill
	Value bool
}

func (b *Bool) Fill() *Fill { return &b.fill }

func (b *Bool) Equals(other Value) bool {
	o, ok := other.(*Bool)
	return ok && o.Value == b.Value
}

func (b *Bool) Clone() Value {
	c := *b
	return &c
}

func (b *Bool) write(sb *strings.Builder) {
	if b.Value {
		sb.WriteString("true")
	} else {
		sb.WriteString("false")
	}
}

func (b *Bool) recoverFill(other Value) {
	if o, ok := other.(*Bool); ok {
		b.fill.Recover(o.fill)
	}
}

// --- None ---

// None is the unit scalar, written "none".
type None struct {
	fill Fill
}

func (n *None) Fill() *Fill { return &n.fill }

func (n *None) Equals(other Value) bool {
	_, ok := other.(*None)
	return ok
}

func (n *None) Clone() Value {
	c := *n
	return &c
}

func (n *None) write(sb *strings.Builder) {
	sb.WriteString("none")
}

func (n *None) recoverFill(other Value) {
	if o, ok := other.(*None); ok {
		n.fill.Recover(o.fill)
	}
}

func parseBoolOrNone(fill Fill, s span) (Value, Fill, span, error) {
	word, rem, ok := scanSnake(s)
	if !ok {
		return nil, fill, s, nil
	}
	var v Value
	switch word {
	case "true":
		v = &Bool{fill: fill, Value: true}
	case "false":
		v = &Bool{fill: fill, Value: false}
	case "none":
		v = &None{fill: fill}
	default:
		return nil, fill, s, nil
	}
	next, rem2 := parseFill(rem)
	return v, next, rem2, nil
}

// --- Str ---

// Str is a quoted string. Raw preserves the source escaping between the
// quotes; Value is the decoded text used for equality.
type Str struct {
	fill  Fill
	Raw   string
	Value string
}

// NewStr builds a string value with canonical escaping.
func NewStr(value string) *Str {
	return &Str{Raw: escapeString(value), Value: value}
}

func (t *Str) Fill() *Fill { return &t.fill }

func (t *Str) Equals(other Value) bool {
	o, ok := other.(*Str)
	return ok && o.Value == t.Value
}

func (t *Str) Clone() Value {
	c := *t
	return &c
}

func (t *Str) write(sb *strings.Builder) {
	sb.WriteByte('"')
	sb.WriteString(t.Raw)
	sb.WriteByte('"')
}

func (t *Str) recoverFill(other Value) {
	if o, ok := other.(*Str); ok {
		t.fill.Recover(o.fill)
	}
}

func parseString(fill Fill, s span) (Value, Fill, span, error) {
	if s.peek() != '"' {
		return nil, fill, s, nil
	}
	raw, decoded, rem, err := scanQuoted(s)
	if err != nil {
		return nil, fill, s, err
	}
	next, rem2 := parseFill(rem)
	return &Str{fill: fill, Raw: raw, Value: decoded}, next, rem2, nil
}

// scanQuoted consumes a "..." literal at the cursor, returning the raw
// segment between the quotes and the decoded text.
func scanQuoted(s span) (raw, decoded string, rem span, err error) {
	rest := s.rest()
	var out strings.Builder
	i := 1
	for i < len(rest) {
		c := rest[i]
		if c == '"' {
			return rest[1:i], out.String(), s.advance(i + 1), nil
		}
		if c == '\\' {
			if i+1 >= len(rest) {
				break
			}
			switch rest[i+1] {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				return "", "", s, parseErrorf(s.advance(i), "invalid escape \\%c in string", rest[i+1])
			}
			i += 2
			continue
		}
		if c == '\n' {
			return "", "", s, parseErrorf(s.advance(i), "unterminated string (newline before closing quote)")
		}
		out.WriteByte(c)
		i++
	}
	return "", "", s, parseErrorf(s, "unterminated string")
}

func escapeString(v string) string {
	r := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\t", "\\t", "\r", "\\r")
	return r.Replace(v)
}

// --- ConstantRef ---

// ConstantRef is an unresolved reference to a constant, written $path or
// $alias::path. The resolver replaces it in place.
type ConstantRef struct {
	fill Fill
	Path string
}

func (c *ConstantRef) Fill() *Fill { return &c.fill }

func (c *ConstantRef) Equals(other Value) bool {
	o, ok := other.(*ConstantRef)
	return ok && o.Path == c.Path
}

func (c *ConstantRef) Clone() Value {
	cc := *c
	return &cc
}

func (c *ConstantRef) write(sb *strings.Builder) {
	sb.WriteByte('$')
	sb.WriteString(c.Path)
}

func (c *ConstantRef) recoverFill(other Value) {
	if o, ok := other.(*ConstantRef); ok {
		c.fill.Recover(o.fill)
	}
}

func parseConstantRef(fill Fill, s span) (Value, Fill, span, error) {
	if s.peek() != '$' {
		return nil, fill, s, nil
	}
	path, rem, ok := scanDefPath(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "constant reference '$' must be followed by a snake_case path")
	}
	next, rem2 := parseFill(rem)
	return &ConstantRef{fill: fill, Path: path}, next, rem2, nil
}

// --- SpecParam ---

// SpecParam is a spec parameter placeholder, written @name. It is only
// meaningful inside spec content and spec invocations.
type SpecParam struct {
	fill Fill
	Name string
}

func (p *SpecParam) Fill() *Fill { return &p.fill }

func (p *SpecParam) Equals(other Value) bool {
	o, ok := other.(*SpecParam)
	return ok && o.Name == p.Name
}

func (p *SpecParam) Clone() Value {
	c := *p
	return &c
}

func (p *SpecParam) write(sb *strings.Builder) {
	sb.WriteByte('@')
	sb.WriteString(p.Name)
}

func (p *SpecParam) recoverFill(other Value) {
	if o, ok := other.(*SpecParam); ok {
		p.fill.Recover(o.fill)
	}
}

func parseSpecParam(fill Fill, s span) (Value, Fill, span, error) {
	if s.peek() != '@' {
		return nil, fill, s, nil
	}
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "spec parameter '@' must be followed by a snake_case name")
	}
	next, rem2 := parseFill(rem)
	return &SpecParam{fill: fill, Name: name}, next, rem2, nil
}

// --- Insertion ---

// Insertion is a spec insertion marker, written !name. In spec content it
// marks where invocation-site blocks are spliced; the resolver removes it.
type Insertion struct {
	fill Fill
	Name string
}

func (m *Insertion) Fill() *Fill { return &m.fill }

func (m *Insertion) Equals(other Value) bool {
	o, ok := other.(*Insertion)
	return ok && o.Name == m.Name
}

func (m *Insertion) Clone() Value {
	c := *m
	return &c
}

func (m *Insertion) write(sb *strings.Builder) {
	sb.WriteByte('!')
	sb.WriteString(m.Name)
}

func (m *Insertion) recoverFill(other Value) {
	if o, ok := other.(*Insertion); ok {
		m.fill.Recover(o.fill)
	}
}

func parseInsertion(fill Fill, s span) (Value, Fill, span, error) {
	if s.peek() != '!' {
		return nil, fill, s, nil
	}
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, nil
	}
	next, rem2 := parseFill(rem)
	return &Insertion{fill: fill, Name: name}, next, rem2, nil
}
