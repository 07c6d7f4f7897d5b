package rowan

import "strings"

// SceneEntry is one entry within a scene layer: a child node, a loadable, a
// scene-macro call, or a macro command.
type SceneEntry interface {
	entryFill() *Fill
	writeEntry(sb *strings.Builder, depth int)
}

func sceneIndent(depth int) string {
	return "\n" + strings.Repeat("    ", depth)
}

// --- SceneNode ---

// SceneNode is one named node of a scene tree. Name keeps the source
// spelling with quotes; children and loadables are interleaved in Entries
// in declaration order.
type SceneNode struct {
	fill    Fill
	Name    string // quoted, e.g. "button"
	Entries []SceneEntry
}

// ID returns the node's path segment, without quotes.
func (n *SceneNode) ID() string { return strings.Trim(n.Name, "\"") }

// Loadables returns the node's loadables in declaration order.
func (n *SceneNode) Loadables() []*Loadable {
	var out []*Loadable
	for _, e := range n.Entries {
		if l, ok := e.(*Loadable); ok {
			out = append(out, l)
		}
	}
	return out
}

// Children returns the node's child nodes in declaration order.
func (n *SceneNode) Children() []*SceneNode {
	var out []*SceneNode
	for _, e := range n.Entries {
		if c, ok := e.(*SceneNode); ok {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first child with the given id.
func (n *SceneNode) Child(id string) (*SceneNode, bool) {
	for _, c := range n.Children() {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

func (n *SceneNode) Clone() *SceneNode {
	c := &SceneNode{fill: n.fill, Name: n.Name, Entries: make([]SceneEntry, len(n.Entries))}
	for i, e := range n.Entries {
		c.Entries[i] = cloneSceneEntry(e)
	}
	return c
}

func cloneSceneEntry(e SceneEntry) SceneEntry {
	switch t := e.(type) {
	case *SceneNode:
		return t.Clone()
	case *Loadable:
		return t.Clone()
	case *MacroCall:
		return t.Clone()
	case *MacroCommand:
		c := *t
		return &c
	}
	return e
}

func (n *SceneNode) entryFill() *Fill { return &n.fill }

func (n *SceneNode) writeEntry(sb *strings.Builder, depth int) {
	n.fill.write(sb, sceneIndent(depth))
	sb.WriteString(n.Name)
	for _, e := range n.Entries {
		e.writeEntry(sb, depth+1)
	}
}

// --- Loadable as scene entry ---

func (l *Loadable) entryFill() *Fill { return &l.fill }

func (l *Loadable) writeEntry(sb *strings.Builder, depth int) {
	l.fill.write(sb, sceneIndent(depth))
	l.write(sb)
}

// --- MacroCall ---

// MacroCall invokes a scene macro inside a scene layer, written +path or
// +path{ ...overrides... }.
type MacroCall struct {
	fill    Fill
	Path    string // def path after '+', e.g. widgets::button
	HasBody bool
	Entries []SceneEntry
	endFill Fill // before the closing brace
}

func (m *MacroCall) Clone() *MacroCall {
	c := &MacroCall{fill: m.fill, Path: m.Path, HasBody: m.HasBody, endFill: m.endFill}
	c.Entries = make([]SceneEntry, len(m.Entries))
	for i, e := range m.Entries {
		c.Entries[i] = cloneSceneEntry(e)
	}
	return c
}

func (m *MacroCall) entryFill() *Fill { return &m.fill }

func (m *MacroCall) writeEntry(sb *strings.Builder, depth int) {
	m.fill.write(sb, sceneIndent(depth))
	sb.WriteByte('+')
	sb.WriteString(m.Path)
	if m.HasBody {
		sb.WriteByte('{')
		for _, e := range m.Entries {
			e.writeEntry(sb, depth+1)
		}
		m.endFill.write(sb, sceneIndent(depth))
		sb.WriteByte('}')
	}
}

// --- MacroCommand ---

// MacroCommandKind is the sigil of a macro command.
type MacroCommandKind byte

const (
	// MoveToTop reorders the named loadable to the front, written ^Id.
	MoveToTop MacroCommandKind = '^'
	// MoveToBottom reorders the named loadable to the back, written !Id.
	MoveToBottom MacroCommandKind = '!'
	// RemoveLoadable removes the named loadable, written -Id.
	RemoveLoadable MacroCommandKind = '-'
)

// MacroCommand edits a macro's expanded loadable list at the invocation
// site. Only meaningful inside a macro call body; one surviving expansion is
// a resolution error.
type MacroCommand struct {
	fill Fill
	Kind MacroCommandKind
	Id   string
}

func (m *MacroCommand) entryFill() *Fill { return &m.fill }

func (m *MacroCommand) writeEntry(sb *strings.Builder, depth int) {
	m.fill.write(sb, sceneIndent(depth))
	sb.WriteByte(byte(m.Kind))
	sb.WriteString(m.Id)
}

// --- ScenesSection ---

// ScenesSection is a #scenes block holding root scene nodes at column 0.
type ScenesSection struct {
	fill  Fill
	Roots []*SceneNode
}

func (m *ScenesSection) Keyword() string    { return "#scenes" }
func (m *ScenesSection) sectionFill() *Fill { return &m.fill }

func (m *ScenesSection) write(sb *strings.Builder) {
	for _, r := range m.Roots {
		r.fill.write(sb, "\n")
		sb.WriteString(r.Name)
		for _, e := range r.Entries {
			e.writeEntry(sb, 1)
		}
	}
}

// stopFunc reports whether the layer parser has reached its terminator.
type stopFunc func(fill Fill, s span) bool

func stopAtSection(fill Fill, s span) bool { return atSectionStart(fill, s) }

func parseScenesSection(fill Fill, s span) (Section, Fill, span, error) {
	sec := &ScenesSection{fill: fill}
	entryFill, rem := parseFill(s)
	for {
		if rem.empty() || atSectionStart(entryFill, rem) {
			return sec, entryFill, rem, nil
		}
		indent, atLine := entryFill.IndentAfterNewline()
		if !atLine {
			return nil, fill, s, parseErrorf(rem, "scene nodes must start on their own line")
		}
		if indent != 0 {
			return nil, fill, s, parseErrorf(rem, "root scene nodes must start at column 0")
		}
		if rem.peek() != '"' {
			return nil, fill, s, parseErrorf(rem, "expected a quoted scene node name")
		}
		node, nextFill, rem2, err := parseSceneNode(entryFill, rem, 0, stopAtSection)
		if err != nil {
			return nil, fill, s, err
		}
		sec.Roots = append(sec.Roots, node)
		entryFill = nextFill
		rem = rem2
	}
}

// parseSceneNode parses a quoted node name at the cursor plus its indented
// entries. nodeIndent is the column the name starts at.
func parseSceneNode(fill Fill, s span, nodeIndent int, stop stopFunc) (*SceneNode, Fill, span, error) {
	raw, _, rem, err := scanQuoted(s)
	if err != nil {
		return nil, fill, s, err
	}
	node := &SceneNode{fill: fill, Name: `"` + raw + `"`}
	entryFill, rem := parseFill(rem)
	node.Entries, entryFill, rem, err = parseSceneEntries(nodeIndent, entryFill, rem, stop)
	if err != nil {
		return nil, fill, s, err
	}
	return node, entryFill, rem, nil
}

// parseSceneEntries collects entries indented strictly deeper than
// parentIndent. The first entry fixes the layer's indentation; siblings must
// match it exactly. Returns when indentation unwinds to parentIndent or
// less, or when stop fires.
func parseSceneEntries(parentIndent int, fill Fill, s span, stop stopFunc) ([]SceneEntry, Fill, span, error) {
	var entries []SceneEntry
	layerIndent := -1
	for {
		if s.empty() || stop(fill, s) {
			return entries, fill, s, nil
		}
		indent, atLine := fill.IndentAfterNewline()
		if !atLine {
			return nil, fill, s, parseErrorf(s, "scene entries must start on their own line")
		}
		if indent <= parentIndent {
			return entries, fill, s, nil
		}
		if layerIndent < 0 {
			layerIndent = indent
		} else if indent != layerIndent {
			return nil, fill, s, parseErrorf(s, "inconsistent scene indentation (expected %d spaces, found %d)", layerIndent, indent)
		}

		entry, nextFill, rem, err := parseSceneEntry(fill, s, layerIndent, stop)
		if err != nil {
			return nil, fill, s, err
		}
		entries = append(entries, entry)
		fill = nextFill
		s = rem
	}
}

func parseSceneEntry(fill Fill, s span, layerIndent int, stop stopFunc) (SceneEntry, Fill, span, error) {
	switch {
	case s.peek() == '"':
		return parseSceneNode(fill, s, layerIndent, stop)
	case s.peek() == '+':
		return parseMacroCall(fill, s, layerIndent, stop)
	case s.peek() == '^' || s.peek() == '!' || s.peek() == '-':
		kind := MacroCommandKind(s.peek())
		id, rem, ok := scanCamel(s.advance(1))
		if !ok {
			return nil, fill, s, parseErrorf(s, "expected a loadable name after '%c'", s.peek())
		}
		cmd := &MacroCommand{fill: fill, Kind: kind, Id: id}
		nextFill, rem := parseFill(rem)
		return cmd, nextFill, rem, nil
	default:
		l, nextFill, rem, err := parseLoadable(fill, s)
		if err != nil {
			return nil, fill, s, err
		}
		if l == nil {
			return nil, fill, s, parseErrorf(s, "malformed scene entry")
		}
		return l, nextFill, rem, nil
	}
}

func parseMacroCall(fill Fill, s span, layerIndent int, stop stopFunc) (SceneEntry, Fill, span, error) {
	path, rem, ok := scanDefPath(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "expected a macro path after '+'")
	}
	call := &MacroCall{fill: fill, Path: path}
	if rem.peek() != '{' {
		nextFill, rem2 := parseFill(rem)
		return call, nextFill, rem2, nil
	}
	call.HasBody = true
	rem = rem.advance(1)

	stopAtBrace := func(fill Fill, s span) bool {
		return s.peek() == '}' || stop(fill, s)
	}
	bodyFill, rem := parseFill(rem)
	var err error
	call.Entries, bodyFill, rem, err = parseSceneEntries(layerIndent, bodyFill, rem, stopAtBrace)
	if err != nil {
		return nil, fill, s, err
	}
	rem2, ok := eat(rem, "}")
	if !ok {
		return nil, fill, s, parseErrorf(rem, "unterminated macro call body (missing '}')")
	}
	call.endFill = bodyFill
	nextFill, rem3 := parseFill(rem2)
	return call, nextFill, rem3, nil
}
