package rowan

import "strings"

// DefEntry is one definition in a #defs section: a constant, a scene macro,
// or a spec.
type DefEntry interface {
	defFill() *Fill
	writeDef(sb *strings.Builder)
}

// --- ConstantDef ---

// ConstantDef binds a value to a $name. The value may be a \ ... \ group,
// which splices into maps and arrays at reference sites.
type ConstantDef struct {
	fill   Fill
	Name   string
	eqFill Fill
	Value  Value
}

func (d *ConstantDef) defFill() *Fill { return &d.fill }

func (d *ConstantDef) writeDef(sb *strings.Builder) {
	d.fill.write(sb, "\n")
	sb.WriteByte('$')
	sb.WriteString(d.Name)
	d.eqFill.write(sb, " ")
	sb.WriteByte('=')
	d.Value.Fill().write(sb, " ")
	d.Value.write(sb)
}

// --- SceneMacroDef ---

// SceneMacroDef binds a scene-subtree template to a +name. The template body
// sits between backslashes, indented strictly deeper than the definition
// line.
type SceneMacroDef struct {
	fill     Fill
	Name     string
	eqFill   Fill
	openFill Fill // between '=' and the opening backslash
	Entries  []SceneEntry
	endFill  Fill // before the closing backslash
}

func (d *SceneMacroDef) defFill() *Fill { return &d.fill }

func (d *SceneMacroDef) writeDef(sb *strings.Builder) {
	d.fill.write(sb, "\n")
	sb.WriteByte('+')
	sb.WriteString(d.Name)
	d.eqFill.write(sb, " ")
	sb.WriteByte('=')
	d.openFill.write(sb, " ")
	sb.WriteByte('\\')
	for _, e := range d.Entries {
		e.writeEntry(sb, 1)
	}
	d.endFill.write(sb, "\n")
	sb.WriteByte('\\')
}

// --- SpecDef ---

// SpecDef binds a value template to a *name. The body map may hold a '*'
// content entry, @param defaults, and !insertion markers inside the content.
// A derived spec *name(*base) starts from a clone of base's body.
type SpecDef struct {
	fill   Fill
	Name   string
	Base   string // empty unless derived
	eqFill Fill
	Body   *Map
}

func (d *SpecDef) defFill() *Fill { return &d.fill }

func (d *SpecDef) writeDef(sb *strings.Builder) {
	d.fill.write(sb, "\n")
	sb.WriteByte('*')
	sb.WriteString(d.Name)
	if d.Base != "" {
		sb.WriteString("(*")
		sb.WriteString(d.Base)
		sb.WriteByte(')')
	}
	d.eqFill.write(sb, " ")
	sb.WriteByte('=')
	d.Body.Fill().write(sb, " ")
	d.Body.write(sb)
}

// --- DefsSection ---

// DefsSection is a #defs block of constants, scene macros, and specs.
type DefsSection struct {
	fill    Fill
	Entries []DefEntry
}

func (m *DefsSection) Keyword() string    { return "#defs" }
func (m *DefsSection) sectionFill() *Fill { return &m.fill }

func (m *DefsSection) write(sb *strings.Builder) {
	for _, e := range m.Entries {
		e.writeDef(sb)
	}
}

func parseDefsSection(fill Fill, s span) (Section, Fill, span, error) {
	sec := &DefsSection{fill: fill}
	entryFill, rem := parseFill(s)
	for {
		if rem.empty() || atSectionStart(entryFill, rem) {
			return sec, entryFill, rem, nil
		}
		if !entryFill.EndsWithNewline() {
			return nil, fill, s, parseErrorf(rem, "definitions must start on their own line")
		}

		var (
			entry DefEntry
			err   error
		)
		switch rem.peek() {
		case '$':
			entry, entryFill, rem, err = parseConstantDef(entryFill, rem)
		case '+':
			entry, entryFill, rem, err = parseSceneMacroDef(entryFill, rem)
		case '*':
			entry, entryFill, rem, err = parseSpecDef(entryFill, rem)
		default:
			return nil, fill, s, parseErrorf(rem, "expected a definition ($name, +name, or *name)")
		}
		if err != nil {
			return nil, fill, s, err
		}
		sec.Entries = append(sec.Entries, entry)
	}
}

// parseDefAssign consumes the fill and '=' after a definition's name.
func parseDefAssign(s span) (eqFill Fill, rem span, err error) {
	eqFill, rem = parseFill(s)
	rem2, ok := eat(rem, "=")
	if !ok {
		return eqFill, s, parseErrorf(rem, "expected '=' in definition")
	}
	return eqFill, rem2, nil
}

func parseConstantDef(fill Fill, s span) (DefEntry, Fill, span, error) {
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "expected a constant name after '$'")
	}
	def := &ConstantDef{fill: fill, Name: name}
	var err error
	def.eqFill, rem, err = parseDefAssign(rem)
	if err != nil {
		return nil, fill, s, err
	}

	vFill, rem := parseFill(rem)
	if rem.peek() == '\\' {
		g, nextFill, rem2, err := parseValueGroup(vFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		def.Value = g
		return def, nextFill, rem2, nil
	}
	v, nextFill, rem2, err := parseValue(vFill, rem)
	if err != nil {
		return nil, fill, s, err
	}
	if v == nil {
		return nil, fill, s, parseErrorf(rem, "constant $%s has no value", name)
	}
	def.Value = v
	return def, nextFill, rem2, nil
}

func parseSceneMacroDef(fill Fill, s span) (DefEntry, Fill, span, error) {
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "expected a macro name after '+'")
	}
	def := &SceneMacroDef{fill: fill, Name: name}
	var err error
	def.eqFill, rem, err = parseDefAssign(rem)
	if err != nil {
		return nil, fill, s, err
	}

	def.openFill, rem = parseFill(rem)
	rem, ok = eat(rem, "\\")
	if !ok {
		return nil, fill, s, parseErrorf(rem, "expected '\\' to open scene macro +%s", name)
	}

	stopAtBackslash := func(fill Fill, s span) bool { return s.peek() == '\\' }
	bodyFill, rem := parseFill(rem)
	def.Entries, bodyFill, rem, err = parseSceneEntries(0, bodyFill, rem, stopAtBackslash)
	if err != nil {
		return nil, fill, s, err
	}
	rem2, ok := eat(rem, "\\")
	if !ok {
		return nil, fill, s, parseErrorf(rem, "scene macro +%s content must be indented and closed with '\\'", name)
	}
	if len(def.Entries) == 0 {
		return nil, fill, s, parseErrorf(rem, "scene macro +%s has an empty body", name)
	}
	def.endFill = bodyFill
	nextFill, rem3 := parseFill(rem2)
	return def, nextFill, rem3, nil
}

func parseSpecDef(fill Fill, s span) (DefEntry, Fill, span, error) {
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, parseErrorf(s, "expected a spec name after '*'")
	}
	def := &SpecDef{fill: fill, Name: name}

	if next, ok := eat(rem, "(*"); ok {
		base, rem2, ok := scanSnake(next)
		if !ok {
			return nil, fill, s, parseErrorf(next, "expected a base spec name in *%s(...)", name)
		}
		rem2, ok = eat(rem2, ")")
		if !ok {
			return nil, fill, s, parseErrorf(rem2, "expected ')' after base spec in *%s", name)
		}
		def.Base = base
		rem = rem2
	}

	var err error
	def.eqFill, rem, err = parseDefAssign(rem)
	if err != nil {
		return nil, fill, s, err
	}

	vFill, rem := parseFill(rem)
	body, nextFill, rem2, err := parseMap(vFill, rem)
	if err != nil {
		return nil, fill, s, err
	}
	if body == nil {
		return nil, fill, s, parseErrorf(rem, "spec *%s must be defined as a map", name)
	}
	def.Body = body.(*Map)
	return def, nextFill, rem2, nil
}
