package rowan

import "strings"

// --- Array ---

// Array is an ordered list of values, written [v v ...].
type Array struct {
	fill    Fill
	Entries []Value
	endFill Fill // fill before the closing bracket
}

func (a *Array) Fill() *Fill { return &a.fill }

func (a *Array) Equals(other Value) bool {
	o, ok := other.(*Array)
	if !ok || len(o.Entries) != len(a.Entries) {
		return false
	}
	for i, e := range a.Entries {
		if !e.Equals(o.Entries[i]) {
			return false
		}
	}
	return true
}

func (a *Array) Clone() Value {
	c := &Array{fill: a.fill, endFill: a.endFill, Entries: make([]Value, len(a.Entries))}
	for i, e := range a.Entries {
		c.Entries[i] = e.Clone()
	}
	return c
}

func (a *Array) write(sb *strings.Builder) {
	sb.WriteByte('[')
	for i, e := range a.Entries {
		fallback := ""
		if i > 0 {
			fallback = " "
		}
		e.Fill().write(sb, fallback)
		e.write(sb)
	}
	a.endFill.write(sb, "")
	sb.WriteByte(']')
}

func (a *Array) recoverFill(other Value) {
	o, ok := other.(*Array)
	if !ok {
		return
	}
	a.fill.Recover(o.fill)
	a.endFill.Recover(o.endFill)
	for i := range a.Entries {
		if i >= len(o.Entries) {
			break
		}
		a.Entries[i].recoverFill(o.Entries[i])
	}
}

func parseArray(fill Fill, s span) (Value, Fill, span, error) {
	rem, ok := eat(s, "[")
	if !ok {
		return nil, fill, s, nil
	}
	arr := &Array{fill: fill}
	itemFill, rem := parseFill(rem)
	for {
		if next, ok := eat(rem, "]"); ok {
			arr.endFill = itemFill
			after, rem2 := parseFill(next)
			return arr, after, rem2, nil
		}
		v, nextFill, rem2, err := parseValue(itemFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		if v == nil {
			return nil, fill, s, parseErrorf(rem, "malformed array entry (expected value or ']')")
		}
		arr.Entries = append(arr.Entries, v)
		itemFill = nextFill
		rem = rem2
	}
}

// --- Tuple ---

// Tuple is an ordered fixed group of values, written (v v ...).
type Tuple struct {
	fill    Fill
	Entries []Value
	endFill Fill
}

func (t *Tuple) Fill() *Fill { return &t.fill }

func (t *Tuple) Equals(other Value) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.Entries) != len(t.Entries) {
		return false
	}
	for i, e := range t.Entries {
		if !e.Equals(o.Entries[i]) {
			return false
		}
	}
	return true
}

func (t *Tuple) Clone() Value {
	c := &Tuple{fill: t.fill, endFill: t.endFill, Entries: make([]Value, len(t.Entries))}
	for i, e := range t.Entries {
		c.Entries[i] = e.Clone()
	}
	return c
}

func (t *Tuple) write(sb *strings.Builder) {
	sb.WriteByte('(')
	for i, e := range t.Entries {
		fallback := ""
		if i > 0 {
			fallback = " "
		}
		e.Fill().write(sb, fallback)
		e.write(sb)
	}
	t.endFill.write(sb, "")
	sb.WriteByte(')')
}

func (t *Tuple) recoverFill(other Value) {
	o, ok := other.(*Tuple)
	if !ok {
		return
	}
	t.fill.Recover(o.fill)
	t.endFill.Recover(o.endFill)
	for i := range t.Entries {
		if i >= len(o.Entries) {
			break
		}
		t.Entries[i].recoverFill(o.Entries[i])
	}
}

func parseTuple(fill Fill, s span) (Value, Fill, span, error) {
	rem, ok := eat(s, "(")
	if !ok {
		return nil, fill, s, nil
	}
	tup := &Tuple{fill: fill}
	itemFill, rem := parseFill(rem)
	for {
		if next, ok := eat(rem, ")"); ok {
			tup.endFill = itemFill
			after, rem2 := parseFill(next)
			return tup, after, rem2, nil
		}
		v, nextFill, rem2, err := parseValue(itemFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		if v == nil {
			return nil, fill, s, parseErrorf(rem, "malformed tuple entry (expected value or ')')")
		}
		tup.Entries = append(tup.Entries, v)
		itemFill = nextFill
		rem = rem2
	}
}

// --- Map ---

// MapKeyKind discriminates the key forms a map entry can use.
type MapKeyKind int

const (
	// KeyField is a plain snake_case field name or quoted string.
	KeyField MapKeyKind = iota
	// KeyConstant is a $path constant reference.
	KeyConstant
	// KeyParam is an @name spec parameter (spec invocation overrides).
	KeyParam
	// KeyMarker is a !name insertion marker. Marker keys may omit a value.
	KeyMarker
	// KeyContent is the bare * content key inside a spec definition.
	KeyContent
)

// MapKey is the key of one map entry. Text preserves the exact source
// spelling, including sigils and quotes.
type MapKey struct {
	fill Fill
	Kind MapKeyKind
	Text string
}

// Name returns the key text without its sigil or quotes.
func (k *MapKey) Name() string {
	switch k.Kind {
	case KeyConstant, KeyParam, KeyMarker:
		return k.Text[1:]
	case KeyField:
		return strings.Trim(k.Text, "\"")
	default:
		return k.Text
	}
}

// MapEntry is one key/value pair. Val is nil for bare insertion-marker keys.
type MapEntry struct {
	Key MapKey
	Val Value
}

// Map is an ordered key/value collection, written {k:v k:v}.
// Entry order is preserved; duplicate keys are allowed by the parser and
// diagnosed at resolution.
type Map struct {
	fill    Fill
	Entries []MapEntry
	endFill Fill
}

func (m *Map) Fill() *Fill { return &m.fill }

func (m *Map) Equals(other Value) bool {
	o, ok := other.(*Map)
	if !ok || len(o.Entries) != len(m.Entries) {
		return false
	}
	for i, e := range m.Entries {
		oe := o.Entries[i]
		if e.Key.Kind != oe.Key.Kind || e.Key.Text != oe.Key.Text {
			return false
		}
		if (e.Val == nil) != (oe.Val == nil) {
			return false
		}
		if e.Val != nil && !e.Val.Equals(oe.Val) {
			return false
		}
	}
	return true
}

func (m *Map) Clone() Value {
	c := &Map{fill: m.fill, endFill: m.endFill, Entries: make([]MapEntry, len(m.Entries))}
	for i, e := range m.Entries {
		c.Entries[i] = MapEntry{Key: e.Key}
		if e.Val != nil {
			c.Entries[i].Val = e.Val.Clone()
		}
	}
	return c
}

func (m *Map) write(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, e := range m.Entries {
		fallback := ""
		if i > 0 {
			fallback = " "
		}
		e.Key.fill.write(sb, fallback)
		sb.WriteString(e.Key.Text)
		if e.Val != nil {
			sb.WriteByte(':')
			e.Val.Fill().write(sb, "")
			e.Val.write(sb)
		}
	}
	m.endFill.write(sb, "")
	sb.WriteByte('}')
}

func (m *Map) recoverFill(other Value) {
	o, ok := other.(*Map)
	if !ok {
		return
	}
	m.fill.Recover(o.fill)
	m.endFill.Recover(o.endFill)
	for i := range m.Entries {
		if i >= len(o.Entries) {
			break
		}
		m.Entries[i].Key.fill.Recover(o.Entries[i].Key.fill)
		if m.Entries[i].Val != nil && o.Entries[i].Val != nil {
			m.Entries[i].Val.recoverFill(o.Entries[i].Val)
		}
	}
}

// Get returns the value of the first entry whose key text matches.
func (m *Map) Get(keyText string) (Value, bool) {
	for _, e := range m.Entries {
		if e.Key.Text == keyText {
			return e.Val, true
		}
	}
	return nil, false
}

// parseMapKey scans a map key at the cursor. Misses are not errors.
func parseMapKey(fill Fill, s span) (MapKey, span, bool, error) {
	none := MapKey{}
	switch {
	case s.peek() == '"':
		raw, _, rem, err := scanQuoted(s)
		if err != nil {
			return none, s, false, err
		}
		return MapKey{fill: fill, Kind: KeyField, Text: `"` + raw + `"`}, rem, true, nil
	case s.peek() == '$':
		path, rem, ok := scanDefPath(s.advance(1))
		if !ok {
			return none, s, false, nil
		}
		return MapKey{fill: fill, Kind: KeyConstant, Text: "$" + path}, rem, true, nil
	case s.peek() == '@':
		name, rem, ok := scanSnake(s.advance(1))
		if !ok {
			return none, s, false, nil
		}
		return MapKey{fill: fill, Kind: KeyParam, Text: "@" + name}, rem, true, nil
	case s.peek() == '!':
		name, rem, ok := scanSnake(s.advance(1))
		if !ok {
			return none, s, false, nil
		}
		return MapKey{fill: fill, Kind: KeyMarker, Text: "!" + name}, rem, true, nil
	case s.peek() == '*' && len(s.rest()) > 1 && s.rest()[1] == ':':
		return MapKey{fill: fill, Kind: KeyContent, Text: "*"}, s.advance(1), true, nil
	default:
		name, rem, ok := scanSnake(s)
		if !ok {
			return none, s, false, nil
		}
		return MapKey{fill: fill, Kind: KeyField, Text: name}, rem, true, nil
	}
}

func parseMap(fill Fill, s span) (Value, Fill, span, error) {
	rem, ok := eat(s, "{")
	if !ok {
		return nil, fill, s, nil
	}
	mp := &Map{fill: fill}
	itemFill, rem := parseFill(rem)
	for {
		if next, ok := eat(rem, "}"); ok {
			mp.endFill = itemFill
			after, rem2 := parseFill(next)
			return mp, after, rem2, nil
		}

		// Entries after the first must be separated by at least one fill
		// byte; zero separation would make entry boundaries ambiguous.
		if len(mp.Entries) > 0 && itemFill.Len() == 0 {
			return nil, fill, s, parseErrorf(rem, "map entries must be separated by whitespace")
		}

		key, rem2, ok, err := parseMapKey(itemFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		if !ok {
			return nil, fill, s, parseErrorf(rem, "malformed map entry (expected key or '}')")
		}

		entry := MapEntry{Key: key}
		if rem3, hasColon := eat(rem2, ":"); hasColon {
			vFill, rem4 := parseFill(rem3)
			v, nextFill, rem5, err := parseValue(vFill, rem4)
			if err != nil {
				return nil, fill, s, err
			}
			if v == nil {
				return nil, fill, s, parseErrorf(rem4, "map key %q has no value", key.Text)
			}
			mp.Entries = append(mp.Entries, MapEntry{Key: key, Val: v})
			itemFill = nextFill
			rem = rem5
			continue
		}

		// Only insertion markers and constant references (value-group
		// splices) may appear without a value.
		if key.Kind != KeyMarker && key.Kind != KeyConstant {
			return nil, fill, s, parseErrorf(rem2, "map key %q is missing ':'", key.Text)
		}
		mp.Entries = append(mp.Entries, entry)
		itemFill, rem = parseFill(rem2)
	}
}

// --- Enum ---

// Enum is a CamelCase variant, optionally with a tuple or map payload:
// Auto, Px(10), Animated{...}.
type Enum struct {
	fill    Fill
	Name    string
	Payload Value // nil, *Tuple, or *Map
}

func (e *Enum) Fill() *Fill { return &e.fill }

func (e *Enum) Equals(other Value) bool {
	o, ok := other.(*Enum)
	if !ok || o.Name != e.Name {
		return false
	}
	return payloadEquals(e.Payload, o.Payload)
}

// payloadEquals compares optional payloads, treating a nil payload and an
// empty tuple as equal (newtype-of-unit erasure).
func payloadEquals(a, b Value) bool {
	if isUnitPayload(a) && isUnitPayload(b) {
		return true
	}
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return a.Equals(b)
}

func isUnitPayload(v Value) bool {
	if v == nil {
		return true
	}
	if t, ok := v.(*Tuple); ok {
		return len(t.Entries) == 0
	}
	return false
}

func (e *Enum) Clone() Value {
	c := &Enum{fill: e.fill, Name: e.Name}
	if e.Payload != nil {
		c.Payload = e.Payload.Clone()
	}
	return c
}

func (e *Enum) write(sb *strings.Builder) {
	sb.WriteString(e.Name)
	// Unit payloads erase: Auto() serializes as Auto.
	if e.Payload != nil && !isUnitPayload(e.Payload) {
		e.Payload.write(sb)
	}
}

func (e *Enum) recoverFill(other Value) {
	o, ok := other.(*Enum)
	if !ok {
		return
	}
	e.fill.Recover(o.fill)
	if e.Payload != nil && o.Payload != nil {
		e.Payload.recoverFill(o.Payload)
	}
}

func parseEnum(fill Fill, s span) (Value, Fill, span, error) {
	name, rem, ok := scanCamel(s)
	if !ok {
		return nil, fill, s, nil
	}
	en := &Enum{fill: fill, Name: name}
	switch rem.peek() {
	case '(':
		payload, nextFill, rem2, err := parseTuple(Fill{}, rem)
		if err != nil {
			return nil, fill, s, err
		}
		en.Payload = payload
		return en, nextFill, rem2, nil
	case '{':
		payload, nextFill, rem2, err := parseMap(Fill{}, rem)
		if err != nil {
			return nil, fill, s, err
		}
		en.Payload = payload
		return en, nextFill, rem2, nil
	default:
		next, rem2 := parseFill(rem)
		return en, next, rem2, nil
	}
}

// --- SpecInvocation ---

// SpecInvocation requests expansion of a named spec in value position,
// written *name or *name{overrides and insertions}.
type SpecInvocation struct {
	fill Fill
	Name string
	Body *Map // nil when invoked without overrides
}

func (v *SpecInvocation) Fill() *Fill { return &v.fill }

func (v *SpecInvocation) Equals(other Value) bool {
	o, ok := other.(*SpecInvocation)
	if !ok || o.Name != v.Name {
		return false
	}
	if (v.Body == nil) != (o.Body == nil) {
		return false
	}
	return v.Body == nil || v.Body.Equals(o.Body)
}

func (v *SpecInvocation) Clone() Value {
	c := &SpecInvocation{fill: v.fill, Name: v.Name}
	if v.Body != nil {
		c.Body = v.Body.Clone().(*Map)
	}
	return c
}

func (v *SpecInvocation) write(sb *strings.Builder) {
	sb.WriteByte('*')
	sb.WriteString(v.Name)
	if v.Body != nil {
		v.Body.write(sb)
	}
}

func (v *SpecInvocation) recoverFill(other Value) {
	o, ok := other.(*SpecInvocation)
	if !ok {
		return
	}
	v.fill.Recover(o.fill)
	if v.Body != nil && o.Body != nil {
		v.Body.recoverFill(o.Body)
	}
}

func parseSpecInvocation(fill Fill, s span) (Value, Fill, span, error) {
	if s.peek() != '*' {
		return nil, fill, s, nil
	}
	name, rem, ok := scanSnake(s.advance(1))
	if !ok {
		return nil, fill, s, nil
	}
	inv := &SpecInvocation{fill: fill, Name: name}
	if rem.peek() == '{' {
		body, nextFill, rem2, err := parseMap(Fill{}, rem)
		if err != nil {
			return nil, fill, s, err
		}
		inv.Body = body.(*Map)
		return inv, nextFill, rem2, nil
	}
	next, rem2 := parseFill(rem)
	return inv, next, rem2, nil
}

// --- ValueGroup ---

// GroupEntry is one entry of a value group: either a keyed pair or a bare
// value (Key nil).
type GroupEntry struct {
	Key *MapKey
	Val Value
}

// ValueGroup is a \ ... \ block holding multiple entries. Groups only appear
// as constant definitions; referencing one splices its entries into the
// surrounding map or array during resolution.
type ValueGroup struct {
	fill    Fill
	Entries []GroupEntry
	endFill Fill
}

func (g *ValueGroup) Fill() *Fill { return &g.fill }

func (g *ValueGroup) Equals(other Value) bool {
	o, ok := other.(*ValueGroup)
	if !ok || len(o.Entries) != len(g.Entries) {
		return false
	}
	for i, e := range g.Entries {
		oe := o.Entries[i]
		if (e.Key == nil) != (oe.Key == nil) {
			return false
		}
		if e.Key != nil && e.Key.Text != oe.Key.Text {
			return false
		}
		if (e.Val == nil) != (oe.Val == nil) {
			return false
		}
		if e.Val != nil && !e.Val.Equals(oe.Val) {
			return false
		}
	}
	return true
}

func (g *ValueGroup) Clone() Value {
	c := &ValueGroup{fill: g.fill, endFill: g.endFill, Entries: make([]GroupEntry, len(g.Entries))}
	for i, e := range g.Entries {
		if e.Key != nil {
			k := *e.Key
			c.Entries[i].Key = &k
		}
		if e.Val != nil {
			c.Entries[i].Val = e.Val.Clone()
		}
	}
	return c
}

func (g *ValueGroup) write(sb *strings.Builder) {
	sb.WriteByte('\\')
	for i, e := range g.Entries {
		fallback := ""
		if i > 0 {
			fallback = " "
		}
		if e.Key != nil {
			e.Key.fill.write(sb, fallback)
			sb.WriteString(e.Key.Text)
			sb.WriteByte(':')
			if e.Val != nil {
				e.Val.Fill().write(sb, "")
				e.Val.write(sb)
			}
			continue
		}
		e.Val.Fill().write(sb, fallback)
		e.Val.write(sb)
	}
	g.endFill.write(sb, "")
	sb.WriteByte('\\')
}

func (g *ValueGroup) recoverFill(other Value) {
	o, ok := other.(*ValueGroup)
	if !ok {
		return
	}
	g.fill.Recover(o.fill)
	g.endFill.Recover(o.endFill)
}

// parseValueGroup parses a \ ... \ group. Called only from constant
// definitions; groups are not general value forms.
func parseValueGroup(fill Fill, s span) (*ValueGroup, Fill, span, error) {
	rem, ok := eat(s, "\\")
	if !ok {
		return nil, fill, s, nil
	}
	g := &ValueGroup{fill: fill}
	itemFill, rem := parseFill(rem)
	for {
		if next, ok := eat(rem, "\\"); ok {
			g.endFill = itemFill
			after, rem2 := parseFill(next)
			return g, after, rem2, nil
		}
		if rem.empty() {
			return nil, fill, s, parseErrorf(rem, "unterminated value group")
		}

		// Keyed entry: key ':' value. A key scan can false-positive on a
		// bare value (e.g. a bare snake word), so require the colon.
		if key, rem2, ok, err := parseMapKey(itemFill, rem); err != nil {
			return nil, fill, s, err
		} else if ok {
			if rem3, hasColon := eat(rem2, ":"); hasColon {
				vFill, rem4 := parseFill(rem3)
				v, nextFill, rem5, err := parseValue(vFill, rem4)
				if err != nil {
					return nil, fill, s, err
				}
				if v == nil {
					return nil, fill, s, parseErrorf(rem4, "value group key %q has no value", key.Text)
				}
				k := key
				g.Entries = append(g.Entries, GroupEntry{Key: &k, Val: v})
				itemFill = nextFill
				rem = rem5
				continue
			}
		}

		v, nextFill, rem2, err := parseValue(itemFill, rem)
		if err != nil {
			return nil, fill, s, err
		}
		if v == nil {
			return nil, fill, s, parseErrorf(rem, "malformed value group entry")
		}
		g.Entries = append(g.Entries, GroupEntry{Val: v})
		itemFill = nextFill
		rem = rem2
	}
}
