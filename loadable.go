package rowan

import "strings"

// Loadable is one instruction in a #commands section or scene node: a
// CamelCase type identifier plus an optional tuple or map payload, e.g.
// Width(50.0) or Animated{duration:0.5}. A bare identifier is a unit
// instruction; Width() and Width are the same loadable.
type Loadable struct {
	fill    Fill
	Id      string
	Payload Value // nil, *Tuple, or *Map
}

// TypeID returns the identifier used to look up the registered type.
func (l *Loadable) TypeID() TypeID { return TypeID(l.Id) }

// Equals reports identifier and payload equality, ignoring fill. A nil
// payload equals an empty tuple payload.
func (l *Loadable) Equals(other *Loadable) bool {
	return other != nil && other.Id == l.Id && payloadEquals(l.Payload, other.Payload)
}

// Comparable reports whether the loadable still contains unresolved markers
// ($const, @param, !slot). Unresolved loadables cannot be diffed against
// live state.
func (l *Loadable) Comparable() bool {
	return l.Payload == nil || valueResolved(l.Payload)
}

func (l *Loadable) Clone() *Loadable {
	c := &Loadable{fill: l.fill, Id: l.Id}
	if l.Payload != nil {
		c.Payload = l.Payload.Clone()
	}
	return c
}

func (l *Loadable) write(sb *strings.Builder) {
	sb.WriteString(l.Id)
	if l.Payload != nil && !isUnitPayload(l.Payload) {
		l.Payload.write(sb)
	}
}

func (l *Loadable) recoverFill(other *Loadable) {
	l.fill.Recover(other.fill)
	if l.Payload != nil && other.Payload != nil {
		l.Payload.recoverFill(other.Payload)
	}
}

// String renders the loadable in canonical form, for logs and errors.
func (l *Loadable) String() string {
	var sb strings.Builder
	l.write(&sb)
	return sb.String()
}

// parseLoadable scans a loadable at the cursor. A miss is not an error.
func parseLoadable(fill Fill, s span) (*Loadable, Fill, span, error) {
	id, rem, ok := scanCamel(s)
	if !ok {
		return nil, fill, s, nil
	}
	l := &Loadable{fill: fill, Id: id}
	switch rem.peek() {
	case '(':
		payload, nextFill, rem2, err := parseTuple(Fill{}, rem)
		if err != nil {
			return nil, fill, s, err
		}
		l.Payload = payload
		return l, nextFill, rem2, nil
	case '{':
		payload, nextFill, rem2, err := parseMap(Fill{}, rem)
		if err != nil {
			return nil, fill, s, err
		}
		l.Payload = payload
		return l, nextFill, rem2, nil
	default:
		next, rem2 := parseFill(rem)
		return l, next, rem2, nil
	}
}

// valueResolved reports whether v contains no unresolved references.
func valueResolved(v Value) bool {
	switch t := v.(type) {
	case *ConstantRef, *SpecParam, *Insertion, *SpecInvocation, *ValueGroup:
		return false
	case *Array:
		for _, e := range t.Entries {
			if !valueResolved(e) {
				return false
			}
		}
	case *Tuple:
		for _, e := range t.Entries {
			if !valueResolved(e) {
				return false
			}
		}
	case *Map:
		for _, e := range t.Entries {
			if e.Key.Kind != KeyField {
				return false
			}
			if e.Val != nil && !valueResolved(e.Val) {
				return false
			}
		}
	case *Enum:
		if t.Payload != nil {
			return valueResolved(t.Payload)
		}
	}
	return true
}
