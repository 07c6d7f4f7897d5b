package rowan

import (
	"fmt"
	"log"
	"sort"
)

// ConstantsBuffer holds the constants visible to one file, keyed by path
// (plain name for local and root-imported constants, alias::name for aliased
// imports).
type ConstantsBuffer struct {
	consts map[string]Value
}

func NewConstantsBuffer() *ConstantsBuffer {
	return &ConstantsBuffer{consts: make(map[string]Value)}
}

func (b *ConstantsBuffer) Get(path string) (Value, bool) {
	v, ok := b.consts[path]
	return v, ok
}

func (b *ConstantsBuffer) Set(name string, v Value) {
	b.consts[name] = v
}

// AddFrom merges another buffer's constants under the given alias. An empty
// alias or "_" merges into the root namespace. Existing entries win; a
// collision is logged.
func (b *ConstantsBuffer) AddFrom(alias string, other *ConstantsBuffer) {
	for name, v := range other.consts {
		key := name
		if alias != "" && alias != "_" {
			key = alias + "::" + name
		}
		if _, exists := b.consts[key]; exists {
			log.Printf("rowan: constant $%s already defined, keeping the existing definition", key)
			continue
		}
		b.consts[key] = v.Clone()
	}
}

// resolver replaces constants, expands spec invocations, and splices value
// groups within one file's values. In template mode (spec/macro definition
// bodies), @params, !markers, and spec invocations pass through untouched so
// they survive until invocation time.
type resolver struct {
	file      string
	consts    *ConstantsBuffer
	specs     *SpecsMap
	templates bool
}

func (r *resolver) lookupConstant(path string) (Value, error) {
	v, ok := r.consts.Get(path)
	if !ok {
		return nil, fmt.Errorf("constant $%s is not defined", path)
	}
	return v, nil
}

// resolveValue returns the resolved replacement for v. v itself may be
// mutated in place when only children change.
func (r *resolver) resolveValue(v Value) (Value, error) {
	switch t := v.(type) {
	case *ConstantRef:
		looked, err := r.lookupConstant(t.Path)
		if err != nil {
			return nil, err
		}
		if _, isGroup := looked.(*ValueGroup); isGroup {
			return nil, fmt.Errorf("constant $%s is a value group but is used where a single value is required", t.Path)
		}
		out := looked.Clone()
		*out.Fill() = t.fill
		return out, nil

	case *SpecParam:
		if r.templates {
			return t, nil
		}
		return nil, fmt.Errorf("spec parameter @%s used outside spec content", t.Name)

	case *Insertion:
		if r.templates {
			return t, nil
		}
		return nil, fmt.Errorf("insertion marker !%s used outside spec content", t.Name)

	case *SpecInvocation:
		if r.templates {
			return t, nil
		}
		out, err := r.expandSpec(t)
		if err != nil {
			return nil, err
		}
		return r.resolveValue(out)

	case *ValueGroup:
		for i, e := range t.Entries {
			if e.Val == nil {
				continue
			}
			rv, err := r.resolveValue(e.Val)
			if err != nil {
				return nil, err
			}
			t.Entries[i].Val = rv
		}
		return t, nil

	case *Array:
		return r.resolveArray(t)

	case *Tuple:
		for i, e := range t.Entries {
			rv, err := r.resolveValue(e)
			if err != nil {
				return nil, err
			}
			t.Entries[i] = rv
		}
		return t, nil

	case *Map:
		return r.resolveMap(t)

	case *Enum:
		if t.Payload != nil {
			p, err := r.resolveValue(t.Payload)
			if err != nil {
				return nil, err
			}
			t.Payload = p
		}
		return t, nil

	default:
		return v, nil
	}
}

// resolveArray resolves entries and splices group-valued constants in place.
func (r *resolver) resolveArray(a *Array) (Value, error) {
	out := make([]Value, 0, len(a.Entries))
	for _, e := range a.Entries {
		ref, isRef := e.(*ConstantRef)
		if !isRef {
			rv, err := r.resolveValue(e)
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
			continue
		}
		looked, err := r.lookupConstant(ref.Path)
		if err != nil {
			return nil, err
		}
		group, isGroup := looked.(*ValueGroup)
		if !isGroup {
			rv := looked.Clone()
			*rv.Fill() = ref.fill
			out = append(out, rv)
			continue
		}
		for i, ge := range group.Entries {
			if ge.Key != nil {
				return nil, fmt.Errorf("constant $%s holds keyed entries and cannot splice into an array", ref.Path)
			}
			rv, err := r.resolveValue(ge.Val.Clone())
			if err != nil {
				return nil, err
			}
			if i == 0 {
				*rv.Fill() = ref.fill
			}
			out = append(out, rv)
		}
	}
	a.Entries = out
	return a, nil
}

// resolveMap resolves entry keys and values and splices group-valued
// constants written as bare $path entries.
func (r *resolver) resolveMap(m *Map) (Value, error) {
	out := make([]MapEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		switch {
		case e.Key.Kind == KeyConstant && e.Val == nil:
			path := e.Key.Name()
			looked, err := r.lookupConstant(path)
			if err != nil {
				return nil, err
			}
			group, isGroup := looked.(*ValueGroup)
			if !isGroup {
				return nil, fmt.Errorf("constant $%s must be a value group to splice into a map", path)
			}
			for i, ge := range group.Entries {
				if ge.Key == nil {
					return nil, fmt.Errorf("constant $%s holds bare values and cannot splice into a map", path)
				}
				entry := MapEntry{Key: *ge.Key}
				if i == 0 {
					entry.Key.fill = e.Key.fill
				}
				if ge.Val != nil {
					rv, err := r.resolveValue(ge.Val.Clone())
					if err != nil {
						return nil, err
					}
					entry.Val = rv
				}
				out = append(out, entry)
			}

		case e.Key.Kind == KeyConstant:
			path := e.Key.Name()
			looked, err := r.lookupConstant(path)
			if err != nil {
				return nil, err
			}
			if _, isGroup := looked.(*ValueGroup); isGroup {
				return nil, fmt.Errorf("constant $%s is a value group but is used as a map key", path)
			}
			key := MapKey{fill: e.Key.fill, Kind: KeyField, Text: FormatValue(looked)}
			rv, err := r.resolveValue(e.Val)
			if err != nil {
				return nil, err
			}
			out = append(out, MapEntry{Key: key, Val: rv})

		case e.Key.Kind == KeyMarker || e.Key.Kind == KeyParam:
			if !r.templates {
				return nil, fmt.Errorf("map key %q used outside spec content", e.Key.Text)
			}
			entry := e
			if e.Val != nil {
				rv, err := r.resolveValue(e.Val)
				if err != nil {
					return nil, err
				}
				entry.Val = rv
			}
			out = append(out, entry)

		default:
			entry := e
			if e.Val != nil {
				rv, err := r.resolveValue(e.Val)
				if err != nil {
					return nil, err
				}
				entry.Val = rv
			}
			out = append(out, entry)
		}
	}
	m.Entries = out
	return m, nil
}

// resolveLoadable resolves a loadable's payload in place.
func (r *resolver) resolveLoadable(l *Loadable) error {
	if l.Payload == nil {
		return nil
	}
	p, err := r.resolveValue(l.Payload)
	if err != nil {
		return fmt.Errorf("in %s: %w", l.Id, err)
	}
	l.Payload = p
	return nil
}

// --- Spec invocation expansion ---

// specExpansion tracks one invocation's transient state.
type specExpansion struct {
	name       string
	defaults   map[string]Value
	overrides  map[string]Value
	insertions map[string]Value
	usedOv     map[string]bool
	usedIns    map[string]bool
}

// expandSpec clones the named spec's content, substitutes parameters
// (invocation override beats saved default), and splices insertion blocks at
// their markers. Unused overrides and insertions are warnings, never errors.
func (r *resolver) expandSpec(inv *SpecInvocation) (Value, error) {
	data, ok := r.specs.Get(inv.Name)
	if !ok {
		return nil, fmt.Errorf("spec *%s is not defined", inv.Name)
	}
	if data.Content == nil {
		return nil, fmt.Errorf("spec *%s has no content to invoke", inv.Name)
	}

	ex := &specExpansion{
		name:       inv.Name,
		defaults:   data.Defaults,
		overrides:  make(map[string]Value),
		insertions: make(map[string]Value),
		usedOv:     make(map[string]bool),
		usedIns:    make(map[string]bool),
	}
	if inv.Body != nil {
		for _, e := range inv.Body.Entries {
			switch e.Key.Kind {
			case KeyParam:
				rv, err := r.resolveValue(e.Val)
				if err != nil {
					return nil, err
				}
				ex.overrides[e.Key.Name()] = rv
			case KeyMarker:
				if e.Val == nil {
					log.Printf("rowan: spec *%s invocation names insertion !%s without a block, ignored", inv.Name, e.Key.Name())
					continue
				}
				// Insertion blocks resolve in template mode: a nested marker
				// is diagnosed during splicing, not here.
				tr := &resolver{file: r.file, consts: r.consts, specs: r.specs, templates: true}
				rv, err := tr.resolveValue(e.Val)
				if err != nil {
					return nil, err
				}
				ex.insertions[e.Key.Name()] = rv
			default:
				log.Printf("rowan: spec *%s invocation entry %q ignored (expected @param or !insertion)", inv.Name, e.Key.Text)
			}
		}
	}

	out, err := r.substitute(data.Content.Clone(), ex, false)
	if err != nil {
		return nil, err
	}
	ex.warnUnused()
	*out.Fill() = inv.fill
	return out, nil
}

func (ex *specExpansion) warnUnused() {
	var unused []string
	for name := range ex.overrides {
		if !ex.usedOv[name] {
			unused = append(unused, "@"+name)
		}
	}
	for name := range ex.insertions {
		if !ex.usedIns[name] {
			unused = append(unused, "!"+name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		log.Printf("rowan: spec *%s invocation has unused %s", ex.name, name)
	}
}

// substitute walks cloned spec content replacing @params and splicing
// insertion blocks. inInsertion guards against nested insertions: a marker
// found inside a spliced block is dropped with a warning.
func (r *resolver) substitute(v Value, ex *specExpansion, inInsertion bool) (Value, error) {
	switch t := v.(type) {
	case *SpecParam:
		if ov, ok := ex.overrides[t.Name]; ok {
			ex.usedOv[t.Name] = true
			out := ov.Clone()
			*out.Fill() = t.fill
			return out, nil
		}
		if def, ok := ex.defaults[t.Name]; ok {
			out := def.Clone()
			*out.Fill() = t.fill
			return out, nil
		}
		return nil, fmt.Errorf("spec *%s parameter @%s has no value", ex.name, t.Name)

	case *Array:
		out := make([]Value, 0, len(t.Entries))
		for _, e := range t.Entries {
			mark, isMark := e.(*Insertion)
			if !isMark {
				rv, err := r.substitute(e, ex, inInsertion)
				if err != nil {
					return nil, err
				}
				out = append(out, rv)
				continue
			}
			if inInsertion {
				log.Printf("rowan: spec *%s insertion !%s nested inside another insertion, dropped", ex.name, mark.Name)
				continue
			}
			block, ok := ex.insertions[mark.Name]
			if !ok {
				continue
			}
			ex.usedIns[mark.Name] = true
			if arr, isArr := block.(*Array); isArr {
				first := true
				for _, be := range arr.Entries {
					if nested, isNested := be.(*Insertion); isNested {
						log.Printf("rowan: spec *%s insertion !%s nested inside another insertion, dropped", ex.name, nested.Name)
						continue
					}
					rv, err := r.substitute(be.Clone(), ex, true)
					if err != nil {
						return nil, err
					}
					if first {
						*rv.Fill() = mark.fill
						first = false
					}
					out = append(out, rv)
				}
				continue
			}
			rv, err := r.substitute(block.Clone(), ex, true)
			if err != nil {
				return nil, err
			}
			*rv.Fill() = mark.fill
			out = append(out, rv)
		}
		t.Entries = out
		return t, nil

	case *Tuple:
		for i, e := range t.Entries {
			rv, err := r.substitute(e, ex, inInsertion)
			if err != nil {
				return nil, err
			}
			t.Entries[i] = rv
		}
		return t, nil

	case *Map:
		return r.substituteMap(t, ex, inInsertion)

	case *Enum:
		if t.Payload != nil {
			p, err := r.substitute(t.Payload, ex, inInsertion)
			if err != nil {
				return nil, err
			}
			t.Payload = p
		}
		return t, nil

	default:
		return v, nil
	}
}

func (r *resolver) substituteMap(m *Map, ex *specExpansion, inInsertion bool) (Value, error) {
	out := make([]MapEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Key.Kind == KeyParam {
			return nil, fmt.Errorf("spec *%s uses @%s as a map key, which is not supported", ex.name, e.Key.Name())
		}
		if e.Key.Kind != KeyMarker {
			entry := e
			if e.Val != nil {
				rv, err := r.substitute(e.Val, ex, inInsertion)
				if err != nil {
					return nil, err
				}
				entry.Val = rv
			}
			out = append(out, entry)
			continue
		}

		name := e.Key.Name()
		if inInsertion {
			log.Printf("rowan: spec *%s insertion !%s nested inside another insertion, dropped", ex.name, name)
			continue
		}
		block, ok := ex.insertions[name]
		if !ok && e.Val != nil {
			// Content-side default block for the slot.
			block, ok = e.Val, true
		}
		if !ok {
			continue
		}
		ex.usedIns[name] = true
		blockMap, isMap := block.(*Map)
		if !isMap {
			return nil, fmt.Errorf("spec *%s insertion !%s into a map must be a map", ex.name, name)
		}
		first := true
		for _, be := range blockMap.Entries {
			if be.Key.Kind == KeyMarker {
				log.Printf("rowan: spec *%s insertion !%s nested inside another insertion, dropped", ex.name, be.Key.Name())
				continue
			}
			entry := MapEntry{Key: be.Key}
			if first {
				entry.Key.fill = e.Key.fill
				first = false
			}
			if be.Val != nil {
				rv, err := r.substitute(be.Val.Clone(), ex, true)
				if err != nil {
					return nil, err
				}
				entry.Val = rv
			}
			out = append(out, entry)
		}
	}
	m.Entries = out
	return m, nil
}
