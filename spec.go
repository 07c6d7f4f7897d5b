package rowan

import (
	"fmt"
	"log"
	"sort"
)

// SpecData is one named value template: content with @param placeholders and
// !insertion markers, plus the saved parameter defaults. Invocation-site
// overrides are transient and never stored here.
type SpecData struct {
	Content  Value // nil when the spec declares no '*' entry
	Defaults map[string]Value
}

func (d *SpecData) clone() *SpecData {
	c := &SpecData{Defaults: make(map[string]Value, len(d.Defaults))}
	if d.Content != nil {
		c.Content = d.Content.Clone()
	}
	for k, v := range d.Defaults {
		c.Defaults[k] = v.Clone()
	}
	return c
}

// SpecsMap holds the specs visible to one file, keyed by path (plain name
// for local and root-imported specs, alias::name for aliased imports).
type SpecsMap struct {
	specs map[string]*SpecData
}

func NewSpecsMap() *SpecsMap {
	return &SpecsMap{specs: make(map[string]*SpecData)}
}

func (m *SpecsMap) Get(path string) (*SpecData, bool) {
	d, ok := m.specs[path]
	return d, ok
}

// AddFrom merges another map's specs under the given alias. An empty alias
// or "_" merges into the root namespace. Existing entries win; a collision
// is logged.
func (m *SpecsMap) AddFrom(alias string, other *SpecsMap) {
	for name, d := range other.specs {
		key := name
		if alias != "" && alias != "_" {
			key = alias + "::" + name
		}
		if _, exists := m.specs[key]; exists {
			log.Printf("rowan: spec *%s already defined, keeping the existing definition", key)
			continue
		}
		m.specs[key] = d.clone()
	}
}

// AddDef records a spec definition, resolving its derivation base if any.
// Returns an error for an unknown base or a redefinition.
func (m *SpecsMap) AddDef(def *SpecDef) error {
	if _, exists := m.specs[def.Name]; exists {
		return fmt.Errorf("spec *%s is defined twice", def.Name)
	}

	data := &SpecData{Defaults: make(map[string]Value)}
	if def.Base != "" {
		base, ok := m.specs[def.Base]
		if !ok {
			return fmt.Errorf("spec *%s derives from unknown spec *%s", def.Name, def.Base)
		}
		data = base.clone()
	}

	for _, e := range def.Body.Entries {
		switch e.Key.Kind {
		case KeyContent:
			data.Content = e.Val.Clone()
		case KeyParam:
			data.Defaults[e.Key.Name()] = e.Val.Clone()
		default:
			log.Printf("rowan: spec *%s body entry %q ignored (expected '*' content or '@param' defaults)", def.Name, e.Key.Text)
		}
	}

	m.warnUnusedParams(def.Name, data)
	m.specs[def.Name] = data
	return nil
}

// warnUnusedParams diagnoses parameters declared with a default but never
// referenced in the content.
func (m *SpecsMap) warnUnusedParams(name string, data *SpecData) {
	if data.Content == nil || len(data.Defaults) == 0 {
		return
	}
	used := make(map[string]bool)
	collectParamUses(data.Content, used)
	var unused []string
	for p := range data.Defaults {
		if !used[p] {
			unused = append(unused, p)
		}
	}
	sort.Strings(unused)
	for _, p := range unused {
		log.Printf("rowan: spec *%s declares unused parameter @%s", name, p)
	}
}

func collectParamUses(v Value, used map[string]bool) {
	switch t := v.(type) {
	case *SpecParam:
		used[t.Name] = true
	case *Array:
		for _, e := range t.Entries {
			collectParamUses(e, used)
		}
	case *Tuple:
		for _, e := range t.Entries {
			collectParamUses(e, used)
		}
	case *Map:
		for _, e := range t.Entries {
			if e.Key.Kind == KeyParam {
				used[e.Key.Name()] = true
			}
			if e.Val != nil {
				collectParamUses(e.Val, used)
			}
		}
	case *Enum:
		if t.Payload != nil {
			collectParamUses(t.Payload, used)
		}
	}
}
