package rowan

import (
	"fmt"
	"log"
)

// maxMacroDepth bounds nested macro expansion so a self-referential macro
// fails with a diagnostic instead of recursing forever.
const maxMacroDepth = 32

// SceneMacroData is one named scene-subtree template. Entries are stored
// with constants already resolved against the defining file.
type SceneMacroData struct {
	Entries []SceneEntry
}

func (d *SceneMacroData) clone() *SceneMacroData {
	c := &SceneMacroData{Entries: make([]SceneEntry, len(d.Entries))}
	for i, e := range d.Entries {
		c.Entries[i] = cloneSceneEntry(e)
	}
	return c
}

// SceneMacrosMap holds the scene macros visible to one file, keyed by path.
type SceneMacrosMap struct {
	macros map[string]*SceneMacroData
}

func NewSceneMacrosMap() *SceneMacrosMap {
	return &SceneMacrosMap{macros: make(map[string]*SceneMacroData)}
}

func (m *SceneMacrosMap) Get(path string) (*SceneMacroData, bool) {
	d, ok := m.macros[path]
	return d, ok
}

// AddFrom merges another map's macros under the given alias. Existing
// entries win; a collision is logged.
func (m *SceneMacrosMap) AddFrom(alias string, other *SceneMacrosMap) {
	for name, d := range other.macros {
		key := name
		if alias != "" && alias != "_" {
			key = alias + "::" + name
		}
		if _, exists := m.macros[key]; exists {
			log.Printf("rowan: scene macro +%s already defined, keeping the existing definition", key)
			continue
		}
		m.macros[key] = d.clone()
	}
}

// AddDef records a scene macro definition, resolving constants and specs in
// its loadables against the defining file.
func (m *SceneMacrosMap) AddDef(def *SceneMacroDef, r *resolver) error {
	if _, exists := m.macros[def.Name]; exists {
		return fmt.Errorf("scene macro +%s is defined twice", def.Name)
	}
	data := &SceneMacroData{Entries: make([]SceneEntry, len(def.Entries))}
	for i, e := range def.Entries {
		data.Entries[i] = cloneSceneEntry(e)
	}
	if err := resolveSceneEntries(data.Entries, r); err != nil {
		return fmt.Errorf("in scene macro +%s: %w", def.Name, err)
	}
	m.macros[def.Name] = data
	return nil
}

// resolveSceneEntries resolves loadable payloads in place throughout a
// subtree. Macro calls and macro commands pass through untouched.
func resolveSceneEntries(entries []SceneEntry, r *resolver) error {
	for _, e := range entries {
		switch t := e.(type) {
		case *Loadable:
			if err := r.resolveLoadable(t); err != nil {
				return err
			}
		case *SceneNode:
			if err := resolveSceneEntries(t.Entries, r); err != nil {
				return fmt.Errorf("in node %s: %w", t.Name, err)
			}
		case *MacroCall:
			if err := resolveSceneEntries(t.Entries, r); err != nil {
				return fmt.Errorf("in macro call +%s: %w", t.Path, err)
			}
		}
	}
	return nil
}

// ExpandEntries replaces every macro call in a scene entry list with its
// merged template content. Macro commands survive only inside call bodies;
// one remaining after expansion is the caller's error to raise.
func (m *SceneMacrosMap) ExpandEntries(entries []SceneEntry) ([]SceneEntry, error) {
	return m.expandEntries(entries, 0)
}

func (m *SceneMacrosMap) expandEntries(entries []SceneEntry, depth int) ([]SceneEntry, error) {
	if depth > maxMacroDepth {
		return nil, fmt.Errorf("scene macro expansion exceeded depth %d (recursive macro?)", maxMacroDepth)
	}
	out := make([]SceneEntry, 0, len(entries))
	for _, e := range entries {
		switch t := e.(type) {
		case *MacroCall:
			expanded, err := m.expandCall(t, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		case *SceneNode:
			sub, err := m.expandEntries(t.Entries, depth)
			if err != nil {
				return nil, fmt.Errorf("in node %s: %w", t.Name, err)
			}
			t.Entries = sub
			out = append(out, t)
		default:
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *SceneMacrosMap) expandCall(call *MacroCall, depth int) ([]SceneEntry, error) {
	data, ok := m.Get(call.Path)
	if !ok {
		return nil, fmt.Errorf("scene macro +%s is not defined", call.Path)
	}

	tmpl := data.clone()
	merged, err := m.expandEntries(tmpl.Entries, depth+1)
	if err != nil {
		return nil, fmt.Errorf("in macro +%s: %w", call.Path, err)
	}
	if call.HasBody {
		edits, err := m.expandEntries(call.Entries, depth+1)
		if err != nil {
			return nil, fmt.Errorf("in macro call +%s: %w", call.Path, err)
		}
		merged = mergeMacroEntries(merged, edits, call.Path)
	}
	if len(merged) > 0 {
		merged[0].entryFill().Recover(call.fill)
	}
	return merged, nil
}

// mergeMacroEntries applies invocation-site edits to an expanded template:
// same-id loadables are replaced in place, same-id child nodes merge
// recursively, new entries append, and ^/!/- commands reorder or remove
// template loadables.
func mergeMacroEntries(tmpl, edits []SceneEntry, path string) []SceneEntry {
	for _, e := range edits {
		switch t := e.(type) {
		case *Loadable:
			replaced := false
			for i, te := range tmpl {
				if tl, ok := te.(*Loadable); ok && tl.Id == t.Id {
					t.fill.Recover(tl.fill)
					tmpl[i] = t
					replaced = true
					break
				}
			}
			if !replaced {
				tmpl = append(tmpl, t)
			}
		case *SceneNode:
			mergedInto := false
			for _, te := range tmpl {
				if tn, ok := te.(*SceneNode); ok && tn.ID() == t.ID() {
					tn.Entries = mergeMacroEntries(tn.Entries, t.Entries, path)
					mergedInto = true
					break
				}
			}
			if !mergedInto {
				tmpl = append(tmpl, t)
			}
		case *MacroCommand:
			tmpl = applyMacroCommand(tmpl, t, path)
		default:
			tmpl = append(tmpl, e)
		}
	}
	return tmpl
}

func applyMacroCommand(tmpl []SceneEntry, cmd *MacroCommand, path string) []SceneEntry {
	idx := -1
	for i, te := range tmpl {
		if tl, ok := te.(*Loadable); ok && tl.Id == cmd.Id {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Printf("rowan: macro call +%s command %c%s has no matching loadable, ignored", path, cmd.Kind, cmd.Id)
		return tmpl
	}
	target := tmpl[idx]
	switch cmd.Kind {
	case RemoveLoadable:
		return append(tmpl[:idx], tmpl[idx+1:]...)
	case MoveToTop:
		copy(tmpl[1:idx+1], tmpl[:idx])
		tmpl[0] = target
	case MoveToBottom:
		last := lastLoadableIndex(tmpl)
		copy(tmpl[idx:last], tmpl[idx+1:last+1])
		tmpl[last] = target
	}
	return tmpl
}

func lastLoadableIndex(entries []SceneEntry) int {
	last := 0
	for i, e := range entries {
		if _, ok := e.(*Loadable); ok {
			last = i
		}
	}
	return last
}
