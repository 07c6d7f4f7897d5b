package rowan

import (
	"fmt"
	"log"
)

// commandsPath is the pseudo node path commands diff under, so hot reload
// reapplies only the commands that actually changed.
const commandsPath ScenePath = "#commands"

// extractor turns one promoted file's commands and scenes into registry,
// buffer, and builder state. Runs once per promotion, including hot-reload
// re-promotions; all operations are incremental diffs against prior state.
type extractor struct {
	tree     EntityTree
	types    *TypeRegistry
	registry *SceneRegistry
	buffer   *LoadableBuffer
	builder  *SceneBuilder
}

func (e *extractor) extractFile(pf *ProcessedFile) {
	e.extractCommands(pf)
	e.extractScenes(pf)
}

// extractCommands resolves and applies the file's #commands loadables in
// declaration order. Commands diff like node loadables: an unchanged command
// is not reapplied on hot reload.
func (e *extractor) extractCommands(pf *ProcessedFile) {
	ref := SceneRef{File: pf.File, Path: commandsPath}
	r := pf.resolver(false)
	idx := 0
	for _, cmd := range pf.Doc.Commands() {
		l := cmd.Clone()
		if err := r.resolveLoadable(l); err != nil {
			log.Printf("rowan: command in %s: %v", pf.File, err)
			continue
		}
		res := e.buffer.Insert(ref, idx, l)
		idx++
		if res != BufferAdded && res != BufferChanged {
			continue
		}
		if err := e.types.Apply(e.tree, NoEntity, l); err != nil {
			log.Printf("rowan: command %s in %s: %v", l.Id, pf.File, err)
		}
	}
	e.buffer.EndInsertion(ref, idx)
}

// extractScenes reconciles the file's #scenes against the registry,
// propagating structural diffs to live instances and loadable diffs to the
// buffer. Scenes that fail to expand or resolve are skipped; the previous
// registry state for them is left intact.
func (e *extractor) extractScenes(pf *ProcessedFile) {
	prevRoots := e.registry.Roots(pf.File)
	seen := make(map[SceneRef]bool)
	r := pf.resolver(false)

	for _, root := range pf.Doc.Scenes() {
		work := root.Clone()
		entries, err := pf.Macros.ExpandEntries(work.Entries)
		if err == nil {
			work.Entries = entries
			err = checkMacroCommands(work.Entries)
		}
		if err == nil {
			err = resolveSceneEntries(work.Entries, r)
		}
		if err != nil {
			log.Printf("rowan: scene %s in %s: %v", work.Name, pf.File, err)
			continue
		}

		ref := SceneRef{File: pf.File, Path: ScenePath(work.ID())}
		if seen[ref] {
			log.Printf("rowan: scene %s defined twice in %s, keeping the first", work.Name, pf.File)
			continue
		}
		seen[ref] = true
		e.updateNode(pf.File, ref.Path, work, e.registry.GetOrCreate(ref))
	}

	for _, ref := range prevRoots {
		if seen[ref] {
			continue
		}
		layer, _ := e.registry.Remove(ref)
		e.buffer.RemoveRef(ref)
		if layer != nil {
			for _, p := range layer.CollectPaths(nil) {
				e.buffer.RemoveRef(SceneRef{File: pf.File, Path: p})
			}
		}
		e.builder.SceneRemoved(ref)
	}
}

// checkMacroCommands rejects ^/!/- entries that survived macro expansion;
// they are only meaningful inside a macro call body.
func checkMacroCommands(entries []SceneEntry) error {
	for _, entry := range entries {
		switch t := entry.(type) {
		case *MacroCommand:
			return fmt.Errorf("macro command %c%s outside a macro call body", t.Kind, t.Id)
		case *SceneNode:
			if err := checkMacroCommands(t.Entries); err != nil {
				return fmt.Errorf("in node %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// updateNode stores one node's loadables and reconciles its child list, then
// recurses. Children are inserted in new declaration order so the layer's
// single-pass reconciliation applies.
func (e *extractor) updateNode(file string, path ScenePath, node *SceneNode, layer *SceneLayer) {
	nref := SceneRef{File: file, Path: path}
	loads := node.Loadables()
	for i, l := range loads {
		e.buffer.Insert(nref, i, l)
	}
	e.buffer.EndInsertion(nref, len(loads))

	children := node.Children()
	layer.StartUpdate(len(children))
	childSeen := make(map[string]bool, len(children))
	for i, child := range children {
		if childSeen[child.ID()] {
			log.Printf("rowan: node %s has duplicate child %s, paths will collide", nref, child.Name)
		}
		childSeen[child.ID()] = true

		childPath := path.Extend(child.ID())
		switch layer.Insert(childPath) {
		case LayerAdded:
			e.builder.NodeAdded(file, childPath, i)
		case LayerRearranged:
			e.builder.NodeRearranged(file, childPath, i)
		}
		sub, _ := layer.Get(childPath)
		e.updateNode(file, childPath, child, sub)
	}
	for _, rm := range layer.EndUpdate() {
		subtree := rm.Layer.CollectPaths(nil)
		e.builder.NodeRemoved(file, rm.ID, subtree)
		e.buffer.RemoveRef(SceneRef{File: file, Path: rm.ID})
		for _, p := range subtree {
			e.buffer.RemoveRef(SceneRef{File: file, Path: p})
		}
	}
}
