package rowan

// LayerInsert is the outcome of one SceneLayer.Insert call.
type LayerInsert int

const (
	// LayerNoChange: the child was already at the cursor.
	LayerNoChange LayerInsert = iota
	// LayerAdded: the child was not present; a fresh empty subtree was
	// inserted at the cursor.
	LayerAdded
	// LayerRearranged: the child existed later in the suffix and was swapped
	// into place, keeping its subtree.
	LayerRearranged
)

// SceneLayerData is one child slot of a layer: the child's full path and its
// own sub-layer.
type SceneLayerData struct {
	ID    ScenePath
	Layer *SceneLayer
}

// SceneLayer records the shape of one scene node: its ordered child paths
// and their subtrees, independent of live entities. An update pass
// (StartUpdate, Insert per child in new declaration order, EndUpdate)
// reconciles the stored order against a re-extracted document in a single
// forward scan.
type SceneLayer struct {
	children        []SceneLayerData
	cursor          int
	updating        bool
	totalChildNodes int
}

// TotalChildNodes returns the subtree size, excluding the node itself.
func (l *SceneLayer) TotalChildNodes() int { return l.totalChildNodes }

// Children returns the ordered child slots. The slice is owned by the layer.
func (l *SceneLayer) Children() []SceneLayerData { return l.children }

// Get returns the sub-layer for a direct child path.
func (l *SceneLayer) Get(id ScenePath) (*SceneLayer, bool) {
	for _, c := range l.children {
		if c.ID == id {
			return c.Layer, true
		}
	}
	return nil, false
}

// StartUpdate begins a reconciliation pass. expectedCount sizes the child
// slice when the layer is fresh.
func (l *SceneLayer) StartUpdate(expectedCount int) {
	if l.children == nil && expectedCount > 0 {
		l.children = make([]SceneLayerData, 0, expectedCount)
	}
	l.cursor = 0
	l.updating = true
}

// Insert places the child with the given path at the cursor. Children before
// the cursor were placed earlier this pass and are never re-matched; the
// scan covers only the suffix. Must be called once per child in the new
// declaration order, between StartUpdate and EndUpdate.
func (l *SceneLayer) Insert(id ScenePath) LayerInsert {
	if !l.updating {
		panic("rowan: SceneLayer.Insert outside an update pass")
	}
	for i := l.cursor; i < len(l.children); i++ {
		if l.children[i].ID != id {
			continue
		}
		if i == l.cursor {
			l.cursor++
			return LayerNoChange
		}
		l.children[l.cursor], l.children[i] = l.children[i], l.children[l.cursor]
		l.cursor++
		return LayerRearranged
	}
	l.children = append(l.children, SceneLayerData{})
	copy(l.children[l.cursor+1:], l.children[l.cursor:])
	l.children[l.cursor] = SceneLayerData{ID: id, Layer: &SceneLayer{}}
	l.cursor++
	return LayerAdded
}

// EndUpdate finalizes the pass, returning the children that were present
// before the pass but never inserted during it. Their subtrees are detached
// from the layer; the caller owns cleanup. Child layers must have finished
// their own passes first, since the subtree count is recomputed here.
func (l *SceneLayer) EndUpdate() []SceneLayerData {
	if !l.updating {
		panic("rowan: SceneLayer.EndUpdate outside an update pass")
	}
	l.updating = false
	var removed []SceneLayerData
	if l.cursor < len(l.children) {
		removed = append(removed, l.children[l.cursor:]...)
		l.children = l.children[:l.cursor]
	}
	l.totalChildNodes = 0
	for _, c := range l.children {
		l.totalChildNodes += 1 + c.Layer.totalChildNodes
	}
	return removed
}

// Traverse visits the subtree in pre-order, depth 0 for direct children.
func (l *SceneLayer) Traverse(fn func(id ScenePath, layer *SceneLayer, depth int)) {
	l.traverse(fn, 0)
}

func (l *SceneLayer) traverse(fn func(id ScenePath, layer *SceneLayer, depth int), depth int) {
	for _, c := range l.children {
		fn(c.ID, c.Layer, depth)
		c.Layer.traverse(fn, depth+1)
	}
}

// CollectPaths appends every path in the subtree to out, pre-order.
func (l *SceneLayer) CollectPaths(out []ScenePath) []ScenePath {
	for _, c := range l.children {
		out = append(out, c.ID)
		out = c.Layer.CollectPaths(out)
	}
	return out
}

// SceneRegistry indexes scene shapes by root ref, one SceneLayer per scene.
// Populated during scene extraction, read during materialization, patched in
// place on hot reload.
type SceneRegistry struct {
	scenes map[SceneRef]*SceneLayer
}

func NewSceneRegistry() *SceneRegistry {
	return &SceneRegistry{scenes: make(map[SceneRef]*SceneLayer)}
}

// Get returns the layer for a scene root ref.
func (r *SceneRegistry) Get(ref SceneRef) (*SceneLayer, bool) {
	l, ok := r.scenes[ref]
	return l, ok
}

// GetOrCreate returns the layer for a scene root ref, creating an empty one
// on first use.
func (r *SceneRegistry) GetOrCreate(ref SceneRef) *SceneLayer {
	if l, ok := r.scenes[ref]; ok {
		return l
	}
	l := &SceneLayer{}
	r.scenes[ref] = l
	return l
}

// Remove drops a scene root, returning its layer for cleanup.
func (r *SceneRegistry) Remove(ref SceneRef) (*SceneLayer, bool) {
	l, ok := r.scenes[ref]
	if ok {
		delete(r.scenes, ref)
	}
	return l, ok
}

// Roots returns every registered scene root ref for one file.
func (r *SceneRegistry) Roots(file string) []SceneRef {
	var out []SceneRef
	for ref := range r.scenes {
		if ref.File == file {
			out = append(out, ref)
		}
	}
	return out
}
