package rowan

import "log"

// SceneInstance is one live materialization of a scene: the root entity plus
// a path-to-entity map for every spawned node. Owned by the builder's active
// stack while under construction, then by the per-ref live set until the
// root entity dies.
type SceneInstance struct {
	ref         SceneRef
	root        Entity
	nodes       map[ScenePath]Entity
	initializer NodeInitializer
	capacity    int
}

// Ref returns the scene root ref this instance materializes.
func (s *SceneInstance) Ref() SceneRef { return s.ref }

// Root returns the root entity.
func (s *SceneInstance) Root() Entity { return s.root }

// Entity returns the live entity for a node path within the scene.
func (s *SceneInstance) Entity(path ScenePath) (Entity, bool) {
	e, ok := s.nodes[path]
	return e, ok
}

func (s *SceneInstance) reset(ref SceneRef, root Entity, init NodeInitializer, capacity int) {
	s.ref = ref
	s.root = root
	s.initializer = init
	if s.nodes == nil || capacity > s.capacity {
		s.nodes = make(map[ScenePath]Entity, capacity)
		s.capacity = capacity
	} else {
		clear(s.nodes)
	}
}

// SceneBuilder materializes registry shapes into live entity hierarchies
// and keeps every live copy synchronized with hot-reload registry diffs.
type SceneBuilder struct {
	tree     EntityTree
	registry *SceneRegistry
	buffer   *LoadableBuffer
	manifest *ManifestMap

	active []*SceneInstance
	live   map[SceneRef][]*SceneInstance
	cache  []*SceneInstance
}

func NewSceneBuilder(tree EntityTree, registry *SceneRegistry, buffer *LoadableBuffer, manifest *ManifestMap) *SceneBuilder {
	return &SceneBuilder{
		tree:     tree,
		registry: registry,
		buffer:   buffer,
		manifest: manifest,
		live:     make(map[SceneRef][]*SceneInstance),
	}
}

// Active returns the scene instance currently under construction, if any.
// Nested scene spawns use this to locate ancestor instances.
func (b *SceneBuilder) Active() (*SceneInstance, bool) {
	if len(b.active) == 0 {
		return nil, false
	}
	return b.active[len(b.active)-1], true
}

// Instances returns every live instance of a scene root ref.
func (b *SceneBuilder) Instances(ref SceneRef) []*SceneInstance {
	return b.live[b.manifest.ResolveRef(ref)]
}

// acquire reuses a cached instance whose capacity covers the node count,
// else allocates.
func (b *SceneBuilder) acquire(ref SceneRef, root Entity, init NodeInitializer, capacity int) *SceneInstance {
	for i, inst := range b.cache {
		if inst.capacity >= capacity {
			b.cache = append(b.cache[:i], b.cache[i+1:]...)
			inst.reset(ref, root, init, capacity)
			return inst
		}
	}
	inst := &SceneInstance{}
	inst.reset(ref, root, init, capacity)
	return inst
}

// BuildScene materializes the scene at ref under the given root entity,
// which must already exist. ref must address a scene root; its file may be a
// manifest key. Returns false, with a log line, when the ref is not a root
// or the scene is not in the registry (file not loaded yet).
func (b *SceneBuilder) BuildScene(root Entity, ref SceneRef, init NodeInitializer) bool {
	ref = b.manifest.ResolveRef(ref)
	if !ref.IsRoot() {
		log.Printf("rowan: BuildScene requires a root ref, got %s", ref)
		return false
	}
	layer, ok := b.registry.Get(ref)
	if !ok {
		log.Printf("rowan: scene %s not found (file not loaded?)", ref)
		return false
	}

	inst := b.acquire(ref, root, init, layer.TotalChildNodes()+1)
	b.active = append(b.active, inst)
	defer func() {
		b.active = b.active[:len(b.active)-1]
		b.live[ref] = append(b.live[ref], inst)
	}()

	inst.nodes[ref.Path] = root
	if init != nil {
		init(b.tree, root, ref)
	}
	b.buffer.Subscribe(ref, root)

	// Pre-order traversal; hierarchy is reconstructed from path-depth
	// deltas against a parent stack, since layers store no parent pointers.
	stack := []Entity{root}
	counts := []int{0}
	layer.Traverse(func(id ScenePath, sub *SceneLayer, depth int) {
		stack = stack[:depth+1]
		counts = counts[:depth+1]
		parent := stack[depth]

		child := b.tree.SpawnEmpty()
		if err := b.tree.InsertChild(parent, counts[depth], child); err != nil {
			log.Printf("rowan: inserting scene node %s: %v", id, err)
		}
		counts[depth]++

		nodeRef := SceneRef{File: ref.File, Path: id}
		inst.nodes[id] = child
		if init != nil {
			init(b.tree, child, nodeRef)
		}
		b.buffer.Subscribe(nodeRef, child)

		stack = append(stack, child)
		counts = append(counts, 0)
	})
	return true
}

// --- Hot-reload structural edits ---
// Each edit applies to every live instance of the affected scene; a scene
// definition can be instantiated many times and all copies must track the
// file identically.

func (b *SceneBuilder) instancesForPath(file string, path ScenePath) []*SceneInstance {
	return b.live[SceneRef{File: file, Path: ScenePath(path.First())}]
}

// NodeAdded spawns a node that appeared in the document at the given child
// index of its parent, in every live instance.
func (b *SceneBuilder) NodeAdded(file string, path ScenePath, index int) {
	for _, inst := range b.instancesForPath(file, path) {
		parent, ok := inst.nodes[path.Parent()]
		if !ok || !b.tree.Alive(parent) {
			log.Printf("rowan: cannot add node %s, parent missing in instance of %s", path, inst.ref)
			continue
		}
		child := b.tree.SpawnEmpty()
		if err := b.tree.InsertChild(parent, index, child); err != nil {
			log.Printf("rowan: inserting hot-reloaded node %s: %v", path, err)
			continue
		}
		inst.nodes[path] = child
		nodeRef := SceneRef{File: file, Path: path}
		if inst.initializer != nil {
			inst.initializer(b.tree, child, nodeRef)
		}
		b.buffer.Subscribe(nodeRef, child)
	}
}

// NodeRearranged moves an existing node to a new child index of its parent,
// in every live instance.
func (b *SceneBuilder) NodeRearranged(file string, path ScenePath, index int) {
	for _, inst := range b.instancesForPath(file, path) {
		entity, ok := inst.nodes[path]
		parent, pok := inst.nodes[path.Parent()]
		if !ok || !pok || !b.tree.Alive(entity) || !b.tree.Alive(parent) {
			log.Printf("rowan: cannot rearrange node %s in instance of %s", path, inst.ref)
			continue
		}
		if err := b.tree.InsertChild(parent, index, entity); err != nil {
			log.Printf("rowan: rearranging node %s: %v", path, err)
		}
	}
}

// NodeRemoved despawns a node that disappeared from the document, in every
// live instance. removedSubtree lists the node's descendant paths so the
// instance maps and subscriptions are purged with it.
func (b *SceneBuilder) NodeRemoved(file string, path ScenePath, removedSubtree []ScenePath) {
	for _, inst := range b.instancesForPath(file, path) {
		entity, ok := inst.nodes[path]
		if ok && b.tree.Alive(entity) {
			b.tree.Despawn(entity)
		}
		for _, p := range append([]ScenePath{path}, removedSubtree...) {
			if e, ok := inst.nodes[p]; ok {
				b.buffer.Unsubscribe(e)
				delete(inst.nodes, p)
			}
		}
	}
}

// SceneRemoved tears down every live instance of a scene whose root
// disappeared from the document.
func (b *SceneBuilder) SceneRemoved(ref SceneRef) {
	for _, inst := range b.live[ref] {
		b.releaseInstance(inst)
		if b.tree.Alive(inst.root) {
			b.tree.Despawn(inst.root)
		}
	}
	delete(b.live, ref)
}

// CleanupDead retires instances whose root entity was despawned by the
// host, recycling them into the capacity cache.
func (b *SceneBuilder) CleanupDead() {
	for ref, instances := range b.live {
		kept := instances[:0]
		for _, inst := range instances {
			if b.tree.Alive(inst.root) {
				kept = append(kept, inst)
				continue
			}
			b.releaseInstance(inst)
		}
		if len(kept) == 0 {
			delete(b.live, ref)
		} else {
			b.live[ref] = kept
		}
	}
}

func (b *SceneBuilder) releaseInstance(inst *SceneInstance) {
	for _, e := range inst.nodes {
		b.buffer.Unsubscribe(e)
	}
	b.cache = append(b.cache, inst)
}
