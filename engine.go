package rowan

// Engine is the top-level driver: it owns the cache, manifest map, registry,
// loadable buffer, scene builder, and type registry, wired over one
// EntityTree. The host drives it in phases each tick: AddRaw for every file
// whose bytes arrived, Process to promote and extract, ApplyPending to flush
// loadable reverts and reloads onto live entities.
//
// The engine is single-threaded; only the manifest map is internally locked,
// since hosts may resolve refs from other goroutines.
type Engine struct {
	tree     EntityTree
	types    *TypeRegistry
	manifest *ManifestMap
	cache    *DocumentCache
	registry *SceneRegistry
	buffer   *LoadableBuffer
	builder  *SceneBuilder
}

func NewEngine(tree EntityTree) *Engine {
	manifest := NewManifestMap()
	registry := NewSceneRegistry()
	buffer := NewLoadableBuffer()
	return &Engine{
		tree:     tree,
		types:    NewTypeRegistry(),
		manifest: manifest,
		cache:    NewDocumentCache(manifest),
		registry: registry,
		buffer:   buffer,
		builder:  NewSceneBuilder(tree, registry, buffer, manifest),
	}
}

// Types returns the loadable type registry for host registration.
func (e *Engine) Types() *TypeRegistry { return e.types }

// Manifest returns the shared manifest alias table.
func (e *Engine) Manifest() *ManifestMap { return e.manifest }

// Builder returns the scene builder, for hosts that need instance lookups.
func (e *Engine) Builder() *SceneBuilder { return e.builder }

// AddRaw submits one file's source bytes, parsing and queueing it. Call
// Process afterwards to promote. Safe to call for an already loaded file;
// that is how hot reload enters the engine.
func (e *Engine) AddRaw(file string, src []byte) error {
	return e.cache.AddRaw(file, string(src))
}

// Process promotes every queued file whose imports are satisfied, running
// command and scene extraction for each promotion. Files stuck on missing
// imports or cycles are discarded with diagnostics.
func (e *Engine) Process() {
	ex := &extractor{
		tree:     e.tree,
		types:    e.types,
		registry: e.registry,
		buffer:   e.buffer,
		builder:  e.builder,
	}
	e.cache.Process(ex.extractFile)
}

// ApplyPending retires instances of despawned scenes, then flushes the
// loadable buffer: all reverts first, then all reloads, each entity at most
// once.
func (e *Engine) ApplyPending() {
	e.builder.CleanupDead()
	e.buffer.Flush(e.tree, e.types)
}

// BuildScene materializes the scene at ref under an existing root entity.
func (e *Engine) BuildScene(root Entity, ref SceneRef, init NodeInitializer) bool {
	return e.builder.BuildScene(root, ref, init)
}

// SpawnScene spawns a fresh root entity and materializes the scene under it.
// On failure the root is despawned again and NoEntity returned.
func (e *Engine) SpawnScene(ref SceneRef, init NodeInitializer) (Entity, bool) {
	root := e.tree.SpawnEmpty()
	if !e.builder.BuildScene(root, ref, init) {
		e.tree.Despawn(root)
		return NoEntity, false
	}
	return root, true
}

// Status reports one file's load state.
func (e *Engine) Status(file string) LoadStatus {
	return e.cache.Status(file)
}

// Progress counts submitted files by load state.
func (e *Engine) Progress() (pending, processed, failed int) {
	return e.cache.Progress()
}

// Loaded reports whether every submitted file has settled (no file still
// pending). Hosts typically wait for this before spawning scenes.
func (e *Engine) Loaded() bool {
	pending, _, _ := e.cache.Progress()
	return pending == 0
}
