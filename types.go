package rowan

import "log"

// TypeID identifies a registered loadable type, matching the CamelCase
// identifier used in documents.
type TypeID string

// Entity is an opaque handle into the host's entity-component runtime.
// Adapters map it to their own entity representation.
type Entity uint64

// NoEntity is the zero handle; never returned by a successful spawn.
const NoEntity Entity = 0

// EntityTree is the entity-component runtime seam. The engine spawns nodes,
// wires hierarchy, and despawns through it; everything else about entities
// belongs to the host.
type EntityTree interface {
	// SpawnEmpty creates a detached entity.
	SpawnEmpty() Entity
	// InsertChild places child at the given index of parent's child list.
	// An index at or beyond the current child count appends.
	InsertChild(parent Entity, index int, child Entity) error
	// Despawn removes the entity and its descendants.
	Despawn(entity Entity)
	// Alive reports whether the entity still exists.
	Alive(entity Entity) bool
}

// ApplyFunc applies one loadable value to an entity.
type ApplyFunc func(tree EntityTree, entity Entity, loadable *Loadable) error

// RevertFunc undoes a previously applied loadable of the registered type.
type RevertFunc func(tree EntityTree, entity Entity)

// NodeInitializer runs once per spawned scene node, before loadables apply.
type NodeInitializer func(tree EntityTree, entity Entity, ref SceneRef)

type typeCallbacks struct {
	apply  ApplyFunc
	revert RevertFunc
}

// TypeRegistry maps loadable type ids to their apply and revert callbacks.
// Populated by the host at startup; the engine only branches on lookup
// success, never on concrete types.
type TypeRegistry struct {
	types map[TypeID]typeCallbacks
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[TypeID]typeCallbacks)}
}

// Register binds callbacks to a type id. revert may be nil for types with
// no removal effect. Re-registering replaces the previous callbacks.
func (r *TypeRegistry) Register(id TypeID, apply ApplyFunc, revert RevertFunc) {
	if _, exists := r.types[id]; exists {
		log.Printf("rowan: type %s re-registered, replacing callbacks", id)
	}
	r.types[id] = typeCallbacks{apply: apply, revert: revert}
}

// Known reports whether a type id has been registered.
func (r *TypeRegistry) Known(id TypeID) bool {
	_, ok := r.types[id]
	return ok
}

// Apply runs the apply callback for the loadable's type. An unregistered
// type is logged and skipped.
func (r *TypeRegistry) Apply(tree EntityTree, entity Entity, loadable *Loadable) error {
	cb, ok := r.types[loadable.TypeID()]
	if !ok {
		log.Printf("rowan: no type registered for %s, skipping", loadable.Id)
		return nil
	}
	return cb.apply(tree, entity, loadable)
}

// Revert runs the revert callback for a type, if one was registered.
func (r *TypeRegistry) Revert(tree EntityTree, entity Entity, id TypeID) {
	cb, ok := r.types[id]
	if !ok || cb.revert == nil {
		return
	}
	cb.revert(tree, entity)
}
