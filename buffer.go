package rowan

import "log"

// BufferInsert is the outcome of one LoadableBuffer.Insert call.
type BufferInsert int

const (
	// BufferNoChange: an equal value of this type was already at the index.
	BufferNoChange BufferInsert = iota
	// BufferAdded: no loadable of this type existed; it was inserted.
	BufferAdded
	// BufferChanged: a loadable of this type existed with a different value;
	// the value was replaced and moved to the index.
	BufferChanged
	// BufferRearranged: an equal value existed at a different index and was
	// swapped into place without reapplying.
	BufferRearranged
)

// LoadableBuffer stores, per scene-node ref, the ordered loadables extracted
// from documents, and tracks which live entities mirror each ref. Hot-reload
// edits queue per-entity reverts and updates; Flush applies every revert
// before any update so stale state never survives a pass.
type LoadableBuffer struct {
	loadables    map[SceneRef][]*Loadable
	subscribers  map[SceneRef][]Entity
	subscribedTo map[Entity]SceneRef

	pendingReverts map[Entity][]TypeID
	pendingUpdates map[Entity]struct{}
}

func NewLoadableBuffer() *LoadableBuffer {
	return &LoadableBuffer{
		loadables:      make(map[SceneRef][]*Loadable),
		subscribers:    make(map[SceneRef][]Entity),
		subscribedTo:   make(map[Entity]SceneRef),
		pendingReverts: make(map[Entity][]TypeID),
		pendingUpdates: make(map[Entity]struct{}),
	}
}

// Loadables returns the stored loadables for a ref in application order.
func (b *LoadableBuffer) Loadables(ref SceneRef) []*Loadable {
	return b.loadables[ref]
}

// Insert places a loadable at the given index of the ref's list and reports
// what changed. Expected to be called once per loadable in declaration order
// during extraction; index is where the loadable now belongs.
func (b *LoadableBuffer) Insert(ref SceneRef, index int, l *Loadable) BufferInsert {
	list := b.loadables[ref]
	if len(list) == 0 && index != 0 {
		log.Printf("rowan: first loadable %s for %s inserted at index %d, expected 0 (this is a bug)", l.Id, ref, index)
	}

	pos := -1
	for i, existing := range list {
		if existing.TypeID() == l.TypeID() {
			pos = i
			break
		}
	}

	if pos < 0 {
		if index > len(list) {
			index = len(list)
		}
		list = append(list, nil)
		copy(list[index+1:], list[index:])
		list[index] = l
		b.loadables[ref] = list
		b.queueUpdates(ref)
		return BufferAdded
	}

	if !l.Comparable() {
		log.Printf("rowan: loadable %s for %s still holds unresolved markers and cannot be compared, keeping the previous value", l.Id, ref)
		return BufferNoChange
	}
	if pos < index {
		log.Printf("rowan: duplicate loadable %s for %s (found at %d, inserting at %d); this is a bug, proceeding best-effort", l.Id, ref, pos, index)
	}
	if index >= len(list) {
		index = len(list) - 1
	}

	equal := list[pos].Equals(l)
	if equal && pos == index {
		return BufferNoChange
	}
	list[pos], list[index] = list[index], list[pos]
	if equal {
		return BufferRearranged
	}
	l.fill.Recover(list[index].fill)
	list[index] = l
	b.queueUpdates(ref)
	return BufferChanged
}

// EndInsertion finalizes one node's extraction pass: stored loadables beyond
// finalCount were deleted from the document, so they are removed and their
// types queued for revert on every subscriber.
func (b *LoadableBuffer) EndInsertion(ref SceneRef, finalCount int) {
	list := b.loadables[ref]
	if finalCount >= len(list) {
		return
	}
	removed := list[finalCount:]
	b.loadables[ref] = list[:finalCount]
	for _, l := range removed {
		b.queueReverts(ref, l.TypeID())
	}
}

// RemoveRef drops a node's loadables entirely (node deleted from the
// document), queueing reverts for every stored type.
func (b *LoadableBuffer) RemoveRef(ref SceneRef) {
	for _, l := range b.loadables[ref] {
		b.queueReverts(ref, l.TypeID())
	}
	delete(b.loadables, ref)
}

// Subscribe registers a live entity as mirroring the ref and queues an
// initial update so the stored loadables apply on the next flush. An entity
// subscribes to at most one ref; re-subscribing moves it with a warning.
func (b *LoadableBuffer) Subscribe(ref SceneRef, entity Entity) {
	if prev, ok := b.subscribedTo[entity]; ok && prev != ref {
		log.Printf("rowan: entity %d already subscribed to %s, moving to %s", entity, prev, ref)
		b.Unsubscribe(entity)
	}
	b.subscribedTo[entity] = ref
	b.subscribers[ref] = append(b.subscribers[ref], entity)
	b.pendingUpdates[entity] = struct{}{}
}

// Unsubscribe removes an entity's subscription and any pending work for it.
func (b *LoadableBuffer) Unsubscribe(entity Entity) {
	ref, ok := b.subscribedTo[entity]
	if !ok {
		return
	}
	delete(b.subscribedTo, entity)
	subs := b.subscribers[ref]
	for i, e := range subs {
		if e == entity {
			b.subscribers[ref] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[ref]) == 0 {
		delete(b.subscribers, ref)
	}
	delete(b.pendingReverts, entity)
	delete(b.pendingUpdates, entity)
}

func (b *LoadableBuffer) queueUpdates(ref SceneRef) {
	for _, e := range b.subscribers[ref] {
		b.pendingUpdates[e] = struct{}{}
	}
}

func (b *LoadableBuffer) queueReverts(ref SceneRef, id TypeID) {
	for _, e := range b.subscribers[ref] {
		b.pendingReverts[e] = append(b.pendingReverts[e], id)
	}
}

// HasPending reports whether a flush would do any work.
func (b *LoadableBuffer) HasPending() bool {
	return len(b.pendingReverts) > 0 || len(b.pendingUpdates) > 0
}

// Flush applies all pending reverts, then all pending updates. An entity is
// updated at most once per flush regardless of how many of its loadables
// changed; dead entities are dropped silently.
func (b *LoadableBuffer) Flush(tree EntityTree, types *TypeRegistry) {
	for entity, ids := range b.pendingReverts {
		if !tree.Alive(entity) {
			continue
		}
		for _, id := range ids {
			types.Revert(tree, entity, id)
		}
	}
	clear(b.pendingReverts)

	for entity := range b.pendingUpdates {
		if !tree.Alive(entity) {
			continue
		}
		ref, ok := b.subscribedTo[entity]
		if !ok {
			continue
		}
		for _, l := range b.loadables[ref] {
			if err := types.Apply(tree, entity, l); err != nil {
				log.Printf("rowan: applying %s to entity %d (%s): %v", l.Id, entity, ref, err)
			}
		}
	}
	clear(b.pendingUpdates)
}
