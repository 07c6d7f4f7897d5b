package ecs

import (
	"fmt"

	"github.com/phanxgames/rowan"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// NodeEventKind discriminates scene node lifecycle events.
type NodeEventKind int

const (
	// NodeAttached: a node was inserted into a parent's child list.
	NodeAttached NodeEventKind = iota
	// NodeDespawned: a node and its subtree were removed.
	NodeDespawned
)

// NodeEvent is published for scene node hierarchy changes.
type NodeEvent struct {
	Kind   NodeEventKind
	Entity rowan.Entity
	Parent rowan.Entity // NoEntity for despawns
	Index  int
}

// NodeEventType is the Donburi event type for rowan node lifecycle events.
var NodeEventType = events.NewEventType[NodeEvent]()

type donburiTree struct {
	world    donburi.World
	children map[rowan.Entity][]rowan.Entity
	parents  map[rowan.Entity]rowan.Entity
}

// NewDonburiTree creates an EntityTree backed by a Donburi world. Donburi's
// hierarchy feature keeps no child ordering, so the adapter tracks ordered
// child lists itself and uses the world only for entity lifecycle.
func NewDonburiTree(world donburi.World) rowan.EntityTree {
	return &donburiTree{
		world:    world,
		children: make(map[rowan.Entity][]rowan.Entity),
		parents:  make(map[rowan.Entity]rowan.Entity),
	}
}

func (t *donburiTree) SpawnEmpty() rowan.Entity {
	return rowan.Entity(t.world.Create())
}

func (t *donburiTree) Alive(entity rowan.Entity) bool {
	return t.world.Valid(donburi.Entity(entity))
}

func (t *donburiTree) InsertChild(parent rowan.Entity, index int, child rowan.Entity) error {
	if !t.Alive(parent) {
		return fmt.Errorf("parent entity %d is not alive", parent)
	}
	if !t.Alive(child) {
		return fmt.Errorf("child entity %d is not alive", child)
	}

	// Re-inserting an attached child moves it.
	if prev, ok := t.parents[child]; ok {
		t.detach(prev, child)
	}

	siblings := t.children[parent]
	if index > len(siblings) {
		index = len(siblings)
	}
	siblings = append(siblings, 0)
	copy(siblings[index+1:], siblings[index:])
	siblings[index] = child
	t.children[parent] = siblings
	t.parents[child] = parent

	NodeEventType.Publish(t.world, NodeEvent{Kind: NodeAttached, Entity: child, Parent: parent, Index: index})
	return nil
}

func (t *donburiTree) Despawn(entity rowan.Entity) {
	if parent, ok := t.parents[entity]; ok {
		t.detach(parent, entity)
	}
	t.despawnSubtree(entity)
}

func (t *donburiTree) despawnSubtree(entity rowan.Entity) {
	for _, c := range t.children[entity] {
		t.despawnSubtree(c)
	}
	delete(t.children, entity)
	delete(t.parents, entity)
	if t.Alive(entity) {
		t.world.Remove(donburi.Entity(entity))
	}
	NodeEventType.Publish(t.world, NodeEvent{Kind: NodeDespawned, Entity: entity, Parent: rowan.NoEntity})
}

func (t *donburiTree) detach(parent, child rowan.Entity) {
	siblings := t.children[parent]
	for i, c := range siblings {
		if c == child {
			t.children[parent] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	delete(t.parents, child)
}
