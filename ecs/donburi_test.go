package ecs

import (
	"testing"

	"github.com/phanxgames/rowan"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiTree(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world)
	if tree == nil {
		t.Fatal("NewDonburiTree returned nil")
	}
}

func TestDonburiTree_SpawnAndAlive(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world)

	e := tree.SpawnEmpty()
	if e == rowan.NoEntity {
		t.Fatal("SpawnEmpty returned NoEntity")
	}
	if !tree.Alive(e) {
		t.Error("freshly spawned entity not alive")
	}

	tree.Despawn(e)
	if tree.Alive(e) {
		t.Error("despawned entity still alive")
	}
}

func TestDonburiTree_InsertChildOrdering(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world).(*donburiTree)

	parent := tree.SpawnEmpty()
	a := tree.SpawnEmpty()
	b := tree.SpawnEmpty()
	c := tree.SpawnEmpty()

	if err := tree.InsertChild(parent, 0, a); err != nil {
		t.Fatal(err)
	}
	if err := tree.InsertChild(parent, 1, b); err != nil {
		t.Fatal(err)
	}
	// Insert in the middle.
	if err := tree.InsertChild(parent, 1, c); err != nil {
		t.Fatal(err)
	}

	got := tree.children[parent]
	want := []rowan.Entity{a, c, b}
	if len(got) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	// Re-inserting an attached child moves it.
	if err := tree.InsertChild(parent, 0, b); err != nil {
		t.Fatal(err)
	}
	if tree.children[parent][0] != b {
		t.Errorf("expected b moved to front, got %v", tree.children[parent])
	}
	if len(tree.children[parent]) != 3 {
		t.Errorf("move should not duplicate: %v", tree.children[parent])
	}
}

func TestDonburiTree_DespawnRecursive(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world)

	root := tree.SpawnEmpty()
	child := tree.SpawnEmpty()
	grandchild := tree.SpawnEmpty()
	if err := tree.InsertChild(root, 0, child); err != nil {
		t.Fatal(err)
	}
	if err := tree.InsertChild(child, 0, grandchild); err != nil {
		t.Fatal(err)
	}

	tree.Despawn(root)
	for _, e := range []rowan.Entity{root, child, grandchild} {
		if tree.Alive(e) {
			t.Errorf("entity %d still alive after recursive despawn", e)
		}
	}
}

func TestDonburiTree_InsertRejectsDeadEntities(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world)

	parent := tree.SpawnEmpty()
	child := tree.SpawnEmpty()
	tree.Despawn(child)

	if err := tree.InsertChild(parent, 0, child); err == nil {
		t.Error("expected error inserting a despawned child")
	}
}

func TestDonburiTree_NodeEvents(t *testing.T) {
	world := donburi.NewWorld()
	tree := NewDonburiTree(world)

	var received []NodeEvent
	NodeEventType.Subscribe(world, func(w donburi.World, e NodeEvent) {
		received = append(received, e)
	})

	parent := tree.SpawnEmpty()
	child := tree.SpawnEmpty()
	if err := tree.InsertChild(parent, 0, child); err != nil {
		t.Fatal(err)
	}
	tree.Despawn(child)

	// Events are queued — process them.
	events.ProcessAllEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Kind != NodeAttached || received[0].Entity != child || received[0].Parent != parent {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Kind != NodeDespawned || received[1].Entity != child {
		t.Errorf("event 1: %+v", received[1])
	}
}

func TestDonburiTree_ImplementsEntityTree(t *testing.T) {
	world := donburi.NewWorld()
	var tree rowan.EntityTree = NewDonburiTree(world)
	_ = tree // compile-time interface check
}
