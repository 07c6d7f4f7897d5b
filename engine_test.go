package rowan

import (
	"fmt"
	"testing"
)

const menuSrc = `#manifest
self as app.main

#scenes
"menu"
    Width(50.0)
    "header"
        TextLine{text:"Menu"}
        "title"
            Width(5)
    "footer"
        Width(10)
`

func newTestEngine(t *testing.T) (*Engine, *MemTree, *recorder) {
	t.Helper()
	tree := NewMemTree()
	eng := NewEngine(tree)
	rec := &recorder{types: eng.Types()}
	for _, id := range []TypeID{"Width", "TextLine", "SetTheme"} {
		id := id
		eng.Types().Register(id,
			func(_ EntityTree, entity Entity, l *Loadable) error {
				rec.calls = append(rec.calls, fmt.Sprintf("apply %s->%d %s", id, entity, l.String()))
				return nil
			},
			func(_ EntityTree, entity Entity) {
				rec.calls = append(rec.calls, fmt.Sprintf("revert %s->%d", id, entity))
			})
	}
	return eng, tree, rec
}

func loadEngine(t *testing.T, eng *Engine, file, src string) {
	t.Helper()
	if err := eng.AddRaw(file, []byte(src)); err != nil {
		t.Fatalf("AddRaw(%s): %v", file, err)
	}
	eng.Process()
}

func TestEngineSpawnScene(t *testing.T) {
	eng, tree, rec := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	assertBool(t, "loaded", eng.Loaded(), true)

	root, ok := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	assertBool(t, "spawned", ok, true)
	eng.ApplyPending()

	// Hierarchy: menu -> (header -> title, footer).
	children := tree.Children(root)
	assertInt(t, "root children", len(children), 2)
	header, footer := children[0], children[1]
	assertInt(t, "header children", len(tree.Children(header)), 1)
	assertInt(t, "footer children", len(tree.Children(footer)), 0)

	inst := eng.Builder().Instances(NewSceneRef("main.cob", "menu"))[0]
	if e, _ := inst.Entity("menu/header"); e != header {
		t.Errorf("header entity = %d, want %d", e, header)
	}
	if e, _ := inst.Entity("menu/header/title"); e != tree.Children(header)[0] {
		t.Error("title entity mismatch")
	}

	// Each node received its own loadables exactly once. Entities flush in
	// map order, so compare as a set.
	title := tree.Children(header)[0]
	assertCallSet(t, rec.take(), []string{
		fmt.Sprintf("apply Width->%d Width(50)", root),
		fmt.Sprintf("apply TextLine->%d TextLine{text:\"Menu\"}", header),
		fmt.Sprintf("apply Width->%d Width(5)", title),
		fmt.Sprintf("apply Width->%d Width(10)", footer),
	})
}

func TestEngineSpawnByManifestKey(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)

	root, ok := eng.SpawnScene(NewSceneRef("app.main", "menu"), nil)
	assertBool(t, "spawned via key", ok, true)
	if root == NoEntity {
		t.Error("no root entity")
	}
}

func TestEngineSpawnFailures(t *testing.T) {
	eng, tree, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)

	if _, ok := eng.SpawnScene(NewSceneRef("main.cob", "nope"), nil); ok {
		t.Error("unknown scene spawned")
	}
	if _, ok := eng.SpawnScene(NewSceneRef("main.cob", "menu/header"), nil); ok {
		t.Error("non-root ref spawned")
	}
	// Failed spawns despawn their root again.
	for e := Entity(1); e <= 2; e++ {
		assertBool(t, "root leaked", tree.Alive(e), false)
	}
}

func TestEngineNodeInitializer(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)

	var refs []string
	_, ok := eng.SpawnScene(NewSceneRef("main.cob", "menu"), func(_ EntityTree, _ Entity, ref SceneRef) {
		refs = append(refs, string(ref.Path))
	})
	assertBool(t, "spawned", ok, true)
	want := []string{"menu", "menu/header", "menu/header/title", "menu/footer"}
	if len(refs) != len(want) {
		t.Fatalf("initializer ran for %v, want %v", refs, want)
	}
	for i := range want {
		assertString(t, "init order", refs[i], want[i])
	}
}

func TestEngineCommands(t *testing.T) {
	eng, _, rec := newTestEngine(t)
	loadEngine(t, eng, "main.cob", "#commands\nSetTheme{accent:#FF0080}\n")

	// Commands apply at process time, against no entity.
	assertCalls(t, rec.take(), []string{"apply SetTheme->0 SetTheme{accent:#FF0080}"})

	// An unchanged command is not reapplied on hot reload.
	loadEngine(t, eng, "main.cob", "#commands\nSetTheme{accent:#FF0080}\n")
	assertCalls(t, rec.take(), nil)

	loadEngine(t, eng, "main.cob", "#commands\nSetTheme{accent:#00FF00}\n")
	assertCalls(t, rec.take(), []string{"apply SetTheme->0 SetTheme{accent:#00FF00}"})
}

func TestEngineHotReloadValueChange(t *testing.T) {
	eng, _, rec := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()
	rec.take()

	edited := `#manifest
self as app.main

#scenes
"menu"
    Width(80.0)
    "header"
        TextLine{text:"Menu"}
        "title"
            Width(5)
    "footer"
        Width(10)
`
	loadEngine(t, eng, "main.cob", edited)
	eng.ApplyPending()
	// Only the edited node reapplies.
	assertCalls(t, rec.take(), []string{fmt.Sprintf("apply Width->%d Width(80)", root)})
}

func TestEngineHotReloadReorder(t *testing.T) {
	eng, tree, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()
	header := tree.Children(root)[0]
	footer := tree.Children(root)[1]

	reordered := `#manifest
self as app.main

#scenes
"menu"
    Width(50.0)
    "footer"
        Width(10)
    "header"
        TextLine{text:"Menu"}
        "title"
            Width(5)
`
	loadEngine(t, eng, "main.cob", reordered)
	eng.ApplyPending()

	children := tree.Children(root)
	if children[0] != footer || children[1] != header {
		t.Errorf("children = %v, want [footer header] = [%d %d]", children, footer, header)
	}
	// The moved subtree keeps its entities.
	assertInt(t, "header children", len(tree.Children(header)), 1)
}

func TestEngineHotReloadNodeRemoved(t *testing.T) {
	eng, tree, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()
	header := tree.Children(root)[0]
	title := tree.Children(header)[0]

	edited := `#manifest
self as app.main

#scenes
"menu"
    Width(50.0)
    "header"
        TextLine{text:"Menu"}
    "footer"
        Width(10)
`
	loadEngine(t, eng, "main.cob", edited)
	eng.ApplyPending()

	assertBool(t, "title despawned", tree.Alive(title), false)
	assertBool(t, "header survives", tree.Alive(header), true)
	assertInt(t, "root children", len(tree.Children(root)), 2)
}

func TestEngineHotReloadNodeAdded(t *testing.T) {
	eng, tree, rec := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()
	rec.take()

	edited := `#manifest
self as app.main

#scenes
"menu"
    Width(50.0)
    "header"
        TextLine{text:"Menu"}
        "title"
            Width(5)
    "badge"
        Width(2)
    "footer"
        Width(10)
`
	loadEngine(t, eng, "main.cob", edited)
	eng.ApplyPending()

	children := tree.Children(root)
	assertInt(t, "root children", len(children), 3)
	badge := children[1]
	inst := eng.Builder().Instances(NewSceneRef("main.cob", "menu"))[0]
	if e, ok := inst.Entity("menu/badge"); !ok || e != badge {
		t.Errorf("badge entity = %d, want %d", e, badge)
	}
	assertCalls(t, rec.take(), []string{fmt.Sprintf("apply Width->%d Width(2)", badge)})
}

func TestEngineSceneRemoved(t *testing.T) {
	eng, tree, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()

	loadEngine(t, eng, "main.cob", "#manifest\nself as app.main\n")
	assertBool(t, "root despawned", tree.Alive(root), false)
	assertInt(t, "no instances", len(eng.Builder().Instances(NewSceneRef("main.cob", "menu"))), 0)
}

func TestEngineCleanupDeadInstances(t *testing.T) {
	eng, tree, rec := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	root, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()
	rec.take()

	tree.Despawn(root)
	eng.ApplyPending()
	assertInt(t, "instances retired", len(eng.Builder().Instances(NewSceneRef("main.cob", "menu"))), 0)
}

func TestEngineMultipleInstancesTrackEdits(t *testing.T) {
	eng, tree, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	rootA, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	rootB, _ := eng.SpawnScene(NewSceneRef("main.cob", "menu"), nil)
	eng.ApplyPending()

	edited := `#manifest
self as app.main

#scenes
"menu"
    Width(50.0)
    "footer"
        Width(10)
`
	loadEngine(t, eng, "main.cob", edited)
	eng.ApplyPending()

	// Both copies dropped the header subtree.
	assertInt(t, "A children", len(tree.Children(rootA)), 1)
	assertInt(t, "B children", len(tree.Children(rootB)), 1)
}

func TestEngineProgress(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	loadEngine(t, eng, "main.cob", menuSrc)
	pending, processed, failed := eng.Progress()
	assertInt(t, "pending", pending, 0)
	assertInt(t, "processed", processed, 1)
	assertInt(t, "failed", failed, 0)
	if s := eng.Status("main.cob"); s != StatusProcessed {
		t.Errorf("status = %s", s)
	}
}
