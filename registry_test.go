package rowan

import "testing"

func layerUpdate(l *SceneLayer, ids ...ScenePath) (results []LayerInsert, removed []SceneLayerData) {
	l.StartUpdate(len(ids))
	for _, id := range ids {
		results = append(results, l.Insert(id))
	}
	return results, l.EndUpdate()
}

func assertLayerOrder(t *testing.T, l *SceneLayer, want ...ScenePath) {
	t.Helper()
	children := l.Children()
	if len(children) != len(want) {
		t.Fatalf("layer has %d children, want %d", len(children), len(want))
	}
	for i, c := range children {
		if c.ID != want[i] {
			t.Errorf("child %d = %s, want %s", i, c.ID, want[i])
		}
	}
}

func TestLayerInitialInsert(t *testing.T) {
	l := &SceneLayer{}
	results, removed := layerUpdate(l, "m/a", "m/b", "m/c")
	for i, r := range results {
		if r != LayerAdded {
			t.Errorf("insert %d = %d, want LayerAdded", i, r)
		}
	}
	assertInt(t, "removed", len(removed), 0)
	assertLayerOrder(t, l, "m/a", "m/b", "m/c")
	assertInt(t, "total", l.TotalChildNodes(), 3)
}

func TestLayerNoChangeOnIdenticalPass(t *testing.T) {
	l := &SceneLayer{}
	layerUpdate(l, "m/a", "m/b")
	results, removed := layerUpdate(l, "m/a", "m/b")
	for i, r := range results {
		if r != LayerNoChange {
			t.Errorf("insert %d = %d, want LayerNoChange", i, r)
		}
	}
	assertInt(t, "removed", len(removed), 0)
}

func TestLayerRearrange(t *testing.T) {
	l := &SceneLayer{}
	layerUpdate(l, "m/a", "m/b", "m/c")

	results, removed := layerUpdate(l, "m/c", "m/a", "m/b")
	if results[0] != LayerRearranged {
		t.Errorf("c = %d, want LayerRearranged", results[0])
	}
	assertInt(t, "removed", len(removed), 0)
	assertLayerOrder(t, l, "m/c", "m/a", "m/b")
}

func TestLayerRearrangeKeepsSubtree(t *testing.T) {
	l := &SceneLayer{}
	l.StartUpdate(2)
	l.Insert("m/a")
	l.Insert("m/b")
	sub, _ := l.Get("m/b")
	layerUpdate(sub, "m/b/x")
	l.EndUpdate()
	assertInt(t, "total", l.TotalChildNodes(), 3)

	results, _ := layerUpdate(l, "m/b", "m/a")
	if results[0] != LayerRearranged {
		t.Errorf("b = %d, want LayerRearranged", results[0])
	}
	sub2, ok := l.Get("m/b")
	assertBool(t, "subtree kept", ok && sub2 == sub, true)
	assertInt(t, "subtree children", len(sub2.Children()), 1)
}

func TestLayerRemoval(t *testing.T) {
	l := &SceneLayer{}
	layerUpdate(l, "m/a", "m/b", "m/c")

	_, removed := layerUpdate(l, "m/b")
	assertInt(t, "removed count", len(removed), 2)
	got := map[ScenePath]bool{}
	for _, r := range removed {
		got[r.ID] = true
	}
	assertBool(t, "a removed", got["m/a"], true)
	assertBool(t, "c removed", got["m/c"], true)
	assertLayerOrder(t, l, "m/b")
	assertInt(t, "total", l.TotalChildNodes(), 1)
}

func TestLayerInsertIntoMiddle(t *testing.T) {
	l := &SceneLayer{}
	layerUpdate(l, "m/a", "m/c")

	results, removed := layerUpdate(l, "m/a", "m/b", "m/c")
	if results[1] != LayerAdded {
		t.Errorf("b = %d, want LayerAdded", results[1])
	}
	if results[2] != LayerNoChange {
		t.Errorf("c = %d, want LayerNoChange", results[2])
	}
	assertInt(t, "removed", len(removed), 0)
	assertLayerOrder(t, l, "m/a", "m/b", "m/c")
}

func TestLayerPanicsOutsideUpdate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Insert outside an update pass did not panic")
		}
	}()
	(&SceneLayer{}).Insert("m/a")
}

func TestLayerTraverseAndCollect(t *testing.T) {
	l := &SceneLayer{}
	l.StartUpdate(2)
	l.Insert("m/a")
	l.Insert("m/b")
	sub, _ := l.Get("m/a")
	layerUpdate(sub, "m/a/x", "m/a/y")
	l.EndUpdate()

	var visited []ScenePath
	var depths []int
	l.Traverse(func(id ScenePath, _ *SceneLayer, depth int) {
		visited = append(visited, id)
		depths = append(depths, depth)
	})
	want := []ScenePath{"m/a", "m/a/x", "m/a/y", "m/b"}
	wantDepths := []int{0, 1, 1, 0}
	for i := range want {
		if visited[i] != want[i] || depths[i] != wantDepths[i] {
			t.Errorf("visit %d = (%s, %d), want (%s, %d)", i, visited[i], depths[i], want[i], wantDepths[i])
		}
	}

	paths := l.CollectPaths(nil)
	assertInt(t, "collected", len(paths), 4)
}

func TestRegistryRoots(t *testing.T) {
	r := NewSceneRegistry()
	r.GetOrCreate(NewSceneRef("a.cob", "menu"))
	r.GetOrCreate(NewSceneRef("a.cob", "hud"))
	r.GetOrCreate(NewSceneRef("b.cob", "menu"))

	assertInt(t, "roots(a)", len(r.Roots("a.cob")), 2)
	assertInt(t, "roots(b)", len(r.Roots("b.cob")), 1)

	_, ok := r.Remove(NewSceneRef("a.cob", "menu"))
	assertBool(t, "removed", ok, true)
	assertInt(t, "roots after remove", len(r.Roots("a.cob")), 1)

	if _, ok := r.Get(NewSceneRef("a.cob", "menu")); ok {
		t.Error("removed scene still present")
	}
}
