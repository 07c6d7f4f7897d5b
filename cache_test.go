package rowan

import "testing"

func addRaw(t *testing.T, c *DocumentCache, file, src string) {
	t.Helper()
	if err := c.AddRaw(file, src); err != nil {
		t.Fatalf("AddRaw(%s): %v", file, err)
	}
}

const colorsSrc = `#manifest
self as app.colors

#defs
$accent = #FF0080
`

const themeSrc = `#manifest
self as app.theme

#import
app.colors as colors

#defs
$highlight = $colors::accent
`

func TestCacheProcessInOrder(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "colors.cob", colorsSrc)
	addRaw(t, c, "theme.cob", themeSrc)
	c.Process(nil)

	if s := c.Status("colors.cob"); s != StatusProcessed {
		t.Errorf("colors status = %s", s)
	}
	if s := c.Status("theme.cob"); s != StatusProcessed {
		t.Errorf("theme status = %s", s)
	}

	pf, ok := c.Processed("theme.cob")
	assertBool(t, "theme processed", ok, true)
	v, ok := pf.Consts.Get("colors::accent")
	assertBool(t, "aliased constant", ok, true)
	assertString(t, "aliased value", FormatValue(v), "#FF0080")
	v, ok = pf.Consts.Get("highlight")
	assertBool(t, "local constant", ok, true)
	assertString(t, "resolved through import", FormatValue(v), "#FF0080")
}

func TestCacheProcessOutOfOrder(t *testing.T) {
	// The dependent arrives first; the fix-point picks it up on a later pass.
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "theme.cob", themeSrc)
	addRaw(t, c, "colors.cob", colorsSrc)
	c.Process(nil)

	if s := c.Status("theme.cob"); s != StatusProcessed {
		t.Errorf("theme status = %s", s)
	}
}

func TestCacheMissingImportFails(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "theme.cob", themeSrc)
	c.Process(nil)

	if s := c.Status("theme.cob"); s != StatusFailed {
		t.Errorf("theme status = %s, want failed", s)
	}
	pending, processed, failed := c.Progress()
	assertInt(t, "pending", pending, 0)
	assertInt(t, "processed", processed, 0)
	assertInt(t, "failed", failed, 1)
}

func TestCacheImportCycleFails(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "a.cob", "#manifest\nself as app.a\n\n#import\napp.b as b\n")
	addRaw(t, c, "b.cob", "#manifest\nself as app.b\n\n#import\napp.a as a\n")
	c.Process(nil)

	if s := c.Status("a.cob"); s != StatusFailed {
		t.Errorf("a status = %s, want failed", s)
	}
	if s := c.Status("b.cob"); s != StatusFailed {
		t.Errorf("b status = %s, want failed", s)
	}
}

func TestCacheFailedFileRetriesOnResubmit(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "theme.cob", themeSrc)
	c.Process(nil)
	if s := c.Status("theme.cob"); s != StatusFailed {
		t.Fatalf("theme status = %s, want failed", s)
	}

	addRaw(t, c, "colors.cob", colorsSrc)
	c.Process(nil)
	// The dependency alone does not resurrect the discarded file.
	if s := c.Status("theme.cob"); s != StatusFailed {
		t.Errorf("theme status = %s, want failed until resubmitted", s)
	}

	addRaw(t, c, "theme.cob", themeSrc)
	c.Process(nil)
	if s := c.Status("theme.cob"); s != StatusProcessed {
		t.Errorf("theme status after resubmit = %s", s)
	}
}

func TestCacheParseFailure(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	if err := c.AddRaw("bad.cob", "not a cob file\n"); err == nil {
		t.Fatal("expected a parse error")
	}
	if s := c.Status("bad.cob"); s != StatusFailed {
		t.Errorf("status = %s, want failed", s)
	}
}

func TestCacheHotReloadDemotesDependents(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "colors.cob", colorsSrc)
	addRaw(t, c, "theme.cob", themeSrc)
	c.Process(nil)

	// Resubmitting the dependency demotes the processed dependent too.
	edited := "#manifest\nself as app.colors\n\n#defs\n$accent = #00FF00\n"
	addRaw(t, c, "colors.cob", edited)
	if s := c.Status("theme.cob"); s != StatusPending {
		t.Errorf("theme status after demotion = %s, want pending", s)
	}

	var order []string
	c.Process(func(pf *ProcessedFile) { order = append(order, pf.File) })
	assertInt(t, "promotions", len(order), 2)
	assertString(t, "dependency first", order[0], "colors.cob")

	pf, _ := c.Processed("theme.cob")
	v, _ := pf.Consts.Get("highlight")
	assertString(t, "re-merged value", FormatValue(v), "#00FF00")
}

func TestCacheUnresolvableDefFails(t *testing.T) {
	c := NewDocumentCache(NewManifestMap())
	addRaw(t, c, "bad.cob", "#defs\n$broken = $missing\n")
	c.Process(nil)
	if s := c.Status("bad.cob"); s != StatusFailed {
		t.Errorf("status = %s, want failed", s)
	}
}

func TestManifestMapResolve(t *testing.T) {
	m := NewManifestMap()
	m.Insert("app.main", "main.cob")

	f, ok := m.File("app.main")
	assertBool(t, "found", ok, true)
	assertString(t, "file", f, "main.cob")

	k, ok := m.Key("main.cob")
	assertBool(t, "key found", ok, true)
	assertString(t, "key", k, "app.main")

	assertString(t, "resolve key", m.Resolve("app.main"), "main.cob")
	assertString(t, "passthrough", m.Resolve("other.cob"), "other.cob")

	ref := m.ResolveRef(NewSceneRef("app.main", "menu"))
	assertString(t, "ref file", ref.File, "main.cob")

	// Rebinding moves the key and clears the stale reverse mapping.
	m.Insert("app.main", "next.cob")
	assertString(t, "rebound", m.Resolve("app.main"), "next.cob")
	if _, ok := m.Key("main.cob"); ok {
		t.Error("stale reverse mapping survived rebind")
	}
}
