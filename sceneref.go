package rowan

import "strings"

// ScenePath is a slash-separated node path within one file, from the scene
// root to a node: "menu/header/title". A length-1 path addresses a scene
// root.
type ScenePath string

// NewScenePath joins segments into a path.
func NewScenePath(segments ...string) ScenePath {
	return ScenePath(strings.Join(segments, "/"))
}

// Segments splits the path into its node ids.
func (p ScenePath) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Len returns the number of segments.
func (p ScenePath) Len() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), "/") + 1
}

// IsRoot reports whether the path addresses a scene root.
func (p ScenePath) IsRoot() bool { return p != "" && !strings.ContainsRune(string(p), '/') }

// First returns the root segment.
func (p ScenePath) First() string {
	if i := strings.IndexByte(string(p), '/'); i >= 0 {
		return string(p)[:i]
	}
	return string(p)
}

// Last returns the final segment.
func (p ScenePath) Last() string {
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return string(p)[i+1:]
	}
	return string(p)
}

// Parent returns the path without its final segment, or "" for a root.
func (p ScenePath) Parent() ScenePath {
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// Extend appends a segment.
func (p ScenePath) Extend(id string) ScenePath {
	if p == "" {
		return ScenePath(id)
	}
	return p + ScenePath("/"+id)
}

// SceneRef addresses one scene node: a source file plus a node path. File
// may be a manifest key until resolved through the ManifestMap; registry and
// buffer lookups require the resolved form. Equality is structural.
type SceneRef struct {
	File string
	Path ScenePath
}

// NewSceneRef builds a ref from a file and slash-separated path.
func NewSceneRef(file, path string) SceneRef {
	return SceneRef{File: file, Path: ScenePath(path)}
}

// Extend returns a ref addressing a child of this ref's node.
func (r SceneRef) Extend(id string) SceneRef {
	return SceneRef{File: r.File, Path: r.Path.Extend(id)}
}

// Parent returns a ref addressing this ref's parent node.
func (r SceneRef) Parent() SceneRef {
	return SceneRef{File: r.File, Path: r.Path.Parent()}
}

// IsRoot reports whether the ref addresses a scene root.
func (r SceneRef) IsRoot() bool { return r.Path.IsRoot() }

func (r SceneRef) String() string {
	return r.File + "#" + string(r.Path)
}
