package rowan

import (
	"log"
	"sync"
)

// ManifestMap is the bidirectional manifest-key/file alias table shared by
// the cache, registry, and buffer. Keys can be reassigned when manifests
// change, so every SceneRef must be resolved through here before a registry
// or buffer lookup. Critical sections are short and never span a callback.
type ManifestMap struct {
	mu        sync.Mutex
	keyToFile map[string]string
	fileToKey map[string]string
}

func NewManifestMap() *ManifestMap {
	return &ManifestMap{
		keyToFile: make(map[string]string),
		fileToKey: make(map[string]string),
	}
}

// Insert binds a manifest key to a file. Rebinding an existing key to a
// different file is logged and proceeds (the key moves).
func (m *ManifestMap) Insert(key, file string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.keyToFile[key]; ok && prev != file {
		log.Printf("rowan: manifest key %s moved from %s to %s", key, prev, file)
		delete(m.fileToKey, prev)
	}
	if prevKey, ok := m.fileToKey[file]; ok && prevKey != key {
		delete(m.keyToFile, prevKey)
	}
	m.keyToFile[key] = file
	m.fileToKey[file] = key
}

// File resolves a manifest key to its file.
func (m *ManifestMap) File(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.keyToFile[key]
	return f, ok
}

// Key returns the manifest key assigned to a file, if any.
func (m *ManifestMap) Key(file string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.fileToKey[file]
	return k, ok
}

// Resolve maps a file-or-key string to a file. Unknown strings pass through
// unchanged, treated as literal file paths.
func (m *ManifestMap) Resolve(fileOrKey string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.keyToFile[fileOrKey]; ok {
		return f
	}
	return fileOrKey
}

// ResolveRef resolves a SceneRef's file through the alias table.
func (m *ManifestMap) ResolveRef(ref SceneRef) SceneRef {
	ref.File = m.Resolve(ref.File)
	return ref
}
