// Package assets handles model asset loading and caching.
package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arclight3d/arclight/internal/engine/model"
	"github.com/arclight3d/arclight/pkg/gltf"
)

// Manager loads glTF documents from disk and caches the parsed result.
// Documents are shared read-only; callers build per-instance state with
// BuildModel and never mutate what the cache hands out.
type Manager struct {
	mu    sync.RWMutex
	cache map[string]*gltf.Document

	hits   int
	misses int
}

// NewManager creates an empty asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: make(map[string]*gltf.Document),
	}
}

// Load returns the parsed document for path, reading and validating it on
// first use. Paths are cleaned so equivalent spellings share one entry.
func (m *Manager) Load(path string) (*gltf.Document, error) {
	key := filepath.Clean(path)

	m.mu.RLock()
	doc, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		m.hits++
		m.mu.Unlock()
		return doc, nil
	}

	doc, err := gltf.ParseFile(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	m.mu.Lock()
	// Another loader may have raced us here; keep the first document so
	// every model instance shares the same pointer.
	if cached, ok := m.cache[key]; ok {
		doc = cached
	} else {
		m.cache[key] = doc
	}
	m.misses++
	m.mu.Unlock()
	return doc, nil
}

// Stats returns cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses
}

// Clear drops every cached document.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*gltf.Document)
	m.hits = 0
	m.misses = 0
}

// Asset is the loading facade for one model file.
type Asset struct {
	Name string
	Path string

	doc *gltf.Document
	mgr *Manager
}

// New creates an asset handle backed by the shared manager.
func New(mgr *Manager, name, path string) *Asset {
	return &Asset{Name: name, Path: path, mgr: mgr}
}

// Load parses and validates the asset file. Safe to call more than once.
func (a *Asset) Load() error {
	doc, err := a.mgr.Load(a.Path)
	if err != nil {
		return err
	}
	a.doc = doc
	return nil
}

// Doc returns the parsed document, nil before Load.
func (a *Asset) Doc() *gltf.Document { return a.doc }

// BuildModel creates a fresh model instance with its own graph and
// animator. Loads the document first when Load was not called.
func (a *Asset) BuildModel() (*model.Model, error) {
	if a.doc == nil {
		if err := a.Load(); err != nil {
			return nil, err
		}
	}
	return model.New(a.doc)
}
