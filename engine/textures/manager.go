package textures

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/mochi2d/mochi/engine/core"
)

var (
	ErrDuplicateKey = errors.New("a texture with the given key already exists")
	ErrNotFound     = errors.New("no texture with the given key")
)

// Manager is the keyed texture registry the loader's texture-producing file
// types insert into. It does no GPU work; it owns metadata and payloads and
// tracks acquire/release reference counts.
type Manager struct {
	mutex      sync.RWMutex
	registered map[string]*reference
}

func NewManager() *Manager {
	return &Manager{
		registered: make(map[string]*reference),
	}
}

// AddImage registers a decoded image under the given key.
func (m *Manager) AddImage(key string, img image.Image) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("texture '%s': nil image", key)
	}
	bounds := img.Bounds()
	t := &Texture{
		Key:    key,
		Kind:   SourceImage,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Image:  img,
	}
	return t, m.add(t)
}

// AddSVG registers an encoded SVG document under the given key. The pixel
// dimensions are whatever the producing file type was configured with.
func (m *Manager) AddSVG(key string, encoded []byte, width, height uint32) (*Texture, error) {
	if len(encoded) == 0 {
		return nil, fmt.Errorf("texture '%s': empty svg payload", key)
	}
	t := &Texture{
		Key:     key,
		Kind:    SourceSVG,
		Width:   width,
		Height:  height,
		Encoded: encoded,
	}
	return t, m.add(t)
}

func (m *Manager) add(t *Texture) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.registered[t.Key]; exists {
		core.LogError("texture '%s' already registered, insert rejected", t.Key)
		return ErrDuplicateKey
	}
	m.registered[t.Key] = &reference{texture: t}
	return nil
}

func (m *Manager) Exists(key string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exists := m.registered[key]
	return exists
}

func (m *Manager) Get(key string) (*Texture, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ref, exists := m.registered[key]
	if !exists {
		return nil, ErrNotFound
	}
	return ref.texture, nil
}

// Acquire increments the reference count and returns the texture. A texture
// acquired with autoRelease is removed once its count drops back to zero.
func (m *Manager) Acquire(key string, autoRelease bool) (*Texture, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ref, exists := m.registered[key]
	if !exists {
		return nil, ErrNotFound
	}
	if ref.referenceCount == 0 {
		ref.autoRelease = autoRelease
	}
	ref.referenceCount++
	return ref.texture, nil
}

// Release decrements the reference count, removing the texture when an
// auto-release texture is no longer referenced. Releasing an unknown key or
// an unreferenced texture logs a warning and does nothing.
func (m *Manager) Release(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ref, exists := m.registered[key]
	if !exists {
		core.LogWarn("release of unregistered texture '%s'", key)
		return
	}
	if ref.referenceCount == 0 {
		core.LogWarn("release of unreferenced texture '%s'", key)
		return
	}
	ref.referenceCount--
	if ref.referenceCount == 0 && ref.autoRelease {
		delete(m.registered, key)
	}
}

// Remove drops a texture regardless of its reference count.
func (m *Manager) Remove(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if ref, exists := m.registered[key]; exists && ref.referenceCount > 0 {
		core.LogWarn("removing texture '%s' with %d outstanding references", key, ref.referenceCount)
	}
	delete(m.registered, key)
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.registered)
}

func (m *Manager) Destroy() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.registered = make(map[string]*reference)
}
