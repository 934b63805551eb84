package cache

import "sync"

// Well-known cache names. File types address their target cache by name so
// that custom file types can multiplex into custom caches the same way the
// built-in ones do.
const (
	Binary     = "binary"
	Text       = "text"
	JSON       = "json"
	XML        = "xml"
	Obj        = "obj"
	Tilemap    = "tilemap"
	BitmapFont = "bitmapFont"
	Audio      = "audio"
	Video      = "video"
	Shader     = "shader"
	HTML       = "html"
)

// Manager owns one Cache per asset kind and hands them out by name. Caches
// are created lazily, so a custom file type gets a custom cache for free.
type Manager struct {
	mutex  sync.Mutex
	caches map[string]*Cache
}

func NewManager() *Manager {
	m := &Manager{
		caches: make(map[string]*Cache),
	}
	// Pre-create the caches every engine install ships with.
	for _, name := range []string{
		Binary, Text, JSON, XML, Obj, Tilemap, BitmapFont, Audio, Video, Shader, HTML,
	} {
		m.caches[name] = NewCache(name)
	}
	return m
}

// Custom returns the cache with the given name, creating it if needed.
func (m *Manager) Custom(name string) *Cache {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	c, exists := m.caches[name]
	if !exists {
		c = NewCache(name)
		m.caches[name] = c
	}
	return c
}

func (m *Manager) Binary() *Cache     { return m.Custom(Binary) }
func (m *Manager) Text() *Cache       { return m.Custom(Text) }
func (m *Manager) JSON() *Cache       { return m.Custom(JSON) }
func (m *Manager) XML() *Cache        { return m.Custom(XML) }
func (m *Manager) Obj() *Cache        { return m.Custom(Obj) }
func (m *Manager) Tilemap() *Cache    { return m.Custom(Tilemap) }
func (m *Manager) BitmapFont() *Cache { return m.Custom(BitmapFont) }
func (m *Manager) Audio() *Cache      { return m.Custom(Audio) }
func (m *Manager) Video() *Cache      { return m.Custom(Video) }
func (m *Manager) Shader() *Cache     { return m.Custom(Shader) }
func (m *Manager) HTML() *Cache       { return m.Custom(HTML) }

// Destroy clears every cache. Entries holding external resources are expected
// to be released by their owners first.
func (m *Manager) Destroy() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, c := range m.caches {
		c.Clear()
	}
}
