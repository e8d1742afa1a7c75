// Package resources maps assets onto GPU resources. Uploads are keyed by
// asset identity and version, so an edited asset is uploaded afresh while the
// previous upload ages out.
package resources

import (
	"fmt"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
)

// DefaultMaxAge is the number of collections an unreferenced entry survives.
const DefaultMaxAge = 3

type Config struct {
	MaxAge uint32 `toml:"max_age" yaml:"max_age"`
}

func DefaultConfig() Config {
	return Config{MaxAge: DefaultMaxAge}
}

type key struct {
	kind    assets.Kind
	id      assets.ID
	version uint64
}

type entry struct {
	id  gpu.ResourceID
	age uint32
}

type Stats struct {
	Uploads     uint64
	Hits        uint64
	Evictions   uint64
	Collections uint64
	Entries     int
}

// Cache is an age based cache of uploaded meshes and textures. Every Upload
// of a cached key resets its age; every Collect decrements all ages and
// releases the entries that reach zero.
//
// A Cache must only be used from the render thread.
type Cache struct {
	device    gpu.Device
	maxAge    uint32
	entries   map[key]*entry
	fallbacks map[FallbackKind]gpu.ResourceID
	stats     Stats
}

func NewCache(device gpu.Device, cfg Config) (*Cache, error) {
	if device == nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "resource cache needs a device")
	}
	if cfg.MaxAge == 0 {
		return nil, core.Errorf(core.ErrInvalidConfig, "resource cache max age must be at least 1")
	}
	return &Cache{
		device:    device,
		maxAge:    cfg.MaxAge,
		entries:   make(map[key]*entry),
		fallbacks: make(map[FallbackKind]gpu.ResourceID),
	}, nil
}

// Upload resolves a mesh or an image to its GPU resource. Materials have no
// GPU representation of their own and are rejected.
func (c *Cache) Upload(a assets.Asset) (gpu.ResourceID, error) {
	switch t := a.(type) {
	case *assets.Mesh:
		return c.UploadMesh(t)
	case *assets.Image:
		return c.UploadTexture(t, FallbackWhite)
	case nil:
		core.Violation("Cache.Upload", "nil asset")
	default:
		core.Violation("Cache.Upload", "%s %q has no gpu representation", a.Kind(), a.Name())
	}
	return 0, nil
}

func (c *Cache) UploadMesh(m *assets.Mesh) (gpu.ResourceID, error) {
	if m == nil {
		core.Violation("Cache.UploadMesh", "nil mesh")
	}
	k := key{kind: assets.KindMesh, id: m.ID(), version: m.Version()}
	return c.resolve(k, func() gpu.UploadDesc {
		data, layout := gpu.PackMesh(m.Vertices(), m.Indices())
		return gpu.UploadDesc{
			Kind:   gpu.ResourceMesh,
			Label:  m.Name(),
			Layout: layout,
			Data:   data,
		}
	})
}

// UploadTexture resolves img, or the fallback texture of the given kind when
// img is nil.
func (c *Cache) UploadTexture(img *assets.Image, fallback FallbackKind) (gpu.ResourceID, error) {
	if img == nil {
		return c.Fallback(fallback)
	}
	k := key{kind: assets.KindImage, id: img.ID(), version: img.Version()}
	return c.resolve(k, func() gpu.UploadDesc {
		return gpu.UploadDesc{
			Kind:   gpu.ResourceTexture,
			Label:  img.Name(),
			Width:  img.Width(),
			Height: img.Height(),
			Layout: gpu.Layout{Format: textureFormat(img.Format())},
			Data:   img.Pixels(),
		}
	})
}

func (c *Cache) resolve(k key, desc func() gpu.UploadDesc) (gpu.ResourceID, error) {
	if e, ok := c.entries[k]; ok {
		e.age = c.maxAge
		c.stats.Hits++
		return e.id, nil
	}
	d := desc()
	id, err := c.device.Upload(d)
	if err != nil {
		return 0, fmt.Errorf("upload %s %q version %d: %w", k.kind, d.Label, k.version, err)
	}
	c.entries[k] = &entry{id: id, age: c.maxAge}
	c.stats.Uploads++
	core.LogDebug("uploaded %s '%s' version %d as resource %d", k.kind, d.Label, k.version, id)
	return id, nil
}

// Collect ages every entry by one and releases those reaching zero. It
// returns the number of evicted entries. Call it once per frame.
func (c *Cache) Collect() int {
	evicted := 0
	for k, e := range c.entries {
		e.age--
		if e.age > 0 {
			continue
		}
		c.device.Release(e.id)
		delete(c.entries, k)
		evicted++
	}
	c.stats.Evictions += uint64(evicted)
	c.stats.Collections++
	return evicted
}

// Len is the number of aged entries; fallbacks are not counted.
func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Destroy releases every entry and fallback texture.
func (c *Cache) Destroy() {
	for k, e := range c.entries {
		c.device.Release(e.id)
		delete(c.entries, k)
	}
	for kind, id := range c.fallbacks {
		c.device.Release(id)
		delete(c.fallbacks, kind)
	}
}

func textureFormat(f assets.PixelFormat) gpu.TextureFormat {
	if f == assets.PixelFormatR8 {
		return gpu.TextureR8
	}
	return gpu.TextureRGBA8
}
