package filetypes

import (
	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/loader"
	"github.com/mochi2d/mochi/engine/tilemaps"
)

// tilemapJSONFile loads a Tiled editor JSON export and republishes it under
// the engine's generic tilemap cache entry shape.
type tilemapJSONFile struct{}

// TilemapJSON queues a Tiled JSON map. The cache entry is a tagged MapData
// record so map consumers can dispatch on the source format.
func TilemapJSON(key, url string) *loader.File {
	return loader.NewFile(&tilemapJSONFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseText,
	}, "json")
}

func (t *tilemapJSONFile) Name() string {
	return "tilemapJSON"
}

func (t *tilemapJSONFile) TargetCache() string {
	return cache.Tilemap
}

func (t *tilemapJSONFile) Process(f *loader.File) error {
	m, err := tilemaps.ParseTiledJSON(f.Bytes)
	if err != nil {
		return err
	}
	f.Data = m
	return nil
}

func (t *tilemapJSONFile) AddToCache(f *loader.File) error {
	f.Caches().Tilemap().Add(f.Key, &tilemaps.MapData{
		Format: tilemaps.FormatTiledJSON,
		Name:   f.Key,
		Data:   f.Data.(*tilemaps.TiledMap),
	})
	return nil
}
