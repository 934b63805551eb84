package filetypes

import (
	"encoding/json"
	"fmt"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/loader"
)

type jsonFile struct{}

// JSON queues a JSON document; the parsed value lands in the json cache.
func JSON(key, url string) *loader.File {
	return loader.NewFile(&jsonFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseText,
	}, "json")
}

func (t *jsonFile) Name() string {
	return "json"
}

func (t *jsonFile) TargetCache() string {
	return cache.JSON
}

func (t *jsonFile) Process(f *loader.File) error {
	var v interface{}
	if err := json.Unmarshal(f.Bytes, &v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	f.Data = v
	return nil
}

func (t *jsonFile) AddToCache(f *loader.File) error {
	f.Caches().JSON().Add(f.Key, f.Data)
	return nil
}
