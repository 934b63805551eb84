package filetypes

import (
	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/loader"
)

type binaryFile struct{}

// Binary queues an opaque byte blob; the raw bytes land in the binary cache.
func Binary(key, url string) *loader.File {
	return loader.NewFile(&binaryFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseBinary,
	}, "bin")
}

func (t *binaryFile) Name() string {
	return "binary"
}

func (t *binaryFile) TargetCache() string {
	return cache.Binary
}

func (t *binaryFile) Process(f *loader.File) error {
	f.Data = f.Bytes
	return nil
}

func (t *binaryFile) AddToCache(f *loader.File) error {
	f.Caches().Binary().Add(f.Key, f.Data.([]byte))
	return nil
}
