package filetypes

import (
	"fmt"
	"unicode/utf8"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/loader"
)

type textFile struct{}

// Text queues a plain text file; the string lands in the text cache.
func Text(key, url string) *loader.File {
	return loader.NewFile(&textFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseText,
	}, "txt")
}

func (t *textFile) Name() string {
	return "text"
}

func (t *textFile) TargetCache() string {
	return cache.Text
}

func (t *textFile) Process(f *loader.File) error {
	if !utf8.Valid(f.Bytes) {
		return fmt.Errorf("response is not valid utf-8")
	}
	f.Data = string(f.Bytes)
	return nil
}

func (t *textFile) AddToCache(f *loader.File) error {
	f.Caches().Text().Add(f.Key, f.Data.(string))
	return nil
}
