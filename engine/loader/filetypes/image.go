package filetypes

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/mochi2d/mochi/engine/loader"
)

// imageFile decodes a downloaded image and registers it as a texture.
type imageFile struct{}

// Image queues an image file. png, jpeg, gif, webp and bmp are decodable.
func Image(key, url string) *loader.File {
	return loader.NewFile(&imageFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseBinary,
	}, "png")
}

func (t *imageFile) Name() string {
	return "image"
}

func (t *imageFile) TargetCache() string {
	return ""
}

func (t *imageFile) Process(f *loader.File) error {
	img, _, err := image.Decode(bytes.NewReader(f.Bytes))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	f.Data = img
	return nil
}

func (t *imageFile) AddToCache(f *loader.File) error {
	_, err := f.Textures().AddImage(f.Key, f.Data.(image.Image))
	return err
}
