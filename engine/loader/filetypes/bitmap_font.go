package filetypes

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/fzipp/bmfont"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/loader"
)

// BitmapFontEntry is what the bitmapFont cache stores: the parsed .fnt
// descriptor plus the texture keys its page images were registered under.
type BitmapFontEntry struct {
	Descriptor   *bmfont.Descriptor
	PageTextures []string
}

// bitmapFontFile is a multi-part load: the .fnt descriptor is the primary
// transfer, and each page image it references is fetched as a sibling of the
// descriptor URL. Downloads are staged in a scratch dir because the font
// parser wants the descriptor and its sheets side by side on disk.
type bitmapFontFile struct {
	entry *BitmapFontEntry
}

// BitmapFont queues an AngelCode .fnt bitmap font. Page images land in the
// texture registry under "<key>_<page file>".
func BitmapFont(key, url string) *loader.File {
	return loader.NewFile(&bitmapFontFile{}, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseText,
	}, "fnt")
}

func (t *bitmapFontFile) Name() string {
	return "bitmapFont"
}

func (t *bitmapFontFile) TargetCache() string {
	return cache.BitmapFont
}

func (t *bitmapFontFile) Process(f *loader.File) error {
	// Page references live in lines like: page id=0 file="page0.png"
	pageFiles := pageFileNames(f.Bytes)
	if len(pageFiles) == 0 {
		return fmt.Errorf("fnt descriptor for '%s' references no pages", f.Key)
	}

	scratch, err := os.MkdirTemp("", "mochi-bmfont-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	fntPath := filepath.Join(scratch, "font.fnt")
	if err := os.WriteFile(fntPath, f.Bytes, 0o600); err != nil {
		return err
	}

	base := ""
	if idx := strings.LastIndex(f.ResolvedURL, "/"); idx >= 0 {
		base = f.ResolvedURL[:idx+1]
	}

	entry := &BitmapFontEntry{}
	pages := make(map[string]image.Image, len(pageFiles))
	for _, name := range pageFiles {
		body, err := f.Fetch(base+name, loader.RequestSettings{
			ResponseKind: loader.ResponseBinary,
		})
		if err != nil {
			return fmt.Errorf("fetch font page '%s': %w", name, err)
		}
		img, _, err := image.Decode(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("decode font page '%s': %w", name, err)
		}
		pages[name] = img
		if err := os.WriteFile(filepath.Join(scratch, name), body, 0o600); err != nil {
			return err
		}
	}

	font, err := bmfont.Load(fntPath)
	if err != nil {
		return fmt.Errorf("parse fnt descriptor: %w", err)
	}
	entry.Descriptor = font.Descriptor

	for _, page := range font.Descriptor.Pages {
		img, ok := pages[page.File]
		if !ok {
			return fmt.Errorf("fnt descriptor references unknown page '%s'", page.File)
		}
		textureKey := f.Key + "_" + page.File
		if _, err := f.Textures().AddImage(textureKey, img); err != nil {
			return fmt.Errorf("register font page '%s': %w", page.File, err)
		}
		entry.PageTextures = append(entry.PageTextures, textureKey)
	}

	t.entry = entry
	f.Data = entry
	return nil
}

func (t *bitmapFontFile) AddToCache(f *loader.File) error {
	f.Caches().BitmapFont().Add(f.Key, t.entry)
	return nil
}

// pageFileNames extracts the file="..." attribute of every page line in an
// AngelCode text descriptor.
func pageFileNames(descriptor []byte) []string {
	var names []string
	for _, line := range strings.Split(string(descriptor), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "page ") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if value, ok := strings.CutPrefix(field, "file="); ok {
				names = append(names, strings.Trim(value, `"`))
			}
		}
	}
	return names
}
