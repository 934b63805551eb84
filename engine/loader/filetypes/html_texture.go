package filetypes

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"

	"github.com/mochi2d/mochi/engine/loader"
)

// HTMLTextureOptions configures the pixel size of the rendered texture.
type HTMLTextureOptions struct {
	Width  uint32
	Height uint32
}

const (
	DefaultHTMLTextureWidth  = 512
	DefaultHTMLTextureHeight = 512
)

// htmlTextureFile renders an HTML fragment into a texture entry. The
// fragment is wrapped in SVG markup with a foreignObject body; turning that
// document into pixels is the renderer's job.
type htmlTextureFile struct {
	width  uint32
	height uint32
}

// HTMLTexture queues an HTML fragment to be published as an SVG-sourced
// texture under key. A zero-size option falls back to 512x512.
func HTMLTexture(key, url string, opts HTMLTextureOptions) *loader.File {
	if opts.Width == 0 {
		opts.Width = DefaultHTMLTextureWidth
	}
	if opts.Height == 0 {
		opts.Height = DefaultHTMLTextureHeight
	}
	ft := &htmlTextureFile{width: opts.Width, height: opts.Height}
	return loader.NewFile(ft, key, url, loader.RequestSettings{
		ResponseKind: loader.ResponseText,
	}, "html")
}

func (t *htmlTextureFile) Name() string {
	return "htmlTexture"
}

func (t *htmlTextureFile) TargetCache() string {
	// Texture registry, not a data cache.
	return ""
}

func (t *htmlTextureFile) Process(f *loader.File) error {
	fragment := f.Bytes
	if err := scanFragment(fragment); err != nil {
		return err
	}

	w := strconv.FormatUint(uint64(t.width), 10)
	h := strconv.FormatUint(uint64(t.height), 10)

	data := `<svg xmlns="http://www.w3.org/2000/svg" width="` + w + `" height="` + h + `">`
	data += `<foreignObject width="100%" height="100%">`
	data += `<body xmlns="http://www.w3.org/1999/xhtml">`
	data += string(fragment)
	data += `</body></foreignObject></svg>`

	f.Data = []byte(data)
	return nil
}

func (t *htmlTextureFile) AddToCache(f *loader.File) error {
	_, err := f.Textures().AddSVG(f.Key, f.Data.([]byte), t.width, t.height)
	return err
}

// The elements that never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// scanFragment runs the fragment through the HTML lexer and rejects input
// with mismatched or unclosed tags. A foreignObject body must be well-formed
// XML, so such a fragment would produce an SVG document no rasterizer
// accepts.
func scanFragment(fragment []byte) error {
	lex := html.NewLexer(parse.NewInputBytes(fragment))
	var stack []string
	pushed := false
	for {
		tt, _ := lex.Next()
		switch tt {
		case html.ErrorToken:
			if err := lex.Err(); err != io.EOF {
				return fmt.Errorf("invalid html fragment: %w", err)
			}
			if len(stack) > 0 {
				return fmt.Errorf("invalid html fragment: unclosed <%s>", stack[len(stack)-1])
			}
			return nil
		case html.StartTagToken:
			name := string(lex.Text())
			pushed = !voidElements[name]
			if pushed {
				stack = append(stack, name)
			}
		case html.StartTagVoidToken:
			// Self-closing: undo the push from the matching start token.
			if pushed && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			pushed = false
		case html.EndTagToken:
			name := string(lex.Text())
			if len(stack) == 0 || stack[len(stack)-1] != name {
				return fmt.Errorf("invalid html fragment: mismatched </%s>", name)
			}
			stack = stack[:len(stack)-1]
		}
	}
}
