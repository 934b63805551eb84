package filetypes

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/config"
	"github.com/mochi2d/mochi/engine/loader"
	"github.com/mochi2d/mochi/engine/textures"
	"github.com/mochi2d/mochi/engine/tilemaps"
)

const tiledMapJSON = `{
	"type": "map",
	"orientation": "orthogonal",
	"width": 2, "height": 2, "tilewidth": 16, "tileheight": 16,
	"layers": [
		{"id": 1, "name": "ground", "type": "tilelayer",
		 "width": 2, "height": 2, "x": 0, "y": 0,
		 "opacity": 1, "visible": true, "data": [1,2,3,4]}
	],
	"tilesets": [{"firstgid": 1, "name": "tiles"}]
}`

const fntDescriptor = `info face="TestFont" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1 outline=0
common lineHeight=32 base=26 scaleW=64 scaleH=64 pages=1 packed=0 alphaChnl=1 redChnl=0 greenChnl=0 blueChnl=0
page id=0 file="page0.png"
chars count=2
char id=65 x=0 y=0 width=10 height=12 xoffset=0 yoffset=2 xadvance=11 page=0 chnl=15
char id=66 x=10 y=0 width=10 height=12 xoffset=0 yoffset=2 xadvance=11 page=0 chnl=15
kernings count=1
kerning first=65 second=66 amount=-1
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newTestEnv spins up a loader pointed at a stub asset server.
func newTestEnv(t *testing.T, routes map[string][]byte) (*loader.Loader, *cache.Manager, *textures.Manager) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	caches := cache.NewManager()
	texs := textures.NewManager()
	return loader.New(cfg, caches, texs), caches, texs
}

func loadOne(t *testing.T, l *loader.Loader, f *loader.File) {
	t.Helper()
	require.NoError(t, l.Enqueue(f))
	require.NoError(t, l.Start(context.Background()))
}

func TestHTMLTextureWrapsFragmentInSVG(t *testing.T) {
	fragment := `<div style="color: red">Score: <b>9000</b></div>`
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/scoreboard.html": []byte(fragment),
	})

	f := HTMLTexture("scoreboard", "scoreboard.html", HTMLTextureOptions{Width: 256, Height: 128})
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State())

	tex, err := texs.Get("scoreboard")
	require.NoError(t, err)
	assert.Equal(t, textures.SourceSVG, tex.Kind)
	assert.Equal(t, uint32(256), tex.Width)
	assert.Equal(t, uint32(128), tex.Height)

	want := `<svg xmlns="http://www.w3.org/2000/svg" width="256" height="128">` +
		`<foreignObject width="100%" height="100%">` +
		`<body xmlns="http://www.w3.org/1999/xhtml">` +
		fragment +
		`</body></foreignObject></svg>`
	assert.Equal(t, want, string(tex.Encoded))
}

func TestHTMLTextureDefaultSize(t *testing.T) {
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/panel.html": []byte(`<p>hi</p>`),
	})

	f := HTMLTexture("panel", "panel.html", HTMLTextureOptions{})
	loadOne(t, l, f)

	tex, err := texs.Get("panel")
	require.NoError(t, err)
	assert.Equal(t, uint32(512), tex.Width)
	assert.Equal(t, uint32(512), tex.Height)
	assert.Contains(t, string(tex.Encoded), `width="512" height="512"`)
}

func TestHTMLTextureAcceptsVoidAndSelfClosingTags(t *testing.T) {
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/hud.html": []byte(`<div><img src="x.png"><br/><span>ok</span></div>`),
	})

	f := HTMLTexture("hud", "hud.html", HTMLTextureOptions{})
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State())
	assert.True(t, texs.Exists("hud"))
}

func TestHTMLTextureRejectsUnbalancedFragment(t *testing.T) {
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/bad.html":  []byte(`<div><span>hi</div>`),
		"/bad2.html": []byte(`<div>hi`),
	})

	f := HTMLTexture("bad", "bad.html", HTMLTextureOptions{})
	loadOne(t, l, f)
	assert.Equal(t, loader.FileStateErrored, f.State())
	assert.False(t, texs.Exists("bad"))

	require.NoError(t, l.Reset())
	f = HTMLTexture("bad2", "bad2.html", HTMLTextureOptions{})
	loadOne(t, l, f)
	assert.Equal(t, loader.FileStateErrored, f.State())
}

func TestTilemapJSONRepublishesTaggedRecord(t *testing.T) {
	l, caches, _ := newTestEnv(t, map[string][]byte{
		"/maps/level1.json": []byte(tiledMapJSON),
	})

	f := TilemapJSON("level1", "maps/level1.json")
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State())

	v, err := caches.Tilemap().Get("level1")
	require.NoError(t, err)
	entry, ok := v.(*tilemaps.MapData)
	require.True(t, ok)

	assert.Equal(t, tilemaps.FormatTiledJSON, entry.Format)
	assert.Equal(t, "level1", entry.Name)
	m, ok := entry.Data.(*tilemaps.TiledMap)
	require.True(t, ok)
	assert.Equal(t, 2, m.Width)
	require.Len(t, m.Layers, 1)
	assert.Equal(t, "ground", m.Layers[0].Name)
}

func TestTilemapJSONRejectsMalformedJSON(t *testing.T) {
	l, caches, _ := newTestEnv(t, map[string][]byte{
		"/broken.json": []byte(`{"width": `),
	})

	f := TilemapJSON("broken", "broken.json")
	loadOne(t, l, f)
	assert.Equal(t, loader.FileStateErrored, f.State())
	assert.False(t, caches.Tilemap().Has("broken"))
}

func TestTilemapJSONDefaultExtension(t *testing.T) {
	l, caches, _ := newTestEnv(t, map[string][]byte{
		"/level2.json": []byte(tiledMapJSON),
	})

	// No URL: key + ".json".
	f := TilemapJSON("level2", "")
	loadOne(t, l, f)
	assert.True(t, caches.Tilemap().Has("level2"))
}

func TestImageDecodesIntoTexture(t *testing.T) {
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/logo.png": pngBytes(t, 5, 7),
	})

	f := Image("logo", "logo.png")
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State())

	tex, err := texs.Get("logo")
	require.NoError(t, err)
	assert.Equal(t, textures.SourceImage, tex.Kind)
	assert.Equal(t, uint32(5), tex.Width)
	assert.Equal(t, uint32(7), tex.Height)
}

func TestImageRejectsGarbage(t *testing.T) {
	l, _, texs := newTestEnv(t, map[string][]byte{
		"/logo.png": []byte("not an image"),
	})

	f := Image("logo", "logo.png")
	loadOne(t, l, f)
	assert.Equal(t, loader.FileStateErrored, f.State())
	assert.False(t, texs.Exists("logo"))
}

func TestJSONTextAndBinary(t *testing.T) {
	l, caches, _ := newTestEnv(t, map[string][]byte{
		"/cfg.json":    []byte(`{"lives": 3}`),
		"/credits.txt": []byte("made with love"),
		"/blob.bin":    {0x00, 0x01, 0xfe, 0xff},
	})

	loadOne(t, l, JSON("cfg", "cfg.json"))
	require.NoError(t, l.Reset())
	loadOne(t, l, Text("credits", "credits.txt"))
	require.NoError(t, l.Reset())
	loadOne(t, l, Binary("blob", "blob.bin"))

	v, err := caches.JSON().Get("cfg")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"lives": float64(3)}, v)

	v, err = caches.Text().Get("credits")
	require.NoError(t, err)
	assert.Equal(t, "made with love", v)

	v, err = caches.Binary().Get("blob")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xfe, 0xff}, v)
}

func TestBitmapFontLoadsDescriptorAndPages(t *testing.T) {
	l, caches, texs := newTestEnv(t, map[string][]byte{
		"/fonts/arcade.fnt": []byte(fntDescriptor),
		"/fonts/page0.png":  pngBytes(t, 64, 64),
	})

	f := BitmapFont("arcade", "fonts/arcade.fnt")
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State(), "err: %v", f.Err)

	v, err := caches.BitmapFont().Get("arcade")
	require.NoError(t, err)
	entry, ok := v.(*BitmapFontEntry)
	require.True(t, ok)

	assert.Equal(t, "TestFont", entry.Descriptor.Info.Face)
	assert.Equal(t, []string{"arcade_page0.png"}, entry.PageTextures)
	assert.True(t, texs.Exists("arcade_page0.png"))
}

func TestBitmapFontLocalRootWithPrefix(t *testing.T) {
	root := t.TempDir()
	fontDir := filepath.Join(root, "v1-fonts")
	require.NoError(t, os.MkdirAll(fontDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fontDir, "arcade.fnt"), []byte(fntDescriptor), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fontDir, "page0.png"), pngBytes(t, 64, 64), 0o644))

	// The page URL is derived from the already-prefixed descriptor URL; the
	// prefix must not be applied to it a second time.
	cfg := config.Default()
	cfg.LocalRoot = root
	cfg.Prefix = "v1-"
	caches := cache.NewManager()
	texs := textures.NewManager()
	l := loader.New(cfg, caches, texs)

	f := BitmapFont("arcade", "fonts/arcade.fnt")
	loadOne(t, l, f)
	require.Equal(t, loader.FileStateComplete, f.State(), "err: %v", f.Err)
	assert.True(t, texs.Exists("arcade_page0.png"))
	assert.True(t, caches.BitmapFont().Has("arcade"))
}

func TestBitmapFontMissingPageFails(t *testing.T) {
	l, caches, _ := newTestEnv(t, map[string][]byte{
		"/fonts/arcade.fnt": []byte(fntDescriptor),
	})

	f := BitmapFont("arcade", "fonts/arcade.fnt")
	loadOne(t, l, f)
	assert.Equal(t, loader.FileStateErrored, f.State())
	assert.False(t, caches.BitmapFont().Has("arcade"))
}

func TestFileTypeTags(t *testing.T) {
	assert.Equal(t, "htmlTexture", HTMLTexture("k", "", HTMLTextureOptions{}).Type())
	assert.Equal(t, "tilemapJSON", TilemapJSON("k", "").Type())
	assert.Equal(t, "image", Image("k", "").Type())
	assert.Equal(t, "json", JSON("k", "").Type())
	assert.Equal(t, "text", Text("k", "").Type())
	assert.Equal(t, "binary", Binary("k", "").Type())
	assert.Equal(t, "bitmapFont", BitmapFont("k", "").Type())
}
