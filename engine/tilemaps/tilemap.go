package tilemaps

import (
	"encoding/json"
	"fmt"
)

// Format identifies the source format of a tilemap cache entry.
type Format int

const (
	FormatCSV Format = iota
	Format2DArray
	FormatTiledJSON
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case Format2DArray:
		return "2DARRAY"
	case FormatTiledJSON:
		return "TILEDJSON"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MapData is the generic tilemap cache entry shape: whatever a file type
// parsed, republished under a format tag so consumers can dispatch on it.
type MapData struct {
	Format Format
	Name   string
	Data   interface{}
}

// TiledMap is the structural decode of the Tiled editor's JSON map export.
// Only structure is modelled here; coordinate-system semantics live with the
// map consumers.
type TiledMap struct {
	Type            string          `json:"type"`
	Version         json.RawMessage `json:"version"`
	TiledVersion    string          `json:"tiledversion"`
	Orientation     string          `json:"orientation"`
	RenderOrder     string          `json:"renderorder"`
	Infinite        bool            `json:"infinite"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	TileWidth       int             `json:"tilewidth"`
	TileHeight      int             `json:"tileheight"`
	NextLayerID     int             `json:"nextlayerid"`
	NextObjectID    int             `json:"nextobjectid"`
	Layers          []TiledLayer    `json:"layers"`
	Tilesets        []TiledTileset  `json:"tilesets"`
	Properties      json.RawMessage `json:"properties"`
	BackgroundColor string          `json:"backgroundcolor"`
}

type TiledLayer struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"visible"`
	// Tile GIDs for tilelayer, left raw because infinite maps encode chunks
	// instead of a flat array.
	Data       json.RawMessage `json:"data"`
	Chunks     json.RawMessage `json:"chunks"`
	Objects    json.RawMessage `json:"objects"`
	Layers     []TiledLayer    `json:"layers"`
	Properties json.RawMessage `json:"properties"`
}

type TiledTileset struct {
	FirstGID    int             `json:"firstgid"`
	Source      string          `json:"source"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	ImageWidth  int             `json:"imagewidth"`
	ImageHeight int             `json:"imageheight"`
	TileWidth   int             `json:"tilewidth"`
	TileHeight  int             `json:"tileheight"`
	TileCount   int             `json:"tilecount"`
	Columns     int             `json:"columns"`
	Margin      int             `json:"margin"`
	Spacing     int             `json:"spacing"`
	Tiles       json.RawMessage `json:"tiles"`
	Properties  json.RawMessage `json:"properties"`
}

// ParseTiledJSON decodes a Tiled JSON map export. Anything that is valid
// JSON but clearly not a map document is rejected.
func ParseTiledJSON(data []byte) (*TiledMap, error) {
	var m TiledMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tilemap: invalid json: %w", err)
	}
	// Older Tiled exports omit "type"; require map dimensions instead.
	if m.Type != "" && m.Type != "map" {
		return nil, fmt.Errorf("tilemap: document type '%s' is not a map", m.Type)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("tilemap: missing map dimensions")
	}
	return &m, nil
}
