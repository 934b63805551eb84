package tilemaps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMap = `{
	"type": "map",
	"version": "1.10",
	"tiledversion": "1.10.2",
	"orientation": "orthogonal",
	"renderorder": "right-down",
	"width": 4,
	"height": 3,
	"tilewidth": 16,
	"tileheight": 16,
	"infinite": false,
	"layers": [
		{
			"id": 1,
			"name": "ground",
			"type": "tilelayer",
			"width": 4,
			"height": 3,
			"x": 0,
			"y": 0,
			"opacity": 1,
			"visible": true,
			"data": [1,1,1,1, 2,2,2,2, 3,3,3,3]
		},
		{
			"id": 2,
			"name": "spawns",
			"type": "objectgroup",
			"opacity": 1,
			"visible": true,
			"x": 0,
			"y": 0,
			"objects": [{"id": 1, "name": "start", "x": 8, "y": 8}]
		}
	],
	"tilesets": [
		{"firstgid": 1, "name": "terrain", "image": "terrain.png",
		 "imagewidth": 64, "imageheight": 64, "tilewidth": 16,
		 "tileheight": 16, "tilecount": 16, "columns": 4}
	]
}`

func TestParseTiledJSON(t *testing.T) {
	m, err := ParseTiledJSON([]byte(sampleMap))
	require.NoError(t, err)

	assert.Equal(t, "orthogonal", m.Orientation)
	assert.Equal(t, 4, m.Width)
	assert.Equal(t, 3, m.Height)
	assert.Equal(t, 16, m.TileWidth)
	require.Len(t, m.Layers, 2)
	assert.Equal(t, "tilelayer", m.Layers[0].Type)
	assert.Equal(t, "objectgroup", m.Layers[1].Type)
	assert.NotEmpty(t, m.Layers[0].Data)
	require.Len(t, m.Tilesets, 1)
	assert.Equal(t, 1, m.Tilesets[0].FirstGID)
	assert.Equal(t, "terrain", m.Tilesets[0].Name)
}

func TestParseTiledJSONWithoutTypeField(t *testing.T) {
	// Older exports predate the "type" field.
	m, err := ParseTiledJSON([]byte(`{"width": 2, "height": 2, "tilewidth": 8, "tileheight": 8}`))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width)
}

func TestParseTiledJSONRejectsGarbage(t *testing.T) {
	_, err := ParseTiledJSON([]byte(`{"not`))
	assert.Error(t, err)

	_, err = ParseTiledJSON([]byte(`{"type": "tileset"}`))
	assert.Error(t, err)

	_, err = ParseTiledJSON([]byte(`{"type": "map"}`))
	assert.Error(t, err, "missing dimensions")
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "TILEDJSON", FormatTiledJSON.String())
	assert.Equal(t, "CSV", FormatCSV.String())
	assert.Equal(t, "2DARRAY", Format2DArray.String())
}
