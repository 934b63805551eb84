package textures

import "image"

// SourceKind tells the renderer how to interpret a texture's payload.
type SourceKind int

const (
	// A fully decoded pixel image.
	SourceImage SourceKind = iota
	// An encoded SVG document. Rasterization happens at upload time and is
	// the renderer's business, not ours.
	SourceSVG
)

// Texture is one entry in the texture registry.
type Texture struct {
	Key    string
	Kind   SourceKind
	Width  uint32
	Height uint32
	// Set for SourceImage entries.
	Image image.Image
	// Set for SourceSVG entries: the encoded document bytes.
	Encoded []byte
}

// reference tracks usage of a registered texture, in the manner of the
// renderer's texture bookkeeping: acquire increments, release decrements,
// and an auto-release texture is dropped when its count reaches zero.
type reference struct {
	texture        *Texture
	referenceCount uint32
	autoRelease    bool
}
