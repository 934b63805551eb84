package loader

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/textures"
)

// FileState tracks a file through its lifecycle. Transfer failures and
// processing failures are distinct terminal states.
type FileState int32

const (
	FileStatePending FileState = iota
	FileStateLoading
	FileStateLoaded
	FileStateProcessing
	FileStateComplete
	// The transfer itself failed.
	FileStateFailed
	// The transfer succeeded but the post-load transform rejected the data.
	FileStateErrored
)

func (s FileState) String() string {
	switch s {
	case FileStatePending:
		return "pending"
	case FileStateLoading:
		return "loading"
	case FileStateLoaded:
		return "loaded"
	case FileStateProcessing:
		return "processing"
	case FileStateComplete:
		return "complete"
	case FileStateFailed:
		return "failed"
	case FileStateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// FileType is the plugin contract. A file type configures the generic File,
// performs a small fixed transform on the downloaded bytes, and inserts the
// result into exactly one keyed cache.
type FileType interface {
	// The type tag, e.g. "image" or "tilemapJSON".
	Name() string
	// Process turns f.Bytes into f.Data. Called after a successful transfer.
	Process(f *File) error
	// AddToCache publishes f.Data under f.Key. Called after Process.
	AddToCache(f *File) error
	// TargetCache names the cache AddToCache inserts into, for duplicate-key
	// checks at enqueue time. Empty means the texture registry.
	TargetCache() string
}

// File is one loadable resource: a key, a URL, transfer settings and the
// state bookkeeping around a single download.
type File struct {
	// For log correlation and multi-part linkage.
	ID  uuid.UUID
	Key string
	URL string
	// Computed at enqueue time.
	ResolvedURL string
	Settings    RequestSettings

	// Raw response body.
	Bytes []byte
	Size  int64
	// Processed payload, produced by the file type's transform.
	Data interface{}
	// Terminal failure, if any.
	Err error
	// Transfer duration in milliseconds, for metrics.
	TransferMS float64

	state            atomic.Int32
	fileType         FileType
	defaultExtension string
	loader           *Loader
}

// NewFile builds a pending file for the given type. The loader resolves the
// URL and attaches itself when the file is enqueued.
func NewFile(fileType FileType, key, url string, settings RequestSettings, defaultExtension string) *File {
	f := &File{
		ID:               uuid.New(),
		Key:              key,
		URL:              url,
		Settings:         settings,
		fileType:         fileType,
		defaultExtension: defaultExtension,
	}
	f.state.Store(int32(FileStatePending))
	return f
}

func (f *File) State() FileState {
	return FileState(f.state.Load())
}

func (f *File) setState(s FileState) {
	f.state.Store(int32(s))
}

// Type returns the file's type tag.
func (f *File) Type() string {
	return f.fileType.Name()
}

// Loader returns the loader this file was enqueued on. Nil until enqueued.
func (f *File) Loader() *Loader {
	return f.loader
}

// Caches exposes the cache manager to file types during AddToCache.
func (f *File) Caches() *cache.Manager {
	return f.loader.caches
}

// Textures exposes the texture registry to file types during AddToCache.
func (f *File) Textures() *textures.Manager {
	return f.loader.textures
}

// Fetch runs a secondary transfer through the owning loader's transports,
// for file types that load more than one artifact (e.g. a font descriptor
// plus its page image). The URL must already be resolved; derive it from
// ResolvedURL rather than the raw URL.
func (f *File) Fetch(url string, settings RequestSettings) ([]byte, error) {
	return f.loader.fetchRaw(url, settings)
}
