package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/mochi2d/mochi/engine/cache"
	"github.com/mochi2d/mochi/engine/config"
	"github.com/mochi2d/mochi/engine/containers"
	"github.com/mochi2d/mochi/engine/core"
	"github.com/mochi2d/mochi/engine/mathx"
	"github.com/mochi2d/mochi/engine/textures"
)

// LoaderState is the batch-level state machine.
type LoaderState int

const (
	LoaderIdle LoaderState = iota
	LoaderLoading
	// Entered when the first post-load transform begins. Transforms run on
	// the transfer workers, so transfers may still be in flight.
	LoaderProcessing
	LoaderComplete
	LoaderShutdown
)

// The pending queue is bounded; enqueueing beyond this fails loudly rather
// than growing without limit.
const MaxQueuedFiles = 1024

var (
	ErrDuplicateKey = errors.New("a file with the given key is already queued or cached")
	ErrNotIdle      = errors.New("loader is not idle")
	ErrShutdown     = errors.New("loader has been shut down")
)

// Loader drains a queue of files through a bounded set of parallel
// transfers. Each file goes transfer -> process -> cache insert on a worker;
// a failed file never aborts the batch.
type Loader struct {
	cfg      *config.LoaderConfig
	http     Transport
	local    Transport
	caches   *cache.Manager
	textures *textures.Manager

	mutex         sync.Mutex
	pending       *containers.RingQueue[*File]
	queued        map[string]*File
	state         LoaderState
	totalToLoad   int
	totalComplete int
	totalFailed   int
	progress      float64

	// Context of the running batch, for secondary fetches issued by file
	// types mid-process.
	runCtx context.Context
}

func New(cfg *config.LoaderConfig, caches *cache.Manager, texs *textures.Manager) *Loader {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Normalize()
	core.EventInitialize()
	core.MetricsInitialize()

	return &Loader{
		cfg:      cfg,
		http:     NewHTTPTransport(),
		local:    &FileTransport{Root: cfg.LocalRoot},
		caches:   caches,
		textures: texs,
		pending:  containers.NewRingQueue[*File](MaxQueuedFiles),
		queued:   make(map[string]*File),
		state:    LoaderIdle,
	}
}

// SetTransport swaps the HTTP transport. Tests use this to stub transfers.
func (l *Loader) SetTransport(t Transport) {
	l.http = t
}

func (l *Loader) Config() *config.LoaderConfig {
	return l.cfg
}

func (l *Loader) State() LoaderState {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state
}

// Progress reports overall batch progress in [0,1]. Failed files count as
// processed.
func (l *Loader) Progress() float64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.progress
}

// Enqueue adds a file to the pending queue. Keys already queued, or already
// present in the file type's target cache, are rejected; the first load of a
// key wins.
func (l *Loader) Enqueue(f *File) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.state == LoaderShutdown {
		return ErrShutdown
	}
	if _, exists := l.queued[f.Key]; exists {
		core.LogWarn("file '%s' is already queued, ignoring", f.Key)
		return fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key)
	}
	if l.hasCached(f) {
		core.LogWarn("key '%s' already exists in the '%s' cache, ignoring", f.Key, f.fileType.TargetCache())
		return fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key)
	}

	f.loader = l
	f.Settings = f.Settings.merged(l.defaultSettings())
	f.ResolvedURL = l.resolveURL(f)

	if err := l.pending.Enqueue(f); err != nil {
		return fmt.Errorf("enqueue '%s': %w", f.Key, err)
	}
	l.queued[f.Key] = f
	l.totalToLoad++
	core.LogDebug("queued %s '%s' (%s) from %s", f.Type(), f.Key, f.ID, f.ResolvedURL)
	return nil
}

func (l *Loader) hasCached(f *File) bool {
	target := f.fileType.TargetCache()
	if target == "" {
		return l.textures != nil && l.textures.Exists(f.Key)
	}
	return l.caches != nil && l.caches.Custom(target).Has(f.Key)
}

func (l *Loader) defaultSettings() RequestSettings {
	return RequestSettings{
		Timeout:   l.cfg.ResponseTimeout(),
		UserAgent: l.cfg.UserAgent,
		Headers:   l.cfg.Headers,
	}
}

// Start drains the queue and blocks until every queued file reached a
// terminal state. At most MaxParallelDownloads transfers run at once. The
// returned error reflects ctx cancellation only; per-file failures surface
// through file states and events.
func (l *Loader) Start(ctx context.Context) error {
	l.mutex.Lock()
	if l.state == LoaderShutdown {
		l.mutex.Unlock()
		return ErrShutdown
	}
	if l.state != LoaderIdle && l.state != LoaderComplete {
		l.mutex.Unlock()
		return ErrNotIdle
	}
	if l.pending.IsEmpty() {
		// Nothing queued: a zero-file batch completes immediately.
		l.state = LoaderComplete
		l.progress = 1
		l.mutex.Unlock()
		core.EventFire(core.EVENT_CODE_LOAD_COMPLETE, l, core.EventContext{Progress: 1})
		return nil
	}
	l.state = LoaderLoading
	l.runCtx = ctx
	batch := make([]*File, 0, l.pending.Len())
	for !l.pending.IsEmpty() {
		f, _ := l.pending.Dequeue()
		batch = append(batch, f)
	}
	l.mutex.Unlock()

	core.EventFire(core.EVENT_CODE_LOAD_START, l, core.EventContext{})
	core.LogInfo("load started: %d file(s), %d parallel", len(batch), l.cfg.MaxParallelDownloads)

	sem := semaphore.NewWeighted(int64(l.cfg.MaxParallelDownloads))
	var wg sync.WaitGroup
	var ctxErr error
	for _, f := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled: everything not yet started fails with the ctx error.
			l.fileFailed(f, FileStateFailed, err)
			ctxErr = err
			continue
		}
		wg.Add(1)
		go func(f *File) {
			defer wg.Done()
			defer sem.Release(1)
			l.loadOne(ctx, f)
		}(f)
	}
	wg.Wait()

	l.mutex.Lock()
	l.state = LoaderComplete
	l.runCtx = nil
	failed := l.totalFailed
	l.mutex.Unlock()

	core.EventFire(core.EVENT_CODE_LOAD_COMPLETE, l, core.EventContext{Progress: 1})
	if failed > 0 {
		core.LogWarn("load complete with %d failure(s)", failed)
	} else {
		core.LogInfo("load complete")
	}
	return ctxErr
}

// loadOne walks a single file through the full state machine.
func (l *Loader) loadOne(ctx context.Context, f *File) {
	f.setState(FileStateLoading)

	url := f.ResolvedURL
	if strings.HasPrefix(url, "//") {
		// Protocol-relative URLs default to https outside a browser.
		url = "https:" + url
	}
	transport, err := l.transportFor(url)
	if err != nil {
		l.fileFailed(f, FileStateFailed, err)
		return
	}

	clock := core.NewClock()
	clock.Start()
	body, err := transport.Fetch(ctx, url, f.Settings)
	clock.Update()
	if err != nil {
		l.fileFailed(f, FileStateFailed, fmt.Errorf("fetch %s: %w", url, err))
		return
	}
	f.Bytes = body
	f.Size = int64(len(body))
	f.TransferMS = clock.ElapsedMS()
	f.setState(FileStateLoaded)

	f.setState(FileStateProcessing)
	l.mutex.Lock()
	if l.state == LoaderLoading {
		l.state = LoaderProcessing
	}
	l.mutex.Unlock()
	if err := f.fileType.Process(f); err != nil {
		l.fileFailed(f, FileStateErrored, fmt.Errorf("process '%s': %w", f.Key, err))
		return
	}
	if err := f.fileType.AddToCache(f); err != nil {
		l.fileFailed(f, FileStateErrored, fmt.Errorf("cache '%s': %w", f.Key, err))
		return
	}
	f.setState(FileStateComplete)

	l.mutex.Lock()
	l.totalComplete++
	delete(l.queued, f.Key)
	l.updateProgress()
	progress := l.progress
	l.mutex.Unlock()

	core.MetricsFileComplete(f.TransferMS, f.Size)
	core.LogDebug("file '%s' complete in %.1fms (%d bytes)", f.Key, f.TransferMS, f.Size)
	core.EventFire(core.EVENT_CODE_FILE_COMPLETE, l, core.EventContext{
		FileKey:  f.Key,
		FileType: f.Type(),
		Bytes:    f.Size,
	})
	core.EventFire(core.EVENT_CODE_LOAD_PROGRESS, l, core.EventContext{Progress: progress})
}

func (l *Loader) fileFailed(f *File, state FileState, err error) {
	f.Err = err
	f.setState(state)

	l.mutex.Lock()
	l.totalFailed++
	delete(l.queued, f.Key)
	l.updateProgress()
	progress := l.progress
	l.mutex.Unlock()

	core.MetricsFileFailed()
	core.LogError("file '%s' %s: %v", f.Key, state, err)
	core.EventFire(core.EVENT_CODE_FILE_ERRORED, l, core.EventContext{
		FileKey:  f.Key,
		FileType: f.Type(),
		Err:      err,
	})
	core.EventFire(core.EVENT_CODE_LOAD_PROGRESS, l, core.EventContext{Progress: progress})
}

// Caller must hold l.mutex.
func (l *Loader) updateProgress() {
	if l.totalToLoad == 0 {
		l.progress = 1
		return
	}
	done := float64(l.totalComplete + l.totalFailed)
	l.progress = mathx.Clamp(done/float64(l.totalToLoad), 0, 1)
}

// TotalFailed reports the failure count of the finished batch.
func (l *Loader) TotalFailed() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.totalFailed
}

// TotalComplete reports the success count of the finished batch.
func (l *Loader) TotalComplete() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.totalComplete
}

// Reset returns a complete loader to idle so a new batch can be queued.
// Batch counters restart from zero.
func (l *Loader) Reset() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.state == LoaderLoading || l.state == LoaderProcessing {
		return ErrNotIdle
	}
	if l.state == LoaderShutdown {
		return ErrShutdown
	}
	l.state = LoaderIdle
	l.totalToLoad = 0
	l.totalComplete = 0
	l.totalFailed = 0
	l.progress = 0
	return nil
}

// Shutdown permanently retires the loader. Queued files are dropped.
func (l *Loader) Shutdown() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.state = LoaderShutdown
	for !l.pending.IsEmpty() {
		l.pending.Dequeue()
	}
	l.queued = make(map[string]*File)
}

// fetchRaw serves secondary transfers issued by multi-part file types. The
// URL is used as given: callers derive sibling URLs from a file's
// ResolvedURL, which already carries base/path/prefix, so resolving again
// would double the prefix. Reuses the batch context.
func (l *Loader) fetchRaw(url string, settings RequestSettings) ([]byte, error) {
	l.mutex.Lock()
	ctx := l.runCtx
	l.mutex.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	transport, err := l.transportFor(url)
	if err != nil {
		return nil, err
	}
	return transport.Fetch(ctx, url, settings.merged(l.defaultSettings()))
}
