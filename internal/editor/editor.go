// Package editor composes an image session, a crop controller and the form
// panels into one editing session per user.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-editor/internal/crop"
	"github.com/phambaophuc/image-editor/internal/geometry"
	"github.com/phambaophuc/image-editor/internal/services/processor"
	"github.com/phambaophuc/image-editor/internal/services/session"
	"github.com/phambaophuc/image-editor/internal/services/storage"
	"go.uber.org/zap"
)

var (
	ErrStaleLoad      = errors.New("a newer image was loaded")
	ErrEditorNotFound = errors.New("editor not found")
	ErrInvalidPointer = errors.New("unknown pointer event")
)

// Options are the per-editor settings shared by every editor of a Manager.
type Options struct {
	Filter          imaging.ResampleFilter
	MinSize         int
	MaxFileSize     int64
	MaxPixels       int
	DefaultFilename string
	DefaultQuality  float64
	SmartSeed       bool
	IdleTimeout     time.Duration
}

func DefaultOptions() Options {
	return Options{
		Filter:          imaging.Lanczos,
		MinSize:         crop.DefaultMinSize,
		MaxFileSize:     processor.MaxUploadSize,
		MaxPixels:       processor.DefaultMaxPixels,
		DefaultFilename: "resized-image",
		DefaultQuality:  0.9,
		IdleTimeout:     30 * time.Minute,
	}
}

type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// PointerEvent is a pointer event as the page captured it. X and Y are in
// the viewport's space, or canvas pixels when no viewport is known.
type PointerEvent struct {
	Kind   PointerKind
	X, Y   float64
	Target crop.Target
	Handle geometry.Handle
	View   *Viewport
}

// ResizePanelEdit carries the fields of one resize panel edit. Nil fields are
// left alone.
type ResizePanelEdit struct {
	Width          *int
	Height         *int
	Scale          *float64
	MaintainAspect *bool
}

// State is a snapshot of everything the page shows.
type State struct {
	ID                 string              `json:"id"`
	Loaded             bool                `json:"loaded"`
	SourceName         string              `json:"source_name,omitempty"`
	Dimensions         geometry.Dimensions `json:"dimensions"`
	OriginalDimensions geometry.Dimensions `json:"original_dimensions"`
	Revision           uint64              `json:"revision"`
	Crop               crop.Update         `json:"crop"`
	Resize             ResizePanelState    `json:"resize"`
	Download           DownloadPanelState  `json:"download"`
}

// Editor serializes every operation behind one mutex. Decoding is the only
// step performed outside it.
type Editor struct {
	id     string
	opts   Options
	cache  *storage.StorageService
	logger *zap.Logger

	mu          sync.Mutex
	session     *session.Session
	crop        *crop.Controller
	resize      *ResizePanel
	download    *DownloadPanel
	view        Viewport
	sourceName  string
	generation  uint64
	revision    uint64
	subscribers map[int]crop.Listener
	nextSub     int

	// Unix nanoseconds; read by the manager's sweep without taking mu.
	lastUsed atomic.Int64
}

func newEditor(id string, opts Options, cache *storage.StorageService, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("editor_id", id))
	e := &Editor{
		id:          id,
		opts:        opts,
		cache:       cache,
		logger:      logger,
		session:     newSession(opts, logger),
		resize:      NewResizePanel(),
		download:    NewDownloadPanel(opts.DefaultFilename, opts.DefaultQuality),
		subscribers: make(map[int]crop.Listener),
	}
	e.touch()
	ctrlOpts := []crop.Option{crop.WithMinSize(opts.MinSize), crop.WithLogger(logger)}
	if opts.SmartSeed {
		ctrlOpts = append(ctrlOpts, crop.WithSeeder(crop.SeederFunc(e.smartSeed)))
	}
	e.crop = crop.NewController(ctrlOpts...)
	e.crop.Subscribe(e.broadcast)
	return e
}

func newSession(opts Options, logger *zap.Logger) *session.Session {
	s := session.New(opts.Filter, logger)
	s.SetMaxPixels(opts.MaxPixels)
	return s
}

func (e *Editor) ID() string { return e.id }

// Subscribe registers l for every crop update until the returned func is
// called. Listeners run with the editor locked and must not call back into it.
func (e *Editor) Subscribe(l crop.Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = l
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

func (e *Editor) broadcast(u crop.Update) {
	for _, l := range e.subscribers {
		l(u)
	}
}

// Load validates and decodes an upload into a fresh session. When loads
// overlap, only the one started last is kept; earlier ones report
// ErrStaleLoad.
func (e *Editor) Load(ctx context.Context, name, declaredType string, data []byte) (geometry.Dimensions, error) {
	if err := processor.ValidateUpload(declaredType, data, e.opts.MaxFileSize); err != nil {
		return geometry.Dimensions{}, err
	}

	gen := e.beginLoad()
	next := newSession(e.opts, e.logger)
	_, err := next.Load(ctx, data)
	return e.finishLoad(ctx, gen, name, next, err)
}

func (e *Editor) beginLoad() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	e.touch()
	return e.generation
}

func (e *Editor) finishLoad(ctx context.Context, gen uint64, name string, next *session.Session, err error) (geometry.Dimensions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.logger.Info("Discarding stale image load", zap.String("name", name))
		return geometry.Dimensions{}, ErrStaleLoad
	}
	if err != nil {
		return geometry.Dimensions{}, err
	}

	e.session = next
	e.sourceName = name
	e.crop.Clear()
	e.afterRasterChange(ctx)
	return next.Dimensions(), nil
}

// Resize re-renders the original at dims.
func (e *Editor) Resize(ctx context.Context, dims geometry.Dimensions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if err := e.session.Resize(dims); err != nil {
		return err
	}
	e.afterRasterChange(ctx)
	return nil
}

// EditResizePanel applies field edits in the order aspect lock, scale, width,
// height and returns the panel.
func (e *Editor) EditResizePanel(edit ResizePanelEdit) ResizePanelState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if edit.MaintainAspect != nil {
		e.resize.SetMaintainAspect(*edit.MaintainAspect)
	}
	if edit.Scale != nil {
		e.resize.SetScale(*edit.Scale)
	}
	if edit.Width != nil {
		e.resize.SetWidth(*edit.Width)
	}
	if edit.Height != nil {
		e.resize.SetHeight(*edit.Height)
	}
	return e.resize.State()
}

// ApplyResizePanel resizes to the panel's fields.
func (e *Editor) ApplyResizePanel(ctx context.Context) (geometry.Dimensions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	target := e.resize.Target()
	if err := e.session.Resize(target); err != nil {
		return geometry.Dimensions{}, err
	}
	e.afterRasterChange(ctx)
	return target, nil
}

// SetCropMode sets crop mode, or toggles it when on is nil.
func (e *Editor) SetCropMode(on *bool) crop.Update {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if on == nil {
		e.crop.ToggleCropMode()
	} else {
		e.crop.SetCropMode(*on)
	}
	return e.crop.Snapshot()
}

// SetCropRect applies a numeric edit of the selection.
func (e *Editor) SetCropRect(r geometry.Rect) (crop.Update, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.session.Loaded() {
		return crop.Update{}, session.ErrNoImage
	}
	e.crop.SetRect(r)
	return e.crop.Snapshot(), nil
}

// SetViewport records how the page currently renders the canvas.
func (e *Editor) SetViewport(v Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = v
}

// Pointer feeds one pointer event to the crop controller after converting it
// to canvas pixels. It reports whether the controller acted on it.
func (e *Editor) Pointer(ev PointerEvent) (crop.Update, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if ev.View != nil {
		e.view = *ev.View
	}
	p := e.view.ToCanvas(ev.X, ev.Y, e.session.Dimensions())

	var handled bool
	switch ev.Kind {
	case PointerDown:
		handled = e.crop.PointerDown(crop.PointerDown{Pos: p, Target: ev.Target, Handle: ev.Handle})
	case PointerMove:
		handled = e.crop.PointerMove(p)
	case PointerUp:
		handled = e.crop.PointerUp(p)
	default:
		return crop.Update{}, false, fmt.Errorf("%w: %q", ErrInvalidPointer, ev.Kind)
	}
	return e.crop.Snapshot(), handled, nil
}

// SuggestCrop asks smartcrop for a selection with the given aspect and shows
// it in crop mode.
func (e *Editor) SuggestCrop(ctx context.Context, aspect geometry.Dimensions) (crop.Update, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.session.Loaded() {
		return crop.Update{}, session.ErrNoImage
	}
	rect, err := processor.SuggestCrop(ctx, e.session.Current(), aspect, e.opts.Filter)
	if err != nil {
		return crop.Update{}, err
	}
	e.crop.SetCropMode(true)
	e.crop.SetRect(rect)
	return e.crop.Snapshot(), nil
}

func (e *Editor) smartSeed(bounds geometry.Dimensions) geometry.Rect {
	fallback := crop.CenteredSeeder{MinSize: e.opts.MinSize}
	if !e.session.Loaded() {
		return fallback.Seed(bounds)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rect, err := processor.SuggestCrop(ctx, e.session.Current(), geometry.Dimensions{}, e.opts.Filter)
	if err != nil {
		e.logger.Warn("Smart seed failed, using centered selection", zap.Error(err))
		return fallback.Seed(bounds)
	}
	return rect
}

// Crop commits the selection, or rect when given.
func (e *Editor) Crop(ctx context.Context, rect *geometry.Rect) (geometry.Rect, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.session.Loaded() {
		return geometry.Rect{}, session.ErrNoImage
	}
	if rect != nil {
		if !rect.Within(e.session.Dimensions()) {
			return geometry.Rect{}, fmt.Errorf("crop %s of %s: %w", rect, e.session.Dimensions(), session.ErrInvalidRect)
		}
		e.crop.SetRect(*rect)
	}
	applied, err := e.crop.Commit(e.session)
	if err != nil {
		if errors.Is(err, crop.ErrNoSelection) {
			return geometry.Rect{}, fmt.Errorf("%w: %v", session.ErrInvalidRect, err)
		}
		return geometry.Rect{}, err
	}
	e.afterRasterChange(ctx)
	return applied, nil
}

// Reset restores the uploaded image and clears the selection.
func (e *Editor) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if err := e.session.Reset(); err != nil {
		return err
	}
	e.crop.Clear()
	e.afterRasterChange(ctx)
	return nil
}

// Export encodes the current raster. Nil arguments use the download panel's
// values; given ones are stored into it first.
func (e *Editor) Export(ctx context.Context, filename *string, quality *float64) (*session.Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.session.Loaded() {
		return nil, session.ErrNoImage
	}
	if filename != nil {
		e.download.SetFilename(*filename)
	}
	if quality != nil {
		if err := e.download.SetQuality(*quality); err != nil {
			return nil, err
		}
	}
	stem := e.download.Filename()
	name, err := session.DownloadName(stem)
	if err != nil {
		return nil, err
	}
	q := e.download.Quality()

	key := storage.ExportKey{EditorID: e.id, Revision: e.revision, Quality: q}
	if e.cache != nil {
		if data := e.cache.GetExport(ctx, key); data != nil {
			e.logger.Debug("Export served from cache", zap.Uint64("revision", key.Revision))
			return &session.Export{
				Filename:   name,
				MimeType:   processor.MimeJPEG,
				Data:       data,
				Dimensions: e.session.Dimensions(),
				Quality:    q,
				CreatedAt:  time.Now(),
			}, nil
		}
	}

	out, err := e.session.Export(ctx, stem, q)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.SetExport(ctx, key, out.Data)
	}
	e.logger.Info("Image exported",
		zap.String("filename", out.Filename),
		zap.Stringer("dimensions", out.Dimensions),
		zap.Float64("quality", q),
		zap.Int("bytes", len(out.Data)),
	)
	return out, nil
}

// Preview renders the current raster with the crop overlay as PNG.
func (e *Editor) Preview() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	if !e.session.Loaded() {
		return nil, session.ErrNoImage
	}
	rect, ok := e.crop.Rect()
	return processor.RenderPreview(e.session.Current(), rect, ok && e.crop.CropMode())
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		ID:                 e.id,
		Loaded:             e.session.Loaded(),
		SourceName:         e.sourceName,
		Dimensions:         e.session.Dimensions(),
		OriginalDimensions: e.session.OriginalDimensions(),
		Revision:           e.revision,
		Crop:               e.crop.Snapshot(),
		Resize:             e.resize.State(),
		Download:           e.download.State(),
	}
}

// LastUsed reports when the editor last handled a request. It does not wait
// for an operation in progress.
func (e *Editor) LastUsed() time.Time {
	return time.Unix(0, e.lastUsed.Load())
}

func (e *Editor) touch() { e.lastUsed.Store(time.Now().UnixNano()) }

// afterRasterChange re-syncs everything derived from the current raster. The
// editor's revision outlives sessions, so a re-upload never reuses an export
// cache key even when invalidation fails.
func (e *Editor) afterRasterChange(ctx context.Context) {
	e.revision++
	e.crop.SetBounds(e.session.Dimensions())
	e.resize.Sync(e.session.Dimensions(), e.session.OriginalDimensions())
	if e.cache != nil {
		// Exports of the replaced raster can never be requested again.
		if err := e.cache.Invalidate(ctx, e.id); err != nil {
			e.logger.Warn("Failed to invalidate export cache", zap.Error(err))
		}
	}
}
