package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-editor/internal/services/storage"
	"go.uber.org/zap"
)

// Manager is the in-memory registry of live editors.
type Manager struct {
	opts   Options
	cache  *storage.StorageService
	logger *zap.Logger

	mu      sync.RWMutex
	editors map[string]*Editor
}

func NewManager(opts Options, cache *storage.StorageService, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		opts:    opts,
		cache:   cache,
		logger:  logger,
		editors: make(map[string]*Editor),
	}
}

// Create registers a new editor with no image.
func (m *Manager) Create() *Editor {
	e := newEditor(uuid.New().String(), m.opts, m.cache, m.logger)
	m.mu.Lock()
	m.editors[e.ID()] = e
	m.mu.Unlock()
	m.logger.Debug("Editor created", zap.String("editor_id", e.ID()))
	return e
}

func (m *Manager) Get(id string) (*Editor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.editors[id]
	if !ok {
		return nil, ErrEditorNotFound
	}
	return e, nil
}

// Delete drops an editor and its cached exports.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.editors[id]
	delete(m.editors, id)
	m.mu.Unlock()
	if !ok {
		return ErrEditorNotFound
	}
	m.dropExports(ctx, id)
	m.logger.Debug("Editor deleted", zap.String("editor_id", id))
	return nil
}

func (m *Manager) dropExports(ctx context.Context, id string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, id); err != nil {
		m.logger.Warn("Failed to invalidate export cache", zap.String("editor_id", id), zap.Error(err))
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.editors)
}

// Sweep deletes editors idle for longer than the idle timeout as of now and
// returns how many were removed. An editor used after the scan is kept.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	m.mu.RLock()
	candidates := make(map[string]*Editor)
	for id, e := range m.editors {
		if m.idle(e, now) {
			candidates[id] = e
		}
	}
	m.mu.RUnlock()

	removed := 0
	for id, e := range candidates {
		if m.deleteIfIdle(ctx, id, e, now) {
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Removed idle editors", zap.Int("count", removed), zap.Int("remaining", m.Len()))
	}
	return removed
}

func (m *Manager) idle(e *Editor, now time.Time) bool {
	return now.Sub(e.LastUsed()) > m.opts.IdleTimeout
}

// deleteIfIdle removes e under id only if it is still registered there and
// still idle.
func (m *Manager) deleteIfIdle(ctx context.Context, id string, e *Editor, now time.Time) bool {
	m.mu.Lock()
	if m.editors[id] != e || !m.idle(e, now) {
		m.mu.Unlock()
		return false
	}
	delete(m.editors, id)
	m.mu.Unlock()

	m.dropExports(ctx, id)
	m.logger.Debug("Idle editor deleted", zap.String("editor_id", id))
	return true
}

// Run sweeps idle editors until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.opts.IdleTimeout <= 0 {
		return
	}
	interval := max(m.opts.IdleTimeout/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(ctx, now)
		}
	}
}
