// Package session owns the two panel documents and the synchronization
// policy between the remote drive, the local mirror and memory.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/mirror"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/observability"
)

// Status is the tri-state sync indicator shown in the panel header.
type Status string

const (
	StatusSyncing Status = "syncing"
	StatusSaved   Status = "saved"
	StatusOffline Status = "offline"
)

// Outcome is the tagged result of a persistence attempt. A failed remote
// write is not an error once the mirror write succeeded: the change is
// queued locally and will reach the drive on the next successful save.
type Outcome struct {
	Synced bool   `json:"synced"`
	Reason string `json:"reason,omitempty"`
}

func synced() Outcome { return Outcome{Synced: true} }

func queuedLocally(why error) Outcome {
	return Outcome{Synced: false, Reason: why.Error()}
}

// Store is the remote document store surface the session needs.
type Store interface {
	Load(ctx context.Context, path string) ([]byte, bool, error)
	Save(ctx context.Context, path string, v any) error
}

// Paths locate the two documents on the remote drive.
type Paths struct {
	Config  string
	Records string
}

// Session is constructed once at startup and passed to every handler; there
// is no ambient global state.
type Session struct {
	store  Store
	mirror *mirror.Mirror
	paths  Paths
	log    *zap.Logger

	mu     sync.RWMutex
	cfg    *models.Config
	reg    *models.Records
	status Status
}

func New(store Store, m *mirror.Mirror, paths Paths, log *zap.Logger) *Session {
	s := &Session{
		store:  store,
		mirror: m,
		paths:  paths,
		log:    log,
		cfg:    models.DefaultConfig(),
		reg:    models.DefaultRecords(),
	}
	s.setStatus(StatusSyncing)
	return s
}

// Prime loads whatever the mirror holds, before any remote call completes.
// Called once at startup so the panel can render offline immediately.
func (s *Session) Prime(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if body, ok, err := s.mirror.Get(ctx, mirror.KeyConfig); err == nil && ok {
		var cfg models.Config
		if json.Unmarshal(body, &cfg) == nil {
			s.cfg = &cfg
		}
	}
	if body, ok, err := s.mirror.Get(ctx, mirror.KeyRecords); err == nil && ok {
		var reg models.Records
		if json.Unmarshal(body, &reg) == nil {
			s.reg = &reg
		}
	}
}

// Load runs the sign-in sequencing: remote load of both documents, absence
// substituted with defaults, failures degraded to the mirror copy and then
// to defaults. Never returns an error; the worst outcome is offline status.
func (s *Session) Load(ctx context.Context) Status {
	s.setStatus(StatusSyncing)

	degraded := false

	cfg := models.DefaultConfig()
	if body, found, err := s.store.Load(ctx, s.paths.Config); err != nil {
		degraded = true
		s.log.Warn("config load failed, falling back to mirror", zap.Error(err))
		observability.CaptureOpErr("session-load", err)
		if cached := s.fromMirror(ctx, mirror.KeyConfig); cached != nil {
			var c models.Config
			if json.Unmarshal(cached, &c) == nil {
				cfg = &c
			}
		}
	} else if found {
		var c models.Config
		if json.Unmarshal(body, &c) == nil {
			cfg = &c
		}
	}

	reg := models.DefaultRecords()
	if body, found, err := s.store.Load(ctx, s.paths.Records); err != nil {
		degraded = true
		s.log.Warn("records load failed, falling back to mirror", zap.Error(err))
		observability.CaptureOpErr("session-load", err)
		if cached := s.fromMirror(ctx, mirror.KeyRecords); cached != nil {
			var r models.Records
			if json.Unmarshal(cached, &r) == nil {
				reg = &r
			}
		}
	} else if found {
		var r models.Records
		if json.Unmarshal(body, &r) == nil {
			reg = &r
		}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.reg = reg
	s.mu.Unlock()

	s.mirrorBoth(ctx)
	if degraded {
		s.setStatus(StatusOffline)
	} else {
		s.setStatus(StatusSaved)
	}
	return s.Status()
}

func (s *Session) fromMirror(ctx context.Context, key string) []byte {
	mctx, cancel := ctxutil.WithMirrorTimeout(ctx)
	defer cancel()
	body, ok, err := s.mirror.Get(mctx, key)
	if err != nil || !ok {
		return nil
	}
	return body
}

func (s *Session) mirrorBoth(ctx context.Context) {
	s.mirrorDoc(ctx, mirror.KeyConfig, s.snapshotConfig())
	s.mirrorDoc(ctx, mirror.KeyRecords, s.snapshotRecords())
}

func (s *Session) mirrorDoc(ctx context.Context, key string, body []byte) {
	mctx, cancel := ctxutil.WithMirrorTimeout(ctx)
	defer cancel()
	if err := s.mirror.Put(mctx, key, body); err != nil {
		s.log.Error("mirror write failed", zap.String("key", key), zap.Error(err))
		observability.CaptureErr(err)
	}
}

// ViewConfig runs fn with read access to the configuration document.
func (s *Session) ViewConfig(fn func(cfg *models.Config)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.cfg)
}

// ViewRecords runs fn with read access to the records document.
func (s *Session) ViewRecords(fn func(reg *models.Records)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.reg)
}

// MutateConfig runs fn with exclusive access to the configuration document.
// Persistence is the caller's concern (usually a debounced autosave).
func (s *Session) MutateConfig(fn func(cfg *models.Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.cfg)
}

// AppendRegistos appends entries to the records document and persists it:
// remote save attempted once, mirror written on both outcomes.
func (s *Session) AppendRegistos(ctx context.Context, regs []models.Registo) Outcome {
	s.mu.Lock()
	s.reg.Registos = append(s.reg.Registos, regs...)
	s.mu.Unlock()
	metrics.RecordsAppended.Add(float64(len(regs)))
	return s.SaveRecords(ctx)
}

// SaveRecords pushes the whole records document to the drive.
func (s *Session) SaveRecords(ctx context.Context) Outcome {
	return s.save(ctx, s.paths.Records, mirror.KeyRecords, s.snapshotRecords())
}

// SaveConfig pushes the whole configuration document to the drive.
func (s *Session) SaveConfig(ctx context.Context) Outcome {
	return s.save(ctx, s.paths.Config, mirror.KeyConfig, s.snapshotConfig())
}

func (s *Session) save(ctx context.Context, path, key string, body []byte) Outcome {
	s.setStatus(StatusSyncing)

	sctx, cancel := ctxutil.WithStoreTimeout(ctx)
	defer cancel()
	err := s.store.Save(sctx, path, json.RawMessage(body))

	// the mirror always reflects the most recent in-memory state, even offline
	s.mirrorDoc(ctx, key, body)

	if err != nil {
		s.log.Warn("remote save failed, queued locally", zap.String("path", path), zap.Error(err))
		observability.CaptureOpErr("save", err)
		s.setStatus(StatusOffline)
		return queuedLocally(err)
	}
	s.setStatus(StatusSaved)
	return synced()
}

func (s *Session) snapshotConfig() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, _ := json.MarshalIndent(s.cfg, "", "  ")
	return body
}

func (s *Session) snapshotRecords() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, _ := json.MarshalIndent(s.reg, "", "  ")
	return body
}

// ConfigJSON is the export surface: the in-memory configuration as a JSON
// file, no remote call.
func (s *Session) ConfigJSON() []byte { return s.snapshotConfig() }

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	switch st {
	case StatusSyncing:
		metrics.SyncStatus.Set(0)
	case StatusSaved:
		metrics.SyncStatus.Set(1)
	case StatusOffline:
		metrics.SyncStatus.Set(2)
	}
}
