// Package autosave debounces configuration persistence: any edit arms a
// fixed-delay timer, re-arming cancels the previous one, and only the last
// edit within the window triggers a save.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

type Coordinator struct {
	sess  *session.Session
	delay time.Duration
	log   *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	// the request context that armed the timer is gone by the time it
	// fires; the bearer credential is kept so the flush can still reach
	// the remote store
	token string
}

func New(sess *session.Session, delay time.Duration, log *zap.Logger) *Coordinator {
	return &Coordinator{sess: sess, delay: delay, log: log}
}

// Notify transitions idle -> pending and (re)starts the delay timer,
// keeping the caller's credential for the eventual flush.
func (c *Coordinator) Notify(ctx context.Context) {
	token, _ := ctxutil.TokenFrom(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = true
	if token != "" {
		c.token = token
	}
	c.timer = time.AfterFunc(c.delay, c.fire)
}

func (c *Coordinator) fire() {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return
	}
	c.pending = false
	token := c.token
	c.mu.Unlock()

	c.flush(token)
}

func (c *Coordinator) flush(token string) {
	ctx, cancel := ctxutil.WithStoreTimeout(ctxutil.WithToken(context.Background(), token))
	defer cancel()

	out := c.sess.SaveConfig(ctx)
	if out.Synced {
		metrics.AutosaveFlushes.WithLabelValues("synced").Inc()
		c.log.Info("config auto-saved")
		return
	}
	metrics.AutosaveFlushes.WithLabelValues("queued").Inc()
	c.log.Warn("config auto-save queued locally", zap.String("reason", out.Reason))
}

// Pending reports whether a save is armed but not yet flushed.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close cancels the timer and performs a final synchronous flush when a save
// was still pending. Called on shutdown.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	wasPending := c.pending
	c.pending = false
	token := c.token
	c.mu.Unlock()

	if wasPending {
		c.flush(token)
	}
}
