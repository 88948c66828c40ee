// Package backup copies the current configuration to a timestamped file in
// the backup folder on the remote drive. Manual only, never automatic.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

type Store interface {
	Save(ctx context.Context, path string, v any) error
}

type Runner struct {
	store  Store
	sess   *session.Session
	folder string
	loc    *time.Location
}

func NewRunner(store Store, sess *session.Session, folder string, loc *time.Location) *Runner {
	return &Runner{store: store, sess: sess, folder: folder, loc: loc}
}

// Run writes one backup and returns its remote path.
func (r *Runner) Run(ctx context.Context) (string, error) {
	ts := time.Now().In(r.loc).Format("20060102_1504")
	path := fmt.Sprintf("%s/config_especial_%s.json", r.folder, ts)
	if err := r.store.Save(ctx, path, json.RawMessage(r.sess.ConfigJSON())); err != nil {
		return "", err
	}
	return path, nil
}
