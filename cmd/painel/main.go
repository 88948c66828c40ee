package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/admin"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/app"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/attendance"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/autosave"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/backup"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/config"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/graphstore"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/logging"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/mirror"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/observability"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

const release = "esp-painel-server@4.2"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := mirror.Open(cfg.MirrorPath)
	if err != nil {
		lg.Sugar.Fatalw("mirror open failed", "path", cfg.MirrorPath, "err", err)
	}
	defer func() { _ = m.Close() }()

	store := graphstore.New(cfg.GraphBaseURL, cfg.SiteID)
	sess := session.New(store, m, session.Paths{
		Config:  cfg.ConfigPath,
		Records: cfg.RecordsPath,
	}, lg.Base)

	// render offline immediately: the mirror is read before any remote call
	sess.Prime(ctx)

	saver := autosave.New(sess, cfg.AutosaveDelay, lg.Base)
	defer saver.Close()

	handlers := &app.Handlers{
		Cfg:      cfg,
		Sess:     sess,
		Recorder: attendance.NewRecorder(sess, cfg.Location),
		Editor:   admin.NewEditor(sess, saver, cfg),
		Backup:   backup.NewRunner(store, sess, cfg.BackupFolder, cfg.Location),
	}

	router := app.Router(handlers, lg.Base, app.Healthz(m), metrics.Handler())
	app.StartHTTP(ctx, cfg.HTTPAddr, router)
	lg.Sugar.Infow("painel listening", "addr", cfg.HTTPAddr, "env", cfg.Env)

	<-ctx.Done()
	lg.Base.Info("shutting down", zap.String("reason", "signal"))
}
