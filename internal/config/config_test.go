package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("SITE_ID", "esparedes.sharepoint.com,site-guid")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AutosaveDelay != 700*time.Millisecond {
		t.Fatalf("AutosaveDelay = %s, want 700ms", cfg.AutosaveDelay)
	}
	if cfg.Location == nil {
		t.Fatal("Location must be set")
	}
	if cfg.ConfigPath == "" || cfg.RecordsPath == "" || cfg.BackupFolder == "" {
		t.Fatal("document paths must default")
	}
}

func TestLoadRejectsBadDelay(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTOSAVE_DELAY", "-1s")
	if _, err := Load(); err == nil {
		t.Fatal("negative delay must be rejected")
	}
	t.Setenv("AUTOSAVE_DELAY", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("unparsable delay must be rejected")
	}
}

func TestAdminEmails(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_EMAILS", "Dir@Esparedes.pt, outra@esparedes.pt")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.IsAdmin("dir@esparedes.pt") || !cfg.IsAdmin("DIR@esparedes.pt") {
		t.Fatal("listed address must match case-insensitively")
	}
	if cfg.IsAdmin("prof@esparedes.pt") {
		t.Fatal("unlisted address must not be admin")
	}
	if cfg.IsAdmin("") {
		t.Fatal("empty address must not be admin")
	}
}
