package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	Env       string // dev|prod
	LogLevel  string
	SentryDSN string

	// Remote document store (Microsoft Graph style site drive).
	GraphBaseURL string
	SiteID       string
	ConfigPath   string
	RecordsPath  string
	BackupFolder string

	// Panel behaviour.
	AdminEmails   []string
	JWTSecret     string
	MirrorPath    string
	AutosaveDelay time.Duration
	Location      *time.Location
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Lisbon")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	delay, err := parseDelay(getenv("AUTOSAVE_DELAY", "700ms"))
	if err != nil {
		return nil, fmt.Errorf("AUTOSAVE_DELAY: %w", err)
	}

	cfg := &Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		Env:           getenv("ENV", "dev"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		GraphBaseURL:  getenv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		SiteID:        mustEnv("SITE_ID"),
		ConfigPath:    getenv("CONFIG_PATH", "/Documents/GestaoAlunos-OneDrive/config_especial.json"),
		RecordsPath:   getenv("RECORDS_PATH", "/Documents/GestaoAlunos-OneDrive/2registos_alunos.json"),
		BackupFolder:  getenv("BACKUP_FOLDER", "/Documents/GestaoAlunos-OneDrive/backup"),
		AdminEmails:   parseEmails(os.Getenv("ADMIN_EMAILS")),
		JWTSecret:     mustEnv("JWT_SECRET"),
		MirrorPath:    getenv("MIRROR_PATH", "./data/mirror.db"),
		AutosaveDelay: delay,
		Location:      loc,
	}
	return cfg, nil
}

func (c *Config) IsAdmin(email string) bool {
	for _, a := range c.AdminEmails {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseDelay(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func parseEmails(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}
