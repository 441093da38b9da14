// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/sitewatch/internal/config"
	"github.com/hamed0406/sitewatch/internal/scheduler"
)

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	for _, err := range multierr.Errors(cfg.Validate()) {
		fail(err.Error())
	}

	if sites, err := cfg.Sites(); err == nil {
		ok(fmt.Sprintf("%d site(s) configured", len(sites)))
	}

	switch {
	case cfg.DryRun:
		warn("DRY_RUN set; alerts will only be logged.")
	case cfg.TelegramToken != "" && cfg.ChatID != "":
		ok("Telegram notifier configured")
	}
	if cfg.SlackWebhook != "" {
		ok("Slack notifier configured")
	}

	ok("STORE_BACKEND=" + cfg.StoreBackend)
	if cfg.StoreBackend == config.BackendMemory && !cfg.DryRun {
		warn("memory backend keeps no state between runs; every run looks like the first.")
	}

	if cfg.Schedule == "" {
		warn("SCHEDULE empty; sitewatch runs one cycle and exits.")
	} else if _, err := scheduler.ParseSchedule(cfg.Schedule); err != nil {
		fail(err.Error())
	} else {
		ok("SCHEDULE=" + cfg.Schedule)
	}

	if cfg.Addr != "" {
		ok("API_ADDR=" + cfg.Addr)
		if len(cfg.AdminAPIKeys) == 0 {
			warn("ADMIN_API_KEYS is empty; POST /api/checks is open to anyone.")
		}
		if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
			warn("no API keys configured; read routes are open.")
		}
		// Normalize and sanity-check lists (no spaces around commas).
		for name, v := range map[string]string{"ADMIN_API_KEYS": os.Getenv("ADMIN_API_KEYS"), "PUBLIC_API_KEYS": os.Getenv("PUBLIC_API_KEYS")} {
			if strings.Contains(strings.TrimSpace(v), " ") {
				warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
			}
		}
		if len(cfg.AllowedOrigins) == 0 {
			warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
		} else {
			ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
		}
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}
