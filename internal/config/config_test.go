package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateEnvMissing(t *testing.T) {
	t.Setenv(envIMAPHost, "")
	t.Setenv(envIMAPPort, "")
	t.Setenv(envIMAPUser, "")
	t.Setenv(envIMAPPass, "")
	t.Setenv(envWebhookURL, "")

	if err := ValidateEnv(); err == nil {
		t.Fatalf("expected error for missing environment variables")
	} else if !strings.Contains(err.Error(), "missing required environment variables") {
		t.Fatalf("expected missing env var error, got: %v", err)
	}
}

func TestIMAPEnvInvalidPort(t *testing.T) {
	t.Setenv(envIMAPHost, "imap.example.com")
	t.Setenv(envIMAPPort, "imaps")
	t.Setenv(envIMAPUser, "user@example.com")
	t.Setenv(envIMAPPass, "password")

	if _, err := IMAPEnvFromEnv(); err == nil || !strings.Contains(err.Error(), envIMAPPort) {
		t.Fatalf("expected invalid port error, got: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempFile(t, "not: [valid_yaml")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}

func TestValidateMissingRules(t *testing.T) {
	path := writeTempFile(t, `
rules: []
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got error: %v", err)
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for missing rules")
	}
}

func TestValidateMissingClientMatchers(t *testing.T) {
	path := writeTempFile(t, `
rules:
  - name: "F5Bot"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got error: %v", err)
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error for missing client matchers")
	} else if !strings.Contains(err.Error(), "client matchers") {
		t.Fatalf("expected client matchers error, got: %v", err)
	}
}

func TestValidateInvalidRegex(t *testing.T) {
	path := writeTempFile(t, `
rules:
  - name: "F5Bot"
    client:
      subject_regex:
        - "(unclosed"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got error: %v", err)
	}

	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "invalid regex") {
		t.Fatalf("expected invalid regex error, got: %v", err)
	}
}

func TestValidateInvalidReloadEvery(t *testing.T) {
	cfg := Config{
		Rules: []Rule{{Name: "F5Bot", Client: &ClientMatchers{SenderRegex: []string{`f5bot\.com`}}}},
		Watch: Watch{ReloadEvery: "soon"},
	}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "reload_every") {
		t.Fatalf("expected reload_every error, got: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config

	if got := cfg.Mailbox.FolderName(); got != "INBOX" {
		t.Fatalf("expected INBOX, got %q", got)
	}
	if !cfg.Mailbox.OnlyUnseen() {
		t.Fatal("expected unseen_only to default to true")
	}
	if !cfg.Mailbox.SeenAfterScan() {
		t.Fatal("expected mark_seen to default to true")
	}
	off := false
	if (Mailbox{MarkSeen: &off}).SeenAfterScan() {
		t.Fatal("expected mark_seen: false to be honoured")
	}
	if got := cfg.Mailbox.FetchLimit(); got != defaultMaxMail {
		t.Fatalf("expected limit %d, got %d", defaultMaxMail, got)
	}
	if got := cfg.Ledger.DSN(); got != "redditbot.db" {
		t.Fatalf("expected default ledger path, got %q", got)
	}
	if got := cfg.Server.ListenAddr(); got != ":8080" {
		t.Fatalf("expected default addr, got %q", got)
	}
	reload, err := cfg.Watch.ReloadInterval()
	if err != nil || reload != 5*time.Minute {
		t.Fatalf("expected 5m reload interval, got %v (%v)", reload, err)
	}
	since, err := cfg.Mailbox.Since(time.Now())
	if err != nil || !since.IsZero() {
		t.Fatalf("expected zero since, got %v (%v)", since, err)
	}
}

func TestMailboxSince(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	mailbox := Mailbox{MaxAge: "2d"}

	since, err := mailbox.Since(now)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if want := now.Add(-48 * time.Hour); !since.Equal(want) {
		t.Fatalf("expected %v, got %v", want, since)
	}
}

func TestHappyPath(t *testing.T) {
	t.Setenv(envIMAPHost, "imap.example.com")
	t.Setenv(envIMAPPort, "993")
	t.Setenv(envIMAPUser, "user@example.com")
	t.Setenv(envIMAPPass, "password")
	t.Setenv(envWebhookURL, "https://example.com/webhook")
	t.Setenv(envUptraceDSN, "")

	path := writeTempFile(t, `
rules:
  - name: "F5Bot"
    client:
      sender_regex:
        - "admin@f5bot\\.com"
      subject_regex:
        - "(?i)f5bot found something"
mailbox:
  folder: "Alerts"
  unseen_only: false
  mark_seen: true
  archive_folder: "Alerts/Done"
  limit: 10
  from_substring: ["f5bot.com"]
ledger:
  path: "/tmp/ledger.db"
parser:
  comment_id_max_len: 12
  vocabulary: ["offset"]
watch:
  reload_every: "1m"
server:
  addr: ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got error: %v", err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected config to validate, got error: %v", err)
	}

	if err := ValidateEnv(); err != nil {
		t.Fatalf("expected env validation to pass, got error: %v", err)
	}

	env, err := IMAPEnvFromEnv()
	if err != nil {
		t.Fatalf("imap env: %v", err)
	}
	if env.Addr() != "imap.example.com:993" {
		t.Fatalf("unexpected addr %q", env.Addr())
	}

	if cfg.Mailbox.OnlyUnseen() || !cfg.Mailbox.SeenAfterScan() || cfg.Mailbox.FetchLimit() != 10 {
		t.Fatalf("unexpected mailbox settings: %+v", cfg.Mailbox)
	}
	if cfg.Mailbox.ArchiveFolder != "Alerts/Done" || len(cfg.Mailbox.FromSubstring) != 1 {
		t.Fatalf("unexpected archive settings: %+v", cfg.Mailbox)
	}
	if cfg.Parser.CommentIDMaxLen != 12 || len(cfg.Parser.Vocabulary) != 1 {
		t.Fatalf("unexpected parser settings: %+v", cfg.Parser)
	}

	summary := Summary(cfg)
	for _, want := range []string{"- rules: 1", "- folder: Alerts", "- ledger path: /tmp/ledger.db", "- reporting webhook: enabled", "- telemetry: disabled"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
