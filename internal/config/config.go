package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envIMAPHost    = "REDDITBOT_IMAP_HOST"
	envIMAPPort    = "REDDITBOT_IMAP_PORT"
	envIMAPUser    = "REDDITBOT_IMAP_USER"
	envIMAPPass    = "REDDITBOT_IMAP_PASS"
	envWebhookURL  = "REDDITBOT_WEBHOOK_URL"
	envUptraceDSN  = "UPTRACE_DSN"
	defaultFolder  = "INBOX"
	defaultLedger  = "redditbot.db"
	defaultAddr    = ":8080"
	defaultReload  = 5 * time.Minute
	defaultMaxMail = 50
)

// Config holds non-secret configuration loaded from YAML.
type Config struct {
	Rules   []Rule        `yaml:"rules"`
	Mailbox Mailbox       `yaml:"mailbox"`
	Ledger  Ledger        `yaml:"ledger"`
	Parser  ParserOptions `yaml:"parser"`
	Watch   Watch         `yaml:"watch"`
	Server  Server        `yaml:"server"`
}

// IMAPEnv holds the IMAP connection details from environment variables.
type IMAPEnv struct {
	Host string
	Port int
	User string
	Pass string
}

// Rule describes which messages are F5Bot notifications worth resolving.
type Rule struct {
	Name   string          `yaml:"name"`
	Client *ClientMatchers `yaml:"client"`
}

type ClientMatchers struct {
	SubjectRegex []string `yaml:"subject_regex"`
	SenderRegex  []string `yaml:"sender_regex"`
	BodyRegex    []string `yaml:"body_regex"`
}

func (m *ClientMatchers) IsEmpty() bool {
	if m == nil {
		return true
	}
	return len(m.SubjectRegex) == 0 &&
		len(m.SenderRegex) == 0 &&
		len(m.BodyRegex) == 0
}

// Mailbox selects where notifications are read from.
type Mailbox struct {
	Folder        string   `yaml:"folder"`
	UnseenOnly    *bool    `yaml:"unseen_only"`
	MarkSeen      *bool    `yaml:"mark_seen"`
	ArchiveFolder string   `yaml:"archive_folder"`
	Limit         int      `yaml:"limit"`
	MaxAge        string   `yaml:"max_age"`
	FromSubstring []string `yaml:"from_substring"`
}

func (m Mailbox) FolderName() string {
	return defaultIfEmpty(strings.TrimSpace(m.Folder), defaultFolder)
}

func (m Mailbox) OnlyUnseen() bool {
	return m.UnseenOnly == nil || *m.UnseenOnly
}

// SeenAfterScan reports whether handled notifications get the \Seen flag.
// Defaults to true.
func (m Mailbox) SeenAfterScan() bool {
	return m.MarkSeen == nil || *m.MarkSeen
}

func (m Mailbox) FetchLimit() int {
	if m.Limit <= 0 {
		return defaultMaxMail
	}
	return m.Limit
}

// Since returns the oldest internal date worth fetching, or the zero time
// when max_age is unset.
func (m Mailbox) Since(now time.Time) (time.Time, error) {
	if strings.TrimSpace(m.MaxAge) == "" {
		return time.Time{}, nil
	}
	dur, err := ParseRelativeDuration(m.MaxAge)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid mailbox.max_age: %w", err)
	}
	return now.Add(-dur), nil
}

// Ledger configures the processed-email store.
type Ledger struct {
	Path string `yaml:"path"`
}

func (l Ledger) DSN() string {
	return defaultIfEmpty(strings.TrimSpace(l.Path), defaultLedger)
}

// ParserOptions tunes notification parsing.
type ParserOptions struct {
	CommentIDMaxLen int      `yaml:"comment_id_max_len"`
	MinContentLen   int      `yaml:"min_content_len"`
	Vocabulary      []string `yaml:"vocabulary"`
	FooterMarkers   []string `yaml:"footer_markers"`
}

type Watch struct {
	ReloadEvery string `yaml:"reload_every"`
}

// ReloadInterval returns how often watch re-reads its config file.
func (w Watch) ReloadInterval() (time.Duration, error) {
	if strings.TrimSpace(w.ReloadEvery) == "" {
		return defaultReload, nil
	}
	dur, err := ParseRelativeDuration(w.ReloadEvery)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.reload_every: %w", err)
	}
	if dur == 0 {
		return 0, errors.New("watch.reload_every must be greater than zero")
	}
	return dur, nil
}

type Server struct {
	Addr string `yaml:"addr"`
}

func (s Server) ListenAddr() string {
	return defaultIfEmpty(strings.TrimSpace(s.Addr), defaultAddr)
}

func ParseRelativeDuration(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	if strings.HasSuffix(trimmed, "d") {
		daysValue := strings.TrimSuffix(trimmed, "d")
		days, err := strconv.ParseFloat(strings.TrimSpace(daysValue), 64)
		if err != nil {
			return 0, err
		}
		if days < 0 {
			return 0, errors.New("duration must be positive")
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}
	dur, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if dur < 0 {
		return 0, errors.New("duration must be positive")
	}
	return dur, nil
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ValidateEnv ensures required environment variables are set.
func ValidateEnv() error {
	missing := []string{}
	for _, name := range requiredEnvVars() {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}

// IMAPEnvFromEnv loads IMAP connection details and validates required entries.
func IMAPEnvFromEnv() (IMAPEnv, error) {
	if err := ValidateEnv(); err != nil {
		return IMAPEnv{}, err
	}

	portRaw := strings.TrimSpace(os.Getenv(envIMAPPort))
	port, err := strconv.Atoi(portRaw)
	if err != nil {
		return IMAPEnv{}, fmt.Errorf("invalid %s: %w", envIMAPPort, err)
	}

	return IMAPEnv{
		Host: strings.TrimSpace(os.Getenv(envIMAPHost)),
		Port: port,
		User: strings.TrimSpace(os.Getenv(envIMAPUser)),
		Pass: strings.TrimSpace(os.Getenv(envIMAPPass)),
	}, nil
}

// Addr joins host and port for dialing.
func (e IMAPEnv) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Summary returns a concise config summary for validation runs.
func Summary(cfg Config) string {
	reportingStatus := "disabled"
	if ReportingEnabled() {
		reportingStatus = "enabled"
	}
	telemetryStatus := "disabled"
	if TelemetryDSN() != "" {
		telemetryStatus = "enabled"
	}
	return fmt.Sprintf(
		"Config summary\n"+
			"- rules: %d\n"+
			"- folder: %s\n"+
			"- ledger path: %s\n"+
			"- reporting webhook: %s\n"+
			"- telemetry: %s",
		len(cfg.Rules),
		cfg.Mailbox.FolderName(),
		cfg.Ledger.DSN(),
		reportingStatus,
		telemetryStatus,
	)
}

// ReportingEnabled returns true when a webhook URL is configured via env var.
func ReportingEnabled() bool {
	return WebhookURL() != ""
}

// WebhookURL returns the operator webhook base URL, if any.
func WebhookURL() string {
	return strings.TrimSpace(os.Getenv(envWebhookURL))
}

// TelemetryDSN returns the Uptrace DSN, if any.
func TelemetryDSN() string {
	return strings.TrimSpace(os.Getenv(envUptraceDSN))
}

func requiredEnvVars() []string {
	return []string{
		envIMAPHost,
		envIMAPPort,
		envIMAPUser,
		envIMAPPass,
	}
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// Validate performs basic validation on non-secret config.
func Validate(cfg Config) error {
	if len(cfg.Rules) == 0 {
		return errors.New("config must define at least one rule")
	}
	for i, rule := range cfg.Rules {
		if rule.Client.IsEmpty() {
			return fmt.Errorf("rule %d must define client matchers", i+1)
		}
		for _, pattern := range allPatterns(rule.Client) {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("rule %d has invalid regex %q: %w", i+1, pattern, err)
			}
		}
	}
	if _, err := cfg.Mailbox.Since(time.Now()); err != nil {
		return err
	}
	if _, err := cfg.Watch.ReloadInterval(); err != nil {
		return err
	}
	if cfg.Parser.CommentIDMaxLen < 0 || cfg.Parser.MinContentLen < 0 {
		return errors.New("parser limits must not be negative")
	}
	return nil
}

func allPatterns(m *ClientMatchers) []string {
	patterns := make([]string, 0, len(m.SubjectRegex)+len(m.SenderRegex)+len(m.BodyRegex))
	patterns = append(patterns, m.SubjectRegex...)
	patterns = append(patterns, m.SenderRegex...)
	return append(patterns, m.BodyRegex...)
}
