package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Notion
	NotionToken         string        // integration secret
	NotionProgramsDB    string        // Programs database ID
	NotionSuggestionsDB string        // Suggestions database ID (required by suggestion intake and discovery)
	NotionBaseURL       string        // ex: https://api.notion.com/v1
	NotionVersion       string        // Notion-Version header
	NotionTimeout       time.Duration // per API call

	// Catalog snapshot served by the web API
	CatalogReloadInterval time.Duration // ex: 1h
	ActiveStatusValue     string        // status option that marks a program as listed
	ProgramOverrides      map[string]string

	// Scheduled maintenance (cron expressions, empty = disabled)
	LinkAuditSchedule string
	EnrichSchedule    string
	DiscoverySchedule string
	ReportsDir        string

	// Redis (optional, empty address disables snapshot/run history/seen-set)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access
	AllowedHosts  []string   // optional, restrict admin routes to specific Host headers
	AllowedCIDRS  []string   // optional, restrict admin routes to specific IPs/CIDRs
	TrustProxy    bool       // true => trust X-Forwarded-For headers
	SuggestLimit  RouteLimit // POST /api/suggest
	FeedbackLimit RouteLimit // POST /api/suggestions
}

// RouteLimit is a per-IP token bucket: Burst requests at once, then
// RefillPerMin a minute.
type RouteLimit struct {
	Burst        int
	RefillPerMin int
}

func loadRouteLimit(prefix string, burst, refill int) RouteLimit {
	return RouteLimit{
		Burst:        getenvInt(prefix+"_BURST", burst),
		RefillPerMin: getenvInt(prefix+"_REFILL_PER_MIN", refill),
	}
}

// Property override keys understood by the program field table.
const (
	OverrideApplyURL    = "apply_url"
	OverrideStatus      = "status"
	OverrideNeedsReview = "needs_review"
	OverrideLinkStatus  = "link_status"
	OverrideHTTPStatus  = "http_status"
	OverrideFinalURL    = "final_url"
)

// Load reads .env (if present) then the process environment.
// Missing required variables panic.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ListenPort:      getenv("LAUNCHPAD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LAUNCHPAD_SHUTDOWN_TIMEOUT", 5*time.Second),

		LogLevel:  getenv("LAUNCHPAD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LAUNCHPAD_PRETTY_LOG", true),

		NotionToken:         requireEnv("NOTION_TOKEN"),
		NotionProgramsDB:    requireEnv("NOTION_PROGRAMS_DB_ID"),
		NotionSuggestionsDB: getenv("NOTION_SUGGESTIONS_DB_ID", ""),
		NotionBaseURL:       getenv("NOTION_BASE_URL", "https://api.notion.com/v1"),
		NotionVersion:       getenv("NOTION_VERSION", "2022-06-28"),
		NotionTimeout:       mustDuration("NOTION_TIMEOUT", 30*time.Second),

		CatalogReloadInterval: mustDuration("LAUNCHPAD_CATALOG_RELOAD_INTERVAL", time.Hour),
		ActiveStatusValue:     getenv("LINK_AUDIT_ACTIVE_VALUE", "Active"),
		ProgramOverrides:      loadOverrides(),

		LinkAuditSchedule: getenv("LAUNCHPAD_LINK_AUDIT_SCHEDULE", ""),
		EnrichSchedule:    getenv("LAUNCHPAD_ENRICH_SCHEDULE", ""),
		DiscoverySchedule: getenv("LAUNCHPAD_DISCOVERY_SCHEDULE", ""),
		ReportsDir:        getenv("REPORTS_DIR", "reports"),

		RedisAddr:           getenv("LAUNCHPAD_REDIS_ADDR", ""),
		RedisUser:           getenv("LAUNCHPAD_REDIS_USERNAME", ""),
		RedisPassword:       getenv("LAUNCHPAD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LAUNCHPAD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		AllowedHosts:  splitAndTrim(getenv("LAUNCHPAD_ALLOWED_HOSTS", "")),
		AllowedCIDRS:  splitAndTrim(getenv("LAUNCHPAD_ALLOWED_CIDRS", "")),
		TrustProxy:    mustBool("LAUNCHPAD_TRUST_PROXY", false),
		SuggestLimit:  loadRouteLimit("LAUNCHPAD_SUGGEST", 5, 2),
		FeedbackLimit: loadRouteLimit("LAUNCHPAD_FEEDBACK", 3, 1),
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.NotionToken = "***REDACTED***"
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// RequireSuggestionsDB reports a missing suggestions database ID.
func (c *Config) RequireSuggestionsDB() error {
	if c.NotionSuggestionsDB == "" {
		return fmt.Errorf("NOTION_SUGGESTIONS_DB_ID is not set")
	}
	return nil
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func loadOverrides() map[string]string {
	overrides := map[string]string{
		OverrideApplyURL:    getenv("LINK_AUDIT_URL_PROP", ""),
		OverrideStatus:      getenv("LINK_AUDIT_STATUS_PROP", ""),
		OverrideNeedsReview: getenv("LINK_AUDIT_REVIEW_PROP", ""),
		OverrideLinkStatus:  getenv("LINK_AUDIT_LINK_STATUS_PROP", ""),
		OverrideHTTPStatus:  getenv("LINK_AUDIT_HTTP_STATUS_PROP", ""),
		OverrideFinalURL:    getenv("LINK_AUDIT_FINAL_URL_PROP", ""),
	}
	for k, v := range overrides {
		if v == "" {
			delete(overrides, k)
		}
	}
	return overrides
}

// helpers
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}

// mustMillis reads an integer millisecond count, as the job variables use.
func mustMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
