package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/bookstruct/internal/segment"
	"github.com/dgallion1/bookstruct/internal/structure"
)

type Config struct {
	Port string

	// Pathstore sink
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount            int
	MaxQueueSize           int
	MaxConcurrentStructure int
	MaxConcurrentStore     int

	// Upload limits
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int

	// Job state
	JobTTL      time.Duration
	StatsWindow time.Duration

	// Structuring
	Strategy         string
	SkipFailed       bool
	FingerprintWidth int

	// Class roles
	SectionHeadingClasses  []string
	FirstParagraphClass    string
	ContinuationClass      string
	FullTextClass          string
	LeadClass              string
	HeadlineClass          string
	IntroClass             string
	InBriefClass           string
	AuthorNameClass        string
	AuthorCreditClass      string
	LiteratureHeadingClass string
	LiteratureClass        string
	BoundaryClasses        []string
	SubheadingClass        string
	SideNoteClasses        []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win.
func Load() Config {
	_ = godotenv.Load()

	p := structure.DefaultProfile()
	cfg := Config{
		Port: envOr("PORT", "8091"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		APIKey: os.Getenv("BOOKSTRUCT_API_KEY"),

		WorkerCount:            envInt("WORKER_COUNT", 4),
		MaxQueueSize:           envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStructure: envInt("MAX_CONCURRENT_STRUCTURE", 4),
		MaxConcurrentStore:     envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 10),

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		Strategy:         envOr("STRATEGY", string(structure.StrategyAuto)),
		SkipFailed:       envBool("SKIP_FAILED_DOCUMENTS", true),
		FingerprintWidth: envInt("FINGERPRINT_WIDTH", 0),

		SectionHeadingClasses:  envList("SECTION_HEADING_CLASSES", p.SectionHeadings),
		FirstParagraphClass:    envOr("FIRST_PARAGRAPH_CLASS", p.FirstParagraph),
		ContinuationClass:      envOr("CONTINUATION_CLASS", p.Continuation),
		FullTextClass:          envOr("FULL_TEXT_CLASS", p.FullText),
		LeadClass:              envOr("LEAD_CLASS", p.Lead),
		HeadlineClass:          envOr("HEADLINE_CLASS", p.Headline),
		IntroClass:             envOr("INTRO_CLASS", p.Intro),
		InBriefClass:           envOr("IN_BRIEF_CLASS", p.InBrief),
		AuthorNameClass:        envOr("AUTHOR_NAME_CLASS", p.AuthorName),
		AuthorCreditClass:      envOr("AUTHOR_CREDIT_CLASS", p.AuthorCredit),
		LiteratureHeadingClass: envOr("LITERATURE_HEADING_CLASS", p.LiteratureHeading),
		LiteratureClass:        envOr("LITERATURE_CLASS", p.Literature),
		BoundaryClasses:        envList("BOUNDARY_CLASSES", p.Segment.BoundaryClasses),
		SubheadingClass:        envOr("SUBHEADING_CLASS", p.Segment.SubheadingClass),
		SideNoteClasses:        envList("SIDE_NOTE_CLASSES", p.Segment.SideNoteClasses),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentStructure <= 0 {
		cfg.MaxConcurrentStructure = 4
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks what the HTTP service needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BOOKSTRUCT_API_KEY is required")
	}
	return c.ValidateStructuring()
}

// ValidateStructuring checks the settings shared by the service and the CLI.
func (c Config) ValidateStructuring() error {
	if _, err := structure.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("STRATEGY: %w", err)
	}
	if len(c.SectionHeadingClasses) == 0 {
		return fmt.Errorf("SECTION_HEADING_CLASSES must name at least one class")
	}
	if c.FingerprintWidth < 0 {
		return fmt.Errorf("FINGERPRINT_WIDTH must not be negative")
	}
	return nil
}

// PathstoreEnabled reports whether structured books are written to pathstore.
func (c Config) PathstoreEnabled() bool {
	return c.PathstoreURL != "" && c.PathstoreAPIKey != ""
}

// Profile returns the class roles configured for the engine.
func (c Config) Profile() structure.Profile {
	return structure.Profile{
		SectionHeadings:   c.SectionHeadingClasses,
		FirstParagraph:    c.FirstParagraphClass,
		Continuation:      c.ContinuationClass,
		FullText:          c.FullTextClass,
		Lead:              c.LeadClass,
		Headline:          c.HeadlineClass,
		Intro:             c.IntroClass,
		InBrief:           c.InBriefClass,
		AuthorName:        c.AuthorNameClass,
		AuthorCredit:      c.AuthorCreditClass,
		LiteratureHeading: c.LiteratureHeadingClass,
		Literature:        c.LiteratureClass,
		Segment: segment.Config{
			BoundaryClasses: c.BoundaryClasses,
			SubheadingClass: c.SubheadingClass,
			SideNoteClasses: c.SideNoteClasses,
		},
	}
}

// StructureOptions returns the engine options. Call ValidateStructuring
// first; an invalid strategy falls back to auto.
func (c Config) StructureOptions() structure.Options {
	s, err := structure.ParseStrategy(c.Strategy)
	if err != nil {
		s = structure.StrategyAuto
	}
	return structure.Options{
		Strategy:         s,
		SkipFailed:       c.SkipFailed,
		FingerprintWidth: c.FingerprintWidth,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
