package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ConfigPathEnvVar names an alternative .env file when none sits next to the executable.
	ConfigPathEnvVar = "SCREEN_REGION_CAPTURE"

	DefaultOutputDir     = "."
	DefaultCaptureDelay  = 100 * time.Millisecond
	DefaultOpacity       = 0.3
	DefaultLockedOpacity = 0.4
	DefaultHotkeyShow    = "Ctrl+Shift+S"
	DefaultHotkeyCapture = "Pause,Ctrl+P"
	DefaultHotkeyLock    = "Ctrl+L"
	DefaultHotkeyQuit    = "Ctrl+Q"
)

// LoadOptions carry command line overrides. Zero values leave the loaded
// configuration untouched.
type LoadOptions struct {
	OutputDirOverride string
	DelayOverride     time.Duration
	HistoryDBOverride string
	CopyToClipboard   bool
	EnableFileLogging bool
}

type Config struct {
	OutputDir         string
	CaptureDelay      time.Duration
	OverlayOpacity    float64
	LockedOpacity     float64
	HotkeyShow        []string
	HotkeyCapture     []string
	HotkeyLock        []string
	HotkeyQuit        []string
	EnableFileLogging bool
	CopyToClipboard   bool
	HistoryDB         string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_REGION_CAPTURE env var as a path to a config file
	// Variables already present in the process environment win over the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		OutputDir:         getEnvWithDefault("OUTPUT_DIR", DefaultOutputDir),
		CaptureDelay:      getDelay("CAPTURE_DELAY_MS", DefaultCaptureDelay),
		OverlayOpacity:    getOpacity("OVERLAY_OPACITY", DefaultOpacity),
		LockedOpacity:     getOpacity("LOCKED_OPACITY", DefaultLockedOpacity),
		HotkeyShow:        splitList(getEnvWithDefault("HOTKEY_SHOW", DefaultHotkeyShow)),
		HotkeyCapture:     splitList(getEnvWithDefault("HOTKEY_CAPTURE", DefaultHotkeyCapture)),
		HotkeyLock:        splitList(getEnvWithDefault("HOTKEY_LOCK", DefaultHotkeyLock)),
		HotkeyQuit:        splitList(getEnvWithDefault("HOTKEY_QUIT", DefaultHotkeyQuit)),
		EnableFileLogging: getBool("ENABLE_FILE_LOGGING"),
		CopyToClipboard:   getBool("COPY_TO_CLIPBOARD"),
		HistoryDB:         strings.TrimSpace(os.Getenv("HISTORY_DB")),
	}
	applyOverrides(cfg, opts)
	return cfg, nil
}

func applyOverrides(cfg *Config, opts LoadOptions) {
	if dir := strings.TrimSpace(opts.OutputDirOverride); dir != "" {
		cfg.OutputDir = dir
	}
	if opts.DelayOverride > 0 {
		cfg.CaptureDelay = opts.DelayOverride
	}
	if db := strings.TrimSpace(opts.HistoryDBOverride); db != "" {
		cfg.HistoryDB = db
	}
	if opts.CopyToClipboard {
		cfg.CopyToClipboard = true
	}
	if opts.EnableFileLogging {
		cfg.EnableFileLogging = true
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string) bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv(key))) == "true"
}

func getDelay(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}

func getOpacity(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return def
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
