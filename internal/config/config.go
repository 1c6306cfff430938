package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GenerationConfig holds the model settings the commentary pipeline uses.
type GenerationConfig struct {
	BaseURL       string  `json:"base_url"`
	Model         string  `json:"model"`
	APIKey        string  `json:"api_key,omitempty"`
	MaxTokens     int     `json:"max_tokens"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type UserConfig struct {
	Generation  GenerationConfig `json:"generation"`
	ScrapeDelay int              `json:"scrape_delay_seconds"`
	DataDir     string           `json:"data_dir"`
}

var runtimeDataDir string
var runtimePort = 8000

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

// DefaultUserConfig mirrors the settings a fresh install starts with.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Generation: GenerationConfig{
			BaseURL:       "http://127.0.0.1:11434/v1",
			Model:         "",
			MaxTokens:     200,
			Temperature:   0.1,
			TopP:          0.8,
			RepeatPenalty: 1.05,
		},
		ScrapeDelay: 2,
	}
}

func userHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "StockAnalyzer"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := userHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "StockAnalyzer"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "stockanalyzer"), nil
	}
	return filepath.Join(configDir, "stockanalyzer"), nil
}

func appConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func legacyConfigPath() string {
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadUserConfig reads config.json, falling back to defaults on any error.
// Missing fields inside an existing file also fall back to their defaults.
func LoadUserConfig() UserConfig {
	defaults := DefaultUserConfig()
	configPath, err := appConfigPath()
	if err != nil {
		return defaults
	}
	pathToUse := ""
	if _, err := os.Stat(configPath); err == nil {
		pathToUse = configPath
	} else if legacy := legacyConfigPath(); legacy != "" {
		pathToUse = legacy
	}
	if pathToUse == "" {
		return defaults
	}
	file, err := os.Open(pathToUse)
	if err != nil {
		return defaults
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&defaults); err != nil {
		return DefaultUserConfig()
	}
	return normalize(defaults)
}

func normalize(cfg UserConfig) UserConfig {
	d := DefaultUserConfig()
	if strings.TrimSpace(cfg.Generation.BaseURL) == "" {
		cfg.Generation.BaseURL = d.Generation.BaseURL
	}
	if cfg.Generation.MaxTokens <= 0 {
		cfg.Generation.MaxTokens = d.Generation.MaxTokens
	}
	if cfg.Generation.Temperature <= 0 {
		cfg.Generation.Temperature = d.Generation.Temperature
	}
	if cfg.Generation.TopP <= 0 || cfg.Generation.TopP > 1 {
		cfg.Generation.TopP = d.Generation.TopP
	}
	if cfg.Generation.RepeatPenalty <= 0 {
		cfg.Generation.RepeatPenalty = d.Generation.RepeatPenalty
	}
	if cfg.ScrapeDelay < 0 {
		cfg.ScrapeDelay = d.ScrapeDelay
	}
	return cfg
}

func SaveUserConfig(cfg UserConfig, useAppConfig bool) error {
	path := ""
	if useAppConfig {
		appPath, err := appConfigPath()
		if err != nil {
			return err
		}
		path = appPath
	} else {
		path = legacyConfigPath()
		if path == "" {
			if cwd, err := os.Getwd(); err == nil {
				path = filepath.Join(cwd, "config.json")
			} else {
				return errors.New("cannot determine config path")
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(normalize(cfg), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves the directory for logs and cached artifacts, creating
// it if needed. Precedence: runtime flag, STOCK_ANALYZER_DATA_DIR, the
// config file's data_dir, then the platform config directory.
func GetDataDir() (string, error) {
	if runtimeDataDir != "" {
		if err := os.MkdirAll(runtimeDataDir, 0o755); err != nil {
			return "", err
		}
		return runtimeDataDir, nil
	}
	if envDir := os.Getenv("STOCK_ANALYZER_DATA_DIR"); envDir != "" {
		if err := os.MkdirAll(envDir, 0o755); err != nil {
			return "", err
		}
		return envDir, nil
	}
	cfg := LoadUserConfig()
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return "", err
		}
		return cfg.DataDir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	return defaultDir, nil
}
