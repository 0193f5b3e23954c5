/*
Package config manages TOML config for keyserve.

	[engine]
	max_candidates = 24
	cache_size = 2048

	[layout]
	proximity = 1.2
	key_width = 30.0
	key_height = 40.0

	[dict]
	data_dir = "data/"
	default_language = "en"

	[cli]
	default_limit = 10
	show_details = true

Missing keys keep their defaults. A file that fails to decode is parsed section
by section so one bad value does not discard the rest.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/keyserve/internal/utils"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/session"
	"github.com/bastiangx/keyserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// FileName is the config file inside the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Layout LayoutConfig `toml:"layout"`
	Dict   DictConfig   `toml:"dict"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig has prediction options.
type EngineConfig struct {
	MaxCandidates int `toml:"max_candidates"`
	CacheSize     int `toml:"cache_size"`
}

// LayoutConfig tunes key adjacency and the fallback QWERTY geometry.
type LayoutConfig struct {
	Proximity float64 `toml:"proximity"`
	KeyWidth  float64 `toml:"key_width"`
	KeyHeight float64 `toml:"key_height"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	DataDir         string `toml:"data_dir"`
	DefaultLanguage string `toml:"default_language"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowDetails  bool `toml:"show_details"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxCandidates: 24,
			CacheSize:     suggest.DefaultCacheSize,
		},
		Layout: LayoutConfig{
			Proximity: layout.DefaultProximity,
			KeyWidth:  30,
			KeyHeight: 40,
		},
		Dict: DictConfig{
			DataDir:         "data/",
			DefaultLanguage: "en",
		},
		CLI: CliConfig{
			DefaultLimit: 10,
			ShowDetails:  true,
		},
	}
}

// SessionOptions converts the engine and layout sections for a session.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		MaxCandidates: c.Engine.MaxCandidates,
		CacheSize:     c.Engine.CacheSize,
		Proximity:     c.Layout.Proximity,
	}
}

// GetConfigDir returns the first writable of ~/.config/keyserve (or the
// platform equivalent), ~/Library/Application Support/keyserve on macOS and
// the executable dir.
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve config directory: %v", err)
		return "", err
	}
	return pr.WritableConfigDir(), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from the -config flag
// 2. Default path: [UserConfigDir]/keyserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.DecodeTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse keeps every setting of configPath that has the right
// type and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	doc, err := utils.ParseSections(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := doc.Section("engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := doc.Section("layout"); ok {
		extractLayoutConfig(section, &config.Layout)
	}
	if section, ok := doc.Section("dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := doc.Section("cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

// sanitize puts out-of-range values back to their defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Engine.MaxCandidates < 0 {
		log.Warnf("engine.max_candidates %d is negative, using %d", c.Engine.MaxCandidates, def.Engine.MaxCandidates)
		c.Engine.MaxCandidates = def.Engine.MaxCandidates
	}
	if c.Engine.CacheSize < 0 {
		c.Engine.CacheSize = 0
	}
	if c.Layout.Proximity <= 0 {
		log.Warnf("layout.proximity %.2f is not positive, using %.2f", c.Layout.Proximity, def.Layout.Proximity)
		c.Layout.Proximity = def.Layout.Proximity
	}
	if c.Layout.KeyWidth <= 0 || c.Layout.KeyHeight <= 0 {
		c.Layout.KeyWidth, c.Layout.KeyHeight = def.Layout.KeyWidth, def.Layout.KeyHeight
	}
}

func extractEngineConfig(s utils.Sections, engine *EngineConfig) {
	if val, ok := s.Int("max_candidates"); ok {
		engine.MaxCandidates = val
	}
	if val, ok := s.Int("cache_size"); ok {
		engine.CacheSize = val
	}
}

func extractLayoutConfig(s utils.Sections, l *LayoutConfig) {
	if val, ok := s.Float("proximity"); ok {
		l.Proximity = val
	}
	if val, ok := s.Float("key_width"); ok {
		l.KeyWidth = val
	}
	if val, ok := s.Float("key_height"); ok {
		l.KeyHeight = val
	}
}

func extractDictConfig(s utils.Sections, dict *DictConfig) {
	if val, ok := s.Text("data_dir"); ok {
		dict.DataDir = val
	}
	if val, ok := s.Text("default_language"); ok {
		dict.DefaultLanguage = val
	}
}

func extractCliConfig(s utils.Sections, cli *CliConfig) {
	if val, ok := s.Int("default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := s.Bool("show_details"); ok {
		cli.ShowDetails = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the engine values and saves to file
func (c *Config) Update(configPath string, maxCandidates, cacheSize *int, proximity *float64) error {
	if maxCandidates != nil {
		c.Engine.MaxCandidates = *maxCandidates
	}
	if cacheSize != nil {
		c.Engine.CacheSize = *cacheSize
	}
	if proximity != nil {
		c.Layout.Proximity = *proximity
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}
