package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// APIConfig points the client at the news search service.
type APIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	UserAgent          string        `mapstructure:"user_agent"`
	PageSize           int           `mapstructure:"page_size"`
	TrendingLimit      int           `mapstructure:"trending_limit"`
	SuggestionDebounce time.Duration `mapstructure:"suggestion_debounce"`
	ShareConfirm       time.Duration `mapstructure:"share_confirm"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Colors      UIColors      `mapstructure:"colors"`
	Article     ArticleConfig `mapstructure:"article"`
	CardVariant string        `mapstructure:"card_variant"`
	Catalog     string        `mapstructure:"catalog"`
	Opener      string        `mapstructure:"opener"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxSummaryLength int `mapstructure:"max_summary_length"`
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Search  string `mapstructure:"search"`
	Filters string `mapstructure:"filters"`
	Saved   string `mapstructure:"saved"`
	Open    string `mapstructure:"open"`
	Save    string `mapstructure:"save"`
	Share   string `mapstructure:"share"`
	Variant string `mapstructure:"variant"`
	Back    string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ServerConfig drives the local development search service.
type ServerConfig struct {
	Addr            string         `mapstructure:"addr"`
	IndexPath       string         `mapstructure:"index_path"`
	RefreshInterval time.Duration  `mapstructure:"refresh_interval"`
	HTTPTimeout     time.Duration  `mapstructure:"http_timeout"`
	Sources         []SourceConfig `mapstructure:"sources"`
	Companies       []string       `mapstructure:"companies"`
}

// SourceConfig is one RSS/Atom feed ingested by the development service.
type SourceConfig struct {
	Name     string  `mapstructure:"name"`
	URL      string  `mapstructure:"url"`
	Category string  `mapstructure:"category"`
	Trust    float64 `mapstructure:"trust"`
	Logo     string  `mapstructure:"logo"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".newsdesk")

	return &Config{
		API: APIConfig{
			BaseURL:            "http://127.0.0.1:8088",
			Timeout:            15 * time.Second,
			UserAgent:          "newsdesk/1.0 (https://github.com/pders01/newsdesk)",
			PageSize:           10,
			TrendingLimit:      5,
			SuggestionDebounce: 300 * time.Millisecond,
			ShareConfirm:       2 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "newsdesk.db"),
			Timeout: 1 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxSummaryLength: 180,
				WordWrapMaxWidth: 120,
				WordWrapMinWidth: 40,
			},
			CardVariant: "default",
			Opener:      getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:    "q",
				Search:  "s",
				Filters: "f",
				Saved:   "b",
				Open:    "o",
				Save:    "s",
				Share:   "x",
				Variant: "v",
				Back:    "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(dataDir, "newsdesk.log"),
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8088",
			IndexPath:       filepath.Join(dataDir, "index.bleve"),
			RefreshInterval: 15 * time.Minute,
			HTTPTimeout:     30 * time.Second,
			Sources: []SourceConfig{
				{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Category: "digital-transformation", Trust: 72},
				{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Category: "digital-transformation", Trust: 68},
				{Name: "Wired", URL: "https://www.wired.com/feed/rss", Category: "cybersecurity", Trust: 78},
				{Name: "ZDNet", URL: "https://www.zdnet.com/news/rss.xml", Category: "cloud", Trust: 65},
			},
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

// setDefaults registers every leaf key so partial config files still pick
// up defaults for the keys they omit.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)
	v.SetDefault("api.page_size", cfg.API.PageSize)
	v.SetDefault("api.trending_limit", cfg.API.TrendingLimit)
	v.SetDefault("api.suggestion_debounce", cfg.API.SuggestionDebounce)
	v.SetDefault("api.share_confirm", cfg.API.ShareConfirm)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)

	v.SetDefault("ui.colors.primary", cfg.UI.Colors.Primary)
	v.SetDefault("ui.colors.secondary", cfg.UI.Colors.Secondary)
	v.SetDefault("ui.colors.accent", cfg.UI.Colors.Accent)
	v.SetDefault("ui.colors.background", cfg.UI.Colors.Background)
	v.SetDefault("ui.colors.surface", cfg.UI.Colors.Surface)
	v.SetDefault("ui.colors.text", cfg.UI.Colors.Text)
	v.SetDefault("ui.colors.muted", cfg.UI.Colors.Muted)
	v.SetDefault("ui.colors.error", cfg.UI.Colors.Error)
	v.SetDefault("ui.colors.success", cfg.UI.Colors.Success)
	v.SetDefault("ui.article.max_summary_length", cfg.UI.Article.MaxSummaryLength)
	v.SetDefault("ui.article.word_wrap_max_width", cfg.UI.Article.WordWrapMaxWidth)
	v.SetDefault("ui.article.word_wrap_min_width", cfg.UI.Article.WordWrapMinWidth)
	v.SetDefault("ui.card_variant", cfg.UI.CardVariant)
	v.SetDefault("ui.catalog", cfg.UI.Catalog)
	v.SetDefault("ui.opener", cfg.UI.Opener)

	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	v.SetDefault("keys.bindings.quit", cfg.Keys.Bindings.Quit)
	v.SetDefault("keys.bindings.search", cfg.Keys.Bindings.Search)
	v.SetDefault("keys.bindings.filters", cfg.Keys.Bindings.Filters)
	v.SetDefault("keys.bindings.saved", cfg.Keys.Bindings.Saved)
	v.SetDefault("keys.bindings.open", cfg.Keys.Bindings.Open)
	v.SetDefault("keys.bindings.save", cfg.Keys.Bindings.Save)
	v.SetDefault("keys.bindings.share", cfg.Keys.Bindings.Share)
	v.SetDefault("keys.bindings.variant", cfg.Keys.Bindings.Variant)
	v.SetDefault("keys.bindings.back", cfg.Keys.Bindings.Back)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.index_path", cfg.Server.IndexPath)
	v.SetDefault("server.refresh_interval", cfg.Server.RefreshInterval)
	v.SetDefault("server.http_timeout", cfg.Server.HTTPTimeout)
	v.SetDefault("server.sources", sourceMaps(cfg.Server.Sources))
	v.SetDefault("server.companies", cfg.Server.Companies)
}

func sourceMaps(sources []SourceConfig) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(sources))
	for _, s := range sources {
		out = append(out, map[string]interface{}{
			"name":     s.Name,
			"url":      s.URL,
			"category": s.Category,
			"trust":    s.Trust,
			"logo":     s.Logo,
		})
	}
	return out
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "newsdesk", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	if c.API.TrendingLimit <= 0 {
		return fmt.Errorf("api.trending_limit must be positive, got %d", c.API.TrendingLimit)
	}
	if c.API.SuggestionDebounce < 0 {
		return fmt.Errorf("api.suggestion_debounce cannot be negative")
	}
	for i, s := range c.Server.Sources {
		if s.URL == "" {
			return fmt.Errorf("server.sources[%d] (%s) has no url", i, s.Name)
		}
		if s.Trust < 0 || s.Trust > 100 {
			return fmt.Errorf("server.sources[%d] trust must be within 0-100, got %v", i, s.Trust)
		}
	}
	switch c.UI.CardVariant {
	case "", "default", "compact":
	default:
		return fmt.Errorf("ui.card_variant must be 'default' or 'compact', got %q", c.UI.CardVariant)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Server.IndexPath = expandPath(cfg.Server.IndexPath)
	cfg.UI.Catalog = expandPath(cfg.UI.Catalog)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations are written as strings for TOML readability
	apiCfg := map[string]interface{}{
		"base_url":            config.API.BaseURL,
		"timeout":             config.API.Timeout.String(),
		"user_agent":          config.API.UserAgent,
		"page_size":           config.API.PageSize,
		"trending_limit":      config.API.TrendingLimit,
		"suggestion_debounce": config.API.SuggestionDebounce.String(),
		"share_confirm":       config.API.ShareConfirm.String(),
	}
	dbCfg := map[string]interface{}{
		"path":    config.Database.Path,
		"timeout": config.Database.Timeout.String(),
	}
	sources := sourceMaps(config.Server.Sources)
	serverCfg := map[string]interface{}{
		"addr":             config.Server.Addr,
		"index_path":       config.Server.IndexPath,
		"refresh_interval": config.Server.RefreshInterval.String(),
		"http_timeout":     config.Server.HTTPTimeout.String(),
		"sources":          sources,
		"companies":        config.Server.Companies,
	}

	c := config.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
		},
		"article": map[string]interface{}{
			"max_summary_length":  config.UI.Article.MaxSummaryLength,
			"word_wrap_max_width": config.UI.Article.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.Article.WordWrapMinWidth,
		},
		"card_variant": config.UI.CardVariant,
		"catalog":      config.UI.Catalog,
		"opener":       config.UI.Opener,
	}
	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":    b.Quit,
			"search":  b.Search,
			"filters": b.Filters,
			"saved":   b.Saved,
			"open":    b.Open,
			"save":    b.Save,
			"share":   b.Share,
			"variant": b.Variant,
			"back":    b.Back,
		},
	}
	logCfg := map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	}

	v.Set("api", apiCfg)
	v.Set("database", dbCfg)
	v.Set("ui", uiCfg)
	v.Set("keys", keysCfg)
	v.Set("log", logCfg)
	v.Set("server", serverCfg)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
