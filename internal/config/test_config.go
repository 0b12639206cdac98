package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:0"
	cfg.API.Timeout = 5 * time.Second
	cfg.API.UserAgent = "newsdesk-test/1.0"
	cfg.API.SuggestionDebounce = 300 * time.Millisecond
	cfg.Database.Path = ":memory:"
	cfg.Log.Level = "off"
	cfg.Log.File = ""
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.IndexPath = ""
	cfg.Server.HTTPTimeout = 5 * time.Second
	cfg.Server.Sources = nil
	return cfg
}
