package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Settings that are awkward as env vars (word lists, nested options) live here.
type YAMLConfig struct {
	Matching MatchingConfig `yaml:"matching"`
	Speller  SpellerConfig  `yaml:"speller"`
	Fallback FallbackConfig `yaml:"fallback"`
	Digest   DigestConfig   `yaml:"digest"`
}

// MatchingConfig tunes question matching.
type MatchingConfig struct {
	Threshold *float64 `yaml:"threshold,omitempty"` // 0..1, >= 1 disables fuzzy matching
}

// SpellerConfig tunes spell correction.
type SpellerConfig struct {
	Disabled       bool     `yaml:"disabled"`
	MinWordLength  int      `yaml:"min_word_length"`
	MaxWordLength  int      `yaml:"max_word_length"` // Longer words are never corrected
	Depth          int      `yaml:"depth"`           // Maximum edit distance considered
	DictionaryFile string   `yaml:"dictionary_file"` // Extra training text
	Vocabulary     []string `yaml:"vocabulary"`      // Extra known words
}

// FallbackConfig overrides fallback behaviour.
type FallbackConfig struct {
	Message string `yaml:"message"`
	LogPath string `yaml:"log_path"`
}

// DigestConfig configures the unanswered-question digest e-mail.
type DigestConfig struct {
	Subject    string   `yaml:"subject"`
	Recipients []string `yaml:"recipients"`
	MaxItems   int      `yaml:"max_items"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from an explicit path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Speller.MinWordLength <= 0 {
		cfg.Speller.MinWordLength = 3
	}
	if cfg.Speller.MaxWordLength <= 0 {
		cfg.Speller.MaxWordLength = 32
	}
	if cfg.Speller.Depth <= 0 {
		cfg.Speller.Depth = 2
	}
	if cfg.Digest.Subject == "" {
		cfg.Digest.Subject = "Unanswered questions"
	}
	if cfg.Digest.MaxItems <= 0 {
		cfg.Digest.MaxItems = 200
	}

	return &cfg, nil
}

// Apply overlays file settings onto the env-derived config.
// Env-only settings are left untouched.
func (y *YAMLConfig) Apply(c *Config) {
	if y == nil || c == nil {
		return
	}
	if y.Matching.Threshold != nil {
		c.MatchThreshold = *y.Matching.Threshold
	}
	if y.Speller.Disabled {
		c.SpellcheckEnabled = false
	}
	if y.Speller.DictionaryFile != "" && c.SpellDictionaryPath == "" {
		c.SpellDictionaryPath = y.Speller.DictionaryFile
	}
	if y.Fallback.Message != "" && c.FallbackMessage == DefaultFallbackMessage {
		c.FallbackMessage = y.Fallback.Message
	}
	if y.Fallback.LogPath != "" {
		c.FallbackLogPath = y.Fallback.LogPath
	}
	if len(c.DigestRecipients) == 0 {
		c.DigestRecipients = y.Digest.Recipients
	}
}

// SpellerSettings returns speller options, falling back to defaults when no file was loaded.
func (y *YAMLConfig) SpellerSettings() SpellerConfig {
	if y == nil {
		return SpellerConfig{MinWordLength: 3, MaxWordLength: 32, Depth: 2}
	}
	return y.Speller
}

// DigestSettings returns digest options, falling back to defaults when no file was loaded.
func (y *YAMLConfig) DigestSettings() DigestConfig {
	if y == nil {
		return DigestConfig{Subject: "Unanswered questions", MaxItems: 200}
	}
	return y.Digest
}
