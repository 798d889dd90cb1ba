/*
Package config manages TOML config for the gospell core.

InitConfig handles automatic config file creation and loading with
fallback to defaults. LoadConfig and SaveConfig provide direct fs
access for runtime changes.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bastiangx/gospell/internal/logger"
)

var log = logger.New("config")

// Config holds the entire config structure.
type Config struct {
	Langs    LangsConfig    `toml:"langs"`
	Suggest  SuggestConfig  `toml:"suggest"`
	Compress CompressConfig `toml:"compress"`
}

// LangsConfig covers the spelllang option: a comma-separated list of
// language specs, each either a path ending in .spl or a name with an
// optional _REGION suffix. "cjk" disables checking for East-Asian
// scripts.
type LangsConfig struct {
	SpellLang string `toml:"spelllang"`
	// RuntimePath is read from and written to the config file, but no
	// code in this module uses it: cmd/gospell searches its -data
	// directory for the .spl files instead.
	RuntimePath string `toml:"runtime_path"`
}

// SuggestConfig covers the spellsuggest option: comma-separated tokens
// from {best, fast, double, <count>, expr:<...>, file:<...>}.
type SuggestConfig struct {
	SpellSuggest string `toml:"spellsuggest"`
}

// CompressConfig covers the mkspellmem option: a start,inc,added triple
// setting the trie-compression thresholds.
type CompressConfig struct {
	MkSpellMem string `toml:"mkspellmem"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Langs: LangsConfig{
			SpellLang:   "en",
			RuntimePath: "",
		},
		Suggest: SuggestConfig{
			SpellSuggest: "best,9",
		},
		Compress: CompressConfig{
			MkSpellMem: "460000,2000,500000",
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
		log.Debugf("created default config file at: ( %s )", configPath)
		return cfg, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file and validates the three option
// families spec.md §6.4 names.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Errorf("failed to decode config file: %v", err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(cfg *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(cfg)
}

// Validate enforces the mkspellmem constraints spec.md §6.4 requires:
// all three of start,inc,added must be positive and inc <= start.
func (c *Config) Validate() error {
	_, _, _, err := c.Compress.parse()
	return err
}

// parse splits the "start,inc,added" triple and checks it.
func (cc CompressConfig) parse() (start, inc, added int, err error) {
	parts := strings.Split(cc.MkSpellMem, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("mkspellmem: expected start,inc,added, got %q", cc.MkSpellMem)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, perr := strconv.Atoi(strings.TrimSpace(p))
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("mkspellmem: bad integer %q: %w", p, perr)
		}
		vals[i] = v
	}
	start, inc, added = vals[0], vals[1], vals[2]
	if start <= 0 || inc <= 0 || added <= 0 {
		return 0, 0, 0, fmt.Errorf("mkspellmem: start,inc,added must all be positive, got %d,%d,%d", start, inc, added)
	}
	if inc > start {
		return 0, 0, 0, fmt.Errorf("mkspellmem: inc (%d) must be <= start (%d)", inc, start)
	}
	return start, inc, added, nil
}

// MkSpellMem returns the parsed (start, inc, added) triple. The caller
// is expected to have already validated the config via LoadConfig.
func (c *Config) MkSpellMem() (start, inc, added int) {
	start, inc, added, _ = c.Compress.parse()
	return start, inc, added
}

// LanguageSpec is one parsed entry from spelllang.
type LanguageSpec struct {
	Path   string // set when the entry is a bare path ending in .spl
	Name   string // set when the entry is a name[_REGION] spec
	Region string
	CJK    bool
}

// ParseSpellLang splits c.Langs.SpellLang into its per-language specs.
func (c *Config) ParseSpellLang() []LanguageSpec {
	var out []LanguageSpec
	for _, entry := range strings.Split(c.Langs.SpellLang, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == "cjk" {
			out = append(out, LanguageSpec{CJK: true})
			continue
		}
		if strings.HasSuffix(entry, ".spl") {
			out = append(out, LanguageSpec{Path: entry})
			continue
		}
		name, region, _ := strings.Cut(entry, "_")
		out = append(out, LanguageSpec{Name: name, Region: region})
	}
	return out
}

// SuggestToken is one parsed spellsuggest entry.
type SuggestToken struct {
	Best   bool
	Fast   bool
	Double bool
	Count  int  // set when the token was a bare integer
	Expr   string
	File   string
}

// ParseSpellSuggest splits c.Suggest.SpellSuggest into its tokens.
// expr:/file: tokens are recorded but not acted on — those passthrough
// collaborators are out of scope for this core.
func (c *Config) ParseSpellSuggest() []SuggestToken {
	var out []SuggestToken
	for _, tok := range strings.Split(c.Suggest.SpellSuggest, ",") {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
			continue
		case tok == "best":
			out = append(out, SuggestToken{Best: true})
		case tok == "fast":
			out = append(out, SuggestToken{Fast: true})
		case tok == "double":
			out = append(out, SuggestToken{Double: true})
		case strings.HasPrefix(tok, "expr:"):
			out = append(out, SuggestToken{Expr: strings.TrimPrefix(tok, "expr:")})
		case strings.HasPrefix(tok, "file:"):
			out = append(out, SuggestToken{File: strings.TrimPrefix(tok, "file:")})
		default:
			if n, err := strconv.Atoi(tok); err == nil {
				out = append(out, SuggestToken{Count: n})
			} else {
				log.Warnf("config: unrecognized spellsuggest token %q, skipped", tok)
			}
		}
	}
	return out
}
