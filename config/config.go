// Package config loads the roll policy: where the reference manifests
// live, which platforms to index, which paths never to roll, and who gets
// pulled in as co-reviewer for which paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/openwebmedia/rolldeps/roller"
)

// Config is the top-level configuration for rolldeps.
type Config struct {
	Source          SourceConfig     `yaml:"source"`
	ThirdParty      SourceConfig     `yaml:"third_party"`
	ManifestName    string           `yaml:"manifest_name"`
	ClangScriptPath string           `yaml:"clang_script_path"`
	Platforms       []string         `yaml:"platforms"`
	SkipPaths       []string         `yaml:"skip_paths"`
	Reviewers       []ReviewerConfig `yaml:"reviewers"`
	ExtraTrybots    []string         `yaml:"extra_trybots"`
}

// SourceConfig describes one rolled reference tree: its display name, its
// repository URL, and the manifest variable carrying its pinned revision.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Var  string `yaml:"var"`
}

// ReviewerConfig adds a co-reviewer for changed paths containing a
// substring.
type ReviewerConfig struct {
	PathContains string `yaml:"path_contains"`
	Address      string `yaml:"address"`
}

// Default returns the stock Chromium roll policy. A config file overrides
// individual fields.
func Default() *Config {
	const chromiumURL = "https://chromium.googlesource.com/chromium/src"
	return &Config{
		Source: SourceConfig{
			Name: "chromium_revision",
			URL:  chromiumURL,
			Var:  "chromium_revision",
		},
		ThirdParty: SourceConfig{
			Name: "chromium third_party",
			URL:  chromiumURL + "/third_party",
			Var:  "chromium_third_party_revision",
		},
		ManifestName:    "DEPS",
		ClangScriptPath: "tools/clang/scripts/update.py",
		Platforms:       []string{"win", "mac", "unix", "android", "ios"},
	}
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads a configuration file (YAML, or HCL for .hcl paths), expands
// ${ENV_VAR} placeholders, and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	expanded := expandEnv(string(data))

	cfg := Default()
	if strings.HasSuffix(path, ".hcl") {
		if hclErr := unmarshalHCL(path, []byte(expanded), cfg); hclErr != nil {
			return nil, hclErr
		}
	} else if yamlErr := yaml.Unmarshal([]byte(expanded), cfg); yamlErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", yamlErr)
	}

	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}
	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config", "configs"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{
		".rolldeps.yaml",
		".rolldeps.yml",
		".rolldeps.hcl",
		"rolldeps.yaml",
		"rolldeps.yml",
		"rolldeps.hcl",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// Options maps the configuration onto the engine's immutable policy value.
func (c *Config) Options() roller.Options {
	reviewers := make([]roller.ReviewerRule, 0, len(c.Reviewers))
	for _, r := range c.Reviewers {
		reviewers = append(reviewers, roller.ReviewerRule{
			PathContains: r.PathContains,
			Address:      r.Address,
		})
	}
	return roller.Options{
		SourceName:      c.Source.Name,
		SourceURL:       c.Source.URL,
		ThirdPartyName:  c.ThirdParty.Name,
		ThirdPartyURL:   c.ThirdParty.URL,
		ManifestName:    c.ManifestName,
		ClangScriptPath: c.ClangScriptPath,
		SkipPaths:       c.SkipPaths,
		Reviewers:       reviewers,
		ExtraTrybots:    c.ExtraTrybots,
	}
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func validate(cfg *Config) error {
	if cfg.Source.URL == "" {
		return errors.New("source.url is required")
	}
	if cfg.Source.Var == "" {
		return errors.New("source.var is required")
	}
	if cfg.ManifestName == "" {
		return errors.New("manifest_name is required")
	}
	for i, r := range cfg.Reviewers {
		if r.PathContains == "" || r.Address == "" {
			return fmt.Errorf("reviewers[%d] needs both path_contains and address", i)
		}
	}
	return nil
}
