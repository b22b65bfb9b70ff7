package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// HCL front-end for the same configuration schema:
//
//	source {
//	  name = "chromium_revision"
//	  url  = "https://chromium.googlesource.com/chromium/src"
//	  var  = "chromium_revision"
//	}
//	reviewer "libvpx" {
//	  address = "someone@example.org"
//	}
//	skip_paths = ["src/third_party/gradle"]
//
// Expressions may reference process environment values through env, e.g.
// `address = env.ROLL_REVIEWER`.
type hclRoot struct {
	Source       *hclSource    `hcl:"source,block"`
	ThirdParty   *hclSource    `hcl:"third_party,block"`
	ManifestName *string       `hcl:"manifest_name,optional"`
	ClangScript  *string       `hcl:"clang_script_path,optional"`
	Platforms    *[]string     `hcl:"platforms,optional"`
	SkipPaths    *[]string     `hcl:"skip_paths,optional"`
	Reviewers    []hclReviewer `hcl:"reviewer,block"`
	ExtraTrybots *[]string     `hcl:"extra_trybots,optional"`
}

type hclSource struct {
	Name *string `hcl:"name,optional"`
	URL  *string `hcl:"url,optional"`
	Var  *string `hcl:"var,optional"`
}

type hclReviewer struct {
	PathContains string `hcl:"path_contains,label"`
	Address      string `hcl:"address"`
}

func unmarshalHCL(filename string, data []byte, cfg *Config) error {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file: %w", diags)
	}

	var root hclRoot
	if decodeDiags := gohcl.DecodeBody(file.Body, evalContext(), &root); decodeDiags.HasErrors() {
		return fmt.Errorf("failed to decode config file: %w", decodeDiags)
	}

	applySource(&cfg.Source, root.Source)
	applySource(&cfg.ThirdParty, root.ThirdParty)
	applyString(&cfg.ManifestName, root.ManifestName)
	applyString(&cfg.ClangScriptPath, root.ClangScript)
	applyStrings(&cfg.Platforms, root.Platforms)
	applyStrings(&cfg.SkipPaths, root.SkipPaths)
	applyStrings(&cfg.ExtraTrybots, root.ExtraTrybots)
	for _, r := range root.Reviewers {
		cfg.Reviewers = append(cfg.Reviewers, ReviewerConfig{
			PathContains: r.PathContains,
			Address:      r.Address,
		})
	}
	return nil
}

// evalContext exposes the process environment to HCL expressions as the
// env object.
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, entry := range os.Environ() {
		if name, value, found := strings.Cut(entry, "="); found && name != "" {
			env[name] = cty.StringVal(value)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
	}
}

func applySource(dst *SourceConfig, src *hclSource) {
	if src == nil {
		return
	}
	applyString(&dst.Name, src.Name)
	applyString(&dst.URL, src.URL)
	applyString(&dst.Var, src.Var)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyStrings(dst *[]string, src *[]string) {
	if src != nil {
		*dst = *src
	}
}
