// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"grimm.is/docwriter/internal/errors"
)

// LoadFile reads a config file and merges it over Default. ".hcl" files are
// HCL, ".yaml" and ".yml" files are YAML; anything else is tried as HCL
// first and YAML second. Relative inputs are taken relative to the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindConfig, "failed to read config file %s", path)
	}

	var fc *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		fc, err = ParseHCL(data, path)
	case ".yaml", ".yml":
		fc, err = ParseYAML(data, path)
	default:
		var yamlErr error
		fc, err = ParseHCL(data, path)
		if err != nil {
			if fc, yamlErr = ParseYAML(data, path); yamlErr == nil {
				err = nil
			}
		}
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, in := range fc.Inputs {
		if !filepath.IsAbs(in) {
			fc.Inputs[i] = filepath.Join(base, in)
		}
	}

	cfg := Default()
	cfg.Merge(fc)
	return cfg, nil
}

// ParseHCL decodes HCL config bytes. Unknown attributes are errors.
func ParseHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, errors.KindConfig, "failed to parse HCL")
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, errors.Wrap(diags, errors.KindConfig, "failed to decode HCL")
	}
	return &cfg, nil
}

// ParseYAML decodes YAML config bytes. Unknown keys are errors.
func ParseYAML(data []byte, filename string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, errors.KindConfig, "failed to parse YAML %s", filename)
	}
	return &cfg, nil
}


