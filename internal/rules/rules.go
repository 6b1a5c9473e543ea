// Package rules loads audit rule overrides from a YAML file.
//
// A rules file names the columns each check reads, using the same keys as
// core.AuditConfig. Keys left out of the file keep the dataset's defaults:
//
//	primary_key: Report Number
//	key_fields: [Report Number, Crash Date/Time]
//	ranges:
//	  - field: Speed Limit
//	    min: 0
//	    max: 85
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/crashaudit/internal/core"
)

// Load reads path and overlays it on base. An empty path returns base.
func Load(path string, base core.AuditConfig) (core.AuditConfig, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read rules file: %w", err)
	}
	cfg, err := Parse(data, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays the YAML document in data on base. Unknown keys and
// multiple documents are rejected.
func Parse(data []byte, base core.AuditConfig) (core.AuditConfig, error) {
	cfg := clone(base)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("invalid rules: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return base, errors.New("invalid rules: multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("invalid rules: %w", err)
	}

	if err := validate(cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

func validate(cfg core.AuditConfig) error {
	var errs []error
	for _, r := range cfg.Ranges {
		if r.Field == "" {
			errs = append(errs, errors.New("range rule without a field"))
		}
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("range rule for %q has min %g above max %g", r.Field, r.Min, r.Max))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid rules: %w", errors.Join(errs...))
	}
	return nil
}

// clone copies the slices of cfg so decoding never writes through to the
// registered defaults.
func clone(cfg core.AuditConfig) core.AuditConfig {
	cfg.KeyFields = append([]string(nil), cfg.KeyFields...)
	cfg.NonNegativeFields = append([]string(nil), cfg.NonNegativeFields...)
	cfg.Ranges = append([]core.RangeRule(nil), cfg.Ranges...)
	return cfg
}
