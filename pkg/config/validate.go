package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
)

var (
	crestMethods = map[string]bool{"gfnff": true, "gfn0": true, "gfn1": true, "gfn2": true}
	gen3DSpeeds  = map[string]bool{"": true, "fastest": true, "fast": true, "med": true, "slow": true, "slowest": true, "best": true}
	logLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats   = map[string]bool{"console": true, "json": true}
)

// Validate ensures the configuration is usable, reporting every problem found.
func (c *Config) Validate() error {
	var errs *multierror.Error
	errs = multierror.Append(errs, c.validateGenerator()...)
	errs = multierror.Append(errs, c.validateCrest()...)
	errs = multierror.Append(errs, c.validateOpenBabel()...)
	errs = multierror.Append(errs, c.validateLogging()...)
	return errs.ErrorOrNil()
}

func (c *Config) validateGenerator() []error {
	var errs []error
	g := c.Generator
	if g.MinMacroRingSize < 3 {
		errs = append(errs, fmt.Errorf("generator.min_macro_ring_size must be at least 3, got %d", g.MinMacroRingSize))
	}
	if g.TopN < 0 {
		errs = append(errs, fmt.Errorf("generator.top_n must be >= 0, got %d", g.TopN))
	}
	if g.EnergyWindow < 0 {
		errs = append(errs, fmt.Errorf("generator.energy_window must be >= 0, got %v", g.EnergyWindow))
	}
	if g.RMSDThreshold < 0 {
		errs = append(errs, fmt.Errorf("generator.rmsd_threshold must be >= 0, got %v", g.RMSDThreshold))
	}
	return errs
}

func (c *Config) validateCrest() []error {
	var errs []error
	cr := c.Crest
	if !crestMethods[cr.Method] {
		errs = append(errs, fmt.Errorf("crest.method must be one of gfnff, gfn0, gfn1, gfn2, got %q", cr.Method))
	}
	if cr.EnergyWindow < 0 {
		errs = append(errs, fmt.Errorf("crest.energy_window must be >= 0, got %v", cr.EnergyWindow))
	}
	if cr.RMSDThreshold < 0 {
		errs = append(errs, fmt.Errorf("crest.rmsd_threshold must be >= 0, got %v", cr.RMSDThreshold))
	}
	if cr.Temperature < 0 {
		errs = append(errs, fmt.Errorf("crest.temperature must be >= 0, got %v", cr.Temperature))
	}
	if cr.CPUs < 0 {
		errs = append(errs, fmt.Errorf("crest.cpus must be >= 0, got %d", cr.CPUs))
	}
	if cr.WorkDir != "" {
		info, err := os.Stat(cr.WorkDir)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("crest.work_dir: %w", err))
		case !info.IsDir():
			errs = append(errs, fmt.Errorf("crest.work_dir %s is not a directory", cr.WorkDir))
		}
	}
	return errs
}

func (c *Config) validateOpenBabel() []error {
	if !gen3DSpeeds[c.OpenBabel.Gen3D] {
		return []error{fmt.Errorf("openbabel.gen3d must be one of fastest, fast, med, slow, slowest, best, got %q", c.OpenBabel.Gen3D)}
	}
	return nil
}

func (c *Config) validateLogging() []error {
	var errs []error
	if !logLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level))
	}
	if !logFormats[c.Logging.Format] {
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errs
}
