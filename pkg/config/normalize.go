package config

import "strings"

func (c *Config) normalize() {
	c.Crest.Command = strings.TrimSpace(c.Crest.Command)
	if c.Crest.Command == "" {
		c.Crest.Command = "crest"
	}
	c.Crest.Method = strings.ToLower(strings.TrimSpace(c.Crest.Method))
	if c.Crest.Method == "" {
		c.Crest.Method = defaultCrestMethod
	}
	c.Crest.WorkDir = strings.TrimSpace(c.Crest.WorkDir)

	c.OpenBabel.Command = strings.TrimSpace(c.OpenBabel.Command)
	if c.OpenBabel.Command == "" {
		c.OpenBabel.Command = "obabel"
	}
	c.OpenBabel.Gen3D = strings.ToLower(strings.TrimSpace(c.OpenBabel.Gen3D))

	c.Output.Database = strings.TrimSpace(c.Output.Database)

	c.normalizeLogging()
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
