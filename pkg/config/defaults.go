package config

const (
	defaultMinMacroRingSize = 10
	defaultCrestMethod      = "gfn2"
	defaultTemperature      = 298.15
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Generator: Generator{
			MinMacroRingSize: defaultMinMacroRingSize,
		},
		Crest: Crest{
			Command:     "crest",
			Method:      defaultCrestMethod,
			Temperature: defaultTemperature,
		},
		OpenBabel: OpenBabel{
			Command: "obabel",
			Gen3D:   "med",
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
