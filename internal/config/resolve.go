package config

// Overrides carries command-line values. A field is applied only when its
// flag name is present in Changed.
type Overrides struct {
	// Changed holds the names of flags set explicitly by the user.
	Changed map[string]bool

	WorkDir    string
	Manifest   string
	ReportFile string
}

// Resolve loads settings from path (falling back to defaults when the file is
// implicit and absent), then applies environment and flag overrides.
func Resolve(path string, explicit bool, overrides Overrides) (*Config, error) {
	cfg, err := LoadOrDefault(path, explicit)
	if err != nil {
		return nil, err
	}

	if err = ApplyEnv(cfg, overrides.Changed); err != nil {
		return nil, err
	}

	if overrides.Changed["work-dir"] {
		cfg.WorkDir = overrides.WorkDir
	}

	if overrides.Changed["manifest"] {
		cfg.Manifest = overrides.Manifest
	}

	if overrides.Changed["report"] {
		cfg.ReportFile = overrides.ReportFile
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
