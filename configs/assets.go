package configs

import (
	_ "embed"
)

// ConfigFile the default configuration, printed with --init
//
//go:embed config.yaml
var ConfigFile string
