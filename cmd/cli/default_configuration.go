package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationDocument is the YAML shipped with the binary; `config show` falls back to it.
//
//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// DefaultConfigurationDocument returns a private copy of the shipped YAML with its viper config type.
func DefaultConfigurationDocument() ([]byte, string) {
	return bytes.Clone(defaultConfigurationDocument), configurationTypeConstant
}
