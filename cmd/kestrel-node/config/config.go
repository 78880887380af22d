package config

import (
	"fmt"
	"strings"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/internal"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config represents a group of named values structured
// by tree type.
//
// Sub-trees are named configuration sub-sections,
// leaves are named configuration values.
// Names are of string type.
type Config struct {
	v *viper.Viper

	path []string

	defaultPath []string
}

const separator = "."

// Prm groups required parameters of the Config.
type Prm struct{}

// New creates a new Config instance.
//
// If file option is provided (WithConfigFile),
// configuration values are read from it. Leading "~" in the file path
// is expanded to the user's home directory.
// Otherwise, Config is a degenerate tree.
func New(_ Prm, opts ...Option) *Config {
	v := viper.New()

	v.SetEnvPrefix(internal.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(separator, internal.EnvSeparator))

	o := defaultOpts()
	for i := range opts {
		opts[i](o)
	}

	if o.path != "" {
		path, err := homedir.Expand(o.path)
		if err != nil {
			panic(fmt.Errorf("failed to expand config path: %w", err))
		}

		v.SetConfigFile(path)

		err = v.ReadInConfig()
		if err != nil {
			panic(fmt.Errorf("failed to read config: %w", err))
		}
	}

	return &Config{
		v: v,
	}
}

// Reload re-reads the configuration file the Config was created from.
// Sub-sections share the state with the root, so they see new values too.
func (x *Config) Reload() error {
	if x.v.ConfigFileUsed() == "" {
		return nil
	}

	if err := x.v.ReadInConfig(); err != nil {
		return fmt.Errorf("re-read config: %w", err)
	}

	return nil
}
