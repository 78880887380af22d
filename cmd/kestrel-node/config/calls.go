package config

import (
	"fmt"
	"strings"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/internal"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Sub returns subsection of the Config by name.
//
// Returns nil if subsection if missing.
func (x *Config) Sub(name string) *Config {
	var defaultPath []string
	if x.defaultPath != nil {
		defaultPath = appendPath(x.defaultPath, name)
	}

	return &Config{
		v:           x.v,
		path:        appendPath(x.path, name),
		defaultPath: defaultPath,
	}
}

// Value returns configuration value by name.
//
// Result can be casted to a particular type
// via corresponding function (e.g. StringSlice).
// Note: casting via Go `.()` operator is not
// recommended.
//
// Returns nil if config is nil.
func (x *Config) Value(name string) any {
	value := x.v.Get(strings.Join(appendPath(x.path, name), separator))
	if value != nil || x.defaultPath == nil {
		return value
	}

	return x.v.Get(strings.Join(appendPath(x.defaultPath, name), separator))
}

// SetDefault sets fallback config for missing values.
//
// It supports only one level of nesting and is intended to be used
// to provide default values.
func (x *Config) SetDefault(from *Config) {
	x.defaultPath = make([]string, len(from.path))
	copy(x.defaultPath, from.path)
}

// Unmarshal decodes the section into the structure pointed by out using
// `mapstructure` field tags. Values of the default section (see SetDefault)
// are decoded first and overridden by the section's own ones. Durations,
// sizes in bytes ("4 KB") and shard modes are decoded from their text forms.
func (x *Config) Unmarshal(out any) error {
	if x.defaultPath != nil {
		if err := x.unmarshalPath(x.defaultPath, out); err != nil {
			return err
		}
	}

	return x.unmarshalPath(x.path, out)
}

func (x *Config) unmarshalPath(path []string, out any) error {
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		internal.SizeHook(),
		internal.ModeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	key := strings.Join(path, separator)

	var err error
	if key == "" {
		err = x.v.Unmarshal(out, hook)
	} else if x.v.IsSet(key) {
		err = x.v.UnmarshalKey(key, out, hook)
	}

	if err != nil {
		return fmt.Errorf("decode section %q: %w", key, err)
	}

	return nil
}

func appendPath(path []string, name string) []string {
	res := make([]string, len(path), len(path)+1)
	copy(res, path)

	return append(res, name)
}
