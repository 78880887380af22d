package internal

import (
	"fmt"
	"reflect"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// ModeHook returns a mapstructure decode hook func that converts a string to a mode.Mode.
// Empty string means mode.ReadWrite.
func ModeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(mode.Mode(0)) {
			return data, nil
		}

		str := cast.ToString(data)
		if str == "" {
			return mode.ReadWrite, nil
		}

		m, ok := mode.Parse(str)
		if !ok {
			return nil, fmt.Errorf("unknown shard mode: %s", str)
		}

		return m, nil
	}
}
