package internal

import (
	"math/bits"
	"reflect"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Size is an unsigned integer value that represents a size in bytes.
type Size uint64

// SizeHook returns a mapstructure decode hook func that converts a string to a Size.
func SizeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(Size(0)) {
			return data, nil
		}

		return Size(ParseSizeInBytes(cast.ToString(data))), nil
	}
}

func safeMul(size uint64, multiplier uint64) uint64 {
	hi, lo := bits.Mul64(size, multiplier)
	if hi != 0 {
		return 0
	}
	return lo
}

// ParseSizeInBytes converts strings like 1GB or 12 mb into an unsigned
// integer number of bytes. Both `k` and `kb` suffix forms are accepted.
// Returns 0 on overflow or malformed input.
func ParseSizeInBytes(sizeStr string) uint64 {
	sizeStr = strings.TrimSpace(sizeStr)
	if sizeStr == "" {
		return 0
	}

	last := len(sizeStr) - 1
	if last > 0 && (sizeStr[last] == 'b' || sizeStr[last] == 'B') {
		last--
	}

	multiplier := uint64(1)

	switch unicode.ToLower(rune(sizeStr[last])) {
	case 'k':
		multiplier = 1 << 10
	case 'm':
		multiplier = 1 << 20
	case 'g':
		multiplier = 1 << 30
	case 't':
		multiplier = 1 << 40
	default:
		last++
	}

	return safeMul(cast.ToUint64(strings.TrimSpace(sizeStr[:last])), multiplier)
}
