package fstree

import (
	"io/fs"

	"go.uber.org/zap"
)

// Option is an option of FSTree constructor.
type Option func(*FSTree)

// WithDepth sets the number of nested directories. Depth is reduced to
// MaxDepth in case of overflow.
func WithDepth(d uint64) Option {
	return func(f *FSTree) {
		if d > MaxDepth {
			d = MaxDepth
		}

		f.Depth = d
	}
}

// WithDirNameLen sets the length of directory names.
func WithDirNameLen(l int) Option {
	return func(f *FSTree) {
		f.DirNameLen = l
	}
}

// WithPerm sets permission bits of the created files and directories.
func WithPerm(p fs.FileMode) Option {
	return func(f *FSTree) {
		f.Permissions = p
	}
}

// WithPath sets the root directory.
func WithPath(p string) Option {
	return func(f *FSTree) {
		f.RootPath = p
	}
}

// WithNoSync disables synchronous writes.
func WithNoSync(noSync bool) Option {
	return func(f *FSTree) {
		f.noSync = noSync
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *FSTree) {
		f.log = l
	}
}
