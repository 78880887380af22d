package blobovniczatree

import (
	"io/fs"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	"go.uber.org/zap"
)

type cfg struct {
	log             *zap.Logger
	perm            fs.FileMode
	readOnly        bool
	rootPath        string
	openedCacheSize int
	blzShallowDepth uint64
	blzShallowWidth uint64
	compression     *compression.Config
	blzOpts         []blobovnicza.Option
}

// Option is an option of the tree constructor.
type Option func(*cfg)

const (
	defaultPerm            = 0700
	defaultOpenedCacheSize = 50
	defaultBlzShallowDepth = 2
	defaultBlzShallowWidth = 16
)

func initConfig(c *cfg) {
	*c = cfg{
		log:             zap.L(),
		perm:            defaultPerm,
		openedCacheSize: defaultOpenedCacheSize,
		blzShallowDepth: defaultBlzShallowDepth,
		blzShallowWidth: defaultBlzShallowWidth,
	}
}

// WithLogger returns option to set the tree logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *cfg) {
		c.log = l
		c.blzOpts = append(c.blzOpts, blobovnicza.WithLogger(l))
	}
}

// WithPermissions returns option to set permission bits of the tree
// directories and leaf files.
func WithPermissions(perm fs.FileMode) Option {
	return func(c *cfg) {
		c.perm = perm
		c.blzOpts = append(c.blzOpts, blobovnicza.WithPermissions(perm))
	}
}

// WithBlobovniczaShallowWidth returns option to set the number of entries
// on each level of the tree.
func WithBlobovniczaShallowWidth(width uint64) Option {
	return func(c *cfg) {
		c.blzShallowWidth = width
	}
}

// WithBlobovniczaShallowDepth returns option to set the number of directory
// levels above the leaves.
func WithBlobovniczaShallowDepth(depth uint64) Option {
	return func(c *cfg) {
		c.blzShallowDepth = depth
	}
}

// WithRootPath returns option to set the tree root directory.
func WithRootPath(p string) Option {
	return func(c *cfg) {
		c.rootPath = p
	}
}

// WithBlobovniczaSize returns option to set the size limit of every leaf.
func WithBlobovniczaSize(sz uint64) Option {
	return func(c *cfg) {
		c.blzOpts = append(c.blzOpts, blobovnicza.WithFullSizeLimit(sz))
	}
}

// WithOpenedCacheSize returns option to set the number of simultaneously
// opened non-active leaves.
func WithOpenedCacheSize(sz int) Option {
	return func(c *cfg) {
		c.openedCacheSize = sz
	}
}

// WithObjectSizeLimit returns option to set the maximum size of a stored
// object.
func WithObjectSizeLimit(sz uint64) Option {
	return func(c *cfg) {
		c.blzOpts = append(c.blzOpts, blobovnicza.WithObjectSizeLimit(sz))
	}
}
