package blobovniczatree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobovnicza"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	"github.com/nspcc-dev/hrw"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Blobovniczas represents the storage of the "small" objects.
//
// Each object is stored in Blobovnicza's (B-s).
// B-s are structured in a multilevel directory hierarchy
// with fixed depth and width.
//
// Example (width = 4, depth = 2):
//
// x===============================x
// |[0]    [1]    [2]    [3]|
// |   \                /   |
// |    \              /    |
// |     \            /     |
// |      \          /      |
// |[0]    [1]    [2]    [3]|
// |        |    /          |
// |        |   /           |
// |        |  /            |
// |        | /             |
// |[0](F) [1](A) [X]    [X]|
// x===============================x
//
// Elements of the deepest level are B-s. All width^(depth+1) B-s form an
// arena indexed in the path order: "0/0/0", "0/0/1", ..., "3/3/3". At each
// moment of the time there is exactly one active B (ex. A), a set of already
// filled B-s (ex. F) and a list of not yet created B-s (ex. X). After the
// active B becomes full, the next B of the arena becomes active. When the
// last one is full, the tree has no space. Space freed in filled B-s by
// deletion is not reused.
//
// Some of the filled B-s are opened and cached (LRU) for reading.
//
// The path of the B is returned as the storage ID of the saved object
// (ex. "0/1/1" or "3/2/1").
type Blobovniczas struct {
	cfg

	// lock order: activeMtx, then openedMtx

	activeMtx sync.RWMutex
	active    activeLeaf
	// activePath duplicates active.path for reading under openedMtx.
	activePath *atomic.String

	// openedMtx protects usage of the leaves from the opened cache:
	// operations hold it for reading, changes of the cache hold it for
	// writing, so no cached leaf is closed while in use.
	openedMtx sync.RWMutex
	opened    *lru.Cache[string, *blobovnicza.Blobovnicza]

	leaves uint64
}

type activeLeaf struct {
	ind  uint64
	path string
	blz  *blobovnicza.Blobovnicza
}

var _ common.Storage = (*Blobovniczas)(nil)

var errLeafMissing = errors.New("blobovnicza is not created yet")

// NewBlobovniczaTree returns new instance of blobovniczas tree.
func NewBlobovniczaTree(opts ...Option) (blz *Blobovniczas) {
	blz = new(Blobovniczas)
	initConfig(&blz.cfg)

	for i := range opts {
		opts[i](&blz.cfg)
	}

	if blz.openedCacheSize <= 0 {
		blz.openedCacheSize = defaultOpenedCacheSize
	}

	if blz.blzShallowWidth == 0 {
		blz.blzShallowWidth = 1
	}

	cache, err := lru.NewWithEvict[string, *blobovnicza.Blobovnicza](blz.openedCacheSize, func(p string, value *blobovnicza.Blobovnicza) {
		if err := value.Close(); err != nil {
			blz.log.Error("could not close Blobovnicza",
				zap.String("id", p),
				zap.Error(err),
			)
		} else {
			blz.log.Debug("blobovnicza successfully closed on evict",
				zap.String("id", p),
			)
		}
	})
	if err != nil {
		// occurs only if the size is not positive
		panic(fmt.Errorf("could not create LRU cache of size %d: %w", blz.openedCacheSize, err))
	}

	blz.leaves = 1
	for i := uint64(0); i <= blz.blzShallowDepth; i++ {
		blz.leaves *= blz.blzShallowWidth
	}

	blz.opened = cache
	blz.activePath = atomic.NewString("")

	return blz
}

// leafPath returns the path of the i-th leaf of the arena.
func (b *Blobovniczas) leafPath(ind uint64) string {
	elems := make([]string, b.blzShallowDepth+1)

	for i := len(elems) - 1; i >= 0; i-- {
		elems[i] = u64ToHexString(ind % b.blzShallowWidth)
		ind /= b.blzShallowWidth
	}

	return strings.Join(elems, "/")
}

// leafIndex is the inverse of leafPath. Returns false if p is not a valid
// leaf path of the tree.
func (b *Blobovniczas) leafIndex(p string) (uint64, bool) {
	elems := strings.Split(filepath.ToSlash(p), "/")
	if uint64(len(elems)) != b.blzShallowDepth+1 {
		return 0, false
	}

	var ind uint64

	for i := range elems {
		v, err := strconv.ParseUint(elems[i], 16, 64)
		if err != nil || v >= b.blzShallowWidth {
			return 0, false
		}

		ind = ind*b.blzShallowWidth + v
	}

	return ind, true
}

// withLeaf executes f on the opened leaf with path p. Leaves which are not
// created yet are not created by withLeaf, errLeafMissing is returned.
func (b *Blobovniczas) withLeaf(p string, f func(*blobovnicza.Blobovnicza) error) error {
	if _, ok := b.leafIndex(p); !ok {
		return fmt.Errorf("invalid blobovnicza ID %q", p)
	}

	for {
		b.activeMtx.RLock()
		if b.active.blz != nil && b.active.path == p {
			err := f(b.active.blz)
			b.activeMtx.RUnlock()

			return err
		}
		b.activeMtx.RUnlock()

		b.openedMtx.RLock()
		if blz, ok := b.opened.Get(p); ok {
			err := f(blz)
			b.openedMtx.RUnlock()

			return err
		}
		b.openedMtx.RUnlock()

		b.openedMtx.Lock()

		if b.activePath.Load() == p {
			// activated concurrently
			b.openedMtx.Unlock()
			continue
		}

		if !b.opened.Contains(p) {
			blz, err := b.openBlobovnicza(p, false)
			if err != nil {
				b.openedMtx.Unlock()
				return err
			}

			b.opened.Add(p, blz)
		}

		b.openedMtx.Unlock()
	}
}

// openBlobovnicza opens and initializes the leaf. If create is false and
// the leaf file does not exist, errLeafMissing is returned.
func (b *Blobovniczas) openBlobovnicza(p string, create bool) (*blobovnicza.Blobovnicza, error) {
	path := filepath.Join(b.rootPath, p)

	if !create || b.readOnly {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, errLeafMissing
			}

			return nil, fmt.Errorf("could not stat blobovnicza %s: %w", p, err)
		}
	}

	opts := make([]blobovnicza.Option, 0, len(b.blzOpts)+3)
	opts = append(opts, b.blzOpts...)
	opts = append(opts,
		blobovnicza.WithReadOnly(b.readOnly),
		blobovnicza.WithPath(path),
		blobovnicza.WithCompressor(b.compression),
	)

	blz := blobovnicza.New(opts...)

	if err := blz.Open(); err != nil {
		return nil, fmt.Errorf("could not open blobovnicza %s: %w", p, err)
	}

	if err := blz.Init(); err != nil {
		_ = blz.Close()
		return nil, fmt.Errorf("could not init blobovnicza %s: %w", p, err)
	}

	b.log.Debug("blobovnicza successfully opened",
		zap.String("path", p),
		zap.Uint64("filled", blz.FilledSize()),
	)

	return blz, nil
}

// returns hash of the object address.
func addressHash(addr string, path string) uint64 {
	return hrw.Hash([]byte(addr + path))
}

// converts uint64 to hex string.
func u64ToHexString(ind uint64) string {
	return strconv.FormatUint(ind, 16)
}

// Type implements common.Storage.
func (b *Blobovniczas) Type() string {
	return Type
}

// Type is the type of the storage in the blob tier.
const Type = "blobovniczas"

// Path implements common.Storage.
func (b *Blobovniczas) Path() string {
	return b.rootPath
}

// SetCompressor implements common.Storage.
func (b *Blobovniczas) SetCompressor(cc *compression.Config) {
	b.compression = cc
}

// SetLogger implements common.Storage.
func (b *Blobovniczas) SetLogger(l *zap.Logger) {
	b.log = l
}
