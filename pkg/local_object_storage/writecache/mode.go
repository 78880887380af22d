package writecache

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
)

// ErrReadOnly is returned when Put/Write is performed in a read-only mode.
var ErrReadOnly = logicerr.New("write-cache is in read-only mode")

// SetMode sets write-cache mode of operation.
// When shard is put in read-only mode all objects in memory are flushed to disk
// and all background jobs are suspended.
func (c *cache) SetMode(m mode.Mode) error {
	c.modeMtx.Lock()
	defer c.modeMtx.Unlock()

	if c.mode == m {
		return nil
	}

	if !c.readOnly() {
		// Because modeMtx is taken no new objects will arrive and all other modifying
		// operations are completed.
		c.persistMemoryCache()
	}

	if m.NoMetabase() && !c.mode.NoMetabase() {
		err := c.flush(true)
		if err != nil {
			return err
		}
	}

	if c.mode.ReadOnly() != m.ReadOnly() {
		if err := c.reopen(m.ReadOnly()); err != nil {
			return fmt.Errorf("can't set write-cache mode (old=%s, new=%s): %w", c.mode, m, err)
		}
	}

	c.mode = m
	return nil
}

func (c *cache) reopen(readOnly bool) error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		c.db = nil
	}

	if c.fsTree != nil {
		if err := c.fsTree.Close(); err != nil {
			return fmt.Errorf("close FSTree: %w", err)
		}
	}

	if err := c.openStore(readOnly); err != nil {
		return err
	}

	return c.fsTree.Init()
}

// readOnly returns true if current mode is read-only.
// `c.modeMtx` must be taken.
func (c *cache) readOnly() bool {
	return c.mode.ReadOnly()
}
