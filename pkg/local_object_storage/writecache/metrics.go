package writecache

import "time"

// Storage types reported to Metrics.
const (
	StorageTypeMemory = "memory"
	StorageTypeDB     = "db"
	StorageTypeFSTree = "fstree"
)

// Metrics collects write-cache state.
type Metrics interface {
	Put(d time.Duration, success bool, storageType string)
	Flush(success bool, storageType string)
	Evict(storageType string)
	SetObjectCount(storageType string, n uint64)
}

type nopMetrics struct{}

func (nopMetrics) Put(time.Duration, bool, string) {}
func (nopMetrics) Flush(bool, string)              {}
func (nopMetrics) Evict(string)                    {}
func (nopMetrics) SetObjectCount(string, uint64)   {}
