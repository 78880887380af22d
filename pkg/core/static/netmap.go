package static

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
)

// DefaultNetmapCacheSize is a default number of network maps kept by
// NetmapSource for past epochs.
const DefaultNetmapCacheSize = 10

// NetmapSource is a netmap.Source reading the current network map from
// YAML file. Network maps of the previously loaded epochs are kept in LRU
// cache.
type NetmapSource struct {
	path string

	mtx     sync.RWMutex
	current *netmap.NetMap
	past    *simplelru.LRU[uint64, *netmap.NetMap]
}

// NewNetmapSource reads network map from the YAML file by path.
//
// Non-positive cacheSize is replaced with DefaultNetmapCacheSize.
func NewNetmapSource(path string, cacheSize int) (*NetmapSource, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultNetmapCacheSize
	}

	past, err := simplelru.NewLRU[uint64, *netmap.NetMap](cacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("can't create netmap cache: %w", err)
	}

	s := &NetmapSource{
		path: path,
		past: past,
	}

	if _, err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload re-reads network map file. Returns true if the epoch has changed.
// The file must not declare an epoch older than the current one.
func (s *NetmapSource) Reload() (bool, error) {
	nm, err := readNetmap(s.path)
	if err != nil {
		return false, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.current != nil && nm.Epoch() < s.current.Epoch() {
		return false, fmt.Errorf("epoch %d from %s is older than current %d",
			nm.Epoch(), s.path, s.current.Epoch())
	}

	changed := s.current == nil || nm.Epoch() != s.current.Epoch()

	s.current = nm
	s.past.Add(nm.Epoch(), nm)

	return changed, nil
}

// GetNetMap implements netmap.Source.
func (s *NetmapSource) GetNetMap(diff uint64) (*netmap.NetMap, error) {
	s.mtx.RLock()
	cur := s.current.Epoch()
	s.mtx.RUnlock()

	if diff > cur {
		return nil, netmap.ErrNotFound
	}

	return s.GetNetMapByEpoch(cur - diff)
}

// GetNetMapByEpoch implements netmap.Source.
//
// Lookups do not affect eviction order: the cache always holds the latest
// loaded epochs.
func (s *NetmapSource) GetNetMapByEpoch(epoch uint64) (*netmap.NetMap, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.current.Epoch() == epoch {
		return s.current, nil
	}

	if nm, ok := s.past.Peek(epoch); ok {
		return nm, nil
	}

	return nil, netmap.ErrNotFound
}

// Epoch implements netmap.Source.
func (s *NetmapSource) Epoch() (uint64, error) {
	return s.CurrentEpoch(), nil
}

// CurrentEpoch implements netmap.State.
func (s *NetmapSource) CurrentEpoch() uint64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.current.Epoch()
}

func readNetmap(path string) (*netmap.NetMap, error) {
	var f netmapFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}

	nodes := make(netmap.Nodes, 0, len(f.Nodes))
	for i := range f.Nodes {
		n, err := f.Nodes[i].toNode()
		if err != nil {
			return nil, fmt.Errorf("node #%d: %w", i, err)
		}

		nodes = append(nodes, n)
	}

	return netmap.NewNetMap(f.Epoch, nodes), nil
}
