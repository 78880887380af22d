package static

import (
	"fmt"
	"sync"

	"github.com/kestrelfs/kestrel-node/pkg/core/container"
	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
)

// ContainerSource is a container.Source reading container list from YAML
// file. Container identifiers are calculated from the container binary form.
type ContainerSource struct {
	path string

	mtx  sync.RWMutex
	cnrs map[cid.ID]container.Container
}

// NewContainerSource reads containers from the YAML file by path.
func NewContainerSource(path string) (*ContainerSource, error) {
	s := &ContainerSource{path: path}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Reload re-reads container file. The list is replaced only if the whole
// file is valid.
func (s *ContainerSource) Reload() error {
	var f containersFile
	if err := readYAML(s.path, &f); err != nil {
		return err
	}

	cnrs := make(map[cid.ID]container.Container, len(f.Containers))
	for i := range f.Containers {
		c, err := f.Containers[i].toContainer()
		if err != nil {
			return fmt.Errorf("container #%d: %w", i, err)
		}

		cnrs[container.CalculateID(c)] = c
	}

	s.mtx.Lock()
	s.cnrs = cnrs
	s.mtx.Unlock()

	return nil
}

// Get implements container.Source.
func (s *ContainerSource) Get(id cid.ID) (*container.Container, error) {
	s.mtx.RLock()
	c, ok := s.cnrs[id]
	s.mtx.RUnlock()

	if !ok {
		return nil, container.ErrNotFound
	}

	return &c, nil
}

// List returns identifiers of all known containers.
func (s *ContainerSource) List() []cid.ID {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]cid.ID, 0, len(s.cnrs))
	for id := range s.cnrs {
		res = append(res, id)
	}

	return res
}
