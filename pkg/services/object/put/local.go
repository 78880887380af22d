package putsvc

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
)

// ObjectStorage is an object storage interface.
type ObjectStorage interface {
	// Put must save passed object and return any appeared error.
	// Tombstones must inhume their members.
	//
	// Optional objBin parameter carries object in a binary form.
	Put(obj *object.Object, objBin []byte) error
}

type localTarget struct {
	storage ObjectStorage
}

func (t *localTarget) WriteObject(obj *object.Object, _ object.ContentMeta) error {
	if err := t.storage.Put(obj, nil); err != nil {
		return fmt.Errorf("could not put object to local storage: %w", err)
	}

	return nil
}
