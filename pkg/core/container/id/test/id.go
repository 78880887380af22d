package cidtest

import (
	"crypto/rand"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
)

// ID returns random cid.ID.
func ID() cid.ID {
	var id cid.ID

	_, _ = rand.Read(id[:])

	return id
}
