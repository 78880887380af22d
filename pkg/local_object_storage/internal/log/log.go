// Package storagelog provides common fields for local storage operation logs.
package storagelog

import (
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "local object storage operation"

// Write writes debug message about the operation of a local storage
// component to logger.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// AddressField returns logger's field for object address.
func AddressField(addr oid.Address) zap.Field {
	return zap.Stringer("address", addr)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// StorageTypeField returns logger's field for storage type.
func StorageTypeField(typ string) zap.Field {
	return zap.String("type", typ)
}

// StorageIDField returns logger's field for the locator of the object in
// the blob storage.
func StorageIDField(id []byte) zap.Field {
	if id == nil {
		return zap.Skip()
	}

	return zap.String("storage ID", string(id))
}
