package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/compression"
	storagelog "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/internal/log"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"go.uber.org/zap"
)

// FSTree represents an object storage as a filesystem tree.
type FSTree struct {
	Info

	*compression.Config
	Depth      uint64
	DirNameLen int

	noSync   bool
	readOnly bool

	log *zap.Logger

	writer writer
}

// Info groups the information about file storage.
type Info struct {
	// Permission bits of the root directory.
	Permissions fs.FileMode

	// Full path to the root directory.
	RootPath string
}

// writer is an internal FS writing interface.
type writer interface {
	writeData(p string, data []byte) error
	finalize() error
}

const (
	// DirNameLen is how many characters are used to group keys into directories.
	DirNameLen = 1
	// MaxDepth is maximum depth of nested directories.
	MaxDepth = 43 / DirNameLen

	// tmpMarker is a part of temporary file names.
	tmpMarker = "#"
)

var _ common.Storage = (*FSTree)(nil)

// New returns FSTree with the given options applied.
func New(opts ...Option) *FSTree {
	f := &FSTree{
		Info: Info{
			Permissions: 0700,
			RootPath:    "./",
		},
		Config:     nil,
		Depth:      4,
		DirNameLen: DirNameLen,
		log:        zap.L(),
	}
	for i := range opts {
		opts[i](f)
	}
	f.writer = newGenericWriter(f.Permissions, f.noSync)

	return f
}

func stringifyAddress(addr oid.Address) string {
	return addr.Object().EncodeToString() + "." + addr.Container().EncodeToString()
}

func addressFromString(s string) (oid.Address, error) {
	obj, cnr, found := strings.Cut(s, ".")
	if !found {
		return oid.Address{}, errors.New("invalid address")
	}

	var addr oid.Address
	if err := addr.DecodeString(cnr + "/" + obj); err != nil {
		return oid.Address{}, err
	}

	return addr, nil
}

// Iterate iterates over all stored objects.
func (t *FSTree) Iterate(prm common.IteratePrm) (common.IterateRes, error) {
	err := t.iterate(0, []string{t.RootPath}, prm)
	if errors.Is(err, common.ErrStop) {
		err = nil
	}

	return common.IterateRes{}, err
}

func (t *FSTree) iterate(depth uint64, curPath []string, prm common.IteratePrm) error {
	curName := strings.Join(curPath[1:], "")
	dir := filepath.Join(curPath...)

	des, err := os.ReadDir(dir)
	if err != nil {
		if prm.IgnoreErrors {
			return nil
		}

		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	isLast := depth >= t.Depth
	l := len(curPath)
	curPath = append(curPath, "")

	for i := range des {
		curPath[l] = des[i].Name()

		if !isLast && des[i].IsDir() {
			err := t.iterate(depth+1, curPath, prm)
			if err != nil {
				// Must be error from handler in case errors are ignored.
				// Need to report.
				return err
			}
		}

		if depth != t.Depth || strings.Contains(des[i].Name(), tmpMarker) {
			continue
		}

		addr, err := addressFromString(curName + des[i].Name())
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(curPath...))
		if err != nil && errors.Is(err, fs.ErrNotExist) {
			// removed concurrently
			continue
		}

		if err == nil {
			data, err = t.Decompress(data)
		}

		if err != nil {
			if prm.IgnoreErrors {
				if prm.ErrorHandler != nil {
					if err := prm.ErrorHandler(addr, err); err != nil {
						return err
					}
				}

				continue
			}

			return fmt.Errorf("read object %s: %w", addr, err)
		}

		err = prm.Handler(common.IterationElement{
			Address:    addr,
			ObjectData: data,
			StorageID:  []byte{},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *FSTree) treePath(addr oid.Address) string {
	sAddr := stringifyAddress(addr)

	dirs := make([]string, 0, t.Depth+1+1) // 1 for root, 1 for file
	dirs = append(dirs, t.RootPath)

	for i := 0; uint64(i) < t.Depth; i++ {
		dirs = append(dirs, sAddr[:t.DirNameLen])
		sAddr = sAddr[t.DirNameLen:]
	}

	dirs = append(dirs, sAddr)

	return filepath.Join(dirs...)
}

// Delete removes the object with the specified address from the storage.
func (t *FSTree) Delete(prm common.DeletePrm) (common.DeleteRes, error) {
	if t.readOnly {
		return common.DeleteRes{}, common.ErrReadOnly
	}

	p := t.treePath(prm.Address)

	err := os.Remove(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.DeleteRes{}, logicerr.Wrap(apistatus.ErrObjectNotFound)
		}

		return common.DeleteRes{}, fmt.Errorf("remove file %q: %w", p, err)
	}

	storagelog.Write(t.log,
		storagelog.AddressField(prm.Address),
		storagelog.OpField("DELETE"),
		storagelog.StorageTypeField(Type),
	)

	return common.DeleteRes{}, nil
}

// Exists returns the path to the file with object contents if it exists in the storage
// and an error otherwise.
func (t *FSTree) Exists(prm common.ExistsPrm) (common.ExistsRes, error) {
	p := t.treePath(prm.Address)

	_, err := os.Stat(p)
	found := err == nil
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}

	return common.ExistsRes{Exists: found}, err
}

// Put puts an object in the storage. Resulting storage ID is empty:
// the object path is fully defined by its address.
func (t *FSTree) Put(prm common.PutPrm) (common.PutRes, error) {
	if t.readOnly {
		return common.PutRes{}, common.ErrReadOnly
	}

	p := t.treePath(prm.Address)

	if err := util.MkdirAllX(filepath.Dir(p), t.Permissions); err != nil {
		if errors.Is(err, syscall.ENOSPC) {
			return common.PutRes{}, common.ErrNoSpace
		}

		return common.PutRes{}, fmt.Errorf("mkdir all for %q: %w", p, err)
	}

	data := prm.RawData
	if data == nil {
		data = prm.Object.Marshal()
	}

	if !prm.DontCompress {
		data = t.Compress(data)
	}

	err := t.writer.writeData(p, data)
	if err != nil {
		return common.PutRes{}, err
	}

	storagelog.Write(t.log,
		storagelog.AddressField(prm.Address),
		storagelog.OpField("PUT"),
		storagelog.StorageTypeField(Type),
	)

	return common.PutRes{StorageID: []byte{}}, nil
}

// Get returns an object from the storage by address.
func (t *FSTree) Get(prm common.GetPrm) (common.GetRes, error) {
	data, err := t.getObjBytes(prm.Address)
	if err != nil {
		return common.GetRes{}, err
	}

	if prm.Raw {
		return common.GetRes{RawData: data}, nil
	}

	obj := object.New()
	if err := obj.Unmarshal(data); err != nil {
		return common.GetRes{}, fmt.Errorf("decode object: %w", err)
	}

	return common.GetRes{Object: obj, RawData: data}, nil
}

func (t *FSTree) getObjBytes(addr oid.Address) ([]byte, error) {
	p := t.treePath(addr)

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, logicerr.Wrap(apistatus.ErrObjectNotFound)
		}

		return nil, fmt.Errorf("read file %q: %w", p, err)
	}

	data, err = t.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress file data %q: %w", p, err)
	}

	return data, nil
}

// GetRange implements common.Storage.
func (t *FSTree) GetRange(prm common.GetRangePrm) (common.GetRangeRes, error) {
	res, err := t.Get(common.GetPrm{Address: prm.Address})
	if err != nil {
		return common.GetRangeRes{}, err
	}

	payload := res.Object.Payload()
	from := prm.Offset
	to := from + prm.Length

	if pLen := uint64(len(payload)); to < from || pLen < from || pLen < to {
		return common.GetRangeRes{}, logicerr.Wrap(apistatus.ErrObjectOutOfRange)
	}

	return common.GetRangeRes{
		Data: payload[from:to],
	}, nil
}

// NumberOfObjects walks the file tree rooted at FSTree's root
// and returns number of stored objects.
func (t *FSTree) NumberOfObjects() (uint64, error) {
	var counter uint64

	// it is simpler to just consider every file
	// that is not directory as an object
	err := filepath.WalkDir(t.RootPath,
		func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && !strings.Contains(d.Name(), tmpMarker) {
				counter++
			}

			return nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("could not walk through %s directory: %w", t.RootPath, err)
	}

	return counter, nil
}

// Type is fstree storage type used in logs and configuration.
const Type = "fstree"

// Type implements common.Storage.
func (*FSTree) Type() string {
	return Type
}

// Path implements common.Storage.
func (t *FSTree) Path() string {
	return t.RootPath
}

// SetCompressor implements common.Storage.
func (t *FSTree) SetCompressor(cc *compression.Config) {
	t.Config = cc
}

// SetLogger implements common.Storage.
func (t *FSTree) SetLogger(l *zap.Logger) {
	t.log = l
}
