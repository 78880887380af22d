package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"syscall"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
)

type genericWriter struct {
	perm  fs.FileMode
	flags int
}

func newGenericWriter(perm fs.FileMode, noSync bool) writer {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC | os.O_EXCL
	if !noSync {
		flags |= os.O_SYNC
	}

	return &genericWriter{
		perm:  perm,
		flags: flags,
	}
}

func (w *genericWriter) finalize() error {
	return nil
}

// writeData writes data to a temporary file and renames it to p. Concurrent
// writes of the same object use different temporary names: if the first
// one is busy, the next one is tried.
func (w *genericWriter) writeData(p string, data []byte) error {
	const retryCount = 5

	for i := 0; i < retryCount; i++ {
		tmpPath := p + tmpMarker + strconv.FormatUint(uint64(i), 10)
		err := w.writeAndRename(tmpPath, p, data)
		if !errors.Is(err, syscall.EEXIST) || i == retryCount-1 {
			return err
		}
	}

	return fmt.Errorf("couldn't write file after %d retries", retryCount)
}

// writeAndRename opens tmpPath exclusively, writes data to it and renames it to p.
func (w *genericWriter) writeAndRename(tmpPath, p string, data []byte) error {
	err := w.writeFile(tmpPath, data)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			switch {
			case errors.Is(pe.Err, syscall.ENOSPC):
				_ = os.RemoveAll(tmpPath)
				return common.ErrNoSpace
			case errors.Is(pe.Err, syscall.EEXIST):
				return syscall.EEXIST
			}
		}

		_ = os.RemoveAll(tmpPath)

		return fmt.Errorf("write data into file %q: %w", tmpPath, err)
	}

	err = os.Rename(tmpPath, p)
	if err != nil {
		_ = os.RemoveAll(tmpPath)
		return fmt.Errorf("rename file %q->%q: %w", tmpPath, p, err)
	}

	return nil
}

// writeFile writes data to a file with path p.
// The code is copied from `os.WriteFile` with minor corrections for flags.
func (w *genericWriter) writeFile(p string, data []byte) error {
	f, err := os.OpenFile(p, w.flags, w.perm)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
