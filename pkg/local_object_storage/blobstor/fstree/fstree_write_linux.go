//go:build linux

package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	"golang.org/x/sys/unix"
)

// linuxWriter writes data into an unnamed temporary file (O_TMPFILE) and
// links it to the final path once everything has been written.
type linuxWriter struct {
	root  string
	perm  uint32
	flags int
}

func newSpecificWriter(root string, perm fs.FileMode, noSync bool) writer {
	flags := unix.O_WRONLY | unix.O_TMPFILE | unix.O_CLOEXEC
	if !noSync {
		flags |= unix.O_DSYNC
	}

	fd, err := unix.Open(root, flags, uint32(perm))
	if err != nil {
		// O_TMPFILE is not supported by the file system
		return nil
	}
	_ = unix.Close(fd)

	return &linuxWriter{
		root:  root,
		perm:  uint32(perm),
		flags: flags,
	}
}

func (w *linuxWriter) finalize() error {
	return nil
}

func (w *linuxWriter) writeData(p string, data []byte) error {
	err := w.writeFile(p, data)
	if err != nil {
		if errors.Is(err, unix.ENOSPC) {
			return common.ErrNoSpace
		}

		return err
	}

	return nil
}

func (w *linuxWriter) writeFile(p string, data []byte) error {
	fd, err := unix.Open(w.root, w.flags, w.perm)
	if err != nil {
		return fmt.Errorf("unix open: %w", err)
	}

	tmpPath := "/proc/self/fd/" + strconv.FormatUint(uint64(fd), 10)

	n, err := unix.Write(fd, data)
	if err == nil {
		if n == len(data) {
			err = unix.Linkat(unix.AT_FDCWD, tmpPath, unix.AT_FDCWD, p, unix.AT_SYMLINK_FOLLOW)
			if errors.Is(err, unix.EEXIST) {
				// the same object has already been written
				err = nil
			}
		} else {
			err = errors.New("incomplete unix write")
		}
	}

	errClose := unix.Close(fd)
	if err != nil {
		return fmt.Errorf("unix write: %w", err) // Close() error is ignored, we have a better one.
	}

	if errClose != nil {
		return fmt.Errorf("unix close: %w", errClose)
	}

	return nil
}
