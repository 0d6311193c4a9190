package system

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// WriteFile writes data to path atomically using SharedReadWriteMask
// as permissions, creating parent directories as needed
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), defaults.SharedDirMask); err != nil {
		return trace.ConvertSystemError(err)
	}
	return WriteFileWithPerms(path, data, defaults.SharedReadWriteMask)
}

// WriteFileWithPerms writes data to a temporary file next to path and renames
// it into place. If the write fails, an existing file at path is preserved.
func WriteFileWithPerms(path string, data []byte, perm os.FileMode) error {
	tmp, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path))
	if err != nil {
		return trace.ConvertSystemError(err)
	}

	cleanup := func() {
		err := os.Remove(tmp.Name())
		if err != nil {
			log.Warnf("Failed to remove %v: %v.", tmp.Name(), err)
		}
	}

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return trace.ConvertSystemError(err)
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return trace.ConvertSystemError(err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		cleanup()
		return trace.ConvertSystemError(err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return trace.ConvertSystemError(err)
	}
	return nil
}

// EnsureDir creates dir and its parents with SharedDirMask
func EnsureDir(dir string) error {
	return trace.ConvertSystemError(os.MkdirAll(dir, defaults.SharedDirMask))
}
