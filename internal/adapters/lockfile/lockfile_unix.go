//go:build unix

package lockfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// tryLock takes an exclusive lock, failing immediately if it is held
func tryLock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// unlock releases the lock on the file
func unlock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}
