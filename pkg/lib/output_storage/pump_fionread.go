//go:build linux || darwin || freebsd || netbsd || openbsd

package output_storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// chunkSize asks the kernel how many bytes are queued in the pipe.
func chunkSize(f *os.File) int {
	raw, err := f.SyscallConn()
	if err != nil {
		return minChunk
	}
	queued := 0
	_ = raw.Control(func(fd uintptr) {
		if n, err := unix.IoctlGetInt(int(fd), fionread); err == nil {
			queued = n
		}
	})
	return clampChunk(queued)
}
