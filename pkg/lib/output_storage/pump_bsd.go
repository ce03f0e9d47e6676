//go:build darwin || freebsd || netbsd || openbsd

package output_storage

import "golang.org/x/sys/unix"

const fionread = unix.FIONREAD
