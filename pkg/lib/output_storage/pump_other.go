//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package output_storage

import "os"

func chunkSize(*os.File) int { return 4 << 10 }
