package output_storage

import (
	"errors"
	"io"
	"os"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

const (
	minChunk = 512
	maxChunk = 64 << 10
)

// Pump reads r until EOF and appends every read to s, then closes both.
// Each read lands in a fresh buffer sized to what the pipe holds, so chunks
// are stored without copying.
func Pump(r *os.File, s *Storage) error {
	defer s.Close()
	defer r.Close()

	for {
		buf := make([]byte, chunkSize(r))
		n, err := r.Read(buf)
		if n > 0 {
			s.Append(buf[:n:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			lib.Logger().Warn("output pipe read failed", "pipe", r.Name(), "err", err)
			return err
		}
	}
}

func clampChunk(n int) int {
	return min(max(n, minChunk), maxChunk)
}
