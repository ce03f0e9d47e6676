//go:build linux || darwin || freebsd || netbsd || openbsd

package output_storage

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSize_FollowsQueuedBytes(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	assert.Equal(t, minChunk, chunkSize(r), "empty pipe")

	_, err = w.Write(bytes.Repeat([]byte{'x'}, 3000))
	require.NoError(t, err)
	assert.Equal(t, 3000, chunkSize(r))

	_, err = w.Write(bytes.Repeat([]byte{'y'}, 1000))
	require.NoError(t, err)
	assert.Equal(t, 4000, chunkSize(r))
}
