package cmdline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// splitNul splits back to back NUL terminated strings. The final
// terminator is optional; empty strings in between are kept.
func splitNul(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}
	s := string(data)
	s = strings.TrimSuffix(s, "\x00")
	return strings.Split(s, "\x00")
}

var (
	errShortRecord = errors.New("record shorter than its argument count")
	errBadArgc     = errors.New("invalid argument count")
	errNoExecPath  = errors.New("missing executable path")
)

// parseProcArgs2 decodes a kern.procargs2 record: a native int32 argc, the
// NUL terminated executable path, NUL padding, then argc NUL terminated
// arguments followed by the environment, which is ignored.
func parseProcArgs2(data []byte) ([]string, error) {
	if len(data) < 4 {
		return nil, errShortRecord
	}
	argc := int(int32(binary.NativeEndian.Uint32(data)))
	rest := data[4:]
	if argc < 0 || argc > len(rest) {
		return nil, errBadArgc
	}
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return nil, errNoExecPath
	}
	rest = rest[end:]
	for len(rest) > 0 && rest[0] == 0 {
		rest = rest[1:]
	}
	args := make([]string, 0, argc)
	for len(args) < argc {
		end := bytes.IndexByte(rest, 0)
		if end < 0 {
			return nil, errShortRecord
		}
		args = append(args, string(rest[:end]))
		rest = rest[end+1:]
	}
	return args, nil
}
