package cmdline

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

var procRoot = "/proc"

func args(pid int) ([]string, error) {
	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	if _, err := os.Stat(dir); err != nil {
		return nil, queryError(pid, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil {
		return nil, queryError(pid, err)
	}
	if len(data) == 0 {
		// Zombies and kernel threads both have an empty cmdline. Only the
		// latter is a live process with no arguments.
		state, err := procState(dir)
		if err != nil {
			return nil, queryError(pid, err)
		}
		if state == 'Z' || state == 'X' {
			return nil, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound, Err: fmt.Errorf("process state %c", state)}
		}
		return []string{}, nil
	}
	return splitNul(data), nil
}

// procState returns the state letter from /proc/<pid>/stat. The command name
// field may contain spaces and parentheses, so the state is taken after the
// last ')'.
func procState(dir string) (byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return 0, err
	}
	i := bytes.LastIndexByte(data, ')')
	if i < 0 || i+2 >= len(data) {
		return 0, fmt.Errorf("malformed stat")
	}
	return data[i+2], nil
}

func handleArgs(handle uintptr) ([]string, error) {
	pid, err := pidfdPid(int(handle))
	if err != nil {
		return nil, err
	}
	return Args(pid)
}

// pidfdPid reads the pid behind a pidfd from /proc/self/fdinfo. The kernel
// reports -1 there once the process has been reaped.
func pidfdPid(fd int) (int, error) {
	f, err := os.Open(filepath.Join(procRoot, "self", "fdinfo", strconv.Itoa(fd)))
	if err != nil {
		return 0, queryError(-1, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "Pid:")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, parseError(-1, "fd %d: pid %q: %v", fd, value, err)
		}
		if pid <= 0 {
			return 0, &lib.QueryError{Pid: pid, Kind: lib.ErrNotFound, Err: fmt.Errorf("fd %d: process exited", fd)}
		}
		return pid, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, queryError(-1, err)
	}
	return 0, parseError(-1, "fd %d is not a pidfd", fd)
}

func processArgs(p Process) ([]string, error) {
	return Args(p.Pid())
}
