package cmdline

import (
	"golang.org/x/sys/unix"
)

func args(pid int) ([]string, error) {
	// EINVAL here means no such process (or a zombie), EPERM a process of
	// another user.
	data, err := unix.SysctlRaw("kern.procargs2", pid)
	if err != nil {
		return nil, queryError(pid, err)
	}
	argv, err := parseProcArgs2(data)
	if err != nil {
		return nil, parseError(pid, "kern.procargs2: %v", err)
	}
	return argv, nil
}

func handleArgs(handle uintptr) ([]string, error) {
	return Args(int(handle))
}

func processArgs(p Process) ([]string, error) {
	return Args(p.Pid())
}
