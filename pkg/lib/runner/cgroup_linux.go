//go:build linux

package runner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

var cgroupRoot = "/sys/fs/cgroup/prn"

var (
	cgroupInitOnce sync.Once
	cgroupInitErr  error
)

// initCgroups enables the controllers the limits need on the prn subtree.
// The work happens once.
func initCgroups() error {
	cgroupInitOnce.Do(func() {
		cgroupInitErr = enableControllers(cgroupRoot, "cpu", "io", "memory")
	})
	return cgroupInitErr
}

func enableControllers(root string, desired ...string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	available, err := readControllerSet(filepath.Join(root, "cgroup.controllers"))
	if err != nil {
		return err
	}
	enabled, err := readControllerSet(filepath.Join(root, "cgroup.subtree_control"))
	if err != nil {
		return err
	}

	var toAdd []string
	for _, ctrl := range desired {
		if available[ctrl] && !enabled[ctrl] {
			toAdd = append(toAdd, "+"+ctrl)
		}
	}
	if len(toAdd) == 0 {
		return nil
	}
	return writeString(filepath.Join(root, "cgroup.subtree_control"), strings.Join(toAdd, " "))
}

func readControllerSet(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, f := range strings.Fields(string(data)) {
		set[strings.TrimPrefix(f, "+")] = true
	}
	return set, nil
}

// setupCgroup creates the cgroup of process id and writes its limits. It
// returns "" when not running as root, in which case the child is only put
// into its own process group.
func setupCgroup(id string, limits Limits) (string, error) {
	if os.Geteuid() != 0 {
		return "", nil
	}
	if err := initCgroups(); err != nil {
		return "", err
	}

	dir := filepath.Join(cgroupRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	settings := []struct {
		controller, file, value string
		set                     bool
	}{
		{"cpu", "cpu.weight", strconv.Itoa(limits.CPUWeight), limits.CPUWeight > 0},
		{"io", "io.weight", strconv.Itoa(limits.IOWeight), limits.IOWeight > 0},
		{"memory", "memory.high", strconv.FormatInt(limits.MemoryHigh, 10), limits.MemoryHigh > 0},
	}
	enabled, _ := readControllerSet(filepath.Join(cgroupRoot, "cgroup.subtree_control"))
	for _, s := range settings {
		if !s.set || !enabled[s.controller] {
			continue
		}
		if err := writeString(filepath.Join(dir, s.file), s.value); err != nil {
			_ = os.Remove(dir)
			return "", err
		}
	}
	return dir, nil
}

// killCgroup kills every process in the cgroup at once.
func killCgroup(dir string) (bool, error) {
	if dir == "" {
		return false, nil
	}
	if err := writeString(filepath.Join(dir, "cgroup.kill"), "1"); err != nil {
		return false, err
	}
	return true, nil
}

// cleanupCgroup removes the cgroup. The kernel refuses while it still has
// members.
func cleanupCgroup(dir string) error {
	if dir == "" {
		return nil
	}
	return os.Remove(dir)
}

func writeString(path, val string) error {
	return os.WriteFile(path, []byte(val), 0o644)
}
