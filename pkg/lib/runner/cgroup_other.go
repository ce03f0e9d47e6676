//go:build !linux

package runner

func setupCgroup(string, Limits) (string, error) { return "", nil }

func killCgroup(string) (bool, error) { return false, nil }

func cleanupCgroup(string) error { return nil }
