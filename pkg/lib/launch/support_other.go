//go:build !unix && !windows

package launch

// No launch strategy exists for this target.
func platformSupports(Kind) bool { return false }
