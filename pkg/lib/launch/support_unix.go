//go:build unix && !linux

package launch

func platformSupports(k Kind) bool {
	switch k {
	case KindHideWindow, KindCgroup:
		return false
	}
	return true
}
