package launch

func platformSupports(k Kind) bool {
	return k != KindHideWindow
}
