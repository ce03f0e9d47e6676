package launch

func platformSupports(k Kind) bool {
	switch k {
	case KindSetsid, KindCredential, KindCgroup:
		return false
	}
	return true
}
