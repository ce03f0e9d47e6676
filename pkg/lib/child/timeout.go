package child

import "time"

// waitMillis converts the time left before a deadline into a millisecond
// timeout for poll(2) or WaitForSingleObject. It rounds up so that a wait
// never ends before the deadline, and caps at limit so that very long
// durations do not overflow; callers loop while the cap was hit.
func waitMillis(remaining time.Duration, limit int64) (ms int64, capped bool) {
	if remaining <= 0 {
		return 0, false
	}
	if remaining > time.Duration(limit)*time.Millisecond {
		return limit, true
	}
	return int64((remaining + time.Millisecond - 1) / time.Millisecond), false
}
