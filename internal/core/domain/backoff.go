package domain

import "time"

// MaxAttempts is the total number of delivery attempts before an event is
// terminally failed. Fixed by contract with client integrations.
const MaxAttempts = 6

// retrySchedule maps attempts already made (1-indexed) to the delay before
// the next attempt. The values are documented client expectations and must
// not be derived or tuned.
var retrySchedule = [...]time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
	4 * time.Hour,
}

// RetryDelay returns the delay before the next delivery attempt after
// `attempts` failed attempts. ok is false when no further attempt is
// scheduled (the schedule is exhausted).
func RetryDelay(attempts int) (delay time.Duration, ok bool) {
	if attempts < 1 || attempts > len(retrySchedule) {
		return 0, false
	}
	return retrySchedule[attempts-1], true
}
