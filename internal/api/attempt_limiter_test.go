package api

import (
	"testing"
	"time"
)

func TestLoginAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter()
	email := "maria@clinic.example"
	now := time.Now().UTC()

	limiter.addFailure(email, now.Add(-2*loginAttemptWindow), loginAttemptWindow)
	if limiter.tooManyRecent(email, now, 1, loginAttemptWindow) {
		t.Fatal("expected stale failure to be pruned from active window")
	}

	limiter.addFailure(email, now.Add(-loginAttemptWindow/2), loginAttemptWindow)
	if !limiter.tooManyRecent(email, now, 1, loginAttemptWindow) {
		t.Fatal("expected one recent failure to hit limit 1")
	}

	limiter.reset(email)
	if limiter.tooManyRecent(email, now, 1, loginAttemptWindow) {
		t.Fatal("expected no failures after reset")
	}
}

func TestLoginAttemptLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter()
	now := time.Now().UTC()

	for attempt := 0; attempt < loginAttemptLimit; attempt++ {
		limiter.addFailure("maria@clinic.example", now, loginAttemptWindow)
	}
	if !limiter.tooManyRecent("maria@clinic.example", now, loginAttemptLimit, loginAttemptWindow) {
		t.Fatal("expected the hammered account to be throttled")
	}
	if limiter.tooManyRecent("ana@clinic.example", now, loginAttemptLimit, loginAttemptWindow) {
		t.Fatal("failures on one account must not throttle another")
	}
}
