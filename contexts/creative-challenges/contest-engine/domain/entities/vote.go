package entities

import "time"

// UnknownIP is the shared rate-limit bucket for callers without a usable address.
const UnknownIP = "unknown"

type Vote struct {
	VoteID       string
	ContestID    string
	SubmissionID string
	UserID       string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
}

// RateLimitPolicy caps votes from one IP address inside a rolling window.
type RateLimitPolicy struct {
	Limit  int
	Window time.Duration
}

func DefaultRateLimitPolicy() RateLimitPolicy {
	return RateLimitPolicy{Limit: 10, Window: time.Minute}
}

// Normalize fills zero fields with defaults.
func (p RateLimitPolicy) Normalize() RateLimitPolicy {
	defaults := DefaultRateLimitPolicy()
	if p.Limit <= 0 {
		p.Limit = defaults.Limit
	}
	if p.Window <= 0 {
		p.Window = defaults.Window
	}
	return p
}

// WindowStart is the earliest vote time still counted against the limit at now.
func (p RateLimitPolicy) WindowStart(now time.Time) time.Time {
	return now.Add(-p.Normalize().Window)
}
