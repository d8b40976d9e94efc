package reminder

import "fmt"

const (
	// ScanWindowDays bounds the candidate scan to [today, today+ScanWindowDays].
	ScanWindowDays = 30
	// MaxLeadDays is the largest accepted lead time. It must not exceed ScanWindowDays,
	// otherwise subscriptions with longer lead times are never scanned on their reminder day.
	MaxLeadDays = ScanWindowDays
)

// Policy decides on which days a subscription is due for a reminder.
type Policy string

const (
	// PolicyExact reminds only when days-until-renewal equals the lead time.
	// A day without a run loses that cycle's reminder.
	PolicyExact Policy = "exact"
	// PolicyCatchUp reminds on any day within the lead time that has not been
	// notified yet for the same renewal date. Requires a MarkerStore.
	PolicyCatchUp Policy = "catch_up"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyExact:
		return PolicyExact, nil
	case PolicyCatchUp:
		return PolicyCatchUp, nil
	default:
		return "", fmt.Errorf("unknown reminder policy %q", s)
	}
}

// IsDue reports whether a subscription renewing in daysUntil days with the given
// lead time falls on a reminder day. Markers are not consulted here.
func (p Policy) IsDue(daysUntil, leadDays int) bool {
	if daysUntil < 0 {
		return false
	}
	if p == PolicyCatchUp {
		return daysUntil <= leadDays
	}
	return daysUntil == leadDays
}

// UsesMarkers reports whether the policy needs "already notified" bookkeeping.
func (p Policy) UsesMarkers() bool {
	return p == PolicyCatchUp
}
