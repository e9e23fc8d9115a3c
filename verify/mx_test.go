package verify

import (
	"errors"
	"testing"
)

func TestHasMX(t *testing.T) {
	calls := 0
	checker := NewMXCheckerWithLookup(func(domain string) (int, error) {
		calls++
		switch domain {
		case "good.com":
			return 2, nil
		case "dead.com":
			return 0, nil
		default:
			return 0, errors.New("servfail")
		}
	}, nil)

	if !checker.HasMX("good.com") {
		t.Error("expected good.com to have MX")
	}
	if checker.HasMX("dead.com") {
		t.Error("expected dead.com to have no MX")
	}
	// Resolver errors must not reject the domain.
	if !checker.HasMX("flaky.com") {
		t.Error("expected lookup failure to count as deliverable")
	}
	if checker.HasMX("") {
		t.Error("expected empty domain to be rejected")
	}

	// Second query for a cached domain must not hit the resolver again.
	before := calls
	checker.HasMX("good.com")
	checker.HasMX("GOOD.com")
	if calls != before {
		t.Errorf("cached lookups hit resolver %d extra times", calls-before)
	}
}
