package wizard

import "fmt"

// Policy decides whether step validity gates progression.
type Policy string

const (
	// PolicyAdvisory reports every step as valid; field errors are shown but never block.
	PolicyAdvisory Policy = "advisory"
	// PolicyStrict reports the computed validity and blocks Next and Submit on invalid steps.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAdvisory:
		return PolicyAdvisory, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown validation policy %q", s)
	}
}

// Validity maps a step's computed validity onto the flag it reports.
func (p Policy) Validity(computed bool) bool {
	if p == PolicyStrict {
		return computed
	}
	return true
}

// Gates reports whether recorded validity can block navigation.
func (p Policy) Gates() bool {
	return p == PolicyStrict
}
