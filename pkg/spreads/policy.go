package spreads

import "fmt"

// PartialFailurePolicy decides what a StagePartialFailure does to the run.
type PartialFailurePolicy int

const (
	// ContinueOnPartialFailure logs the failed pages and moves on to the
	// next stage. Successfully written pages are kept.
	ContinueOnPartialFailure PartialFailurePolicy = iota

	// AbortOnPartialFailure stops the run after the stage, returning
	// ErrStageFailed.
	AbortOnPartialFailure
)

func (p PartialFailurePolicy) String() string {
	switch p {
	case ContinueOnPartialFailure:
		return "continue"
	case AbortOnPartialFailure:
		return "abort"
	default:
		return fmt.Sprintf("PartialFailurePolicy(%d)", int(p))
	}
}

// ParsePartialFailurePolicy accepts "continue" and "abort".
func ParsePartialFailurePolicy(s string) (PartialFailurePolicy, error) {
	switch s {
	case "", "continue":
		return ContinueOnPartialFailure, nil
	case "abort":
		return AbortOnPartialFailure, nil
	default:
		return 0, fmt.Errorf("%w: partial failure policy %q (want continue or abort)", ErrConfiguration, s)
	}
}
