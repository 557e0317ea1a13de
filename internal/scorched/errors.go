package scorched

import "errors"

// Class groups violations by the check that raises them.
type Class string

const (
	ClassShape        Class = "shape"
	ClassDestination  Class = "destination"
	ClassPhase        Class = "phase"
	ClassParameters   Class = "parameters"
	ClassConservation Class = "conservation"
)

// Violation is a rejected transition. Reason strings are part of the
// external contract and are matched verbatim by callers.
type Violation struct {
	Class  Class
	Reason string
}

func (v *Violation) Error() string {
	return "ScorchedEarth: " + v.Reason
}

var (
	ErrOnlyOneAsset     = &Violation{Class: ClassShape, Reason: "Only one asset allowed"}
	ErrAllocationLength = &Violation{Class: ClassShape, Reason: "Allocation length must be 3 (Suggester, Sender, Burner)"}

	ErrUserDestination      = &Violation{Class: ClassDestination, Reason: "Destination for User may not change"}
	ErrBurnerDestination    = &Violation{Class: ClassDestination, Reason: "Destination for Burner may not change"}
	ErrSuggesterDestination = &Violation{Class: ClassDestination, Reason: "Destination for Suggester may not change"}

	ErrPhaseToggle         = &Violation{Class: ClassPhase, Reason: "Phase must toggle"}
	ErrSuggestHasReaction  = &Violation{Class: ClassPhase, Reason: "Suggest Phase must not have Reaction"}
	ErrSuggestNoSuggestion = &Violation{Class: ClassPhase, Reason: "Suggest Phase must have suggestion"}
	ErrReactNoReaction     = &Violation{Class: ClassPhase, Reason: "React Phase must have Reaction"}
	ErrReactHasSuggestion  = &Violation{Class: ClassPhase, Reason: "React Phase must not have suggestion"}

	ErrCoreParams = &Violation{Class: ClassParameters, Reason: "Core parameters must not change"}

	ErrSuggestMustBurn = &Violation{Class: ClassConservation, Reason: "Suggest Phase must burn funds"}
	ErrRewardMustPay   = &Violation{Class: ClassConservation, Reason: "Reward Reaction must pay"}
	ErrPunishMustBurn  = &Violation{Class: ClassConservation, Reason: "Punish Reaction must burn"}
)

// Violations lists every violation in evaluation order.
func Violations() []*Violation {
	return []*Violation{
		ErrOnlyOneAsset,
		ErrAllocationLength,
		ErrUserDestination,
		ErrBurnerDestination,
		ErrSuggesterDestination,
		ErrPhaseToggle,
		ErrSuggestHasReaction,
		ErrSuggestNoSuggestion,
		ErrReactNoReaction,
		ErrReactHasSuggestion,
		ErrCoreParams,
		ErrSuggestMustBurn,
		ErrRewardMustPay,
		ErrPunishMustBurn,
	}
}

// AsViolation unwraps err into a rule violation, if it is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// ReasonOf returns the canonical reason for a violation, or the error text
// for anything else. A nil error has no reason.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	if v, ok := AsViolation(err); ok {
		return v.Reason
	}
	return err.Error()
}
