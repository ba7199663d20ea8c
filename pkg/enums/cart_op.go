package enums

// CartOp labels a cart mutation.
type CartOp string

const (
	CartOpAdd       CartOp = "add"
	CartOpIncrement CartOp = "increment"
	CartOpDecrement CartOp = "decrement"
	CartOpRemove    CartOp = "remove"
	CartOpClear     CartOp = "clear"
	CartOpSync      CartOp = "sync"
	CartOpSettle    CartOp = "settle"
)

// MutationOutcome records whether a mutation changed state.
type MutationOutcome string

const (
	MutationApplied MutationOutcome = "applied"
	MutationNoop    MutationOutcome = "noop"
)

// OutcomeOf maps a changed flag to its outcome label.
func OutcomeOf(changed bool) MutationOutcome {
	if changed {
		return MutationApplied
	}
	return MutationNoop
}
