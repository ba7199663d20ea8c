package enums

// CheckoutOutcome is the result of one checkout submit.
type CheckoutOutcome string

const (
	CheckoutRejected  CheckoutOutcome = "rejected"
	CheckoutFailed    CheckoutOutcome = "failed"
	CheckoutSucceeded CheckoutOutcome = "succeeded"
)
