package enum

// CheckoutStatus tracks the order submission workflow.
type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "idle"
	CheckoutStatusValidating CheckoutStatus = "validating"
	CheckoutStatusSubmitting CheckoutStatus = "submitting"
	CheckoutStatusSucceeded  CheckoutStatus = "succeeded"
	CheckoutStatusFailed     CheckoutStatus = "failed"
)
