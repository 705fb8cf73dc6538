package billing

// Canonical subscription statuses. The provider's "active" is folded into
// "authorized" before anything reaches this package.
const (
	SubscriptionPending    = "pending"
	SubscriptionAuthorized = "authorized"
	SubscriptionPaused     = "paused"
	SubscriptionCancelled  = "cancelled"
)

// PaymentApproved is the only payment status that grants entitlement.
const PaymentApproved = "approved"

// TerminalSubscriptionStatus reports whether s may be persisted on a
// subscription row. Transient or unrecognized provider statuses are not.
func TerminalSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionAuthorized, SubscriptionPaused, SubscriptionCancelled:
		return true
	}
	return false
}
