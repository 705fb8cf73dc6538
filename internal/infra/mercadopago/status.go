package mercadopago

import (
	"strings"

	"treinorun-backend/internal/domain/billing"
)

// NormalizeSubscriptionStatus folds the provider's preapproval statuses into
// the canonical labels used everywhere downstream. The provider has reported
// an activated subscription as both "authorized" and "active" depending on
// the notification vintage; both map to authorized.
func NormalizeSubscriptionStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "authorized", "active":
		return billing.SubscriptionAuthorized
	case "paused":
		return billing.SubscriptionPaused
	case "cancelled", "canceled":
		return billing.SubscriptionCancelled
	case "pending":
		return billing.SubscriptionPending
	default:
		return strings.ToLower(strings.TrimSpace(s))
	}
}
