package users

import "strings"

// Tier constants (single source of truth)
const (
	TierFree = "gratuito"
	TierPaid = "anual"
)

// ValidTier reports whether t is a plan label this backend understands.
// Anything else is denied outright by the entitlement resolver.
func ValidTier(t string) bool {
	switch strings.TrimSpace(t) {
	case TierFree, TierPaid:
		return true
	}
	return false
}
