// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import "fmt"

// # Subscription Tiers

// Tier is the closed set of subscription plans. Keeping it a distinct type
// forces tier-gated logic through exhaustive switches instead of comparing
// free-form strings.
type Tier string

const (
	TierFree     Tier = "free"
	TierStarter  Tier = "starter"
	TierBusiness Tier = "business"
)

// ParseTier converts a stored string into a [Tier], rejecting unknown values.
func ParseTier(value string) (Tier, error) {
	switch Tier(value) {
	case TierFree, TierStarter, TierBusiness:
		return Tier(value), nil
	default:
		return "", fmt.Errorf("auth: unknown tier %q", value)
	}
}

// String implements fmt.Stringer.
func (tier Tier) String() string { return string(tier) }

// MaxActiveJobs returns the tier's ceiling on concurrently active jobs.
// A negative value means unlimited.
func (tier Tier) MaxActiveJobs() int {
	switch tier {
	case TierFree:
		return 10
	case TierStarter:
		return 100
	case TierBusiness:
		return -1
	default:
		// Unknown tiers are treated as free until migrated.
		return 10
	}
}

// MaxDevices returns the tier's ceiling on registered devices.
// A negative value means unlimited.
func (tier Tier) MaxDevices() int {
	switch tier {
	case TierFree:
		return 3
	case TierStarter:
		return 10
	case TierBusiness:
		return -1
	default:
		return 3
	}
}
