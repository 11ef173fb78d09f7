// Package revocation stores the JTIs of signed-out dashboard tokens until the
// tokens would have expired on their own. Three backends share one contract:
// RevokeToken with a positive TTL, IsRevoked that treats an empty or unknown
// JTI as live.
package revocation

import (
	"fmt"
	"time"

	"romportal/pkg/platform/sentinel"
)

// Clock returns the current time.
type Clock func() time.Time

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}
