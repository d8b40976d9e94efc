// Package identity describes owner lookups against the external identity provider.
package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when the provider has no user for the identifier.
// Any other error from a Resolver means the lookup itself failed.
var ErrNotFound = errors.New("identity not found")

const fallbackName = "User"

// Identity is the contact information of a subscription owner.
type Identity struct {
	OwnerID     string
	Email       string
	DisplayName string
}

// Resolver maps an owner identifier to an Identity.
type Resolver interface {
	Resolve(ctx context.Context, ownerID string) (*Identity, error)
}

// DisplayName picks the first non-empty candidate, then the local part of email.
func DisplayName(email string, candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return strings.TrimSpace(c)
		}
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return fallbackName
}
