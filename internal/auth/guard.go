package auth

import "github.com/spec-kit/cook-api/internal/domain"

// RequireOwnership fails with ErrForbidden unless principal created the resource.
// Role is not consulted: ADMIN has no override.
func RequireOwnership(principal domain.AuthenticatedPrincipal, resourceOwnerID int64) error {
	if principal.UserID == 0 || principal.UserID != resourceOwnerID {
		return ErrForbidden
	}
	return nil
}
