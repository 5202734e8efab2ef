// Copyright (c) 2026 Mangetsu. All rights reserved.

package sec

import (
	"github.com/mangetsu-app/mangetsu/internal/platform/apperr"
)

// # Capability Checks

// Authorize is the single capability check consulted by every mutating
// operation in the application.
//
// # Rules
//
//  1. An anonymous caller (nil claims) is always rejected with 401.
//  2. The owner of a resource may always act on it (ownerID match).
//  3. Otherwise the caller's role must meet or exceed the required role.
//
// Pass an empty ownerID for operations that have no owning user
// (e.g. creating a brand-new resource).
//
// # Parameters
//   - claims: The authenticated caller, or nil for anonymous requests.
//   - ownerID: The owning user of the target resource, or "".
//   - required: The minimum role that grants access regardless of ownership.
//
// # Returns
//   - nil when access is granted.
//   - apperr.Unauthorized for anonymous callers.
//   - apperr.Forbidden for recognised but insufficiently privileged callers.
func Authorize(claims *AuthClaims, ownerID string, required UserRole) error {
	if claims == nil {
		return apperr.Unauthorized("Authentication required")
	}

	// Ownership grants access to the caller's own resources.
	if ownerID != "" && claims.UserID == ownerID {
		return nil
	}

	if UserRole(claims.Role).AtLeast(required) {
		return nil
	}

	return apperr.Forbidden("Insufficient permissions")
}

// AuthorizeUserDeletion guards destructive admin actions on accounts.
//
// Only admins may delete or re-role accounts, and an admin can never
// delete their own account through this path.
func AuthorizeUserDeletion(claims *AuthClaims, targetUserID string) error {
	if claims == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if !UserRole(claims.Role).AtLeast(RoleAdmin) {
		return apperr.Forbidden("Administrator access required")
	}

	if claims.UserID == targetUserID {
		return apperr.Forbidden("Administrators cannot delete their own account")
	}

	return nil
}
