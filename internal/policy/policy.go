package policy

import (
	"fmt"
	"time"
)

// Feature names a UI surface gated by role checks.
type Feature string

// Gated features.
const (
	FeatureBriefings    Feature = "briefings"
	FeatureVerification Feature = "verification"
	FeatureAnalytics    Feature = "analytics"
	FeatureSettings     Feature = "settings"
	FeatureUsers        Feature = "users"
	FeatureRoles        Feature = "roles"
)

// AccessDecision is the result of a deletion policy check. Reason is only
// populated when CanDelete is false.
type AccessDecision struct {
	CanDelete bool   `json:"canDelete"`
	Reason    string `json:"reason,omitempty"`
}

// VerificationUpdate is the atomic state change applied when a manager
// verifies or unverifies a behavior log. Clearing verification resets both
// metadata fields in the same value so a log can never end up unverified
// with a stale VerifiedAt.
type VerificationUpdate struct {
	Verified     bool
	VerifiedByID string
	VerifiedAt   time.Time
}

// EffectiveUserID resolves which user's data a request may read. Managers
// may query on behalf of anyone, defaulting to themselves when no target is
// given. Every other role is pinned to its own user id regardless of the
// requested target; this is the central ownership-isolation guard.
func EffectiveUserID(role Role, ownUserID, requestedUserID string) string {
	if IsManagerRole(role) && requestedUserID != "" {
		return requestedUserID
	}
	return ownUserID
}

// CanStaffDeleteLog decides whether a behavior log may be deleted. Staff may
// only remove their own unverified logs; a manager context bypasses both
// checks.
func CanStaffDeleteLog(isStaff, isLogOwner, isUnverified bool) AccessDecision {
	if !isStaff {
		return AccessDecision{CanDelete: true}
	}
	if !isLogOwner {
		return AccessDecision{Reason: "must be your own logs"}
	}
	if !isUnverified {
		return AccessDecision{Reason: "cannot delete verified logs"}
	}
	return AccessDecision{CanDelete: true}
}

// CanDeleteRole decides whether a role record may be removed. Roles with
// assigned users cannot be deleted.
func CanDeleteRole(assignedUserCount int) AccessDecision {
	if assignedUserCount > 0 {
		reason := fmt.Sprintf("%d assigned users", assignedUserCount)
		if assignedUserCount == 1 {
			reason = "1 assigned user"
		}
		return AccessDecision{Reason: reason}
	}
	return AccessDecision{CanDelete: true}
}

// CanVerifyLogs reports whether the role may verify behavior logs.
func CanVerifyLogs(role Role) bool {
	return IsManagerRole(role)
}

// CanViewAllUsers reports whether the role may list every user in the org.
func CanViewAllUsers(role Role) bool {
	return IsManagerRole(role)
}

// CanEditUserProfile reports whether the role may edit the given profile.
func CanEditUserProfile(role Role, isOwnProfile bool) bool {
	return isOwnProfile || IsManagerRole(role)
}

// CanAccessAdmin reports whether the role may open admin surfaces.
func CanAccessAdmin(role Role) bool {
	return IsAdminRole(role)
}

// CanAccessManager reports whether the role may open manager surfaces.
func CanAccessManager(role Role) bool {
	return IsManagerRole(role)
}

// NewVerificationUpdate builds the state change for verifying or clearing a
// behavior log. now is the verification timestamp applied when verified is
// true; clearing returns zero metadata.
func NewVerificationUpdate(verified bool, verifierID string, now time.Time) VerificationUpdate {
	if !verified {
		return VerificationUpdate{}
	}
	return VerificationUpdate{Verified: true, VerifiedByID: verifierID, VerifiedAt: now}
}

// CanAccessOrganization is the tenant-isolation boundary: a principal may
// only touch resources belonging to its own organization. Empty ids fall
// through to deny.
func CanAccessOrganization(ownOrgID, resourceOrgID string) bool {
	if ownOrgID == "" || resourceOrgID == "" {
		return false
	}
	return ownOrgID == resourceOrgID
}

// CanAccessFeature decides feature visibility per role.
func CanAccessFeature(role Role, feature Feature) bool {
	switch feature {
	case FeatureBriefings:
		return true
	case FeatureVerification, FeatureAnalytics, FeatureUsers:
		return IsManagerRole(role)
	case FeatureSettings, FeatureRoles:
		return IsAdminRole(role)
	}
	return false
}

// AllowedRoutes lists the top-level routes the role may navigate to.
func AllowedRoutes(role Role) []string {
	routes := []string{"/staff", "/scoreboard"}
	if IsManagerRole(role) {
		routes = append(routes, "/manager", "/admin", "/strategy")
	}
	return routes
}

// UnauthorizedRedirect picks the landing route after a denied navigation.
func UnauthorizedRedirect(role Role, attemptedPath string) string {
	if IsManagerRole(role) {
		return "/admin"
	}
	return "/staff"
}
