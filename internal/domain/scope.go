package domain

import "fmt"

// ScopeKind discriminates the two tenant key variants.
type ScopeKind string

const (
	// ScopeCompany scopes records to a company tenant.
	ScopeCompany ScopeKind = "company"

	// ScopeLegacyUser scopes records created before the company model
	// existed; they are keyed by the owning user instead.
	ScopeLegacyUser ScopeKind = "legacy_user"
)

// Scope is the authorization scope every journal read and write is keyed by.
// It is resolved once at the HTTP boundary from the bearer token and passed
// as an opaque value through all operations.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// ByCompany returns a company-keyed scope.
func ByCompany(companyID string) Scope {
	return Scope{Kind: ScopeCompany, ID: companyID}
}

// ByLegacyUser returns a user-keyed scope for legacy records.
func ByLegacyUser(userID string) Scope {
	return Scope{Kind: ScopeLegacyUser, ID: userID}
}

// IsZero reports whether the scope is unset.
func (s Scope) IsZero() bool {
	return s.ID == ""
}

// Equal reports whether two scopes address the same tenant.
func (s Scope) Equal(other Scope) bool {
	return s.Kind == other.Kind && s.ID == other.ID
}

// String renders the scope as "kind:id", usable as a cache key segment.
func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}
