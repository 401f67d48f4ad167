package auth

import (
	"sort"
	"strings"

	"lcr/pkg/model"
)

const (
	ScopeVehicleRead   = "vehicle:read"
	ScopeVehicleWrite  = "vehicle:write"
	ScopeBookingRead   = "booking:read"
	ScopeBookingCreate = "booking:create"
	ScopeBookingWrite  = "booking:write"
	ScopePaymentRead   = "payment:read"
	ScopePaymentWrite  = "payment:write"
	ScopeAll           = "*"
)

// roleScopes maps a role to its permission set. Computed at token issuance
// and checked at request time; there is no materialized membership to keep
// in sync.
var roleScopes = map[string][]string{
	model.RoleCustomer:     {ScopeVehicleRead, ScopeBookingRead, ScopeBookingCreate},
	model.RoleFleetManager: {ScopeVehicleRead, ScopeVehicleWrite, ScopeBookingRead},
	model.RoleSupport:      {ScopeBookingRead, ScopeBookingWrite},
	model.RoleFinance:      {ScopeBookingRead, ScopePaymentRead, ScopePaymentWrite},
	model.RoleAdmin:        {ScopeAll},
}

// ScopesForRole returns the sorted scope set for a role. Unknown roles get
// nothing.
func ScopesForRole(role string) []string {
	scopes, ok := roleScopes[role]
	if !ok {
		return nil
	}
	out := make([]string, len(scopes))
	copy(out, scopes)
	sort.Strings(out)
	return out
}

// ScopeString renders scopes as the space-separated "scp" claim.
func ScopeString(role string) string {
	return strings.Join(ScopesForRole(role), " ")
}

// HasScope checks a claim scope set against a required scope. The wildcard
// grants everything.
func HasScope(granted []string, required string) bool {
	for _, s := range granted {
		if s == ScopeAll || s == required {
			return true
		}
	}
	return false
}

// ParseScopeString splits the "scp" claim back into a scope set.
func ParseScopeString(scp string) []string {
	if scp == "" {
		return nil
	}
	return strings.Fields(scp)
}
