package session

import (
	"strings"

	"verisure/internal/errors"
)

// Role is the account type a user logs in as.
type Role string

const (
	RoleHolder   Role = "holder"
	RoleIssuer   Role = "issuer"
	RoleVerifier Role = "verifier"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts a role name in any case; unknown names yield "".
func ParseRole(s string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleHolder, RoleIssuer, RoleVerifier, RoleAdmin:
		return r
	default:
		return ""
	}
}

// StatusApproved is the issuerStatus value that unlocks issuance.
const StatusApproved = "approved"

// Session is what the login action returned, as stored locally. Unknown
// fields returned by the API are kept in Extra so nothing is lost on rewrite.
type Session struct {
	Role         Role   `json:"role"`
	EntityID     string `json:"entityId,omitempty"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	IssuerStatus string `json:"issuerStatus,omitempty"`
	IssuerName   string `json:"issuerName,omitempty"`

	Extra map[string]any `json:"-"`
}

// Issuer is the identity issuance requests are sent under.
type Issuer struct {
	EntityID string
	Email    string
}

// RequireIssuer checks the issuance precondition. A nil session is treated
// as logged out.
func RequireIssuer(s *Session) (Issuer, error) {
	if s == nil || s.Role != RoleIssuer {
		return Issuer{}, errors.Unauthorized("Unauthorized. Please log in as an issuer.")
	}
	if s.EntityID == "" {
		return Issuer{}, errors.Unauthorized("Issuer entityId missing. Please log in again.")
	}
	if s.Email == "" {
		return Issuer{}, errors.Unauthorized("Issuer email missing. Please log in again.")
	}
	return Issuer{EntityID: s.EntityID, Email: s.Email}, nil
}

// NeedsApproval reports whether the session belongs to an issuer that has
// not been approved yet.
func (s *Session) NeedsApproval() bool {
	if s == nil || s.Role != RoleIssuer {
		return false
	}
	return strings.ToLower(s.IssuerStatus) != StatusApproved
}

// Approve returns a copy of the session marked approved. An empty name keeps
// the current one.
func (s Session) Approve(issuerName string) Session {
	s.IssuerStatus = StatusApproved
	if issuerName != "" {
		s.IssuerName = issuerName
	}
	return s
}

// Link is one navigation entry.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

var linksByRole = map[Role][]Link{
	RoleHolder:   {{Label: "Wallet", Href: "/app/wallet.html"}},
	RoleIssuer:   {{Label: "Issuer", Href: "/app/issuer.html"}},
	RoleVerifier: {{Label: "Verify", Href: "/app/verify.html"}},
	RoleAdmin:    {{Label: "Admin", Href: "/app/admin.html"}},
}

// NavLinks returns the navigation entries for a role; unknown roles get none.
func NavLinks(role Role) []Link {
	links := linksByRole[role]
	return append([]Link(nil), links...)
}

// HomeRoute is where a user lands after login.
func HomeRoute(role Role) string {
	if links, ok := linksByRole[role]; ok {
		return links[0].Href
	}
	return "/app/wallet.html"
}

// EmailHint is the placeholder for the login email field.
func EmailHint(role Role) string {
	if role == RoleIssuer || role == RoleVerifier {
		return "Organization email (e.g. admin@yourorg.com)"
	}
	return "Email address"
}

// ApprovalStatus is what the API reports for an issuer entity. Status is
// lowercased and empty when the API reported none.
type ApprovalStatus struct {
	Status     string `json:"issuerStatus"`
	IssuerName string `json:"issuerName,omitempty"`
}

// Approved reports whether the status unlocks issuance.
func (a ApprovalStatus) Approved() bool {
	return a.Status == StatusApproved
}

// Prefill carries the account just created over to the login form.
type Prefill struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
