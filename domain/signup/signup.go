// Package signup models the role-dependent account creation forms.
package signup

import (
	"encoding/json"
	"net/url"
	"strings"

	"verisure/domain/session"
	"verisure/internal/errors"
)

// Countries offered by the signup country selector.
var Countries = []string{
	"Argentina",
	"Australia",
	"Brazil",
	"Canada",
	"China",
	"Egypt",
	"France",
	"Germany",
	"Ghana",
	"India",
	"Japan",
	"Kenya",
	"Mexico",
	"Morocco",
	"Netherlands",
	"Nigeria",
	"Rwanda",
	"Saudi Arabia",
	"Singapore",
	"South Africa",
	"Tanzania",
	"Uganda",
	"United Arab Emirates",
	"United Kingdom",
	"United States",
	"Zambia",
	"Zimbabwe",
}

// Credentials are common to every account type.
type Credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Form is one role variant of the signup form.
type Form interface {
	Role() session.Role
	Account() Credentials
	// Meta returns the role-specific metadata sent as the "meta" field.
	Meta() map[string]string
	// Missing lists required role-specific fields that are empty.
	Missing() []string
}

// HolderForm is the signup form for credential holders.
type HolderForm struct {
	Credentials
	FullName string `json:"full_name"`
	Country  string `json:"country"`
}

func (HolderForm) Role() session.Role        { return session.RoleHolder }
func (f HolderForm) Account() Credentials    { return f.Credentials }
func (f HolderForm) Meta() map[string]string { return holderMeta(f) }
func (f HolderForm) Missing() []string {
	return missing(map[string]string{"full_name": f.FullName, "country": f.Country}, "full_name", "country")
}

func holderMeta(f HolderForm) map[string]string {
	return map[string]string{
		"fullName": strings.TrimSpace(f.FullName),
		"country":  f.Country,
	}
}

// Organization holds the fields shared by issuer and verifier signups.
type Organization struct {
	OrganizationName string `json:"organization_name"`
	OrganizationType string `json:"organization_type"`
	ContactName      string `json:"contact_name"`
	ContactEmail     string `json:"contact_email"`
	Country          string `json:"country"`
}

func (o Organization) meta() map[string]string {
	return map[string]string{
		"organizationName": strings.TrimSpace(o.OrganizationName),
		"organizationType": o.OrganizationType,
		"contactName":      strings.TrimSpace(o.ContactName),
		"contactEmail":     strings.ToLower(strings.TrimSpace(o.ContactEmail)),
		"country":          o.Country,
	}
}

func (o Organization) missing() []string {
	return missing(map[string]string{
		"organization_name": o.OrganizationName,
		"organization_type": o.OrganizationType,
		"contact_name":      o.ContactName,
		"contact_email":     o.ContactEmail,
		"country":           o.Country,
	}, "organization_name", "organization_type", "contact_name", "contact_email", "country")
}

// IssuerForm is the signup form for issuing organizations.
type IssuerForm struct {
	Credentials
	Organization
}

func (IssuerForm) Role() session.Role        { return session.RoleIssuer }
func (f IssuerForm) Account() Credentials    { return f.Credentials }
func (f IssuerForm) Meta() map[string]string { return f.Organization.meta() }
func (f IssuerForm) Missing() []string       { return f.Organization.missing() }

// VerifierForm is the signup form for verifying organizations.
type VerifierForm struct {
	Credentials
	Organization
}

func (VerifierForm) Role() session.Role        { return session.RoleVerifier }
func (f VerifierForm) Account() Credentials    { return f.Credentials }
func (f VerifierForm) Meta() map[string]string { return f.Organization.meta() }
func (f VerifierForm) Missing() []string       { return f.Organization.missing() }

func missing(values map[string]string, order ...string) []string {
	var out []string
	for _, k := range order {
		if strings.TrimSpace(values[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}

// Validate checks a form before it is sent.
func Validate(f Form) error {
	if f == nil {
		return errors.InvalidInput("Please select an account type.")
	}
	acct := f.Account()
	if acct.Password != acct.PasswordConfirm {
		return &errors.AppError{
			Code:    errors.CodeInvalidInput,
			Message: "Passwords do not match",
			Fields:  []string{"password_confirm"},
		}
	}

	fields := f.Missing()
	if strings.TrimSpace(acct.Email) == "" {
		fields = append([]string{"email"}, fields...)
	}
	if acct.Password == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return &errors.AppError{
			Code:    errors.CodeMissingFields,
			Message: "Please fill in all required fields.",
			Fields:  fields,
		}
	}
	return nil
}

// LoginEmail is the normalized account email used for the follow-up login.
func LoginEmail(f Form) string {
	return strings.ToLower(strings.TrimSpace(f.Account().Email))
}

// Values encodes a form as the url-encoded body of the "signup" action.
// The metadata object is JSON-encoded into a single field.
func Values(f Form) (url.Values, error) {
	meta, err := json.Marshal(f.Meta())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode signup metadata")
	}
	v := url.Values{}
	v.Set("action", "signup")
	v.Set("role", string(f.Role()))
	v.Set("email", LoginEmail(f))
	v.Set("password", f.Account().Password)
	v.Set("meta", string(meta))
	return v, nil
}

// SuccessMessage is the banner shown after an account was created.
func SuccessMessage(role session.Role) string {
	if role == session.RoleIssuer {
		return "Account created. Your issuer access is pending approval. Redirecting to login…"
	}
	return "Account created successfully. Redirecting to login…"
}

// Request is the JSON shape accepted by the console and CLI, decoded into the
// matching Form variant by Decode.
type Request struct {
	Role session.Role `json:"role"`
	Credentials
	FullName string `json:"full_name"`
	Organization
}

// Decode selects the form variant for the requested role.
func (r Request) Decode() (Form, error) {
	switch session.ParseRole(string(r.Role)) {
	case session.RoleHolder:
		return HolderForm{Credentials: r.Credentials, FullName: r.FullName, Country: r.Country}, nil
	case session.RoleIssuer:
		return IssuerForm{Credentials: r.Credentials, Organization: r.Organization}, nil
	case session.RoleVerifier:
		return VerifierForm{Credentials: r.Credentials, Organization: r.Organization}, nil
	default:
		return nil, errors.InvalidInput("Please select an account type.")
	}
}
