package signup

import (
	"encoding/json"
	"testing"

	"verisure/domain/session"
	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSelectsVariant(t *testing.T) {
	form, err := Request{Role: "Issuer"}.Decode()
	require.NoError(t, err)
	assert.IsType(t, IssuerForm{}, form)

	_, err = Request{Role: "admin"}.Decode()
	require.Error(t, err)
	assert.Equal(t, "Please select an account type.", errors.UserMessage(err))
}

func TestValidatePasswordsMatch(t *testing.T) {
	form := HolderForm{
		Credentials: Credentials{Email: "a@b.c", Password: "x", PasswordConfirm: "y"},
		FullName:    "Ada",
		Country:     "Kenya",
	}
	err := Validate(form)
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", errors.UserMessage(err))
}

func TestValidateRoleFields(t *testing.T) {
	form := VerifierForm{
		Credentials:  Credentials{Email: "hr@acme.com", Password: "pw", PasswordConfirm: "pw"},
		Organization: Organization{OrganizationName: "Acme", Country: "Ghana"},
	}
	err := Validate(form)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingFields, errors.GetCode(err))
	assert.Equal(t, []string{"organization_type", "contact_name", "contact_email"}, errors.FieldsOf(err))
}

func TestValuesEncodesMeta(t *testing.T) {
	form := IssuerForm{
		Credentials: Credentials{Email: " Admin@Uni.EDU ", Password: "pw", PasswordConfirm: "pw"},
		Organization: Organization{
			OrganizationName: " University ",
			OrganizationType: "University",
			ContactName:      "Registrar",
			ContactEmail:     "Registrar@Uni.edu",
			Country:          "Rwanda",
		},
	}
	require.NoError(t, Validate(form))

	v, err := Values(form)
	require.NoError(t, err)
	assert.Equal(t, "signup", v.Get("action"))
	assert.Equal(t, "issuer", v.Get("role"))
	assert.Equal(t, "admin@uni.edu", v.Get("email"))

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(v.Get("meta")), &meta))
	assert.Equal(t, "University", meta["organizationName"])
	assert.Equal(t, "registrar@uni.edu", meta["contactEmail"])
	assert.Equal(t, "Rwanda", meta["country"])
}

func TestHolderMeta(t *testing.T) {
	form := HolderForm{FullName: " Ada Lovelace ", Country: "United Kingdom"}
	assert.Equal(t, map[string]string{"fullName": "Ada Lovelace", "country": "United Kingdom"}, form.Meta())
}

func TestSuccessMessage(t *testing.T) {
	assert.Contains(t, SuccessMessage(session.RoleIssuer), "pending approval")
	assert.Equal(t, "Account created successfully. Redirecting to login…", SuccessMessage(session.RoleHolder))
}

func TestCountries(t *testing.T) {
	assert.Len(t, Countries, 27)
	assert.Equal(t, "Argentina", Countries[0])
	assert.Equal(t, "Zimbabwe", Countries[len(Countries)-1])
}
