package app

import (
	"context"
	"testing"

	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginValidation(t *testing.T) {
	api := newFakeAPI()
	auth := NewAuthService(api, newMemSessions(), testProfile, nil)
	ctx := context.Background()

	_, err := auth.Login(ctx, LoginInput{Email: "a@b.c", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Select account type.", errors.UserMessage(err))

	_, err = auth.Login(ctx, LoginInput{Email: "  ", Password: "pw", Role: "issuer"})
	require.Error(t, err)
	assert.Equal(t, "Enter your email and password.", errors.UserMessage(err))

	assert.Zero(t, api.total())
}

func TestLoginStoresSession(t *testing.T) {
	api := newFakeAPI()
	var gotEmail string
	api.login = func(email, _ string, role session.Role) (*session.Session, error) {
		gotEmail = email
		return &session.Session{Role: role, Email: email, EntityID: "ent-7", IssuerStatus: "pending"}, nil
	}
	sessions := newMemSessions()
	auth := NewAuthService(api, sessions, testProfile, nil)
	ctx := context.Background()

	res, err := auth.Login(ctx, LoginInput{Email: " Org@Uni.EDU ", Password: "pw", Role: "Issuer"})
	require.NoError(t, err)
	assert.Equal(t, "org@uni.edu", gotEmail)
	assert.Equal(t, "/app/issuer.html", res.Home)
	assert.Equal(t, []session.Link{{Label: "Issuer", Href: "/app/issuer.html"}}, res.Links)

	cur, err := auth.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "ent-7", cur.EntityID)

	require.NoError(t, auth.Logout(ctx))
	cur, err = auth.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestLoginErrorIsSurfaced(t *testing.T) {
	api := newFakeAPI()
	api.login = func(string, string, session.Role) (*session.Session, error) {
		return nil, errors.ServerError("Invalid email or password.")
	}
	sessions := newMemSessions()
	auth := NewAuthService(api, sessions, testProfile, nil)

	_, err := auth.Login(context.Background(), LoginInput{Email: "a@b.c", Password: "x", Role: "holder"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", errors.UserMessage(err))

	cur, _ := sessions.Get(context.Background(), testProfile)
	assert.Nil(t, cur)
}

func TestSignupLeavesPrefill(t *testing.T) {
	api := newFakeAPI()
	auth := NewAuthService(api, newMemSessions(), testProfile, nil)
	ctx := context.Background()

	form := signup.IssuerForm{
		Credentials: signup.Credentials{Email: " Admin@LBS.edu", Password: "pw", PasswordConfirm: "pw"},
		Organization: signup.Organization{
			OrganizationName: "Lagos Business School",
			OrganizationType: "University",
			ContactName:      "Registrar",
			ContactEmail:     "registrar@lbs.edu",
			Country:          "Nigeria",
		},
	}
	res, err := auth.Signup(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Account created. Your issuer access is pending approval. Redirecting to login…", res.Message)

	p, err := auth.TakePrefill(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, session.Prefill{Email: "admin@lbs.edu", Role: session.RoleIssuer}, *p)

	p, err = auth.TakePrefill(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSignupValidationSkipsNetwork(t *testing.T) {
	api := newFakeAPI()
	auth := NewAuthService(api, newMemSessions(), testProfile, nil)

	_, err := auth.Signup(context.Background(), signup.HolderForm{
		Credentials: signup.Credentials{Email: "a@b.c", Password: "one", PasswordConfirm: "two"},
		FullName:    "Ada",
		Country:     "Ghana",
	})
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match", errors.UserMessage(err))

	_, err = auth.Signup(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "Please select an account type.", errors.UserMessage(err))

	assert.Zero(t, api.total())
}
