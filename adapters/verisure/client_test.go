package verisure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"verisure/adapters/devapi"
	"verisure/domain/credential"
	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/internal/config"
	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.APIConfig{URL: srv.URL + devapi.Path, Timeout: 5 * time.Second}, nil)
}

func issuerForm(email string) signup.IssuerForm {
	return signup.IssuerForm{
		Credentials: signup.Credentials{Email: email, Password: "pw", PasswordConfirm: "pw"},
		Organization: signup.Organization{
			OrganizationName: "Lagos Business School",
			OrganizationType: "University",
			ContactName:      "Registrar",
			ContactEmail:     "registrar@lbs.edu",
			Country:          "Nigeria",
		},
	}
}

func TestSignupLoginAndApproval(t *testing.T) {
	api := devapi.New(nil)
	c := newTestClient(t, api.Handler())
	ctx := context.Background()

	require.NoError(t, c.Signup(ctx, issuerForm("Admin@LBS.edu")))

	err := c.Signup(ctx, issuerForm("admin@lbs.edu"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeServerError, errors.GetCode(err))

	s, err := c.Login(ctx, "admin@lbs.edu", "pw", session.RoleIssuer)
	require.NoError(t, err)
	assert.Equal(t, session.RoleIssuer, s.Role)
	assert.NotEmpty(t, s.EntityID)
	assert.Equal(t, "pending", s.IssuerStatus)

	st, err := c.CheckIssuerStatus(ctx, s.EntityID)
	require.NoError(t, err)
	assert.False(t, st.Approved())

	require.True(t, api.Approve(s.EntityID))
	st, err = c.CheckIssuerStatus(ctx, s.EntityID)
	require.NoError(t, err)
	assert.True(t, st.Approved())
	assert.Equal(t, "Lagos Business School", st.IssuerName)

	_, err = c.Login(ctx, "admin@lbs.edu", "wrong", session.RoleIssuer)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", errors.UserMessage(err))
}

func TestIssueAndBatch(t *testing.T) {
	api := devapi.New(nil)
	api.SeedAccount("issuer", "org@uni.edu", "pw", "Uni", "approved")
	c := newTestClient(t, api.Handler())
	ctx := context.Background()

	single, err := c.Issue(ctx, credential.NewIssueRequest("org@uni.edu", credential.SingleIssuance{
		FullName: "Ada Lovelace", Email: "ada@example.com", CredentialType: "Degree", CredentialTitle: "BSc",
	}))
	require.NoError(t, err)
	assert.True(t, single.Success)
	assert.NotEmpty(t, single.CredentialID)
	assert.Contains(t, single.QRURL, single.CredentialID)

	set := &credential.RecordSet{
		Header: credential.RequiredColumns,
		Records: []credential.Record{
			{"full_name": "Alan", "email": "alan@example.com", "credential_type": "Degree", "credential_title": "BSc"},
			{"full_name": "Grace", "email": "grace@example.com", "credential_type": "Degree", "credential_title": "BSc"},
			{"full_name": "Ada Lovelace", "email": "ada@example.com", "credential_type": "Degree", "credential_title": "BSc"},
		},
	}
	res, err := c.IssueBatch(ctx, credential.NewBatchRequest("org@uni.edu", set))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Issued)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures(), 1)
	assert.Contains(t, res.Summary(5), "Row 3: dup")
	assert.Equal(t, 1, api.Calls(credential.ActionIssueBatch))
}

func TestIssueRejectedByServer(t *testing.T) {
	api := devapi.New(nil)
	api.SeedAccount("issuer", "org@uni.edu", "pw", "Uni", "pending")
	c := newTestClient(t, api.Handler())

	_, err := c.Issue(context.Background(), credential.IssueRequest{Action: credential.ActionIssue, IssuerEmail: "org@uni.edu"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeServerError, errors.GetCode(err))
	assert.Equal(t, "Issuer is not approved yet.", errors.UserMessage(err))

	_, err = c.IssueBatch(context.Background(), credential.NewBatchRequest("org@uni.edu", nil))
	require.Error(t, err)
	assert.Equal(t, "Issuer is not approved yet.", errors.UserMessage(err))
}

func TestRequestEncoding(t *testing.T) {
	var gotType, gotBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotType, gotBody = r.Header.Get("Content-Type"), string(b)
		_, _ = w.Write([]byte(`{"success":true,"credential_id":"VS-1"}`))
	}))
	ctx := context.Background()

	_, err := c.Issue(ctx, credential.IssueRequest{Action: "issue", HolderEmail: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain;charset=utf-8", gotType)
	assert.JSONEq(t, `{"action":"issue","issuer_email":"","holder_email":"a@b.c","credential_title":"","credential_type":"","holder_full_name":"","holder_internal_id":"","expiry_date":"","description":""}`, gotBody)

	_, _ = c.CheckIssuerStatus(ctx, "ent 1")
	assert.Equal(t, "application/x-www-form-urlencoded;charset=UTF-8", gotType)
	assert.Equal(t, "action=issuer_status&entity_id=ent+1", gotBody)
}

func TestResponseInterpretation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{"non JSON", "<html>Service unavailable</html>", errors.CodeTransportError, InvalidResponse},
		{"empty body", "", errors.CodeTransportError, InvalidResponse},
		{"success not strictly true", `{"success":"true"}`, errors.CodeServerError, "Issuance failed."},
		{"error wins over success", `{"success":true,"error":"Quota exceeded"}`, errors.CodeServerError, "Quota exceeded"},
		{"null", `null`, errors.CodeServerError, "Issuance failed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			_, err := c.Issue(context.Background(), credential.IssueRequest{})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
			assert.Equal(t, tt.wantMsg, errors.UserMessage(err))
		})
	}
}

func TestBatchStrictFlags(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"issued":1,"failed":1,"results":[{"ok":true,"index":0},{"index":1,"error":"maybe"},{"ok":false,"index":2,"error":"dup"}]}`))
	}))
	res, err := c.IssueBatch(context.Background(), credential.BatchRequest{})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, []credential.RowOutcome{{OK: false, Index: 2, Error: "dup", Failed: true}}, res.Failures())

	c = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":1}`))
	}))
	_, err = c.IssueBatch(context.Background(), credential.BatchRequest{})
	require.Error(t, err)
	assert.Equal(t, "Batch issuance failed.", errors.UserMessage(err))
}

func TestSignupUnexpectedResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"created"}`))
	}))
	err := c.Signup(context.Background(), issuerForm("a@b.c"))
	require.Error(t, err)
	assert.Equal(t, "Signup completed but response was unexpected.", errors.UserMessage(err))
}

func TestUnreachable(t *testing.T) {
	c := NewClient(config.APIConfig{URL: "http://127.0.0.1:1/exec", Timeout: time.Second}, nil)
	_, err := c.Issue(context.Background(), credential.IssueRequest{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeTransportError, errors.GetCode(err))
}
