package verisure

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"verisure/domain/credential"
	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/internal/errors"

	"github.com/tidwall/gjson"
)

// Action names understood by the API.
const (
	ActionLogin        = "login"
	ActionSignup       = "signup"
	ActionIssuerStatus = "issuer_status"
)

// Login exchanges credentials for a session. The whole response object
// becomes the stored session.
func (c *Client) Login(ctx context.Context, email, password string, role session.Role) (*session.Session, error) {
	fields := url.Values{}
	fields.Set("action", ActionLogin)
	fields.Set("email", email)
	fields.Set("password", password)
	fields.Set("role", string(role))

	r, err := c.postForm(ctx, ActionLogin, fields)
	if err != nil {
		return nil, err
	}
	if _, failed := r.errorMessage(); failed {
		return nil, r.fail("")
	}

	var s session.Session
	if err := json.Unmarshal(r.body, &s); err != nil {
		return nil, errors.TransportError(InvalidResponse, err)
	}
	return &s, nil
}

// Signup creates an account. Success is an explicit success flag or any
// echo of the account (email or role).
func (c *Client) Signup(ctx context.Context, form signup.Form) error {
	fields, err := signup.Values(form)
	if err != nil {
		return err
	}

	r, err := c.postForm(ctx, ActionSignup, fields)
	if err != nil {
		return err
	}
	if _, failed := r.errorMessage(); failed {
		return r.fail("")
	}
	if strictTrue(r.get("success")) || truthy(r.get("email")) || truthy(r.get("role")) {
		return nil
	}

	c.logger.Warn("unexpected signup response")
	return errors.ServerError("Signup completed but response was unexpected.")
}

// CheckIssuerStatus polls the approval state of an issuer entity.
func (c *Client) CheckIssuerStatus(ctx context.Context, entityID string) (session.ApprovalStatus, error) {
	fields := url.Values{}
	fields.Set("action", ActionIssuerStatus)
	fields.Set("entity_id", entityID)

	r, err := c.postForm(ctx, ActionIssuerStatus, fields)
	if err != nil {
		return session.ApprovalStatus{}, err
	}
	if _, failed := r.errorMessage(); failed {
		return session.ApprovalStatus{}, r.fail("")
	}

	var st session.ApprovalStatus
	if s := r.get("issuerStatus"); truthy(s) {
		st.Status = strings.ToLower(s.String())
	}
	if n := r.get("issuerName"); truthy(n) {
		st.IssuerName = n.String()
	}
	return st, nil
}

// Issue submits one credential.
func (c *Client) Issue(ctx context.Context, req credential.IssueRequest) (credential.SingleResult, error) {
	r, err := c.postJSON(ctx, credential.ActionIssue, req)
	if err != nil {
		return credential.SingleResult{}, err
	}

	_, failed := r.errorMessage()
	if failed || !strictTrue(r.get("success")) {
		return credential.SingleResult{}, r.fail("Issuance failed.")
	}

	return credential.SingleResult{
		Success:      true,
		CredentialID: r.get("credential_id").String(),
		QRURL:        r.get("qr_url").String(),
	}, nil
}

// IssueBatch submits a batch of rows. A top-level failure is an error;
// failures of individual rows are part of the result.
func (c *Client) IssueBatch(ctx context.Context, req credential.BatchRequest) (credential.BatchResult, error) {
	r, err := c.postJSON(ctx, credential.ActionIssueBatch, req)
	if err != nil {
		return credential.BatchResult{}, err
	}

	if !strictTrue(r.get("ok")) {
		return credential.BatchResult{}, r.fail("Batch issuance failed.")
	}

	res := credential.BatchResult{
		OK:     true,
		Issued: int(r.get("issued").Int()),
		Failed: int(r.get("failed").Int()),
	}
	r.get("results").ForEach(func(_, row gjson.Result) bool {
		ok := row.Get("ok")
		res.Results = append(res.Results, credential.RowOutcome{
			OK:     strictTrue(ok),
			Failed: strictFalse(ok),
			Index:  int(row.Get("index").Int()),
			Error:  row.Get("error").String(),
		})
		return true
	})
	return res, nil
}
