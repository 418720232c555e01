package ports

import (
	"context"

	"verisure/domain/credential"
	"verisure/domain/session"
	"verisure/domain/signup"
)

// IssuerAPI submits credentials to the VeriSure service
type IssuerAPI interface {
	Issue(ctx context.Context, req credential.IssueRequest) (credential.SingleResult, error)
	IssueBatch(ctx context.Context, req credential.BatchRequest) (credential.BatchResult, error)
}

// AccountAPI covers login, signup and issuer approval lookups
type AccountAPI interface {
	Login(ctx context.Context, email, password string, role session.Role) (*session.Session, error)
	Signup(ctx context.Context, form signup.Form) error
	CheckIssuerStatus(ctx context.Context, entityID string) (session.ApprovalStatus, error)
}

// VeriSureAPI is the full remote API
type VeriSureAPI interface {
	IssuerAPI
	AccountAPI
}
