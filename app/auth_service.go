package app

import (
	"context"
	"strings"

	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/internal/errors"
	"verisure/ports"

	"go.uber.org/zap"
)

// LoginInput is the login form
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the stored session plus where the user goes next
type LoginResult struct {
	Session *session.Session `json:"session"`
	Home    string           `json:"home"`
	Links   []session.Link   `json:"links"`
}

// SignupResult is the banner shown after signup and the prefill left for login
type SignupResult struct {
	Message string          `json:"message"`
	Prefill session.Prefill `json:"prefill"`
}

// AuthService handles login, signup and logout against the remote API and
// keeps the local session in step
type AuthService struct {
	api      ports.AccountAPI
	sessions ports.SessionRepository
	profile  string
	logger   *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(api ports.AccountAPI, sessions ports.SessionRepository, profile string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{api: api, sessions: sessions, profile: profile, logger: logger.Named("auth")}
}

// Login authenticates and stores the returned session
func (a *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	role := session.ParseRole(in.Role)
	if role == "" {
		return nil, &errors.AppError{Code: errors.CodeInvalidInput, Message: "Select account type.", Fields: []string{"role"}}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, &errors.AppError{Code: errors.CodeMissingFields, Message: "Enter your email and password.", Fields: []string{"email", "password"}}
	}

	sess, err := a.api.Login(ctx, email, in.Password, role)
	if err != nil {
		a.logger.Info("login failed", zap.String("email", email), zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	if sess.Role == "" {
		sess.Role = role
	}
	if err := a.sessions.Set(ctx, a.profile, sess); err != nil {
		return nil, err
	}

	a.logger.Info("logged in", zap.String("email", email), zap.String("role", string(sess.Role)))
	return &LoginResult{
		Session: sess,
		Home:    session.HomeRoute(sess.Role),
		Links:   session.NavLinks(sess.Role),
	}, nil
}

// Signup validates and submits the form, then leaves a login prefill
func (a *AuthService) Signup(ctx context.Context, form signup.Form) (*SignupResult, error) {
	if err := signup.Validate(form); err != nil {
		return nil, err
	}
	if err := a.api.Signup(ctx, form); err != nil {
		return nil, err
	}

	prefill := session.Prefill{Email: signup.LoginEmail(form), Role: form.Role()}
	if err := a.sessions.SavePrefill(ctx, a.profile, prefill); err != nil {
		a.logger.Warn("failed to save login prefill", zap.Error(err))
	}

	a.logger.Info("account created", zap.String("email", prefill.Email), zap.String("role", string(prefill.Role)))
	return &SignupResult{Message: signup.SuccessMessage(form.Role()), Prefill: prefill}, nil
}

// Logout clears the stored session
func (a *AuthService) Logout(ctx context.Context) error {
	return a.sessions.Clear(ctx, a.profile)
}

// Current returns the stored session, or nil when logged out
func (a *AuthService) Current(ctx context.Context) (*session.Session, error) {
	return a.sessions.Get(ctx, a.profile)
}

// TakePrefill consumes the prefill left by the last signup
func (a *AuthService) TakePrefill(ctx context.Context) (*session.Prefill, error) {
	return a.sessions.TakePrefill(ctx, a.profile)
}
