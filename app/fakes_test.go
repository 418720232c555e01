package app

import (
	"context"
	"sync"

	"verisure/domain/credential"
	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/models"
)

const testProfile = "test"

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	prefills map[string]*session.Prefill
}

func newMemSessions() *memSessions {
	return &memSessions{
		sessions: make(map[string]*session.Session),
		prefills: make(map[string]*session.Prefill),
	}
}

func (m *memSessions) Get(_ context.Context, profile string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[profile]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Set(_ context.Context, profile string, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[profile] = &cp
	return nil
}

func (m *memSessions) Clear(_ context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, profile)
	return nil
}

func (m *memSessions) SavePrefill(_ context.Context, profile string, p session.Prefill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefills[profile] = &p
	return nil
}

func (m *memSessions) TakePrefill(_ context.Context, profile string) (*session.Prefill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.prefills[profile]
	delete(m.prefills, profile)
	return p, nil
}

func (m *memSessions) put(s *session.Session) {
	_ = m.Set(context.Background(), testProfile, s)
}

// fakeAPI records calls and answers from its function fields.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	issue       func(credential.IssueRequest) (credential.SingleResult, error)
	issueBatch  func(credential.BatchRequest) (credential.BatchResult, error)
	login       func(email, password string, role session.Role) (*session.Session, error)
	signup      func(signup.Form) error
	issuerState func(entityID string) (session.ApprovalStatus, error)

	lastIssue credential.IssueRequest
	lastBatch credential.BatchRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) count(action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[action]++
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Calls(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[action]
}

func (f *fakeAPI) Issue(_ context.Context, req credential.IssueRequest) (credential.SingleResult, error) {
	f.count("issue")
	f.mu.Lock()
	f.lastIssue = req
	f.mu.Unlock()
	if f.issue == nil {
		return credential.SingleResult{Success: true, CredentialID: "VS-1", QRURL: "https://verify/VS-1"}, nil
	}
	return f.issue(req)
}

func (f *fakeAPI) IssueBatch(_ context.Context, req credential.BatchRequest) (credential.BatchResult, error) {
	f.count("issuer_issue_batch")
	f.mu.Lock()
	f.lastBatch = req
	f.mu.Unlock()
	if f.issueBatch == nil {
		n := len(req.Rows)
		return credential.BatchResult{OK: true, Issued: n}, nil
	}
	return f.issueBatch(req)
}

func (f *fakeAPI) Login(_ context.Context, email, password string, role session.Role) (*session.Session, error) {
	f.count("login")
	if f.login == nil {
		return &session.Session{Role: role, Email: email, EntityID: "ent-1"}, nil
	}
	return f.login(email, password, role)
}

func (f *fakeAPI) Signup(_ context.Context, form signup.Form) error {
	f.count("signup")
	if f.signup == nil {
		return nil
	}
	return f.signup(form)
}

func (f *fakeAPI) CheckIssuerStatus(_ context.Context, entityID string) (session.ApprovalStatus, error) {
	f.count("issuer_status")
	if f.issuerState == nil {
		return session.ApprovalStatus{Status: "pending"}, nil
	}
	return f.issuerState(entityID)
}

type memHistory struct {
	mu       sync.Mutex
	attempts []*models.IssuanceAttempt
}

func (h *memHistory) Record(_ context.Context, a *models.IssuanceAttempt) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := *a
	h.attempts = append(h.attempts, &cp)
	return nil
}

func (h *memHistory) List(_ context.Context, limit int) ([]*models.IssuanceAttempt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*models.IssuanceAttempt, 0, len(h.attempts))
	for i := len(h.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.attempts[i])
	}
	return out, nil
}

func issuerSession() *session.Session {
	return &session.Session{
		Role:         session.RoleIssuer,
		EntityID:     "ent-1",
		Email:        "org@uni.edu",
		IssuerStatus: session.StatusApproved,
	}
}
