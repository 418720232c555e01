// Package devapi is an in-memory stand-in for the VeriSure API used by local
// development and tests. It speaks the same single-endpoint protocol: every
// action is a POST to /exec, form-encoded or as a JSON text body.
package devapi

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"verisure/domain/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Path is where the API endpoint is mounted.
const Path = "/exec"

type account struct {
	Email    string
	Password string
	Role     string
	EntityID string
	Name     string
	Status   string
	Meta     map[string]any
}

type issuedCredential struct {
	ID          string
	IssuerEmail string
	HolderEmail string
	Title       string
	IssuedAt    time.Time
}

// Server holds the fake API state.
type Server struct {
	router *chi.Mux
	logger *zap.Logger

	// AutoApprove makes new issuer accounts approved at signup.
	AutoApprove bool
	// VerifyBaseURL prefixes the verify links returned for issued credentials.
	VerifyBaseURL string

	mu          sync.Mutex
	accounts    map[string]*account // by role|email
	issued      map[string]*issuedCredential
	actionCount map[string]int
}

// New creates an empty fake API.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:        chi.NewRouter(),
		logger:        logger.Named("devapi"),
		VerifyBaseURL: "http://localhost:8787/verify",
		accounts:      make(map[string]*account),
		issued:        make(map[string]*issuedCredential),
		actionCount:   make(map[string]int),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	})
}

func (s *Server) setupRoutes() {
	s.router.Post(Path, s.handleExec)
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"ok": true})
	})
}

// Calls returns how many times an action was invoked.
func (s *Server) Calls(action string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionCount[action]
}

// TotalCalls returns how many actions were invoked in total.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.actionCount {
		n += c
	}
	return n
}

// SeedAccount registers an account directly and returns its entity ID.
func (s *Server) SeedAccount(role, email, password, name, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &account{
		Email:    strings.ToLower(email),
		Password: password,
		Role:     role,
		EntityID: core.NewID().String(),
		Name:     name,
		Status:   status,
	}
	s.accounts[accountKey(role, acct.Email)] = acct
	return acct.EntityID
}

// Approve marks an issuer entity approved.
func (s *Server) Approve(entityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.EntityID == entityID {
			a.Status = "approved"
			return true
		}
	}
	return false
}

func accountKey(role, email string) string {
	return role + "|" + strings.ToLower(email)
}

// params is the decoded request, independent of encoding.
type params map[string]any

func (p params) str(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func decodeParams(r *http.Request) (params, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		return nil, err
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		p := make(params, len(values))
		for k := range values {
			p[k] = values.Get(k)
		}
		return p, nil
	}

	var p params
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	p, err := decodeParams(r)
	if err != nil {
		writeJSON(w, map[string]any{"error": "Malformed request."})
		return
	}

	action := p.str("action")
	s.mu.Lock()
	s.actionCount[action]++
	s.mu.Unlock()

	switch action {
	case "signup":
		writeJSON(w, s.signup(p))
	case "login":
		writeJSON(w, s.login(p))
	case "issuer_status":
		writeJSON(w, s.issuerStatus(p))
	case "issue":
		writeJSON(w, s.issue(p))
	case "issuer_issue_batch":
		writeJSON(w, s.issueBatch(p))
	default:
		writeJSON(w, map[string]any{"error": "Unknown action: " + action})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
