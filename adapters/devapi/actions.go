package devapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"verisure/domain/core"

	"go.uber.org/zap"
)

func (s *Server) signup(p params) map[string]any {
	role := strings.ToLower(p.str("role"))
	email := strings.ToLower(p.str("email"))
	if role == "" || email == "" || p.str("password") == "" {
		return map[string]any{"error": "Missing signup fields."}
	}
	switch role {
	case "holder", "issuer", "verifier":
	default:
		return map[string]any{"error": "Unsupported account type."}
	}

	meta := map[string]any{}
	if raw := p.str("meta"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return map[string]any{"error": "Invalid signup metadata."}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(role, email)
	if _, exists := s.accounts[key]; exists {
		return map[string]any{"error": "An account with this email already exists."}
	}

	acct := &account{
		Email:    email,
		Password: p.str("password"),
		Role:     role,
		EntityID: core.NewID().String(),
		Meta:     meta,
	}
	if name, ok := meta["organizationName"].(string); ok {
		acct.Name = name
	} else if name, ok := meta["fullName"].(string); ok {
		acct.Name = name
	}
	if role == "issuer" {
		acct.Status = "pending"
		if s.AutoApprove {
			acct.Status = "approved"
		}
	}
	s.accounts[key] = acct
	s.logger.Info("account created", zap.String("role", role), zap.String("email", email))

	return map[string]any{"success": true, "email": email, "role": role}
}

func (s *Server) login(p params) map[string]any {
	role := strings.ToLower(p.str("role"))
	email := strings.ToLower(p.str("email"))

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountKey(role, email)]
	if !ok || acct.Password != p.str("password") {
		return map[string]any{"error": "Invalid email or password."}
	}

	out := map[string]any{
		"role":     acct.Role,
		"email":    acct.Email,
		"entityId": acct.EntityID,
		"name":     acct.Name,
	}
	if acct.Role == "issuer" {
		out["issuerStatus"] = acct.Status
		out["issuerName"] = acct.Name
	}
	return out
}

func (s *Server) issuerStatus(p params) map[string]any {
	id := p.str("entity_id")
	if id == "" {
		return map[string]any{"error": "entity_id is required."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.EntityID == id && a.Role == "issuer" {
			return map[string]any{"issuerStatus": a.Status, "issuerName": a.Name}
		}
	}
	return map[string]any{"error": "Issuer not found."}
}

// approvedIssuer must be called with s.mu held.
func (s *Server) approvedIssuer(email string) (*account, string) {
	acct, ok := s.accounts[accountKey("issuer", email)]
	if !ok {
		return nil, "Issuer not found."
	}
	if acct.Status != "approved" {
		return nil, "Issuer is not approved yet."
	}
	return acct, ""
}

// issueLocked validates and records one credential; it returns the new
// credential or a row-level error message. s.mu must be held.
func (s *Server) issueLocked(issuer *account, holderEmail, fullName, credType, title string) (*issuedCredential, string) {
	holderEmail = strings.ToLower(strings.TrimSpace(holderEmail))
	switch {
	case fullName == "":
		return nil, "missing full_name"
	case holderEmail == "" || !strings.Contains(holderEmail, "@"):
		return nil, "invalid email"
	case credType == "":
		return nil, "missing credential_type"
	case title == "":
		return nil, "missing credential_title"
	}

	key := strings.ToLower(holderEmail + "|" + title)
	if _, dup := s.issued[key]; dup {
		return nil, "dup"
	}

	id := core.NewID().String()
	cred := &issuedCredential{
		ID:          fmt.Sprintf("VS-%s", strings.ToUpper(id[len(id)-12:])),
		IssuerEmail: issuer.Email,
		HolderEmail: holderEmail,
		Title:       title,
		IssuedAt:    time.Now(),
	}
	s.issued[key] = cred
	return cred, ""
}

func (s *Server) verifyLink(id string) string {
	return s.VerifyBaseURL + "?id=" + id
}

func (s *Server) issue(p params) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	issuer, msg := s.approvedIssuer(strings.ToLower(p.str("issuer_email")))
	if issuer == nil {
		return map[string]any{"error": msg}
	}

	cred, msg := s.issueLocked(issuer,
		p.str("holder_email"),
		p.str("holder_full_name"),
		p.str("credential_type"),
		p.str("credential_title"))
	if cred == nil {
		if msg == "dup" {
			msg = "Credential already issued to this holder."
		}
		return map[string]any{"error": msg}
	}

	return map[string]any{
		"success":       true,
		"credential_id": cred.ID,
		"qr_url":        s.verifyLink(cred.ID),
	}
}

func (s *Server) issueBatch(p params) map[string]any {
	rows, ok := p["rows"].([]any)
	if !ok {
		return map[string]any{"ok": false, "error": "rows must be a list."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issuer, msg := s.approvedIssuer(strings.ToLower(p.str("issuer_email")))
	if issuer == nil {
		return map[string]any{"ok": false, "error": msg}
	}

	results := make([]map[string]any, 0, len(rows))
	issued, failed := 0, 0
	for i, raw := range rows {
		row := params{}
		if m, ok := raw.(map[string]any); ok {
			row = params(m)
		}
		cred, msg := s.issueLocked(issuer,
			row.str("email"),
			row.str("full_name"),
			row.str("credential_type"),
			row.str("credential_title"))
		if cred == nil {
			failed++
			results = append(results, map[string]any{"ok": false, "index": i, "error": msg})
			continue
		}
		issued++
		results = append(results, map[string]any{"ok": true, "index": i, "credential_id": cred.ID})
	}

	s.logger.Info("batch issued",
		zap.String("issuer", issuer.Email),
		zap.Int("issued", issued),
		zap.Int("failed", failed))

	return map[string]any{"ok": true, "issued": issued, "failed": failed, "results": results}
}
