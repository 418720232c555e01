package ui

import (
	"net/http"

	"verisure/app"
	"verisure/domain/session"
	"verisure/domain/signup"
	"verisure/internal/errors"

	"github.com/gin-gonic/gin"
)

// handleSession reports the stored session and the navigation it unlocks
func (s *Server) handleSession(c *gin.Context) {
	sess, err := s.auth.Current(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"logged_in": false, "links": []session.Link{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logged_in":      true,
		"session":        sess,
		"links":          session.NavLinks(sess.Role),
		"home":           session.HomeRoute(sess.Role),
		"needs_approval": sess.NeedsApproval(),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var in app.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, errors.InvalidInput("Invalid login request."))
		return
	}
	res, err := s.auth.Login(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if res.Session.NeedsApproval() {
		s.approval.Wake()
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleLogout(c *gin.Context) {
	s.issuance.ClearUpload()
	s.issuance.Cancel()
	if err := s.auth.Logout(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handlePrefill hands the login form the account created by the last
// signup, once
func (s *Server) handlePrefill(c *gin.Context) {
	p, err := s.auth.TakePrefill(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"prefill": nil, "email_hint": session.EmailHint("")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prefill": p, "email_hint": session.EmailHint(p.Role)})
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signup.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput("Invalid signup request."))
		return
	}
	form, err := req.Decode()
	if err != nil {
		s.writeError(c, err)
		return
	}
	res, err := s.auth.Signup(c.Request.Context(), form)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": signup.Countries})
}

// handleApproval polls the approval status once, as the lock screen does
// on its timer
func (s *Server) handleApproval(c *gin.Context) {
	st, err := s.approval.Check(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
