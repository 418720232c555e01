package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verisure/adapters/devapi"
	"verisure/internal/confirm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompter(t *testing.T) {
	ctx := context.Background()
	dialog := confirm.Dialog{Open: true, Title: confirm.DefaultTitle, Message: confirm.WarningMessage, ConfirmLabel: confirm.DefaultLabel}

	var out bytes.Buffer
	p := newTerminalPrompter(strings.NewReader("y\n"), &out, false)
	ok, err := p.Prompt(ctx, dialog)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), confirm.WarningMessage)
	assert.Contains(t, out.String(), "Issue now? [y/N]")

	p = newTerminalPrompter(strings.NewReader("\n"), &out, false)
	ok, err = p.Prompt(ctx, dialog)
	require.NoError(t, err)
	assert.False(t, ok)

	p = newTerminalPrompter(strings.NewReader(""), &out, true)
	ok, err = p.Prompt(ctx, dialog)
	require.NoError(t, err)
	assert.True(t, ok)

	out.Reset()
	dialog.Error = "Quota exceeded"
	ok, err = p.Prompt(ctx, dialog)
	require.NoError(t, err)
	assert.False(t, ok, "--yes never retries")
	assert.Contains(t, out.String(), "Error: Quota exceeded")
}

type cliEnv struct {
	t    *testing.T
	api  *devapi.Server
	args []string
	dir  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	api := devapi.New(nil)
	api.AutoApprove = true
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	return &cliEnv{
		t:    t,
		api:  api,
		dir:  dir,
		args: []string{"--api-url", srv.URL + devapi.Path, "--db", filepath.Join(dir, "verisure.db")},
	}
}

func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(append([]string{}, e.args...), args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTemplateCommand(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("", "template")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "full_name,email,credential_type,credential_title,internal_id,expiry_date,description\n"))

	path := filepath.Join(e.dir, "t.xlsx")
	out, err = e.run("", "template", "--xlsx", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Template written to")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestSignupLoginAndIssueBatch(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("", "issue-batch", "missing.csv", "--yes")
	require.Error(t, err)

	out, err = e.run("", "signup", "--role", "issuer", "--email", "Admin@LBS.edu", "--password", "pw",
		"--org-name", "Lagos Business School", "--org-type", "University",
		"--contact-name", "Registrar", "--contact-email", "registrar@lbs.edu", "--country", "Nigeria")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Account created.")

	out, err = e.run("", "login", "--password", "pw")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged in as admin@lbs.edu (issuer)")

	out, err = e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Issuer: Lagos Business School, status approved")

	csvPath := filepath.Join(e.dir, "cohort.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Full Name,Email,Credential Type,Credential Title\n"+
			"Alan Turing,alan@example.com,Degree,BSc\n"+
			"Grace Hopper,grace@example.com,Degree,BSc\n"+
			"Alan Again,alan@example.com,Degree,BSc\n"), 0o600))

	out, err = e.run("n\n", "issue-batch", csvPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Nothing was issued.")
	assert.Zero(t, e.api.Calls("issuer_issue_batch"))

	out, err = e.run("", "issue-batch", csvPath, "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Loaded 3 valid rows.")
	assert.Contains(t, out, "Batch issued")
	assert.Contains(t, out, "Issued: 2\nFailed: 1")
	assert.Contains(t, out, "Row 3: dup")

	out, err = e.run("", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "partial")

	out, err = e.run("", "logout")
	require.NoError(t, err)
	out, err = e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}
