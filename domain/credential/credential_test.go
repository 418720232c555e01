package credential

import (
	"strings"
	"testing"

	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchSummaryReportsFailures(t *testing.T) {
	res := BatchResult{
		OK:     true,
		Issued: 2,
		Failed: 1,
		Results: []RowOutcome{
			{OK: true, Index: 0},
			{OK: true, Index: 1},
			{OK: false, Index: 2, Error: "dup", Failed: true},
		},
	}

	got := res.Summary(5)
	assert.Equal(t, "Issued: 2\nFailed: 1\n\nRow 3: dup", got)
}

func TestBatchSummaryCapsSample(t *testing.T) {
	res := BatchResult{OK: true, Issued: 0, Failed: 7}
	for i := 0; i < 7; i++ {
		res.Results = append(res.Results, RowOutcome{Index: i, Error: "bad", Failed: true})
	}

	got := res.Summary(5)
	assert.Equal(t, 5, strings.Count(got, "Row "))
	assert.Contains(t, got, "Row 5: bad")
	assert.NotContains(t, got, "Row 6: bad")
}

func TestBatchSummaryIgnoresRowsNotExplicitlyFailed(t *testing.T) {
	// ok missing from the API payload: not counted as a failure
	res := BatchResult{OK: true, Issued: 1, Results: []RowOutcome{{Index: 0, Error: "warning"}}}
	assert.Equal(t, "Issued: 1\nFailed: 0", res.Summary(5))
	assert.Empty(t, res.Failures())
}

func TestSingleSummary(t *testing.T) {
	assert.Equal(t, "Credential ID: VS-1\nVerify link: —", SingleResult{Success: true, CredentialID: "VS-1"}.Summary())
	assert.Equal(t, "Credential ID: VS-2\nVerify link: https://v/2",
		SingleResult{Success: true, CredentialID: "VS-2", QRURL: "https://v/2"}.Summary())
}

func TestSingleIssuanceValidate(t *testing.T) {
	tests := []struct {
		name string
		in   SingleIssuance
		code string
	}{
		{
			name: "complete",
			in:   SingleIssuance{FullName: "Ada", Email: " ADA@Example.com ", CredentialType: "Degree", CredentialTitle: "BSc"},
		},
		{
			name: "missing title",
			in:   SingleIssuance{FullName: "Ada", Email: "ada@example.com", CredentialType: "Degree", CredentialTitle: "  "},
			code: errors.CodeMissingFields,
		},
		{
			name: "bad email",
			in:   SingleIssuance{FullName: "Ada", Email: "ada.example.com", CredentialType: "Degree", CredentialTitle: "BSc"},
			code: errors.CodeInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestNormalizeLowercasesEmail(t *testing.T) {
	s := SingleIssuance{Email: "  Ada@Example.COM "}.Normalize()
	assert.Equal(t, "ada@example.com", s.Email)

	req := NewIssueRequest("issuer@org.com", s)
	assert.Equal(t, ActionIssue, req.Action)
	assert.Equal(t, "ada@example.com", req.HolderEmail)
}

func TestSnapshotIsIndependent(t *testing.T) {
	set := &RecordSet{Header: []string{"email"}, Records: []Record{{"email": "a@b.c"}}}
	snap := set.Snapshot()
	set.Records[0]["email"] = "changed"
	set.Records = nil

	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "a@b.c", snap.Records[0]["email"])
	assert.Equal(t, 0, (*RecordSet)(nil).Len())
}

func TestTemplateColumns(t *testing.T) {
	assert.Equal(t,
		"full_name,email,credential_type,credential_title,internal_id,expiry_date,description",
		strings.Join(TemplateColumns(), ","))
}
