package schema

import (
	"testing"

	"verisure/domain/credential"
	"verisure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"Full Name", "EMAIL", " credential type ", "Credential\tTitle", "internal id"}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Full Name":            "full_name",
		"  EMAIL ":             "email",
		"credential   type":    "credential_type",
		"Credential\t\nTitle":  "credential_title",
		"already_normal":       "already_normal",
		"Full\u00a0Name":       "full_name",
		"full\vname":           "full_name",
		"Credential\u2003Type": "credential_type",
		"\u00a0Email\u00a0":    "email",
		"":                     "",
	}
	for in, want := range tests {
		got := NormalizeHeader(in)
		assert.Equal(t, want, got, "input %q", in)
		assert.Equal(t, got, NormalizeHeader(got), "not idempotent for %q", in)
	}
}

func TestValidateInsufficientData(t *testing.T) {
	for _, rows := range [][][]string{nil, {header}} {
		set, err := Validate(rows)
		require.Error(t, err)
		assert.Nil(t, set)
		assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
		assert.Equal(t, MsgInsufficientData, errors.UserMessage(err))
	}
}

func TestValidateMissingColumns(t *testing.T) {
	rows := [][]string{
		{"full_name", "email", "credential_type"},
		{"Ada", "ada@example.com", "Degree"},
	}
	set, err := Validate(rows)
	require.Error(t, err)
	assert.Nil(t, set)
	assert.Equal(t, errors.CodeMissingColumns, errors.GetCode(err))
	assert.Equal(t, []string{"credential_title"}, errors.FieldsOf(err))
	assert.Equal(t, "Missing required columns: credential_title", errors.UserMessage(err))

	_, err = Validate([][]string{{"name"}, {"Ada"}})
	assert.Equal(t, "Missing required columns: full_name, email, credential_type, credential_title", errors.UserMessage(err))
}

func TestValidateFiltersRows(t *testing.T) {
	rows := [][]string{
		header,
		{"Ada", "ada@example.com", "Degree", "BSc", "A-1"},
		{"Bob", "", "Degree", "BSc"},
		{"Cy", "cy@example.com", "Degree", "MSc"},
		{"Dee", "dee@example.com", "Degree"},
	}
	set, err := Validate(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"full_name", "email", "credential_type", "credential_title", "internal_id"}, set.Header)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "Ada", set.Records[0]["full_name"])
	assert.Equal(t, "A-1", set.Records[0]["internal_id"])
	assert.Equal(t, "Cy", set.Records[1]["full_name"])
	// missing trailing cells map to empty strings
	assert.Equal(t, "", set.Records[1]["internal_id"])
	for _, rec := range set.Records {
		assert.True(t, rec.Complete())
	}
}

func TestValidateNoValidRows(t *testing.T) {
	rows := [][]string{
		header,
		{"Bob", "", "Degree", "BSc"},
		{"", "x@example.com", "Degree", "BSc"},
	}
	set, err := Validate(rows)
	require.Error(t, err)
	assert.Nil(t, set)
	assert.Equal(t, errors.CodeNoValidRows, errors.GetCode(err))
	assert.Equal(t, MsgNoValidRows, errors.UserMessage(err))
}

func TestValidateDuplicateHeaderLaterWins(t *testing.T) {
	rows := [][]string{
		{"full_name", "email", "credential_type", "credential_title", "Email"},
		{"Ada", "old@example.com", "Degree", "BSc", "new@example.com"},
	}
	set, err := Validate(rows)
	require.NoError(t, err)
	assert.Equal(t, credential.Record{
		"full_name":        "Ada",
		"email":            "new@example.com",
		"credential_type":  "Degree",
		"credential_title": "BSc",
	}, set.Records[0])
}

func TestValidateAcceptsUnicodeSpacedHeaders(t *testing.T) {
	rows := [][]string{
		{"Full\u00a0Name", "Email", "Credential\u00a0Type", "Credential\u2003Title"},
		{"Ada Lovelace", "ada@example.com", "Degree", "BSc"},
	}
	set, err := Validate(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"full_name", "email", "credential_type", "credential_title"}, set.Header)
	assert.Equal(t, "Ada Lovelace", set.Records[0]["full_name"])
}
