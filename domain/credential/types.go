package credential

import (
	"strings"

	"verisure/internal/errors"
)

// Column names recognised in issuance uploads.
const (
	ColFullName        = "full_name"
	ColEmail           = "email"
	ColCredentialType  = "credential_type"
	ColCredentialTitle = "credential_title"
	ColInternalID      = "internal_id"
	ColExpiryDate      = "expiry_date"
	ColDescription     = "description"
)

// RequiredColumns must appear in every upload header, in reporting order.
var RequiredColumns = []string{ColFullName, ColEmail, ColCredentialType, ColCredentialTitle}

// OptionalColumns are offered by the template but never enforced.
var OptionalColumns = []string{ColInternalID, ColExpiryDate, ColDescription}

// TemplateColumns is the header of the downloadable template.
func TemplateColumns() []string {
	cols := make([]string, 0, len(RequiredColumns)+len(OptionalColumns))
	cols = append(cols, RequiredColumns...)
	return append(cols, OptionalColumns...)
}

// Record is one accepted upload row keyed by normalized header name.
// Extra columns pass through untouched and are sent to the API as-is.
type Record map[string]string

// Complete reports whether every required column has a non-empty value.
func (r Record) Complete() bool {
	for _, col := range RequiredColumns {
		if r[col] == "" {
			return false
		}
	}
	return true
}

// RecordSet is the validated content of one upload.
type RecordSet struct {
	Header  []string `json:"header"`
	Records []Record `json:"records"`
}

// Len returns the number of accepted records.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Snapshot copies the record set so later mutation of the owner does not
// leak into a pending submission.
func (s *RecordSet) Snapshot() *RecordSet {
	if s == nil {
		return nil
	}
	out := &RecordSet{
		Header:  append([]string(nil), s.Header...),
		Records: make([]Record, len(s.Records)),
	}
	for i, rec := range s.Records {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out.Records[i] = cp
	}
	return out
}

// SingleIssuance is the manual-entry form for one credential.
type SingleIssuance struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	CredentialType  string `json:"credential_type"`
	CredentialTitle string `json:"credential_title"`
	InternalID      string `json:"internal_id"`
	ExpiryDate      string `json:"expiry_date"`
	Description     string `json:"description"`
}

// Normalize trims every field and lowercases the email.
func (s SingleIssuance) Normalize() SingleIssuance {
	return SingleIssuance{
		FullName:        strings.TrimSpace(s.FullName),
		Email:           strings.ToLower(strings.TrimSpace(s.Email)),
		CredentialType:  strings.TrimSpace(s.CredentialType),
		CredentialTitle: strings.TrimSpace(s.CredentialTitle),
		InternalID:      strings.TrimSpace(s.InternalID),
		ExpiryDate:      s.ExpiryDate,
		Description:     strings.TrimSpace(s.Description),
	}
}

// Validate checks the required fields and the email shape of a normalized form.
func (s SingleIssuance) Validate() error {
	var missing []string
	if s.FullName == "" {
		missing = append(missing, ColFullName)
	}
	if s.Email == "" {
		missing = append(missing, ColEmail)
	}
	if s.CredentialType == "" {
		missing = append(missing, ColCredentialType)
	}
	if s.CredentialTitle == "" {
		missing = append(missing, ColCredentialTitle)
	}
	if len(missing) > 0 {
		return &errors.AppError{
			Code:    errors.CodeMissingFields,
			Message: "Please fill: full name, email, credential type, credential title.",
			Fields:  missing,
		}
	}
	if !strings.Contains(s.Email, "@") {
		return &errors.AppError{
			Code:    errors.CodeInvalidEmail,
			Message: "Please enter a valid holder email address.",
			Fields:  []string{ColEmail},
		}
	}
	return nil
}

// IssueRequest is the wire payload of the "issue" action.
type IssueRequest struct {
	Action           string `json:"action"`
	IssuerEmail      string `json:"issuer_email"`
	HolderEmail      string `json:"holder_email"`
	CredentialTitle  string `json:"credential_title"`
	CredentialType   string `json:"credential_type"`
	HolderFullName   string `json:"holder_full_name"`
	HolderInternalID string `json:"holder_internal_id"`
	ExpiryDate       string `json:"expiry_date"`
	Description      string `json:"description"`
}

// ActionIssue and ActionIssueBatch name the remote issuance actions.
const (
	ActionIssue      = "issue"
	ActionIssueBatch = "issuer_issue_batch"
)

// NewIssueRequest builds the payload for a normalized form.
func NewIssueRequest(issuerEmail string, s SingleIssuance) IssueRequest {
	return IssueRequest{
		Action:           ActionIssue,
		IssuerEmail:      issuerEmail,
		HolderEmail:      s.Email,
		CredentialTitle:  s.CredentialTitle,
		CredentialType:   s.CredentialType,
		HolderFullName:   s.FullName,
		HolderInternalID: s.InternalID,
		ExpiryDate:       s.ExpiryDate,
		Description:      s.Description,
	}
}

// BatchRequest is the wire payload of the "issuer_issue_batch" action.
type BatchRequest struct {
	Action      string   `json:"action"`
	IssuerEmail string   `json:"issuer_email"`
	Rows        []Record `json:"rows"`
}

// NewBatchRequest builds the payload for a validated record set.
func NewBatchRequest(issuerEmail string, set *RecordSet) BatchRequest {
	rows := []Record{}
	if set != nil {
		rows = set.Records
	}
	return BatchRequest{
		Action:      ActionIssueBatch,
		IssuerEmail: issuerEmail,
		Rows:        rows,
	}
}
