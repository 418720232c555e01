package models

import (
	"time"
)

// IssuanceMode says which path an attempt came from
type IssuanceMode string

const (
	IssuanceModeSingle IssuanceMode = "single"
	IssuanceModeBatch  IssuanceMode = "batch"
)

// IssuanceOutcome is the overall result of one attempt
type IssuanceOutcome string

const (
	OutcomeIssued  IssuanceOutcome = "issued"
	OutcomePartial IssuanceOutcome = "partial"
	OutcomeFailed  IssuanceOutcome = "failed"
)

// IssuanceAttempt is one confirmed submission to the API
type IssuanceAttempt struct {
	ID           string          `json:"id" db:"id"`
	Mode         IssuanceMode    `json:"mode" db:"mode"`
	Outcome      IssuanceOutcome `json:"outcome" db:"outcome"`
	IssuerEmail  string          `json:"issuer_email" db:"issuer_email"`
	FileName     string          `json:"file_name,omitempty" db:"file_name"`
	RowCount     int             `json:"row_count" db:"row_count"`
	Issued       int             `json:"issued" db:"issued"`
	Failed       int             `json:"failed" db:"failed"`
	CredentialID string          `json:"credential_id,omitempty" db:"credential_id"`
	ErrorMessage string          `json:"error,omitempty" db:"error_message"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// StoredSession is the persisted form of a login session
type StoredSession struct {
	Profile   string    `db:"profile"`
	Data      string    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LoginPrefill is a one-shot login form prefill left behind by signup
type LoginPrefill struct {
	Profile   string    `db:"profile"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	ExpiresAt time.Time `db:"expires_at"`
}
