package credential

import (
	"fmt"
	"strings"
)

// SingleResult is the decoded response of the "issue" action.
type SingleResult struct {
	Success      bool   `json:"success"`
	CredentialID string `json:"credential_id,omitempty"`
	QRURL        string `json:"qr_url,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Summary renders the success notice body.
func (r SingleResult) Summary() string {
	link := r.QRURL
	if link == "" {
		link = "—"
	}
	return fmt.Sprintf("Credential ID: %s\nVerify link: %s", r.CredentialID, link)
}

// RowOutcome is the API verdict on one batch row. Index is zero-based in
// submission order.
type RowOutcome struct {
	OK    bool   `json:"ok"`
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
	// Failed is true only when the API reported ok as literal false.
	Failed bool `json:"-"`
}

// BatchResult is the decoded response of the "issuer_issue_batch" action.
type BatchResult struct {
	OK      bool         `json:"ok"`
	Issued  int          `json:"issued"`
	Failed  int          `json:"failed"`
	Results []RowOutcome `json:"results"`
	Error   string       `json:"error,omitempty"`
}

// Failures returns the rows the API explicitly marked as failed, in order.
func (r BatchResult) Failures() []RowOutcome {
	var out []RowOutcome
	for _, row := range r.Results {
		if row.Failed {
			out = append(out, row)
		}
	}
	return out
}

// Summary renders the issued/failed counts followed by at most sample
// row-level errors with one-based row numbers.
func (r BatchResult) Summary(sample int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issued: %d\nFailed: %d", r.Issued, r.Failed)

	failures := r.Failures()
	if len(failures) == 0 || sample <= 0 {
		return b.String()
	}
	if len(failures) > sample {
		failures = failures[:sample]
	}

	lines := make([]string, len(failures))
	for i, f := range failures {
		lines[i] = fmt.Sprintf("Row %d: %s", f.Index+1, f.Error)
	}
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
